package vcf

import (
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// The fixed VCF columns.
const (
	ColChrom  = "CHROM"
	ColPos    = "POS"
	ColID     = "ID"
	ColRef    = "REF"
	ColAlt    = "ALT"
	ColQual   = "QUAL"
	ColFilter = "FILTER"
	ColInfo   = "INFO"
	ColFormat = "FORMAT"
)

// Record is one decoded VCF data line. Absent values (the "." sentinel or a
// missing trailing column) are left as zero values: "" for strings, 0 for
// Pos, and nil for slices, maps and Qual.
type Record struct {
	Chrom   string            `json:"CHROM"`
	Pos     int64             `json:"POS"`
	ID      []string          `json:"ID"`
	Ref     string            `json:"REF"`
	Alt     []string          `json:"ALT"`
	Qual    *float64          `json:"QUAL"`
	Filter  []string          `json:"FILTER"`
	Info    map[string]any    `json:"INFO"`
	Format  []string          `json:"FORMAT"`
	Samples map[string]Sample `json:"samples,omitempty"`

	// Key identifies the variant by CHROM, POS, REF and ALT.
	Key string `json:"key"`

	// Header is the header the record was decoded with. It is shared
	// between all records of a document.
	Header *Header `json:"-"`
}

// Sample holds the decoded FORMAT values of one sample column, keyed by
// FORMAT tag.
type Sample map[string]any

// Sample returns the decoded values for the named sample column, or nil if
// the column was absent on this line.
func (r *Record) Sample(name string) Sample {
	return r.Samples[name]
}

// DecodeContext carries what column decoders need besides the raw value.
type DecodeContext struct {
	Header *Header
	Logger *zap.Logger
	Line   int
}

// Coerce decodes raw using the Type declared by def. When def is nil or has
// no Type, the type is derived from raw and a warning is logged.
func (c *DecodeContext) Coerce(category, key, raw string, def *FieldDefinition) (any, error) {
	var t Type
	if def != nil && def.Type != "" {
		t = def.Type
	} else {
		t = DeriveType(raw)
		c.Logger.Warn("type not defined in header, derived from value",
			zap.String("category", category),
			zap.String("key", key),
			zap.String("type", string(t)),
			zap.String("value", raw),
			zap.Int("line", c.Line))
	}

	v, err := Decode(t, raw)
	if err != nil {
		return nil, &DecodeError{Line: c.Line, Column: category, Key: key, Value: raw, Err: err}
	}
	return v, nil
}

// ParseRecord decodes one tab-delimited data line using h. lineNo is used
// for error and diagnostic context only.
func (p *Parser) ParseRecord(line string, h *Header, lineNo int) (*Record, error) {
	vals := strings.Split(line, "\t")

	// First pass: zip the raw values against the header columns.
	raw := make(map[string]string, len(h.Columns))
	for i, col := range h.Columns {
		if i >= len(vals) {
			break
		}
		v := strings.TrimSpace(vals[i])
		if v == "" || v == Missing {
			continue
		}
		raw[col] = v
	}

	c := &DecodeContext{Header: h, Logger: p.logger, Line: lineNo}
	d := p.decoders
	r := &Record{Header: h}

	// Second pass: column-specific decoding of the non-missing values.
	var err error
	if v, ok := raw[ColChrom]; ok {
		if r.Chrom, err = d.Chrom(v, c); err != nil {
			return nil, wrapDecodeError(err, lineNo, ColChrom, v)
		}
	}
	if v, ok := raw[ColPos]; ok {
		if r.Pos, err = d.Pos(v, c); err != nil {
			return nil, wrapDecodeError(err, lineNo, ColPos, v)
		}
	}
	if v, ok := raw[ColID]; ok {
		if r.ID, err = d.ID(v, c); err != nil {
			return nil, wrapDecodeError(err, lineNo, ColID, v)
		}
	}
	if v, ok := raw[ColRef]; ok {
		if r.Ref, err = d.Ref(v, c); err != nil {
			return nil, wrapDecodeError(err, lineNo, ColRef, v)
		}
	}
	if v, ok := raw[ColAlt]; ok {
		if r.Alt, err = d.Alt(v, c); err != nil {
			return nil, wrapDecodeError(err, lineNo, ColAlt, v)
		}
	}
	if v, ok := raw[ColQual]; ok {
		if r.Qual, err = d.Qual(v, c); err != nil {
			return nil, wrapDecodeError(err, lineNo, ColQual, v)
		}
	}
	if v, ok := raw[ColFilter]; ok {
		if r.Filter, err = d.Filter(v, c); err != nil {
			return nil, wrapDecodeError(err, lineNo, ColFilter, v)
		}
	}
	if v, ok := raw[ColInfo]; ok {
		if r.Info, err = d.Info(v, c); err != nil {
			return nil, wrapDecodeError(err, lineNo, ColInfo, v)
		}
	}
	if v, ok := raw[ColFormat]; ok {
		if r.Format, err = d.Format(v, c); err != nil {
			return nil, wrapDecodeError(err, lineNo, ColFormat, v)
		}
	}

	// Samples need FORMAT to be decoded first.
	for _, name := range h.SampleNames {
		v, ok := raw[name]
		if !ok {
			continue
		}
		s, err := d.Sample(v, r.Format, c)
		if err != nil {
			return nil, wrapDecodeError(err, lineNo, name, v)
		}
		if r.Samples == nil {
			r.Samples = make(map[string]Sample, len(h.SampleNames))
		}
		r.Samples[name] = s
	}

	r.Key = d.Key(r)
	return r, nil
}

func wrapDecodeError(err error, line int, column, value string) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Line: line, Column: column, Value: value, Err: err}
}

// DecodeChrom returns the chromosome unchanged.
func DecodeChrom(raw string, _ *DecodeContext) (string, error) {
	return raw, nil
}

// DecodePos parses the 1-based position.
func DecodePos(raw string, _ *DecodeContext) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

// DecodeID splits the semicolon-separated identifier list.
func DecodeID(raw string, _ *DecodeContext) ([]string, error) {
	return strings.Split(raw, ";"), nil
}

// DecodeRef returns the reference allele unchanged.
func DecodeRef(raw string, _ *DecodeContext) (string, error) {
	return raw, nil
}

// DecodeAlt splits the comma-separated alternate alleles.
func DecodeAlt(raw string, _ *DecodeContext) ([]string, error) {
	return strings.Split(raw, ","), nil
}

// DecodeQual parses the quality score.
func DecodeQual(raw string, _ *DecodeContext) (*float64, error) {
	q, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// DecodeFilter splits the semicolon-separated filter list.
func DecodeFilter(raw string, _ *DecodeContext) ([]string, error) {
	return strings.Split(raw, ";"), nil
}

// DecodeInfo decodes the semicolon-separated INFO pairs. A bare key is a
// Flag and decodes to true.
func DecodeInfo(raw string, c *DecodeContext) (map[string]any, error) {
	info := make(map[string]any)
	for _, kv := range strings.Split(raw, ";") {
		if kv == "" {
			continue
		}
		key, val, hasValue := strings.Cut(kv, "=")
		if !hasValue {
			info[key] = true
			continue
		}
		v, err := c.Coerce(ColInfo, key, val, c.Header.InfoDef(key))
		if err != nil {
			return nil, err
		}
		info[key] = v
	}
	return info, nil
}

// DecodeFormat splits the colon-separated FORMAT tags.
func DecodeFormat(raw string, _ *DecodeContext) ([]string, error) {
	return strings.Split(raw, ":"), nil
}

// DecodeSample zips the colon-separated sample values against the FORMAT
// tags and decodes each by its FORMAT definition.
func DecodeSample(raw string, format []string, c *DecodeContext) (Sample, error) {
	vals := strings.Split(raw, ":")
	s := make(Sample, len(vals))
	for i, val := range vals {
		if i >= len(format) {
			c.Logger.Warn("sample has more values than FORMAT tags",
				zap.Int("line", c.Line),
				zap.Int("values", len(vals)),
				zap.Int("tags", len(format)))
			break
		}
		key := format[i]
		v, err := c.Coerce(ColFormat, key, val, c.Header.FormatDef(key))
		if err != nil {
			return nil, err
		}
		s[key] = v
	}
	return s, nil
}

// DefaultKey formats the record identity as chrom_pos_ref/alt, with multiple
// alternate alleles joined by commas.
func DefaultKey(r *Record) string {
	return r.Chrom + "_" + strconv.FormatInt(r.Pos, 10) + "_" + r.Ref + "/" + strings.Join(r.Alt, ",")
}
