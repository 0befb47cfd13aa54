package vcf

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// NumStandardColumns is the number of fixed columns (CHROM through FORMAT)
// that precede the sample columns.
const NumStandardColumns = 9

// SupportedVersions lists the accepted ##fileformat versions.
var SupportedVersions = []string{"4.0", "4.1", "4.2"}

// Header line categories parsed into field definitions.
const (
	CategoryAlt      = "ALT"
	CategoryInfo     = "INFO"
	CategoryFormat   = "FORMAT"
	CategorySample   = "SAMPLE"
	CategoryFilter   = "FILTER"
	CategoryContig   = "contig"
	CategoryPedigree = "PEDIGREE"
)

// Header holds the metadata parsed from the leading '#' lines of a VCF file.
// A Header is never modified after ParseHeader returns it.
type Header struct {
	Version     string
	Columns     []string
	SampleNames []string

	Alt      []*FieldDefinition
	Info     []*FieldDefinition
	Format   []*FieldDefinition
	Sample   []*FieldDefinition
	Filter   []*FieldDefinition
	Contig   []*FieldDefinition
	Pedigree []*FieldDefinition

	// Meta holds unbracketed ##key=value lines such as source or reference.
	Meta map[string]string
	// Raw holds the header lines exactly as read.
	Raw []string

	infoByID   map[string]*FieldDefinition
	formatByID map[string]*FieldDefinition
}

// InfoDef returns the INFO definition with the given ID, or nil.
func (h *Header) InfoDef(id string) *FieldDefinition {
	if h.infoByID == nil {
		return findByID(h.Info, id)
	}
	return h.infoByID[id]
}

// FormatDef returns the FORMAT definition with the given ID, or nil.
func (h *Header) FormatDef(id string) *FieldDefinition {
	if h.formatByID == nil {
		return findByID(h.Format, id)
	}
	return h.formatByID[id]
}

// findByID serves headers that were not built by ParseHeader, such as ones
// decoded from JSON.
func findByID(defs []*FieldDefinition, id string) *FieldDefinition {
	for _, d := range defs {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// Number is the declared arity of a field: either a fixed Count, or one of
// the symbolic arities A, G, R or "." held in Symbol.
type Number struct {
	Count  int
	Symbol string
}

// ParseNumber parses a Number value from a header line.
func ParseNumber(s string) Number {
	if n, err := strconv.Atoi(s); err == nil {
		return Number{Count: n}
	}
	return Number{Symbol: s}
}

// Fixed reports whether the arity is a literal count.
func (n Number) Fixed() bool {
	return n.Symbol == ""
}

func (n Number) String() string {
	if n.Fixed() {
		return strconv.Itoa(n.Count)
	}
	return n.Symbol
}

func (n Number) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Number) UnmarshalText(b []byte) error {
	*n = ParseNumber(string(b))
	return nil
}

// FieldDefinition is one parsed <...> meta-information line.
type FieldDefinition struct {
	ID          string            `mapstructure:"ID"`
	Number      Number            `mapstructure:"Number"`
	Type        Type              `mapstructure:"Type"`
	Description string            `mapstructure:"Description"`
	Other       map[string]string `mapstructure:",remain"`

	// Keys lists the declared keys in the order they appeared.
	Keys []string `mapstructure:"-"`
}

// Get returns the value declared for key, as written in the header.
func (d *FieldDefinition) Get(key string) (string, bool) {
	if !slices.Contains(d.Keys, key) {
		return "", false
	}
	switch key {
	case "ID":
		return d.ID, true
	case "Number":
		return d.Number.String(), true
	case "Type":
		return string(d.Type), true
	case "Description":
		return d.Description, true
	}
	v, ok := d.Other[key]
	return v, ok
}

var (
	bracketRe     = regexp.MustCompile(`<(.*)>`)
	descriptionRe = regexp.MustCompile(`Description="((?:[^"\\]|\\.)*)"`)
)

// ParseHeader parses the header block of a VCF document. lines must be the
// leading run of lines starting with '#', in file order.
func ParseHeader(lines []string) (*Header, error) {
	if len(lines) == 0 {
		return nil, &StructuralError{Message: "missing header"}
	}

	stripped := make([]string, len(lines))
	for i, l := range lines {
		stripped[i] = strings.TrimPrefix(strings.TrimPrefix(l, "#"), "#")
	}

	version, err := parseVersion(stripped[0])
	if err != nil {
		return nil, err
	}

	columnLine := stripped[len(stripped)-1]
	if !strings.HasPrefix(columnLine, "CHROM") {
		return nil, &StructuralError{Message: "no #CHROM header line found"}
	}

	h := &Header{
		Version: version,
		Columns: strings.Split(columnLine, "\t"),
		Meta:    make(map[string]string),
		Raw:     slices.Clone(lines),
	}
	if len(h.Columns) > NumStandardColumns {
		h.SampleNames = h.Columns[NumStandardColumns:]
	}

	categories := map[string]*[]*FieldDefinition{
		CategoryAlt:      &h.Alt,
		CategoryInfo:     &h.Info,
		CategoryFormat:   &h.Format,
		CategorySample:   &h.Sample,
		CategoryFilter:   &h.Filter,
		CategoryContig:   &h.Contig,
		CategoryPedigree: &h.Pedigree,
	}

	// The first line is the fileformat line and the last the column line.
	for i := 1; i < len(stripped)-1; i++ {
		line := stripped[i]
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		dest, isCategory := categories[key]
		if !isCategory {
			h.Meta[key] = value
			continue
		}
		def, err := parseFieldDefinition(line)
		if err != nil {
			return nil, &HeaderParseError{Line: i + 1, Category: key, Text: lines[i]}
		}
		*dest = append(*dest, def)
	}

	h.infoByID = indexByID(h.Info)
	h.formatByID = indexByID(h.Format)

	return h, nil
}

func parseVersion(line string) (string, error) {
	key, value, _ := strings.Cut(line, "=")
	if key != "fileformat" {
		return "", &VersionError{}
	}
	version := strings.TrimPrefix(strings.TrimSpace(value), "VCFv")
	if !slices.Contains(SupportedVersions, version) {
		return "", &VersionError{Version: version}
	}
	return version, nil
}

func indexByID(defs []*FieldDefinition) map[string]*FieldDefinition {
	m := make(map[string]*FieldDefinition, len(defs))
	for _, d := range defs {
		if _, dup := m[d.ID]; !dup {
			m[d.ID] = d
		}
	}
	return m
}

// parseFieldDefinition parses the <...> body of a meta-information line.
// Description may contain separators, so it is pulled out before the rest
// of the body is split into key=value pairs.
func parseFieldDefinition(line string) (*FieldDefinition, error) {
	m := bracketRe.FindStringSubmatch(line)
	if m == nil {
		return nil, fmt.Errorf("no bracketed body")
	}
	body := m[1]

	raw := make(map[string]any)
	var keys []string

	var description string
	hasDescription := false
	if loc := descriptionRe.FindStringSubmatchIndex(body); loc != nil {
		description = strings.ReplaceAll(body[loc[2]:loc[3]], `\"`, `"`)
		hasDescription = true
		body = body[:loc[0]] + "Description=" + body[loc[1]:]
	}

	for _, tok := range splitOutsideQuotes(body) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		key, value, _ := strings.Cut(tok, "=")
		if key == "Description" && hasDescription {
			value = description
		}
		if _, seen := raw[key]; !seen {
			keys = append(keys, key)
		}
		raw[key] = value
	}

	def := &FieldDefinition{Keys: keys}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: numberHook,
		// Keys are case-sensitive: "type" is not "Type".
		MatchName: func(mapKey, fieldName string) bool {
			return mapKey == fieldName
		},
		Result: def,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode field definition: %w", err)
	}
	def.Keys = keys
	return def, nil
}

func numberHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(Number{}) || from.Kind() != reflect.String {
		return data, nil
	}
	return ParseNumber(data.(string)), nil
}

// splitOutsideQuotes splits s into key=value tokens on commas outside double
// quotes. A semicolon also separates tokens when a key=value pair follows it,
// as in PEDIGREE lines; otherwise it stays part of a list value such as
// Genomes=Germline;Tumor.
func splitOutsideQuotes(s string) []string {
	var parts []string
	inQuotes := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		case ';':
			if !inQuotes && startsPair(s[i+1:]) {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func startsPair(rest string) bool {
	if i := strings.IndexAny(rest, ",;"); i >= 0 {
		rest = rest[:i]
	}
	return strings.Contains(rest, "=")
}
