// Package vcf provides VCF file parsing functionality.
package vcf

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Decoders holds one decoder per Record column plus the key function.
// Every entry can be replaced per Parser.
type Decoders struct {
	Chrom  func(raw string, c *DecodeContext) (string, error)
	Pos    func(raw string, c *DecodeContext) (int64, error)
	ID     func(raw string, c *DecodeContext) ([]string, error)
	Ref    func(raw string, c *DecodeContext) (string, error)
	Alt    func(raw string, c *DecodeContext) ([]string, error)
	Qual   func(raw string, c *DecodeContext) (*float64, error)
	Filter func(raw string, c *DecodeContext) ([]string, error)
	Info   func(raw string, c *DecodeContext) (map[string]any, error)
	Format func(raw string, c *DecodeContext) ([]string, error)
	Sample func(raw string, format []string, c *DecodeContext) (Sample, error)
	Key    func(r *Record) string
}

// DefaultDecoders returns the standard decoders.
func DefaultDecoders() Decoders {
	return Decoders{
		Chrom:  DecodeChrom,
		Pos:    DecodePos,
		ID:     DecodeID,
		Ref:    DecodeRef,
		Alt:    DecodeAlt,
		Qual:   DecodeQual,
		Filter: DecodeFilter,
		Info:   DecodeInfo,
		Format: DecodeFormat,
		Sample: DecodeSample,
		Key:    DefaultKey,
	}
}

// Document is a fully parsed VCF file.
type Document struct {
	Header  *Header   `json:"header"`
	Records []*Record `json:"records"`
}

// Parser turns VCF text into a Document. A Parser is configured once and can
// then parse any number of documents; it holds no state between calls.
type Parser struct {
	decoders Decoders
	logger   *zap.Logger
}

// NewParser creates a parser with the standard decoders.
func NewParser() *Parser {
	return &Parser{
		decoders: DefaultDecoders(),
		logger:   zap.NewNop(),
	}
}

// Decoders returns a copy of the parser's current decoders.
func (p *Parser) Decoders() Decoders {
	return p.decoders
}

// SetLogger sets the logger receiving derived-type warnings.
func (p *Parser) SetLogger(l *zap.Logger) *Parser {
	p.logger = l
	return p
}

// SetChrom replaces the CHROM decoder.
func (p *Parser) SetChrom(fn func(string, *DecodeContext) (string, error)) *Parser {
	p.decoders.Chrom = fn
	return p
}

// SetPos replaces the POS decoder.
func (p *Parser) SetPos(fn func(string, *DecodeContext) (int64, error)) *Parser {
	p.decoders.Pos = fn
	return p
}

// SetID replaces the ID decoder.
func (p *Parser) SetID(fn func(string, *DecodeContext) ([]string, error)) *Parser {
	p.decoders.ID = fn
	return p
}

// SetRef replaces the REF decoder.
func (p *Parser) SetRef(fn func(string, *DecodeContext) (string, error)) *Parser {
	p.decoders.Ref = fn
	return p
}

// SetAlt replaces the ALT decoder.
func (p *Parser) SetAlt(fn func(string, *DecodeContext) ([]string, error)) *Parser {
	p.decoders.Alt = fn
	return p
}

// SetQual replaces the QUAL decoder.
func (p *Parser) SetQual(fn func(string, *DecodeContext) (*float64, error)) *Parser {
	p.decoders.Qual = fn
	return p
}

// SetFilter replaces the FILTER decoder.
func (p *Parser) SetFilter(fn func(string, *DecodeContext) ([]string, error)) *Parser {
	p.decoders.Filter = fn
	return p
}

// SetInfo replaces the INFO decoder.
func (p *Parser) SetInfo(fn func(string, *DecodeContext) (map[string]any, error)) *Parser {
	p.decoders.Info = fn
	return p
}

// SetFormat replaces the FORMAT decoder.
func (p *Parser) SetFormat(fn func(string, *DecodeContext) ([]string, error)) *Parser {
	p.decoders.Format = fn
	return p
}

// SetSample replaces the per-sample decoder.
func (p *Parser) SetSample(fn func(string, []string, *DecodeContext) (Sample, error)) *Parser {
	p.decoders.Sample = fn
	return p
}

// SetKey replaces the record key function.
func (p *Parser) SetKey(fn func(*Record) string) *Parser {
	p.decoders.Key = fn
	return p
}

// Parse parses a complete VCF document. Any header error aborts the parse
// and no records are returned.
func (p *Parser) Parse(text string) (*Document, error) {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}

	// Header is the leading run of '#' lines, after any blank lines.
	first := 0
	for first < len(lines) && lines[first] == "" {
		first++
	}
	end := first
	for end < len(lines) && strings.HasPrefix(lines[end], "#") {
		end++
	}

	h, err := ParseHeader(lines[first:end])
	if err != nil {
		return nil, err
	}

	doc := &Document{Header: h}
	for i := end; i < len(lines); i++ {
		line := lines[i]
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r, err := p.ParseRecord(line, h, i+1)
		if err != nil {
			return nil, err
		}
		doc.Records = append(doc.Records, r)
	}

	p.logger.Debug("parsed vcf document",
		zap.String("version", h.Version),
		zap.Int("samples", len(h.SampleNames)),
		zap.Int("records", len(doc.Records)))

	return doc, nil
}

// ParseReader reads r to the end and parses it as a VCF document.
func (p *Parser) ParseReader(r io.Reader) (*Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read vcf: %w", err)
	}
	return p.Parse(string(b))
}

// Parse parses text with a default Parser.
func Parse(text string) (*Document, error) {
	return NewParser().Parse(text)
}
