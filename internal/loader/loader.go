// Package loader acquires VCF text from files, stdin or gzip streams.
package loader

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/inodb/vibe-vcf/internal/output"
	"github.com/inodb/vibe-vcf/internal/vcf"
)

// Format is the encoding of an input document.
type Format string

// Supported input formats.
const (
	FormatVCF  Format = "vcf"
	FormatJSON Format = "json"
)

// DetectFormat returns the format implied by a source name's extension.
// Unknown extensions and stdin ("-") default to VCF.
func DetectFormat(name string) Format {
	lower := strings.ToLower(filepath.Base(name))
	lower = strings.TrimSuffix(lower, ".gz")
	if strings.HasSuffix(lower, ".json") {
		return FormatJSON
	}
	return FormatVCF
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatVCF, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("format %q not recognized: use vcf or json", s)
}

// source closes both the decompressor and the underlying file.
type source struct {
	io.Reader
	file *os.File
	gz   *gzip.Reader
}

func (s *source) Close() error {
	if s.gz != nil {
		s.gz.Close()
	}
	if s.file != nil && s.file != os.Stdin {
		return s.file.Close()
	}
	return nil
}

// Open opens path for reading, or stdin when path is "-". Gzipped input is
// detected by its magic bytes and decompressed transparently.
func Open(path string) (io.ReadCloser, error) {
	file := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		file = f
	}

	s := &source{file: file}
	br := bufio.NewReader(file)

	// Check for gzip magic number (0x1f, 0x8b)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		s.gz, err = gzip.NewReader(br)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		s.Reader = s.gz
		return s, nil
	}

	s.Reader = br
	return s, nil
}

// Load reads and decodes the document at path. An empty format is detected
// from the path.
func Load(path string, format Format, p *vcf.Parser) (*vcf.Document, error) {
	if format == "" {
		format = DetectFormat(path)
	}

	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	switch format {
	case FormatJSON:
		return output.ReadJSON(rc)
	case FormatVCF:
		return p.ParseReader(rc)
	}
	return nil, fmt.Errorf("format %q not recognized: use vcf or json", format)
}
