// Package output provides record output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-vcf/internal/vcf"
)

// TabWriter writes one tab-delimited summary row per record.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Key",
			"Location",
			"ID",
			"REF",
			"ALT",
			"QUAL",
			"FILTER",
			"Variant_type",
			"Samples",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single record.
func (tw *TabWriter) Write(r *vcf.Record) error {
	location := r.Chrom + ":" + strconv.FormatInt(r.Pos, 10)
	if end, ok := vcf.InfoInt(r, "END"); ok {
		location += "-" + strconv.FormatInt(end, 10)
	}

	qual := "-"
	if r.Qual != nil {
		qual = strconv.FormatFloat(*r.Qual, 'g', -1, 64)
	}

	variantType := string(vcf.VariantTypeOf(r))
	if variantType == "" {
		variantType = "-"
	}

	values := []string{
		r.Key,
		location,
		joinOrDash(r.ID, ";"),
		orDash(r.Ref),
		joinOrDash(r.Alt, ","),
		qual,
		joinOrDash(r.Filter, ";"),
		variantType,
		strconv.Itoa(len(r.Samples)),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinOrDash(list []string, sep string) string {
	if len(list) == 0 {
		return "-"
	}
	return strings.Join(list, sep)
}
