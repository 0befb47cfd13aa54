package output

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/inodb/vibe-vcf/internal/vcf"
)

// vtypeLine declares the INFO key the VCFWriter adds for the derived type.
const vtypeLine = `##INFO=<ID=VTYPE,Number=1,Type=String,Description="Derived variant type (SNV, SV or INDEL) from vibe-vcf">`

// VCFWriter re-encodes decoded records as VCF text. Each record gets a VTYPE
// INFO entry holding its derived variant type.
type VCFWriter struct {
	w      *bufio.Writer
	header *vcf.Header
}

// NewVCFWriter creates a new VCF output writer for records decoded with h.
func NewVCFWriter(w io.Writer, h *vcf.Header) *VCFWriter {
	return &VCFWriter{
		w:      bufio.NewWriter(w),
		header: h,
	}
}

// WriteHeader writes the original header lines with the VTYPE INFO line
// inserted before #CHROM.
func (vw *VCFWriter) WriteHeader() error {
	for _, line := range vw.header.Raw {
		if strings.HasPrefix(line, "#CHROM") {
			if _, err := vw.w.WriteString(vtypeLine + "\n"); err != nil {
				return err
			}
		}
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Write writes a single record as a VCF data line.
func (vw *VCFWriter) Write(r *vcf.Record) error {
	qual := vcf.Missing
	if r.Qual != nil {
		qual = strconv.FormatFloat(*r.Qual, 'g', -1, 64)
	}

	pos := vcf.Missing
	if r.Pos != 0 {
		pos = strconv.FormatInt(r.Pos, 10)
	}

	info := vw.formatInfo(r)
	if vt := vcf.VariantTypeOf(r); vt != vcf.TypeNone {
		if info == vcf.Missing {
			info = ""
		} else {
			info += ";"
		}
		info += "VTYPE=" + string(vt)
	}

	cols := []string{
		orMissing(r.Chrom),
		pos,
		joinOrMissing(r.ID, ";"),
		orMissing(r.Ref),
		joinOrMissing(r.Alt, ","),
		qual,
		joinOrMissing(r.Filter, ";"),
		info,
	}

	if len(vw.header.Columns) >= vcf.NumStandardColumns {
		cols = append(cols, joinOrMissing(r.Format, ":"))
		for _, name := range vw.header.SampleNames {
			cols = append(cols, formatSample(r.Sample(name), r.Format))
		}
	}

	_, err := vw.w.WriteString(strings.Join(cols, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (vw *VCFWriter) Flush() error {
	return vw.w.Flush()
}

// formatInfo writes INFO entries in header declaration order, followed by
// undeclared keys in sorted order.
func (vw *VCFWriter) formatInfo(r *vcf.Record) string {
	if len(r.Info) == 0 {
		return vcf.Missing
	}

	keys := make([]string, 0, len(r.Info))
	for _, def := range vw.header.Info {
		if _, ok := r.Info[def.ID]; ok && !slices.Contains(keys, def.ID) {
			keys = append(keys, def.ID)
		}
	}
	var extra []string
	for k := range r.Info {
		if !slices.Contains(keys, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	keys = append(keys, extra...)

	parts := make([]string, len(keys))
	for i, k := range keys {
		if v := r.Info[k]; v == true {
			parts[i] = k
		} else {
			parts[i] = k + "=" + FormatValue(v)
		}
	}
	return strings.Join(parts, ";")
}

func formatSample(s vcf.Sample, format []string) string {
	if s == nil {
		return vcf.Missing
	}
	vals := make([]string, 0, len(format))
	for _, tag := range format {
		v, ok := s[tag]
		if !ok {
			break
		}
		vals = append(vals, FormatValue(v))
	}
	if len(vals) == 0 {
		return vcf.Missing
	}
	return strings.Join(vals, ":")
}

// FormatValue encodes a decoded value back into its VCF text form.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return vcf.Missing
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = FormatValue(e)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

func orMissing(s string) string {
	if s == "" {
		return vcf.Missing
	}
	return s
}

func joinOrMissing(list []string, sep string) string {
	if len(list) == 0 {
		return vcf.Missing
	}
	return strings.Join(list, sep)
}
