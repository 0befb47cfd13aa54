package main

import (
	"fmt"
	"io"
	"os"

	"github.com/inodb/vibe-vcf/internal/output"
	"github.com/inodb/vibe-vcf/internal/vcf"
)

// Output formats accepted by --format.
const (
	formatTab  = "tab"
	formatVCF  = "vcf"
	formatJSON = "json"
)

// recordWriter is implemented by the streaming writers in internal/output.
type recordWriter interface {
	WriteHeader() error
	Write(r *vcf.Record) error
	Flush() error
}

func newRecordWriter(w io.Writer, format string, h *vcf.Header) (recordWriter, error) {
	switch format {
	case formatTab:
		return output.NewTabWriter(w), nil
	case formatVCF:
		return output.NewVCFWriter(w, h), nil
	}
	return nil, &usageError{err: fmt.Errorf("output format %q not recognized: use tab, vcf or json", format)}
}

// writeDocument writes doc in the requested format.
func writeDocument(w io.Writer, format string, doc *vcf.Document) error {
	if format == formatJSON {
		return output.WriteJSON(w, doc)
	}

	rw, err := newRecordWriter(w, format, doc.Header)
	if err != nil {
		return err
	}
	if err := rw.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range doc.Records {
		if err := rw.Write(r); err != nil {
			return fmt.Errorf("writing record %s: %w", r.Key, err)
		}
	}
	return rw.Flush()
}

// createOutput returns stdout for an empty path or "-".
func createOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
