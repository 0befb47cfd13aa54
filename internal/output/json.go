package output

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/inodb/vibe-vcf/internal/vcf"
)

// WriteJSON writes doc as a single JSON object with header and records keys.
func WriteJSON(w io.Writer, doc *vcf.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// ReadJSON decodes a document written by WriteJSON. Decoded INFO and sample
// numbers come back as float64, and every record is re-linked to the header.
func ReadJSON(r io.Reader) (*vcf.Document, error) {
	var doc vcf.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if doc.Header == nil {
		return nil, &vcf.StructuralError{Message: "missing header"}
	}
	for _, rec := range doc.Records {
		rec.Header = doc.Header
	}
	return &doc, nil
}
