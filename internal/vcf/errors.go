package vcf

import (
	"errors"
	"fmt"
)

// ErrUnknownType is returned when a header declares a Type that has no decoder.
var ErrUnknownType = errors.New("unknown vcf field type")

// VersionError reports a fileformat version outside the supported set.
type VersionError struct {
	Version string
}

func (e *VersionError) Error() string {
	if e.Version == "" {
		return "vcf version error: missing ##fileformat line"
	}
	return fmt.Sprintf("vcf version error: unsupported version %q (want one of %v)", e.Version, SupportedVersions)
}

// StructuralError reports a document whose overall layout is unusable,
// such as a missing header block or column-definition line.
type StructuralError struct {
	Message string
}

func (e *StructuralError) Error() string {
	return "vcf structural error: " + e.Message
}

// HeaderParseError reports a meta-information line that matched a field
// category but could not be parsed.
type HeaderParseError struct {
	Line     int
	Category string
	Text     string
}

func (e *HeaderParseError) Error() string {
	return fmt.Sprintf("vcf header error at line %d: %s line has no <...> body: %q", e.Line, e.Category, e.Text)
}

// DecodeError represents a value that could not be decoded, with line context.
type DecodeError struct {
	Line   int
	Column string
	Key    string
	Value  string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("vcf parse error at line %d: column %s key %s: cannot decode %q: %v", e.Line, e.Column, e.Key, e.Value, e.Err)
	}
	return fmt.Sprintf("vcf parse error at line %d: column %s: cannot decode %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
