package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

// Missing is the VCF sentinel for an absent value.
const Missing = "."

// Type is a value type declared by an INFO or FORMAT header line.
type Type string

// The VCF scalar types.
const (
	Integer   Type = "Integer"
	Float     Type = "Float"
	Character Type = "Character"
	String    Type = "String"
	Flag      Type = "Flag"
)

// scalarDecoders decode one non-missing list element.
var scalarDecoders = map[Type]func(string) (any, error){
	Integer: func(s string) (any, error) {
		return strconv.Atoi(s)
	},
	Float: func(s string) (any, error) {
		return strconv.ParseFloat(s, 64)
	},
	Character: func(s string) (any, error) { return s, nil },
	String:    func(s string) (any, error) { return s, nil },
}

// Decode converts raw into a value of type t.
//
// The sentinel "." yields nil. A comma-separated raw value is decoded element
// by element (the sentinel applies per element) and returned as []any when it
// has more than one element, or as the bare scalar otherwise. Callers must
// handle both shapes. Flag ignores raw and always yields true.
func Decode(t Type, raw string) (any, error) {
	if t == Flag {
		return true, nil
	}
	dec, ok := scalarDecoders[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, string(t))
	}
	if raw == Missing {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) == 1 {
		return dec(raw)
	}

	vals := make([]any, len(parts))
	for i, p := range parts {
		if p == Missing {
			continue
		}
		v, err := dec(p)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// DeriveType guesses the type of a value whose key is not declared in the
// header: empty values are Flags, numeric values are Floats, and everything
// else is a String. Integer is never derived.
func DeriveType(raw string) Type {
	if raw == "" {
		return Flag
	}
	numeric := false
	for _, p := range strings.Split(raw, ",") {
		if p == Missing {
			continue
		}
		if !isNumeric(p) {
			return String
		}
		numeric = true
	}
	if numeric {
		return Float
	}
	return String
}

// isNumeric reports whether s is a finite decimal number. ParseFloat also
// accepts spellings of infinity and NaN, which are not numbers here.
func isNumeric(s string) bool {
	word := strings.ToLower(strings.TrimLeft(s, "+-"))
	if strings.HasPrefix(word, "inf") || word == "nan" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
