package vcf

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		raw  string
		want any
	}{
		{"integer", Integer, "42", 42},
		{"negative integer", Integer, "-7", -7},
		{"integer list", Integer, "1,2,3", []any{1, 2, 3}},
		{"integer list with missing", Integer, "1,.,3", []any{1, nil, 3}},
		{"float", Float, "0.5", 0.5},
		{"float exponent", Float, "1e-3", 0.001},
		{"float list", Float, "0.25,0.75", []any{0.25, 0.75}},
		{"character", Character, "A", "A"},
		{"character list", Character, "A,C", []any{"A", "C"}},
		{"string", String, "hello", "hello"},
		{"string list", String, "a,b", []any{"a", "b"}},
		{"missing integer", Integer, ".", nil},
		{"missing string", String, ".", nil},
		{"flag ignores value", Flag, "anything", true},
		{"flag empty", Flag, "", true},
		{"flag missing", Flag, ".", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.typ, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	ints := []int{0, 1, -12, 123456}
	for _, n := range ints {
		got, err := Decode(Integer, strconv.Itoa(n))
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	for _, f := range []string{"0.5", "3.25", "-1.125", "100"} {
		got, err := Decode(Float, f)
		require.NoError(t, err)
		back, err := Decode(Float, strconv.FormatFloat(got.(float64), 'g', -1, 64))
		require.NoError(t, err)
		assert.Equal(t, got, back)
	}

	for _, s := range []string{"A", "hello world", "x|y"} {
		got, err := Decode(String, s)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(Integer, "abc")
	assert.Error(t, err)

	_, err = Decode(Integer, "1,x")
	assert.Error(t, err)

	_, err = Decode(Float, "not-a-number")
	assert.Error(t, err)

	_, err = Decode(Type("Blob"), "1")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestDeriveType(t *testing.T) {
	tests := []struct {
		raw  string
		want Type
	}{
		{"", Flag},
		{"1", Float},
		{"59.5", Float},
		{"0.1,0.2", Float},
		{"0.1,.", Float},
		{"abc", String},
		{"1,abc", String},
		{".", String},
		{"PASS", String},
		{"inf", String},
		{"-Inf", String},
		{"Infinity", String},
		{"NaN", String},
		{"1,nan", String},
		{"info", String},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveType(tt.raw))
		})
	}
}
