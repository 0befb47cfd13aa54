package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-vcf/internal/vcf"
)

func TestJSON_PassThrough(t *testing.T) {
	doc := parseTestFile(t, "snv.vcf")

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, doc))

	got, err := ReadJSON(&buf)
	require.NoError(t, err)

	assert.Equal(t, doc.Header.Version, got.Header.Version)
	assert.Equal(t, doc.Header.SampleNames, got.Header.SampleNames)
	require.Len(t, got.Records, len(doc.Records))

	af := got.Header.InfoDef("AF")
	require.NotNil(t, af)
	assert.Equal(t, vcf.Number{Symbol: "A"}, af.Number)

	r := got.Records[0]
	assert.Same(t, got.Header, r.Header)
	assert.Equal(t, doc.Records[0].Key, r.Key)
	assert.Equal(t, []string{"A"}, r.Alt)
	assert.Equal(t, float64(14), r.Info["DP"])
	assert.Equal(t, "0|0", r.Sample("NA00001")["GT"])
	assert.Equal(t, vcf.VariantTypeOf(doc.Records[0]), vcf.VariantTypeOf(r))
}

func TestReadJSON_Errors(t *testing.T) {
	_, err := ReadJSON(strings.NewReader("{not json"))
	assert.Error(t, err)

	_, err = ReadJSON(strings.NewReader(`{"records": []}`))
	var serr *vcf.StructuralError
	assert.ErrorAs(t, err, &serr)
}
