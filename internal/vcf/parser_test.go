package vcf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParser_AllRecords(t *testing.T) {
	doc, err := NewParser().Parse(readTestFile(t, "snv.vcf"))
	require.NoError(t, err)

	assert.Len(t, doc.Records, 10)
	assert.Equal(t, "4.1", doc.Header.Version)
	for _, r := range doc.Records {
		assert.Same(t, doc.Header, r.Header)
	}
}

func TestParser_FirstRecord(t *testing.T) {
	doc, err := NewParser().Parse(readTestFile(t, "snv.vcf"))
	require.NoError(t, err)

	r := doc.Records[0]
	assert.Equal(t, "20", r.Chrom)
	assert.Equal(t, int64(14370), r.Pos)
	assert.Equal(t, []string{"rs6054257"}, r.ID)
	assert.Equal(t, "G", r.Ref)
	assert.Equal(t, []string{"A"}, r.Alt)
	require.NotNil(t, r.Qual)
	assert.Equal(t, 29.0, *r.Qual)
	assert.Equal(t, []string{"PASS"}, r.Filter)
	assert.Equal(t, map[string]any{
		"NS": 3,
		"DP": 14,
		"AF": 0.5,
		"DB": true,
		"H2": true,
	}, r.Info)
	assert.Equal(t, []string{"GT", "GQ", "DP", "HQ"}, r.Format)
	assert.Equal(t, Sample{"GT": "0|0", "GQ": 48, "DP": 1, "HQ": []any{51, 51}}, r.Sample("NA00001"))
	assert.Equal(t, Sample{"GT": "1|0", "GQ": 48, "DP": 8, "HQ": []any{51, 51}}, r.Sample("NA00002"))
	assert.Equal(t, "20_14370_G/A", r.Key)
}

func TestParser_MissingValues(t *testing.T) {
	doc, err := NewParser().Parse(readTestFile(t, "snv.vcf"))
	require.NoError(t, err)

	t.Run("missing ALT", func(t *testing.T) {
		r := doc.Records[3]
		assert.Nil(t, r.Alt)
		assert.Equal(t, "20_1230237_T/", r.Key)
	})

	t.Run("missing QUAL FILTER and sample", func(t *testing.T) {
		r := doc.Records[5]
		assert.Equal(t, []string{"rs100", "rs101"}, r.ID)
		assert.Nil(t, r.Qual)
		assert.Nil(t, r.Filter)
		assert.NotNil(t, r.Sample("NA00001"))
		assert.Nil(t, r.Sample("NA00002"))
	})

	t.Run("short line", func(t *testing.T) {
		r := doc.Records[9]
		assert.Equal(t, Sample{"GT": "1/1"}, r.Sample("NA00001"))
		_, present := r.Samples["NA00002"]
		assert.False(t, present)
	})

	t.Run("multi-allelic list values", func(t *testing.T) {
		r := doc.Records[2]
		assert.Equal(t, []string{"G", "T"}, r.Alt)
		assert.Equal(t, []any{0.333, 0.667}, r.Info["AF"])
		assert.Equal(t, "T", r.Info["AA"])
	})
}

func TestParser_DerivedTypeWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := NewParser().SetLogger(zap.New(core))

	doc, err := p.Parse(readTestFile(t, "snv.vcf"))
	require.NoError(t, err)

	r := doc.Records[8]
	assert.Equal(t, 59.5, r.Info["MQ"])
	assert.Equal(t, true, r.Info["SOMATIC"])

	warnings := logs.FilterMessage("type not defined in header, derived from value").All()
	require.Len(t, warnings, 1)
	fields := warnings[0].ContextMap()
	assert.Equal(t, "MQ", fields["key"])
	assert.Equal(t, "Float", fields["type"])
	assert.Equal(t, "59.5", fields["value"])
}

func TestParser_Pure(t *testing.T) {
	text := readTestFile(t, "snv.vcf")
	p := NewParser()

	first, err := p.Parse(text)
	require.NoError(t, err)
	second, err := p.Parse(text)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParser_BadVersion(t *testing.T) {
	doc, err := NewParser().Parse(readTestFile(t, "bad-version.vcf"))
	assert.Nil(t, doc)

	var verr *VersionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "3.3", verr.Version)
	assert.Contains(t, err.Error(), "version")
}

func TestParser_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty document", ""},
		{"data without header", "20\t100\t.\tA\tG\t.\t.\t.\n"},
		{"no column line", "##fileformat=VCFv4.2\n##source=x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().Parse(tt.text)
			var serr *StructuralError
			var verr *VersionError
			assert.True(t, errors.As(err, &serr) || errors.As(err, &verr), "got %v", err)
		})
	}
}

func TestParser_DecodeError(t *testing.T) {
	text := "##fileformat=VCFv4.2\n" +
		"##INFO=<ID=DP,Number=1,Type=Integer,Description=\"Depth\">\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"1\t100\t.\tA\tG\t.\t.\tDP=deep\n"

	_, err := NewParser().Parse(text)
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, 4, derr.Line)
	assert.Equal(t, ColInfo, derr.Column)
	assert.Equal(t, "DP", derr.Key)
	assert.Equal(t, "deep", derr.Value)

	text = strings.Replace(text, "1\t100", "1\tabc", 1)
	_, err = NewParser().Parse(text)
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, ColPos, derr.Column)
}

func TestParser_UnknownDeclaredType(t *testing.T) {
	text := "##fileformat=VCFv4.2\n" +
		"##INFO=<ID=XX,Number=1,Type=Blob,Description=\"Odd\">\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"1\t100\t.\tA\tG\t.\t.\tXX=1\n"

	_, err := NewParser().Parse(text)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestParser_CRLFAndBlankLines(t *testing.T) {
	text := "##fileformat=VCFv4.0\r\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\r\n" +
		"1\t100\t.\tA\tG\t10\tPASS\t.\r\n" +
		"\r\n" +
		"1\t200\t.\tC\tT\t10\tPASS\t.\r\n"

	doc, err := NewParser().Parse(text)
	require.NoError(t, err)
	require.Len(t, doc.Records, 2)
	assert.Equal(t, int64(200), doc.Records[1].Pos)
	assert.Nil(t, doc.Records[1].Info)
}

func TestParser_Overrides(t *testing.T) {
	p := NewParser().
		SetPos(func(raw string, c *DecodeContext) (int64, error) {
			pos, err := DecodePos(raw, c)
			return pos - 1, err
		}).
		SetID(func(raw string, _ *DecodeContext) ([]string, error) {
			return []string{raw}, nil
		}).
		SetKey(func(r *Record) string {
			return NormalizeChrom(r.Chrom) + ":" + r.Ref
		})

	doc, err := p.Parse(readTestFile(t, "snv.vcf"))
	require.NoError(t, err)

	r := doc.Records[5]
	assert.Equal(t, int64(1234999), r.Pos)
	assert.Equal(t, []string{"rs100;rs101"}, r.ID)
	assert.Equal(t, "20:C", r.Key)

	// Other instances keep the standard decoders.
	doc, err = NewParser().Parse(readTestFile(t, "snv.vcf"))
	require.NoError(t, err)
	assert.Equal(t, int64(1235000), doc.Records[5].Pos)
}

func TestParser_DecodersAccessor(t *testing.T) {
	p := NewParser()
	d := p.Decoders()
	require.NotNil(t, d.Pos)

	pos, err := d.Pos("42", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), pos)

	called := false
	p.SetChrom(func(raw string, _ *DecodeContext) (string, error) {
		called = true
		return raw, nil
	})
	_, err = p.Decoders().Chrom("1", nil)
	require.NoError(t, err)
	assert.True(t, called)
}

func BenchmarkParse(b *testing.B) {
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "snv.vcf"))
	if err != nil {
		b.Skip("fixture not found")
	}
	text := string(data)
	p := NewParser()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Parse(text); err != nil {
			b.Fatal(err)
		}
	}
}

// readTestFile returns the contents of a file in the testdata directory.
func readTestFile(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(findTestFile(t, name))
	require.NoError(t, err)
	return string(data)
}

// findTestFile locates a test file in the testdata directory.
func findTestFile(t *testing.T, name string) string {
	t.Helper()

	paths := []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	t.Fatalf("Test file not found: %s", name)
	return ""
}
