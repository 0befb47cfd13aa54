package duckdb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-vcf/internal/vcf"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecords() []*vcf.Record {
	qual := 29.0
	records := []*vcf.Record{
		{Chrom: "20", Pos: 14370, ID: []string{"rs6054257"}, Ref: "G", Alt: []string{"A"}, Qual: &qual, Filter: []string{"PASS"}},
		{Chrom: "1", Pos: 50, Ref: "N", Alt: []string{"<DEL>"}, Info: map[string]any{"SVTYPE": "DEL", "END": 150}},
		{Chrom: "1", Pos: 150, Ref: "AT", Alt: []string{"A"}},
		{Chrom: "1", Pos: 10, Ref: "AT", Alt: []string{"GC"}},
	}
	for _, r := range records {
		r.Key = vcf.DefaultKey(r)
	}
	return records
}

func TestOpenClose(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "records.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestWriteAndLookupRecords(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteRecords("a.vcf", testRecords()))

	got, err := s.LookupKey("20_14370_G/A")
	require.NoError(t, err)
	require.Len(t, got, 1)

	r := got[0]
	assert.Equal(t, "a.vcf", r.Source)
	assert.Equal(t, "20", r.Chrom)
	assert.Equal(t, int64(14370), r.Pos)
	assert.Equal(t, "rs6054257", r.ID)
	assert.Equal(t, "A", r.Alt)
	require.NotNil(t, r.Qual)
	assert.Equal(t, 29.0, *r.Qual)
	assert.Equal(t, "PASS", r.Filter)
	assert.Equal(t, "SNV", r.VariantType)
	assert.Nil(t, r.End)

	got, err = s.LookupKey("1_50_N/<DEL>")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Qual)
	require.NotNil(t, got[0].End)
	assert.Equal(t, int64(150), *got[0].End)

	got, err = s.LookupKey("missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriteRecords_DeduplicatesAndSeparatesSources(t *testing.T) {
	s := openInMemory(t)

	records := testRecords()
	require.NoError(t, s.WriteRecords("a.vcf", append(records, records[0])))
	require.NoError(t, s.WriteRecords("b.vcf", records[:1]))

	got, err := s.LookupKey("20_14370_G/A")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a.vcf", got[0].Source)
	assert.Equal(t, "b.vcf", got[1].Source)

	require.NoError(t, s.ClearSource("b.vcf"))
	got, err = s.LookupKey("20_14370_G/A")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCountByType(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteRecords("a.vcf", testRecords()))

	counts, err := s.CountByType()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"SNV": 1, "SV": 1, "INDEL": 1, "": 1}, counts)

	require.NoError(t, s.ClearRecords())
	counts, err = s.CountByType()
	require.NoError(t, err)
	assert.Empty(t, counts)
}

// recordFeed returns a next function yielding records, then failing with
// fail when it is non-nil.
func recordFeed(records []*vcf.Record, fail error) func() (*vcf.Record, error) {
	i := 0
	return func() (*vcf.Record, error) {
		if i < len(records) {
			i++
			return records[i-1], nil
		}
		return nil, fail
	}
}

func TestReplaceSource(t *testing.T) {
	s := openInMemory(t)
	records := testRecords()

	// Duplicates across batches are written once.
	n, err := s.ReplaceSource("a.vcf", 2, recordFeed(append(records, records[0], records[1]), nil))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	counts, err := s.CountByType()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"SNV": 1, "SV": 1, "INDEL": 1, "": 1}, counts)

	n, err = s.ReplaceSource("a.vcf", 10, recordFeed(records[:1], nil))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	counts, err = s.CountByType()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"SNV": 1}, counts)
}

func TestReplaceSource_FailureKeepsPreviousRows(t *testing.T) {
	s := openInMemory(t)
	records := testRecords()

	_, err := s.ReplaceSource("a.vcf", 10, recordFeed(records, nil))
	require.NoError(t, err)

	// The failing load has already flushed one batch when the error arrives.
	boom := errors.New("decode failed")
	_, err = s.ReplaceSource("a.vcf", 1, recordFeed(records[:2], boom))
	assert.ErrorIs(t, err, boom)

	counts, err := s.CountByType()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"SNV": 1, "SV": 1, "INDEL": 1, "": 1}, counts)

	got, err := s.LookupKey("20_14370_G/A")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.vcf", got[0].Source)
}

func TestWriteRecords_Empty(t *testing.T) {
	s := openInMemory(t)
	assert.NoError(t, s.WriteRecords("a.vcf", nil))
}

func TestSourceFingerprint(t *testing.T) {
	s := openInMemory(t)

	path := filepath.Join(t.TempDir(), "in.vcf")
	require.NoError(t, os.WriteFile(path, []byte("##fileformat=VCFv4.2\n"), 0644))

	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(21), fp.Size)

	loaded, err := s.SourceLoaded(fp)
	require.NoError(t, err)
	assert.False(t, loaded)

	require.NoError(t, s.MarkSourceLoaded(fp, 3))
	loaded, err = s.SourceLoaded(fp)
	require.NoError(t, err)
	assert.True(t, loaded)

	changed := fp
	changed.ModTime = fp.ModTime.Add(time.Second)
	loaded, err = s.SourceLoaded(changed)
	require.NoError(t, err)
	assert.False(t, loaded)
}

func TestStatFile_Missing(t *testing.T) {
	_, err := StatFile(filepath.Join(t.TempDir(), "nope.vcf"))
	assert.Error(t, err)
}
