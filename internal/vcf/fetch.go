package vcf

import (
	linq "github.com/ahmetb/go-linq"
)

// Fetch returns the records on chrom that overlap the half-open interval
// [start, end), in their original order. A record starting before start
// still overlaps when its INFO END reaches start, which catches structural
// variants spanning into the window. Fetch scans every record.
func Fetch(records []*Record, chrom string, start, end int64) []*Record {
	var out []*Record
	linq.From(records).
		WhereT(func(r *Record) bool {
			return Overlaps(r, chrom, start, end)
		}).
		ToSlice(&out)
	return out
}

// FetchNormalized is Fetch with both chromosome names passed through
// NormalizeChrom first, so "chr1" and "1" name the same chromosome.
func FetchNormalized(records []*Record, chrom string, start, end int64) []*Record {
	want := NormalizeChrom(chrom)
	var out []*Record
	linq.From(records).
		WhereT(func(r *Record) bool {
			return NormalizeChrom(r.Chrom) == want && spans(r, start, end)
		}).
		ToSlice(&out)
	return out
}

// Overlaps reports whether r falls in [start, end) on chrom.
func Overlaps(r *Record, chrom string, start, end int64) bool {
	return r.Chrom == chrom && spans(r, start, end)
}

func spans(r *Record, start, end int64) bool {
	if r.Pos >= end {
		return false
	}
	if r.Pos >= start {
		return true
	}
	infoEnd, ok := InfoInt(r, "END")
	return ok && infoEnd >= start
}

// InfoInt returns a numeric INFO value as an integer. Lists and
// non-numeric values report false.
func InfoInt(r *Record, key string) (int64, bool) {
	switch v := r.Info[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	}
	return 0, false
}
