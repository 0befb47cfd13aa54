package vcf

import (
	"maps"
	"slices"
	"strings"
)

// VariantType is the derived category of a record.
type VariantType string

// Variant categories, in classification precedence.
const (
	TypeSNV   VariantType = "SNV"
	TypeSV    VariantType = "SV"
	TypeIndel VariantType = "INDEL"
	TypeNone  VariantType = ""
)

// snvBases are the alleles accepted for a single nucleotide variant.
const snvBases = "ACGT"

// IsSNV returns true if the reference is at most one base and every
// non-missing alternate allele is a single base. Multi-allelic sites qualify
// when each allele does.
func IsSNV(r *Record) bool {
	if len(r.Ref) > 1 {
		return false
	}
	for _, a := range r.Alt {
		if a == Missing {
			continue
		}
		if len(a) != 1 || !strings.Contains(snvBases, a) {
			return false
		}
	}
	return true
}

// IsSV returns true if the record has an SVTYPE INFO entry.
func IsSV(r *Record) bool {
	_, ok := r.Info["SVTYPE"]
	return ok
}

// IsCNV returns true if the record's SVTYPE is CNV.
func IsCNV(r *Record) bool {
	return r.Info["SVTYPE"] == "CNV"
}

// IsDeletion returns true for a non-structural record with a single
// alternate allele shorter than the reference.
func IsDeletion(r *Record) bool {
	if IsSV(r) || len(r.Alt) != 1 {
		return false
	}
	return len(r.Ref) > len(r.Alt[0])
}

// IsInsertion returns true for a non-structural record whose first alternate
// allele is longer than the reference. Only the first allele is compared,
// however many there are.
func IsInsertion(r *Record) bool {
	if IsSV(r) || len(r.Alt) == 0 {
		return false
	}
	return len(r.Ref) < len(r.Alt[0])
}

// IsIndel returns true if the record is an insertion or a deletion.
func IsIndel(r *Record) bool {
	return IsDeletion(r) || IsInsertion(r)
}

// VariantTypeOf returns the first matching category of SNV, SV and INDEL,
// or TypeNone.
func VariantTypeOf(r *Record) VariantType {
	switch {
	case IsSNV(r):
		return TypeSNV
	case IsSV(r):
		return TypeSV
	case IsIndel(r):
		return TypeIndel
	}
	return TypeNone
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func NormalizeChrom(chrom string) string {
	if len(chrom) > 3 && chrom[:3] == "chr" {
		return chrom[3:]
	}
	return chrom
}

// SplitMultiAllelic splits a multi-allelic record into one record per
// alternate allele. The split records get a DefaultKey identity; INFO and
// sample maps are copied shallowly.
func SplitMultiAllelic(r *Record) []*Record {
	if len(r.Alt) <= 1 {
		return []*Record{r}
	}

	records := make([]*Record, len(r.Alt))
	for i, alt := range r.Alt {
		split := *r
		split.Alt = []string{alt}
		split.ID = slices.Clone(r.ID)
		split.Filter = slices.Clone(r.Filter)
		split.Info = maps.Clone(r.Info)
		split.Samples = maps.Clone(r.Samples)
		split.Key = DefaultKey(&split)
		records[i] = &split
	}
	return records
}
