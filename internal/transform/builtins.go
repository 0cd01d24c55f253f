package transform

import (
	"strconv"
	"strings"

	"mitoref/internal/contig"
	"mitoref/pkg/records"
)

// Built-in derivations available to dataset configs by name. They only read
// the locus/alleles columns every loader guarantees.
func init() {
	Register("variant_id", variantID)
	Register("contig", contigOf)
	Register("position", position)
	Register("ref_allele", refAllele)
	Register("alt_alleles", altAlleles)
}

// variantID renders "chrM:152:T>C" style identifiers.
func variantID(r records.Record) any {
	locus := r.String("locus")
	alleles := r.Strings("alleles")
	if locus == "" || len(alleles) == 0 {
		return nil
	}
	if len(alleles) == 1 {
		return locus + ":" + alleles[0]
	}
	return locus + ":" + alleles[0] + ">" + strings.Join(alleles[1:], ",")
}

func contigOf(r records.Record) any {
	if locus := r.String("locus"); locus != "" {
		return contig.OfLocus(locus)
	}
	return nil
}

func position(r records.Record) any {
	locus := r.String("locus")
	i := strings.LastIndexByte(locus, ':')
	if i < 0 {
		return nil
	}
	pos, err := strconv.ParseInt(locus[i+1:], 10, 64)
	if err != nil {
		return nil
	}
	return pos
}

func refAllele(r records.Record) any {
	if alleles := r.Strings("alleles"); len(alleles) > 0 {
		return alleles[0]
	}
	return nil
}

func altAlleles(r records.Record) any {
	if alleles := r.Strings("alleles"); len(alleles) > 1 {
		return append([]string{}, alleles[1:]...)
	}
	return nil
}
