// Package contig holds the fixed chromosome-naming conventions used when
// importing variant data. Upstream VCFs label chromosomes with bare GRCh37
// style names ("1", "X", "MT"); the reference datasets use the chr-prefixed
// GRCh38 convention ("chr1", "chrX", "chrM").
package contig

import "strings"

// Mito is the canonical mitochondrial contig label after recoding.
const Mito = "chrM"

// recoding maps bare chromosome labels to the chr-prefixed convention. The
// map is applied only during VCF parsing; tabular inputs are expected to
// carry canonical labels already.
var recoding = map[string]string{
	"1": "chr1", "2": "chr2", "3": "chr3", "4": "chr4", "5": "chr5",
	"6": "chr6", "7": "chr7", "8": "chr8", "9": "chr9", "10": "chr10",
	"11": "chr11", "12": "chr12", "13": "chr13", "14": "chr14", "15": "chr15",
	"16": "chr16", "17": "chr17", "18": "chr18", "19": "chr19", "20": "chr20",
	"21": "chr21", "22": "chr22", "X": "chrX", "Y": "chrY", "MT": "chrM",
	"NW_009646201.1": "chr1",
}

// Recode maps a bare chromosome label to its canonical name. Labels without
// a mapping (including ones already canonical) pass through unchanged.
func Recode(label string) string {
	if canonical, ok := recoding[label]; ok {
		return canonical
	}
	return label
}

// OfLocus extracts the contig part of a "contig:position" locus string.
// Returns the whole string when no separator is present.
func OfLocus(locus string) string {
	if i := strings.LastIndexByte(locus, ':'); i >= 0 {
		return locus[:i]
	}
	return locus
}
