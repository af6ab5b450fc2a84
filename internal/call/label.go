package call

import (
	"fmt"
	"sort"
	"strings"
)

// ParentLabel marks a well whose calls all match the reference.
const ParentLabel = "#PARENT#"

// Standard genetic code: DNA codon to amino acid (single letter).
var codonTable = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
	"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',

	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',

	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',

	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

// TranslateCodon translates a DNA codon to its amino acid.
// Returns 'X' for unknown codons and '*' for stop codons.
func TranslateCodon(codon string) byte {
	if len(codon) != 3 {
		return 'X'
	}
	if aa, ok := codonTable[codon]; ok {
		return aa
	}
	return 'X'
}

// Label renders the nucleotide-level variant string for a well:
// underscore-joined "<ref><pos><called>" terms for every mutant call,
// with "DEL" standing in for the deletion symbol, or ParentLabel when
// nothing was called mutant.
func Label(calls []VariantCall) string {
	var terms []string
	for _, vc := range calls {
		if vc.Status != StatusMutant {
			continue
		}
		called := vc.Called
		if called == "-" {
			called = "DEL"
		}
		terms = append(terms, fmt.Sprintf("%c%d%s", vc.Ref, vc.Pos, called))
	}
	if len(terms) == 0 {
		return ParentLabel
	}
	return strings.Join(terms, "_")
}

// AALabel renders the protein-level variant string assuming the offset
// reference positions are in frame (position 1 starts a codon). Returns
// ParentLabel for all-WT wells, "Deletion" when any mutant call is a
// deletion (the frame shifts and per-codon naming stops being
// meaningful), and underscore-joined "<refAA><codon><altAA>" terms
// otherwise.
func AALabel(refSeq []byte, calls []VariantCall, offset int) string {
	type edit struct {
		pos  int // 0-based position within refSeq
		base byte
	}
	var edits []edit
	for _, vc := range calls {
		if vc.Status != StatusMutant {
			continue
		}
		if vc.Called == "-" {
			return "Deletion"
		}
		edits = append(edits, edit{pos: vc.Pos - 1 - offset, base: vc.Called[0]})
	}
	if len(edits) == 0 {
		return ParentLabel
	}

	mutated := make([]byte, len(refSeq))
	copy(mutated, refSeq)
	codons := make(map[int]bool)
	for _, e := range edits {
		if e.pos < 0 || e.pos >= len(mutated) {
			continue
		}
		mutated[e.pos] = e.base
		codons[e.pos/3] = true
	}

	ordered := make([]int, 0, len(codons))
	for ci := range codons {
		ordered = append(ordered, ci)
	}
	sort.Ints(ordered)

	var terms []string
	for _, ci := range ordered {
		start := ci * 3
		if start+3 > len(refSeq) {
			continue
		}
		refAA := TranslateCodon(string(refSeq[start : start+3]))
		altAA := TranslateCodon(string(mutated[start : start+3]))
		terms = append(terms, fmt.Sprintf("%c%d%c", refAA, ci+1, altAA))
	}
	if len(terms) == 0 {
		return ParentLabel
	}
	return strings.Join(terms, "_")
}
