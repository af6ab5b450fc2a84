package call

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateCodon(t *testing.T) {
	assert.Equal(t, byte('M'), TranslateCodon("ATG"))
	assert.Equal(t, byte('*'), TranslateCodon("TAA"))
	assert.Equal(t, byte('K'), TranslateCodon("AAA"))
	assert.Equal(t, byte('X'), TranslateCodon("AT"))
	assert.Equal(t, byte('X'), TranslateCodon("ATN"))
}

func mutant(pos int, ref byte, called string, freq float64) VariantCall {
	return VariantCall{Pos: pos, Ref: ref, Called: called, Frequency: freq, Status: StatusMutant}
}

func wt(pos int, ref byte) VariantCall {
	return VariantCall{Pos: pos, Ref: ref, Called: string(ref), Status: StatusWT}
}

func TestLabel(t *testing.T) {
	calls := []VariantCall{
		wt(1, 'A'),
		mutant(2, 'T', "G", 0.7),
		wt(3, 'G'),
		mutant(5, 'C', "-", 0.6),
	}

	assert.Equal(t, "T2G_C5DEL", Label(calls))
}

func TestLabel_Parent(t *testing.T) {
	calls := []VariantCall{wt(1, 'A'), wt(2, 'T'), wt(3, 'G')}
	assert.Equal(t, ParentLabel, Label(calls))
	assert.Equal(t, ParentLabel, Label(nil))
}

func TestAALabel_Substitution(t *testing.T) {
	// ATG GCT AAA: M A K; mutate GCT -> GTT gives M V K
	ref := []byte("ATGGCTAAA")
	calls := []VariantCall{mutant(5, 'C', "T", 0.9)}

	assert.Equal(t, "A2V", AALabel(ref, calls, 0))
}

func TestAALabel_TwoEditsSameCodon(t *testing.T) {
	// both edits land in codon 2: GCT -> TGT, A2C as one term
	ref := []byte("ATGGCTAAA")
	calls := []VariantCall{
		mutant(4, 'G', "T", 0.9),
		mutant(5, 'C', "G", 0.9),
	}

	assert.Equal(t, "A2C", AALabel(ref, calls, 0))
}

func TestAALabel_Deletion(t *testing.T) {
	ref := []byte("ATGGCTAAA")
	calls := []VariantCall{mutant(5, 'C', "-", 0.9)}

	assert.Equal(t, "Deletion", AALabel(ref, calls, 0))
}

func TestAALabel_Parent(t *testing.T) {
	ref := []byte("ATGGCTAAA")
	assert.Equal(t, ParentLabel, AALabel(ref, []VariantCall{wt(1, 'A')}, 0))
}

func TestAALabel_OffsetReconciled(t *testing.T) {
	// calls report offset positions; the label maps back into the frame
	ref := []byte("ATGGCTAAA")
	calls := []VariantCall{mutant(105, 'C', "T", 0.9)}

	assert.Equal(t, "A2V", AALabel(ref, calls, 100))
}
