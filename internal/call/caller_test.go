package call

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateseq/plateseq/internal/seq"
	"github.com/plateseq/plateseq/internal/well"
)

var wellA1 = seq.PlateWell{Plate: 1, Well: seq.WellCoord{Row: 'A', Col: 1}}

// pileupFromRows builds a pileup directly from prealigned rows, one
// symbol per reference position.
func pileupFromRows(ref string, rows ...string) *well.Pileup {
	p := &well.Pileup{
		Ref:    &seq.Reference{Name: "ref", Seq: []byte(ref)},
		Counts: make([][5]int, len(ref)),
		Depth:  make([]int, len(ref)),
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(ref); i++ {
			if k := well.SymbolIndex(row[i]); k >= 0 {
				p.Counts[i][k]++
				p.Depth[i]++
			}
		}
	}
	return p
}

func repeat(row string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = row
	}
	return out
}

func TestCall_AllWildType(t *testing.T) {
	// ten reads identical to the reference: every position WT, depth 10
	p := pileupFromRows("ATG", repeat("ATG", 10)...)
	c := &Caller{Threshold: 0.5, MinDepth: 1}

	calls := c.Call(wellA1, p)
	require.Len(t, calls, 3)

	for i, vc := range calls {
		assert.Equal(t, StatusWT, vc.Status, "position %d", i+1)
		assert.Equal(t, 10, vc.Depth)
		assert.Equal(t, i+1, vc.Pos)
		assert.Equal(t, string(p.Ref.Seq[i]), vc.Called)
		assert.InDelta(t, 1.0, vc.Frequency, 1e-9)
	}
}

func TestCall_MajorityMutant(t *testing.T) {
	// 8 of 10 reads carry ATA, threshold 0.5: position 3 mutant A at 0.8
	rows := append(repeat("ATA", 8), repeat("ATG", 2)...)
	p := pileupFromRows("ATG", rows...)
	c := &Caller{Threshold: 0.5, MinDepth: 1}

	calls := c.Call(wellA1, p)
	require.Len(t, calls, 3)

	assert.Equal(t, StatusWT, calls[0].Status)
	assert.Equal(t, StatusWT, calls[1].Status)

	assert.Equal(t, StatusMutant, calls[2].Status)
	assert.Equal(t, "A", calls[2].Called)
	assert.InDelta(t, 0.8, calls[2].Frequency, 1e-9)
	assert.Equal(t, 10, calls[2].Depth)
}

func TestCall_BelowThresholdIsWildType(t *testing.T) {
	// same disagreement but threshold 0.9: sub-threshold signal is
	// treated as sequencing noise and the position stays WT
	rows := append(repeat("ATA", 8), repeat("ATG", 2)...)
	p := pileupFromRows("ATG", rows...)
	c := &Caller{Threshold: 0.9, MinDepth: 1}

	calls := c.Call(wellA1, p)
	require.Len(t, calls, 3)

	assert.Equal(t, StatusWT, calls[2].Status)
	assert.Equal(t, "G", calls[2].Called)
}

func TestCall_ThresholdMonotonicity(t *testing.T) {
	rows := []string{"ATA", "ATA", "ATA", "CTG", "CTG", "ATG", "ATG", "ATG", "ATG", "ATG"}
	p := pileupFromRows("ATG", rows...)

	mutants := func(threshold float64) int {
		c := &Caller{Threshold: threshold, MinDepth: 1}
		n := 0
		for _, vc := range c.Call(wellA1, p) {
			if vc.Status == StatusMutant {
				n++
			}
		}
		return n
	}

	prev := mutants(0.05)
	for _, th := range []float64{0.1, 0.2, 0.3, 0.5, 0.8, 0.95} {
		cur := mutants(th)
		assert.LessOrEqual(t, cur, prev, "raising the threshold must never add mutant calls (%g)", th)
		prev = cur
	}
}

func TestCall_ZeroDepthIsNoCall(t *testing.T) {
	p := pileupFromRows("ATG")
	c := &Caller{Threshold: 0.5, MinDepth: 1}

	calls := c.Call(wellA1, p)
	require.Len(t, calls, 3)

	for _, vc := range calls {
		assert.Equal(t, StatusNoCall, vc.Status)
		assert.Zero(t, vc.Depth)
		assert.Empty(t, vc.Called)
	}
}

func TestCall_MinDepth(t *testing.T) {
	p := pileupFromRows("ATG", "ATA", "ATA", "ATA")
	c := &Caller{Threshold: 0.5, MinDepth: 5}

	for _, vc := range c.Call(wellA1, p) {
		assert.Equal(t, StatusNoCall, vc.Status)
	}
}

func TestCall_DeletionCalled(t *testing.T) {
	p := pileupFromRows("ATG", "AT-", "AT-", "AT-", "ATG")
	c := &Caller{Threshold: 0.5, MinDepth: 1}

	calls := c.Call(wellA1, p)
	assert.Equal(t, StatusMutant, calls[2].Status)
	assert.Equal(t, "-", calls[2].Called)
	assert.InDelta(t, 0.75, calls[2].Frequency, 1e-9)
}

func TestCall_ExactTieCanonicalOrder(t *testing.T) {
	// A and C tie at 0.5 on a G reference: canonical order picks A
	p := pileupFromRows("G", "A", "A", "C", "C")
	c := &Caller{Threshold: 0.5, MinDepth: 1}

	calls := c.Call(wellA1, p)
	require.Len(t, calls, 1)
	assert.Equal(t, StatusMutant, calls[0].Status)
	assert.Equal(t, "A", calls[0].Called)
}

func TestCall_PositionOffset(t *testing.T) {
	p := pileupFromRows("ATG", "ATG")
	c := &Caller{Threshold: 0.5, MinDepth: 1, Offset: 30}

	calls := c.Call(wellA1, p)
	require.Len(t, calls, 3)
	assert.Equal(t, 31, calls[0].Pos)
	assert.Equal(t, 33, calls[2].Pos)
}

func TestCall_OneCallPerPosition(t *testing.T) {
	p := pileupFromRows("ATGCATGCAT", repeat("ATGCATGCAT", 4)...)
	c := &Caller{Threshold: 0.5, MinDepth: 1}

	calls := c.Call(wellA1, p)
	require.Len(t, calls, 10)
	seen := make(map[int]bool)
	for _, vc := range calls {
		assert.False(t, seen[vc.Pos], "duplicate call at %d", vc.Pos)
		seen[vc.Pos] = true
	}
}
