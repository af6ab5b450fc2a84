// Package call decides WT/mutant/no-call per reference position for each
// well and schedules per-well processing across workers.
package call

import (
	"github.com/plateseq/plateseq/internal/seq"
	"github.com/plateseq/plateseq/internal/well"
)

// Status is the outcome of one position call.
type Status int

const (
	StatusWT Status = iota
	StatusMutant
	StatusNoCall
)

func (s Status) String() string {
	switch s {
	case StatusWT:
		return "WT"
	case StatusMutant:
		return "mutant"
	case StatusNoCall:
		return "no-call-low-depth"
	}
	return "unknown"
}

// VariantCall is the final record for one (well, reference position).
type VariantCall struct {
	Well      seq.PlateWell
	Pos       int    // 1-based reference position after offset
	Ref       byte   // reference symbol
	Called    string // called symbol; equals the reference for WT
	Frequency float64
	Depth     int
	Status    Status
}

// Caller applies frequency thresholding to a per-well pileup.
type Caller struct {
	Threshold float64 // minimum non-reference frequency to call a mutant
	MinDepth  int     // positions below this depth are no-call
	Offset    int     // added to positions to reconcile reference indexing
}

// Call emits exactly one record per reference position. Positions with
// depth below MinDepth are no-call. A non-reference symbol whose
// frequency reaches Threshold is called mutant; ties go to the higher
// frequency, then to the canonical symbol order. Anything below
// threshold is treated as wild type: sub-threshold disagreement is
// presumed sequencing noise, not a real edit.
func (c *Caller) Call(id seq.PlateWell, p *well.Pileup) []VariantCall {
	calls := make([]VariantCall, 0, len(p.Counts))
	for i, counts := range p.Counts {
		refBase := p.Ref.Seq[i]
		vc := VariantCall{
			Well:  id,
			Pos:   i + 1 + c.Offset,
			Ref:   refBase,
			Depth: p.Depth[i],
		}

		if p.Depth[i] == 0 || p.Depth[i] < c.MinDepth {
			vc.Status = StatusNoCall
			calls = append(calls, vc)
			continue
		}

		refIdx := well.SymbolIndex(refBase)
		bestIdx := -1
		bestFreq := 0.0
		for k := 0; k < len(counts); k++ {
			if k == refIdx || counts[k] == 0 {
				continue
			}
			freq := float64(counts[k]) / float64(p.Depth[i])
			if freq > bestFreq {
				bestFreq = freq
				bestIdx = k
			}
		}

		if bestIdx >= 0 && bestFreq >= c.Threshold {
			vc.Status = StatusMutant
			vc.Called = string(well.Symbols[bestIdx])
			vc.Frequency = bestFreq
		} else {
			vc.Status = StatusWT
			vc.Called = string(refBase)
			if refIdx >= 0 {
				vc.Frequency = float64(counts[refIdx]) / float64(p.Depth[i])
			}
		}
		calls = append(calls, vc)
	}
	return calls
}
