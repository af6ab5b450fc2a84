package well

import (
	"fmt"

	"github.com/plateseq/plateseq/internal/align"
	"github.com/plateseq/plateseq/internal/seq"
)

// Symbols is the canonical symbol ordering for per-position counts:
// the four bases followed by the deletion state. Frequency ties during
// calling resolve to the first symbol in this order.
const Symbols = "ACGT-"

// SymbolIndex maps a pileup symbol to its slot in the counts array,
// returning -1 for symbols outside the canonical set (e.g. N).
func SymbolIndex(c byte) int {
	switch c {
	case 'A':
		return 0
	case 'C':
		return 1
	case 'G':
		return 2
	case 'T':
		return 3
	case '-':
		return 4
	}
	return -1
}

// Pileup is the per-well, per-reference-position symbol distribution.
// It is rebuilt from scratch for the well's full read set on every run,
// never updated incrementally.
type Pileup struct {
	Ref    *seq.Reference
	Counts [][5]int // one row per reference position, Symbols order
	Depth  []int    // reads covering each reference position
	Rows   [][]byte // reference-length aligned rows, only when keepRows
	RowIDs []string // read IDs for Rows, same order
}

// Build aligns every read of the well against the reference and
// accumulates per-position symbol counts. Position correspondence comes
// from the alignment, not raw indices, so reads of unequal length and
// with indels are handled. Set keepRows to retain the row-per-read
// alignment for the MSA artifact.
//
// An error is returned only when the well has reads but none of them
// produced any aligned positions; the caller records it as that well's
// failure state.
func Build(w *Well, ref *seq.Reference, scoring align.Scoring, keepRows bool) (*Pileup, error) {
	n := len(ref.Seq)
	p := &Pileup{
		Ref:    ref,
		Counts: make([][5]int, n),
		Depth:  make([]int, n),
	}

	if len(w.Reads) == 0 {
		return p, nil
	}

	aligned := 0
	for _, r := range w.Reads {
		proj := align.Overlap(ref.Seq, r.Seq, scoring)
		if len(proj.Aligned) == 0 {
			continue
		}
		aligned++
		for i, c := range proj.Aligned {
			pos := proj.Start + i
			if pos >= n {
				break
			}
			if k := SymbolIndex(c); k >= 0 {
				p.Counts[pos][k]++
				p.Depth[pos]++
			}
		}
		if keepRows {
			row := make([]byte, n)
			for i := range row {
				row[i] = '-'
			}
			copy(row[proj.Start:], proj.Aligned)
			p.Rows = append(p.Rows, row)
			p.RowIDs = append(p.RowIDs, r.ID)
		}
	}

	if aligned == 0 {
		return nil, fmt.Errorf("well %s: no read aligned to reference %s", w.ID, ref.Name)
	}
	return p, nil
}

// Consensus returns the majority symbol per reference position, with the
// reference base standing in at uncovered positions.
func (p *Pileup) Consensus() []byte {
	out := make([]byte, len(p.Counts))
	for i, counts := range p.Counts {
		if p.Depth[i] == 0 {
			out[i] = p.Ref.Seq[i]
			continue
		}
		best := 0
		for k := 1; k < len(counts); k++ {
			if counts[k] > counts[best] {
				best = k
			}
		}
		out[i] = Symbols[best]
	}
	return out
}
