// Package demux assigns reads to plate/well identities via paired
// terminal barcode matching.
package demux

import (
	"github.com/plateseq/plateseq/internal/align"
	"github.com/plateseq/plateseq/internal/seq"
)

// AlignmentResult is the best barcode hit for one orientation of a read.
type AlignmentResult struct {
	BarcodeID    string
	Pos          int // end position of the hit within the scanned window
	Score        int
	EditDistance int
	Ambiguous    bool // two or more barcodes tied on score and edit distance
}

// Matcher locates the best forward and reverse barcode hits in a read's
// terminal windows. It holds only read-only state and is safe for
// concurrent use.
type Matcher struct {
	Forward     []seq.Barcode
	Reverse     []seq.Barcode
	FrontWindow int
	RearWindow  int
	Scoring     align.Scoring

	// reverse barcodes are matched against the rear window in their
	// reverse-complement orientation, precomputed once.
	reverseRC [][]byte
}

// NewMatcher builds a matcher over the given barcode tables.
func NewMatcher(forward, reverse []seq.Barcode, frontWindow, rearWindow int, scoring align.Scoring) *Matcher {
	m := &Matcher{
		Forward:     forward,
		Reverse:     reverse,
		FrontWindow: frontWindow,
		RearWindow:  rearWindow,
		Scoring:     scoring,
	}
	m.reverseRC = make([][]byte, len(reverse))
	for i, b := range reverse {
		m.reverseRC[i] = seq.ReverseComplement(b.Seq)
	}
	return m
}

// Match returns the best hit per orientation, or nil when no barcode was
// scanned for that orientation. A tie on both score and edit distance is
// reported via Ambiguous rather than resolved arbitrarily.
func (m *Matcher) Match(r *seq.Read) (forward, reverse *AlignmentResult) {
	front := r.FrontWindow(m.FrontWindow)
	rear := r.RearWindow(m.RearWindow)

	forward = m.bestHit(front, m.Forward, nil)
	reverse = m.bestHit(rear, m.Reverse, m.reverseRC)
	return forward, reverse
}

// bestHit scans every barcode against the window and keeps the single
// best result by score, breaking ties by lower edit distance. An exact
// tie on both yields Ambiguous.
func (m *Matcher) bestHit(window []byte, barcodes []seq.Barcode, rc [][]byte) *AlignmentResult {
	var best *AlignmentResult
	for i, b := range barcodes {
		query := b.Seq
		if rc != nil {
			query = rc[i]
		}
		res := align.Semiglobal(window, query, m.Scoring)

		switch {
		case best == nil:
			best = &AlignmentResult{BarcodeID: b.ID, Pos: res.Pos, Score: res.Score, EditDistance: res.EditDistance}
		case res.Score > best.Score,
			res.Score == best.Score && res.EditDistance < best.EditDistance:
			best = &AlignmentResult{BarcodeID: b.ID, Pos: res.Pos, Score: res.Score, EditDistance: res.EditDistance}
		case res.Score == best.Score && res.EditDistance == best.EditDistance:
			best.Ambiguous = true
		}
	}
	return best
}
