// Package well builds per-well pileups and consensus summaries from
// demultiplexed reads.
package well

import (
	"github.com/plateseq/plateseq/internal/seq"
)

// Well owns the reads assigned to one plate/well. The read set grows
// only during grouping; aggregation never mutates it.
type Well struct {
	ID    seq.PlateWell
	Reads []*seq.Read
}

// Group turns the demultiplexer's output into Well units, adding empty
// wells for every layout position with no assigned reads so they surface
// as no-call records instead of disappearing from the results. The
// returned slice is sorted by (plate, well).
func Group(groups map[seq.PlateWell][]*seq.Read, layout *seq.Layout) []*Well {
	wells := make([]*Well, 0, layout.Size())
	seen := make(map[seq.PlateWell]bool)
	for _, pw := range layout.Wells() {
		seen[pw] = true
		wells = append(wells, &Well{ID: pw, Reads: groups[pw]})
	}
	// Reads whose pair maps outside the layout were already rejected as
	// unmapped, so every group key is expected to be present.
	for pw, reads := range groups {
		if !seen[pw] {
			wells = append(wells, &Well{ID: pw, Reads: reads})
		}
	}
	return wells
}
