package demux

import (
	"github.com/plateseq/plateseq/internal/seq"
)

// Reason classifies why a read was not assigned to a well.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonLengthOutOfRange
	ReasonScoreBelowThreshold
	ReasonEditDistanceExceeded
	ReasonAmbiguous
	ReasonUnmappedPair
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "assigned"
	case ReasonLengthOutOfRange:
		return "length-out-of-range"
	case ReasonScoreBelowThreshold:
		return "score-below-threshold"
	case ReasonEditDistanceExceeded:
		return "edit-distance-exceeded"
	case ReasonAmbiguous:
		return "ambiguous"
	case ReasonUnmappedPair:
		return "unmapped-pair"
	}
	return "unknown"
}

// Assignment is the per-read demultiplexing decision. A read gets at most
// one assignment; rejected reads carry the first applicable reason.
type Assignment struct {
	ReadID    string
	Target    seq.PlateWell
	ForwardID string
	ReverseID string
	Rejected  bool
	Reason    Reason
}

// Assigner applies the assignment policy to matcher output. It holds only
// read-only configuration and is safe for concurrent use.
type Assigner struct {
	MinReadLength     int
	MaxReadLength     int
	ScoreThreshold    int
	EditDistThreshold int
	Layout            *seq.Layout
}

// Assign decides the well for a read given its best per-orientation hits.
// Checks run in a fixed order so the recorded reason is deterministic:
// length, score, edit distance, ambiguity, layout membership.
func (a *Assigner) Assign(r *seq.Read, forward, reverse *AlignmentResult) Assignment {
	out := Assignment{ReadID: r.ID}

	if r.Len() < a.MinReadLength || r.Len() > a.MaxReadLength {
		out.Rejected = true
		out.Reason = ReasonLengthOutOfRange
		return out
	}

	for _, hit := range []*AlignmentResult{forward, reverse} {
		if hit == nil || hit.Score < a.ScoreThreshold {
			out.Rejected = true
			out.Reason = ReasonScoreBelowThreshold
			return out
		}
	}
	for _, hit := range []*AlignmentResult{forward, reverse} {
		if hit.EditDistance > a.EditDistThreshold {
			out.Rejected = true
			out.Reason = ReasonEditDistanceExceeded
			return out
		}
	}
	for _, hit := range []*AlignmentResult{forward, reverse} {
		if hit.Ambiguous {
			out.Rejected = true
			out.Reason = ReasonAmbiguous
			return out
		}
	}

	target, ok := a.Layout.Lookup(forward.BarcodeID, reverse.BarcodeID)
	if !ok {
		out.Rejected = true
		out.Reason = ReasonUnmappedPair
		return out
	}

	out.Target = target
	out.ForwardID = forward.BarcodeID
	out.ReverseID = reverse.BarcodeID
	return out
}
