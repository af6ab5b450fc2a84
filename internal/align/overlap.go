package align

// Projection is a read laid out in reference coordinates: Aligned holds
// one symbol per reference position in [Start, Start+len(Aligned)), with
// '-' marking a deleted reference base. Inserted read bases do not
// consume reference positions and are dropped from the projection.
type Projection struct {
	Start   int
	Aligned []byte
}

// End returns the first reference position past the projection.
func (p Projection) End() int {
	return p.Start + len(p.Aligned)
}

const (
	opStop byte = iota
	opDiag      // consume ref and query
	opUp        // consume ref only (deletion in query)
	opLeft      // consume query only (insertion in query)
)

// Overlap aligns a read against the full reference with free end gaps on
// both sequences, then projects the read onto reference coordinates.
// Reference positions outside the aligned span are not covered by the
// read and are absent from the projection.
func Overlap(ref, query []byte, s Scoring) Projection {
	n := len(ref)
	m := len(query)
	if n == 0 || m == 0 {
		return Projection{}
	}

	// score[i][j]: best alignment of ref[:i] vs query[:j]. Free leading
	// gaps on both, so row 0 and column 0 are zero.
	score := make([][]int, n+1)
	trace := make([][]byte, n+1)
	for i := range score {
		score[i] = make([]int, m+1)
		trace[i] = make([]byte, m+1)
	}

	for i := 1; i <= n; i++ {
		rc := ref[i-1]
		for j := 1; j <= m; j++ {
			sub := s.Mismatch
			if rc == query[j-1] {
				sub = s.Match
			}
			best := score[i-1][j-1] + sub
			op := opDiag
			if del := score[i-1][j] + s.Gap; del > best {
				best = del
				op = opUp
			}
			if ins := score[i][j-1] + s.Gap; ins > best {
				best = ins
				op = opLeft
			}
			score[i][j] = best
			trace[i][j] = op
		}
	}

	// Free trailing gaps: best cell on the last row or column.
	bi, bj := n, m
	for i := 0; i <= n; i++ {
		if score[i][m] > score[bi][bj] {
			bi, bj = i, m
		}
	}
	for j := 0; j <= m; j++ {
		if score[n][j] > score[bi][bj] {
			bi, bj = n, j
		}
	}

	// Walk back to a free boundary, emitting one symbol per ref position.
	var rev []byte
	i, j := bi, bj
	for i > 0 && j > 0 {
		switch trace[i][j] {
		case opDiag:
			rev = append(rev, query[j-1])
			i--
			j--
		case opUp:
			rev = append(rev, '-')
			i--
		case opLeft:
			j--
		}
	}

	for l, r := 0, len(rev)-1; l < r; l, r = l+1, r-1 {
		rev[l], rev[r] = rev[r], rev[l]
	}
	return Projection{Start: i, Aligned: rev}
}
