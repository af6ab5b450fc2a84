// Package align provides the pairwise alignment primitive used by barcode
// matching and per-well read aggregation.
package align

// Scoring holds the alignment scoring scheme. Match is positive, Mismatch
// and Gap are negative. Higher total score means a better match.
type Scoring struct {
	Match    int
	Mismatch int
	Gap      int
}

// DefaultScoring mirrors the map-ont minimap2 presets used for noisy
// long reads: reward matches strongly, keep gaps affordable since indels
// dominate the error profile.
var DefaultScoring = Scoring{Match: 4, Mismatch: -2, Gap: -4}

// Result is the outcome of aligning a query against a window.
type Result struct {
	Score        int // semi-global alignment score, higher is better
	EditDistance int // Levenshtein distance of query vs its best window segment
	Pos          int // end position of the best alignment in the window
}

// Semiglobal aligns query against window, requiring the full query to
// align while the window may contribute free leading and trailing
// overhangs. This tolerates the position jitter and indels of noisy
// reads. Deterministic: identical inputs yield identical results.
func Semiglobal(window, query []byte, s Scoring) Result {
	n := len(window)
	m := len(query)
	if m == 0 {
		return Result{}
	}
	if n == 0 {
		return Result{Score: m * s.Gap, EditDistance: m}
	}

	// One row per DP pass, query on the vertical axis. score[j] is the
	// best score of query[:i] ending at window position j; dist[j] is the
	// matching edit distance. Window prefixes are free (row 0 all zeros).
	score := make([]int, n+1)
	dist := make([]int, n+1)
	prevScore := make([]int, n+1)
	prevDist := make([]int, n+1)

	for i := 1; i <= m; i++ {
		prevScore, score = score, prevScore
		prevDist, dist = dist, prevDist
		score[0] = i * s.Gap
		dist[0] = i
		qc := query[i-1]
		for j := 1; j <= n; j++ {
			sub := s.Mismatch
			d := 1
			if window[j-1] == qc {
				sub = s.Match
				d = 0
			}
			best := prevScore[j-1] + sub
			bestD := prevDist[j-1] + d
			if del := prevScore[j] + s.Gap; del > best {
				best = del
				bestD = prevDist[j] + 1
			}
			if ins := score[j-1] + s.Gap; ins > best {
				best = ins
				bestD = dist[j-1] + 1
			}
			score[j] = best
			dist[j] = bestD
		}
	}

	// Free trailing window overhang: best score anywhere in the last row.
	// Ties resolve to the leftmost end position so results are stable.
	res := Result{Score: score[0], EditDistance: dist[0], Pos: 0}
	for j := 1; j <= n; j++ {
		if score[j] > res.Score {
			res = Result{Score: score[j], EditDistance: dist[j], Pos: j}
		}
	}
	return res
}

// EditDistance computes the Levenshtein distance between two sequences.
// Symmetric: EditDistance(a, b) == EditDistance(b, a).
func EditDistance(a, b []byte) int {
	f := make([]int, len(b)+1)
	for j := range f {
		f[j] = j
	}
	for _, ca := range a {
		prev := f[0]
		f[0]++
		for j, cb := range b {
			cur := f[j+1]
			mn := min(f[j+1]+1, f[j]+1)
			if ca == cb {
				mn = min(mn, prev)
			} else {
				mn = min(mn, prev+1)
			}
			f[j+1] = mn
			prev = cur
		}
	}
	return f[len(b)]
}
