package demux

import (
	"runtime"
	"sync"

	"github.com/plateseq/plateseq/internal/seq"
)

// readResult pairs a read with its assignment decision for fan-in.
type readResult struct {
	read       *seq.Read
	assignment Assignment
}

// Demultiplex matches and assigns reads from the channel using a pool of
// workers, and groups assigned reads by plate/well. Matching is
// embarrassingly parallel over reads; the only mutation point is the
// single collector that builds the groups. If workers is 0,
// runtime.NumCPU() is used.
func Demultiplex(reads <-chan *seq.Read, matcher *Matcher, assigner *Assigner, stats *Stats, workers int) map[seq.PlateWell][]*seq.Read {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan readResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for r := range reads {
				forward, reverse := matcher.Match(r)
				results <- readResult{read: r, assignment: assigner.Assign(r, forward, reverse)}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	groups := make(map[seq.PlateWell][]*seq.Read)
	for res := range results {
		stats.Record(res.assignment)
		if res.assignment.Rejected {
			continue
		}
		groups[res.assignment.Target] = append(groups[res.assignment.Target], res.read)
	}
	return groups
}
