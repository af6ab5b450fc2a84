package demux

import (
	"sync"

	"go.uber.org/zap"
)

// Stats accumulates per-read demultiplexing outcomes across workers.
type Stats struct {
	mu       sync.Mutex
	total    int
	assigned int
	rejected map[Reason]int
	skipped  int
}

// NewStats creates an empty statistics accumulator.
func NewStats() *Stats {
	return &Stats{rejected: make(map[Reason]int)}
}

// Record counts one assignment decision.
func (s *Stats) Record(a Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if a.Rejected {
		s.rejected[a.Reason]++
	} else {
		s.assigned++
	}
}

// RecordSkipped counts records dropped before matching (malformed input).
func (s *Stats) RecordSkipped(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped += n
}

// Total returns the number of reads seen.
func (s *Stats) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Assigned returns the number of reads that reached a well.
func (s *Stats) Assigned() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assigned
}

// Rejected returns a copy of the per-reason rejection counts.
func (s *Stats) Rejected() map[Reason]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Reason]int, len(s.rejected))
	for k, v := range s.rejected {
		out[k] = v
	}
	return out
}

// Skipped returns the number of malformed records dropped before matching.
func (s *Stats) Skipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

// Log writes the run summary through the given logger.
func (s *Stats) Log(logger *zap.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields := []zap.Field{
		zap.Int("total_reads", s.total),
		zap.Int("assigned", s.assigned),
		zap.Int("skipped_malformed", s.skipped),
	}
	for _, r := range []Reason{
		ReasonLengthOutOfRange,
		ReasonScoreBelowThreshold,
		ReasonEditDistanceExceeded,
		ReasonAmbiguous,
		ReasonUnmappedPair,
	} {
		if n := s.rejected[r]; n > 0 {
			fields = append(fields, zap.Int("rejected_"+r.String(), n))
		}
	}
	logger.Info("demultiplexing summary", fields...)
}
