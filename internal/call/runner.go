package call

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/plateseq/plateseq/internal/align"
	"github.com/plateseq/plateseq/internal/seq"
	"github.com/plateseq/plateseq/internal/well"
)

// WellResult is everything the pipeline reports for one well.
type WellResult struct {
	Well      seq.PlateWell
	ReadCount int
	Calls     []VariantCall
	Variant   string  // nucleotide-level label, e.g. "A123T_G200DEL"
	AAVariant string  // protein-level label when the frame allows it
	MeanFreq  float64 // mean mutant frequency, 0 for parent wells
	Failed    bool
	FailErr   string       // failure description when Failed
	Pileup    *well.Pileup // retained only when MSA output is requested
}

// Runner drives per-well aggregation and calling. The reference and
// scoring are read-only for the lifetime of a run.
type Runner struct {
	Ref     *seq.Reference
	Scoring align.Scoring
	Caller  Caller
	KeepMSA bool

	logger *zap.Logger
}

// NewRunner creates a runner over the shared reference.
func NewRunner(ref *seq.Reference, scoring align.Scoring, caller Caller) *Runner {
	return &Runner{
		Ref:     ref,
		Scoring: scoring,
		Caller:  caller,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and info messages.
func (r *Runner) SetLogger(l *zap.Logger) {
	r.logger = l
}

// processWell builds the pileup and calls variants for one well.
func (r *Runner) processWell(w *well.Well) (*WellResult, error) {
	p, err := well.Build(w, r.Ref, r.Scoring, r.KeepMSA)
	if err != nil {
		return nil, err
	}

	calls := r.Caller.Call(w.ID, p)
	res := &WellResult{
		Well:      w.ID,
		ReadCount: len(w.Reads),
		Calls:     calls,
		Variant:   Label(calls),
		AAVariant: AALabel(r.Ref.Seq, calls, r.Caller.Offset),
		MeanFreq:  meanMutantFrequency(calls),
	}
	if r.KeepMSA {
		res.Pileup = p
	}
	return res, nil
}

// RunAll processes every well across the worker pool and returns the
// per-well results sorted by (plate, well). A well whose processing
// fails is recorded with its failure state and does not abort the rest.
func (r *Runner) RunAll(wells []*well.Well, workers int) []*WellResult {
	items := make(chan WorkItem, 2*len(wells)+1)
	for i, w := range wells {
		items <- WorkItem{Seq: i, Well: w}
	}
	close(items)

	results := r.ParallelProcess(items, workers)

	out := make([]*WellResult, 0, len(wells))
	// Wells were submitted in (plate, well) order, so ordered collection
	// makes the output deterministic regardless of worker scheduling.
	_ = OrderedCollect(results, func(wr WorkResult) error {
		if wr.Err != nil {
			id := wells[wr.Seq].ID
			r.logger.Warn("well processing failed",
				zap.String("well", id.String()),
				zap.Error(wr.Err))
			out = append(out, &WellResult{
				Well:      id,
				ReadCount: len(wells[wr.Seq].Reads),
				Failed:    true,
				FailErr:   wr.Err.Error(),
			})
			return nil
		}
		out = append(out, wr.Result)
		return nil
	})
	return out
}

// meanMutantFrequency averages the frequency of mutant calls; parent
// wells report 0.
func meanMutantFrequency(calls []VariantCall) float64 {
	sum := 0.0
	n := 0
	for _, vc := range calls {
		if vc.Status == StatusMutant {
			sum += vc.Frequency
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// FailedCount returns how many wells ended in a failure state.
func FailedCount(results []*WellResult) int {
	n := 0
	for _, res := range results {
		if res.Failed {
			n++
		}
	}
	return n
}

// String implements a compact identity for logging.
func (wr *WellResult) String() string {
	return fmt.Sprintf("%s reads=%d variant=%s", wr.Well, wr.ReadCount, wr.Variant)
}
