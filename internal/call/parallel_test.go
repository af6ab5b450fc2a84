package call

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateseq/plateseq/internal/align"
	"github.com/plateseq/plateseq/internal/seq"
	"github.com/plateseq/plateseq/internal/well"
)

var runnerRef = &seq.Reference{Name: "template", Seq: []byte("ATGCATGCAT")}

func testRunner() *Runner {
	return NewRunner(runnerRef, align.DefaultScoring, Caller{Threshold: 0.5, MinDepth: 1})
}

func makeWells(n int) []*well.Well {
	wells := make([]*well.Well, n)
	for i := range wells {
		wells[i] = &well.Well{
			ID: seq.PlateWell{Plate: 1, Well: seq.WellCoord{Row: 'A' + byte(i/12), Col: i%12 + 1}},
			Reads: []*seq.Read{
				{ID: fmt.Sprintf("w%d_r1", i), Seq: runnerRef.Seq},
				{ID: fmt.Sprintf("w%d_r2", i), Seq: runnerRef.Seq},
			},
		}
	}
	return wells
}

func TestParallelProcess_OrderPreservation(t *testing.T) {
	r := testRunner()
	wells := makeWells(60)

	items := make(chan WorkItem, len(wells))
	for i, w := range wells {
		items <- WorkItem{Seq: i, Well: w}
	}
	close(items)

	results := r.ParallelProcess(items, 8)

	var collected []int
	err := OrderedCollect(results, func(wr WorkResult) error {
		require.NoError(t, wr.Err)
		collected = append(collected, wr.Seq)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 60)
	for i, s := range collected {
		assert.Equal(t, i, s, "result %d out of order", i)
	}
}

func TestParallelProcess_SingleWorker(t *testing.T) {
	r := testRunner()
	wells := makeWells(10)

	items := make(chan WorkItem, len(wells))
	for i, w := range wells {
		items <- WorkItem{Seq: i, Well: w}
	}
	close(items)

	count := 0
	err := OrderedCollect(r.ParallelProcess(items, 1), func(wr WorkResult) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestParallelProcess_EmptyInput(t *testing.T) {
	r := testRunner()

	items := make(chan WorkItem)
	close(items)

	count := 0
	err := OrderedCollect(r.ParallelProcess(items, 4), func(wr WorkResult) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRunAll_DeterministicOrder(t *testing.T) {
	r := testRunner()
	wells := makeWells(30)

	first := r.RunAll(wells, 8)
	second := r.RunAll(wells, 3)

	require.Len(t, first, 30)
	require.Len(t, second, 30)
	for i := range first {
		assert.Equal(t, first[i].Well, second[i].Well)
		assert.Equal(t, first[i].Variant, second[i].Variant)
		assert.Equal(t, wells[i].ID, first[i].Well)
	}
}

func TestRunAll_FailureDoesNotAbortOthers(t *testing.T) {
	r := testRunner()
	wells := makeWells(5)
	// a well whose only read cannot align fails in isolation
	wells[2].Reads = []*seq.Read{{ID: "broken", Seq: nil}}

	results := r.RunAll(wells, 4)
	require.Len(t, results, 5)

	assert.True(t, results[2].Failed)
	assert.Contains(t, results[2].FailErr, "no read aligned")
	for i, res := range results {
		if i == 2 {
			continue
		}
		assert.False(t, res.Failed, "well %d must be unaffected", i)
		assert.Equal(t, ParentLabel, res.Variant)
	}
}

func TestRunAll_EmptyWellProducesNoCalls(t *testing.T) {
	r := testRunner()
	wells := []*well.Well{{ID: seq.PlateWell{Plate: 1, Well: seq.WellCoord{Row: 'A', Col: 1}}}}

	results := r.RunAll(wells, 2)
	require.Len(t, results, 1)

	res := results[0]
	require.False(t, res.Failed)
	assert.Zero(t, res.ReadCount)
	require.Len(t, res.Calls, len(runnerRef.Seq))
	for _, vc := range res.Calls {
		assert.Equal(t, StatusNoCall, vc.Status)
	}
}

func TestRunAll_KeepsPileupOnlyWhenMSARequested(t *testing.T) {
	r := testRunner()
	wells := makeWells(2)

	for _, res := range r.RunAll(wells, 2) {
		assert.Nil(t, res.Pileup)
	}

	r.KeepMSA = true
	for _, res := range r.RunAll(wells, 2) {
		require.NotNil(t, res.Pileup)
		assert.Len(t, res.Pileup.Rows, 2)
	}
}

func TestMeanMutantFrequency(t *testing.T) {
	calls := []VariantCall{
		wt(1, 'A'),
		mutant(2, 'T', "G", 0.8),
		mutant(3, 'G', "A", 0.6),
	}
	assert.InDelta(t, 0.7, meanMutantFrequency(calls), 1e-9)
	assert.Zero(t, meanMutantFrequency([]VariantCall{wt(1, 'A')}))
}
