package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/plateseq/plateseq/internal/call"
	"github.com/plateseq/plateseq/internal/demux"
)

// SummaryWriter writes one row per well with its underscore-joined
// substitution label (#PARENT# for all-WT wells), plus the run's
// rejection statistics, so results stay auditable rather than silently
// incomplete.
type SummaryWriter struct {
	w *bufio.Writer
}

// NewSummaryWriter creates a well summary writer.
func NewSummaryWriter(w io.Writer) *SummaryWriter {
	return &SummaryWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (sw *SummaryWriter) WriteHeader() error {
	columns := []string{
		"#Plate",
		"Well",
		"Variant",
		"AA_Variant",
		"Mean_Frequency",
		"Read_Count",
		"Status",
	}
	_, err := sw.w.WriteString(strings.Join(columns, "\t") + "\n")
	return err
}

// WriteWell writes one well summary row.
func (sw *SummaryWriter) WriteWell(res *call.WellResult) error {
	status := "ok"
	variant := res.Variant
	aa := res.AAVariant
	if res.Failed {
		status = "failed: " + res.FailErr
		variant = "-"
		aa = "-"
	} else if res.ReadCount == 0 {
		status = "no-reads"
	}

	values := []string{
		fmt.Sprintf("%d", res.Well.Plate),
		res.Well.Well.String(),
		variant,
		aa,
		fmt.Sprintf("%.4f", res.MeanFreq),
		fmt.Sprintf("%d", res.ReadCount),
		status,
	}
	_, err := sw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes every well summary row.
func (sw *SummaryWriter) WriteAll(results []*call.WellResult) error {
	for _, res := range results {
		if err := sw.WriteWell(res); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	return nil
}

// WriteStats appends the per-reason rejection counts as comment lines.
func (sw *SummaryWriter) WriteStats(stats *demux.Stats) error {
	lines := []string{
		fmt.Sprintf("## total_reads\t%d", stats.Total()),
		fmt.Sprintf("## assigned\t%d", stats.Assigned()),
		fmt.Sprintf("## skipped_malformed\t%d", stats.Skipped()),
	}
	rejected := stats.Rejected()
	for _, r := range []demux.Reason{
		demux.ReasonLengthOutOfRange,
		demux.ReasonScoreBelowThreshold,
		demux.ReasonEditDistanceExceeded,
		demux.ReasonAmbiguous,
		demux.ReasonUnmappedPair,
	} {
		lines = append(lines, fmt.Sprintf("## rejected_%s\t%d", r, rejected[r]))
	}
	_, err := sw.w.WriteString(strings.Join(lines, "\n") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (sw *SummaryWriter) Flush() error {
	return sw.w.Flush()
}
