// Package output provides result table formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/plateseq/plateseq/internal/call"
)

// CallWriter writes the per-position variant call table in
// tab-delimited format.
type CallWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewCallWriter creates a new tab-delimited call table writer.
func NewCallWriter(w io.Writer) *CallWriter {
	return &CallWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Plate",
			"Well",
			"Position",
			"Ref",
			"Called",
			"Frequency",
			"Depth",
			"Status",
		},
	}
}

// WriteHeader writes the header line.
func (cw *CallWriter) WriteHeader() error {
	_, err := cw.w.WriteString(strings.Join(cw.columns, "\t") + "\n")
	return err
}

// Write writes a single variant call.
func (cw *CallWriter) Write(vc call.VariantCall) error {
	called := vc.Called
	if called == "" {
		called = "-"
	}

	freq := "-"
	if vc.Status != call.StatusNoCall {
		freq = fmt.Sprintf("%.4f", vc.Frequency)
	}

	values := []string{
		fmt.Sprintf("%d", vc.Well.Plate),
		vc.Well.Well.String(),
		fmt.Sprintf("%d", vc.Pos),
		string(vc.Ref),
		called,
		freq,
		fmt.Sprintf("%d", vc.Depth),
		vc.Status.String(),
	}

	_, err := cw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes every call of every well result in order.
func (cw *CallWriter) WriteAll(results []*call.WellResult) error {
	for _, res := range results {
		for _, vc := range res.Calls {
			if err := cw.Write(vc); err != nil {
				return fmt.Errorf("write call row: %w", err)
			}
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (cw *CallWriter) Flush() error {
	return cw.w.Flush()
}
