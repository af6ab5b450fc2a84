package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateseq/plateseq/internal/call"
	"github.com/plateseq/plateseq/internal/seq"
)

var wellB3 = seq.PlateWell{Plate: 2, Well: seq.WellCoord{Row: 'B', Col: 3}}

func TestCallWriter(t *testing.T) {
	var buf strings.Builder
	cw := NewCallWriter(&buf)

	require.NoError(t, cw.WriteHeader())
	require.NoError(t, cw.Write(call.VariantCall{
		Well: wellB3, Pos: 12, Ref: 'G', Called: "A",
		Frequency: 0.8333, Depth: 12, Status: call.StatusMutant,
	}))
	require.NoError(t, cw.Write(call.VariantCall{
		Well: wellB3, Pos: 13, Ref: 'T', Status: call.StatusNoCall,
	}))
	require.NoError(t, cw.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "#Plate\tWell\tPosition\tRef\tCalled\tFrequency\tDepth\tStatus", lines[0])
	assert.Equal(t, "2\tB3\t12\tG\tA\t0.8333\t12\tmutant", lines[1])
	assert.Equal(t, "2\tB3\t13\tT\t-\t-\t0\tno-call-low-depth", lines[2])
}

func TestCallWriter_WriteAll(t *testing.T) {
	var buf strings.Builder
	cw := NewCallWriter(&buf)

	results := []*call.WellResult{{
		Well: wellB3,
		Calls: []call.VariantCall{
			{Well: wellB3, Pos: 1, Ref: 'A', Called: "A", Frequency: 1, Depth: 5, Status: call.StatusWT},
			{Well: wellB3, Pos: 2, Ref: 'T', Called: "C", Frequency: 0.6, Depth: 5, Status: call.StatusMutant},
		},
	}}
	require.NoError(t, cw.WriteAll(results))
	require.NoError(t, cw.Flush())

	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}
