package seq

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadFASTA(t *testing.T) {
	path := writeFile(t, "seqs.fasta", ">seq1 description here\nACGT\nacgt\n\n>seq2\nTTTT\n")

	records, skipped, err := ReadFASTA(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 0, skipped)

	assert.Equal(t, "seq1", records[0].Name)
	assert.Equal(t, "ACGTACGT", string(records[0].Seq))
	assert.Equal(t, "seq2", records[1].Name)
	assert.Equal(t, "TTTT", string(records[1].Seq))
}

func TestReadFASTA_NamelessHeaderSkipped(t *testing.T) {
	path := writeFile(t, "seqs.fasta", ">\nACGT\n>ok\nTTTT\n")

	records, skipped, err := ReadFASTA(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "ok", records[0].Name)
	assert.Equal(t, "TTTT", string(records[0].Seq))
}

func TestReadFASTA_EmptyRecordSkipped(t *testing.T) {
	path := writeFile(t, "seqs.fasta", ">empty\n>ok\nACGT\n")

	records, skipped, err := ReadFASTA(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "ok", records[0].Name)
}

func TestLoadBarcodes(t *testing.T) {
	path := writeFile(t, "barcodes.fasta",
		">NB01\nAAGAAAGTTGTCGGTGTCTTTGTG\n>NB02\nTCGATTCCGTTTGTAGTCGTCTGT\n>RB01\nACGTAACGAACGAAGCACAGCATA\n>junk\nACGT\n")

	forward, reverse, skipped, err := LoadBarcodes(path, "NB", "RB")
	require.NoError(t, err)

	require.Len(t, forward, 2)
	require.Len(t, reverse, 1)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "NB01", forward[0].ID)
	assert.Equal(t, Forward, forward[0].Orientation)
	assert.Equal(t, Reverse, reverse[0].Orientation)
}

func TestLoadBarcodes_MalformedRecordCounted(t *testing.T) {
	path := writeFile(t, "barcodes.fasta",
		">\nACGT\n>NB01\nAAGAAAGTTGTCGGTGTCTTTGTG\n>RB01\nACGTAACGAACGAAGCACAGCATA\n")

	forward, reverse, skipped, err := LoadBarcodes(path, "NB", "RB")
	require.NoError(t, err)
	require.Len(t, forward, 1)
	require.Len(t, reverse, 1)
	assert.Equal(t, 1, skipped)
}

func TestLoadBarcodes_MissingOrientation(t *testing.T) {
	path := writeFile(t, "barcodes.fasta", ">NB01\nACGTACGT\n")

	_, _, _, err := LoadBarcodes(path, "NB", "RB")
	assert.ErrorContains(t, err, "no reverse barcodes")
}

func TestLoadReference(t *testing.T) {
	path := writeFile(t, "ref.fasta", ">template\nATGGCTAGC\n")

	ref, err := LoadReference(path)
	require.NoError(t, err)
	assert.Equal(t, "template", ref.Name)
	assert.Equal(t, "ATGGCTAGC", string(ref.Seq))
}

func TestLoadReference_Empty(t *testing.T) {
	path := writeFile(t, "ref.fasta", "")

	_, err := LoadReference(path)
	assert.ErrorContains(t, err, "no sequences")
}
