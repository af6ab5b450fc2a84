// Package seq provides sequence types and file parsing for reads,
// barcodes, references and plate layouts.
package seq

// Read represents a single basecalled Nanopore read.
type Read struct {
	ID   string // read identifier from the FASTQ header
	Seq  []byte // nucleotide sequence
	Qual []byte // per-base Phred quality (offset 33), nil if absent
}

// Len returns the read length in bases.
func (r *Read) Len() int {
	return len(r.Seq)
}

// FrontWindow returns the first n bases of the read.
// If the read is shorter than n, the whole read is returned.
func (r *Read) FrontWindow(n int) []byte {
	if n > len(r.Seq) {
		n = len(r.Seq)
	}
	return r.Seq[:n]
}

// RearWindow returns the last n bases of the read.
// If the read is shorter than n, the whole read is returned.
func (r *Read) RearWindow(n int) []byte {
	if n > len(r.Seq) {
		n = len(r.Seq)
	}
	return r.Seq[len(r.Seq)-n:]
}

// Orientation marks which read terminus a barcode is expected at.
type Orientation int

const (
	// Forward barcodes sit at the 5' end of the read.
	Forward Orientation = iota
	// Reverse barcodes sit at the 3' end, reverse complemented.
	Reverse
)

func (o Orientation) String() string {
	if o == Reverse {
		return "reverse"
	}
	return "forward"
}

// Barcode is a known tag sequence identifying a well (forward) or a
// plate (reverse). Barcode tables are loaded once at startup and shared
// read-only across all workers.
type Barcode struct {
	ID          string
	Orientation Orientation
	Seq         []byte
}

// Reference is the template sequence wells are compared against.
type Reference struct {
	Name string
	Seq  []byte
}

var complement [256]byte

func init() {
	complement['A'] = 'T'
	complement['C'] = 'G'
	complement['G'] = 'C'
	complement['T'] = 'A'
	complement['N'] = 'N'
}

// ReverseComplement returns the reverse complement of a DNA sequence.
// Unrecognized symbols map to N.
func ReverseComplement(s []byte) []byte {
	n := len(s)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		c := complement[s[n-1-i]]
		if c == 0 {
			c = 'N'
		}
		out[i] = c
	}
	return out
}
