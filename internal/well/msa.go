package well

import (
	"bufio"
	"fmt"
	"io"
)

// WriteMSA writes the reference and the per-read aligned rows as FASTA.
// The pileup must have been built with keepRows set; pileups built
// without rows produce only the reference record.
func WriteMSA(w io.Writer, p *Pileup) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, ">%s\n%s\n", p.Ref.Name, p.Ref.Seq); err != nil {
		return fmt.Errorf("write msa reference: %w", err)
	}
	for i, row := range p.Rows {
		if _, err := fmt.Fprintf(bw, ">%s\n%s\n", p.RowIDs[i], row); err != nil {
			return fmt.Errorf("write msa row: %w", err)
		}
	}
	return bw.Flush()
}
