package seq

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// FASTARecord is a single named sequence from a FASTA file.
type FASTARecord struct {
	Name string
	Seq  []byte
}

// ReadFASTA parses all records from a FASTA file, returning the records
// plus the number of malformed records skipped (nameless headers,
// headers with no sequence). Gzipped files are handled transparently by
// extension.
func ReadFASTA(path string) ([]FASTARecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, 0, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return parseFASTA(reader)
}

func parseFASTA(reader io.Reader) ([]FASTARecord, int, error) {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long sequences
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var records []FASTARecord
	var current string
	var seq strings.Builder
	skipped := 0

	flush := func() {
		if current == "" {
			return
		}
		if seq.Len() == 0 {
			skipped++
			return
		}
		records = append(records, FASTARecord{
			Name: current,
			Seq:  []byte(strings.ToUpper(seq.String())),
		})
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			flush()
			seq.Reset()
			fields := strings.Fields(line[1:])
			if len(fields) == 0 {
				// Nameless header: skip the record and its body.
				current = ""
				skipped++
				continue
			}
			current = fields[0]
			continue
		}
		seq.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scan FASTA: %w", err)
	}
	return records, skipped, nil
}

// LoadBarcodes reads a barcode FASTA and splits records into forward and
// reverse sets by ID prefix. Malformed records and records with neither
// prefix are skipped and counted. It is fatal to end up with an empty
// set for either orientation.
func LoadBarcodes(path, forwardPrefix, reversePrefix string) (forward, reverse []Barcode, skipped int, err error) {
	records, skipped, err := ReadFASTA(path)
	if err != nil {
		return nil, nil, skipped, err
	}

	for _, rec := range records {
		switch {
		case strings.HasPrefix(rec.Name, forwardPrefix):
			forward = append(forward, Barcode{ID: rec.Name, Orientation: Forward, Seq: rec.Seq})
		case strings.HasPrefix(rec.Name, reversePrefix):
			reverse = append(reverse, Barcode{ID: rec.Name, Orientation: Reverse, Seq: rec.Seq})
		default:
			skipped++
		}
	}

	if len(forward) == 0 {
		return nil, nil, skipped, fmt.Errorf("no forward barcodes with prefix %q in %s", forwardPrefix, path)
	}
	if len(reverse) == 0 {
		return nil, nil, skipped, fmt.Errorf("no reverse barcodes with prefix %q in %s", reversePrefix, path)
	}
	return forward, reverse, skipped, nil
}

// LoadReference reads the first record of a reference FASTA.
func LoadReference(path string) (*Reference, error) {
	records, _, err := ReadFASTA(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no sequences in reference %s", path)
	}
	if len(records[0].Seq) == 0 {
		return nil, fmt.Errorf("empty reference sequence in %s", path)
	}
	return &Reference{Name: records[0].Name, Seq: records[0].Seq}, nil
}
