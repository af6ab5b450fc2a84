package seq

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// WellCoord is a position on a 96-well plate: row A-H, column 1-12.
type WellCoord struct {
	Row byte
	Col int
}

func (w WellCoord) String() string {
	return fmt.Sprintf("%c%d", w.Row, w.Col)
}

// ParseWellCoord parses coordinates like "A1" or "H12".
func ParseWellCoord(s string) (WellCoord, error) {
	if len(s) < 2 {
		return WellCoord{}, fmt.Errorf("invalid well coordinate %q", s)
	}
	row := s[0]
	if row < 'A' || row > 'H' {
		return WellCoord{}, fmt.Errorf("invalid well row in %q", s)
	}
	col, err := strconv.Atoi(s[1:])
	if err != nil || col < 1 || col > 12 {
		return WellCoord{}, fmt.Errorf("invalid well column in %q", s)
	}
	return WellCoord{Row: row, Col: col}, nil
}

// PlateWell identifies one well on one plate.
type PlateWell struct {
	Plate int
	Well  WellCoord
}

func (p PlateWell) String() string {
	return fmt.Sprintf("plate%d:%s", p.Plate, p.Well)
}

// Less orders plate/well identities by (plate, row, column).
func (p PlateWell) Less(o PlateWell) bool {
	if p.Plate != o.Plate {
		return p.Plate < o.Plate
	}
	if p.Well.Row != o.Well.Row {
		return p.Well.Row < o.Well.Row
	}
	return p.Well.Col < o.Well.Col
}

// barcodePair keys the layout by forward and reverse barcode IDs.
type barcodePair struct {
	Forward string
	Reverse string
}

// Layout maps (forward barcode, reverse barcode) pairs to plate/well
// identities. Built once at startup and shared read-only.
type Layout struct {
	pairs map[barcodePair]PlateWell
}

// Lookup resolves a barcode pair to its plate/well.
func (l *Layout) Lookup(forwardID, reverseID string) (PlateWell, bool) {
	pw, ok := l.pairs[barcodePair{Forward: forwardID, Reverse: reverseID}]
	return pw, ok
}

// Wells returns all mapped plate/well identities sorted by (plate, well).
func (l *Layout) Wells() []PlateWell {
	out := make([]PlateWell, 0, len(l.pairs))
	seen := make(map[PlateWell]bool, len(l.pairs))
	for _, pw := range l.pairs {
		if !seen[pw] {
			seen[pw] = true
			out = append(out, pw)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Size returns the number of mapped barcode pairs.
func (l *Layout) Size() int {
	return len(l.pairs)
}

// SingleWellLayout builds a layout holding just the given identity, for
// runs where demultiplexing is skipped.
func SingleWellLayout(pw PlateWell) *Layout {
	return &Layout{pairs: map[barcodePair]PlateWell{{}: pw}}
}

// barcodeNumber extracts the trailing integer of a barcode ID like "NB07".
func barcodeNumber(id string) (int, bool) {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return 0, false
	}
	n, err := strconv.Atoi(id[i:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// DefaultLayout builds the standard plate layout: forward barcode number n
// maps to well row (n-1)/12 (A-H), column (n-1)%12+1, and the reverse
// barcode number is the plate number. Forward barcodes outside 1-96 are
// skipped.
func DefaultLayout(forward, reverse []Barcode) *Layout {
	l := &Layout{pairs: make(map[barcodePair]PlateWell)}
	for _, rb := range reverse {
		plate, ok := barcodeNumber(rb.ID)
		if !ok {
			continue
		}
		for _, fb := range forward {
			n, ok := barcodeNumber(fb.ID)
			if !ok || n < 1 || n > 96 {
				continue
			}
			well := WellCoord{Row: 'A' + byte((n-1)/12), Col: (n-1)%12 + 1}
			l.pairs[barcodePair{Forward: fb.ID, Reverse: rb.ID}] = PlateWell{Plate: plate, Well: well}
		}
	}
	return l
}

// LoadLayout parses a tab-separated layout file with columns
// forward_barcode, reverse_barcode, plate, well. Lines starting with '#'
// are comments; malformed lines are skipped and counted.
func LoadLayout(path string) (*Layout, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open layout file: %w", err)
	}
	defer f.Close()

	l := &Layout{pairs: make(map[barcodePair]PlateWell)}
	skipped := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			skipped++
			continue
		}
		plate, err := strconv.Atoi(fields[2])
		if err != nil {
			skipped++
			continue
		}
		well, err := ParseWellCoord(fields[3])
		if err != nil {
			skipped++
			continue
		}
		l.pairs[barcodePair{Forward: fields[0], Reverse: fields[1]}] = PlateWell{Plate: plate, Well: well}
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scan layout file: %w", err)
	}
	if len(l.pairs) == 0 {
		return nil, skipped, fmt.Errorf("no usable layout entries in %s", path)
	}
	return l, skipped, nil
}
