package seq

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// FASTQReader reads Read records from a FASTQ file.
type FASTQReader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	skipped    int
}

// NewFASTQReader creates a reader for the given FASTQ file.
// Supports both plain and gzipped (.fastq.gz) files; gzip is detected
// from the magic bytes, not the file name. Use "-" for stdin.
func NewFASTQReader(path string) (*FASTQReader, error) {
	if path == "-" {
		return NewFASTQReaderFromReader(os.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fastq file: %w", err)
	}

	r := &FASTQReader{file: file}

	buf := make([]byte, 2)
	if _, err := file.Read(buf); err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read fastq header: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek fastq file: %w", err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	} else {
		r.reader = bufio.NewReader(file)
	}

	return r, nil
}

// NewFASTQReaderFromReader creates a reader from an io.Reader (e.g. stdin).
func NewFASTQReaderFromReader(rd io.Reader) *FASTQReader {
	return &FASTQReader{reader: bufio.NewReader(rd)}
}

// Next returns the next read, or (nil, nil) at end of input.
// Malformed records are skipped and counted; see Skipped.
func (r *FASTQReader) Next() (*Read, error) {
	for {
		header, err := r.readLine()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read fastq line %d: %w", r.lineNumber, err)
		}
		if header == "" {
			continue
		}

		if !strings.HasPrefix(header, "@") {
			r.skipped++
			continue
		}

		sequence, err := r.readLine()
		if err != nil {
			r.skipped++
			return nil, nil
		}
		plus, err := r.readLine()
		if err != nil || !strings.HasPrefix(plus, "+") {
			r.skipped++
			continue
		}
		quality, err := r.readLine()
		if err != nil {
			r.skipped++
			return nil, nil
		}

		if len(quality) != len(sequence) || len(sequence) == 0 {
			r.skipped++
			continue
		}

		id := strings.TrimPrefix(header, "@")
		if i := strings.IndexByte(id, ' '); i >= 0 {
			id = id[:i]
		}

		return &Read{
			ID:   id,
			Seq:  []byte(strings.ToUpper(sequence)),
			Qual: []byte(quality),
		}, nil
	}
}

// Skipped returns the number of malformed records skipped so far.
func (r *FASTQReader) Skipped() int {
	return r.skipped
}

func (r *FASTQReader) readLine() (string, error) {
	line, err := r.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if line == "" && err == io.EOF {
		return "", io.EOF
	}
	r.lineNumber++
	return strings.TrimRight(line, "\r\n"), nil
}

// Close closes the underlying file handles.
func (r *FASTQReader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
