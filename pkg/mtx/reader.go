package mtx

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// Coordinates is the parsed coordinate list of a sparse matrix. Row and
// column indices are 0-based (converted from the format's 1-based
// convention on read). Pattern matrices get a synthesized 1.0 value for
// every entry, so Vals is always populated and len(Vals) == len(Rows).
// Immutable after the reader returns it.
type Coordinates struct {
	NumRows int
	NumCols int

	Rows []uint64
	Cols []uint64
	Vals []float64
}

// NNZ returns the number of stored entries.
func (c *Coordinates) NNZ() int { return len(c.Rows) }

// Square reports whether the matrix shape is square.
func (c *Coordinates) Square() bool { return c.NumRows == c.NumCols }

const readerBufSize = 1 << 20

// Read parses the Matrix Market file at path in a single sequential
// pass. A missing file maps to ErrNotFound; malformed headers and
// entries map to ErrBadHeader / ErrBadEntry; a file with fewer data
// lines than the header declares maps to ErrEntryCount.
func Read(path string) (*Coordinates, error) {
	f, err := os.Open(path)
	if err != nil {
		if errIsNotExist(err) {
			return nil, parseErr("Read", path, 0, ErrNotFound)
		}
		return nil, parseErr("Read", path, 0, err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, readerBufSize)
	h, _, err := ReadHeader(br)
	if err != nil {
		return nil, parseErr("ReadHeader", path, 0, err)
	}

	coo := &Coordinates{
		NumRows: h.Rows,
		NumCols: h.Cols,
		Rows:    make([]uint64, 0, h.NNZ),
		Cols:    make([]uint64, 0, h.NNZ),
		Vals:    make([]float64, 0, h.NNZ),
	}

	if err := parseEntries(br, h, coo); err != nil {
		return nil, parseErr("Read", path, 0, err)
	}
	if coo.NNZ() != h.NNZ {
		return nil, parseErr("Read", path, 0,
			fmt.Errorf("%w: read %d entries, header declares %d", ErrEntryCount, coo.NNZ(), h.NNZ))
	}
	return coo, nil
}

// parseEntries reads data lines from br into coo until h.NNZ entries
// have been collected or input runs out. Comment and blank lines are
// skipped.
func parseEntries(br *bufio.Reader, h Header, coo *Coordinates) error {
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	for coo.NNZ() < h.NNZ && sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '%' {
			continue
		}
		row, col, val, err := parseEntry(line, h)
		if err != nil {
			return err
		}
		coo.Rows = append(coo.Rows, row)
		coo.Cols = append(coo.Cols, col)
		coo.Vals = append(coo.Vals, val)
	}
	return sc.Err()
}

// parseEntry parses one coordinate line, converting 1-based indices to
// 0-based and validating them against the declared shape.
func parseEntry(line string, h Header) (row, col uint64, val float64, err error) {
	rowField, rest := nextField(line)
	colField, rest := nextField(rest)
	if rowField == "" || colField == "" {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrBadEntry, line)
	}

	r1, err := strconv.ParseUint(rowField, 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q: %v", ErrBadEntry, line, err)
	}
	c1, err := strconv.ParseUint(colField, 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q: %v", ErrBadEntry, line, err)
	}
	if r1 == 0 || c1 == 0 {
		return 0, 0, 0, fmt.Errorf("%w: %q: indices are 1-based", ErrBadEntry, line)
	}

	row, col = r1-1, c1-1
	if row >= uint64(h.Rows) || col >= uint64(h.Cols) {
		return 0, 0, 0, fmt.Errorf("%w: (%d, %d) outside %dx%d", ErrIndexRange, r1, c1, h.Rows, h.Cols)
	}

	val = 1.0
	if !h.Pattern() {
		valField, _ := nextField(rest)
		if valField != "" {
			val, err = strconv.ParseFloat(valField, 64)
			if err != nil {
				return 0, 0, 0, fmt.Errorf("%w: %q: %v", ErrBadEntry, line, err)
			}
		}
	}
	return row, col, val, nil
}

// nextField returns the first whitespace-delimited token of s and the
// remainder. Avoids the per-line allocation of strings.Fields on the
// hot parse path.
func nextField(s string) (field, rest string) {
	start := 0
	for start < len(s) && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	end := start
	for end < len(s) && s[end] != ' ' && s[end] != '\t' {
		end++
	}
	return s[start:end], s[end:]
}

func errIsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
