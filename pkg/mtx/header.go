// Package mtx reads sparse matrices in Matrix Market coordinate format
// into flat coordinate arrays suitable for graph conversion.
package mtx

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Matrix Market field and symmetry values the reader understands.
const (
	FieldReal    = "real"
	FieldInteger = "integer"
	FieldPattern = "pattern"

	SymmetryGeneral   = "general"
	SymmetrySymmetric = "symmetric"
	SymmetrySkew      = "skew-symmetric"
)

const bannerPrefix = "%%MatrixMarket"

// Header holds the parsed Matrix Market banner and dimension line.
type Header struct {
	Object   string // always "matrix"
	Format   string // always "coordinate" for sparse input
	Field    string // real, integer or pattern
	Symmetry string // general, symmetric or skew-symmetric

	Rows int // declared row count
	Cols int // declared column count
	NNZ  int // declared stored entry count
}

// Square reports whether the declared shape is square.
func (h Header) Square() bool { return h.Rows == h.Cols }

// Pattern reports whether entries carry no value column.
func (h Header) Pattern() bool { return h.Field == FieldPattern }

// ReadHeader consumes the banner, comment lines and the dimension line
// from r, returning the parsed header and the number of bytes consumed.
// The reader is left positioned at the first data line. Files without a
// banner line default to a real general matrix.
func ReadHeader(r *bufio.Reader) (Header, int64, error) {
	h := Header{
		Object:   "matrix",
		Format:   "coordinate",
		Field:    FieldReal,
		Symmetry: SymmetryGeneral,
	}

	var consumed int64
	sawBanner := false
	for {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return h, consumed, err
		}
		if line == "" && err == io.EOF {
			return h, consumed, fmt.Errorf("%w: no dimension line", ErrBadHeader)
		}
		consumed += int64(len(line))

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			// blank line before the dimension line
		case strings.HasPrefix(trimmed, bannerPrefix) && !sawBanner:
			sawBanner = true
			fields := strings.Fields(trimmed)
			// %%MatrixMarket matrix coordinate <field> <symmetry>
			if len(fields) >= 5 {
				h.Object = strings.ToLower(fields[1])
				h.Format = strings.ToLower(fields[2])
				h.Field = strings.ToLower(fields[3])
				h.Symmetry = strings.ToLower(fields[4])
			}
			if h.Format != "coordinate" {
				return h, consumed, fmt.Errorf("%w: unsupported format %q", ErrBadHeader, h.Format)
			}
		case strings.HasPrefix(trimmed, "%"):
			// comment
		default:
			rows, cols, nnz, err := parseDimensionLine(trimmed)
			if err != nil {
				return h, consumed, err
			}
			h.Rows, h.Cols, h.NNZ = rows, cols, nnz
			return h, consumed, nil
		}

		if err == io.EOF {
			return h, consumed, fmt.Errorf("%w: no dimension line", ErrBadHeader)
		}
	}
}

func parseDimensionLine(line string) (rows, cols, nnz int, err error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return 0, 0, 0, fmt.Errorf("%w: dimension line %q has %d fields, want 3", ErrBadHeader, line, len(fields))
	}

	rows, err = strconv.Atoi(fields[0])
	if err == nil {
		cols, err = strconv.Atoi(fields[1])
	}
	if err == nil {
		nnz, err = strconv.Atoi(fields[2])
	}
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: dimension line %q: %v", ErrBadHeader, line, err)
	}
	if rows <= 0 || cols <= 0 || nnz < 0 {
		return 0, 0, 0, fmt.Errorf("%w: dimension line %q declares non-positive shape", ErrBadHeader, line)
	}
	return rows, cols, nnz, nil
}
