package csr

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// File suffixes are a fixed contract with the downstream native loader:
// it reads row offsets from .bel.col and column indices from .bel.dst.
// The swap is historical and must not be "fixed" here.
const (
	SuffixRowOffsets = ".bel.col"
	SuffixColIndices = ".bel.dst"
	SuffixWeights    = ".bel.val"
)

// Each array file starts with two 8-byte fields: the element count and
// a reserved zero.
const headerBytes = 16

const writeBufSize = 64 * 1024

// WriteFiles writes the matrix as three binary array files sharing the
// base path: base+".bel.col" (Indptr), base+".bel.dst" (Indices) and
// base+".bel.val" (Data). The base directory is created if missing.
// Write failures abort with the partial file left for the operator; no
// array file is ever valid with a wrong count header.
func (m *Matrix) WriteFiles(base string) error {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &IOError{Op: "WriteFiles", Path: dir, Cause: err}
		}
	}

	if err := writeUint64File(base+SuffixRowOffsets, m.Indptr); err != nil {
		return err
	}
	if err := writeUint64File(base+SuffixColIndices, m.Indices); err != nil {
		return err
	}
	return writeFloat32File(base+SuffixWeights, m.Data)
}

// FileNames returns the three output paths WriteFiles produces for base.
func FileNames(base string) (col, dst, val string) {
	return base + SuffixRowOffsets, base + SuffixColIndices, base + SuffixWeights
}

func writeHeader(w io.Writer, count uint64) error {
	var hdr [headerBytes]byte
	binary.NativeEndian.PutUint64(hdr[0:8], count)
	binary.NativeEndian.PutUint64(hdr[8:16], 0) // reserved
	_, err := w.Write(hdr[:])
	return err
}

func writeUint64File(path string, data []uint64) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "writeUint64File", Path: path, Cause: err}
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, writeBufSize)
	if err := writeHeader(w, uint64(len(data))); err != nil {
		return &IOError{Op: "writeUint64File", Path: path, Cause: err}
	}

	var buf [8]byte
	for _, v := range data {
		binary.NativeEndian.PutUint64(buf[:], v)
		if _, err := w.Write(buf[:]); err != nil {
			return &IOError{Op: "writeUint64File", Path: path, Cause: err}
		}
	}
	if err := w.Flush(); err != nil {
		return &IOError{Op: "writeUint64File", Path: path, Cause: err}
	}
	return f.Close()
}

func writeFloat32File(path string, data []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "writeFloat32File", Path: path, Cause: err}
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, writeBufSize)
	if err := writeHeader(w, uint64(len(data))); err != nil {
		return &IOError{Op: "writeFloat32File", Path: path, Cause: err}
	}

	var buf [4]byte
	for _, v := range data {
		binary.NativeEndian.PutUint32(buf[:], math.Float32bits(v))
		if _, err := w.Write(buf[:]); err != nil {
			return &IOError{Op: "writeFloat32File", Path: path, Cause: err}
		}
	}
	if err := w.Flush(); err != nil {
		return &IOError{Op: "writeFloat32File", Path: path, Cause: err}
	}
	return f.Close()
}

// ReadUint64File reads back a uint64 array file, validating the count
// header against the body length. Used by tests and the preview tool.
func ReadUint64File(path string) ([]uint64, error) {
	body, count, err := readArrayFile(path, 8)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, count)
	for i := range out {
		out[i] = binary.NativeEndian.Uint64(body[i*8:])
	}
	return out, nil
}

// ReadFloat32File reads back a float32 array file.
func ReadFloat32File(path string) ([]float32, error) {
	body, count, err := readArrayFile(path, 4)
	if err != nil {
		return nil, err
	}
	out := make([]float32, count)
	for i := range out {
		out[i] = math.Float32frombits(binary.NativeEndian.Uint32(body[i*4:]))
	}
	return out, nil
}

func readArrayFile(path string, itemSize int) (body []byte, count uint64, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, &IOError{Op: "readArrayFile", Path: path, Cause: err}
	}
	if len(raw) < headerBytes {
		return nil, 0, &IOError{Op: "readArrayFile", Path: path,
			Cause: fmt.Errorf("file shorter than %d-byte header", headerBytes)}
	}
	count = binary.NativeEndian.Uint64(raw[0:8])
	body = raw[headerBytes:]
	if uint64(len(body)) != count*uint64(itemSize) {
		return nil, 0, &IOError{Op: "readArrayFile", Path: path,
			Cause: fmt.Errorf("count header %d does not match %d body bytes", count, len(body))}
	}
	return body, count, nil
}

// IOError wraps a file system failure with its operation and path.
type IOError struct {
	Op    string
	Path  string
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *IOError) Unwrap() error { return e.Cause }
