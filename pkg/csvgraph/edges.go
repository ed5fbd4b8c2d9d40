package csvgraph

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/dd0wney/cluso-datasets/pkg/parallel"
)

// EdgesHeader is the header line of a bare src,dst edge file.
const EdgesHeader = "src,dst"

// DefaultChunkSize is the row count per parallel write chunk.
const DefaultChunkSize = 500_000

// EdgeWriteOptions controls the chunked parallel edge writer.
type EdgeWriteOptions struct {
	// Workers bounds the writer pool; <= 0 means GOMAXPROCS.
	Workers int

	// ChunkSize is rows per chunk; <= 0 means DefaultChunkSize.
	ChunkSize int

	// CompressChunks snappy-frames the temporary chunk files. Useful
	// when temp space is tighter than CPU. The final file is always
	// plain CSV.
	CompressChunks bool
}

func (o EdgeWriteOptions) chunkSize() int {
	if o.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return o.ChunkSize
}

// WriteEdges writes a bare src,dst edge file from parallel endpoint
// slices. Edges are partitioned into fixed-size contiguous chunks, each
// written to its own temp file by a pool worker, then concatenated in
// chunk order. Temp files are removed after a successful concatenation;
// a failure before concatenation leaves only temp files behind, never a
// truncated final file.
func WriteEdges(path string, src, dst []uint64, opts EdgeWriteOptions) error {
	if len(src) != len(dst) {
		return ioErr("WriteEdges", path, fmt.Errorf("src/dst length mismatch: %d vs %d", len(src), len(dst)))
	}

	writeChunk := func(w io.Writer, start, end int) error {
		buf := make([]byte, 0, 48)
		for i := start; i < end; i++ {
			buf = strconv.AppendUint(buf[:0], src[i], 10)
			buf = append(buf, ',')
			buf = strconv.AppendUint(buf, dst[i], 10)
			buf = append(buf, '\n')
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
		return nil
	}

	return writeChunked(path, EdgesHeader+"\n", len(src), opts, writeChunk)
}

// WriteEdgesWith writes an edge file with attribute columns. header
// must start with "src,dst"; row is called per edge index and returns
// the full record including endpoints.
func WriteEdgesWith(path string, header []string, numEdges int, row func(i int) []string, opts EdgeWriteOptions) error {
	headerLine := ""
	for i, h := range header {
		if i > 0 {
			headerLine += ","
		}
		headerLine += h
	}
	headerLine += "\n"

	writeChunk := func(w io.Writer, start, end int) error {
		cw := csv.NewWriter(w)
		for i := start; i < end; i++ {
			if err := cw.Write(row(i)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}

	return writeChunked(path, headerLine, numEdges, opts, writeChunk)
}

// writeChunked runs the partition / parallel-write / ordered-concat
// protocol shared by both edge writers.
func writeChunked(path, headerLine string, n int, opts EdgeWriteOptions, writeRows func(w io.Writer, start, end int) error) error {
	chunkSize := opts.chunkSize()
	numChunks := parallel.NumChunks(n, chunkSize)

	// Run-scoped temp naming so two concurrent conversions into the
	// same directory cannot claim each other's chunk files.
	runID := uuid.NewString()[:8]
	tmpName := func(chunk int) string {
		return fmt.Sprintf("%s.%s.part%d", path, runID, chunk)
	}

	cleanup := func() {
		for i := 0; i < numChunks; i++ {
			os.Remove(tmpName(i))
		}
	}

	err := parallel.RunChunks(opts.Workers, n, chunkSize, func(chunk, start, end int) error {
		return writeChunkFile(tmpName(chunk), opts.CompressChunks, func(w io.Writer) error {
			return writeRows(w, start, end)
		})
	})
	if err != nil {
		cleanup()
		return ioErr("WriteEdges", path, err)
	}

	if err := concatChunks(path, headerLine, tmpName, numChunks, opts.CompressChunks); err != nil {
		cleanup()
		os.Remove(path)
		return err
	}
	return nil
}

func writeChunkFile(path string, compress bool, fill func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriterSize(f, 1<<20)
	var w io.Writer = bw

	var sw *snappy.Writer
	if compress {
		sw = snappy.NewBufferedWriter(bw)
		w = sw
	}

	if err := fill(w); err != nil {
		return err
	}
	if sw != nil {
		if err := sw.Close(); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// concatChunks assembles the final file: header first, then each chunk
// in order, removing chunk files as they are consumed.
func concatChunks(path, headerLine string, tmpName func(int) string, numChunks int, compressed bool) error {
	out, err := os.Create(path)
	if err != nil {
		return ioErr("concat", path, err)
	}
	defer out.Close()

	bw := bufio.NewWriterSize(out, 1<<20)
	if _, err := bw.WriteString(headerLine); err != nil {
		return ioErr("concat", path, err)
	}

	for i := 0; i < numChunks; i++ {
		if err := appendChunk(bw, tmpName(i), compressed); err != nil {
			return ioErr("concat", path, err)
		}
		if err := os.Remove(tmpName(i)); err != nil {
			return ioErr("concat", path, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return ioErr("concat", path, err)
	}
	return out.Close()
}

func appendChunk(w io.Writer, tmpPath string, compressed bool) error {
	in, err := os.Open(tmpPath)
	if err != nil {
		return err
	}
	defer in.Close()

	var r io.Reader = in
	if compressed {
		r = snappy.NewReader(in)
	}
	_, err = io.Copy(w, r)
	return err
}
