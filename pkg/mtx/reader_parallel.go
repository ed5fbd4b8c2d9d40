package mtx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dd0wney/cluso-datasets/pkg/parallel"
)

// ReadParallel parses the Matrix Market file at path by splitting its
// data region into line-aligned byte ranges and parsing each range in
// its own worker. Per-range results are reassembled in file order after
// all workers finish, so the returned entry sequence is identical to
// what Read produces. Falls back to the sequential reader for small
// inputs or a single worker.
func ReadParallel(ctx context.Context, path string, workers int) (*Coordinates, error) {
	if workers <= 1 {
		return Read(path)
	}

	f, err := os.Open(path)
	if err != nil {
		if errIsNotExist(err) {
			return nil, parseErr("ReadParallel", path, 0, ErrNotFound)
		}
		return nil, parseErr("ReadParallel", path, 0, err)
	}

	br := bufio.NewReaderSize(f, readerBufSize)
	h, dataStart, err := ReadHeader(br)
	f.Close()
	if err != nil {
		return nil, parseErr("ReadHeader", path, 0, err)
	}

	// Not worth forking for tiny matrices.
	if h.NNZ < 4*workers {
		return readFrom(path, h, dataStart)
	}

	ranges, err := parallel.LineAlignedRanges(path, dataStart, workers)
	if err != nil {
		return nil, parseErr("ReadParallel", path, 0, err)
	}

	parts := make([]*Coordinates, len(ranges))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for i, rng := range ranges {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		i, rng := i, rng
		wg.Add(1)
		go func() {
			defer wg.Done()
			part, err := parseRange(path, h, rng)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			parts[i] = part
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, parseErr("ReadParallel", path, 0, firstErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	coo := &Coordinates{
		NumRows: h.Rows,
		NumCols: h.Cols,
		Rows:    make([]uint64, 0, h.NNZ),
		Cols:    make([]uint64, 0, h.NNZ),
		Vals:    make([]float64, 0, h.NNZ),
	}
	for _, part := range parts {
		coo.Rows = append(coo.Rows, part.Rows...)
		coo.Cols = append(coo.Cols, part.Cols...)
		coo.Vals = append(coo.Vals, part.Vals...)
	}

	if coo.NNZ() != h.NNZ {
		return nil, parseErr("ReadParallel", path, 0,
			fmt.Errorf("%w: read %d entries, header declares %d", ErrEntryCount, coo.NNZ(), h.NNZ))
	}
	return coo, nil
}

// readFrom runs the sequential entry parser starting at a known data
// offset, reusing an already-parsed header.
func readFrom(path string, h Header, dataStart int64) (*Coordinates, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, parseErr("Read", path, 0, err)
	}
	defer f.Close()

	if _, err := f.Seek(dataStart, io.SeekStart); err != nil {
		return nil, parseErr("Read", path, 0, err)
	}

	coo := &Coordinates{
		NumRows: h.Rows,
		NumCols: h.Cols,
		Rows:    make([]uint64, 0, h.NNZ),
		Cols:    make([]uint64, 0, h.NNZ),
		Vals:    make([]float64, 0, h.NNZ),
	}
	if err := parseEntries(bufio.NewReaderSize(f, readerBufSize), h, coo); err != nil {
		return nil, parseErr("Read", path, 0, err)
	}
	if coo.NNZ() != h.NNZ {
		return nil, parseErr("Read", path, 0,
			fmt.Errorf("%w: read %d entries, header declares %d", ErrEntryCount, coo.NNZ(), h.NNZ))
	}
	return coo, nil
}

// parseRange parses every data line inside one byte range. Entry-count
// validation happens after reassembly, when the whole file has been
// seen.
func parseRange(path string, h Header, rng parallel.ByteRange) (*Coordinates, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	part := &Coordinates{NumRows: h.Rows, NumCols: h.Cols}

	sc := bufio.NewScanner(io.NewSectionReader(f, rng.Start, rng.Len()))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '%' {
			continue
		}
		row, col, val, err := parseEntry(line, h)
		if err != nil {
			return nil, err
		}
		part.Rows = append(part.Rows, row)
		part.Cols = append(part.Cols, col)
		part.Vals = append(part.Vals, val)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return part, nil
}
