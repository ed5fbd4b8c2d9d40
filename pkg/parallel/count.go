package parallel

import (
	"bytes"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

const countReadSize = 1 << 20 // 1MB reads

// CountLines counts '\n' bytes in path using up to workers goroutines,
// each scanning an exclusive byte range. Per-range counts are summed
// after all workers finish. Byte-exact splitting is fine here: newline
// counting needs no line alignment.
func CountLines(path string, workers int) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	size := info.Size()
	if size == 0 {
		return 0, nil
	}

	if workers <= 0 {
		workers = 1
	}
	if int64(workers) > size {
		workers = 1
	}

	step := size / int64(workers)
	var (
		total    atomic.Int64
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for i := 0; i < workers; i++ {
		start := int64(i) * step
		end := start + step
		if i == workers-1 {
			end = size
		}

		wg.Add(1)
		go func(start, end int64) {
			defer wg.Done()
			n, err := countRange(path, start, end)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			total.Add(n)
		}(start, end)
	}

	wg.Wait()
	if firstErr != nil {
		return 0, firstErr
	}
	return total.Load(), nil
}

func countRange(path string, start, end int64) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := io.NewSectionReader(f, start, end-start)
	buf := make([]byte, countReadSize)
	var count int64
	for {
		n, err := r.Read(buf)
		count += int64(bytes.Count(buf[:n], []byte{'\n'}))
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return 0, err
		}
	}
}
