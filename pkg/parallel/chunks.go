package parallel

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// ByteRange is a half-open [Start, End) span of a file.
type ByteRange struct {
	Start int64
	End   int64
}

// Len returns the number of bytes covered by the range.
func (r ByteRange) Len() int64 { return r.End - r.Start }

// LineAlignedRanges splits the region [dataStart, fileSize) of path into
// up to n byte ranges whose boundaries fall on line breaks. Each
// tentative boundary is snapped forward to the byte after the next '\n',
// so every line belongs to exactly one range. Ranges are returned in
// file order and cover the region exactly; fewer than n ranges come back
// when the region is small.
func LineAlignedRanges(path string, dataStart int64, n int) ([]ByteRange, error) {
	if n <= 0 {
		n = 1
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if dataStart >= size {
		return nil, nil
	}

	region := size - dataStart
	if int64(n) > region {
		n = int(region)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	step := region / int64(n)
	bounds := make([]int64, 0, n+1)
	bounds = append(bounds, dataStart)

	br := bufio.NewReader(f)
	for i := 1; i < n; i++ {
		target := dataStart + int64(i)*step
		prev := bounds[len(bounds)-1]
		if target <= prev {
			continue
		}

		if _, err := f.Seek(target, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek to %d: %w", target, err)
		}
		br.Reset(f)

		// Discard the partial line the target landed in; the owner of
		// the previous range reads it to completion.
		skipped, err := br.ReadBytes('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		aligned := target + int64(len(skipped))
		if aligned >= size {
			break
		}
		if aligned > prev {
			bounds = append(bounds, aligned)
		}
	}
	bounds = append(bounds, size)

	ranges := make([]ByteRange, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		if bounds[i] < bounds[i+1] {
			ranges = append(ranges, ByteRange{Start: bounds[i], End: bounds[i+1]})
		}
	}
	return ranges, nil
}
