package parallel

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLines(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func TestLineAlignedRangesCoverRegion(t *testing.T) {
	lines := make([]string, 200)
	for i := range lines {
		lines[i] = fmt.Sprintf("line-%d with some padding text", i)
	}
	path := writeLines(t, lines)

	info, err := os.Stat(path)
	require.NoError(t, err)

	for _, n := range []int{1, 2, 4, 7, 16} {
		ranges, err := LineAlignedRanges(path, 0, n)
		require.NoError(t, err, "n=%d", n)
		require.NotEmpty(t, ranges)

		// Contiguous cover of [0, size).
		assert.Equal(t, int64(0), ranges[0].Start, "n=%d", n)
		assert.Equal(t, info.Size(), ranges[len(ranges)-1].End, "n=%d", n)
		for i := 1; i < len(ranges); i++ {
			assert.Equal(t, ranges[i-1].End, ranges[i].Start, "n=%d gap at %d", n, i)
		}

		// Reading ranges independently reproduces every line exactly once.
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		var got []string
		for _, rng := range ranges {
			part := raw[rng.Start:rng.End]
			for _, l := range bytes.Split(bytes.TrimSuffix(part, []byte("\n")), []byte("\n")) {
				got = append(got, string(l))
			}
		}
		assert.Equal(t, lines, got, "n=%d", n)
	}
}

func TestLineAlignedRangesBoundariesOnLineBreaks(t *testing.T) {
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = fmt.Sprintf("%d %d", i, i*2)
	}
	path := writeLines(t, lines)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	ranges, err := LineAlignedRanges(path, 0, 5)
	require.NoError(t, err)
	for _, rng := range ranges[1:] {
		assert.Equal(t, byte('\n'), raw[rng.Start-1], "range start %d not after a line break", rng.Start)
	}
}

func TestLineAlignedRangesDataStart(t *testing.T) {
	path := writeLines(t, []string{"header to skip", "a", "b", "c"})

	dataStart := int64(len("header to skip") + 1)
	ranges, err := LineAlignedRanges(path, dataStart, 2)
	require.NoError(t, err)
	require.NotEmpty(t, ranges)
	assert.Equal(t, dataStart, ranges[0].Start)
}

func TestLineAlignedRangesEmptyRegion(t *testing.T) {
	path := writeLines(t, []string{"only line"})

	info, err := os.Stat(path)
	require.NoError(t, err)

	ranges, err := LineAlignedRanges(path, info.Size(), 4)
	require.NoError(t, err)
	assert.Empty(t, ranges)
}

func TestCountLines(t *testing.T) {
	lines := make([]string, 1234)
	for i := range lines {
		lines[i] = fmt.Sprintf("row %d", i)
	}
	path := writeLines(t, lines)

	for _, workers := range []int{1, 2, 8} {
		n, err := CountLines(path, workers)
		require.NoError(t, err, "workers=%d", workers)
		assert.Equal(t, int64(1234), n, "workers=%d", workers)
	}
}

func TestCountLinesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	n, err := CountLines(path, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCountLinesMissingFile(t *testing.T) {
	_, err := CountLines(filepath.Join(t.TempDir(), "nope.txt"), 4)
	assert.Error(t, err)
}
