package csvgraph

import (
	"bufio"
	"os"
	"strings"

	"github.com/dd0wney/cluso-datasets/pkg/parallel"
)

// HeaderColumns returns the column names from the first line of a CSV
// file.
func HeaderColumns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioErr("HeaderColumns", path, err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return nil, ioErr("HeaderColumns", path, err)
	}
	return strings.Split(strings.TrimRight(line, "\r\n"), ","), nil
}

// CountDataRows counts the data rows of a CSV file (total lines minus
// the header) using a parallel line count.
func CountDataRows(path string, workers int) (int64, error) {
	lines, err := parallel.CountLines(path, workers)
	if err != nil {
		return 0, ioErr("CountDataRows", path, err)
	}
	if lines == 0 {
		return 0, nil
	}
	return lines - 1, nil
}
