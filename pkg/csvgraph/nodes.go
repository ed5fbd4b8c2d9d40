// Package csvgraph writes normalized graphs as the two-file tabular
// layout (nodes.csv / edges.csv) consumed by the bulk importers.
package csvgraph

import (
	"bufio"
	"encoding/csv"
	"os"
	"strconv"
)

// NodesHeader is the first column of every node file.
const NodesHeader = "node_id"

// WriteNodes writes a bare node file: header "node_id" followed by IDs
// 0..numNodes-1 in ascending order. Direct byte formatting instead of
// encoding/csv: the single-column case is the hot path for big graphs.
func WriteNodes(path string, numNodes int) error {
	f, err := os.Create(path)
	if err != nil {
		return ioErr("WriteNodes", path, err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1<<20)
	if _, err := w.WriteString(NodesHeader + "\n"); err != nil {
		return ioErr("WriteNodes", path, err)
	}

	buf := make([]byte, 0, 24)
	for i := 0; i < numNodes; i++ {
		buf = strconv.AppendInt(buf[:0], int64(i), 10)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return ioErr("WriteNodes", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return ioErr("WriteNodes", path, err)
	}
	return f.Close()
}

// WriteNodesWith writes a node file with attribute columns. header must
// start with "node_id"; row is called for each ID in ascending order
// and returns the attribute values for that node (everything after the
// ID column).
func WriteNodesWith(path string, header []string, numNodes int, row func(id int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return ioErr("WriteNodesWith", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriterSize(f, 1<<20)
	w := csv.NewWriter(bw)
	if err := w.Write(header); err != nil {
		return ioErr("WriteNodesWith", path, err)
	}

	record := make([]string, len(header))
	for i := 0; i < numNodes; i++ {
		record = record[:1]
		record[0] = strconv.Itoa(i)
		record = append(record, row(i)...)
		if err := w.Write(record); err != nil {
			return ioErr("WriteNodesWith", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return ioErr("WriteNodesWith", path, err)
	}
	if err := bw.Flush(); err != nil {
		return ioErr("WriteNodesWith", path, err)
	}
	return f.Close()
}
