package main

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/dd0wney/cluso-datasets/pkg/csvgraph"
)

// datasetStats summarizes a converted dataset directory.
type datasetStats struct {
	Dir       string
	NodeCount int64
	EdgeCount int64

	MeanOutDegree   float64
	StdDevOutDegree float64
	MaxOutDegree    int64

	// DegreeHistogram buckets out-degrees by floor(log2(d)); index 0 is
	// degree 0 (isolated sources), index 1 is degree 1, index i>=1
	// covers [2^(i-1), 2^i).
	DegreeHistogram []int64

	SampleEdges [][]string
	EdgeColumns []string
}

const sampleEdgeRows = 20

// collectStats scans nodes.csv/edges.csv in dir. The degree tally reads
// the src column only; attribute columns are ignored.
func collectStats(dir string, workers int) (*datasetStats, error) {
	nodesFile := dir + "/nodes.csv"
	edgesFile := dir + "/edges.csv"

	st := &datasetStats{Dir: dir}

	nodeCount, err := csvgraph.CountDataRows(nodesFile, workers)
	if err != nil {
		return nil, err
	}
	st.NodeCount = nodeCount

	cols, err := csvgraph.HeaderColumns(edgesFile)
	if err != nil {
		return nil, err
	}
	st.EdgeColumns = cols

	f, err := os.Open(edgesFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	outDegree := make(map[int64]int64)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Scan() // header

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if len(st.SampleEdges) < sampleEdgeRows {
			st.SampleEdges = append(st.SampleEdges, strings.Split(line, ","))
		}
		comma := strings.IndexByte(line, ',')
		if comma < 0 {
			continue
		}
		src, err := strconv.ParseInt(line[:comma], 10, 64)
		if err != nil {
			continue
		}
		outDegree[src]++
		st.EdgeCount++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	// Degree-0 sources are every node that never appears as src.
	degrees := make([]float64, 0, nodeCount)
	zeroSources := nodeCount - int64(len(outDegree))
	for i := int64(0); i < zeroSources; i++ {
		degrees = append(degrees, 0)
	}
	for _, d := range outDegree {
		degrees = append(degrees, float64(d))
		if d > st.MaxOutDegree {
			st.MaxOutDegree = d
		}
	}

	if len(degrees) > 0 {
		st.MeanOutDegree = stat.Mean(degrees, nil)
		st.StdDevOutDegree = stat.StdDev(degrees, nil)
	}

	buckets := 2
	if st.MaxOutDegree > 1 {
		buckets = int(math.Floor(math.Log2(float64(st.MaxOutDegree)))) + 2
	}
	st.DegreeHistogram = make([]int64, buckets)
	st.DegreeHistogram[0] = zeroSources
	for _, d := range outDegree {
		idx := 1
		if d > 1 {
			idx = int(math.Floor(math.Log2(float64(d)))) + 1
		}
		st.DegreeHistogram[idx]++
	}

	return st, nil
}

// bucketLabel names a log2 histogram bucket.
func bucketLabel(i int) string {
	switch i {
	case 0:
		return "0"
	case 1:
		return "1"
	default:
		return fmt.Sprintf("%d-%d", 1<<(i-1), 1<<i-1)
	}
}
