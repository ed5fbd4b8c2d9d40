package convert

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-datasets/pkg/csr"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTriangle(t *testing.T, dir string) string {
	t.Helper()
	content := "%%MatrixMarket matrix coordinate pattern general\n3 3 3\n1 2\n2 3\n1 3\n"
	path := filepath.Join(dir, "triangle.mtx")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCSVJobRun(t *testing.T) {
	dir := t.TempDir()
	job := CSVJob{
		Input:            writeTriangle(t, dir),
		OutputDir:        filepath.Join(dir, "out"),
		Workers:          2,
		PreserveIsolated: true,
		Logger:           testLogger(),
	}

	res, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Nodes: 3, Edges: 3}, res)

	nodes, err := os.ReadFile(job.NodesPath())
	require.NoError(t, err)
	assert.Equal(t, "node_id\n0\n1\n2\n", string(nodes))

	edges, err := os.ReadFile(job.EdgesPath())
	require.NoError(t, err)
	assert.Equal(t, "src,dst\n0,1\n1,2\n0,2\n", string(edges))
}

func TestCSVJobSkipsExistingOutputs(t *testing.T) {
	dir := t.TempDir()
	job := CSVJob{
		Input:            writeTriangle(t, dir),
		OutputDir:        filepath.Join(dir, "out"),
		PreserveIsolated: true,
		Logger:           testLogger(),
	}

	_, err := job.Run(context.Background())
	require.NoError(t, err)

	// Tamper with an output; a second run must not touch it.
	require.NoError(t, os.WriteFile(job.NodesPath(), []byte("tampered"), 0644))

	res, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	raw, err := os.ReadFile(job.NodesPath())
	require.NoError(t, err)
	assert.Equal(t, "tampered", string(raw))
}

func TestCSVJobForceRewrites(t *testing.T) {
	dir := t.TempDir()
	job := CSVJob{
		Input:            writeTriangle(t, dir),
		OutputDir:        filepath.Join(dir, "out"),
		PreserveIsolated: true,
		Logger:           testLogger(),
	}

	_, err := job.Run(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(job.EdgesPath())
	require.NoError(t, err)

	job.Force = true
	res, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Skipped)

	second, err := os.ReadFile(job.EdgesPath())
	require.NoError(t, err)
	assert.Equal(t, first, second, "forced re-run is byte-identical")
}

func TestCSVJobCompaction(t *testing.T) {
	dir := t.TempDir()
	content := "%%MatrixMarket matrix coordinate pattern general\n10 10 2\n3 4\n8 9\n"
	input := filepath.Join(dir, "sparse.mtx")
	require.NoError(t, os.WriteFile(input, []byte(content), 0644))

	job := CSVJob{
		Input:     input,
		OutputDir: filepath.Join(dir, "out"),
		Logger:    testLogger(),
	}

	res, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Nodes, "only referenced nodes survive compaction")

	edges, err := os.ReadFile(job.EdgesPath())
	require.NoError(t, err)
	assert.Equal(t, "src,dst\n0,1\n2,3\n", string(edges))
}

func TestCSVJobMissingInput(t *testing.T) {
	dir := t.TempDir()
	job := CSVJob{
		Input:     filepath.Join(dir, "nope.mtx"),
		OutputDir: filepath.Join(dir, "out"),
		Logger:    testLogger(),
	}

	_, err := job.Run(context.Background())
	assert.Error(t, err)
}

func TestCSRJobRun(t *testing.T) {
	dir := t.TempDir()
	job := CSRJob{
		Input:      writeTriangle(t, dir),
		OutputBase: filepath.Join(dir, "out", "triangle"),
		Workers:    2,
		Logger:     testLogger(),
	}

	res, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Nodes: 3, Edges: 3}, res)

	colPath, dstPath, valPath := csr.FileNames(job.OutputBase)

	indptr, err := csr.ReadUint64File(colPath)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 2, 3, 3}, indptr)

	indices, err := csr.ReadUint64File(dstPath)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 2}, indices)

	vals, err := csr.ReadFloat32File(valPath)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 1}, vals)
}

func TestCSRJobSkipsExistingOutputs(t *testing.T) {
	dir := t.TempDir()
	job := CSRJob{
		Input:      writeTriangle(t, dir),
		OutputBase: filepath.Join(dir, "out", "triangle"),
		Logger:     testLogger(),
	}

	_, err := job.Run(context.Background())
	require.NoError(t, err)

	res, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)
}
