package typemeta

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestInferColumns(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "nodes.csv",
		"node_id,name,year,rating,active\n"+
			"0,alice,1999,4.5,true\n"+
			"1,bob,2004,3.0,false\n"+
			"2,carol,2011,5,True\n")

	types, err := InferColumns(path, 1)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"name":   "string",
		"year":   "long",
		"rating": "double",
		"active": "boolean",
	}, types)
}

func TestInferColumnsSkipsKeyColumns(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "edges.csv",
		"src,dst,weight\n0,1,2.5\n1,2,3.5\n")

	types, err := InferColumns(path, 2)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"weight": "double"}, types)
	assert.NotContains(t, types, "src")
	assert.NotContains(t, types, "dst")
}

func TestInferColumnsEmptyValuesIgnored(t *testing.T) {
	// A column that is sometimes empty keeps the type of its non-empty
	// values; one that is always empty defaults to string.
	path := writeCSV(t, t.TempDir(), "nodes.csv",
		"node_id,year,note\n0,1999,\n1,,\n2,2004,\n")

	types, err := InferColumns(path, 1)
	require.NoError(t, err)

	assert.Equal(t, "long", types["year"])
	assert.Equal(t, "string", types["note"])
}

func TestInferColumnsMixedDemotesToString(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "nodes.csv",
		"node_id,v\n0,12\n1,hello\n")

	types, err := InferColumns(path, 1)
	require.NoError(t, err)
	assert.Equal(t, "string", types["v"])
}

func TestInferColumnsIntWidensToDouble(t *testing.T) {
	// Integers followed by a fractional value make the column double.
	path := writeCSV(t, t.TempDir(), "nodes.csv",
		"node_id,v\n0,1\n1,2\n2,2.5\n")

	types, err := InferColumns(path, 1)
	require.NoError(t, err)
	assert.Equal(t, "double", types["v"])
}

func TestInferColumnsRaggedRows(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "nodes.csv",
		"node_id,a,b\n0,1\n1,2,3\n")

	types, err := InferColumns(path, 1)
	require.NoError(t, err)
	assert.Equal(t, "long", types["a"])
	assert.Equal(t, "long", types["b"])
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "nodes.csv", "node_id,name\n0,alice\n")
	writeCSV(t, dir, "edges.csv", "src,dst,rating,timestamp\n0,1,4.5,964982703\n")
	out := filepath.Join(dir, "type_meta.json")

	meta, err := Generate(filepath.Join(dir, "nodes.csv"), filepath.Join(dir, "edges.csv"), out)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"name": "string"}, meta.NodeProperties)
	assert.Equal(t, map[string]string{"rating": "double", "timestamp": "long"}, meta.EdgeProperties)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)

	var decoded Meta
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, meta.NodeProperties, decoded.NodeProperties)
	assert.Equal(t, meta.EdgeProperties, decoded.EdgeProperties)
}

func TestGenerateMissingInputs(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "type_meta.json")

	meta, err := Generate(filepath.Join(dir, "nodes.csv"), filepath.Join(dir, "edges.csv"), out)
	require.NoError(t, err)

	assert.Empty(t, meta.NodeProperties)
	assert.Empty(t, meta.EdgeProperties)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"node_properties":{},"edge_properties":{}}`, string(raw))
}
