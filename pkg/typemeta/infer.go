// Package typemeta infers simple property types from converted CSV
// files and emits the type_meta.json sidecar the importers read.
package typemeta

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
)

// SampleRows caps how many data rows are scanned per file when
// inferring column types.
const SampleRows = 10_000

// Meta is the type_meta.json document: property column name to type
// string ("long", "double", "boolean" or "string"). Key columns
// (node_id, src, dst) are excluded.
type Meta struct {
	NodeProperties map[string]string `json:"node_properties"`
	EdgeProperties map[string]string `json:"edge_properties"`
}

// Generate infers property types from nodesCSV and edgesCSV and writes
// the combined document to outPath. A missing input file contributes an
// empty property map rather than an error, matching converters that
// emit nodes only.
func Generate(nodesCSV, edgesCSV, outPath string) (*Meta, error) {
	meta := &Meta{
		NodeProperties: map[string]string{},
		EdgeProperties: map[string]string{},
	}

	if _, err := os.Stat(nodesCSV); err == nil {
		types, err := InferColumns(nodesCSV, 1) // skip node_id
		if err != nil {
			return nil, err
		}
		meta.NodeProperties = types
	}
	if _, err := os.Stat(edgesCSV); err == nil {
		types, err := InferColumns(edgesCSV, 2) // skip src, dst
		if err != nil {
			return nil, err
		}
		meta.EdgeProperties = types
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	data = append(data, '\n')
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", outPath, err)
	}
	return meta, nil
}

// column tracks what value shapes a column has exhibited so far.
type column struct {
	sawValue bool
	allInt   bool
	allFloat bool
	allBool  bool
}

func (c *column) observe(v string) {
	if v == "" {
		return // missing values do not influence the type
	}
	if !c.sawValue {
		c.sawValue = true
		c.allInt, c.allFloat, c.allBool = true, true, true
	}
	if c.allInt {
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			c.allInt = false
		}
	}
	if c.allFloat {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			c.allFloat = false
		}
	}
	if c.allBool {
		if v != "true" && v != "false" && v != "True" && v != "False" {
			c.allBool = false
		}
	}
}

func (c *column) typeString() string {
	switch {
	case !c.sawValue:
		return "string"
	case c.allBool:
		return "boolean"
	case c.allInt:
		return "long"
	case c.allFloat:
		return "double"
	default:
		return "string"
	}
}

// InferColumns samples up to SampleRows data rows of a CSV file and
// infers a type for each column past the first skip key columns.
// Integer columns widen to "long" and fractional ones to "double"; the
// narrow "integer"/"float" names are reserved for sources that declare
// their width explicitly, which CSV sampling cannot see.
func InferColumns(path string, skip int) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	names := make([]string, len(header))
	copy(names, header)

	cols := make([]column, len(names))
	for row := 0; row < SampleRows; row++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		for i := 0; i < len(record) && i < len(cols); i++ {
			if i < skip {
				continue
			}
			cols[i].observe(record[i])
		}
	}

	types := make(map[string]string, len(names)-skip)
	for i := skip; i < len(names); i++ {
		types[names[i]] = cols[i].typeString()
	}
	return types, nil
}
