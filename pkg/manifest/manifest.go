// Package manifest loads the YAML dataset manifest driving the fetch
// tool.
package manifest

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Supported source formats.
const (
	FormatMTX  = "mtx"  // Matrix Market
	FormatSNAP = "snap" // SNAP whitespace edge list
	FormatCSV  = "csv"
	FormatTSV  = "tsv"
	FormatJSON = "json"
)

var validate = validator.New()

// Dataset describes one downloadable dataset.
type Dataset struct {
	// Name identifies the dataset in logs and --only filters.
	Name string `yaml:"name" validate:"required"`

	// URL is the source location; http(s):// or s3://bucket/key.
	URL string `yaml:"url" validate:"required,uri"`

	// Format tags what the payload contains once extracted.
	Format string `yaml:"format" validate:"required,oneof=mtx snap csv tsv json"`

	// Output overrides the destination directory (defaults to the
	// fetch tool's --dir joined with Name).
	Output string `yaml:"output"`
}

// Manifest is the full dataset list.
type Manifest struct {
	Datasets []Dataset `yaml:"datasets" validate:"required,min=1,dive"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	seen := make(map[string]struct{}, len(m.Datasets))
	for _, d := range m.Datasets {
		if _, dup := seen[d.Name]; dup {
			return nil, fmt.Errorf("invalid manifest: duplicate dataset name %q", d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return &m, nil
}

// Find returns the dataset with the given name, or nil.
func (m *Manifest) Find(name string) *Dataset {
	for i := range m.Datasets {
		if m.Datasets[i].Name == name {
			return &m.Datasets[i]
		}
	}
	return nil
}
