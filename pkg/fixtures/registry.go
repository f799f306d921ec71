// Package fixtures holds the static expectation data the verification suite
// compares driver output against: per-index CSV attributes, schema property
// sets, and the flat sequence of proto-test cases. Everything is loaded once
// at suite start and never mutated.
package fixtures

import (
	"fmt"
	"sort"

	"github.com/ruslano69/esql-verify/pkg/core/convert"
)

// TestCase - one (query, expected type, expected value) proto-test tuple
type TestCase struct {
	// Query - the SQL text to execute, expected to return one row, one column
	Query string `yaml:"query"`

	// ColumnName - name of the single result column
	ColumnName string `yaml:"column"`

	// DeclaredType - type tag driving conversion dispatch
	DeclaredType convert.TypeTag `yaml:"type"`

	// LiteralValue - the textual fixture value to convert
	LiteralValue string `yaml:"value"`

	// DisplayLiteral - the client-visible rendering; differs from
	// LiteralValue only for interval cases, signaling the
	// literal-extraction path instead of direct conversion
	DisplayLiteral string `yaml:"display"`

	// DisplaySize - declared display size of the column
	DisplaySize int `yaml:"display_size"`
}

// CsvAttributes - expected shape of one index's CSV round-trip
type CsvAttributes struct {
	IndexName   string
	Digest      string
	ColumnNames []string
	RowCount    int
}

// IndexFixture - the raw per-index expectation block as it appears in a
// fixture file
type IndexFixture struct {
	// Digest - md5 (hex) of the reconstructed CSV, order-dependent
	Digest string `yaml:"csv_digest"`

	// Columns - CSV column selection, order-dependent
	Columns []string `yaml:"csv_columns"`

	// RowCount - number of data rows (header excluded)
	RowCount int `yaml:"csv_rows"`

	// Properties - declared property names of the index template,
	// order-independent (compared as a set)
	Properties []string `yaml:"properties"`
}

// Registry is the read-only fixture registry. Construct it with Load or
// NewRegistry; accessors return copies so callers cannot mutate it.
type Registry struct {
	catalog string
	indices map[string]IndexFixture
	cases   []TestCase
}

// NewRegistry builds a registry from already-parsed fixture data.
func NewRegistry(catalog string, indices map[string]IndexFixture, cases []TestCase) (*Registry, error) {
	if catalog == "" {
		return nil, fmt.Errorf("fixture catalog name is empty")
	}
	for name, ix := range indices {
		if len(ix.Columns) == 0 && ix.Digest != "" {
			return nil, fmt.Errorf("index %q: csv digest without column list", name)
		}
	}
	copied := make(map[string]IndexFixture, len(indices))
	for name, ix := range indices {
		copied[name] = ix
	}
	copiedCases := append([]TestCase(nil), cases...)
	for i := range copiedCases {
		// A case without an explicit display literal is an ordinary scalar
		// case; only intervals carry a diverging display form.
		if copiedCases[i].DisplayLiteral == "" {
			copiedCases[i].DisplayLiteral = copiedCases[i].LiteralValue
		}
	}
	return &Registry{
		catalog: catalog,
		indices: copied,
		cases:   copiedCases,
	}, nil
}

// Catalog returns the single catalog name the driver under test exposes.
func (r *Registry) Catalog() string {
	return r.catalog
}

// IndexNames returns all fixture index names, sorted.
func (r *Registry) IndexNames() []string {
	names := make([]string, 0, len(r.indices))
	for name := range r.indices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CsvAttributes returns the CSV round-trip expectations for an index.
func (r *Registry) CsvAttributes(index string) (CsvAttributes, error) {
	ix, ok := r.indices[index]
	if !ok {
		return CsvAttributes{}, fmt.Errorf("no fixture for index %q", index)
	}
	return CsvAttributes{
		IndexName:   index,
		Digest:      ix.Digest,
		ColumnNames: append([]string(nil), ix.Columns...),
		RowCount:    ix.RowCount,
	}, nil
}

// Schema returns the declared property names of an index, sorted. Catalog
// comparisons are order-independent, so a set in stable order is enough.
func (r *Registry) Schema(index string) ([]string, error) {
	ix, ok := r.indices[index]
	if !ok {
		return nil, fmt.Errorf("no fixture for index %q", index)
	}
	props := append([]string(nil), ix.Properties...)
	sort.Strings(props)
	return props, nil
}

// ProtoCases returns the proto-test tuples in fixture order.
func (r *Registry) ProtoCases() []TestCase {
	return append([]TestCase(nil), r.cases...)
}
