package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FeatureManifest is the model's exact input contract: an ordered
// sequence of feature names plus the expected column count, loaded
// once at startup from the same artifact bundle as the model and
// read-only afterwards.
//
// Count is carried separately from the name list on purpose. The two
// are cross-checked against every engineered table so that duplicate
// or collapsed columns cannot slip through a name-set comparison.
type FeatureManifest struct {
	names   []string
	nameSet map[string]struct{}
	count   int
}

// NewFeatureManifest builds a manifest from the ordered feature names
// and the declared feature count. Names are copied. It returns an
// error if the name list is empty, contains duplicates or blanks, or
// if the declared count is not positive.
func NewFeatureManifest(names []string, count int) (*FeatureManifest, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: feature manifest requires at least one name", ErrInvalidContract)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: feature count must be positive, got %d", ErrInvalidContract, count)
	}

	owned := make([]string, len(names))
	set := make(map[string]struct{}, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: feature name at position %d is empty", ErrInvalidContract, i)
		}
		if _, dup := set[name]; dup {
			return nil, fmt.Errorf("%w: duplicate feature name %q", ErrInvalidContract, name)
		}
		owned[i] = name
		set[name] = struct{}{}
	}

	return &FeatureManifest{names: owned, nameSet: set, count: count}, nil
}

// Names returns the ordered feature names.
// The returned slice is shared and must not be modified.
func (m *FeatureManifest) Names() []string { return m.names }

// Count returns the declared feature count.
func (m *FeatureManifest) Count() int { return m.count }

// Contains reports whether the named feature is part of the manifest.
func (m *FeatureManifest) Contains(name string) bool {
	_, ok := m.nameSet[name]
	return ok
}

// FeatureTable is the engineered, model-ready representation of a raw
// batch: one row per input record, one float64 cell per column.
// Column names are kept as produced by the feature builder, including
// any accidental duplicates, so the contract validator can see them.
type FeatureTable struct {
	columns []string
	rows    [][]float64
}

// NewFeatureTable builds a table from column names and row data.
// Every row must have exactly one cell per column.
func NewFeatureTable(columns []string, rows [][]float64) (*FeatureTable, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: feature table requires at least one column", ErrInvalidContract)
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidContract, i, len(row), len(columns))
		}
	}

	return &FeatureTable{columns: columns, rows: rows}, nil
}

// Columns returns the column names in table order.
// The returned slice is shared and must not be modified.
func (t *FeatureTable) Columns() []string { return t.columns }

// NumRows returns the number of rows in the table.
func (t *FeatureTable) NumRows() int { return len(t.rows) }

// NumColumns returns the number of columns in the table.
func (t *FeatureTable) NumColumns() int { return len(t.columns) }

// Row returns the i-th row as a feature vector sharing the table's
// column names.
func (t *FeatureTable) Row(i int) FeatureVector {
	return FeatureVector{features: t.columns, values: t.rows[i]}
}

// Rows returns the underlying row data.
// The returned slices are shared and must not be modified.
func (t *FeatureTable) Rows() [][]float64 { return t.rows }

// FeatureVector is a single model-ready row: feature names paired
// with their numeric values.
type FeatureVector struct {
	features []string
	values   []float64
}

// NewFeatureVector builds a vector from parallel name and value
// slices, which must have equal length.
func NewFeatureVector(features []string, values []float64) (FeatureVector, error) {
	if len(features) != len(values) {
		return FeatureVector{}, fmt.Errorf("%w: %d feature names for %d values", ErrInvalidContract, len(features), len(values))
	}

	return FeatureVector{features: features, values: values}, nil
}

// Features returns the feature names in vector order.
// The returned slice is shared and must not be modified.
func (v FeatureVector) Features() []string { return v.features }

// Values returns the numeric values in vector order.
// The returned slice is shared and must not be modified.
func (v FeatureVector) Values() []float64 { return v.values }

// Len returns the number of features in the vector.
func (v FeatureVector) Len() int { return len(v.features) }

// Fingerprint computes a deterministic, order-independent SHA256 key
// for the vector. Name/value pairs are serialized sorted by
// NFC-normalized feature name with a stable float encoding, so two
// vectors with the same content always hash identically regardless
// of column order.
func (v FeatureVector) Fingerprint() string {
	pairs := make([]string, len(v.features))
	for i, name := range v.features {
		pairs[i] = norm.NFC.String(name) + "=" + strconv.FormatFloat(v.values[i], 'g', -1, 64)
	}
	sort.Strings(pairs)

	hash := sha256.Sum256([]byte(strings.Join(pairs, "\n")))
	return hex.EncodeToString(hash[:])
}
