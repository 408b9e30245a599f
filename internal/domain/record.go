// Package domain contains pure, dependency-free domain models and types
// for the credit decision service.
package domain

import (
	"fmt"
	"sort"
)

// RawRecord represents one applicant's unprocessed input fields as
// submitted, mapping field names to scalar values (integers, floats,
// or short categorical strings).
type RawRecord map[string]any

// Has reports whether the record contains the named field.
func (r RawRecord) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// RawBatch is an ordered sequence of raw records sharing one schema.
// Every record in a batch must expose the same field set.
type RawBatch []RawRecord

// MaxBatchSize is the largest raw batch accepted for scoring.
// Larger batches are rejected before any processing.
const MaxBatchSize = 500

// FieldKind identifies the expected scalar type of a raw input field.
type FieldKind string

// Supported raw field kinds.
const (
	KindInt    FieldKind = "int"
	KindFloat  FieldKind = "float"
	KindString FieldKind = "string"
)

// Valid reports whether the kind is one of the supported scalar kinds.
func (k FieldKind) Valid() bool {
	switch k {
	case KindInt, KindFloat, KindString:
		return true
	default:
		return false
	}
}

// RawSchema declares the raw-input contract: every field the service
// requires from an applicant record and its expected kind.
// A RawSchema is built once at startup and is read-only afterwards;
// no holder ever mutates it.
type RawSchema struct {
	kinds  map[string]FieldKind
	fields []string // sorted for deterministic iteration
}

// NewRawSchema builds a schema from a field-to-kind mapping.
// The mapping is copied, so later changes to the argument do not
// affect the schema. It returns an error if the mapping is empty or
// contains an unsupported kind.
func NewRawSchema(kinds map[string]FieldKind) (RawSchema, error) {
	if len(kinds) == 0 {
		return RawSchema{}, fmt.Errorf("%w: raw schema requires at least one field", ErrInvalidContract)
	}

	owned := make(map[string]FieldKind, len(kinds))
	fields := make([]string, 0, len(kinds))
	for field, kind := range kinds {
		if field == "" {
			return RawSchema{}, fmt.Errorf("%w: raw schema field name must not be empty", ErrInvalidContract)
		}
		if !kind.Valid() {
			return RawSchema{}, fmt.Errorf("%w: field %q has unsupported kind %q", ErrInvalidContract, field, kind)
		}
		owned[field] = kind
		fields = append(fields, field)
	}
	sort.Strings(fields)

	return RawSchema{kinds: owned, fields: fields}, nil
}

// Fields returns the declared field names in sorted order.
// The returned slice is shared and must not be modified.
func (s RawSchema) Fields() []string { return s.fields }

// Kind returns the declared kind for the named field and whether
// the field is part of the schema.
func (s RawSchema) Kind(field string) (FieldKind, bool) {
	k, ok := s.kinds[field]
	return k, ok
}

// Len returns the number of declared fields.
func (s RawSchema) Len() int { return len(s.fields) }
