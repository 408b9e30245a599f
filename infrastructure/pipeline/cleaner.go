// Package pipeline provides the record cleaning and feature
// engineering adapters that turn raw applicant batches into
// model-ready feature tables.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ahrav/go-underwrite/internal/domain"
	"github.com/ahrav/go-underwrite/internal/ports"
)

// SchemaCleaner coerces every schema field to its declared kind and
// normalizes categorical text to trimmed upper case. JSON transports
// deliver every number as float64, so integral floats are accepted for
// int fields; anything lossy is a validation failure.
type SchemaCleaner struct {
	schema domain.RawSchema
}

var _ ports.RecordCleaner = (*SchemaCleaner)(nil)

// NewSchemaCleaner builds a cleaner over the raw-input schema.
func NewSchemaCleaner(schema domain.RawSchema) *SchemaCleaner {
	return &SchemaCleaner{schema: schema}
}

// Clean returns a normalized copy of the batch. The input is never
// mutated. Type violations are collected across the whole batch, one
// per field, and reported together.
func (c *SchemaCleaner) Clean(_ context.Context, batch domain.RawBatch) (domain.RawBatch, error) {
	cleaned := make(domain.RawBatch, len(batch))
	violation := make(map[string]string)

	for i, record := range batch {
		out := make(domain.RawRecord, len(record))
		for field, value := range record {
			kind, ok := c.schema.Kind(field)
			if !ok {
				// Fields outside the schema pass through untouched.
				out[field] = value
				continue
			}
			coerced, err := coerce(value, kind)
			if err != nil {
				if _, seen := violation[field]; !seen {
					violation[field] = fmt.Sprintf("invalid type for field %q: %v", field, err)
				}
				continue
			}
			out[field] = coerced
		}
		cleaned[i] = out
	}

	if len(violation) > 0 {
		ve := domain.NewValidationError("batch")
		for _, field := range c.schema.Fields() {
			if msg, ok := violation[field]; ok {
				ve.AddError(msg)
			}
		}
		return nil, ve
	}
	return cleaned, nil
}

// coerce converts one raw value to the declared kind.
func coerce(value any, kind domain.FieldKind) (any, error) {
	switch kind {
	case domain.KindInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case int32:
			return int(v), nil
		case int64:
			return int(v), nil
		case float64:
			if v == math.Trunc(v) && !math.IsInf(v, 0) {
				return int(v), nil
			}
		case float32:
			if float64(v) == math.Trunc(float64(v)) {
				return int(v), nil
			}
		}
		return nil, fmt.Errorf("expected int, got %T", value)

	case domain.KindFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int32:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
		return nil, fmt.Errorf("expected float, got %T", value)

	case domain.KindString:
		if v, ok := value.(string); ok {
			// Unicode-aware upper casing so categorical levels compare
			// consistently regardless of the caller's locale habits.
			caser := cases.Upper(language.Und)
			return caser.String(strings.TrimSpace(v)), nil
		}
		return nil, fmt.Errorf("expected string, got %T", value)
	}

	return nil, fmt.Errorf("unsupported field kind %q", kind)
}
