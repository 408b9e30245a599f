package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-underwrite/internal/domain"
)

func testSchema(t *testing.T) domain.RawSchema {
	t.Helper()
	schema, err := domain.NewRawSchema(map[string]domain.FieldKind{
		"person_age":    domain.KindInt,
		"person_income": domain.KindFloat,
		"loan_intent":   domain.KindString,
	})
	require.NoError(t, err)
	return schema
}

func TestSchemaCleanerCoercion(t *testing.T) {
	cleaner := NewSchemaCleaner(testSchema(t))

	// JSON transports deliver every number as float64.
	batch := domain.RawBatch{{
		"person_age":    float64(30),
		"person_income": 60000,
		"loan_intent":   "  personal ",
	}}

	cleaned, err := cleaner.Clean(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, cleaned, 1)

	assert.Equal(t, 30, cleaned[0]["person_age"])
	assert.Equal(t, 60000.0, cleaned[0]["person_income"])
	assert.Equal(t, "PERSONAL", cleaned[0]["loan_intent"])
}

func TestSchemaCleanerRejections(t *testing.T) {
	tests := []struct {
		name    string
		record  domain.RawRecord
		wantMsg string
	}{
		{
			name: "fractional value for int field",
			record: domain.RawRecord{
				"person_age":    30.5,
				"person_income": 60000.0,
				"loan_intent":   "PERSONAL",
			},
			wantMsg: `invalid type for field "person_age": expected int`,
		},
		{
			name: "bool for int field",
			record: domain.RawRecord{
				"person_age":    true,
				"person_income": 60000.0,
				"loan_intent":   "PERSONAL",
			},
			wantMsg: `invalid type for field "person_age": expected int, got bool`,
		},
		{
			name: "string for float field",
			record: domain.RawRecord{
				"person_age":    30,
				"person_income": "lots",
				"loan_intent":   "PERSONAL",
			},
			wantMsg: `invalid type for field "person_income": expected float, got string`,
		},
		{
			name: "number for string field",
			record: domain.RawRecord{
				"person_age":    30,
				"person_income": 60000.0,
				"loan_intent":   7.0,
			},
			wantMsg: `invalid type for field "loan_intent": expected string, got float64`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaner := NewSchemaCleaner(testSchema(t))
			_, err := cleaner.Clean(context.Background(), domain.RawBatch{tt.record})

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestSchemaCleanerAggregatesAcrossBatch(t *testing.T) {
	cleaner := NewSchemaCleaner(testSchema(t))

	batch := domain.RawBatch{
		{"person_age": 30, "person_income": 60000.0, "loan_intent": "PERSONAL"},
		{"person_age": "old", "person_income": 60000.0, "loan_intent": "PERSONAL"},
		{"person_age": 31, "person_income": true, "loan_intent": "PERSONAL"},
		{"person_age": "older", "person_income": 60000.0, "loan_intent": "PERSONAL"},
	}

	_, err := cleaner.Clean(context.Background(), batch)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	// One violation per field, first occurrence wins, schema order.
	require.Len(t, ve.Errors, 2)
	assert.Contains(t, ve.Errors[0], `"person_age"`)
	assert.Contains(t, ve.Errors[1], `"person_income"`)
}

func TestSchemaCleanerPassesExtrasThrough(t *testing.T) {
	cleaner := NewSchemaCleaner(testSchema(t))

	batch := domain.RawBatch{{
		"person_age":    30,
		"person_income": 60000.0,
		"loan_intent":   "PERSONAL",
		"note":          "  keep me as-is  ",
	}}

	cleaned, err := cleaner.Clean(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, "  keep me as-is  ", cleaned[0]["note"])
}

func TestSchemaCleanerDoesNotMutateInput(t *testing.T) {
	cleaner := NewSchemaCleaner(testSchema(t))

	record := domain.RawRecord{
		"person_age":    30,
		"person_income": 60000.0,
		"loan_intent":   "personal",
	}
	batch := domain.RawBatch{record}

	cleaned, err := cleaner.Clean(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, "personal", record["loan_intent"])
	assert.Equal(t, "PERSONAL", cleaned[0]["loan_intent"])
}
