package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors that can occur while serving decisions.
var (
	// ErrInvalidContract indicates that a schema, manifest, table, or
	// vector was constructed from inconsistent inputs.
	ErrInvalidContract = errors.New("invalid contract")

	// ErrEmptyBatch indicates that a batch request carried no records.
	ErrEmptyBatch = errors.New("batch is empty")

	// ErrBatchTooLarge indicates that a batch request exceeded MaxBatchSize.
	ErrBatchTooLarge = errors.New("batch size exceeds maximum limit")

	// ErrExplainerUnavailable indicates that the explanation capability
	// is not present in this runtime. Callers surface it as "not
	// supported here", never as a server fault.
	ErrExplainerUnavailable = errors.New("explainability is not available in this runtime")
)

// SchemaError reports raw-input contract violations. It names every
// missing field found across the whole batch, not just the first.
// Unexpected extra raw fields are tolerated and never reported.
type SchemaError struct {
	// Missing lists the schema fields absent from at least one record,
	// deduplicated, in schema field order.
	Missing []string
}

// Error implements the error interface for SchemaError.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("raw schema violation: missing required fields: %s", strings.Join(e.Missing, ", "))
}

// NewSchemaError creates a SchemaError naming the given missing fields.
func NewSchemaError(missing []string) *SchemaError {
	return &SchemaError{Missing: missing}
}

// FeatureContractError reports engineered-feature contract violations.
// Missing names, unexpected extra names, and a declared-count mismatch
// are checked independently and reported together, so a single error
// carries every violation found.
type FeatureContractError struct {
	// Missing lists manifest features absent from the table.
	Missing []string

	// Extra lists table columns the manifest does not declare.
	Extra []string

	// Suggestions maps an extra column to the closest manifest name,
	// when one is close enough to look like a typo.
	Suggestions map[string]string

	// ExpectedCount is the manifest's declared feature count.
	ExpectedCount int

	// ActualCount is the table's column count.
	ActualCount int
}

// Error implements the error interface for FeatureContractError.
func (e *FeatureContractError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing engineered features: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Extra) > 0 {
		extras := make([]string, len(e.Extra))
		for i, col := range e.Extra {
			if hint, ok := e.Suggestions[col]; ok {
				extras[i] = fmt.Sprintf("%s (did you mean %q?)", col, hint)
			} else {
				extras[i] = col
			}
		}
		parts = append(parts, fmt.Sprintf("unexpected engineered features: %s", strings.Join(extras, ", ")))
	}
	if e.CountMismatch() {
		parts = append(parts, fmt.Sprintf("feature count mismatch: expected %d, got %d", e.ExpectedCount, e.ActualCount))
	}
	return "feature contract violation: " + strings.Join(parts, "; ")
}

// CountMismatch reports whether the table's column count disagrees
// with the manifest's declared count.
func (e *FeatureContractError) CountMismatch() bool { return e.ExpectedCount != e.ActualCount }

// HasViolations reports whether any of the three checks failed.
func (e *FeatureContractError) HasViolations() bool {
	return len(e.Missing) > 0 || len(e.Extra) > 0 || e.CountMismatch()
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
