package ports

import (
	"fmt"
)

// ModelError represents an error from the scoring model adapter.
// It identifies the model and operation so serving-layer logs can
// attribute the failure without inspecting adapter internals.
type ModelError struct {
	// Model is the identifier of the model that generated the error.
	Model string

	// Operation is the name of the operation that failed.
	Operation string

	// Err is the underlying error that occurred.
	Err error
}

// Error implements the error interface for ModelError.
func (e *ModelError) Error() string {
	return fmt.Sprintf("model error: model=%s, operation=%s, err=%v", e.Model, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *ModelError) Unwrap() error { return e.Err }

// NewModelError creates a new ModelError with the given details.
func NewModelError(model, operation string, err error) *ModelError {
	return &ModelError{
		Model:     model,
		Operation: operation,
		Err:       err,
	}
}

// ExplainerError represents an error from the explanation adapter.
type ExplainerError struct {
	// Feature is the feature involved in the failed computation, if any.
	Feature string

	// Err is the underlying error that occurred.
	Err error
}

// Error implements the error interface for ExplainerError.
func (e *ExplainerError) Error() string {
	if e.Feature != "" {
		return fmt.Sprintf("explainer error: feature=%s, err=%v", e.Feature, e.Err)
	}
	return fmt.Sprintf("explainer error: err=%v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ExplainerError) Unwrap() error { return e.Err }

// NewExplainerError creates a new ExplainerError with the given details.
func NewExplainerError(feature string, err error) *ExplainerError {
	return &ExplainerError{
		Feature: feature,
		Err:     err,
	}
}
