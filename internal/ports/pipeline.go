// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-underwrite/internal/domain"
)

// RecordCleaner normalizes a raw batch into its canonical tabular form.
// Implementations coerce every field to the kind the raw schema
// declares and normalize categorical values. The whole batch is
// cleaned in one call so every row receives identical treatment.
type RecordCleaner interface {
	// Clean returns a normalized copy of the batch. The input batch is
	// never mutated. Cleaning runs after raw validation, so every
	// schema field is known to be present.
	Clean(ctx context.Context, batch domain.RawBatch) (domain.RawBatch, error)
}

// FeatureBuilder derives the model-ready feature table from a cleaned
// batch. The whole batch is transformed in one call; the output is
// checked against the feature manifest by the caller, never trusted.
type FeatureBuilder interface {
	// Build returns one table row per input record, in input order.
	Build(ctx context.Context, batch domain.RawBatch) (*domain.FeatureTable, error)
}

// Stage identifies one step of the scoring pipeline for observability
// hooks.
type Stage string

// Pipeline stages in execution order.
const (
	StageValidateRaw      Stage = "validate_raw"
	StageClean            Stage = "clean"
	StageBuildFeatures    Stage = "build_features"
	StageValidateFeatures Stage = "validate_features"
	StagePredict          Stage = "predict"
	StageExplain          Stage = "explain"
)

// PipelineObserver provides observability hooks around pipeline stages.
// Implementations can add tracing, metrics, and logging without
// coupling observability concerns to the scoring flow.
type PipelineObserver interface {
	// StageStart is called before a stage runs with the number of
	// records it will process. The returned context is passed to the
	// stage and to StageEnd, letting implementations attach spans.
	StageStart(ctx context.Context, stage Stage, records int) context.Context

	// StageEnd is called after the stage completes with its duration
	// and outcome.
	StageEnd(ctx context.Context, stage Stage, records int, elapsed time.Duration, err error)
}
