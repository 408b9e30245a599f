package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ahrav/go-underwrite/internal/domain"
	"github.com/ahrav/go-underwrite/internal/logging"
	"github.com/ahrav/go-underwrite/internal/metrics"
	"github.com/ahrav/go-underwrite/internal/ports"
)

// defaultTopK is how many features an explanation ranks on each side
// when the configuration does not say otherwise.
const defaultTopK = 5

// ScoringDeps carries everything a ScoringService needs. Dependencies
// are passed in explicitly; the service holds no package-level state,
// so multiple services with different bundles can coexist in one
// process.
type ScoringDeps struct {
	// Schema is the raw-input contract enforced before any cleaning.
	Schema domain.RawSchema

	// Manifest is the feature contract enforced on every engineered
	// table before scoring.
	Manifest *domain.FeatureManifest

	// Thresholds holds the decision cut points.
	Thresholds domain.Thresholds

	// Cleaner normalizes validated raw batches.
	Cleaner ports.RecordCleaner

	// Builder derives the model-ready feature table.
	Builder ports.FeatureBuilder

	// Model scores feature tables. If it also implements
	// ports.ProbabilityModel the capability is discovered here, once,
	// at construction.
	Model ports.Model

	// Aggregator receives request and decision counts for the
	// JSON metrics endpoint.
	Aggregator *metrics.Aggregator

	// Explainer serves explanation requests. A nil cache, or one
	// whose capability is absent, rejects explain requests with
	// domain.ErrExplainerUnavailable.
	Explainer *ExplanationCache

	// ExplainTopK is how many features each explanation ranks per
	// side. Zero or negative selects the default of five.
	ExplainTopK int

	// Observer receives stage start/end callbacks. Optional.
	Observer ports.PipelineObserver

	// Collector receives operational metrics. Optional.
	Collector ports.MetricsCollector

	// Logger is the fallback logger when the request context does not
	// carry one. Optional.
	Logger *slog.Logger
}

// ScoringService runs the serving pipeline: validate the raw batch,
// clean it, build features, validate them against the manifest, score,
// and band each probability into a decision. One service instance is
// safe for concurrent use.
type ScoringService struct {
	schema     domain.RawSchema
	manifest   *domain.FeatureManifest
	thresholds domain.Thresholds
	cleaner    ports.RecordCleaner
	builder    ports.FeatureBuilder
	model      ports.Model
	proba      ports.ProbabilityModel
	aggregator *metrics.Aggregator
	explainer  *ExplanationCache
	topK       int
	observer   ports.PipelineObserver
	collector  ports.MetricsCollector
	logger     *slog.Logger
}

// NewScoringService validates the dependency set and builds a service.
// The probability capability is resolved here with a single type
// assertion; models without it yield UNKNOWN decisions on every row.
func NewScoringService(deps ScoringDeps) (*ScoringService, error) {
	ve := domain.NewValidationError("scoring service")
	if deps.Schema.Len() == 0 {
		ve.AddError("raw schema is required")
	}
	if deps.Manifest == nil {
		ve.AddError("feature manifest is required")
	}
	if deps.Cleaner == nil {
		ve.AddError("record cleaner is required")
	}
	if deps.Builder == nil {
		ve.AddError("feature builder is required")
	}
	if deps.Model == nil {
		ve.AddError("model is required")
	}
	if deps.Aggregator == nil {
		ve.AddError("metrics aggregator is required")
	}
	if err := deps.Thresholds.Validate(); err != nil {
		ve.AddError(err.Error())
	}
	if ve.HasErrors() {
		return nil, ve
	}

	topK := deps.ExplainTopK
	if topK <= 0 {
		topK = defaultTopK
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	proba, _ := deps.Model.(ports.ProbabilityModel)

	return &ScoringService{
		schema:     deps.Schema,
		manifest:   deps.Manifest,
		thresholds: deps.Thresholds,
		cleaner:    deps.Cleaner,
		builder:    deps.Builder,
		model:      deps.Model,
		proba:      proba,
		aggregator: deps.Aggregator,
		explainer:  deps.Explainer,
		topK:       topK,
		observer:   deps.Observer,
		collector:  deps.Collector,
		logger:     logger,
	}, nil
}

// Predict scores a single applicant record.
func (s *ScoringService) Predict(ctx context.Context, record domain.RawRecord) (domain.Prediction, error) {
	results, _, err := s.score(ctx, domain.RawBatch{record})
	if err != nil {
		return domain.Prediction{}, err
	}
	s.aggregator.RecordSingle()
	return results[0], nil
}

// PredictBatch scores up to domain.MaxBatchSize records in one pass.
// The batch bounds are checked before any validation or feature work.
func (s *ScoringService) PredictBatch(ctx context.Context, batch domain.RawBatch) (domain.BatchPrediction, error) {
	if len(batch) == 0 {
		return domain.BatchPrediction{}, domain.ErrEmptyBatch
	}
	if len(batch) > domain.MaxBatchSize {
		return domain.BatchPrediction{}, fmt.Errorf("%w of %d records: got %d",
			domain.ErrBatchTooLarge, domain.MaxBatchSize, len(batch))
	}

	results, _, err := s.score(ctx, batch)
	if err != nil {
		return domain.BatchPrediction{}, err
	}
	s.aggregator.RecordBatch(len(batch))
	return domain.BatchPrediction{BatchSize: len(batch), Results: results}, nil
}

// PredictExplain scores a single record and attaches ranked feature
// attributions. The capability check happens before any pipeline work
// so deployments without an explainer fail fast with
// domain.ErrExplainerUnavailable.
func (s *ScoringService) PredictExplain(ctx context.Context, record domain.RawRecord) (domain.ExplainedPrediction, error) {
	if s.explainer == nil || !s.explainer.Available() {
		return domain.ExplainedPrediction{}, domain.ErrExplainerUnavailable
	}

	results, table, err := s.score(ctx, domain.RawBatch{record})
	if err != nil {
		return domain.ExplainedPrediction{}, err
	}
	s.aggregator.RecordSingle()

	if table.NumRows() != 1 {
		ve := domain.NewValidationError("explain request")
		ve.AddError(fmt.Sprintf("explanations require exactly one engineered row, got %d", table.NumRows()))
		return domain.ExplainedPrediction{}, ve
	}

	var explanation domain.Explanation
	if err := s.runStage(ctx, ports.StageExplain, 1, func(ctx context.Context) error {
		var err error
		explanation, err = s.explainer.Explain(ctx, table.Row(0), s.topK)
		return err
	}); err != nil {
		return domain.ExplainedPrediction{}, err
	}

	return domain.ExplainedPrediction{
		Prediction:   results[0],
		Explanations: explanation,
	}, nil
}

// ExplainAvailable reports whether explanation requests can be served.
func (s *ScoringService) ExplainAvailable() bool {
	return s.explainer != nil && s.explainer.Available()
}

// score runs the pipeline stages over the batch and returns one
// prediction per record, in input order, along with the engineered
// table for callers that need the vectors. Validation errors are
// returned unwrapped so callers can map them to client faults.
func (s *ScoringService) score(ctx context.Context, batch domain.RawBatch) ([]domain.Prediction, *domain.FeatureTable, error) {
	records := len(batch)

	if err := s.runStage(ctx, ports.StageValidateRaw, records, func(context.Context) error {
		return domain.ValidateRaw(batch, s.schema)
	}); err != nil {
		return nil, nil, err
	}

	var cleaned domain.RawBatch
	if err := s.runStage(ctx, ports.StageClean, records, func(ctx context.Context) error {
		var err error
		cleaned, err = s.cleaner.Clean(ctx, batch)
		return err
	}); err != nil {
		return nil, nil, err
	}

	var table *domain.FeatureTable
	if err := s.runStage(ctx, ports.StageBuildFeatures, records, func(ctx context.Context) error {
		var err error
		table, err = s.builder.Build(ctx, cleaned)
		return err
	}); err != nil {
		return nil, nil, err
	}

	if err := s.runStage(ctx, ports.StageValidateFeatures, records, func(context.Context) error {
		return domain.ValidateFeatures(table, s.manifest)
	}); err != nil {
		return nil, nil, err
	}

	var labels []int
	var probs []float64
	if err := s.runStage(ctx, ports.StagePredict, records, func(ctx context.Context) error {
		var err error
		labels, err = s.model.Predict(ctx, table)
		if err != nil {
			return err
		}
		if len(labels) != records {
			return fmt.Errorf("model returned %d labels for %d records", len(labels), records)
		}
		if s.proba != nil {
			probs, err = s.proba.PredictProba(ctx, table)
			if err != nil {
				return err
			}
			if len(probs) != records {
				return fmt.Errorf("model returned %d probabilities for %d records", len(probs), records)
			}
		}
		return nil
	}); err != nil {
		return nil, nil, err
	}

	predictions := make([]domain.Prediction, records)
	for i := range predictions {
		var pd *float64
		if probs != nil {
			v := probs[i]
			pd = &v
		}
		decision := domain.Decide(pd, s.thresholds)
		s.recordDecision(decision)
		predictions[i] = domain.Prediction{
			Decision:             decision,
			Prediction:           labels[i],
			ProbabilityOfDefault: pd,
			ModelName:            s.model.Name(),
			ModelVersion:         s.model.Version(),
		}
	}

	s.logScore(ctx, predictions)
	return predictions, table, nil
}

// runStage executes one pipeline stage, wrapping it with observer
// callbacks when an observer is configured.
func (s *ScoringService) runStage(ctx context.Context, stage ports.Stage, records int, fn func(context.Context) error) error {
	if s.observer == nil {
		return fn(ctx)
	}
	ctx = s.observer.StageStart(ctx, stage, records)
	start := time.Now()
	err := fn(ctx)
	s.observer.StageEnd(ctx, stage, records, time.Since(start), err)
	return err
}

func (s *ScoringService) recordDecision(decision domain.Decision) {
	s.aggregator.RecordDecision(string(decision))
	if s.collector != nil {
		s.collector.RecordCounter("underwrite_decisions_total", 1, map[string]string{
			"decision": string(decision),
		})
	}
}

// logScore emits the per-request log line with the logger carried by
// the context so the request id set by the transport propagates.
func (s *ScoringService) logScore(ctx context.Context, predictions []domain.Prediction) {
	logger := logging.FromContext(ctx)
	if logger == slog.Default() {
		logger = s.logger
	}

	if len(predictions) == 1 {
		p := predictions[0]
		pd := slog.String("probability_of_default", "NA")
		if p.ProbabilityOfDefault != nil {
			pd = slog.Float64("probability_of_default", math.Round(*p.ProbabilityOfDefault*10000)/10000)
		}
		logger.InfoContext(ctx, "inference complete",
			slog.Int("prediction", p.Prediction),
			pd,
			slog.String("decision", string(p.Decision)),
			slog.String("model", p.ModelName),
			slog.String("model_version", p.ModelVersion),
		)
		return
	}

	logger.InfoContext(ctx, "batch inference complete",
		slog.Int("batch_size", len(predictions)),
		slog.String("model", s.model.Name()),
		slog.String("model_version", s.model.Version()),
	)
}
