package application_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-underwrite/infrastructure/explain"
	"github.com/ahrav/go-underwrite/infrastructure/model"
	"github.com/ahrav/go-underwrite/infrastructure/pipeline"
	"github.com/ahrav/go-underwrite/internal/application"
	"github.com/ahrav/go-underwrite/internal/domain"
	"github.com/ahrav/go-underwrite/internal/metrics"
	"github.com/ahrav/go-underwrite/internal/ports"
	"github.com/ahrav/go-underwrite/internal/testutils"
)

// newStarterService assembles the real serving stack over the starter
// bundle: schema cleaner, one-hot builder, logistic model, and linear
// explainer, exactly as cmd/underwrite wires them.
func newStarterService(t *testing.T) (*application.ScoringService, *metrics.Aggregator) {
	t.Helper()

	loader, err := application.NewBundleLoader()
	require.NoError(t, err)
	bundle, err := loader.LoadFromReader(bytes.NewReader(testutils.StarterBundleYAML()))
	require.NoError(t, err)
	require.True(t, bundle.ExplainAvailable(), "starter bundle should carry an explainer baseline")

	builder, err := pipeline.NewOneHotBuilder(bundle.Features)
	require.NoError(t, err)

	scorer, err := model.NewLogisticModel(
		bundle.Model.Name,
		bundle.Model.Version,
		bundle.Model.Coefficients,
		bundle.Model.Intercept,
		bundle.Manifest,
	)
	require.NoError(t, err)

	baseline := bundle.Explainer.Baseline
	coefficients := bundle.Model.Coefficients
	manifest := bundle.Manifest
	cache, err := application.NewExplanationCache(func(ctx context.Context) (ports.Explainer, error) {
		return explain.NewLinearExplainer(coefficients, baseline, manifest)
	}, 128)
	require.NoError(t, err)

	aggregator := metrics.NewAggregator()
	service, err := application.NewScoringService(application.ScoringDeps{
		Schema:     bundle.Schema,
		Manifest:   bundle.Manifest,
		Thresholds: bundle.Thresholds,
		Cleaner:    pipeline.NewSchemaCleaner(bundle.Schema),
		Builder:    builder,
		Model:      scorer,
		Aggregator: aggregator,
		Explainer:  cache,
	})
	require.NoError(t, err)

	return service, aggregator
}

func TestStarterBundleSinglePrediction(t *testing.T) {
	service, aggregator := newStarterService(t)

	result, err := service.Predict(context.Background(), testutils.SampleApplicant(0))
	require.NoError(t, err)

	assert.Equal(t, "credit_risk_logreg", result.ModelName)
	assert.Equal(t, "1.2.0", result.ModelVersion)
	require.NotNil(t, result.ProbabilityOfDefault)
	pd := *result.ProbabilityOfDefault
	assert.GreaterOrEqual(t, pd, 0.0)
	assert.LessOrEqual(t, pd, 1.0)
	assert.Equal(t, domain.Decide(&pd, domain.Thresholds{Approve: 0.3, Conditional: 0.6}), result.Decision)

	snapshot := aggregator.Snapshot()
	assert.Equal(t, int64(1), snapshot.Requests.Single)
	assert.Equal(t, int64(1), snapshot.ModelDecisions[string(result.Decision)])
}

func TestStarterBundlePredictionIsDeterministic(t *testing.T) {
	service, _ := newStarterService(t)
	record := testutils.SampleApplicant(7)

	first, err := service.Predict(context.Background(), record)
	require.NoError(t, err)
	second, err := service.Predict(context.Background(), record)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestStarterBundleBatchPrediction(t *testing.T) {
	service, aggregator := newStarterService(t)

	// Enough records to light up every categorical level at least once.
	batch := testutils.SampleApplicants(60)
	result, err := service.PredictBatch(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, 60, result.BatchSize)
	require.Len(t, result.Results, 60)

	// Batch scoring must agree row-for-row with single scoring.
	for _, i := range []int{0, 13, 59} {
		single, err := service.Predict(context.Background(), batch[i])
		require.NoError(t, err)
		assert.Equal(t, single, result.Results[i], "row %d diverges from single-record scoring", i)
	}

	snapshot := aggregator.Snapshot()
	assert.Equal(t, int64(60), snapshot.Requests.BatchRecords)
}

func TestStarterBundleRawViolation(t *testing.T) {
	service, _ := newStarterService(t)

	record := testutils.SampleApplicant(3)
	delete(record, "loan_int_rate")
	delete(record, "loan_grade")

	_, err := service.Predict(context.Background(), record)
	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.ElementsMatch(t, []string{"loan_int_rate", "loan_grade"}, schemaErr.Missing)
}

func TestStarterBundleExplain(t *testing.T) {
	service, _ := newStarterService(t)
	record := testutils.SampleApplicant(11)

	first, err := service.PredictExplain(context.Background(), record)
	require.NoError(t, err)

	require.Len(t, first.Explanations.RiskDrivers, 5)
	require.Len(t, first.Explanations.ProtectiveFactors, 5)

	drivers := first.Explanations.RiskDrivers
	for i := 1; i < len(drivers); i++ {
		assert.GreaterOrEqual(t, drivers[i-1].Impact, drivers[i].Impact,
			"risk drivers must be sorted by descending impact")
	}
	protective := first.Explanations.ProtectiveFactors
	for i := 1; i < len(protective); i++ {
		assert.LessOrEqual(t, protective[i-1].Impact, protective[i].Impact,
			"protective factors must be sorted by ascending impact")
	}

	// Second request for the same applicant is served from the cache
	// and must be byte-for-byte identical.
	second, err := service.PredictExplain(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
