// Package model provides trained model adapters for the scoring
// pipeline.
package model

import (
	"context"
	"fmt"
	"math"

	"github.com/ahrav/go-underwrite/internal/domain"
	"github.com/ahrav/go-underwrite/internal/ports"
)

// decisionCutoff is the probability at which the class label flips to
// default.
const decisionCutoff = 0.5

// LogisticModel scores feature tables with trained logistic regression
// parameters: p = sigmoid(w.x + b). It exposes both class labels and
// calibrated probabilities, so the serving layer discovers the
// probability capability when the artifact is calibrated.
type LogisticModel struct {
	name      string
	version   string
	intercept float64
	weights   map[string]float64
}

var (
	_ ports.Model            = (*LogisticModel)(nil)
	_ ports.ProbabilityModel = (*LogisticModel)(nil)
)

// NewLogisticModel builds a model from bundle parameters. The
// coefficient set must match the manifest exactly; a weight without a
// feature, or a feature without a weight, means the artifact is
// inconsistent and the model refuses to start.
func NewLogisticModel(name, version string, coefficients map[string]float64, intercept float64, manifest *domain.FeatureManifest) (*LogisticModel, error) {
	if manifest == nil {
		return nil, ports.NewModelError(name, "init", fmt.Errorf("feature manifest is required"))
	}
	for _, feature := range manifest.Names() {
		if _, ok := coefficients[feature]; !ok {
			return nil, ports.NewModelError(name, "init",
				fmt.Errorf("missing coefficient for feature %q", feature))
		}
	}
	for feature := range coefficients {
		if !manifest.Contains(feature) {
			return nil, ports.NewModelError(name, "init",
				fmt.Errorf("coefficient %q has no matching manifest feature", feature))
		}
	}

	weights := make(map[string]float64, len(coefficients))
	for feature, w := range coefficients {
		weights[feature] = w
	}

	return &LogisticModel{
		name:      name,
		version:   version,
		intercept: intercept,
		weights:   weights,
	}, nil
}

// Name returns the model identity for result payloads and logs.
func (m *LogisticModel) Name() string { return m.name }

// Version returns the model artifact version.
func (m *LogisticModel) Version() string { return m.version }

// Predict returns one class label per row, 1 when the probability of
// default reaches the cutoff.
func (m *LogisticModel) Predict(ctx context.Context, table *domain.FeatureTable) ([]int, error) {
	probs, err := m.PredictProba(ctx, table)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(probs))
	for i, p := range probs {
		if p >= decisionCutoff {
			labels[i] = 1
		}
	}
	return labels, nil
}

// PredictProba returns the probability of default per row. Column
// order does not matter: weights are aligned to the table's columns by
// name on each call.
func (m *LogisticModel) PredictProba(_ context.Context, table *domain.FeatureTable) ([]float64, error) {
	if table == nil {
		return nil, ports.NewModelError(m.name, "predict", fmt.Errorf("feature table is required"))
	}

	columns := table.Columns()
	aligned := make([]float64, len(columns))
	for j, column := range columns {
		w, ok := m.weights[column]
		if !ok {
			return nil, ports.NewModelError(m.name, "predict",
				fmt.Errorf("no coefficient for column %q", column))
		}
		aligned[j] = w
	}

	probs := make([]float64, table.NumRows())
	for i, row := range table.Rows() {
		z := m.intercept
		for j, v := range row {
			z += aligned[j] * v
		}
		probs[i] = sigmoid(z)
	}
	return probs, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// ClassOnly hides the probability capability of a model. Deployments
// whose artifacts are flagged uncalibrated serve class labels only and
// every decision comes back UNKNOWN.
func ClassOnly(m ports.Model) ports.Model {
	return classOnly{m}
}

type classOnly struct{ ports.Model }
