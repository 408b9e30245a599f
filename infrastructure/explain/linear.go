// Package explain provides feature attribution adapters for the
// explanation endpoint.
package explain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahrav/go-underwrite/internal/domain"
	"github.com/ahrav/go-underwrite/internal/ports"
)

// LinearExplainer attributes a linear model's score to individual
// features: impact_i = w_i * (x_i - baseline_i), where the baseline is
// the training-set reference value shipped in the bundle. Positive
// impacts push the applicant toward default.
type LinearExplainer struct {
	weights  map[string]float64
	baseline map[string]float64
}

var _ ports.Explainer = (*LinearExplainer)(nil)

// NewLinearExplainer builds an explainer from bundle parameters. Every
// manifest feature needs both a coefficient and a baseline value;
// anything else means the bundle's explainer section is inconsistent
// with its model section.
func NewLinearExplainer(coefficients, baseline map[string]float64, manifest *domain.FeatureManifest) (*LinearExplainer, error) {
	if manifest == nil {
		return nil, errors.New("feature manifest is required")
	}
	for _, feature := range manifest.Names() {
		if _, ok := coefficients[feature]; !ok {
			return nil, ports.NewExplainerError(feature, errors.New("no coefficient"))
		}
		if _, ok := baseline[feature]; !ok {
			return nil, ports.NewExplainerError(feature, errors.New("no baseline value"))
		}
	}
	for feature := range baseline {
		if !manifest.Contains(feature) {
			return nil, ports.NewExplainerError(feature,
				errors.New("baseline value has no matching manifest feature"))
		}
	}

	weights := make(map[string]float64, len(coefficients))
	for feature, w := range coefficients {
		weights[feature] = w
	}
	base := make(map[string]float64, len(baseline))
	for feature, v := range baseline {
		base[feature] = v
	}

	return &LinearExplainer{weights: weights, baseline: base}, nil
}

// Attributions returns one impact per vector feature, in vector order.
func (e *LinearExplainer) Attributions(_ context.Context, vector domain.FeatureVector) ([]float64, error) {
	features := vector.Features()
	values := vector.Values()

	impacts := make([]float64, len(features))
	for i, feature := range features {
		w, ok := e.weights[feature]
		if !ok {
			return nil, ports.NewExplainerError(feature, fmt.Errorf("no coefficient"))
		}
		base, ok := e.baseline[feature]
		if !ok {
			return nil, ports.NewExplainerError(feature, fmt.Errorf("no baseline value"))
		}
		impacts[i] = w * (values[i] - base)
	}
	return impacts, nil
}
