package ports

import (
	"context"

	"github.com/ahrav/go-underwrite/internal/domain"
)

// Model scores engineered feature tables. Implementations wrap a
// trained artifact and are treated as opaque: the serving layer only
// relies on this contract.
type Model interface {
	// Name returns the model identity for result payloads and logs.
	Name() string

	// Version returns the model artifact version.
	Version() string

	// Predict returns one discrete class label per table row
	// (1 = default), in row order.
	Predict(ctx context.Context, table *domain.FeatureTable) ([]int, error)
}

// ProbabilityModel is implemented by models that expose a calibrated
// probability of default alongside the class label. The serving layer
// discovers the capability with a type assertion; models without it
// yield UNKNOWN decisions.
type ProbabilityModel interface {
	// PredictProba returns the probability of default per table row,
	// in row order.
	PredictProba(ctx context.Context, table *domain.FeatureTable) ([]float64, error)
}

// Explainer produces per-feature attribution scores for a single
// model-ready vector. Positive attributions push the model toward
// default, negative away from it.
type Explainer interface {
	// Attributions returns one impact value per vector feature, in
	// vector order.
	Attributions(ctx context.Context, vector domain.FeatureVector) ([]float64, error)
}

// ExplainerFactory lazily constructs the explainer on first use.
// A nil factory means the explanation capability is not available in
// this deployment; the decision is made once at startup, not through
// failed construction at request time.
type ExplainerFactory func(ctx context.Context) (Explainer, error)
