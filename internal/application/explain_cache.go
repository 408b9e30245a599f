package application

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/ahrav/go-underwrite/internal/domain"
	"github.com/ahrav/go-underwrite/internal/ports"
)

// ExplanationCache serves ranked feature attributions with a bounded
// LRU cache keyed by the canonical vector fingerprint. Concurrent
// misses on the same key are deduplicated so the explainer computes
// each vector at most once, and the explainer itself is constructed
// lazily exactly once across all callers.
type ExplanationCache struct {
	factory ports.ExplainerFactory
	cache   *lru.Cache[string, domain.Explanation]
	sf      singleflight.Group

	once      sync.Once
	explainer ports.Explainer
	initErr   error
}

// NewExplanationCache builds a cache over the given factory. A nil
// factory is valid and means the capability is absent from this
// deployment; every Explain call then fails with
// domain.ErrExplainerUnavailable without touching the pipeline.
func NewExplanationCache(factory ports.ExplainerFactory, capacity int) (*ExplanationCache, error) {
	cache, err := lru.New[string, domain.Explanation](capacity)
	if err != nil {
		return nil, fmt.Errorf("create explanation cache: %w", err)
	}
	return &ExplanationCache{factory: factory, cache: cache}, nil
}

// Available reports whether the explanation capability is present.
func (c *ExplanationCache) Available() bool { return c.factory != nil }

// Len returns the number of cached explanations.
func (c *ExplanationCache) Len() int { return c.cache.Len() }

// Explain returns the ranked explanation for the vector, computing it
// at most once per distinct vector. Repeat requests for the same
// canonical vector return the stored result without invoking the
// explainer.
func (c *ExplanationCache) Explain(ctx context.Context, vector domain.FeatureVector, topK int) (domain.Explanation, error) {
	if c.factory == nil {
		return domain.Explanation{}, domain.ErrExplainerUnavailable
	}
	if topK <= 0 {
		ve := domain.NewValidationError("explain request")
		ve.AddError(fmt.Sprintf("top_k must be positive, got %d", topK))
		return domain.Explanation{}, ve
	}

	key := vector.Fingerprint()
	if explanation, ok := c.cache.Get(key); ok {
		return explanation, nil
	}

	result, err, _ := c.sf.Do(key, func() (any, error) {
		// Re-check after winning the flight: a racing caller may have
		// populated the entry between our lookup and this callback.
		if explanation, ok := c.cache.Get(key); ok {
			return explanation, nil
		}

		explainer, err := c.getExplainer(ctx)
		if err != nil {
			return nil, err
		}

		impacts, err := explainer.Attributions(ctx, vector)
		if err != nil {
			return nil, err
		}
		if len(impacts) != vector.Len() {
			return nil, fmt.Errorf("explainer returned %d impacts for %d features", len(impacts), vector.Len())
		}

		explanation := rankImpacts(vector.Features(), impacts, topK)
		c.cache.Add(key, explanation)
		return explanation, nil
	})
	if err != nil {
		return domain.Explanation{}, err
	}
	return result.(domain.Explanation), nil
}

// getExplainer constructs the explainer on first use. Exactly one
// caller runs the factory; everyone else reuses its outcome, including
// a construction failure.
func (c *ExplanationCache) getExplainer(ctx context.Context) (ports.Explainer, error) {
	c.once.Do(func() {
		c.explainer, c.initErr = c.factory(ctx)
	})
	if c.initErr != nil {
		return nil, fmt.Errorf("construct explainer: %w", c.initErr)
	}
	return c.explainer, nil
}

// rankImpacts sorts features by attribution, highest first, and splits
// them into the topK strongest risk drivers and the topK most
// protective factors. Protective factors are reported in ascending
// order so the most protective feature comes first. Impacts are
// rounded to four decimal places in the report.
func rankImpacts(features []string, impacts []float64, topK int) domain.Explanation {
	ranked := make([]domain.FeatureImpact, len(features))
	for i, name := range features {
		ranked[i] = domain.FeatureImpact{
			Feature: name,
			Impact:  round4(impacts[i]),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Impact > ranked[j].Impact
	})

	k := topK
	if k > len(ranked) {
		k = len(ranked)
	}

	drivers := make([]domain.FeatureImpact, k)
	copy(drivers, ranked[:k])

	protective := make([]domain.FeatureImpact, k)
	copy(protective, ranked[len(ranked)-k:])
	sort.SliceStable(protective, func(i, j int) bool {
		return protective[i].Impact < protective[j].Impact
	})

	return domain.Explanation{
		RiskDrivers:       drivers,
		ProtectiveFactors: protective,
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
