package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ahrav/go-underwrite/internal/application"
	"github.com/ahrav/go-underwrite/internal/domain"
	"github.com/ahrav/go-underwrite/internal/ports"
)

// OneHotBuilder turns cleaned batches into model-ready feature tables:
// numeric fields pass through, categorical fields expand into one
// indicator column per declared level. Columns come out in manifest
// order. A value outside the declared levels yields all-zero
// indicators for that field, matching how the model was trained on
// reindexed dummy columns.
type OneHotBuilder struct {
	columns   []string
	producers []producer
}

// producer derives one output column from a cleaned record.
type producer struct {
	field string
	// match is the normalized level an indicator column tests against;
	// empty means numeric passthrough.
	match string
}

var _ ports.FeatureBuilder = (*OneHotBuilder)(nil)

// NewOneHotBuilder compiles the bundle's encoding plan into column
// producers. Every manifest name must be derivable from the plan.
func NewOneHotBuilder(spec application.FeatureSpec) (*OneHotBuilder, error) {
	numeric := make(map[string]struct{}, len(spec.Numeric))
	for _, field := range spec.Numeric {
		numeric[field] = struct{}{}
	}

	caser := cases.Upper(language.Und)
	indicators := make(map[string]producer)
	for _, cat := range spec.Categorical {
		for _, level := range cat.Levels {
			indicators[cat.Column(level)] = producer{
				field: cat.Field,
				match: caser.String(level),
			}
		}
	}

	producers := make([]producer, len(spec.Names))
	for i, name := range spec.Names {
		if _, ok := numeric[name]; ok {
			producers[i] = producer{field: name}
			continue
		}
		if p, ok := indicators[name]; ok {
			producers[i] = p
			continue
		}
		return nil, fmt.Errorf("feature %q is not derivable from the encoding plan", name)
	}

	columns := make([]string, len(spec.Names))
	copy(columns, spec.Names)

	return &OneHotBuilder{columns: columns, producers: producers}, nil
}

// Build returns one row per record, in input order.
func (b *OneHotBuilder) Build(_ context.Context, batch domain.RawBatch) (*domain.FeatureTable, error) {
	rows := make([][]float64, len(batch))
	for i, record := range batch {
		row := make([]float64, len(b.producers))
		for j, p := range b.producers {
			value, ok := record[p.field]
			if !ok {
				return nil, fmt.Errorf("record %d is missing cleaned field %q", i, p.field)
			}

			if p.match == "" {
				f, err := toFloat(value)
				if err != nil {
					return nil, fmt.Errorf("record %d field %q: %w", i, p.field, err)
				}
				row[j] = f
				continue
			}

			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("record %d field %q: expected string, got %T", i, p.field, value)
			}
			if s == p.match {
				row[j] = 1
			}
		}
		rows[i] = row
	}

	return domain.NewFeatureTable(b.columns, rows)
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("expected numeric value, got %T", value)
}
