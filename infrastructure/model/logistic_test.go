package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-underwrite/internal/domain"
	"github.com/ahrav/go-underwrite/internal/ports"
)

func testManifest(t *testing.T, names ...string) *domain.FeatureManifest {
	t.Helper()
	manifest, err := domain.NewFeatureManifest(names, len(names))
	require.NoError(t, err)
	return manifest
}

func testTable(t *testing.T, columns []string, rows [][]float64) *domain.FeatureTable {
	t.Helper()
	table, err := domain.NewFeatureTable(columns, rows)
	require.NoError(t, err)
	return table
}

func TestNewLogisticModel(t *testing.T) {
	manifest := testManifest(t, "a", "b")

	t.Run("valid parameters", func(t *testing.T) {
		m, err := NewLogisticModel("credit-risk-logreg", "1.2.0",
			map[string]float64{"a": 1.0, "b": -0.5}, 0.25, manifest)
		require.NoError(t, err)
		assert.Equal(t, "credit-risk-logreg", m.Name())
		assert.Equal(t, "1.2.0", m.Version())
	})

	t.Run("missing coefficient", func(t *testing.T) {
		_, err := NewLogisticModel("m", "1.0.0",
			map[string]float64{"a": 1.0}, 0, manifest)
		var modelErr *ports.ModelError
		require.ErrorAs(t, err, &modelErr)
		assert.Contains(t, err.Error(), `missing coefficient for feature "b"`)
	})

	t.Run("coefficient without manifest feature", func(t *testing.T) {
		_, err := NewLogisticModel("m", "1.0.0",
			map[string]float64{"a": 1.0, "b": -0.5, "c": 2.0}, 0, manifest)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `coefficient "c" has no matching manifest feature`)
	})

	t.Run("nil manifest", func(t *testing.T) {
		_, err := NewLogisticModel("m", "1.0.0", map[string]float64{"a": 1.0}, 0, nil)
		require.Error(t, err)
	})
}

func TestLogisticModelPredictProba(t *testing.T) {
	manifest := testManifest(t, "a", "b")
	m, err := NewLogisticModel("m", "1.0.0",
		map[string]float64{"a": 1.0, "b": -0.5}, 0.25, manifest)
	require.NoError(t, err)

	// z = 2*1.0 + 1*(-0.5) + 0.25 = 1.75
	table := testTable(t, []string{"a", "b"}, [][]float64{{2, 1}})
	probs, err := m.PredictProba(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, probs, 1)
	assert.InDelta(t, 0.8519528, probs[0], 1e-6)
}

func TestLogisticModelColumnOrderIndependence(t *testing.T) {
	manifest := testManifest(t, "a", "b")
	m, err := NewLogisticModel("m", "1.0.0",
		map[string]float64{"a": 1.0, "b": -0.5}, 0.25, manifest)
	require.NoError(t, err)

	forward := testTable(t, []string{"a", "b"}, [][]float64{{2, 1}})
	reversed := testTable(t, []string{"b", "a"}, [][]float64{{1, 2}})

	p1, err := m.PredictProba(context.Background(), forward)
	require.NoError(t, err)
	p2, err := m.PredictProba(context.Background(), reversed)
	require.NoError(t, err)

	assert.InDelta(t, p1[0], p2[0], 1e-12)
}

func TestLogisticModelPredict(t *testing.T) {
	manifest := testManifest(t, "x")
	m, err := NewLogisticModel("m", "1.0.0", map[string]float64{"x": 1.0}, 0, manifest)
	require.NoError(t, err)

	// z = -1 gives p < 0.5, z = 0 sits exactly on the cutoff, z = 1
	// gives p > 0.5.
	table := testTable(t, []string{"x"}, [][]float64{{-1}, {0}, {1}})
	labels, err := m.Predict(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 1}, labels)
}

func TestLogisticModelUnknownColumn(t *testing.T) {
	manifest := testManifest(t, "a")
	m, err := NewLogisticModel("m", "1.0.0", map[string]float64{"a": 1.0}, 0, manifest)
	require.NoError(t, err)

	table := testTable(t, []string{"zzz"}, [][]float64{{1}})
	_, err = m.PredictProba(context.Background(), table)

	var modelErr *ports.ModelError
	require.ErrorAs(t, err, &modelErr)
	assert.Equal(t, "predict", modelErr.Operation)
}

func TestClassOnlyHidesProbabilities(t *testing.T) {
	manifest := testManifest(t, "a")
	m, err := NewLogisticModel("m", "1.0.0", map[string]float64{"a": 1.0}, 0, manifest)
	require.NoError(t, err)

	wrapped := ClassOnly(m)
	_, isProba := wrapped.(ports.ProbabilityModel)
	assert.False(t, isProba)

	table := testTable(t, []string{"a"}, [][]float64{{5}})
	labels, err := wrapped.Predict(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, labels)
}
