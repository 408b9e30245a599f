package testutils_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-underwrite/internal/application"
	"github.com/ahrav/go-underwrite/internal/testutils"
)

func TestStarterBundleYAMLIsLoadable(t *testing.T) {
	loader, err := application.NewBundleLoader()
	require.NoError(t, err)

	bundle, err := loader.LoadFromReader(bytes.NewReader(testutils.StarterBundleYAML()))
	require.NoError(t, err)

	assert.Equal(t, "credit_risk_logreg", bundle.Model.Name)
	assert.Equal(t, 11, bundle.Schema.Len())
	assert.Equal(t, 26, bundle.Manifest.Count())
	assert.True(t, bundle.ExplainAvailable())

	// Every manifest feature needs a trained weight and an explainer
	// baseline, or the model and explainer constructors reject the
	// bundle at startup.
	for _, name := range bundle.Manifest.Names() {
		_, ok := bundle.Model.Coefficients[name]
		assert.True(t, ok, "feature %q has no coefficient", name)
		_, ok = bundle.Explainer.Baseline[name]
		assert.True(t, ok, "feature %q has no baseline", name)
	}
}

func TestSampleApplicantsAreDeterministic(t *testing.T) {
	assert.Equal(t, testutils.SampleApplicant(17), testutils.SampleApplicant(17))
	assert.NotEqual(t, testutils.SampleApplicant(0), testutils.SampleApplicant(1))
}

func TestSampleApplicantsSatisfyStarterSchema(t *testing.T) {
	loader, err := application.NewBundleLoader()
	require.NoError(t, err)
	bundle, err := loader.LoadFromReader(bytes.NewReader(testutils.StarterBundleYAML()))
	require.NoError(t, err)

	batch := testutils.SampleApplicants(50)
	require.Len(t, batch, 50)
	for i, record := range batch {
		for _, field := range bundle.Schema.Fields() {
			assert.True(t, record.Has(field), "record %d is missing field %q", i, field)
		}
	}
}
