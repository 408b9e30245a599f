package ports

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelError(t *testing.T) {
	base := errors.New("coefficient missing")
	err := NewModelError("credit_risk_lr", "predict", base)

	assert.Equal(t, "model error: model=credit_risk_lr, operation=predict, err=coefficient missing", err.Error())
	assert.True(t, errors.Is(err, base), "Should unwrap to underlying error")
	assert.Equal(t, "credit_risk_lr", err.Model)
	assert.Equal(t, "predict", err.Operation)
}

func TestExplainerError(t *testing.T) {
	base := errors.New("baseline missing")

	t.Run("with feature", func(t *testing.T) {
		err := NewExplainerError("loan_amnt", base)

		assert.Equal(t, "explainer error: feature=loan_amnt, err=baseline missing", err.Error())
		assert.True(t, errors.Is(err, base))
	})

	t.Run("without feature", func(t *testing.T) {
		err := NewExplainerError("", base)

		assert.Equal(t, "explainer error: err=baseline missing", err.Error())
	})
}
