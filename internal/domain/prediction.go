package domain

// Prediction is the decision object returned for one scored record.
type Prediction struct {
	// Decision is the band derived from the probability of default.
	Decision Decision `json:"decision"`

	// Prediction is the model's discrete class label (1 = default).
	Prediction int `json:"prediction"`

	// ProbabilityOfDefault is the model's calibrated probability, or
	// nil when the model exposes none.
	ProbabilityOfDefault *float64 `json:"probability_of_default"`

	// ModelName identifies the scoring model that produced the result.
	ModelName string `json:"model_name"`

	// ModelVersion identifies the model artifact version.
	ModelVersion string `json:"model_version"`
}

// BatchPrediction wraps the per-record results of a batch request,
// preserving input order.
type BatchPrediction struct {
	// BatchSize is the number of records scored.
	BatchSize int `json:"batch_size"`

	// Results holds one prediction per input record, in input order.
	Results []Prediction `json:"results"`
}

// FeatureImpact is one feature's attribution toward the model output.
// Positive impact pushes toward default; negative pushes away.
type FeatureImpact struct {
	// Feature is the manifest feature name.
	Feature string `json:"feature"`

	// Impact is the attribution score, rounded to four decimals.
	Impact float64 `json:"impact"`
}

// Explanation is the ranked attribution summary for one prediction.
type Explanation struct {
	// RiskDrivers holds the top-k impacts sorted descending, the
	// features pushing hardest toward default.
	RiskDrivers []FeatureImpact `json:"risk_drivers"`

	// ProtectiveFactors holds the bottom-k impacts sorted ascending,
	// the features pushing hardest away from default.
	ProtectiveFactors []FeatureImpact `json:"protective_factors"`
}

// ExplainedPrediction merges a decision object with its explanation.
type ExplainedPrediction struct {
	Prediction

	// Explanations carries the ranked attribution lists.
	Explanations Explanation `json:"explanations"`
}
