package domain

// Decision is the discrete outcome band derived from a model
// probability. It is always computed from the probability that
// produced it and never stored independently.
type Decision string

// Decision bands, ordered by increasing risk.
const (
	// DecisionApprove indicates the probability of default is below the
	// approve threshold.
	DecisionApprove Decision = "APPROVE"

	// DecisionConditional indicates the probability of default is at or
	// above the approve threshold but below the conditional threshold.
	DecisionConditional Decision = "CONDITIONAL_APPROVAL"

	// DecisionReject indicates the probability of default is at or above
	// the conditional threshold.
	DecisionReject Decision = "REJECT"

	// DecisionUnknown indicates the model exposed no calibrated
	// probability for the record.
	DecisionUnknown Decision = "UNKNOWN"
)

// Thresholds holds the ordered decision cut points. Both values are
// probabilities of default; Approve must not exceed Conditional and
// both must lie in [0, 1]. Thresholds are loaded once at startup and
// read-only afterwards.
type Thresholds struct {
	// Approve is the upper bound (exclusive) of the APPROVE band.
	Approve float64 `json:"approve" yaml:"approve"`

	// Conditional is the upper bound (exclusive) of the
	// CONDITIONAL_APPROVAL band.
	Conditional float64 `json:"conditional" yaml:"conditional"`
}

// Validate checks the threshold ordering invariant. All violations
// are reported at once.
func (t Thresholds) Validate() error {
	ve := NewValidationError("thresholds")
	if t.Approve < 0 || t.Approve > 1 {
		ve.AddError("approve threshold must be within [0, 1]")
	}
	if t.Conditional < 0 || t.Conditional > 1 {
		ve.AddError("conditional threshold must be within [0, 1]")
	}
	if t.Approve > t.Conditional {
		ve.AddError("approve threshold must not exceed conditional threshold")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// Decide maps a probability of default to its decision band.
// A nil probability means the model is uncalibrated and yields
// UNKNOWN. The bands are half-open: a probability equal to a
// threshold falls into the higher-risk band, so the mapping is
// exhaustive and non-overlapping over [0, 1] for any valid
// thresholds.
func Decide(probability *float64, t Thresholds) Decision {
	if probability == nil {
		return DecisionUnknown
	}
	p := *probability
	switch {
	case p < t.Approve:
		return DecisionApprove
	case p < t.Conditional:
		return DecisionConditional
	default:
		return DecisionReject
	}
}
