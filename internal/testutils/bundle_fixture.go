// Package testutils provides shared fixtures for tests and dev
// tooling: a complete starter artifact bundle and a deterministic
// applicant-record generator covering every categorical level.
package testutils

// StarterBundleYAML returns a complete, valid artifact bundle covering
// the full applicant schema: eleven raw fields, a 26-column feature
// manifest, trained-style logistic coefficients, decision thresholds,
// and an explainer baseline. The same document backs the integration
// tests and the genbundle starter output, so the two never drift.
//
// The coefficients are synthetic but shaped like a real credit model:
// higher interest rates, larger loans relative to income, worse loan
// grades, and a prior default push toward REJECT; age, income, tenure,
// and home ownership pull toward APPROVE.
func StarterBundleYAML() []byte {
	return []byte(starterBundle)
}

const starterBundle = `model:
  name: credit_risk_logreg
  version: 1.2.0
  intercept: -1.1
  coefficients:
    person_age: -0.02
    person_income: -0.00001
    person_emp_length: -0.03
    loan_amnt: 0.00004
    loan_int_rate: 0.09
    loan_percent_income: 2.1
    cb_person_cred_hist_length: -0.01
    person_home_ownership_RENT: 0.35
    person_home_ownership_OWN: -0.30
    person_home_ownership_MORTGAGE: -0.10
    person_home_ownership_OTHER: 0.20
    loan_intent_PERSONAL: 0.05
    loan_intent_EDUCATION: -0.10
    loan_intent_MEDICAL: 0.25
    loan_intent_VENTURE: 0.15
    loan_intent_HOMEIMPROVEMENT: 0.10
    loan_intent_DEBTCONSOLIDATION: 0.30
    loan_grade_A: -0.60
    loan_grade_B: -0.30
    loan_grade_C: 0.00
    loan_grade_D: 0.30
    loan_grade_E: 0.60
    loan_grade_F: 0.90
    loan_grade_G: 1.20
    cb_person_default_on_file_Y: 0.80
    cb_person_default_on_file_N: -0.20

thresholds:
  approve: 0.3
  conditional: 0.6

raw_schema:
  person_age: int
  person_income: float
  person_home_ownership: string
  person_emp_length: int
  loan_intent: string
  loan_grade: string
  loan_amnt: float
  loan_int_rate: float
  loan_percent_income: float
  cb_person_default_on_file: string
  cb_person_cred_hist_length: int

features:
  num_features: 26
  names:
    - person_age
    - person_income
    - person_emp_length
    - loan_amnt
    - loan_int_rate
    - loan_percent_income
    - cb_person_cred_hist_length
    - person_home_ownership_RENT
    - person_home_ownership_OWN
    - person_home_ownership_MORTGAGE
    - person_home_ownership_OTHER
    - loan_intent_PERSONAL
    - loan_intent_EDUCATION
    - loan_intent_MEDICAL
    - loan_intent_VENTURE
    - loan_intent_HOMEIMPROVEMENT
    - loan_intent_DEBTCONSOLIDATION
    - loan_grade_A
    - loan_grade_B
    - loan_grade_C
    - loan_grade_D
    - loan_grade_E
    - loan_grade_F
    - loan_grade_G
    - cb_person_default_on_file_Y
    - cb_person_default_on_file_N
  numeric:
    - person_age
    - person_income
    - person_emp_length
    - loan_amnt
    - loan_int_rate
    - loan_percent_income
    - cb_person_cred_hist_length
  categorical:
    - field: person_home_ownership
      levels: [RENT, OWN, MORTGAGE, OTHER]
    - field: loan_intent
      levels: [PERSONAL, EDUCATION, MEDICAL, VENTURE, HOMEIMPROVEMENT, DEBTCONSOLIDATION]
    - field: loan_grade
      levels: [A, B, C, D, E, F, G]
    - field: cb_person_default_on_file
      levels: [Y, N]

explainer:
  baseline:
    person_age: 27.7
    person_income: 66075.0
    person_emp_length: 4.8
    loan_amnt: 9589.0
    loan_int_rate: 11.01
    loan_percent_income: 0.17
    cb_person_cred_hist_length: 5.8
    person_home_ownership_RENT: 0.50
    person_home_ownership_OWN: 0.08
    person_home_ownership_MORTGAGE: 0.41
    person_home_ownership_OTHER: 0.01
    loan_intent_PERSONAL: 0.17
    loan_intent_EDUCATION: 0.20
    loan_intent_MEDICAL: 0.19
    loan_intent_VENTURE: 0.18
    loan_intent_HOMEIMPROVEMENT: 0.11
    loan_intent_DEBTCONSOLIDATION: 0.15
    loan_grade_A: 0.33
    loan_grade_B: 0.32
    loan_grade_C: 0.20
    loan_grade_D: 0.11
    loan_grade_E: 0.03
    loan_grade_F: 0.008
    loan_grade_G: 0.002
    cb_person_default_on_file_Y: 0.18
    cb_person_default_on_file_N: 0.82
`
