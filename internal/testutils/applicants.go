package testutils

import (
	"math"

	"github.com/ahrav/go-underwrite/internal/domain"
)

// Categorical levels matching the starter bundle's encoding plan.
var (
	homeOwnershipLevels = []string{"RENT", "OWN", "MORTGAGE", "OTHER"}
	loanIntentLevels    = []string{"PERSONAL", "EDUCATION", "MEDICAL", "VENTURE", "HOMEIMPROVEMENT", "DEBTCONSOLIDATION"}
	loanGradeLevels     = []string{"A", "B", "C", "D", "E", "F", "G"}
	defaultOnFileLevels = []string{"N", "Y"}
)

// SampleApplicant returns the i-th deterministic applicant record.
// Records satisfy the starter bundle's raw schema and cycle through
// every categorical level, so a modest batch exercises every one-hot
// column. The same index always yields the same record.
func SampleApplicant(i int) domain.RawRecord {
	income := 32000.0 + float64(i%40)*2500
	amount := 4000.0 + float64(i%25)*800

	return domain.RawRecord{
		"person_age":                 22 + i%45,
		"person_income":              income,
		"person_home_ownership":      homeOwnershipLevels[i%len(homeOwnershipLevels)],
		"person_emp_length":          i % 18,
		"loan_intent":                loanIntentLevels[i%len(loanIntentLevels)],
		"loan_grade":                 loanGradeLevels[i%len(loanGradeLevels)],
		"loan_amnt":                  amount,
		"loan_int_rate":              6.5 + float64(i%30)*0.45,
		"loan_percent_income":        math.Round(amount/income*10000) / 10000,
		"cb_person_default_on_file":  defaultOnFileLevels[i%len(defaultOnFileLevels)],
		"cb_person_cred_hist_length": 2 + i%20,
	}
}

// SampleApplicants returns n deterministic applicant records, indexed
// from zero.
func SampleApplicants(n int) domain.RawBatch {
	batch := make(domain.RawBatch, n)
	for i := range batch {
		batch[i] = SampleApplicant(i)
	}
	return batch
}
