package harness

import "github.com/roach88/besselx/pkg/bessel"

// Result is the outcome of running one scenario.
type Result struct {
	Scenario string `json:"scenario"`

	// RunID is the store run the evaluations were recorded under.
	RunID string `json:"run_id"`

	// Pass is true if every case passed.
	Pass bool `json:"pass"`

	Cases []CaseResult `json:"cases"`

	// Errors collects every case failure, prefixed with the case name.
	Errors []string `json:"errors,omitempty"`
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name      string           `json:"name"`
	Function  string           `json:"function"`
	Orders    []float64        `json:"orders"`
	Values    []complex128     `json:"-"`
	ErrorCode string           `json:"error,omitempty"`
	Warnings  []bessel.Warning `json:"warnings,omitempty"`
	Pass      bool             `json:"pass"`
	Errors    []string         `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(scenario string) *Result {
	return &Result{
		Scenario: scenario,
		Pass:     true,
		Cases:    []CaseResult{},
		Errors:   []string{},
	}
}

// AddCase appends a case result, folding its errors into the scenario's.
func (r *Result) AddCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
	for _, e := range c.Errors {
		r.AddError(c.Name + ": " + e)
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
