package harness

import "github.com/roach88/rollcall/internal/summary"

// Step outcomes recorded in the trace.
const (
	OutcomeOK         = "ok"
	OutcomeIgnored    = "ignored"
	OutcomeDuplicate  = "duplicate"
	OutcomeNotFound   = "not_found"
	OutcomeNoData     = "no_data"
	OutcomeInvalid    = "invalid"
	OutcomeCacheError = "cache_error"
	OutcomeError      = "error"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int64                  `json:"seq"`
	Op      string                 `json:"op"`
	Args    map[string]interface{} `json:"args,omitempty"`
	Outcome string                 `json:"outcome"`
	Result  map[string]interface{} `json:"result,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion holds.
	Pass bool `json:"pass"`

	// Trace contains every setup and flow step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Columns and Summary capture the final state.
	Columns []string                  `json:"columns"`
	Summary []summary.AttendeeSummary `json:"summary"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		Columns: []string{},
		Summary: []summary.AttendeeSummary{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace and returns its sequence number.
func (r *Result) AddTrace(op string, args map[string]interface{}, outcome string, result map[string]interface{}) int64 {
	seq := int64(len(r.Trace) + 1)
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     seq,
		Op:      op,
		Args:    args,
		Outcome: outcome,
		Result:  result,
	})
	return seq
}
