package harness

// TraceEvent is one step of a scenario execution: an ingested release or
// an answered query.
type TraceEvent struct {
	Type string `json:"type"` // "ingest" or "query"
	Seq  int64  `json:"seq"`

	// Ingest fields.
	Package     string            `json:"package,omitempty"`
	Tag         string            `json:"tag,omitempty"`
	Version     int64             `json:"version,omitempty"`
	Pins        map[string]string `json:"pins,omitempty"`
	Symbols     int               `json:"symbols,omitempty"`
	Hints       int               `json:"hints,omitempty"`
	Diagnostics int               `json:"diagnostics,omitempty"`

	// Query fields.
	Path      string `json:"path,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Exact     string `json:"exact,omitempty"`
	Canonical string `json:"canonical,omitempty"`
}

// Trace event types.
const (
	EventIngest = "ingest"
	EventQuery  = "query"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// Trace contains all ingestions and queries in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
