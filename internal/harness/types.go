package harness

import (
	"github.com/roach88/strand/internal/ir"
)

// BindingState is one list binding as seen in a snapshot.
type BindingState struct {
	Owner  string `json:"owner"`
	Source string `json:"source"`
	Scopes int    `json:"scopes"`
}

// Snapshot records the rendered state after mounting (step 0) or after a
// step (1-based).
type Snapshot struct {
	Step     int            `json:"step"`
	Op       string         `json:"op"`
	HTML     string         `json:"html"`
	Pending  int            `json:"pending"`
	Bindings []BindingState `json:"bindings"`
	Error    string         `json:"error,omitempty"`
}

// Scopes returns the scope count of every binding in order.
func (s Snapshot) Scopes() []int {
	out := make([]int, len(s.Bindings))
	for i, b := range s.Bindings {
		out[i] = b.Scopes
	}
	return out
}

func (s Snapshot) toValue() ir.Object {
	bindings := make(ir.Array, len(s.Bindings))
	for i, b := range s.Bindings {
		bindings[i] = ir.Object{
			"owner":  ir.String(b.Owner),
			"source": ir.String(b.Source),
			"scopes": ir.Int(b.Scopes),
		}
	}
	obj := ir.Object{
		"step":     ir.Int(s.Step),
		"op":       ir.String(s.Op),
		"html":     ir.String(s.HTML),
		"pending":  ir.Int(s.Pending),
		"bindings": bindings,
	}
	if s.Error != "" {
		obj["error"] = ir.String(s.Error)
	}
	return obj
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Snapshots holds the state after mounting and after every step.
	Snapshots []Snapshot `json:"snapshots"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Snapshots: []Snapshot{},
		Errors:    []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Trace returns the canonical value of a scenario's snapshot trace.
func (r *Result) Trace(name string) ir.Object {
	snaps := make(ir.Array, len(r.Snapshots))
	for i, s := range r.Snapshots {
		snaps[i] = s.toValue()
	}
	return ir.Object{
		"scenario": ir.String(name),
		"version":  ir.String(ir.TraceVersion),
		"trace":    snaps,
	}
}

// Fingerprint returns the digest of the scenario's trace.
func (r *Result) Fingerprint(name string) (string, error) {
	return ir.Fingerprint(r.Trace(name))
}
