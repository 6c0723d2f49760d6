package harness

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/strand/internal/directive"
	"github.com/roach88/strand/internal/reactive"
	"github.com/roach88/strand/internal/testutil"
	"github.com/roach88/strand/internal/view"
)

// Harness drives one scenario against a freshly mounted view.
// Owner tags and record names are deterministic so traces can be compared
// against golden files.
type Harness struct {
	view   *view.View
	data   *reactive.Record
	names  *reactive.Clock
	tags   *testutil.SequentialTagGenerator
	logger *slog.Logger
}

// RunOption configures Run.
type RunOption func(*Harness)

// WithLogger sets the logger handed to the view. Default: discard.
func WithLogger(l *slog.Logger) RunOption {
	return func(h *Harness) { h.logger = l }
}

// Run mounts the scenario's template, applies its steps and checks every
// expectation.
//
// Binding errors raised by mounting or by a step are recorded in the
// snapshot and compared against the expected error code; they do not abort
// the run, except that a failed mount skips the steps. The returned error is
// reserved for scenarios that cannot be executed at all (an unparsable
// template, a path that does not resolve).
func Run(scenario *Scenario, opts ...RunOption) (*Result, error) {
	h := &Harness{
		names:  reactive.NewClock(),
		tags:   testutil.NewSequentialTagGenerator("owner"),
		logger: testutil.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}

	data, ok := reactive.Observe(orEmpty(scenario.Data), h.names.ScopeName).(*reactive.Record)
	if !ok {
		return nil, fmt.Errorf("scenario data must be a mapping")
	}
	h.data = data

	v, err := view.New(scenario.Template, data,
		view.WithTagGenerator(h.tags),
		view.WithLogger(h.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	h.view = v

	result := NewResult()

	mountErr := v.Mount()
	snap, err := h.snapshot(0, "mount", mountErr)
	if err != nil {
		return nil, err
	}
	result.Snapshots = append(result.Snapshots, snap)
	checkExpect(result, "mount", scenario.Expect, snap)
	if mountErr != nil {
		h.logger.Debug("mount failed, skipping steps", "scenario", scenario.Name, "error", mountErr)
		return result, nil
	}

	for i, step := range scenario.Steps {
		mutate, err := h.prepare(step)
		if err != nil {
			return nil, fmt.Errorf("failed to execute steps[%d]: %w", i, err)
		}
		stepErr := mutate()

		snap, err := h.snapshot(i+1, step.Op, stepErr)
		if err != nil {
			return nil, err
		}
		result.Snapshots = append(result.Snapshots, snap)
		checkExpect(result, fmt.Sprintf("steps[%d] (%s %s)", i, step.Op, step.Path), step.Expect, snap)
	}

	return result, nil
}

// prepare resolves the step's target and returns the mutation to run.
func (h *Harness) prepare(step Step) (func() error, error) {
	switch step.Op {
	case OpAssign:
		rec, key, err := h.parentOf(step.Path)
		if err != nil {
			return nil, err
		}
		return func() error { return rec.Set(key, h.observe(step.Value)) }, nil

	case OpUpdate:
		rec, err := h.record(step.Path)
		if err != nil {
			return nil, err
		}
		return func() error { return rec.Set(step.Field, h.observe(step.Value)) }, nil
	}

	l, err := h.list(step.Path)
	if err != nil {
		return nil, err
	}
	switch step.Op {
	case OpSet:
		return func() error { return l.Set(*step.Index, h.observe(step.Value)) }, nil
	case OpPush:
		return func() error { return l.Push(h.observeAll(step.Values)...) }, nil
	case OpTruncate:
		return func() error { return l.Truncate(*step.Length) }, nil
	case OpSplice:
		deleteCount := 0
		if step.Delete != nil {
			deleteCount = *step.Delete
		}
		return func() error {
			_, err := l.Splice(*step.Start, deleteCount, h.observeAll(step.Values)...)
			return err
		}, nil
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func (h *Harness) observe(v any) any {
	return reactive.Observe(v, h.names.ScopeName)
}

func (h *Harness) observeAll(vs []any) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = h.observe(v)
	}
	return out
}

// resolve walks a dotted path from the root data scope.
func (h *Harness) resolve(path string) (any, error) {
	var cur any = h.data
	for _, seg := range strings.Split(path, ".") {
		switch val := cur.(type) {
		case *reactive.Record:
			next, ok := val.Get(seg)
			if !ok {
				return nil, fmt.Errorf("path %q: no field %q", path, seg)
			}
			cur = next
		case *reactive.List:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= val.Len() {
				return nil, fmt.Errorf("path %q: invalid list index %q", path, seg)
			}
			cur = val.At(i)
		default:
			return nil, fmt.Errorf("path %q: cannot descend into %T at %q", path, cur, seg)
		}
	}
	return cur, nil
}

func (h *Harness) record(path string) (*reactive.Record, error) {
	v, err := h.resolve(path)
	if err != nil {
		return nil, err
	}
	rec, ok := v.(*reactive.Record)
	if !ok {
		return nil, fmt.Errorf("path %q: expected a record, got %T", path, v)
	}
	return rec, nil
}

func (h *Harness) list(path string) (*reactive.List, error) {
	v, err := h.resolve(path)
	if err != nil {
		return nil, err
	}
	l, ok := v.(*reactive.List)
	if !ok {
		return nil, fmt.Errorf("path %q: expected a list, got %T", path, v)
	}
	return l, nil
}

// parentOf returns the record holding the last segment of path.
func (h *Harness) parentOf(path string) (*reactive.Record, string, error) {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return h.data, path, nil
	}
	rec, err := h.record(path[:i])
	if err != nil {
		return nil, "", err
	}
	return rec, path[i+1:], nil
}

func (h *Harness) snapshot(step int, op string, opErr error) (Snapshot, error) {
	out, err := h.view.HTML()
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Step:     step,
		Op:       op,
		HTML:     out,
		Pending:  h.view.Queue().Pending(),
		Bindings: []BindingState{},
		Error:    errorCode(opErr),
	}
	for _, b := range h.view.Bindings() {
		snap.Bindings = append(snap.Bindings, BindingState{
			Owner:  string(b.Owner()),
			Source: b.Source(),
			Scopes: len(b.Scopes()),
		})
	}
	return snap, nil
}

// errorCode reduces err to its binding error code, or its message when it is
// not a binding error.
func errorCode(err error) string {
	if err == nil {
		return ""
	}
	var be *directive.BindingError
	if errors.As(err, &be) {
		return string(be.Code)
	}
	return err.Error()
}

func checkExpect(r *Result, label string, exp *Expect, snap Snapshot) {
	wantErr := ""
	if exp != nil {
		wantErr = exp.Error
	}
	if snap.Error != wantErr {
		if wantErr == "" {
			r.AddError(fmt.Sprintf("%s: unexpected error %s", label, snap.Error))
		} else {
			r.AddError(fmt.Sprintf("%s: expected error %s, got %q", label, wantErr, snap.Error))
		}
	}
	if exp == nil {
		return
	}

	if exp.HTML != nil && *exp.HTML != snap.HTML {
		r.AddError(fmt.Sprintf("%s: html mismatch\n  expected: %s\n  actual:   %s", label, *exp.HTML, snap.HTML))
	}
	if exp.Scopes != nil && !slices.Equal(exp.Scopes, snap.Scopes()) {
		r.AddError(fmt.Sprintf("%s: scopes mismatch: expected %v, got %v", label, exp.Scopes, snap.Scopes()))
	}
	if exp.Pending != nil && *exp.Pending != snap.Pending {
		r.AddError(fmt.Sprintf("%s: pending mismatch: expected %d, got %d", label, *exp.Pending, snap.Pending))
	}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
