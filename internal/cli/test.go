package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/strand/internal/harness"
	"github.com/roach88/strand/internal/ir"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter    string
	Update    bool
	GoldenDir string
}

// TestResult is the JSON payload of a test run.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// ScenarioResult is the outcome of one scenario.
type ScenarioResult struct {
	Name        string   `json:"name"`
	Pass        bool     `json:"pass"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Golden      string   `json:"golden,omitempty"` // "match", "mismatch", "missing", "updated"
	Errors      []string `json:"errors,omitempty"`
}

// Golden file states.
const (
	goldenMatch    = "match"
	goldenMismatch = "mismatch"
	goldenMissing  = "missing"
	goldenUpdated  = "updated"
)

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run scenario files and compare their traces with golden files",
		Long: `Run every scenario file in a directory.

Each scenario's expectations are checked after mounting and after every
step. The canonical trace of the run is then compared with
<golden-dir>/<name>.golden. Scenarios without a golden file are reported
but do not fail the run.

Examples:
  strand test scenarios/
  strand test scenarios/ --filter 'nested_*'
  strand test scenarios/ --update`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose name matches this pattern")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "write golden files instead of comparing")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden-dir", "", "golden file directory (default <scenarios-dir>/golden)")

	return cmd
}

func runTest(cmd *cobra.Command, opts *TestOptions, dir string) error {
	f := newFormatter(opts.RootOptions, cmd)

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		msg := fmt.Sprintf("scenario directory not found: %s", dir)
		f.Error(ErrCodeNotFound, msg, nil, nil)
		return NewExitError(ExitCommandError, msg)
	}

	scenarios, err := harness.LoadScenarios(dir, opts.Filter)
	if err != nil {
		f.Error(ErrCodeInvalid, err.Error(), nil, nil)
		return WrapExitError(ExitCommandError, "failed to load scenarios", err)
	}

	goldenDir := opts.GoldenDir
	if goldenDir == "" {
		goldenDir = filepath.Join(dir, "golden")
	}
	logger := newLogger(opts.RootOptions, f.errWriter())

	result := TestResult{Scenarios: []ScenarioResult{}}
	for _, s := range scenarios {
		f.VerboseLog("running %s", s.Name)
		sr := runScenario(s, goldenDir, opts.Update, harness.WithLogger(logger))
		result.Scenarios = append(result.Scenarios, sr)
		result.Total++
		if sr.Pass {
			result.Passed++
			f.Textf("✓ %s", sr.Name)
		} else {
			result.Failed++
			f.Textf("✗ %s", sr.Name)
			for _, e := range sr.Errors {
				f.Textf("    %s", e)
			}
		}
		if sr.Golden == goldenMissing {
			f.Textf("    no golden file (run with --update to create it)")
		}
	}

	f.Textf("")
	f.Textf("Test Summary: %d passed, %d failed, %d total", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		if f.JSON() {
			f.Error(ErrCodeTestFailed, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total), nil, result)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenarios failed", result.Failed))
	}
	if f.JSON() {
		return f.Success(result, "")
	}
	return nil
}

// runScenario runs one scenario and checks or rewrites its golden file.
func runScenario(s *harness.Scenario, goldenDir string, update bool, opts ...harness.RunOption) ScenarioResult {
	sr := ScenarioResult{Name: s.Name, Pass: true}

	result, err := harness.Run(s, opts...)
	if err != nil {
		sr.Pass = false
		sr.Errors = []string{err.Error()}
		return sr
	}
	if !result.Pass {
		sr.Pass = false
		sr.Errors = append(sr.Errors, result.Errors...)
	}

	trace, err := ir.MarshalCanonical(result.Trace(s.Name))
	if err != nil {
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("failed to encode trace: %v", err))
		return sr
	}
	sr.Fingerprint, _ = ir.Fingerprint(result.Trace(s.Name))

	path := filepath.Join(goldenDir, s.Name+".golden")
	if update {
		if err := writeGolden(path, trace); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, err.Error())
			return sr
		}
		sr.Golden = goldenUpdated
		return sr
	}

	want, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		sr.Golden = goldenMissing
	case err != nil:
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("failed to read golden file: %v", err))
	case bytes.Equal(bytes.TrimRight(want, "\n"), trace):
		sr.Golden = goldenMatch
	default:
		sr.Golden = goldenMismatch
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("trace differs from %s", path))
	}
	return sr
}

func writeGolden(path string, trace []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, trace, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}
