package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/strand/internal/harness"
)

// ValidateOutput is the JSON payload of the validate command.
type ValidateOutput struct {
	File   string                `json:"file"`
	Name   string                `json:"name,omitempty"`
	Steps  int                   `json:"steps"`
	Valid  bool                  `json:"valid"`
	Issues []harness.SchemaIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Check a scenario file without running it",
		Long: `Check a scenario file against the scenario schema and the per-operation
field rules. The template is not mounted.

Examples:
  strand validate scenarios/push.yaml
  strand validate scenarios/push.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runValidate(cmd *cobra.Command, opts *RootOptions, path string) error {
	f := newFormatter(opts, cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		msg := fmt.Sprintf("scenario file not found: %s", path)
		f.Error(ErrCodeNotFound, msg, nil, nil)
		return WrapExitError(ExitCommandError, msg, err)
	}

	out := ValidateOutput{File: path}
	s, err := harness.ParseScenario(data, filepath.Base(path))
	if err != nil {
		var schemaErr *harness.SchemaError
		if errors.As(err, &schemaErr) {
			out.Issues = schemaErr.Issues
		} else {
			out.Issues = []harness.SchemaIssue{{Message: err.Error()}}
		}
		if f.JSON() {
			f.Error(ErrCodeInvalid, "scenario is invalid", nil, out)
		} else {
			f.Textf("✗ %s", path)
			for _, is := range out.Issues {
				if is.Path != "" {
					f.Textf("    %s: %s", is.Path, is.Message)
				} else {
					f.Textf("    %s", is.Message)
				}
			}
		}
		return WrapExitError(ExitFailure, "scenario is invalid", err)
	}

	out.Name = s.Name
	out.Steps = len(s.Steps)
	out.Valid = true
	return f.Success(out, fmt.Sprintf("✓ %s (%s, %d steps)", path, s.Name, out.Steps))
}
