package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/strand/internal/directive"
	"github.com/roach88/strand/internal/reactive"
	"github.com/roach88/strand/internal/view"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	DataFile string
	Prefix   string
}

// RenderOutput is the JSON payload of a successful render.
type RenderOutput struct {
	HTML     string          `json:"html"`
	Pending  int             `json:"pending"`
	Bindings []RenderBinding `json:"bindings"`
}

// RenderBinding describes one list binding after mounting.
type RenderBinding struct {
	Owner  string `json:"owner"`
	Source string `json:"source"`
	Scopes int    `json:"scopes"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Mount a template against data and print the HTML",
		Long: `Mount an HTML template against data and print the rendered output.

Data is read from a YAML or JSON mapping. Without --data the template is
mounted against an empty scope.

Examples:
  strand render list.html --data items.yaml
  strand render list.html --data items.yaml --format json
  strand render list.html --prefix x-`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.DataFile, "data", "", "YAML or JSON file holding the root data scope")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", view.DefaultPrefix, "directive attribute prefix")

	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions, templatePath string) error {
	f := newFormatter(opts.RootOptions, cmd)

	tmpl, err := os.ReadFile(templatePath)
	if err != nil {
		f.Error(ErrCodeNotFound, fmt.Sprintf("failed to read template: %v", err), nil, nil)
		return WrapExitError(ExitCommandError, "failed to read template", err)
	}

	data, err := loadData(opts.DataFile)
	if err != nil {
		f.Error(ErrCodeBadInput, err.Error(), nil, nil)
		return WrapExitError(ExitCommandError, "failed to load data", err)
	}

	clock := reactive.NewClock()
	root, _ := reactive.Observe(data, clock.ScopeName).(*reactive.Record)

	v, err := view.New(string(tmpl), root,
		view.WithDirectivePrefix(opts.Prefix),
		view.WithLogger(newLogger(opts.RootOptions, f.errWriter())),
	)
	if err != nil {
		f.Error(ErrCodeBadInput, fmt.Sprintf("failed to parse template: %v", err), nil, nil)
		return WrapExitError(ExitCommandError, "failed to parse template", err)
	}

	if err := v.Mount(); err != nil {
		code := ErrCodeBinding
		var be *directive.BindingError
		if errors.As(err, &be) {
			f.Error(code, err.Error(), map[string]string{"binding_code": string(be.Code)}, nil)
		} else {
			f.Error(code, err.Error(), nil, nil)
		}
		return WrapExitError(ExitFailure, "render failed", err)
	}

	out, err := v.HTML()
	if err != nil {
		f.Error(ErrCodeBinding, err.Error(), nil, nil)
		return WrapExitError(ExitFailure, "render failed", err)
	}

	payload := RenderOutput{
		HTML:     out,
		Pending:  v.Queue().Pending(),
		Bindings: []RenderBinding{},
	}
	for _, b := range v.Bindings() {
		payload.Bindings = append(payload.Bindings, RenderBinding{
			Owner:  string(b.Owner()),
			Source: b.Source(),
			Scopes: len(b.Scopes()),
		})
		f.VerboseLog("binding %s %q: %d scopes", b.Owner(), b.Source(), len(b.Scopes()))
	}

	return f.Success(payload, out)
}

// loadData reads the root data mapping. An empty path yields an empty map.
func loadData(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}
