package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines a render scenario: a template, the data it is mounted
// against, and a sequence of data changes with the output expected after
// each one.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Template is the HTML template to mount.
	Template string `yaml:"template"`

	// Data is the root data scope. Maps become observed records and
	// sequences become observed lists.
	Data map[string]any `yaml:"data,omitempty"`

	// Expect is checked right after mounting.
	Expect *Expect `yaml:"expect,omitempty"`

	// Steps change the data in order.
	Steps []Step `yaml:"steps,omitempty"`
}

// Step is one change applied to the mounted data.
//
// Path is a dotted path from the root data scope. Which other fields are
// used depends on Op:
//
//	assign    path, value            set the field path names
//	update    path, field, value     set field on the record at path
//	set       path, index, value     write element index of the list at path
//	push      path, values           append to the list at path
//	truncate  path, length           set the length of the list at path
//	splice    path, start, delete, values
type Step struct {
	Op     string `yaml:"op"`
	Path   string `yaml:"path"`
	Field  string `yaml:"field,omitempty"`
	Index  *int   `yaml:"index,omitempty"`
	Value  any    `yaml:"value,omitempty"`
	Values []any  `yaml:"values,omitempty"`
	Length *int   `yaml:"length,omitempty"`
	Start  *int   `yaml:"start,omitempty"`
	Delete *int   `yaml:"delete,omitempty"`

	// Expect is checked after the step ran.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect lists what must hold after mounting or after a step. Unset fields
// are not checked.
type Expect struct {
	// HTML is the exact rendered output.
	HTML *string `yaml:"html,omitempty"`

	// Scopes is the number of item scopes per list binding, in discovery order.
	Scopes []int `yaml:"scopes,omitempty"`

	// Pending is the render queue's outstanding unit count.
	Pending *int `yaml:"pending,omitempty"`

	// Error is the binding error code the operation must fail with
	// (GRAMMAR, ROOT_PLACEMENT, NOT_COLLECTION, SOURCE, RENDER).
	Error string `yaml:"error,omitempty"`
}

// Step operations.
const (
	OpAssign   = "assign"
	OpUpdate   = "update"
	OpSet      = "set"
	OpPush     = "push"
	OpTruncate = "truncate"
	OpSplice   = "splice"
)

// LoadScenario reads and parses a scenario YAML file.
//
// The document is decoded strictly (unknown fields are rejected), checked
// against the scenario schema, then checked for per-operation requirements.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Base(path))
}

// ParseScenario parses scenario YAML. source names the document in errors.
func ParseScenario(data []byte, source string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ValidateSchema(doc, source); err != nil {
		return nil, err
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, in name order.
// A non-empty filter is a filepath.Match pattern applied to scenario names.
func LoadScenarios(dir, filter string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}

	var scenarios []*Scenario
	for _, p := range sortedPaths(paths) {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if filter != "" {
			ok, err := filepath.Match(filter, s.Name)
			if err != nil {
				return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
			}
			if !ok {
				continue
			}
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks what the schema cannot express: which fields each
// operation needs.
func validateScenario(s *Scenario) error {
	if strings.TrimSpace(s.Template) == "" {
		return fmt.Errorf("template is required")
	}
	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	if err := validatePath(step.Path); err != nil {
		return err
	}
	switch step.Op {
	case OpAssign, OpPush:
	case OpUpdate:
		if step.Field == "" {
			return fmt.Errorf("field is required for %s", step.Op)
		}
	case OpSet:
		if step.Index == nil {
			return fmt.Errorf("index is required for %s", step.Op)
		}
	case OpTruncate:
		if step.Length == nil {
			return fmt.Errorf("length is required for %s", step.Op)
		}
	case OpSplice:
		if step.Start == nil {
			return fmt.Errorf("start is required for %s", step.Op)
		}
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path is required")
	}
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return fmt.Errorf("path %q has an empty segment", path)
		}
	}
	return nil
}

func sortedPaths(paths []string) []string {
	out := append([]string(nil), paths...)
	slices.SortFunc(out, func(a, b string) int {
		return strings.Compare(filepath.Base(a), filepath.Base(b))
	})
	return out
}
