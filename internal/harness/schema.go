package harness

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var scenarioSchema string

// SchemaIssue is one violation of the scenario schema.
type SchemaIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Pos     string `json:"pos,omitempty"`
}

// SchemaError reports every schema violation found in a scenario document.
type SchemaError struct {
	Source string
	Issues []SchemaIssue
}

func (e *SchemaError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		if is.Path != "" {
			msgs[i] = is.Path + ": " + is.Message
		} else {
			msgs[i] = is.Message
		}
	}
	return fmt.Sprintf("%s: schema validation failed: %s", e.Source, strings.Join(msgs, "; "))
}

// ValidateSchema checks a decoded scenario document against the scenario
// schema. source names the document in the returned *SchemaError.
func ValidateSchema(doc map[string]any, source string) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(scenarioSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}

	if doc == nil {
		doc = map[string]any{}
	}
	value := ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return fmt.Errorf("%s: encode scenario: %w", source, err)
	}

	def := schema.LookupPath(cue.ParsePath("#Scenario"))
	err := def.Unify(value).Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	schemaErr := &SchemaError{Source: source}
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		issue := SchemaIssue{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		if positions := cueerrors.Positions(e); len(positions) > 0 {
			issue.Pos = positions[0].String()
		}
		schemaErr.Issues = append(schemaErr.Issues, issue)
	}
	return schemaErr
}
