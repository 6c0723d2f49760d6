package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	out, _, err := executeCommand(t, "validate", scenarioDir+"/patch_then_shrink.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "patch_then_shrink, 2 steps")
}

func TestValidate_SchemaIssues(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", `
name: "Bad Name"
template: '<p></p>'
`)

	out, _, err := executeCommand(t, "validate", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string         `json:"status"`
		Data   ValidateOutput `json:"data"`
		Error  *CLIError      `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeInvalid, resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	assert.NotEmpty(t, resp.Data.Issues)
}

func TestValidate_OperationIssue(t *testing.T) {
	path := writeFile(t, t.TempDir(), "op.yaml", `
name: no_index
description: "set needs an index"
template: '<p></p>'
steps:
  - op: set
    path: xs
    value: a
`)

	out, _, err := executeCommand(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "index is required")
}

func TestValidate_MissingFile(t *testing.T) {
	_, _, err := executeCommand(t, "validate", "/nonexistent/s.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
