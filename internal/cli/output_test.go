package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitFailure},
		{"exit error", NewExitError(ExitCommandError, "missing"), ExitCommandError},
		{"wrapped", fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "missing")), ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	cause := errors.New("no such file")
	err := WrapExitError(ExitCommandError, "failed to read template", cause)
	assert.Equal(t, "failed to read template: no such file", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bare", NewExitError(ExitFailure, "bare").Error())
}

func TestOutputFormatter_JSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: FormatJSON, Writer: &buf}

	require.NoError(t, f.Success(map[string]string{"html": "<p>a&b</p>"}, "ignored"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "<p>a&b</p>", resp["data"].(map[string]any)["html"])
	assert.Contains(t, buf.String(), "<p>a&b</p>", "HTML is not escaped")

	buf.Reset()
	require.NoError(t, f.Error(ErrCodeBinding, "bad", map[string]string{"binding_code": "GRAMMAR"}, nil))
	var errResp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &errResp))
	assert.Equal(t, "error", errResp.Status)
	require.NotNil(t, errResp.Error)
	assert.Equal(t, ErrCodeBinding, errResp.Error.Code)
}

func TestOutputFormatter_Text(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: FormatText, Writer: &out, ErrWriter: &errOut, Verbose: true}

	require.NoError(t, f.Success(nil, "<p></p>"))
	f.Textf("line %d", 2)
	f.VerboseLog("debug %s", "info")
	require.NoError(t, f.Error(ErrCodeNotFound, "gone", "details", nil))

	assert.Equal(t, "<p></p>\nline 2\nError [E_NOT_FOUND]: gone\nDetails: details\n", out.String())
	assert.Equal(t, "debug info\n", errOut.String())
}

func TestOutputFormatter_TextfSilentInJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: FormatJSON, Writer: &buf}
	f.Textf("nothing")
	f.VerboseLog("nothing")
	assert.Empty(t, buf.String())
}
