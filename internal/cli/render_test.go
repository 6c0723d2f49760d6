package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const renderTemplate = `<ul><li s-for="(item, i) in items">{{ i }}:{{ item }}</li></ul>`

func TestRender_Text(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFile(t, dir, "list.html", renderTemplate)
	data := writeFile(t, dir, "data.yaml", "items: [a, b]\n")

	out, _, err := executeCommand(t, "render", tmpl, "--data", data)
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>0:a</li><li>1:b</li></ul>\n", out)
}

func TestRender_JSON(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFile(t, dir, "list.html", renderTemplate)
	data := writeFile(t, dir, "data.json", `{"items": ["x"]}`)

	out, _, err := executeCommand(t, "render", tmpl, "--data", data, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   RenderOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "<ul><li>0:x</li></ul>", resp.Data.HTML)
	assert.Equal(t, 0, resp.Data.Pending)
	require.Len(t, resp.Data.Bindings, 1)
	assert.Equal(t, "items", resp.Data.Bindings[0].Source)
	assert.Equal(t, 1, resp.Data.Bindings[0].Scopes)
	assert.NotEmpty(t, resp.Data.Bindings[0].Owner)
}

func TestRender_Prefix(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFile(t, dir, "list.html", `<ol><li x-for="n in nums">{{ n }}</li></ol>`)
	data := writeFile(t, dir, "data.yaml", "nums: [1, 2]\n")

	out, _, err := executeCommand(t, "render", tmpl, "--data", data, "--prefix", "x-")
	require.NoError(t, err)
	assert.Equal(t, "<ol><li>1</li><li>2</li></ol>\n", out)
}

func TestRender_NoData(t *testing.T) {
	tmpl := writeFile(t, t.TempDir(), "list.html", renderTemplate)

	out, _, err := executeCommand(t, "render", tmpl)
	require.NoError(t, err)
	assert.Equal(t, "<ul><li>{{ i }}:{{ item }}</li></ul>\n", out)
}

func TestRender_Errors(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFile(t, dir, "list.html", renderTemplate)

	t.Run("missing template", func(t *testing.T) {
		out, _, err := executeCommand(t, "render", "/nonexistent/t.html")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, ErrCodeNotFound)
	})

	t.Run("bad data", func(t *testing.T) {
		data := writeFile(t, dir, "bad.yaml", "- not\n- a mapping\n")
		_, _, err := executeCommand(t, "render", tmpl, "--data", data)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("binding error", func(t *testing.T) {
		data := writeFile(t, dir, "scalar.yaml", "items: 3\n")
		out, _, err := executeCommand(t, "render", tmpl, "--data", data, "--format", "json")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		var resp CLIResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeBinding, resp.Error.Code)
		assert.Equal(t, map[string]any{"binding_code": "NOT_COLLECTION"}, resp.Error.Details)
	})

	t.Run("root placement", func(t *testing.T) {
		root := writeFile(t, dir, "root.html", `<li s-for="x in xs">{{ x }}</li>`)
		out, _, err := executeCommand(t, "render", root)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "Error [E_BINDING]")
	})
}
