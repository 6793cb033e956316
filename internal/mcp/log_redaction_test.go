package mcp

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRedactMCPBodyArguments verifies scratchpad text is redacted in tool calls.
func TestRedactMCPBodyArguments(t *testing.T) {
	payload := map[string]any{
		"jsonrpc": "2.0",
		"method":  "tools/call",
		"params": map[string]any{
			"name": "append-scratchpad",
			"arguments": map[string]any{
				"id":      "sp-1",
				"content": strings.Repeat("secret ", 20),
			},
		},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(redactMCPBody(string(data))), &parsed))

	args := parsed["params"].(map[string]any)["arguments"].(map[string]any)
	require.Equal(t, "sp-1", args["id"])
	content := args["content"].(map[string]any)
	require.Equal(t, true, content["redacted"])
	require.EqualValues(t, 140, content["bytes"])
	require.Len(t, []rune(content["preview"].(string)), redactedPreviewRunes)
}

// TestRedactMCPBodyLeavesOtherTools verifies queries of read tools stay readable.
func TestRedactMCPBodyLeavesOtherTools(t *testing.T) {
	raw := `{"method":"tools/call","params":{"name":"search-scratchpads","arguments":{"query":"deploy"}}}`

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(redactMCPBody(raw)), &parsed))
	args := parsed["params"].(map[string]any)["arguments"].(map[string]any)
	require.Equal(t, "deploy", args["query"])
}

// TestRedactMCPBodyResponseContent verifies content fields are redacted in responses.
func TestRedactMCPBodyResponseContent(t *testing.T) {
	raw := `{"result":{"scratchpad":{"id":"sp","content":"very-secret"}}}`

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(redactMCPBody(raw)), &parsed))

	sp := parsed["result"].(map[string]any)["scratchpad"].(map[string]any)
	content := sp["content"].(map[string]any)
	require.Equal(t, true, content["redacted"])
	require.Equal(t, "very-secret", content["preview"])
}

// TestRedactMCPBodyInvalidJSON verifies non-JSON bodies are summarized, not echoed.
func TestRedactMCPBodyInvalidJSON(t *testing.T) {
	secret := strings.Repeat("secret-", 20)
	out := redactMCPBody("not json " + secret)
	require.NotContains(t, out, secret)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.Equal(t, "unparsed", summary["reason"])
	require.EqualValues(t, len("not json ")+len(secret), summary["bytes"])
	require.Empty(t, redactMCPBody(""))
}

// TestRedactMCPBodyToolResultText verifies JSON text items of tool results are redacted.
func TestRedactMCPBodyToolResultText(t *testing.T) {
	inner := `{"scratchpad":{"id":"sp","content":"` + strings.Repeat("y", 64) + `"}}`
	raw, err := json.Marshal(map[string]any{
		"result": map[string]any{
			"content": []any{map[string]any{"type": "text", "text": inner}},
		},
	})
	require.NoError(t, err)

	out := redactMCPBody(string(raw))
	require.NotContains(t, out, strings.Repeat("y", 64))
	require.Contains(t, out, "redacted")
}

// TestRedactMCPBodySSE verifies each data line of an event stream is redacted.
func TestRedactMCPBodySSE(t *testing.T) {
	raw := "event: message\ndata: {\"result\":{\"scratchpad\":{\"content\":\"" + strings.Repeat("x", 64) + "\"}}}\n\n"

	out := redactMCPBody(raw)
	require.True(t, strings.HasPrefix(out, "event: message\ndata: {"))
	require.NotContains(t, out, strings.Repeat("x", 64))
	require.Contains(t, out, `"redacted":true`)
}
