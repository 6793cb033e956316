package mcp

import (
	"encoding/json"
	"strings"
)

// contentToolNames lists tools whose "content" argument carries scratchpad text.
var contentToolNames = map[string]struct{}{
	"create-scratchpad": {},
	"append-scratchpad": {},
	"edit-scratchpad":   {},
}

// redactedPreviewRunes is how much of a redacted text survives in logs.
const redactedPreviewRunes = 32

// redactMCPBody replaces scratchpad text in MCP payloads with a short summary.
// Bodies framed as server-sent events are redacted line by line.
func redactMCPBody(raw string) string {
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, "event:") || strings.HasPrefix(raw, "data:") {
		return redactSSEBody(raw)
	}
	return redactJSON(raw)
}

func redactSSEBody(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		if data, ok := strings.CutPrefix(line, "data:"); ok {
			lines[i] = "data: " + redactJSON(strings.TrimSpace(data))
		}
	}
	return strings.Join(lines, "\n")
}

// redactJSON redacts a JSON document. Text that does not parse is never
// logged verbatim, only its size and a short prefix.
func redactJSON(raw string) string {
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return summarizeBody(raw, len(raw), "unparsed")
	}
	out, err := json.Marshal(redactMCPValue(payload))
	if err != nil {
		return summarizeBody(raw, len(raw), "unparsed")
	}
	return string(out)
}

// summarizeBody renders a body as its total size and a short prefix.
func summarizeBody(raw string, total int, reason string) string {
	summary := redactText(raw)
	summary["bytes"] = total
	summary["reason"] = reason
	out, err := json.Marshal(summary)
	if err != nil {
		return ""
	}
	return string(out)
}

// redactLoggedBody redacts a captured body. A truncated capture cannot be
// parsed, so only its summary is logged.
func redactLoggedBody(body *cappedBuffer) string {
	if body.truncated {
		return summarizeBody(body.String(), body.total, "truncated")
	}
	return redactMCPBody(body.String())
}

// redactMCPValue recursively redacts nested payloads.
func redactMCPValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return redactMCPMap(v)
	case []any:
		result := make([]any, 0, len(v))
		for _, item := range v {
			result = append(result, redactMCPValue(item))
		}
		return result
	default:
		return value
	}
}

// redactMCPMap redacts tool arguments and any content field of a JSON object.
func redactMCPMap(input map[string]any) map[string]any {
	output := make(map[string]any, len(input))
	for key, value := range input {
		output[key] = redactMCPValue(value)
	}

	if method, _ := output["method"].(string); method == "tools/call" {
		if params, ok := output["params"].(map[string]any); ok {
			name, _ := params["name"].(string)
			if _, ok := contentToolNames[name]; ok {
				if args, ok := params["arguments"].(map[string]any); ok {
					if text, ok := args["content"].(string); ok {
						args["content"] = redactText(text)
					}
				}
			}
		}
	}

	if text, ok := output["content"].(string); ok {
		output["content"] = redactText(text)
	}
	// tool results repeat the structured payload as a JSON text item
	if kind, _ := output["type"].(string); kind == "text" {
		if text, ok := output["text"].(string); ok && strings.HasPrefix(strings.TrimSpace(text), "{") {
			output["text"] = redactJSON(text)
		}
	}
	return output
}

// redactText summarizes text by size with a short prefix.
func redactText(text string) map[string]any {
	preview := []rune(text)
	if len(preview) > redactedPreviewRunes {
		preview = preview[:redactedPreviewRunes]
	}
	return map[string]any{
		"redacted": true,
		"bytes":    len(text),
		"preview":  string(preview),
	}
}

// redactHookPayload renders a redacted JSON string for hook logging.
func redactHookPayload(payload any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return redactMCPBody(string(data))
}
