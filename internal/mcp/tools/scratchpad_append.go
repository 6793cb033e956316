package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// AppendScratchpadTool implements the append-scratchpad MCP tool.
type AppendScratchpadTool struct {
	svc ScratchpadService
}

// NewAppendScratchpadTool constructs an AppendScratchpadTool.
func NewAppendScratchpadTool(svc ScratchpadService) (*AppendScratchpadTool, error) {
	if svc == nil {
		return nil, errServiceRequired
	}
	return &AppendScratchpadTool{svc: svc}, nil
}

// Definition returns the MCP metadata for append-scratchpad.
func (t *AppendScratchpadTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"append-scratchpad",
		mcp.WithDescription("Append text verbatim to the end of a scratchpad. No separator is added."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Scratchpad id.")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Text to append.")),
		mcp.WithBoolean("include_content", mcp.Description("Return the full content after appending.")),
		mcp.WithIdempotentHintAnnotation(false),
	)
}

// Handle executes the append-scratchpad tool logic.
func (t *AppendScratchpadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return validationErrorResult(err), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return validationErrorResult(err), nil
	}

	sp, err := t.svc.AppendScratchpad(ctx, id, content)
	if err != nil {
		return toolErrorFromErr(ctx, "append-scratchpad", err), nil
	}
	view, err := newScratchpadView(sp, readBoolArgWithDefault(req, "include_content", false))
	if err != nil {
		return toolErrorFromErr(ctx, "append-scratchpad", err), nil
	}
	return jsonResult(map[string]any{
		"message":        fmt.Sprintf("Appended %d bytes to %q, now %d bytes", len(content), sp.Title, sp.SizeBytes),
		"scratchpad":     view,
		"appended_bytes": len(content),
	})
}
