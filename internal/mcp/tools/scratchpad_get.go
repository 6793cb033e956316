package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// GetScratchpadTool implements the get-scratchpad MCP tool.
type GetScratchpadTool struct {
	svc ScratchpadService
}

// NewGetScratchpadTool constructs a GetScratchpadTool.
func NewGetScratchpadTool(svc ScratchpadService) (*GetScratchpadTool, error) {
	if svc == nil {
		return nil, errServiceRequired
	}
	return &GetScratchpadTool{svc: svc}, nil
}

// Definition returns the MCP metadata for get-scratchpad.
func (t *GetScratchpadTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"get-scratchpad",
		mcp.WithDescription("Get a scratchpad including its full content."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Scratchpad id.")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// Handle executes the get-scratchpad tool logic.
func (t *GetScratchpadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return validationErrorResult(err), nil
	}

	sp, err := t.svc.GetScratchpad(ctx, id)
	if err != nil {
		return toolErrorFromErr(ctx, "get-scratchpad", err), nil
	}
	view, err := newScratchpadView(sp, true)
	if err != nil {
		return toolErrorFromErr(ctx, "get-scratchpad", err), nil
	}
	return jsonResult(map[string]any{
		"message":    fmt.Sprintf("Scratchpad %q (%d bytes)", sp.Title, sp.SizeBytes),
		"scratchpad": view,
	})
}
