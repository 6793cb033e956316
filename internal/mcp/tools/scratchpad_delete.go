package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// DeleteScratchpadTool implements the delete-scratchpad MCP tool.
type DeleteScratchpadTool struct {
	svc ScratchpadService
}

// NewDeleteScratchpadTool constructs a DeleteScratchpadTool.
func NewDeleteScratchpadTool(svc ScratchpadService) (*DeleteScratchpadTool, error) {
	if svc == nil {
		return nil, errServiceRequired
	}
	return &DeleteScratchpadTool{svc: svc}, nil
}

// Definition returns the MCP metadata for delete-scratchpad.
func (t *DeleteScratchpadTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"delete-scratchpad",
		mcp.WithDescription("Delete one scratchpad."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Scratchpad id.")),
		mcp.WithDestructiveHintAnnotation(true),
	)
}

// Handle executes the delete-scratchpad tool logic.
func (t *DeleteScratchpadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return validationErrorResult(err), nil
	}

	if err := t.svc.DeleteScratchpad(ctx, id); err != nil {
		return toolErrorFromErr(ctx, "delete-scratchpad", err), nil
	}
	return jsonResult(map[string]any{
		"message":       fmt.Sprintf("Deleted scratchpad %s", id),
		"scratchpad_id": id,
	})
}
