package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// DeleteWorkflowTool implements the delete-workflow MCP tool.
type DeleteWorkflowTool struct {
	svc ScratchpadService
}

// NewDeleteWorkflowTool constructs a DeleteWorkflowTool.
func NewDeleteWorkflowTool(svc ScratchpadService) (*DeleteWorkflowTool, error) {
	if svc == nil {
		return nil, errServiceRequired
	}
	return &DeleteWorkflowTool{svc: svc}, nil
}

// Definition returns the MCP metadata for delete-workflow.
func (t *DeleteWorkflowTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"delete-workflow",
		mcp.WithDescription("Delete a workflow and every scratchpad it owns."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow id.")),
		mcp.WithDestructiveHintAnnotation(true),
	)
}

// Handle executes the delete-workflow tool logic.
func (t *DeleteWorkflowTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("workflow_id")
	if err != nil {
		return validationErrorResult(err), nil
	}

	removed, err := t.svc.DeleteWorkflow(ctx, id)
	if err != nil {
		return toolErrorFromErr(ctx, "delete-workflow", err), nil
	}
	return jsonResult(map[string]any{
		"message":             fmt.Sprintf("Deleted workflow %s and %d scratchpads", id, removed),
		"workflow_id":         id,
		"deleted_scratchpads": removed,
	})
}
