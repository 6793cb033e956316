package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ListWorkflowsTool implements the list-workflows MCP tool.
type ListWorkflowsTool struct {
	svc ScratchpadService
}

// NewListWorkflowsTool constructs a ListWorkflowsTool.
func NewListWorkflowsTool(svc ScratchpadService) (*ListWorkflowsTool, error) {
	if svc == nil {
		return nil, errServiceRequired
	}
	return &ListWorkflowsTool{svc: svc}, nil
}

// Definition returns the MCP metadata for list-workflows.
func (t *ListWorkflowsTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"list-workflows",
		mcp.WithDescription("List workflows, most recently updated first."),
		mcp.WithString("project_scope", mcp.Description("Only list workflows with exactly this project scope.")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// Handle executes the list-workflows tool logic.
func (t *ListWorkflowsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workflows, err := t.svc.ListWorkflows(ctx, readOptionalStringArg(req, "project_scope"))
	if err != nil {
		return toolErrorFromErr(ctx, "list-workflows", err), nil
	}

	views, err := newWorkflowViews(workflows)
	if err != nil {
		return toolErrorFromErr(ctx, "list-workflows", err), nil
	}
	return jsonResult(map[string]any{
		"message":   fmt.Sprintf("Found %d workflows", len(views)),
		"workflows": views,
		"count":     len(views),
	})
}
