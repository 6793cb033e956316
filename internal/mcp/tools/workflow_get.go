package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// GetWorkflowTool implements the get-workflow MCP tool.
type GetWorkflowTool struct {
	svc ScratchpadService
}

// NewGetWorkflowTool constructs a GetWorkflowTool.
func NewGetWorkflowTool(svc ScratchpadService) (*GetWorkflowTool, error) {
	if svc == nil {
		return nil, errServiceRequired
	}
	return &GetWorkflowTool{svc: svc}, nil
}

// Definition returns the MCP metadata for get-workflow.
func (t *GetWorkflowTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"get-workflow",
		mcp.WithDescription("Get one workflow by id."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow id.")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// Handle executes the get-workflow tool logic.
func (t *GetWorkflowTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("workflow_id")
	if err != nil {
		return validationErrorResult(err), nil
	}

	wf, err := t.svc.GetWorkflow(ctx, id)
	if err != nil {
		return toolErrorFromErr(ctx, "get-workflow", err), nil
	}
	view, err := newWorkflowView(wf)
	if err != nil {
		return toolErrorFromErr(ctx, "get-workflow", err), nil
	}
	return jsonResult(map[string]any{
		"message":  fmt.Sprintf("Workflow %q has %d scratchpads", wf.Name, wf.ScratchpadCount),
		"workflow": view,
	})
}
