package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// GetLatestActiveWorkflowTool implements the get-latest-active-workflow MCP tool.
type GetLatestActiveWorkflowTool struct {
	svc ScratchpadService
}

// NewGetLatestActiveWorkflowTool constructs a GetLatestActiveWorkflowTool.
func NewGetLatestActiveWorkflowTool(svc ScratchpadService) (*GetLatestActiveWorkflowTool, error) {
	if svc == nil {
		return nil, errServiceRequired
	}
	return &GetLatestActiveWorkflowTool{svc: svc}, nil
}

// Definition returns the MCP metadata for get-latest-active-workflow.
func (t *GetLatestActiveWorkflowTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"get-latest-active-workflow",
		mcp.WithDescription("Get the most recently updated active workflow."),
		mcp.WithString("project_scope", mcp.Description("Only consider workflows with exactly this project scope.")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// Handle executes the get-latest-active-workflow tool logic.
func (t *GetLatestActiveWorkflowTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	wf, err := t.svc.GetLatestActiveWorkflow(ctx, readOptionalStringArg(req, "project_scope"))
	if err != nil {
		return toolErrorFromErr(ctx, "get-latest-active-workflow", err), nil
	}

	view, err := newWorkflowView(wf)
	if err != nil {
		return toolErrorFromErr(ctx, "get-latest-active-workflow", err), nil
	}
	return jsonResult(map[string]any{
		"message":  fmt.Sprintf("Latest active workflow is %q (%s)", wf.Name, wf.ID),
		"workflow": view,
	})
}
