package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// CreateWorkflowTool implements the create-workflow MCP tool.
type CreateWorkflowTool struct {
	svc ScratchpadService
}

// NewCreateWorkflowTool constructs a CreateWorkflowTool.
func NewCreateWorkflowTool(svc ScratchpadService) (*CreateWorkflowTool, error) {
	if svc == nil {
		return nil, errServiceRequired
	}
	return &CreateWorkflowTool{svc: svc}, nil
}

// Definition returns the MCP metadata for create-workflow.
func (t *CreateWorkflowTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"create-workflow",
		mcp.WithDescription("Create a workflow that groups related scratchpads. New workflows are active."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Workflow name.")),
		mcp.WithString("description", mcp.Description("Optional description.")),
		mcp.WithString("project_scope", mcp.Description("Optional project key; scoped lookups only see workflows with the same key.")),
		mcp.WithIdempotentHintAnnotation(false),
	)
}

// Handle executes the create-workflow tool logic.
func (t *CreateWorkflowTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return validationErrorResult(err), nil
	}

	wf, err := t.svc.CreateWorkflow(ctx, name,
		readOptionalStringArg(req, "description"),
		readOptionalStringArg(req, "project_scope"))
	if err != nil {
		return toolErrorFromErr(ctx, "create-workflow", err), nil
	}

	view, err := newWorkflowView(wf)
	if err != nil {
		return toolErrorFromErr(ctx, "create-workflow", err), nil
	}
	return jsonResult(map[string]any{
		"message":  fmt.Sprintf("Created workflow %q (%s)", wf.Name, wf.ID),
		"workflow": view,
	})
}
