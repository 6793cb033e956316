package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// UpdateWorkflowStatusTool implements the update-workflow-status MCP tool.
type UpdateWorkflowStatusTool struct {
	svc ScratchpadService
}

// NewUpdateWorkflowStatusTool constructs an UpdateWorkflowStatusTool.
func NewUpdateWorkflowStatusTool(svc ScratchpadService) (*UpdateWorkflowStatusTool, error) {
	if svc == nil {
		return nil, errServiceRequired
	}
	return &UpdateWorkflowStatusTool{svc: svc}, nil
}

// Definition returns the MCP metadata for update-workflow-status.
func (t *UpdateWorkflowStatusTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"update-workflow-status",
		mcp.WithDescription("Activate or deactivate a workflow. Inactive workflows accept no new scratchpads."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow id.")),
		mcp.WithBoolean("is_active", mcp.Required(), mcp.Description("New active state.")),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

// Handle executes the update-workflow-status tool logic.
func (t *UpdateWorkflowStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("workflow_id")
	if err != nil {
		return validationErrorResult(err), nil
	}
	isActive, err := req.RequireBool("is_active")
	if err != nil {
		return validationErrorResult(err), nil
	}

	wf, err := t.svc.UpdateWorkflowStatus(ctx, id, isActive)
	if err != nil {
		return toolErrorFromErr(ctx, "update-workflow-status", err), nil
	}
	view, err := newWorkflowView(wf)
	if err != nil {
		return toolErrorFromErr(ctx, "update-workflow-status", err), nil
	}

	state := "inactive"
	if wf.IsActive {
		state = "active"
	}
	return jsonResult(map[string]any{
		"message":  fmt.Sprintf("Workflow %q is now %s", wf.Name, state),
		"workflow": view,
	})
}

// UpdateWorkflowScopeTool implements the update-workflow-scope MCP tool.
type UpdateWorkflowScopeTool struct {
	svc ScratchpadService
}

// NewUpdateWorkflowScopeTool constructs an UpdateWorkflowScopeTool.
func NewUpdateWorkflowScopeTool(svc ScratchpadService) (*UpdateWorkflowScopeTool, error) {
	if svc == nil {
		return nil, errServiceRequired
	}
	return &UpdateWorkflowScopeTool{svc: svc}, nil
}

// Definition returns the MCP metadata for update-workflow-scope.
func (t *UpdateWorkflowScopeTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"update-workflow-scope",
		mcp.WithDescription("Set or clear the project scope of a workflow."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow id.")),
		mcp.WithString("project_scope", mcp.Description("New project scope; omit or leave empty to clear.")),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

// Handle executes the update-workflow-scope tool logic.
func (t *UpdateWorkflowScopeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("workflow_id")
	if err != nil {
		return validationErrorResult(err), nil
	}

	wf, err := t.svc.UpdateWorkflowScope(ctx, id, readOptionalStringArg(req, "project_scope"))
	if err != nil {
		return toolErrorFromErr(ctx, "update-workflow-scope", err), nil
	}
	view, err := newWorkflowView(wf)
	if err != nil {
		return toolErrorFromErr(ctx, "update-workflow-scope", err), nil
	}

	message := fmt.Sprintf("Workflow %q is now unscoped", wf.Name)
	if wf.ProjectScope != nil {
		message = fmt.Sprintf("Workflow %q moved to scope %q", wf.Name, *wf.ProjectScope)
	}
	return jsonResult(map[string]any{
		"message":  message,
		"workflow": view,
	})
}
