package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// CreateScratchpadTool implements the create-scratchpad MCP tool.
type CreateScratchpadTool struct {
	svc ScratchpadService
}

// NewCreateScratchpadTool constructs a CreateScratchpadTool.
func NewCreateScratchpadTool(svc ScratchpadService) (*CreateScratchpadTool, error) {
	if svc == nil {
		return nil, errServiceRequired
	}
	return &CreateScratchpadTool{svc: svc}, nil
}

// Definition returns the MCP metadata for create-scratchpad.
func (t *CreateScratchpadTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"create-scratchpad",
		mcp.WithDescription("Create a scratchpad in an active workflow. Content is limited to 1 MiB."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Owning workflow id.")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Scratchpad title.")),
		mcp.WithString("content", mcp.Description("Initial content; may be empty.")),
		mcp.WithBoolean("include_content", mcp.Description("Echo the stored content in the response.")),
		mcp.WithIdempotentHintAnnotation(false),
	)
}

// Handle executes the create-scratchpad tool logic.
func (t *CreateScratchpadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workflowID, err := req.RequireString("workflow_id")
	if err != nil {
		return validationErrorResult(err), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return validationErrorResult(err), nil
	}

	sp, err := t.svc.CreateScratchpad(ctx, workflowID, title, readStringArg(req, "content"))
	if err != nil {
		return toolErrorFromErr(ctx, "create-scratchpad", err), nil
	}
	view, err := newScratchpadView(sp, readBoolArgWithDefault(req, "include_content", false))
	if err != nil {
		return toolErrorFromErr(ctx, "create-scratchpad", err), nil
	}
	return jsonResult(map[string]any{
		"message":    fmt.Sprintf("Created scratchpad %q (%d bytes)", sp.Title, sp.SizeBytes),
		"scratchpad": view,
	})
}
