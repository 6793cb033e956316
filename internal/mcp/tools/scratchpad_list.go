package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ListScratchpadsTool implements the list-scratchpads MCP tool.
type ListScratchpadsTool struct {
	svc ScratchpadService
}

// NewListScratchpadsTool constructs a ListScratchpadsTool.
func NewListScratchpadsTool(svc ScratchpadService) (*ListScratchpadsTool, error) {
	if svc == nil {
		return nil, errServiceRequired
	}
	return &ListScratchpadsTool{svc: svc}, nil
}

// Definition returns the MCP metadata for list-scratchpads.
func (t *ListScratchpadsTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"list-scratchpads",
		mcp.WithDescription("List scratchpads of a workflow, most recently updated first."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow id.")),
		mcp.WithNumber("limit", mcp.Description("Page size, default 20, at most 100.")),
		mcp.WithNumber("offset", mcp.Description("Number of scratchpads to skip.")),
		mcp.WithBoolean("include_content", mcp.Description("Include full content of each scratchpad.")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// Handle executes the list-scratchpads tool logic.
func (t *ListScratchpadsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workflowID, err := req.RequireString("workflow_id")
	if err != nil {
		return validationErrorResult(err), nil
	}
	includeContent := readBoolArgWithDefault(req, "include_content", false)

	res, err := t.svc.ListScratchpads(ctx, workflowID,
		readIntArgWithDefault(req, "limit", 0),
		readIntArgWithDefault(req, "offset", 0))
	if err != nil {
		return toolErrorFromErr(ctx, "list-scratchpads", err), nil
	}

	views := make([]scratchpadView, 0, len(res.Scratchpads))
	for _, sp := range res.Scratchpads {
		view, err := newScratchpadView(sp, includeContent)
		if err != nil {
			return toolErrorFromErr(ctx, "list-scratchpads", err), nil
		}
		views = append(views, view)
	}
	return jsonResult(map[string]any{
		"message":     fmt.Sprintf("Showing %d of %d scratchpads", len(views), res.Total),
		"scratchpads": views,
		"total":       res.Total,
		"limit":       res.Limit,
		"offset":      res.Offset,
		"has_more":    res.HasMore,
	})
}
