package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/scratchpad-mcp/internal/mcp/scratchpad"
)

// SearchScratchpadsTool implements the search-scratchpads MCP tool.
type SearchScratchpadsTool struct {
	svc ScratchpadService
}

// NewSearchScratchpadsTool constructs a SearchScratchpadsTool.
func NewSearchScratchpadsTool(svc ScratchpadService) (*SearchScratchpadsTool, error) {
	if svc == nil {
		return nil, errServiceRequired
	}
	return &SearchScratchpadsTool{svc: svc}, nil
}

// Definition returns the MCP metadata for search-scratchpads.
func (t *SearchScratchpadsTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"search-scratchpads",
		mcp.WithDescription("Full-text search over scratchpad titles and content. "+
			"Chinese text is word-segmented; falls back to substring search when the index cannot serve the query."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text.")),
		mcp.WithString("workflow_id", mcp.Description("Restrict the search to one workflow.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results, default 10, at most 20.")),
		mcp.WithBoolean("useIndex", mcp.Description("Set false to skip the full-text index and use substring search.")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

type searchHitView struct {
	Scratchpad scratchpadView    `json:"scratchpad"`
	Workflow   map[string]string `json:"workflow"`
	Rank       float64           `json:"rank"`
	Snippet    string            `json:"snippet"`
}

// Handle executes the search-scratchpads tool logic.
func (t *SearchScratchpadsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return validationErrorResult(err), nil
	}

	res, err := t.svc.SearchScratchpads(ctx, scratchpad.SearchParams{
		Query:          query,
		WorkflowID:     readStringArg(req, "workflow_id"),
		Limit:          readIntArgWithDefault(req, "limit", 0),
		ForceSubstring: !readBoolArgWithDefault(req, "useIndex", true),
	})
	if err != nil {
		return toolErrorFromErr(ctx, "search-scratchpads", err), nil
	}

	hits := make([]searchHitView, 0, len(res.Hits))
	for _, hit := range res.Hits {
		view, err := newScratchpadView(hit.Scratchpad, false)
		if err != nil {
			return toolErrorFromErr(ctx, "search-scratchpads", err), nil
		}
		hits = append(hits, searchHitView{
			Scratchpad: view,
			Workflow:   map[string]string{"id": hit.Workflow.ID, "name": hit.Workflow.Name},
			Rank:       hit.Rank,
			Snippet:    hit.Snippet,
		})
	}

	payload := map[string]any{
		"message": fmt.Sprintf("Found %d scratchpads via %s search", len(hits), res.Tier),
		"results": hits,
		"count":   len(hits),
		"tier":    string(res.Tier),
	}
	if len(res.Warnings) > 0 {
		payload["warnings"] = res.Warnings
	}
	return jsonResult(payload)
}
