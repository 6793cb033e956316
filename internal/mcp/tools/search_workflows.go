package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/scratchpad-mcp/internal/mcp/scratchpad"
)

// SearchWorkflowsTool implements the search-workflows MCP tool.
type SearchWorkflowsTool struct {
	svc ScratchpadService
}

// NewSearchWorkflowsTool constructs a SearchWorkflowsTool.
func NewSearchWorkflowsTool(svc ScratchpadService) (*SearchWorkflowsTool, error) {
	if svc == nil {
		return nil, errServiceRequired
	}
	return &SearchWorkflowsTool{svc: svc}, nil
}

// Definition returns the MCP metadata for search-workflows.
func (t *SearchWorkflowsTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"search-workflows",
		mcp.WithDescription("Find workflows whose name, description or scratchpads match the query. "+
			"Results are scored and returned five per page."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text; may mix English and Chinese.")),
		mcp.WithString("project_scope", mcp.Description("Only search workflows with exactly this project scope.")),
		mcp.WithNumber("page", mcp.Description("1-based page number, default 1.")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

type workflowMatchView struct {
	Workflow  workflowView `json:"workflow"`
	Score     int          `json:"score"`
	MatchedBy string       `json:"matched_by"`
}

// Handle executes the search-workflows tool logic.
func (t *SearchWorkflowsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return validationErrorResult(err), nil
	}

	res, err := t.svc.SearchWorkflows(ctx, scratchpad.WorkflowSearchParams{
		Query:        query,
		ProjectScope: readOptionalStringArg(req, "project_scope"),
		Page:         readIntArgWithDefault(req, "page", 1),
	})
	if err != nil {
		return toolErrorFromErr(ctx, "search-workflows", err), nil
	}

	matches := make([]workflowMatchView, 0, len(res.Matches))
	for _, m := range res.Matches {
		view, err := newWorkflowView(m.Workflow)
		if err != nil {
			return toolErrorFromErr(ctx, "search-workflows", err), nil
		}
		matches = append(matches, workflowMatchView{Workflow: view, Score: m.Score, MatchedBy: m.MatchedBy})
	}

	latin := res.LatinTokens
	if latin == nil {
		latin = []string{}
	}
	payload := map[string]any{
		"message":       fmt.Sprintf("Page %d of %d, %d matching workflows", res.Page, res.TotalPages, res.TotalMatches),
		"workflows":     matches,
		"page":          res.Page,
		"page_size":     res.PageSize,
		"total_matches": res.TotalMatches,
		"total_pages":   res.TotalPages,
		"latin_tokens":  latin,
		"residual":      res.Residual,
	}
	if len(res.Warnings) > 0 {
		payload["warnings"] = res.Warnings
	}
	return jsonResult(payload)
}
