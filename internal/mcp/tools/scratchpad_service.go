package tools

import (
	"context"

	"github.com/Laisky/scratchpad-mcp/internal/mcp/scratchpad"
)

// ScratchpadService exposes workflow and scratchpad operations for MCP tools.
type ScratchpadService interface {
	CreateWorkflow(ctx context.Context, name string, description, projectScope *string) (scratchpad.Workflow, error)
	GetWorkflow(ctx context.Context, id string) (scratchpad.Workflow, error)
	ListWorkflows(ctx context.Context, projectScope *string) ([]scratchpad.Workflow, error)
	GetLatestActiveWorkflow(ctx context.Context, projectScope *string) (scratchpad.Workflow, error)
	UpdateWorkflowStatus(ctx context.Context, id string, isActive bool) (scratchpad.Workflow, error)
	UpdateWorkflowScope(ctx context.Context, id string, projectScope *string) (scratchpad.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) (int64, error)

	CreateScratchpad(ctx context.Context, workflowID, title, content string) (scratchpad.Scratchpad, error)
	GetScratchpad(ctx context.Context, id string) (scratchpad.Scratchpad, error)
	AppendScratchpad(ctx context.Context, id, content string) (scratchpad.Scratchpad, error)
	EditScratchpad(ctx context.Context, params scratchpad.EditParams) (scratchpad.EditResult, error)
	ListScratchpads(ctx context.Context, workflowID string, limit, offset int) (scratchpad.ListScratchpadsResult, error)
	DeleteScratchpad(ctx context.Context, id string) error

	SearchScratchpads(ctx context.Context, params scratchpad.SearchParams) (scratchpad.SearchResult, error)
	SearchWorkflows(ctx context.Context, params scratchpad.WorkflowSearchParams) (scratchpad.WorkflowSearchResult, error)
}
