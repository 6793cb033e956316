package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	gormSqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"github.com/Laisky/scratchpad-mcp/internal/mcp/scratchpad"
	"github.com/Laisky/scratchpad-mcp/library/log"
)

// newE2EScratchpadService builds a real service over an in-memory database.
func newE2EScratchpadService(t *testing.T) *scratchpad.Service {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(gormSqlite.New(gormSqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	svc, err := scratchpad.NewService(context.Background(), db, scratchpad.Settings{}, nil, log.Logger.Named("tools_e2e"), clock)
	require.NoError(t, err)
	return svc
}

// callTool runs a tool and decodes its payload, failing on tool errors.
func callTool(t *testing.T, tool Tool, args map[string]any) map[string]any {
	t.Helper()

	result, err := tool.Handle(context.Background(), newToolReq(args))
	require.NoError(t, err)
	payload := decodeToolPayload(t, result)
	require.False(t, result.IsError, "tool %s failed: %v", tool.Definition().Name, payload)
	return payload
}

// TestScratchpadToolsEndToEndFlow drives every workflow and scratchpad tool against a real store.
func TestScratchpadToolsEndToEndFlow(t *testing.T) {
	svc := newE2EScratchpadService(t)
	mustTool := func(tool Tool, err error) Tool {
		require.NoError(t, err)
		return tool
	}

	createWF := mustTool(NewCreateWorkflowTool(svc))
	getWF := mustTool(NewGetWorkflowTool(svc))
	listWF := mustTool(NewListWorkflowsTool(svc))
	latestWF := mustTool(NewGetLatestActiveWorkflowTool(svc))
	statusWF := mustTool(NewUpdateWorkflowStatusTool(svc))
	scopeWF := mustTool(NewUpdateWorkflowScopeTool(svc))
	deleteWF := mustTool(NewDeleteWorkflowTool(svc))
	createSP := mustTool(NewCreateScratchpadTool(svc))
	getSP := mustTool(NewGetScratchpadTool(svc))
	appendSP := mustTool(NewAppendScratchpadTool(svc))
	editSP := mustTool(NewEditScratchpadTool(svc))
	listSP := mustTool(NewListScratchpadsTool(svc))
	deleteSP := mustTool(NewDeleteScratchpadTool(svc))
	searchSP := mustTool(NewSearchScratchpadsTool(svc))
	searchWF := mustTool(NewSearchWorkflowsTool(svc))

	created := callTool(t, createWF, map[string]any{
		"name":          "Release deployment",
		"description":   "rollout checklist",
		"project_scope": "infra",
	})
	wf := created["workflow"].(map[string]any)
	wfID := wf["id"].(string)
	require.NotEmpty(t, wfID)
	require.Equal(t, "infra", wf["project_scope"])
	require.Equal(t, true, wf["is_active"])
	_, err := time.Parse(time.RFC3339, wf["created_at"].(string))
	require.NoError(t, err)

	spPayload := callTool(t, createSP, map[string]any{
		"workflow_id": wfID,
		"title":       "Plan",
		"content":     "# Steps\n1. build\n\n# Risks\nnone",
	})
	sp := spPayload["scratchpad"].(map[string]any)
	spID := sp["id"].(string)
	_, hasContent := sp["content"]
	require.False(t, hasContent)

	appended := callTool(t, appendSP, map[string]any{"id": spID, "content": "\nrollback ready", "include_content": true})
	require.Equal(t, len("\nrollback ready"), asInt(t, appended["appended_bytes"]))
	require.Equal(t, "# Steps\n1. build\n\n# Risks\nnone\nrollback ready", appended["scratchpad"].(map[string]any)["content"])

	edited := callTool(t, editSP, map[string]any{
		"id":             spID,
		"mode":           "append_section",
		"section_marker": "# Steps",
		"content":        "2. deploy",
	})
	require.Equal(t, false, edited["section_created"])
	require.Equal(t, 1, asInt(t, edited["lines_affected"]))

	got := callTool(t, getSP, map[string]any{"id": spID})
	content := got["scratchpad"].(map[string]any)["content"].(string)
	require.Equal(t, "# Steps\n1. build\n2. deploy\n\n# Risks\nnone\nrollback ready", content)
	require.Equal(t, len(content), asInt(t, got["scratchpad"].(map[string]any)["size_bytes"]))

	callTool(t, createSP, map[string]any{"workflow_id": wfID, "title": "Scratch"})
	listed := callTool(t, listSP, map[string]any{"workflow_id": wfID, "limit": float64(1)})
	require.Equal(t, 2, asInt(t, listed["total"]))
	require.Equal(t, true, listed["has_more"])
	require.Len(t, listed["scratchpads"], 1)

	found := callTool(t, searchSP, map[string]any{"query": "deploy", "workflow_id": wfID})
	require.Equal(t, 1, asInt(t, found["count"]))
	hit := found["results"].([]any)[0].(map[string]any)
	require.Equal(t, spID, hit["scratchpad"].(map[string]any)["id"])
	require.Equal(t, "Release deployment", hit["workflow"].(map[string]any)["name"])
	require.Contains(t, hit["snippet"], "deploy")

	substring := callTool(t, searchSP, map[string]any{"query": "rollback", "useIndex": false})
	require.Equal(t, "substring", substring["tier"])
	require.Equal(t, 1, asInt(t, substring["count"]))

	wfHits := callTool(t, searchWF, map[string]any{"query": "rollout", "project_scope": "infra"})
	require.Equal(t, 1, asInt(t, wfHits["total_matches"]))
	require.Equal(t, 5, asInt(t, wfHits["page_size"]))
	require.Equal(t, []any{"rollout"}, wfHits["latin_tokens"])

	latest := callTool(t, latestWF, map[string]any{"project_scope": "infra"})
	require.Equal(t, wfID, latest["workflow"].(map[string]any)["id"])

	callTool(t, statusWF, map[string]any{"workflow_id": wfID, "is_active": false})
	result, err := latestWF.Handle(context.Background(), newToolReq(map[string]any{"project_scope": "infra"}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Equal(t, "NOT_FOUND", decodeToolPayload(t, result)["code"])

	result, err = createSP.Handle(context.Background(), newToolReq(map[string]any{"workflow_id": wfID, "title": "late"}))
	require.NoError(t, err)
	require.True(t, result.IsError)

	rescoped := callTool(t, scopeWF, map[string]any{"workflow_id": wfID})
	require.Nil(t, rescoped["workflow"].(map[string]any)["project_scope"])

	listedWF := callTool(t, listWF, map[string]any{})
	require.Equal(t, 1, asInt(t, listedWF["count"]))

	callTool(t, deleteSP, map[string]any{"id": spID})
	fetched := callTool(t, getWF, map[string]any{"workflow_id": wfID})
	require.Equal(t, 1, asInt(t, fetched["workflow"].(map[string]any)["scratchpad_count"]))

	removed := callTool(t, deleteWF, map[string]any{"workflow_id": wfID})
	require.Equal(t, 1, asInt(t, removed["deleted_scratchpads"]))

	result, err = getWF.Handle(context.Background(), newToolReq(map[string]any{"workflow_id": wfID}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestSizeLimitSurfacesAsToolError(t *testing.T) {
	svc := newE2EScratchpadService(t)
	createWF, err := NewCreateWorkflowTool(svc)
	require.NoError(t, err)
	createSP, err := NewCreateScratchpadTool(svc)
	require.NoError(t, err)

	wfID := callTool(t, createWF, map[string]any{"name": "big"})["workflow"].(map[string]any)["id"].(string)
	result, err := createSP.Handle(context.Background(), newToolReq(map[string]any{
		"workflow_id": wfID,
		"title":       "huge",
		"content":     strings.Repeat("x", int(scratchpad.DefaultMaxContentBytes)+1),
	}))
	require.NoError(t, err)
	require.True(t, result.IsError)
	payload := decodeToolPayload(t, result)
	require.Equal(t, "SIZE_LIMIT_EXCEEDED", payload["code"])
	require.NotNil(t, payload["details"])
}
