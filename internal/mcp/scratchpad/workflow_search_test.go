package scratchpad

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// seedReactWorkflow builds the mixed-script fixture used by scoring tests.
func seedReactWorkflow(t *testing.T, svc *Service, scope *string) Workflow {
	t.Helper()
	ctx := context.Background()

	wf, err := svc.CreateWorkflow(ctx, "React專案", strPtr("前端開發"), scope)
	require.NoError(t, err)
	_, err = svc.CreateScratchpad(ctx, wf.ID, "React基礎", "組件設計模式")
	require.NoError(t, err)
	_, err = svc.CreateScratchpad(ctx, wf.ID, "狀態管理", "React hooks")
	require.NoError(t, err)
	return wf
}

// TestSplitWorkflowQuery verifies Latin extraction and residual collapsing.
func TestSplitWorkflowQuery(t *testing.T) {
	split := splitWorkflowQuery("React 組件")
	require.Equal(t, []string{"react"}, split.latin)
	require.Equal(t, "組件", split.residual)

	split = splitWorkflowQuery("Go go GO 測試   資料")
	require.Equal(t, []string{"go"}, split.latin)
	require.Equal(t, "測試 資料", split.residual)

	split = splitWorkflowQuery("hooks")
	require.Equal(t, []string{"hooks"}, split.latin)
	require.Empty(t, split.residual)
}

// TestSearchWorkflowsScoringExample verifies the weighted total across fields and scratchpads.
func TestSearchWorkflowsScoringExample(t *testing.T) {
	svc := newTestService(t, testSettings(), nil, nil)
	wf := seedReactWorkflow(t, svc, nil)

	res, err := svc.SearchWorkflows(context.Background(), WorkflowSearchParams{Query: "React 組件", Page: 1})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	require.Equal(t, wf.ID, res.Matches[0].Workflow.ID)
	require.Equal(t, 7, res.Matches[0].Score)
	require.Equal(t, matchedByLatin, res.Matches[0].MatchedBy)
	require.Equal(t, []string{"react"}, res.LatinTokens)
	require.Equal(t, "組件", res.Residual)
	require.Equal(t, 1, res.TotalMatches)
	require.Equal(t, 1, res.TotalPages)
}

// TestSearchWorkflowsScoringWithoutIndex verifies substring candidates score identically.
func TestSearchWorkflowsScoringWithoutIndex(t *testing.T) {
	svc := newTestService(t, testSettings(), nil, nil)
	seedReactWorkflow(t, svc, nil)
	svc.index.available = false

	res, err := svc.SearchWorkflows(context.Background(), WorkflowSearchParams{Query: "React 組件", Page: 1})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	require.Equal(t, 7, res.Matches[0].Score)
}

// TestSearchWorkflowsResidualOnly verifies CJK-only queries are matched through scratchpads.
func TestSearchWorkflowsResidualOnly(t *testing.T) {
	svc := newTestService(t, testSettings(), nil, nil)
	ctx := context.Background()
	seedReactWorkflow(t, svc, nil)

	other, err := svc.CreateWorkflow(ctx, "plain", nil, nil)
	require.NoError(t, err)
	_, err = svc.CreateScratchpad(ctx, other.ID, "組件", "組件 組件")
	require.NoError(t, err)

	res, err := svc.SearchWorkflows(ctx, WorkflowSearchParams{Query: "組件", Page: 1})
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)
	require.Equal(t, other.ID, res.Matches[0].Workflow.ID)
	require.Equal(t, 5, res.Matches[0].Score)
	require.Equal(t, matchedByResidual, res.Matches[0].MatchedBy)
	require.Equal(t, 1, res.Matches[1].Score)
}

// TestSearchWorkflowsDropsZeroScore verifies substring-only candidates without token hits are dropped.
func TestSearchWorkflowsDropsZeroScore(t *testing.T) {
	svc := newTestService(t, testSettings(), nil, nil)
	ctx := context.Background()
	svc.index.available = false

	wf, err := svc.CreateWorkflow(ctx, "unrelated", nil, nil)
	require.NoError(t, err)
	_, err = svc.CreateScratchpad(ctx, wf.ID, "React基礎", "")
	require.NoError(t, err)

	res, err := svc.SearchWorkflows(ctx, WorkflowSearchParams{Query: "react", Page: 1})
	require.NoError(t, err)
	require.Empty(t, res.Matches)
	require.Zero(t, res.TotalMatches)
}

// TestSearchWorkflowsScope verifies the scope filter applies before ranking.
func TestSearchWorkflowsScope(t *testing.T) {
	svc := newTestService(t, testSettings(), nil, nil)
	ctx := context.Background()
	inScope := seedReactWorkflow(t, svc, strPtr("web"))
	seedReactWorkflow(t, svc, strPtr("mobile"))

	res, err := svc.SearchWorkflows(ctx, WorkflowSearchParams{Query: "React", ProjectScope: strPtr("web"), Page: 1})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	require.Equal(t, inScope.ID, res.Matches[0].Workflow.ID)

	res, err = svc.SearchWorkflows(ctx, WorkflowSearchParams{Query: "React", Page: 1})
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)
}

// TestSearchWorkflowsPagination verifies fixed page size, ordering and bounds.
func TestSearchWorkflowsPagination(t *testing.T) {
	clock := newTestClock()
	svc := newTestService(t, testSettings(), clock, nil)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 7; i++ {
		clock.Advance(time.Second)
		wf, err := svc.CreateWorkflow(ctx, fmt.Sprintf("alpha %d", i), nil, nil)
		require.NoError(t, err)
		ids = append(ids, wf.ID)
	}

	first, err := svc.SearchWorkflows(ctx, WorkflowSearchParams{Query: "alpha", Page: 1})
	require.NoError(t, err)
	require.Len(t, first.Matches, WorkflowPageSize)
	require.Equal(t, 7, first.TotalMatches)
	require.Equal(t, 2, first.TotalPages)
	require.Equal(t, ids[6], first.Matches[0].Workflow.ID)

	second, err := svc.SearchWorkflows(ctx, WorkflowSearchParams{Query: "alpha", Page: 2})
	require.NoError(t, err)
	require.Len(t, second.Matches, 2)
	require.Equal(t, ids[0], second.Matches[1].Workflow.ID)

	beyond, err := svc.SearchWorkflows(ctx, WorkflowSearchParams{Query: "alpha", Page: 3})
	require.NoError(t, err)
	require.Empty(t, beyond.Matches)

	_, err = svc.SearchWorkflows(ctx, WorkflowSearchParams{Query: "alpha", Page: 0})
	require.True(t, IsCode(err, ErrCodeValidation))
	_, err = svc.SearchWorkflows(ctx, WorkflowSearchParams{Query: " !? ", Page: 1})
	require.True(t, IsCode(err, ErrCodeValidation))
}

// TestSearchWorkflowsResidualIgnoresPunctuation verifies the residual matches workflow fields by token.
func TestSearchWorkflowsResidualIgnoresPunctuation(t *testing.T) {
	svc := newTestService(t, testSettings(), nil, nil)
	ctx := context.Background()
	svc.index.available = false

	wf, err := svc.CreateWorkflow(ctx, "組、件庫", strPtr("組件 清單"), nil)
	require.NoError(t, err)

	res, err := svc.SearchWorkflows(ctx, WorkflowSearchParams{Query: "React, 組件", Page: 1})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	require.Equal(t, wf.ID, res.Matches[0].Workflow.ID)
	require.Equal(t, 5+3, res.Matches[0].Score)
	require.Equal(t, matchedByResidual, res.Matches[0].MatchedBy)
}

func TestWorkflowFieldScore(t *testing.T) {
	wf := Workflow{Name: "組、件 組件", Description: strPtr("react組件")}

	residual := searchTerm{text: "組件", tokens: indexTokens("組件"), byTokens: true}
	require.Equal(t, 2*weightWorkflowName, workflowFieldScore(wf, residual))

	latin := searchTerm{text: "react", tokens: []string{"react"}}
	require.Equal(t, weightWorkflowDescription, workflowFieldScore(wf, latin))
}
