package scratchpad

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func seedSearchFixture(t *testing.T, svc *Service) (Workflow, Scratchpad, Scratchpad) {
	t.Helper()
	ctx := context.Background()

	wf, err := svc.CreateWorkflow(ctx, "search", nil, nil)
	require.NoError(t, err)
	titleHit, err := svc.CreateScratchpad(ctx, wf.ID, "Golang tips", "misc notes about tooling")
	require.NoError(t, err)
	contentHit, err := svc.CreateScratchpad(ctx, wf.ID, "misc", "some golang notes")
	require.NoError(t, err)
	return wf, titleHit, contentHit
}

// TestSearchFTSTierRanksTitleFirst verifies Latin queries use the fts tier and weigh titles.
func TestSearchFTSTierRanksTitleFirst(t *testing.T) {
	svc := newTestService(t, testSettings(), nil, nil)
	requireIndex(t, svc)
	_, titleHit, contentHit := seedSearchFixture(t, svc)

	res, err := svc.SearchScratchpads(context.Background(), SearchParams{Query: "golang"})
	require.NoError(t, err)
	require.Equal(t, SearchTierFTS, res.Tier)
	require.Len(t, res.Hits, 2)
	require.Equal(t, titleHit.ID, res.Hits[0].Scratchpad.ID)
	require.Equal(t, contentHit.ID, res.Hits[1].Scratchpad.ID)
	require.Greater(t, res.Hits[0].Rank, res.Hits[1].Rank)
	require.Equal(t, "search", res.Hits[0].Workflow.Name)
}

// TestSearchEmptyIndexResultFallsThrough verifies an empty index result ends at the substring tier.
func TestSearchEmptyIndexResultFallsThrough(t *testing.T) {
	svc := newTestService(t, testSettings(), nil, nil)
	requireIndex(t, svc)
	seedSearchFixture(t, svc)

	res, err := svc.SearchScratchpads(context.Background(), SearchParams{Query: "nothing-here"})
	require.NoError(t, err)
	require.Equal(t, SearchTierSubstring, res.Tier)
	require.Empty(t, res.Hits)
}

// TestSearchMixedScriptWithGse verifies Latin text glued to CJK stays findable with the real segmenter.
func TestSearchMixedScriptWithGse(t *testing.T) {
	ctx := context.Background()
	seg, err := NewGseSegmenter()
	require.NoError(t, err)

	svc := newTestService(t, testSettings(), nil, seg)
	requireIndex(t, svc)
	wf, err := svc.CreateWorkflow(ctx, "mixed", nil, nil)
	require.NoError(t, err)
	pad, err := svc.CreateScratchpad(ctx, wf.ID, "React基礎", "使用React開發組件")
	require.NoError(t, err)

	res, err := svc.SearchScratchpads(ctx, SearchParams{Query: "React基礎"})
	require.NoError(t, err)
	require.Equal(t, SearchTierSegmented, res.Tier)
	require.Len(t, res.Hits, 1)
	require.Equal(t, pad.ID, res.Hits[0].Scratchpad.ID)

	// a fragment of a longer mixed run is not an index token
	res, err = svc.SearchScratchpads(ctx, SearchParams{Query: "React開發"})
	require.NoError(t, err)
	require.Equal(t, SearchTierSubstring, res.Tier)
	require.Len(t, res.Hits, 1)
	require.Equal(t, pad.ID, res.Hits[0].Scratchpad.ID)
}

func TestSegmentedConjunctionKeepsMixedRuns(t *testing.T) {
	seg := fieldsSegmenter{words: []string{"組件", "設計"}}
	require.Equal(t, `"react基礎"`, segmentedConjunction(seg, "React基礎"))
	require.Equal(t, `"react" AND "組 件" AND "設 計"`, segmentedConjunction(seg, "React, 組件設計"))
	require.Empty(t, segmentedConjunction(seg, "!?"))
}

// TestSearchForcedSubstring verifies the caller can bypass the index.
func TestSearchForcedSubstring(t *testing.T) {
	svc := newTestService(t, testSettings(), nil, nil)
	_, titleHit, _ := seedSearchFixture(t, svc)

	res, err := svc.SearchScratchpads(context.Background(), SearchParams{Query: "GOLANG", ForceSubstring: true})
	require.NoError(t, err)
	require.Equal(t, SearchTierSubstring, res.Tier)
	require.Len(t, res.Hits, 2)
	require.Equal(t, titleHit.ID, res.Hits[0].Scratchpad.ID)
	require.Equal(t, float64(3), res.Hits[0].Rank)
	require.Equal(t, float64(1), res.Hits[1].Rank)
}

// TestSearchDegradesWithoutIndex verifies an unavailable index falls through to substring matching.
func TestSearchDegradesWithoutIndex(t *testing.T) {
	svc := newTestService(t, testSettings(), nil, nil)
	seedSearchFixture(t, svc)
	svc.index.available = false

	res, err := svc.SearchScratchpads(context.Background(), SearchParams{Query: "golang"})
	require.NoError(t, err)
	require.Equal(t, SearchTierSubstring, res.Tier)
	require.Len(t, res.Hits, 2)

	_, err = svc.Index().Rebuild(context.Background())
	require.True(t, IsCode(err, ErrCodeIndexUnavailable))
}

// TestSearchDegradedIndexReportsWarning verifies a degraded index is surfaced as a warning.
func TestSearchDegradedIndexReportsWarning(t *testing.T) {
	svc := newTestService(t, testSettings(), nil, nil)
	seedSearchFixture(t, svc)
	svc.index.markDegraded("index rebuild failed: test")

	res, err := svc.SearchScratchpads(context.Background(), SearchParams{Query: "golang"})
	require.NoError(t, err)
	require.Equal(t, SearchTierSubstring, res.Tier)
	require.Contains(t, res.Warnings, "index rebuild failed: test")
}

// TestSearchCJKTiers verifies segmented and simplified tiers for CJK queries.
func TestSearchCJKTiers(t *testing.T) {
	ctx := context.Background()
	segmenter := fieldsSegmenter{words: []string{"組件", "設計"}}

	svc := newTestService(t, testSettings(), nil, segmenter)
	requireIndex(t, svc)
	wf, err := svc.CreateWorkflow(ctx, "cjk", nil, nil)
	require.NoError(t, err)
	hit, err := svc.CreateScratchpad(ctx, wf.ID, "筆記", "組件設計模式")
	require.NoError(t, err)
	_, err = svc.CreateScratchpad(ctx, wf.ID, "其他", "件組無關")
	require.NoError(t, err)

	res, err := svc.SearchScratchpads(ctx, SearchParams{Query: "組件設計"})
	require.NoError(t, err)
	require.Equal(t, SearchTierSegmented, res.Tier)
	require.Len(t, res.Hits, 1)
	require.Equal(t, hit.ID, res.Hits[0].Scratchpad.ID)

	plain := newTestService(t, testSettings(), nil, nil)
	requireIndex(t, plain)
	wf, err = plain.CreateWorkflow(ctx, "cjk", nil, nil)
	require.NoError(t, err)
	hit, err = plain.CreateScratchpad(ctx, wf.ID, "筆記", "組件設計模式")
	require.NoError(t, err)

	res, err = plain.SearchScratchpads(ctx, SearchParams{Query: "組件"})
	require.NoError(t, err)
	require.Equal(t, SearchTierSimplified, res.Tier)
	require.Len(t, res.Hits, 1)
	require.Equal(t, hit.ID, res.Hits[0].Scratchpad.ID)
}

// TestSearchValidation verifies query, limit and workflow filter handling.
func TestSearchValidation(t *testing.T) {
	svc := newTestService(t, testSettings(), nil, nil)
	ctx := context.Background()
	wf, _, _ := seedSearchFixture(t, svc)
	other, err := svc.CreateWorkflow(ctx, "other", nil, nil)
	require.NoError(t, err)
	_, err = svc.CreateScratchpad(ctx, other.ID, "golang elsewhere", "")
	require.NoError(t, err)

	_, err = svc.SearchScratchpads(ctx, SearchParams{Query: "   "})
	require.True(t, IsCode(err, ErrCodeValidation))

	_, err = svc.SearchScratchpads(ctx, SearchParams{Query: "golang", WorkflowID: "missing"})
	require.True(t, IsCode(err, ErrCodeNotFound))

	res, err := svc.SearchScratchpads(ctx, SearchParams{Query: "golang", WorkflowID: wf.ID})
	require.NoError(t, err)
	require.Len(t, res.Hits, 2)
	for _, hit := range res.Hits {
		require.Equal(t, wf.ID, hit.Workflow.ID)
	}

	res, err = svc.SearchScratchpads(ctx, SearchParams{Query: "golang", Limit: 1})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
}

// TestSearchSubstringEscapesWildcards verifies LIKE wildcards in queries match literally.
func TestSearchSubstringEscapesWildcards(t *testing.T) {
	svc := newTestService(t, testSettings(), nil, nil)
	ctx := context.Background()
	wf, err := svc.CreateWorkflow(ctx, "wf", nil, nil)
	require.NoError(t, err)
	literal, err := svc.CreateScratchpad(ctx, wf.ID, "rate", "coverage is 100% now")
	require.NoError(t, err)
	_, err = svc.CreateScratchpad(ctx, wf.ID, "other", "coverage is 1000 now")
	require.NoError(t, err)
	_, err = svc.CreateScratchpad(ctx, wf.ID, "under", "snake_case")
	require.NoError(t, err)
	_, err = svc.CreateScratchpad(ctx, wf.ID, "wild", "makeXcase")
	require.NoError(t, err)

	res, err := svc.SearchScratchpads(ctx, SearchParams{Query: "100%", ForceSubstring: true})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	require.Equal(t, literal.ID, res.Hits[0].Scratchpad.ID)

	res, err = svc.SearchScratchpads(ctx, SearchParams{Query: "e_c", ForceSubstring: true})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	require.Equal(t, "under", res.Hits[0].Scratchpad.Title)
}

// TestSearchSnippet verifies hits carry a window around the match.
func TestSearchSnippet(t *testing.T) {
	svc := newTestService(t, testSettings(), nil, nil)
	ctx := context.Background()
	wf, err := svc.CreateWorkflow(ctx, "wf", nil, nil)
	require.NoError(t, err)
	content := strings.Repeat("x", 300) + " needle " + strings.Repeat("y", 300)
	_, err = svc.CreateScratchpad(ctx, wf.ID, "long", content)
	require.NoError(t, err)

	res, err := svc.SearchScratchpads(ctx, SearchParams{Query: "needle", ForceSubstring: true})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	snippet := res.Hits[0].Snippet
	require.Contains(t, snippet, "needle")
	require.True(t, strings.HasPrefix(snippet, "..."))
	require.True(t, strings.HasSuffix(snippet, "..."))
	require.Equal(t, 150+6, len([]rune(snippet)))
}
