package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/scratchpad-mcp/internal/mcp/scratchpad"
)

type fakeBackend struct {
	workflows   []scratchpad.Workflow
	scratchpads map[string][]scratchpad.Scratchpad
	searched    []string
}

func (f *fakeBackend) ListWorkflows(context.Context, *string) ([]scratchpad.Workflow, error) {
	return f.workflows, nil
}

func (f *fakeBackend) ListScratchpads(_ context.Context, workflowID string, limit, offset int) (scratchpad.ListScratchpadsResult, error) {
	pads := f.scratchpads[workflowID]
	return scratchpad.ListScratchpadsResult{Scratchpads: pads, Total: int64(len(pads)), Limit: limit, Offset: offset}, nil
}

func (f *fakeBackend) GetScratchpad(_ context.Context, id string) (scratchpad.Scratchpad, error) {
	for _, pads := range f.scratchpads {
		for _, sp := range pads {
			if sp.ID == id {
				return sp, nil
			}
		}
	}
	return scratchpad.Scratchpad{}, scratchpad.NewError(scratchpad.ErrCodeNotFound, "scratchpad not found", false)
}

func (f *fakeBackend) SearchScratchpads(_ context.Context, params scratchpad.SearchParams) (scratchpad.SearchResult, error) {
	f.searched = append(f.searched, params.Query)
	var hits []scratchpad.SearchHit
	for _, pads := range f.scratchpads {
		for _, sp := range pads {
			hits = append(hits, scratchpad.SearchHit{Scratchpad: sp, Snippet: "…" + params.Query + "…"})
		}
	}
	return scratchpad.SearchResult{Hits: hits, Tier: scratchpad.SearchTierFTS}, nil
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		workflows: []scratchpad.Workflow{{ID: "wf-1", Name: "release", IsActive: true, ScratchpadCount: 1}},
		scratchpads: map[string][]scratchpad.Scratchpad{
			"wf-1": {{ID: "sp-1", WorkflowID: "wf-1", Title: "plan", Content: "deploy on friday", SizeBytes: 16}},
		},
	}
}

// press feeds msg to the model without running the returned command.
func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// step feeds msg to the model and runs the returned command once, feeding its message back.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	model := next.(Model)
	if cmd == nil {
		return model
	}
	out := cmd()
	switch out.(type) {
	case workflowsLoadedMsg, scratchpadsLoadedMsg, contentLoadedMsg, searchDoneMsg, errMsg:
		next, _ = model.Update(out)
		return next.(Model)
	}
	return model
}

func loadedModel(t *testing.T, backend Backend) Model {
	t.Helper()
	m := NewModel(context.Background(), backend)
	next, _ := m.Update(m.loadWorkflows()())
	return next.(Model)
}

func TestModelBrowsesWorkflowIntoContent(t *testing.T) {
	m := loadedModel(t, newFakeBackend())
	require.Equal(t, ViewWorkflows, m.State())
	require.False(t, m.loading)
	require.Len(t, m.workflows.Items(), 1)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ViewScratchpads, m.State())
	require.Equal(t, "release", m.currentWorkflow.Name)
	require.Len(t, m.scratchpads.Items(), 1)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ViewContent, m.State())
	require.Equal(t, "deploy on friday", m.currentScratchpad.Content)
	require.Contains(t, m.View(), "plan")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, ViewScratchpads, m.State())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, ViewWorkflows, m.State())
}

func TestModelSearch(t *testing.T) {
	backend := newFakeBackend()
	m := loadedModel(t, backend)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	require.Equal(t, ViewSearchInput, m.State())

	// empty query stays on the input
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ViewSearchInput, m.State())
	require.Empty(t, backend.searched)

	m.query.SetValue("deploy")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ViewSearchResults, m.State())
	require.Equal(t, []string{"deploy"}, backend.searched)
	require.Len(t, m.results.Items(), 1)
	require.Contains(t, m.status, "fts")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ViewContent, m.State())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, ViewSearchResults, m.State())
}

func TestModelSearchInputCancel(t *testing.T) {
	m := loadedModel(t, newFakeBackend())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.Equal(t, ViewSearchInput, m.State(), "q is typed into the query, not a quit")
	require.Equal(t, "q", m.query.Value())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, ViewWorkflows, m.State())
}

func TestModelShowsErrors(t *testing.T) {
	m := loadedModel(t, newFakeBackend())
	next, _ := m.Update(m.loadContent("missing")())
	m = next.(Model)
	require.Error(t, m.err)
	require.Contains(t, m.View(), "scratchpad not found")
}

func TestModelQuit(t *testing.T) {
	m := loadedModel(t, newFakeBackend())
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	require.True(t, next.(Model).quitting)
}
