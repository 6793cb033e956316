// Package tui is a read-only terminal browser for workflows and scratchpads.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Laisky/scratchpad-mcp/internal/mcp/scratchpad"
)

// Backend is the subset of the scratchpad service the browser reads from.
type Backend interface {
	ListWorkflows(ctx context.Context, projectScope *string) ([]scratchpad.Workflow, error)
	ListScratchpads(ctx context.Context, workflowID string, limit, offset int) (scratchpad.ListScratchpadsResult, error)
	GetScratchpad(ctx context.Context, id string) (scratchpad.Scratchpad, error)
	SearchScratchpads(ctx context.Context, params scratchpad.SearchParams) (scratchpad.SearchResult, error)
}

// ViewState is the screen currently shown.
type ViewState int

const (
	// ViewWorkflows lists workflows.
	ViewWorkflows ViewState = iota
	// ViewScratchpads lists the scratchpads of one workflow.
	ViewScratchpads
	// ViewContent shows one scratchpad.
	ViewContent
	// ViewSearchInput edits a search query.
	ViewSearchInput
	// ViewSearchResults lists search hits.
	ViewSearchResults
)

// scratchpadPageSize is how many scratchpads the browser loads per workflow.
const scratchpadPageSize = 100

type workflowItem struct{ wf scratchpad.Workflow }

func (i workflowItem) Title() string { return i.wf.Name }

func (i workflowItem) Description() string {
	state := "active"
	if !i.wf.IsActive {
		state = "inactive"
	}
	scope := "unscoped"
	if i.wf.ProjectScope != nil {
		scope = *i.wf.ProjectScope
	}
	return fmt.Sprintf("%s · %s · %d scratchpads · %s", scope, state, i.wf.ScratchpadCount, formatTime(i.wf.UpdatedAt))
}

func (i workflowItem) FilterValue() string { return i.wf.Name }

type scratchpadItem struct {
	sp      scratchpad.Scratchpad
	snippet string
}

func (i scratchpadItem) Title() string { return i.sp.Title }

func (i scratchpadItem) Description() string {
	if i.snippet != "" {
		return strings.ReplaceAll(i.snippet, "\n", " ")
	}
	return fmt.Sprintf("%d bytes · %s", i.sp.SizeBytes, formatTime(i.sp.UpdatedAt))
}

func (i scratchpadItem) FilterValue() string { return i.sp.Title }

type (
	workflowsLoadedMsg   struct{ workflows []scratchpad.Workflow }
	scratchpadsLoadedMsg struct {
		workflow scratchpad.Workflow
		result   scratchpad.ListScratchpadsResult
	}
	contentLoadedMsg struct{ sp scratchpad.Scratchpad }
	searchDoneMsg    struct {
		query  string
		result scratchpad.SearchResult
	}
	errMsg struct{ err error }
)

type keyMap struct {
	Enter  key.Binding
	Back   key.Binding
	Search key.Binding
	Reload key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the Bubble Tea model of the browser.
type Model struct {
	ctx     context.Context
	backend Backend

	state    ViewState
	previous ViewState
	loading  bool
	err      error
	status   string

	workflows   list.Model
	scratchpads list.Model
	results     list.Model
	query       textinput.Model
	content     viewport.Model
	spinner     spinner.Model

	currentWorkflow   scratchpad.Workflow
	currentScratchpad scratchpad.Scratchpad

	width, height int
	quitting      bool
}

// NewModel builds a browser over backend.
func NewModel(ctx context.Context, backend Backend) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = progressStyle

	query := textinput.New()
	query.Placeholder = "words, phrases or 中文"
	query.CharLimit = 256
	query.Width = 50
	query.Prompt = "🔎 "
	query.PromptStyle = inputLabelStyle

	return Model{
		ctx:         ctx,
		backend:     backend,
		state:       ViewWorkflows,
		loading:     true,
		workflows:   newList("Workflows"),
		scratchpads: newList("Scratchpads"),
		results:     newList("Search results"),
		query:       query,
		content:     viewport.New(80, 20),
		spinner:     sp,
	}
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(primaryColor).
		BorderForeground(primaryColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(secondaryColor)

	l := list.New(nil, delegate, 80, 20)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = headerStyle
	return l
}

// Init loads the workflow list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadWorkflows())
}

func (m Model) loadWorkflows() tea.Cmd {
	return func() tea.Msg {
		workflows, err := m.backend.ListWorkflows(m.ctx, nil)
		if err != nil {
			return errMsg{err}
		}
		return workflowsLoadedMsg{workflows: workflows}
	}
}

func (m Model) loadScratchpads(wf scratchpad.Workflow) tea.Cmd {
	return func() tea.Msg {
		result, err := m.backend.ListScratchpads(m.ctx, wf.ID, scratchpadPageSize, 0)
		if err != nil {
			return errMsg{err}
		}
		return scratchpadsLoadedMsg{workflow: wf, result: result}
	}
}

func (m Model) loadContent(id string) tea.Cmd {
	return func() tea.Msg {
		sp, err := m.backend.GetScratchpad(m.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return contentLoadedMsg{sp: sp}
	}
}

func (m Model) runSearch(query string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.backend.SearchScratchpads(m.ctx, scratchpad.SearchParams{Query: query})
		if err != nil {
			return errMsg{err}
		}
		return searchDoneMsg{query: query, result: result}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case errMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case workflowsLoadedMsg:
		m.loading = false
		m.err = nil
		items := make([]list.Item, 0, len(msg.workflows))
		for _, wf := range msg.workflows {
			items = append(items, workflowItem{wf: wf})
		}
		m.status = fmt.Sprintf("%d workflows", len(items))
		return m, m.workflows.SetItems(items)

	case scratchpadsLoadedMsg:
		m.loading = false
		m.err = nil
		m.currentWorkflow = msg.workflow
		m.state = ViewScratchpads
		m.scratchpads.Title = msg.workflow.Name
		items := make([]list.Item, 0, len(msg.result.Scratchpads))
		for _, sp := range msg.result.Scratchpads {
			items = append(items, scratchpadItem{sp: sp})
		}
		m.status = fmt.Sprintf("%d of %d scratchpads", len(items), msg.result.Total)
		return m, m.scratchpads.SetItems(items)

	case contentLoadedMsg:
		m.loading = false
		m.err = nil
		m.previous = m.state
		m.state = ViewContent
		m.currentScratchpad = msg.sp
		m.content.SetContent(msg.sp.Content)
		m.content.GotoTop()
		m.status = fmt.Sprintf("%d bytes · updated %s", msg.sp.SizeBytes, formatTime(msg.sp.UpdatedAt))
		return m, nil

	case searchDoneMsg:
		m.loading = false
		m.err = nil
		m.state = ViewSearchResults
		m.results.Title = fmt.Sprintf("Results for %q", msg.query)
		items := make([]list.Item, 0, len(msg.result.Hits))
		for _, hit := range msg.result.Hits {
			items = append(items, scratchpadItem{sp: hit.Scratchpad, snippet: hit.Snippet})
		}
		m.status = fmt.Sprintf("%d hits via %s search", len(items), msg.result.Tier)
		if len(msg.result.Warnings) > 0 {
			m.status += " · " + strings.Join(msg.result.Warnings, "; ")
		}
		return m, m.results.SetItems(items)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state == ViewSearchInput {
		return m.handleSearchInput(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case m.loading:
		return m, nil
	case key.Matches(msg, keys.Search):
		m.previous = m.state
		m.state = ViewSearchInput
		m.query.SetValue("")
		return m, m.query.Focus()
	case key.Matches(msg, keys.Back):
		m.err = nil
		m.goBack()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case ViewWorkflows:
		switch {
		case key.Matches(msg, keys.Enter):
			if item, ok := m.workflows.SelectedItem().(workflowItem); ok {
				m.loading = true
				return m, m.loadScratchpads(item.wf)
			}
			return m, nil
		case key.Matches(msg, keys.Reload):
			m.loading = true
			return m, m.loadWorkflows()
		}
		m.workflows, cmd = m.workflows.Update(msg)
	case ViewScratchpads:
		if key.Matches(msg, keys.Enter) {
			return m.openSelected(m.scratchpads)
		}
		m.scratchpads, cmd = m.scratchpads.Update(msg)
	case ViewSearchResults:
		if key.Matches(msg, keys.Enter) {
			return m.openSelected(m.results)
		}
		m.results, cmd = m.results.Update(msg)
	case ViewContent:
		m.content, cmd = m.content.Update(msg)
	}
	return m, cmd
}

func (m Model) openSelected(l list.Model) (tea.Model, tea.Cmd) {
	item, ok := l.SelectedItem().(scratchpadItem)
	if !ok {
		return m, nil
	}
	m.loading = true
	return m, m.loadContent(item.sp.ID)
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEsc:
		m.query.Blur()
		m.state = m.previous
		return m, nil
	case tea.KeyEnter:
		query := strings.TrimSpace(m.query.Value())
		if query == "" {
			return m, nil
		}
		m.query.Blur()
		m.loading = true
		return m, m.runSearch(query)
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

func (m *Model) goBack() {
	switch m.state {
	case ViewContent:
		m.state = m.previous
	case ViewScratchpads, ViewSearchResults:
		m.state = ViewWorkflows
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	listHeight := height - 6
	if listHeight < 5 {
		listHeight = 5
	}
	m.workflows.SetSize(width-4, listHeight)
	m.scratchpads.SetSize(width-4, listHeight)
	m.results.SetSize(width-4, listHeight)
	m.content.Width = width - 8
	m.content.Height = listHeight - 4
}

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return subtitleStyle.Render("bye\n")
	}

	var body string
	switch m.state {
	case ViewWorkflows:
		body = m.workflows.View()
	case ViewScratchpads:
		body = m.scratchpads.View()
	case ViewSearchResults:
		body = m.results.View()
	case ViewContent:
		body = boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			headerStyle.Render(m.currentScratchpad.Title),
			m.content.View(),
		))
	case ViewSearchInput:
		body = boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			headerStyle.Render("Search scratchpads"),
			m.query.View(),
			helpStyle.Render("enter: search • esc: cancel"),
		))
	}

	footer := statusBarStyle.Render(m.status)
	switch {
	case m.loading:
		footer = m.spinner.View() + " loading…"
	case m.err != nil:
		footer = errorStyle.Render("error: " + m.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		footer,
		helpStyle.Render("enter open • / search • esc back • r reload • q quit"),
	)
}

// State returns the screen currently shown.
func (m Model) State() ViewState {
	return m.state
}

func formatTime(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format("2006-01-02 15:04")
}
