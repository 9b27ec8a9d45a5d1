package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Laisky/zine-site/internal/web/search/dto"
)

// ViewState represents the current view state of the TUI
type ViewState int

const (
	// ViewInput is the query prompt
	ViewInput ViewState = iota
	// ViewSearching is shown while a search is in flight
	ViewSearching
	// ViewResults lists the results of the last search
	ViewResults
)

// Searcher runs one search.
type Searcher interface {
	Search(ctx context.Context, raw string) (*dto.SearchResponse, error)
}

// resultItem adapts a search result to list.Item
type resultItem struct {
	result *dto.SearchResult
}

// Title returns the result line (implements list.Item)
func (i resultItem) Title() string {
	return fmt.Sprintf("[%s] %s", i.result.Type, i.result.Title)
}

// Description returns the snippet, or the url when there is none
func (i resultItem) Description() string {
	if i.result.Snippet != nil {
		return *i.result.Snippet
	}

	return i.result.URL
}

// FilterValue returns the filter value (implements list.Item)
func (i resultItem) FilterValue() string { return i.result.Title }

// searchDoneMsg carries the outcome of one search back to Update
type searchDoneMsg struct {
	resp *dto.SearchResponse
	err  error
}

// Model is the search console following the Bubble Tea architecture
type Model struct {
	ctx      context.Context
	searcher Searcher

	state   ViewState
	input   textinput.Model
	spinner spinner.Model
	results list.Model

	resp *dto.SearchResponse
	err  error

	width  int
	height int

	quitting bool
}

// keyMap defines the key bindings for the TUI
type keyMap struct {
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
	Exit  key.Binding
}

var keys = keyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "search"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "new search"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	Exit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// NewModel creates a console that searches with searcher
func NewModel(ctx context.Context, searcher Searcher) Model {
	input := textinput.New()
	input.Placeholder = "river, a contributor, a page..."
	input.Focus()
	input.CharLimit = 256
	input.Width = 50
	input.Prompt = "🔎 "
	input.PromptStyle = inputLabelStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = progressStyle

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(primaryColor).
		BorderForeground(primaryColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(secondaryColor)

	results := list.New(nil, delegate, 0, 0)
	results.SetShowStatusBar(false)
	results.SetFilteringEnabled(false)
	results.Styles.Title = headerStyle

	return Model{
		ctx:      ctx,
		searcher: searcher,
		state:    ViewInput,
		input:    input,
		spinner:  sp,
		results:  results,
	}
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// search runs the query off the update loop
func (m Model) search(raw string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.searcher.Search(m.ctx, raw)
		return searchDoneMsg{resp: resp, err: err}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.results.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Exit) {
			m.quitting = true
			return m, tea.Quit
		}

		switch m.state {
		case ViewInput:
			return m.handleInput(msg)
		case ViewResults:
			return m.handleResults(msg)
		case ViewSearching:
			return m, nil
		}

	case spinner.TickMsg:
		if m.state == ViewSearching {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case searchDoneMsg:
		return m.showResults(msg)
	}

	return m, nil
}

func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, keys.Enter):
		m.state = ViewSearching
		m.err = nil
		m.input.Blur()
		return m, tea.Batch(m.spinner.Tick, m.search(m.input.Value()))
	case key.Matches(msg, keys.Back):
		m.quitting = true
		return m, tea.Quit
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Back):
		m.state = ViewInput
		m.input.SetValue("")
		return m, m.input.Focus()
	}

	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m Model) showResults(msg searchDoneMsg) (tea.Model, tea.Cmd) {
	m.state = ViewResults
	m.resp, m.err = msg.resp, msg.err
	if m.err != nil || m.resp == nil {
		return m, m.results.SetItems(nil)
	}

	items := make([]list.Item, 0, len(m.resp.Results))
	for _, r := range m.resp.Results {
		items = append(items, resultItem{result: r})
	}
	m.results.Title = fmt.Sprintf("%d results for %q", len(items), m.resp.Query)
	return m, m.results.SetItems(items)
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Zine Search"))
	sb.WriteString("\n")

	switch m.state {
	case ViewInput:
		sb.WriteString(boxStyle.Render(m.input.View()))
		sb.WriteString(helpStyle.Render("enter: search • esc: quit"))
	case ViewSearching:
		sb.WriteString(fmt.Sprintf("%s searching %q...", m.spinner.View(), m.input.Value()))
	case ViewResults:
		switch {
		case m.err != nil:
			sb.WriteString(errorStyle.Render("search unavailable: " + m.err.Error()))
		case m.resp == nil || m.resp.Query == "":
			sb.WriteString(subtitleStyle.Render("nothing to search"))
		case len(m.resp.Results) == 0:
			sb.WriteString(subtitleStyle.Render(fmt.Sprintf("no results for %q", m.resp.Query)))
		default:
			sb.WriteString(m.results.View())
		}
		sb.WriteString(helpStyle.Render("esc: new search • q: quit"))
	}

	return sb.String()
}
