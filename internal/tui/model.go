// Package tui implements the interactive search screen: a query box that
// searches on every keystroke, a navigable result list and a suggestion row
// fed by the index's term completions.
package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lawrencelj/mdsearch/internal/index"
	"github.com/lawrencelj/mdsearch/pkg/document"
)

// incrementalLimit caps how many results each keystroke's search returns.
const incrementalLimit = 20

// SearchPort is the subset of the engine the screen needs.
type SearchPort interface {
	IncrementalSearch(query string, maxResults int) []index.SearchResult
	Suggestions(prefix string) []string
}

// Model is the Bubble Tea model for interactive search.
type Model struct {
	engine      SearchPort
	titles      map[string]string
	input       textinput.Model
	viewport    viewport.Model
	results     []index.SearchResult
	suggestions []string
	cursor      int
	ready       bool
	status      string
}

// New builds the model over an already-indexed engine. The references
// supply the document titles shown next to matches.
func New(engine SearchPort, refs []document.Reference) Model {
	titles := make(map[string]string, len(refs))
	for _, ref := range refs {
		titles[ref.ID] = ref.Title
	}

	ti := textinput.New()
	ti.Prompt = "search> "
	ti.Placeholder = "type at least two characters"
	ti.Focus()

	return Model{
		engine:   engine,
		titles:   titles,
		input:    ti,
		viewport: viewport.New(0, 0),
		status:   fmt.Sprintf("%d documents indexed", len(refs)),
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events. Every change to the query re-runs
// the incremental search and refreshes the suggestion row.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, frameH := resultBoxStyle.GetFrameSize()
		reserved := 5 + frameH
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved)
		m.viewport.SetContent(m.renderResults())
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyDown:
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderResults())
			}
			return m, nil
		case tea.KeyUp:
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderResults())
			}
			return m, nil
		}
	}

	previous := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != previous {
		m = m.runQuery(q)
	}
	return m, cmd
}

func (m Model) runQuery(query string) Model {
	m.results = m.engine.IncrementalSearch(query, incrementalLimit)
	m.suggestions = m.suggest(query)
	m.cursor = 0

	switch {
	case strings.TrimSpace(query) == "":
		m.status = fmt.Sprintf("%d documents indexed", len(m.titles))
	case utf8.RuneCountInString(query) < 2:
		m.status = "type at least two characters"
	default:
		m.status = fmt.Sprintf("%d results", len(m.results))
	}
	m.viewport.SetContent(m.renderResults())
	return m
}

// suggest completes the word currently being typed.
func (m Model) suggest(query string) []string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return nil
	}
	return m.engine.Suggestions(fields[len(fields)-1])
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	parts := []string{
		titleStyle.Render("mdsearch"),
		queryBoxStyle.Render(m.input.View()),
		dimStyle.Render(m.renderSuggestions()),
		resultBoxStyle.Render(m.viewport.View()),
		statusStyle.Render(m.status),
	}
	return strings.Join(parts, "\n")
}

func (m Model) renderSuggestions() string {
	if len(m.suggestions) == 0 {
		return ""
	}
	return "try: " + strings.Join(m.suggestions, "  ")
}

// renderResults lists every match with the selected one expanded to show
// its enclosing heading and context line.
func (m Model) renderResults() string {
	if len(m.results) == 0 {
		return "No results."
	}

	var b strings.Builder
	for i, r := range m.results {
		title := m.titles[r.DocumentID]
		if title == "" {
			title = r.DocumentID
		}
		line := fmt.Sprintf("%s:%d  %s  %.2f", title, r.Line, r.Term, r.Score)

		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
			b.WriteByte('\n')
			if r.HeadingContext != "" {
				b.WriteString(dimStyle.Render("    under " + r.HeadingContext))
				b.WriteByte('\n')
			}
			if r.Context != "" {
				b.WriteString("    " + r.Context)
				b.WriteByte('\n')
			}
		} else {
			b.WriteString(listItemStyle.Render("  " + line))
			b.WriteByte('\n')
		}
	}
	return b.String()
}
