// Package browse implements the interactive store browser: a live
// query input over the search engine with a ranked result list and a
// detail view.
package browse

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/recall/pkg/memory"
)

var (
	accent = lipgloss.Color("212")
	muted  = lipgloss.Color("241")

	titleStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true).Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(1, 2)
	labelStyle  = lipgloss.NewStyle().Foreground(muted)
)

// matchItem adapts a search match to the bubbles list.
type matchItem struct {
	match memory.Match
}

func (i matchItem) FilterValue() string {
	return i.match.Entry.Key
}

func (i matchItem) Title() string {
	return fmt.Sprintf("[%s] %s", i.match.Category, i.match.Entry.Key)
}

func (i matchItem) Description() string {
	value := strings.ReplaceAll(i.match.Entry.Value, "\n", " ")
	if len(value) > 77 {
		value = value[:77] + "..."
	}
	return fmt.Sprintf("%.2f  %s", i.match.Score, value)
}

type resultsMsg struct {
	matches []memory.Match
	err     error
}

// Model is the browse TUI state.
type Model struct {
	store  *memory.Store
	input  textinput.Model
	list   list.Model
	detail *memory.Match
	width  int
	height int
	err    error
}

// New builds the browse model over an opened store.
func New(store *memory.Store) Model {
	input := textinput.New()
	input.Placeholder = "type to search memory..."
	input.Focus()
	input.Prompt = "/ "

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(accent).BorderForeground(accent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(muted).BorderForeground(accent)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "recall"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view entry")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "quit")),
		}
	}

	return Model{store: store, input: input, list: l}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// search runs the query off the update loop and reports back.
func (m Model) search(query string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		if strings.TrimSpace(query) == "" {
			return resultsMsg{}
		}
		result, err := store.Search(context.Background(), memory.SearchRequest{Query: query})
		if err != nil {
			return resultsMsg{err: err}
		}
		return resultsMsg{matches: result.Results}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.detail != nil {
				m.detail = nil
				return m, nil
			}
			return m, tea.Quit
		case "q":
			// q quits only from the detail view; in the list view it is
			// part of the query.
			if m.detail != nil {
				m.detail = nil
				return m, nil
			}
		case "enter":
			if m.detail == nil {
				if item, ok := m.list.SelectedItem().(matchItem); ok {
					match := item.match
					m.detail = &match
				}
				return m, nil
			}
		}
		if m.detail != nil {
			return m, nil
		}

		var inputCmd tea.Cmd
		before := m.input.Value()
		m.input, inputCmd = m.input.Update(msg)

		var listCmd tea.Cmd
		m.list, listCmd = m.list.Update(msg)

		if m.input.Value() != before {
			return m, tea.Batch(inputCmd, listCmd, m.search(m.input.Value()))
		}
		return m, tea.Batch(inputCmd, listCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-8, msg.Height-10)
		return m, nil

	case resultsMsg:
		m.err = msg.err
		items := make([]list.Item, len(msg.matches))
		for i, match := range msg.matches {
			items[i] = matchItem{match: match}
		}
		return m, m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.detail != nil {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.list.View())
	if m.err != nil {
		b.WriteString("\n" + labelStyle.Render(m.err.Error()))
	}
	return borderStyle.Width(max(m.width-4, 20)).Render(b.String())
}

func (m Model) detailView() string {
	e := m.detail.Entry
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s / %s", m.detail.Category, e.Key)))
	b.WriteString("\n\n")
	b.WriteString(e.Value)
	b.WriteString("\n\n")
	if e.Reason != "" {
		b.WriteString(labelStyle.Render("reason: ") + e.Reason + "\n")
	}
	if e.Context != "" {
		b.WriteString(labelStyle.Render("context: ") + e.Context + "\n")
	}
	b.WriteString(labelStyle.Render("updated: ") + e.UpdatedAt.Format("2006-01-02 15:04:05 MST") + "\n")
	b.WriteString("\n" + labelStyle.Render("esc/q back"))
	return borderStyle.Width(max(m.width-4, 20)).Render(b.String())
}

// Run opens the browser and blocks until the user quits.
func Run(store *memory.Store) error {
	p := tea.NewProgram(New(store), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}
