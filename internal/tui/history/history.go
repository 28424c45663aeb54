// Package history shows past marquee sessions and the operations each one
// recorded.
package history

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/marquee/internal/log"
	"github.com/Digital-Shane/marquee/internal/tui/components"
	"github.com/Digital-Shane/marquee/internal/tui/theme"
	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// maxShownOps is how many of a session's operations the details panel lists.
const maxShownOps = 12

// Model lists sessions on the left and the focused session on the right.
type Model struct {
	*treeview.TuiTreeModel[log.SessionSummary]
	width      int
	height     int
	splitRatio float64
	theme      theme.Theme

	detailsViewport *viewport.Model
	detailsFocused  bool
}

// Option configures a Model during construction.
type Option func(*Model)

// WithTheme overrides the default theme.
func WithTheme(th theme.Theme) Option {
	return func(m *Model) {
		m.theme = th
	}
}

// NewTree builds the session list, newest first as given.
func NewTree(summaries []log.SessionSummary) *treeview.Tree[log.SessionSummary] {
	nodes := make([]*treeview.Node[log.SessionSummary], 0, len(summaries))
	for _, s := range summaries {
		meta := s.Session.Metadata
		command := "?"
		if len(meta.CommandArgs) > 0 {
			command = meta.CommandArgs[0]
		}
		name := fmt.Sprintf("%s %s - %s (%d ops)", s.Icon, command, s.RelativeTime, meta.TotalOps)
		nodes = append(nodes, treeview.NewNode(meta.SessionID, name, s))
	}
	return treeview.NewTree(nodes)
}

// New creates the history model.
func New(tree *treeview.Tree[log.SessionSummary], opts ...Option) *Model {
	m := &Model{
		width:      80,
		height:     24,
		splitRatio: 0.45,
	}
	for _, opt := range append([]Option{WithTheme(theme.Default())}, opts...) {
		opt(m)
	}

	keyMap := treeview.DefaultKeyMap()
	keyMap.SearchStart = []string{}
	keyMap.Reset = []string{}

	treeWidth := m.treeWidth()
	m.TuiTreeModel = treeview.NewTuiTreeModel(tree,
		treeview.WithTuiWidth[log.SessionSummary](treeWidth),
		treeview.WithTuiHeight[log.SessionSummary](m.height-4),
		treeview.WithTuiAllowResize[log.SessionSummary](true),
		treeview.WithTuiDisableNavBar[log.SessionSummary](true),
		treeview.WithTuiKeyMap[log.SessionSummary](keyMap),
	)
	m.detailsViewport = components.NewViewport(m.width-treeWidth-6, m.height-8, m.theme)
	return m
}

func (m *Model) treeWidth() int {
	return int(float64(m.width)*m.splitRatio) - 2
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		treeWidth := m.treeWidth()
		treeModel, cmd := m.TuiTreeModel.Update(tea.WindowSizeMsg{Width: treeWidth, Height: m.height - 4})
		m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[log.SessionSummary])
		m.detailsViewport.Width = m.width - treeWidth - 6
		m.detailsViewport.Height = m.height - 8
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.detailsFocused = !m.detailsFocused
			return m, nil
		}
		if m.detailsFocused {
			switch msg.String() {
			case "up", "k":
				m.detailsViewport.ScrollUp(1)
			case "down", "j":
				m.detailsViewport.ScrollDown(1)
			case "pgup":
				m.detailsViewport.HalfPageUp()
			case "pgdown":
				m.detailsViewport.HalfPageDown()
			}
			return m, nil
		}
	}

	if m.detailsFocused {
		return m, nil
	}
	treeModel, cmd := m.TuiTreeModel.Update(msg)
	m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[log.SessionSummary])
	return m, cmd
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderStyle().Width(m.width).Render("Marquee Session History"))
	b.WriteByte('\n')

	leftWidth := int(float64(m.width) * m.splitRatio)
	rightWidth := m.width - leftWidth
	colors := m.theme.Colors()

	left := components.SizedPanel(m.theme, leftWidth, m.height-3, colors.Primary).
		Render(components.PanelTitle("Sessions", leftWidth, colors.Primary) + "\n" + m.TuiTreeModel.View())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, m.renderDetails(rightWidth, m.height-3)))
	b.WriteByte('\n')

	hint := "Tab: List Focus"
	if !m.detailsFocused {
		hint = "Tab: Details Focus"
	}
	b.WriteString(lipgloss.NewStyle().
		Italic(true).
		Width(m.width).
		Align(lipgloss.Center).
		Foreground(colors.Muted).
		Render(hint + " | ↑↓ Navigate | PgUp/PgDn: Page | q/Esc: Quit"))
	return b.String()
}

func (m *Model) renderDetails(width, height int) string {
	colors := m.theme.Colors()
	if node := m.TuiTreeModel.Tree.GetFocusedNode(); node != nil {
		m.detailsViewport.SetContent(m.formatSession(*node.Data()))
	} else {
		m.detailsViewport.SetContent(lipgloss.NewStyle().
			Italic(true).
			Foreground(colors.Muted).
			Render("No sessions recorded yet"))
	}

	title := "Session Details"
	if m.detailsViewport.TotalLineCount() > m.detailsViewport.Height {
		title += " [Tab to scroll]"
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		components.PanelTitle(title, width, colors.Secondary),
		"",
		m.detailsViewport.View(),
	)
	return components.SizedPanel(m.theme, width, height, colors.Secondary).Render(content)
}

func (m *Model) formatSession(summary log.SessionSummary) string {
	var b strings.Builder
	meta := summary.Session.Metadata
	colors := m.theme.Colors()
	label := lipgloss.NewStyle().Bold(true).Foreground(colors.Accent)
	value := lipgloss.NewStyle().Foreground(colors.Primary)
	indent := lipgloss.NewStyle().MarginLeft(2)

	b.WriteString(label.Render("Command: "))
	b.WriteString(value.Render("marquee " + strings.Join(meta.CommandArgs, " ")))
	b.WriteString("\n\n")
	b.WriteString(label.Render("When: "))
	b.WriteString(value.Render(fmt.Sprintf("%s (%s)", summary.RelativeTime, meta.Timestamp.Format("2006-01-02 15:04:05"))))
	b.WriteString("\n\n")
	b.WriteString(label.Render("Operations:"))
	b.WriteByte('\n')
	b.WriteString(indent.Render(value.Render(fmt.Sprintf("Total: %d\nSucceeded: %d\nFailed: %d",
		meta.TotalOps, meta.SuccessfulOps, meta.FailedOps))))
	b.WriteString("\n\n")

	ops := summary.Session.Operations
	if len(ops) > 0 {
		b.WriteString(label.Render("Recent:"))
		b.WriteByte('\n')
		start := max(len(ops)-maxShownOps, 0)
		for _, op := range ops[start:] {
			b.WriteString(indent.Render(m.operationIcon(op) + " " + describe(op)))
			b.WriteByte('\n')
		}
	}

	b.WriteByte('\n')
	b.WriteString(label.Render("Session ID: "))
	b.WriteString(lipgloss.NewStyle().Foreground(colors.Muted).Italic(true).Render(meta.SessionID))
	return b.String()
}

func (m *Model) operationIcon(op log.OperationLog) string {
	if !op.Success {
		return m.theme.Icon("error")
	}
	switch op.Type {
	case log.OpWatchlistAdd:
		return m.theme.Icon("add")
	case log.OpWatchlistRemove:
		return m.theme.Icon("remove")
	case log.OpSearch:
		return m.theme.Icon("search")
	case log.OpFetch:
		return m.theme.Icon("page")
	default:
		return m.theme.Icon("unknown")
	}
}

// describe renders one operation as a single line.
func describe(op log.OperationLog) string {
	var text string
	switch op.Type {
	case log.OpWatchlistAdd:
		text = fmt.Sprintf("Saved %s", op.Subject)
	case log.OpWatchlistRemove:
		text = fmt.Sprintf("Removed %s", op.Subject)
	case log.OpSearch:
		text = fmt.Sprintf("Searched %q", op.Subject)
	case log.OpFetch:
		text = fmt.Sprintf("Fetched %s", op.Subject)
	default:
		text = string(op.Type)
	}
	if op.Detail != "" {
		text += " (" + op.Detail + ")"
	}
	if !op.Success && op.Error != "" {
		text += ": " + op.Error
	}
	return text
}
