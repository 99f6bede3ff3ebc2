package main

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// column is one framed area of the screen: the sidebar, the current page or
// the log pane.
type column interface {
	SetSize(width, height int)
	Update(msg tea.Msg) (column, tea.Cmd)
	View(styles styles, focused bool) string
	Title() string
	FocusValue() string
}

// mouseColumn receives clicks and wheel events with coordinates relative to
// its own top-left corner.
type mouseColumn interface {
	column
	HandleMouse(localX, localY int, msg tea.MouseMsg) (column, tea.Cmd)
}

// eventLog receives the "[LEVEL] message" lines shown in the log pane.
type eventLog interface {
	appendLog(line string)
}

// toastMsg asks the app to flash text in the status bar.
type toastMsg struct {
	text string
}

func toast(text string) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: text} }
}

type listEntry struct {
	title   string
	desc    string
	payload any
}

func (e listEntry) Title() string       { return e.title }
func (e listEntry) Description() string { return e.desc }
func (e listEntry) FilterValue() string { return e.title }

func newEntryList(items []list.Item, width int, s styles) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = s.listSel
	delegate.Styles.NormalTitle = s.listItem

	m := list.New(items, delegate, width, 10)
	m.SetShowTitle(false)
	m.SetShowStatusBar(false)
	m.SetFilteringEnabled(false)
	m.SetShowHelp(false)
	m.SetShowPagination(false)
	m.DisableQuitKeybindings()
	return m
}

func newResultTable(columns []table.Column) table.Model {
	model := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	tStyles := table.DefaultStyles()
	tStyles.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(palette.textMuted).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(palette.border).
		BorderBottom(true).
		Padding(0, 1)
	tStyles.Cell = lipgloss.NewStyle().
		Padding(0, 1)
	tStyles.Selected = lipgloss.NewStyle().
		Foreground(palette.text).
		Background(palette.selection)
	model.SetStyles(tStyles)
	return model
}

// framed renders body inside the panel style so that the result is exactly
// width × height cells.
func framed(s styles, focused bool, width, height int, body string) string {
	box := s.panel
	if focused {
		box = s.panelFocused
	}
	innerWidth := maxInt(width-box.GetHorizontalFrameSize(), 1)
	innerHeight := maxInt(height-box.GetVerticalFrameSize(), 1)
	body = lipgloss.NewStyle().MaxWidth(innerWidth).MaxHeight(innerHeight).Render(body)
	return box.Width(innerWidth).Height(innerHeight).Render(body)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
