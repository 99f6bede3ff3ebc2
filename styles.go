package main

import "github.com/charmbracelet/lipgloss"

var palette = struct {
	text, textMuted, border, selection lipgloss.AdaptiveColor
	accent, danger, surface            lipgloss.AdaptiveColor
}{
	text:      lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#E6EDF3"},
	textMuted: lipgloss.AdaptiveColor{Light: "#656D76", Dark: "#8B949E"},
	border:    lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#30363D"},
	selection: lipgloss.AdaptiveColor{Light: "#DDF4FF", Dark: "#1F3A5F"},
	accent:    lipgloss.AdaptiveColor{Light: "#B35900", Dark: "#F0883E"},
	danger:    lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"},
	surface:   lipgloss.AdaptiveColor{Light: "#F6F8FA", Dark: "#161B22"},
}

type styles struct {
	app, topBar                        lipgloss.Style
	sidebar, sidebarTitle, columnTitle lipgloss.Style
	panel, panelFocused                lipgloss.Style
	statusBar, statusSeg, statusHint   lipgloss.Style
	listItem, listSel, subMenuItem     lipgloss.Style
	tableHeader, tableCell, tableSel   lipgloss.Style
	tableRule, footer                  lipgloss.Style
	subRecipe, loadingRow, errorRow    lipgloss.Style
	fieldLabel, fieldValue             lipgloss.Style
	detailPanel, detailTitle, overlay  lipgloss.Style
	chatUser, chatBot                  lipgloss.Style
	formError                          lipgloss.Style
	cmdOverlay, cmdPrompt, cmdHint     lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()
	panelBorder := lipgloss.NormalBorder()
	focusedBorder := lipgloss.DoubleBorder()

	return styles{
		app:          base,
		topBar:       base.Copy().Bold(true).Padding(0, 1),
		sidebar:      base.Copy().BorderStyle(panelBorder).BorderForeground(palette.border),
		sidebarTitle: base.Copy().Bold(true).Padding(0, 1),
		columnTitle:  base.Copy().Bold(true).Padding(0, 1),
		panel:        base.Copy().BorderStyle(panelBorder).BorderForeground(palette.border),
		panelFocused: base.Copy().BorderStyle(focusedBorder).BorderForeground(palette.accent),
		statusBar:    base.Copy().Padding(0, 1),
		statusSeg:    base.Copy().Padding(0, 1).MarginRight(1),
		statusHint:   base.Copy().Foreground(palette.textMuted),
		listItem:     base.Copy().Padding(0, 1),
		listSel:      base.Copy().Padding(0, 1).Bold(true).Background(palette.selection),
		subMenuItem:  base.Copy().PaddingLeft(3).Foreground(palette.textMuted),
		tableHeader:  base.Copy().Bold(true).Foreground(palette.textMuted),
		tableCell:    base,
		tableSel:     base.Copy().Foreground(palette.text).Background(palette.selection),
		tableRule:    base.Copy().Foreground(palette.border),
		footer:       base.Copy().Bold(true),
		subRecipe:    base.Copy().Bold(true).Underline(true),
		loadingRow:   base.Copy().Foreground(palette.textMuted).Italic(true),
		errorRow:     base.Copy().Foreground(palette.danger).Bold(true),
		fieldLabel:   base.Copy().Foreground(palette.textMuted),
		fieldValue:   base,
		detailPanel:  base.Copy().Border(lipgloss.RoundedBorder()).BorderForeground(palette.accent).Padding(0, 1),
		detailTitle:  base.Copy().Bold(true),
		overlay:      base.Copy().Faint(true),
		chatUser:     base.Copy().Bold(true).Foreground(palette.accent),
		chatBot:      base.Copy().Foreground(palette.text),
		formError:    base.Copy().Foreground(palette.danger),
		cmdOverlay:   base.Copy().Border(lipgloss.RoundedBorder()).Padding(1, 2),
		cmdPrompt:    base.Copy().Bold(true),
		cmdHint:      base.Copy().Faint(true),
	}
}
