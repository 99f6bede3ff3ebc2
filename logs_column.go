package main

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const logsColumnHeight = 8

// logsColumn draws the log viewport owned by the model with a scroll bar on
// its left edge.
type logsColumn struct {
	model *model
	title string

	width  int
	height int

	scrollTrackStyle lipgloss.Style
	scrollThumbStyle lipgloss.Style

	barWidth       int
	contentWidth   int
	contentHeight  int
	contentOffsetY int
}

func newLogsColumn(m *model, s styles) *logsColumn {
	return &logsColumn{
		model:            m,
		title:            "紀錄",
		barWidth:         1,
		scrollTrackStyle: s.statusHint.Copy().Foreground(palette.border),
		scrollThumbStyle: s.cmdPrompt.Copy().Foreground(palette.accent),
	}
}

func (c *logsColumn) SetSize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 3 {
		height = 3
	}
	c.width = width
	c.height = height
	c.recalcMetrics()
}

func (c *logsColumn) recalcMetrics() {
	// border on each side, then the title line
	c.contentWidth = maxInt(c.width-2-c.barWidth, 1)
	c.contentHeight = maxInt(c.height-2-1, 1)
	c.contentOffsetY = 2

	c.model.logs.Width = c.contentWidth
	c.model.logs.Height = c.contentHeight
	maxOffset := maxInt(len(c.model.logLines)-c.contentHeight, 0)
	if c.model.logs.YOffset > maxOffset {
		c.model.logs.SetYOffset(maxOffset)
	}
}

func (c *logsColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	var cmd tea.Cmd
	c.model.logs, cmd = c.model.logs.Update(msg)
	return c, cmd
}

func (c *logsColumn) View(s styles, focused bool) string {
	body := lipgloss.JoinVertical(lipgloss.Left, s.columnTitle.Render(c.title), c.renderContent())
	return framed(s, focused, c.width, c.height, body)
}

func (c *logsColumn) renderContent() string {
	lines := strings.Split(c.model.logs.View(), "\n")
	height := c.contentHeight
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	bar := c.renderScrollBar(height)
	for i := range lines {
		lines[i] = bar[i] + lines[i]
	}
	return strings.Join(lines, "\n")
}

// scrollThumb returns the first row and the height of the thumb within a
// track of the given height. A zero size means everything fits.
func scrollThumb(total, visible, offset, track int) (start, size int) {
	if total <= visible || track <= 0 {
		return 0, 0
	}
	size = clamp(int(math.Round(float64(visible*track)/float64(total))), 1, track)
	offset = clamp(offset, 0, total-visible)
	start = int(math.Round(float64(offset) / float64(total-visible) * float64(track-size)))
	return clamp(start, 0, track-size), size
}

func clamp(v, lo, hi int) int {
	return maxInt(lo, minInt(v, hi))
}

func (c *logsColumn) renderScrollBar(height int) []string {
	start, size := scrollThumb(c.model.logs.TotalLineCount(), maxInt(c.model.logs.Height, 1), c.model.logs.YOffset, height)
	track := c.scrollTrackStyle.Render("│")
	thumb := c.scrollThumbStyle.Render("┃")
	bar := make([]string, height)
	for i := range bar {
		bar[i] = track
		if size > 0 && i >= start && i < start+size {
			bar[i] = thumb
		}
	}
	return bar
}

func (c *logsColumn) Title() string {
	return c.title
}

func (c *logsColumn) FocusValue() string {
	total := len(c.model.logLines)
	if total == 0 {
		return "無紀錄"
	}
	if sel := c.model.logsSelection; sel >= 0 && sel < total {
		return fmt.Sprintf("第 %d/%d 行", sel+1, total)
	}
	start := c.model.logs.YOffset + 1
	end := minInt(start+c.model.logs.Height-1, total)
	return fmt.Sprintf("%d-%d/%d", start, end, total)
}

// HandleMouse scrolls on the wheel and selects the clicked line; the selected
// line can then be copied with y.
func (c *logsColumn) HandleMouse(localX, localY int, msg tea.MouseMsg) (column, tea.Cmd) {
	switch msg.Type {
	case tea.MouseWheelUp, tea.MouseWheelDown:
		var cmd tea.Cmd
		c.model.logs, cmd = c.model.logs.Update(msg)
		return c, cmd
	case tea.MouseLeft:
		if len(c.model.logLines) == 0 || localY < c.contentOffsetY {
			return c, nil
		}
		row := minInt(localY-c.contentOffsetY, c.contentHeight-1)
		index := minInt(c.model.logs.YOffset+row, len(c.model.logLines)-1)
		c.model.logsSelection = index
		c.model.refreshLogs()
	}
	return c, nil
}
