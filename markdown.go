package main

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

type markdownTheme string

const (
	markdownThemeAuto  markdownTheme = "auto"
	markdownThemeDark  markdownTheme = "dark"
	markdownThemeLight markdownTheme = "light"
)

type rendererKey struct {
	theme markdownTheme
	wrap  int
}

// noteRenderer caches one glamour renderer per theme and wrap width; the
// table re-renders notices on every resize.
type noteRenderer struct {
	mu        sync.Mutex
	theme     markdownTheme
	wrap      int
	renderers map[rendererKey]*glamour.TermRenderer
}

var notes = &noteRenderer{theme: markdownThemeAuto, wrap: 80}

func (n *noteRenderer) current() *glamour.TermRenderer {
	n.mu.Lock()
	defer n.mu.Unlock()
	k := rendererKey{theme: n.theme, wrap: n.wrap}
	if r, ok := n.renderers[k]; ok {
		return r
	}
	style := glamour.WithAutoStyle()
	if n.theme != markdownThemeAuto {
		style = glamour.WithStandardStyle(string(n.theme))
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(n.wrap))
	if err != nil {
		return nil
	}
	if n.renderers == nil {
		n.renderers = make(map[rendererKey]*glamour.TermRenderer)
	}
	n.renderers[k] = r
	return r
}

// renderMarkdown falls back to the raw text when glamour cannot render it.
func renderMarkdown(content string) string {
	r := notes.current()
	if r == nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

// renderNotices renders the notices of a recipe as a bulleted block. It
// returns "" when there is nothing to show.
func renderNotices(notices []string) string {
	var b strings.Builder
	for _, notice := range notices {
		notice = strings.TrimSpace(notice)
		if notice == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(strings.ReplaceAll(notice, "\n", " "))
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return ""
	}
	return renderMarkdown("**注意事項**\n\n" + b.String())
}

func setMarkdownWordWrap(width int) {
	notes.mu.Lock()
	notes.wrap = maxInt(width, 0)
	notes.mu.Unlock()
}

func setMarkdownTheme(theme markdownTheme) {
	if theme == "" {
		theme = markdownThemeAuto
	}
	notes.mu.Lock()
	notes.theme = theme
	notes.mu.Unlock()
}

func currentMarkdownTheme() markdownTheme {
	notes.mu.Lock()
	defer notes.mu.Unlock()
	return notes.theme
}

func markdownThemeFromString(value string) markdownTheme {
	switch t := markdownTheme(strings.ToLower(strings.TrimSpace(value))); t {
	case markdownThemeDark, markdownThemeLight:
		return t
	}
	return markdownThemeAuto
}

var themeLabels = map[markdownTheme]string{
	markdownThemeAuto:  "自動",
	markdownThemeDark:  "深色",
	markdownThemeLight: "淺色",
}

func markdownThemeLabel(theme markdownTheme) string {
	if label, ok := themeLabels[theme]; ok {
		return label
	}
	return themeLabels[markdownThemeAuto]
}

// nextMarkdownTheme cycles auto, dark, light.
func nextMarkdownTheme(theme markdownTheme) markdownTheme {
	switch theme {
	case markdownThemeAuto:
		return markdownThemeDark
	case markdownThemeDark:
		return markdownThemeLight
	}
	return markdownThemeAuto
}
