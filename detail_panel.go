package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/sync/errgroup"

	"github.com/valueproject/recipe-lookup/internal/recipe"
)

var detailPanelFields = []struct {
	label string
	field ingredientField
}{
	{"步驟", fieldStep},
	{"原料編號", fieldMaterialCode},
	{"原料名稱", fieldMaterialName},
	{"單位", fieldUnit},
	{"原料用量", fieldQuantity},
	{"產品基數", fieldProductBase},
	{"附註", fieldNotes},
	{"單價未稅", fieldUnitPrice},
	{"成本", fieldCost},
}

type detailField struct {
	label string
	value string
}

type panelInfoState int

const (
	panelInfoLoading panelInfoState = iota
	panelInfoReady
	panelInfoMissing
)

// detailPanel is the single side panel of the ingredients table. Opening it
// again replaces its content.
type detailPanel struct {
	open           bool
	seq            uint64
	code           string
	title          string
	fields         []detailField
	characteristic string

	info     panelInfoState
	supplier string
	spec     string
	usedIn   []recipe.MaterialUsage
}

type materialInfoMsg struct {
	seq      uint64
	code     string
	material *recipe.Material
	usage    *recipe.MaterialUsageResponse
	err      error
}

// fetchMaterialInfo asks for the supplier record and the recipes using code
// at the same time.
func fetchMaterialInfo(lookup materialLookup, seq uint64, code string) tea.Cmd {
	if lookup == nil || strings.TrimSpace(code) == "" {
		return nil
	}
	return func() tea.Msg {
		var (
			material *recipe.Material
			usage    *recipe.MaterialUsageResponse
		)
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			material, err = lookup.Material(ctx, code)
			return err
		})
		g.Go(func() error {
			var err error
			usage, err = lookup.MaterialUsage(ctx, code)
			return err
		})
		err := g.Wait()
		return materialInfoMsg{seq: seq, code: code, material: material, usage: usage, err: err}
	}
}

func (p *detailPanel) applyInfo(msg materialInfoMsg) {
	if !p.open || msg.seq != p.seq {
		return
	}
	if msg.err != nil || msg.material == nil {
		p.info = panelInfoMissing
		return
	}
	p.info = panelInfoReady
	p.supplier = strings.TrimSpace(msg.material.SupplierName)
	if p.supplier == "" {
		p.supplier = strings.TrimSpace(msg.material.SupplierID)
	}
	p.spec = strings.TrimSpace(msg.material.Specification)
	if msg.usage != nil {
		p.usedIn = msg.usage.Usage
	}
}

const closeLabel = "[x]"

// closeHit reports whether (x, y), relative to the panel's top-left corner,
// falls on the close control drawn at the end of the title line.
func (p detailPanel) closeHit(x, y, width int) bool {
	if y != 1 {
		return false
	}
	right := width - 2
	return x >= right-len(closeLabel) && x < right
}

func (p detailPanel) View(s styles, width, height int) string {
	inner := width - 4
	if inner < 4 {
		inner = 4
	}
	titleWidth := inner - len(closeLabel) - 1
	title := runewidth.FillRight(runewidth.Truncate(p.title, titleWidth, "…"), titleWidth)

	lines := []string{
		s.detailTitle.Render(title) + " " + s.cmdHint.Render(closeLabel),
		s.tableRule.Render(strings.Repeat("─", inner)),
	}
	for _, f := range p.fields {
		lines = append(lines, s.fieldLabel.Render(f.label+"：")+s.fieldValue.Render(f.value))
	}
	lines = append(lines, "", s.fieldLabel.Render("特性"))
	for _, line := range strings.Split(p.characteristic, "\n") {
		lines = append(lines, wrapText(line, inner)...)
	}
	lines = append(lines, "")
	switch p.info {
	case panelInfoLoading:
		lines = append(lines, s.loadingRow.Render(loadingText))
	case panelInfoMissing:
		lines = append(lines, s.fieldLabel.Render("供應商：")+noDataText)
	default:
		lines = append(lines,
			s.fieldLabel.Render("供應商：")+orMissing(p.supplier),
			s.fieldLabel.Render("規格：")+orMissing(p.spec),
			s.fieldLabel.Render("使用配方：")+fmt.Sprintf("%d", len(p.usedIn)),
		)
		for _, u := range p.usedIn {
			lines = append(lines, s.subMenuItem.Render(u.RecipeID+" "+u.RecipeName))
		}
	}
	lines = append(lines, "", s.cmdHint.Render("x 關閉 · y 複製編號"))

	innerHeight := height - 2
	if innerHeight < 1 {
		innerHeight = 1
	}
	if len(lines) > innerHeight {
		lines = lines[:innerHeight]
	}
	clip := lipgloss.NewStyle().MaxWidth(inner)
	for i, line := range lines {
		lines[i] = clip.Render(line)
	}
	return s.detailPanel.Width(width - 2).Height(innerHeight).Render(strings.Join(lines, "\n"))
}

func orMissing(v string) string {
	if strings.TrimSpace(v) == "" {
		return missingValue
	}
	return v
}

// wrapText breaks s into lines of at most width terminal cells.
func wrapText(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}
	var (
		out  []string
		line strings.Builder
		w    int
	)
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > width {
			out = append(out, line.String())
			line.Reset()
			w = 0
		}
		line.WriteRune(r)
		w += rw
	}
	if line.Len() > 0 {
		out = append(out, line.String())
	}
	return out
}
