package main

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/valueproject/recipe-lookup/internal/recipe"
)

const (
	loadingText      = "載入中..."
	loadFailedPrefix = "載入失敗: "
	missingValue     = "-"
	noDataText       = "無資料"
	totalCostLabel   = "總成本"
	maxCellWidth     = 28
)

type ingredientField int

const (
	fieldNone ingredientField = iota
	fieldStep
	fieldMaterialCode
	fieldMaterialName
	fieldUnit
	fieldQuantity
	fieldProductBase
	fieldNotes
	fieldUnitPrice
	fieldCost
)

var ingredientFieldByLabel = map[string]ingredientField{
	"step": fieldStep,
	"序號":   fieldStep,
	"步驟":   fieldStep,
	"原料編號": fieldMaterialCode,
	"原料名稱": fieldMaterialName,
	"單位":   fieldUnit,
	"原料用量": fieldQuantity,
	"產品基數": fieldProductBase,
	"產品數量": fieldProductBase,
	"附註":   fieldNotes,
	"單價未稅": fieldUnitPrice,
	"成本":   fieldCost,
}

var defaultIngredientHeaders = []string{"序號", "原料編號", "原料名稱", "單位", "原料用量", "產品數量", "附註", "單價未稅", "成本"}

func fieldForLabel(label string) ingredientField {
	return ingredientFieldByLabel[strings.TrimSpace(label)]
}

type planColumn struct {
	label string
	field ingredientField
}

// columnPlan maps each header label to the ingredient field it displays.
// It is built once from the headers and never changes afterwards.
type columnPlan struct {
	columns []planColumn
}

func newColumnPlan(headers []string) columnPlan {
	cols := make([]planColumn, 0, len(headers))
	for _, h := range headers {
		label := strings.TrimSpace(h)
		cols = append(cols, planColumn{label: label, field: fieldForLabel(label)})
	}
	return columnPlan{columns: cols}
}

func (p columnPlan) Len() int { return len(p.columns) }

func (p columnPlan) Labels() []string {
	out := make([]string, len(p.columns))
	for i, c := range p.columns {
		out[i] = c.label
	}
	return out
}

// index returns the first column showing field, or -1.
func (p columnPlan) index(field ingredientField) int {
	for i, c := range p.columns {
		if c.field == field {
			return i
		}
	}
	return -1
}

// cellValue is the display string of one ingredient for the column labelled
// label. Unknown labels yield "".
func cellValue(label string, row recipe.IngredientRow, index int) string {
	return fieldValue(fieldForLabel(label), row, index)
}

func fieldValue(field ingredientField, row recipe.IngredientRow, index int) string {
	switch field {
	case fieldStep:
		return strconv.Itoa(index + 1)
	case fieldMaterialCode:
		return row.MaterialCode
	case fieldMaterialName:
		return row.MaterialName
	case fieldUnit:
		return row.Unit
	case fieldQuantity:
		return formatQuantity(row.Quantity)
	case fieldProductBase:
		return formatQuantity(row.ProductBase)
	case fieldNotes:
		return row.Notes
	case fieldUnitPrice:
		return formatCurrency(row.UnitPrice.Or(0))
	case fieldCost:
		return formatCurrency(ingredientCost(row))
	}
	return ""
}

func formatQuantity(v recipe.OptionalFloat) string {
	if !v.Valid || !finite(v.Value) {
		return ""
	}
	return strconv.FormatFloat(v.Value, 'f', -1, 64)
}

// maxGroupedCurrency is the largest magnitude humanize can group without
// overflowing its int64 conversion.
const maxGroupedCurrency = 9e18

func formatCurrency(v float64) string {
	if !finite(v) {
		v = 0
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v >= maxGroupedCurrency {
		return sign + "$" + strconv.FormatFloat(v, 'f', 2, 64)
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", v)
}

// ingredientCost prefers the cost sent by the service and falls back to
// quantity × unit price.
func ingredientCost(row recipe.IngredientRow) float64 {
	if row.Cost.Valid && finite(row.Cost.Value) {
		return row.Cost.Value
	}
	if row.Quantity.Valid && row.UnitPrice.Valid {
		if cost := row.Quantity.Value * row.UnitPrice.Value; finite(cost) {
			return cost
		}
	}
	return 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var recipeDetailLabels = []string{"配方編號", "配方名稱", "版本", "標準工時", "規格", "建立日期", "備註"}

func recipeDetailValues(d recipe.RecipeDetails) []string {
	values := []string{d.RecipeID, d.RecipeName, d.Version, d.StandardHours, d.Specification, d.CreatedAt, d.Notes}
	for i, v := range values {
		if v = strings.TrimSpace(v); v == "" {
			v = missingValue
		}
		values[i] = v
	}
	return values
}

type rowKind int

const (
	rowData rowKind = iota
	rowLoading
	rowError
)

// rowKey identifies a rendered row. Codes may repeat within a recipe, so the
// position is part of the key.
type rowKey struct {
	code string
	seq  int
}

type renderedRow struct {
	kind         rowKind
	key          rowKey
	cells        []string
	text         string
	materialType string
	subRecipe    bool
}

type recipeFetcher interface {
	Recipe(ctx context.Context, id string) (*recipe.RecipeResponse, error)
}

type materialLookup interface {
	Material(ctx context.Context, code string) (*recipe.Material, error)
	MaterialUsage(ctx context.Context, code string) (*recipe.MaterialUsageResponse, error)
}

type recipeSource interface {
	recipeFetcher
	materialLookup
}

type recipeLoadedMsg struct {
	generation uint64
	recipeID   string
	resp       *recipe.RecipeResponse
	err        error
}

// ingredientsTable shows one recipe: its header fields, the ingredient rows,
// the total cost and, on demand, the detail panel of one ingredient.
type ingredientsTable struct {
	plan   columnPlan
	source recipeSource
	log    eventLog

	generation uint64
	recipeID   string
	details    []string
	notices    []string
	rows       []renderedRow
	records    map[rowKey]recipe.IngredientRow
	total      string

	cursor int
	offset int
	width  int
	height int

	panel        detailPanel
	panelSeq     uint64
	scrollLocked bool
}

func newIngredientsTable(headers []string, source recipeSource, log eventLog) *ingredientsTable {
	t := &ingredientsTable{
		plan:    newColumnPlan(headers),
		source:  source,
		log:     log,
		records: make(map[rowKey]recipe.IngredientRow),
		total:   formatCurrency(0),
	}
	t.details = make([]string, len(recipeDetailLabels))
	for i := range t.details {
		t.details[i] = missingValue
	}
	return t
}

func (t *ingredientsTable) logf(format string, args ...any) {
	if t.log != nil {
		t.log.appendLog(fmt.Sprintf(format, args...))
	}
}

// Load starts fetching recipeID. Responses to earlier loads are dropped once
// it has been called.
func (t *ingredientsTable) Load(recipeID string) tea.Cmd {
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		t.logf("[WARN] 缺少配方編號，略過載入")
		return nil
	}
	t.generation++
	generation := t.generation
	t.recipeID = recipeID
	t.setLoading()
	t.logf("[INFO] 載入配方 %s", recipeID)

	source := t.source
	return func() tea.Msg {
		if source == nil {
			return recipeLoadedMsg{generation: generation, recipeID: recipeID, err: fmt.Errorf("no recipe service")}
		}
		resp, err := source.Recipe(context.Background(), recipeID)
		return recipeLoadedMsg{generation: generation, recipeID: recipeID, resp: resp, err: err}
	}
}

func (t *ingredientsTable) setLoading() {
	for i := range t.details {
		t.details[i] = loadingText
	}
	t.rows = []renderedRow{{kind: rowLoading, text: loadingText}}
	t.records = make(map[rowKey]recipe.IngredientRow)
	t.cursor, t.offset = 0, 0
}

// apply reports whether msg belonged to the latest load.
func (t *ingredientsTable) apply(msg recipeLoadedMsg) bool {
	if msg.generation != t.generation {
		t.logf("[DEBUG] 略過過期的配方回應 %s", msg.recipeID)
		return false
	}
	if msg.err != nil {
		t.logf("[ERROR] 載入配方 %s 失敗: %v", msg.recipeID, msg.err)
		t.rows = []renderedRow{{kind: rowError, text: loadFailedPrefix + msg.err.Error()}}
		t.records = make(map[rowKey]recipe.IngredientRow)
		t.cursor, t.offset = 0, 0
		return true
	}
	resp := msg.resp
	if resp == nil {
		resp = &recipe.RecipeResponse{}
	}
	t.details = recipeDetailValues(resp.RecipeDetails)
	t.notices = append([]string(nil), resp.Notices...)
	t.setRows(resp.Ingredients)
	t.total = formatCurrency(resp.TotalCost)
	t.logf("[INFO] 配方 %s 共 %d 項原料", msg.recipeID, len(resp.Ingredients))
	return true
}

func (t *ingredientsTable) setRows(ingredients []recipe.IngredientRow) {
	t.rows = make([]renderedRow, 0, len(ingredients))
	t.records = make(map[rowKey]recipe.IngredientRow, len(ingredients))
	for i, rec := range ingredients {
		key := rowKey{code: rec.MaterialCode, seq: i}
		row := renderedRow{
			kind:         rowData,
			key:          key,
			cells:        make([]string, t.plan.Len()),
			materialType: recipe.MaterialTypeTag(rec.MaterialCode),
			subRecipe:    rec.IsSubRecipe,
		}
		for j, col := range t.plan.columns {
			row.cells[j] = fieldValue(col.field, rec, i)
		}
		t.records[key] = rec
		t.rows = append(t.rows, row)
	}
	t.cursor, t.offset = 0, 0
}

// cellText returns the displayed text of field in row, or "" when no column
// shows it.
func (t *ingredientsTable) cellText(row renderedRow, field ingredientField) string {
	idx := t.plan.index(field)
	if idx < 0 || idx >= len(row.cells) {
		return ""
	}
	return row.cells[idx]
}

func navigateTo(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

// activate handles Enter or a click on row i. Sub-recipe rows navigate to
// their own recipe; other rows open the detail panel.
func (t *ingredientsTable) activate(i int) tea.Cmd {
	if i < 0 || i >= len(t.rows) || t.rows[i].kind != rowData {
		return nil
	}
	row := t.rows[i]
	if row.subRecipe {
		target := recipeLocation(row.key.code)
		t.logf("[INFO] 前往子配方 %s", target)
		return navigateTo(target)
	}
	return t.openPanel(row)
}

func (t *ingredientsTable) openPanel(row renderedRow) tea.Cmd {
	code := t.cellText(row, fieldMaterialCode)
	if code == "" {
		code = row.key.code
	}
	name := t.cellText(row, fieldMaterialName)

	t.panelSeq++
	p := detailPanel{
		open:  true,
		seq:   t.panelSeq,
		code:  code,
		title: fmt.Sprintf("%s (%s)", name, code),
		info:  panelInfoLoading,
	}
	for _, f := range detailPanelFields {
		value := t.cellText(row, f.field)
		if strings.TrimSpace(value) == "" {
			value = missingValue
		}
		p.fields = append(p.fields, detailField{label: f.label, value: value})
	}
	rec, ok := t.records[row.key]
	switch {
	case !ok:
		t.logf("[WARN] 找不到原料資料: %s", code)
		p.characteristic = noDataText
	default:
		p.characteristic = formatCharacteristic(rec.Characteristic)
		if p.characteristic == "" {
			p.characteristic = noDataText
		}
	}
	t.panel = p
	t.scrollLocked = true
	return fetchMaterialInfo(t.source, p.seq, code)
}

func (t *ingredientsTable) closePanel() {
	t.panel.open = false
	t.scrollLocked = false
}

func (t *ingredientsTable) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

func (t *ingredientsTable) Update(msg tea.Msg) (column, tea.Cmd) {
	switch msg := msg.(type) {
	case recipeLoadedMsg:
		t.apply(msg)
		return t, nil
	case materialInfoMsg:
		t.panel.applyInfo(msg)
		return t, nil
	case tea.KeyMsg:
		return t, t.handleKey(msg)
	}
	return t, nil
}

func (t *ingredientsTable) handleKey(msg tea.KeyMsg) tea.Cmd {
	if t.panel.open {
		switch msg.String() {
		case "x":
			t.closePanel()
		case "y":
			return copyToClipboard(t.panel.code, t.log)
		}
		return nil
	}
	switch msg.String() {
	case "up", "k":
		t.moveCursor(-1)
	case "down", "j":
		t.moveCursor(1)
	case "pgup":
		t.moveCursor(-t.visibleRows())
	case "pgdown":
		t.moveCursor(t.visibleRows())
	case "home", "g":
		t.moveCursor(-len(t.rows))
	case "end", "G":
		t.moveCursor(len(t.rows))
	case "enter":
		return t.activate(t.cursor)
	}
	return nil
}

func copyToClipboard(text string, log eventLog) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			if log != nil {
				log.appendLog(fmt.Sprintf("[WARN] 無法寫入剪貼簿: %v", err))
			}
			return toastMsg{text: "剪貼簿無法使用"}
		}
		return toastMsg{text: "已複製 " + text}
	}
}

func (t *ingredientsTable) moveCursor(delta int) {
	if t.scrollLocked || len(t.rows) == 0 {
		return
	}
	t.cursor += delta
	if t.cursor < 0 {
		t.cursor = 0
	}
	if t.cursor >= len(t.rows) {
		t.cursor = len(t.rows) - 1
	}
	t.ensureCursorVisible()
}

func (t *ingredientsTable) ensureCursorVisible() {
	visible := t.visibleRows()
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+visible {
		t.offset = t.cursor - visible + 1
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

// Layout inside the framed box, top to bottom: title, detail lines, blank,
// column header, rule, body rows, rule, total, notices.
const (
	tableFrame      = 1
	tableTitleLines = 1
	tableGapLines   = 1
	tableHeadLines  = 2
	tableFootLines  = 2
)

func detailLineCount() int {
	return (len(recipeDetailLabels) + 1) / 2
}

func (t *ingredientsTable) bodyTop() int {
	return tableFrame + tableTitleLines + detailLineCount() + tableGapLines + tableHeadLines
}

func (t *ingredientsTable) noticeLines() []string {
	rendered := renderNotices(t.notices)
	if rendered == "" {
		return nil
	}
	lines := strings.Split(rendered, "\n")
	budget := t.height - 2*tableFrame - (t.bodyTop() - tableFrame) - tableFootLines - 3
	if budget < 0 {
		budget = 0
	}
	if len(lines) > budget {
		lines = lines[:budget]
	}
	return lines
}

func (t *ingredientsTable) visibleRows() int {
	n := t.height - 2*tableFrame - (t.bodyTop() - tableFrame) - tableFootLines - len(t.noticeLines())
	if n < 1 {
		n = 1
	}
	return n
}

func (t *ingredientsTable) panelWidth() int {
	w := t.width * 2 / 5
	if w < 30 {
		w = 30
	}
	if w > 48 {
		w = 48
	}
	if w > t.width-10 {
		w = t.width - 10
	}
	if w < 0 {
		w = 0
	}
	return w
}

func (t *ingredientsTable) tableBoxWidth() int {
	if t.panel.open {
		return t.width - t.panelWidth()
	}
	return t.width
}

// HandleMouse takes coordinates relative to the top-left of the page.
func (t *ingredientsTable) HandleMouse(localX, localY int, msg tea.MouseMsg) (column, tea.Cmd) {
	if t.panel.open {
		if msg.Type != tea.MouseLeft {
			return t, nil
		}
		panelX := t.tableBoxWidth()
		if localX < panelX {
			t.closePanel()
			return t, nil
		}
		if t.panel.closeHit(localX-panelX, localY, t.panelWidth()) {
			t.closePanel()
		}
		return t, nil
	}
	switch msg.Type {
	case tea.MouseWheelUp:
		t.moveCursor(-1)
	case tea.MouseWheelDown:
		t.moveCursor(1)
	case tea.MouseLeft:
		top := t.bodyTop()
		if localY < top || localY >= top+t.visibleRows() {
			return t, nil
		}
		idx := t.offset + localY - top
		if idx >= len(t.rows) {
			return t, nil
		}
		t.cursor = idx
		return t, t.activate(idx)
	}
	return t, nil
}

func (t *ingredientsTable) Title() string {
	if t.recipeID == "" {
		return "配方明細"
	}
	return "配方明細 · " + t.recipeID
}

func (t *ingredientsTable) FocusValue() string {
	if t.panel.open {
		return t.panel.title
	}
	if t.cursor >= 0 && t.cursor < len(t.rows) && t.rows[t.cursor].kind == rowData {
		return fmt.Sprintf("第 %d/%d 項", t.cursor+1, len(t.rows))
	}
	return ""
}

func (t *ingredientsTable) View(s styles, focused bool) string {
	boxWidth := t.tableBoxWidth()
	box := s.panel
	if focused && !t.panel.open {
		box = s.panelFocused
	}
	inner := boxWidth - 2*tableFrame
	if inner < 1 {
		inner = 1
	}
	innerHeight := t.height - 2*tableFrame
	if innerHeight < 1 {
		innerHeight = 1
	}

	var lines []string
	lines = append(lines, s.columnTitle.Render(t.Title()))
	lines = append(lines, t.renderDetails(s, inner)...)
	lines = append(lines, "")

	widths := t.columnWidths()
	rule := s.tableRule.Render(strings.Repeat("─", inner))
	lines = append(lines, s.tableHeader.Render(joinCells(t.plan.Labels(), widths)), rule)

	visible := t.visibleRows()
	for i := t.offset; i < len(t.rows) && i < t.offset+visible; i++ {
		lines = append(lines, t.renderRow(s, i, widths, focused))
	}
	for len(lines) < t.bodyTop()-tableFrame+visible {
		lines = append(lines, "")
	}
	lines = append(lines, rule, s.footer.Render(totalCostLabel)+" │ "+t.total)
	lines = append(lines, t.noticeLines()...)

	clip := lipgloss.NewStyle().MaxWidth(inner)
	for i, line := range lines {
		lines[i] = clip.Render(line)
	}
	if len(lines) > innerHeight {
		lines = lines[:innerHeight]
	}
	body := box.Width(inner).Height(innerHeight).Render(strings.Join(lines, "\n"))
	if !t.panel.open {
		return body
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, s.overlay.Render(body), t.panel.View(s, t.panelWidth(), t.height))
}

func (t *ingredientsTable) renderDetails(s styles, width int) []string {
	half := width / 2
	var out []string
	for i := 0; i < len(recipeDetailLabels); i += 2 {
		line := fitCell(s.fieldLabel.Render(recipeDetailLabels[i]+"：")+t.details[i], half)
		if i+1 < len(recipeDetailLabels) {
			line += s.fieldLabel.Render(recipeDetailLabels[i+1]+"：") + t.details[i+1]
		}
		out = append(out, line)
	}
	return out
}

func (t *ingredientsTable) columnWidths() []int {
	widths := make([]int, t.plan.Len())
	for i, label := range t.plan.Labels() {
		widths[i] = runewidth.StringWidth(label)
	}
	for _, row := range t.rows {
		for i, cell := range row.cells {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i, w := range widths {
		if w > maxCellWidth {
			widths[i] = maxCellWidth
		}
		if w < 2 {
			widths[i] = 2
		}
	}
	return widths
}

func (t *ingredientsTable) renderRow(s styles, i int, widths []int, focused bool) string {
	row := t.rows[i]
	switch row.kind {
	case rowLoading:
		return s.loadingRow.Render(row.text)
	case rowError:
		return s.errorRow.Render(row.text)
	}
	nameIdx := t.plan.index(fieldMaterialName)
	parts := make([]string, len(row.cells))
	for j, cell := range row.cells {
		parts[j] = runewidth.FillRight(runewidth.Truncate(cell, widths[j], "…"), widths[j])
		if row.subRecipe && j == nameIdx {
			parts[j] = s.subRecipe.Render(parts[j])
		}
	}
	line := strings.Join(parts, "  ")
	if focused && i == t.cursor && !t.panel.open {
		return s.tableSel.Render(line)
	}
	return s.tableCell.Render(line)
}

func joinCells(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = runewidth.FillRight(runewidth.Truncate(cell, widths[i], "…"), widths[i])
	}
	return strings.Join(parts, "  ")
}

// fitCell pads or truncates a possibly styled string to width cells.
func fitCell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

// exportSnapshot is what the workbook export writes out.
type exportSnapshot struct {
	recipeID string
	details  [][2]string
	headers  []string
	rows     [][]string
	total    string
	notices  []string
}

func (t *ingredientsTable) snapshot() (exportSnapshot, bool) {
	if t.recipeID == "" {
		return exportSnapshot{}, false
	}
	snap := exportSnapshot{
		recipeID: t.recipeID,
		headers:  t.plan.Labels(),
		total:    t.total,
		notices:  append([]string(nil), t.notices...),
	}
	for i, label := range recipeDetailLabels {
		snap.details = append(snap.details, [2]string{label, t.details[i]})
	}
	for _, row := range t.rows {
		if row.kind != rowData {
			return exportSnapshot{}, false
		}
		snap.rows = append(snap.rows, append([]string(nil), row.cells...))
	}
	return snap, true
}
