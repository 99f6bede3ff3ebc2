package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/valueproject/recipe-lookup/internal/client"
	"github.com/valueproject/recipe-lookup/internal/recipe"
)

type captureLog struct {
	lines []string
}

func (c *captureLog) appendLog(line string) {
	c.lines = append(c.lines, line)
}

func (c *captureLog) contains(substr string) bool {
	for _, line := range c.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

type fakeRecipes struct {
	responses map[string]*recipe.RecipeResponse
	err       error
	material  *recipe.Material
}

func (f *fakeRecipes) Recipe(_ context.Context, id string) (*recipe.RecipeResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.responses[id], nil
}

func (f *fakeRecipes) Material(_ context.Context, code string) (*recipe.Material, error) {
	if f.material == nil {
		return nil, &client.StatusError{Code: 404, Status: "404 Not Found"}
	}
	return f.material, nil
}

func (f *fakeRecipes) MaterialUsage(_ context.Context, code string) (*recipe.MaterialUsageResponse, error) {
	return &recipe.MaterialUsageResponse{MaterialCode: code}, nil
}

func breadRecipe() *recipe.RecipeResponse {
	return &recipe.RecipeResponse{
		RecipeDetails: recipe.RecipeDetails{RecipeID: "G001", RecipeName: "奶油麵包", Version: "1"},
		Ingredients: []recipe.IngredientRow{
			{
				MaterialCode:   "M001",
				MaterialName:   "高筋麵粉",
				Unit:           "kg",
				Quantity:       recipe.Float(2.5),
				ProductBase:    recipe.Float(100),
				UnitPrice:      recipe.Float(45),
				Characteristic: "標示:無 過敏原:小麥",
			},
			{
				MaterialCode: "F001",
				MaterialName: "奶油餡",
				Quantity:     recipe.Float(1),
				UnitPrice:    recipe.Float(30),
				Cost:         recipe.Float(30),
				IsSubRecipe:  true,
			},
			{MaterialCode: "X9", MaterialName: "水", Quantity: recipe.Float(0)},
		},
		TotalCost: 142.5,
	}
}

func loadTable(t *testing.T, table *ingredientsTable, id string) {
	t.Helper()
	cmd := table.Load(id)
	if cmd == nil {
		t.Fatalf("Load(%q) returned no command", id)
	}
	table.Update(cmd())
}

func newLoadedTable(t *testing.T) (*ingredientsTable, *captureLog) {
	t.Helper()
	log := &captureLog{}
	table := newIngredientsTable(defaultIngredientHeaders, &fakeRecipes{
		responses: map[string]*recipe.RecipeResponse{"G001": breadRecipe()},
	}, log)
	table.SetSize(120, 40)
	loadTable(t, table, "G001")
	return table, log
}

func TestCellValue(t *testing.T) {
	row := recipe.IngredientRow{
		MaterialCode: "M001",
		MaterialName: "高筋麵粉",
		Unit:         "kg",
		Quantity:     recipe.Float(2.50),
		ProductBase:  recipe.Float(100),
		Notes:        "過篩",
		UnitPrice:    recipe.Float(1234.5),
		Cost:         recipe.Float(3086.25),
	}
	cases := map[string]string{
		"序號":    "3",
		"step":  "3",
		"步驟":    "3",
		"原料編號":  "M001",
		"原料名稱":  "高筋麵粉",
		"單位":    "kg",
		"原料用量":  "2.5",
		"產品基數":  "100",
		"產品數量":  "100",
		"附註":    "過篩",
		"單價未稅":  "$1,234.50",
		"成本":    "$3,086.25",
		"供應商":   "",
		"":      "",
		" 單位 ": "kg",
	}
	for label, want := range cases {
		if got := cellValue(label, row, 2); got != want {
			t.Errorf("cellValue(%q) = %q, want %q", label, got, want)
		}
	}
}

func TestCellValueMissingNumbers(t *testing.T) {
	row := recipe.IngredientRow{MaterialCode: "M002"}
	if got := cellValue("單價未稅", row, 0); got != "$0.00" {
		t.Errorf("unit price = %q", got)
	}
	if got := cellValue("成本", row, 0); got != "$0.00" {
		t.Errorf("cost = %q", got)
	}
	if got := cellValue("原料用量", row, 0); got != "" {
		t.Errorf("quantity = %q", got)
	}
}

func TestComputedCost(t *testing.T) {
	row := recipe.IngredientRow{Quantity: recipe.Float(2.5), UnitPrice: recipe.Float(45.00)}
	if got := cellValue("成本", row, 0); got != "$112.50" {
		t.Errorf("cost = %q, want $112.50", got)
	}
}

func TestColumnPlanFrozen(t *testing.T) {
	headers := []string{"原料編號", "供應商"}
	table := newIngredientsTable(headers, &fakeRecipes{
		responses: map[string]*recipe.RecipeResponse{"G001": breadRecipe()},
	}, nil)
	headers[0] = "原料名稱"
	loadTable(t, table, "G001")

	if got := table.rows[0].cells; len(got) != 2 || got[0] != "M001" || got[1] != "" {
		t.Errorf("cells = %q", got)
	}
}

func TestNoColumnsRendersEmptyCells(t *testing.T) {
	table := newIngredientsTable(nil, &fakeRecipes{
		responses: map[string]*recipe.RecipeResponse{"G001": breadRecipe()},
	}, nil)
	loadTable(t, table, "G001")
	if len(table.rows) != 3 {
		t.Fatalf("rows = %d", len(table.rows))
	}
	for _, row := range table.rows {
		if len(row.cells) != 0 {
			t.Errorf("cells = %q", row.cells)
		}
	}
}

func TestLoadRendersRows(t *testing.T) {
	table, _ := newLoadedTable(t)

	if len(table.rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(table.rows))
	}
	first := table.rows[0]
	if first.cells[0] != "1" || first.cells[8] != "$112.50" {
		t.Errorf("first row = %q", first.cells)
	}
	if table.total != "$142.50" {
		t.Errorf("total = %q", table.total)
	}
	if table.details[1] != "奶油麵包" || table.details[3] != missingValue {
		t.Errorf("details = %q", table.details)
	}
	if got := table.rows[2].cells[4]; got != "0" {
		t.Errorf("zero quantity = %q", got)
	}
}

func TestMaterialTypeCarried(t *testing.T) {
	table, _ := newLoadedTable(t)
	want := []string{"M", "F", ""}
	for i, row := range table.rows {
		if row.materialType != want[i] {
			t.Errorf("row %d materialType = %q, want %q", i, row.materialType, want[i])
		}
	}
}

func TestLoadEmptyIngredients(t *testing.T) {
	table := newIngredientsTable(defaultIngredientHeaders, &fakeRecipes{
		responses: map[string]*recipe.RecipeResponse{"G002": {RecipeDetails: recipe.RecipeDetails{RecipeID: "G002"}}},
	}, nil)
	loadTable(t, table, "G002")
	if len(table.rows) != 0 {
		t.Errorf("rows = %d, want 0", len(table.rows))
	}
	if table.total != "$0.00" {
		t.Errorf("total = %q", table.total)
	}
}

func TestLoadBlankIDIsNoop(t *testing.T) {
	log := &captureLog{}
	table := newIngredientsTable(defaultIngredientHeaders, &fakeRecipes{}, log)
	if cmd := table.Load("  "); cmd != nil {
		t.Fatal("expected no command for a blank id")
	}
	if table.generation != 0 || len(table.rows) != 0 {
		t.Errorf("state changed: generation=%d rows=%d", table.generation, len(table.rows))
	}
	if !log.contains("[WARN]") {
		t.Errorf("log = %q", log.lines)
	}
}

func TestLoadShowsLoadingState(t *testing.T) {
	table := newIngredientsTable(defaultIngredientHeaders, &fakeRecipes{}, nil)
	table.Load("G001")
	if len(table.rows) != 1 || table.rows[0].kind != rowLoading || table.rows[0].text != loadingText {
		t.Fatalf("rows = %+v", table.rows)
	}
	for i, v := range table.details {
		if v != loadingText {
			t.Errorf("detail %s = %q", recipeDetailLabels[i], v)
		}
	}
}

func TestFailedLoadShowsErrorRow(t *testing.T) {
	log := &captureLog{}
	table := newIngredientsTable(defaultIngredientHeaders, &fakeRecipes{
		err: &client.StatusError{Code: 500, Status: "500 Internal Server Error"},
	}, log)
	loadTable(t, table, "G001")

	if len(table.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(table.rows))
	}
	row := table.rows[0]
	if row.kind != rowError || row.text != loadFailedPrefix+"HTTP 500 Internal Server Error" {
		t.Errorf("row = %+v", row)
	}
	for i, v := range table.details {
		if v != loadingText {
			t.Errorf("detail %s = %q, want it left loading", recipeDetailLabels[i], v)
		}
	}
	if !log.contains("[ERROR]") {
		t.Errorf("log = %q", log.lines)
	}
}

func TestStaleLoadDropped(t *testing.T) {
	log := &captureLog{}
	fake := &fakeRecipes{responses: map[string]*recipe.RecipeResponse{
		"G001": breadRecipe(),
		"G002": {RecipeDetails: recipe.RecipeDetails{RecipeID: "G002", RecipeName: "吐司"}},
	}}
	table := newIngredientsTable(defaultIngredientHeaders, fake, log)

	first := table.Load("G001")
	second := table.Load("G002")
	secondMsg := second()
	firstMsg := first()

	table.Update(secondMsg)
	table.Update(firstMsg)

	if table.details[1] != "吐司" || len(table.rows) != 0 {
		t.Errorf("details = %q rows = %d", table.details, len(table.rows))
	}
	if !log.contains("略過過期") {
		t.Errorf("log = %q", log.lines)
	}
}

func TestSubRecipeNavigates(t *testing.T) {
	table, _ := newLoadedTable(t)

	cmd := table.activate(1)
	if cmd == nil {
		t.Fatal("expected a navigation command")
	}
	msg, ok := cmd().(navigateMsg)
	if !ok {
		t.Fatalf("msg = %#v, want navigateMsg", msg)
	}
	if msg.path != "/search/result/final/F001" {
		t.Errorf("path = %q", msg.path)
	}
	if table.panel.open || table.scrollLocked {
		t.Error("sub-recipe row opened the detail panel")
	}
}

func TestDetailPanelFromCells(t *testing.T) {
	table, _ := newLoadedTable(t)
	table.activate(0)

	p := table.panel
	if !p.open || p.title != "高筋麵粉 (M001)" {
		t.Fatalf("panel = %+v", p)
	}
	values := map[string]string{}
	for _, f := range p.fields {
		values[f.label] = f.value
	}
	if values["成本"] != "$112.50" || values["步驟"] != "1" || values["附註"] != missingValue {
		t.Errorf("fields = %v", values)
	}
	if p.characteristic != "標示:無\n過敏原:小麥" {
		t.Errorf("characteristic = %q", p.characteristic)
	}
}

func TestDetailPanelMissingRecord(t *testing.T) {
	table, log := newLoadedTable(t)
	delete(table.records, table.rows[0].key)
	table.activate(0)
	if !table.panel.open || table.panel.characteristic != noDataText {
		t.Errorf("panel = %+v", table.panel)
	}
	if !log.contains("找不到原料資料") {
		t.Errorf("log = %q", log.lines)
	}
}

func TestDetailPanelMaterialInfo(t *testing.T) {
	table, _ := newLoadedTable(t)
	table.source.(*fakeRecipes).material = &recipe.Material{MaterialCode: "M001", SupplierName: "統一麵粉廠"}
	cmd := table.activate(0)
	if cmd == nil {
		t.Fatal("expected a material lookup")
	}
	table.Update(cmd())
	if table.panel.info != panelInfoReady || table.panel.supplier != "統一麵粉廠" {
		t.Errorf("panel = %+v", table.panel)
	}

	// A reply for an earlier panel is ignored.
	table.Update(materialInfoMsg{seq: table.panel.seq - 1, err: errors.New("late")})
	if table.panel.info != panelInfoReady {
		t.Errorf("stale info applied: %+v", table.panel)
	}
}

func TestScrollLockAndOverlayClose(t *testing.T) {
	table, _ := newLoadedTable(t)

	table.activate(0)
	if !table.scrollLocked {
		t.Fatal("opening the panel should lock scrolling")
	}
	cursor := table.cursor
	table.Update(tea.KeyMsg{Type: tea.KeyDown})
	if table.cursor != cursor {
		t.Error("cursor moved while the panel was open")
	}

	// Clicks inside the panel keep it open.
	panelX := table.tableBoxWidth()
	table.HandleMouse(panelX+3, 5, tea.MouseMsg{Type: tea.MouseLeft})
	if !table.panel.open {
		t.Fatal("click inside the panel closed it")
	}

	table.HandleMouse(2, table.bodyTop(), tea.MouseMsg{Type: tea.MouseLeft})
	if table.panel.open || table.scrollLocked {
		t.Error("overlay click should close the panel and unlock scrolling")
	}
}

func TestCloseControls(t *testing.T) {
	table, _ := newLoadedTable(t)

	table.activate(0)
	width := table.panelWidth()
	table.HandleMouse(table.tableBoxWidth()+width-4, 1, tea.MouseMsg{Type: tea.MouseLeft})
	if table.panel.open {
		t.Error("close control did not close the panel")
	}

	table.activate(0)
	table.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !table.panel.open {
		t.Error("escape should not close the panel")
	}
	table.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if table.panel.open || table.scrollLocked {
		t.Error("x should close the panel")
	}
}

func TestClickRowActivates(t *testing.T) {
	table, _ := newLoadedTable(t)
	_, cmd := table.HandleMouse(4, table.bodyTop()+1, tea.MouseMsg{Type: tea.MouseLeft})
	if table.cursor != 1 || cmd == nil {
		t.Fatalf("cursor = %d cmd = %v", table.cursor, cmd)
	}
	if _, ok := cmd().(navigateMsg); !ok {
		t.Error("clicking the sub-recipe row should navigate")
	}
}

func TestViewRendersFooter(t *testing.T) {
	table, _ := newLoadedTable(t)
	view := table.View(newStyles(), true)
	for _, want := range []string{totalCostLabel, "$142.50", "高筋麵粉", "原料編號"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{112.5, "$112.50"},
		{0, "$0.00"},
		{1234567.891, "$1,234,567.89"},
		{-1.234, "-$1.23"},
		{-3086.25, "-$3,086.25"},
		{1e19, "$10000000000000000000.00"},
		{-1e19, "-$10000000000000000000.00"},
	}
	for _, tc := range cases {
		if got := formatCurrency(tc.in); got != tc.want {
			t.Errorf("formatCurrency(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
