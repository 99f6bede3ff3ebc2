package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "配方"

type exportDoneMsg struct {
	path string
	err  error
}

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}_.-]+`)

// exportRecipe writes the recipe currently on screen to <dir>/<recipe id>.xlsx.
func exportRecipe(snap exportSnapshot, dir string) tea.Cmd {
	return func() tea.Msg {
		path, err := writeRecipeWorkbook(snap, dir)
		return exportDoneMsg{path: path, err: err}
	}
}

func writeRecipeWorkbook(snap exportSnapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := unsafeFileChars.ReplaceAllString(snap.recipeID, "_")
	if name == "" {
		name = "recipe"
	}
	path := filepath.Join(dir, name+".xlsx")

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return "", err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return "", err
	}

	row := 1
	for _, d := range snap.details {
		if err := setRow(f, row, []any{d[0], d[1]}); err != nil {
			return "", err
		}
		if err := styleCell(f, 1, row, bold); err != nil {
			return "", err
		}
		row++
	}
	row++

	values := make([]any, len(snap.headers))
	for i, h := range snap.headers {
		values[i] = h
	}
	if err := setRow(f, row, values); err != nil {
		return "", err
	}
	if len(values) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(values), row)
		if err := f.SetCellStyle(exportSheet, first, last, header); err != nil {
			return "", err
		}
	}
	row++
	for _, cells := range snap.rows {
		values := make([]any, len(cells))
		for i, c := range cells {
			values[i] = c
		}
		if err := setRow(f, row, values); err != nil {
			return "", err
		}
		row++
	}

	if err := setRow(f, row, []any{totalCostLabel, snap.total}); err != nil {
		return "", err
	}
	if err := styleCell(f, 1, row, bold); err != nil {
		return "", err
	}
	row += 2
	for _, notice := range snap.notices {
		if err := setRow(f, row, []any{notice}); err != nil {
			return "", err
		}
		row++
	}

	for i := range snap.headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(exportSheet, col, col, 14); err != nil {
			return "", err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(exportSheet, cell, &values)
}

func styleCell(f *excelize.File, col, row, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(exportSheet, cell, cell, style)
}
