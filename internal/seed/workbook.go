package seed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/valueproject/recipe-lookup/internal/catalog"
)

// Column headers accepted in workbook sheets, Chinese as exported by the ERP
// plus the database column names.
var headerAliases = map[string]string{
	"貨品編號":     "material_code",
	"貨品名稱":     "material_name",
	"規格":       "specification",
	"單位":       "unit",
	"單價未稅":     "unit_price_wo_tax",
	"特性描述":     "characteristic",
	"供應商號":     "supplier_id",
	"供應商":      "supplier_name",
	"材料類型":     "material_type",
	"產品編號":     "recipe_id",
	"產品名稱":     "recipe_name",
	"配方類型":     "recipe_type",
	"版本別":      "version",
	"標準工時":     "standard_hours",
	"單據備註":     "notes",
	"步驟":       "step_order",
	"原料編號":     "material_code",
	"原料名稱":     "material_name",
	"原料用量":     "quantity",
	"產品基數":     "product_base",
	"附註":       "notes",
	"注意事項":     "precaution",
	"序號(PK)":   "step_id",
	"建立時間":     "created_at",
	"unit_price": "unit_price_wo_tax",
}

type sheetKind int

const (
	sheetUnknown sheetKind = iota
	sheetMaterials
	sheetRecipes
	sheetSteps
)

// classifySheet maps a sheet name to its table and the type letter implied by
// the name (material_a -> A, g_bom -> G).
func classifySheet(name string) (sheetKind, string) {
	lower := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.HasPrefix(lower, "recipe_step"):
		return sheetSteps, ""
	case strings.HasPrefix(lower, "material"):
		if suffix := strings.TrimPrefix(lower, "material_"); len(suffix) == 1 {
			return sheetMaterials, strings.ToUpper(suffix)
		}
		return sheetMaterials, ""
	case strings.HasSuffix(lower, "bom"):
		if prefix := strings.TrimSuffix(lower, "_bom"); len(prefix) == 1 {
			return sheetRecipes, strings.ToUpper(prefix)
		}
		return sheetRecipes, ""
	default:
		return sheetUnknown, ""
	}
}

// LoadWorkbook reads materials, bom and recipe_step sheets from an .xlsx file.
// Sheets with other names are ignored.
func LoadWorkbook(path string) (catalog.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return catalog.Dataset{}, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	var ds catalog.Dataset
	for _, sheet := range f.GetSheetList() {
		kind, typeLetter := classifySheet(sheet)
		if kind == sheetUnknown {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return catalog.Dataset{}, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		records := sheetRecords(rows)
		for i, rec := range records {
			switch kind {
			case sheetMaterials:
				m, err := materialFromRecord(rec, typeLetter)
				if err != nil {
					return catalog.Dataset{}, fmt.Errorf("%s row %d: %w", sheet, i+2, err)
				}
				ds.Materials = append(ds.Materials, m)
			case sheetRecipes:
				ds.Recipes = append(ds.Recipes, recipeFromRecord(rec, typeLetter))
			case sheetSteps:
				st, err := stepFromRecord(rec)
				if err != nil {
					return catalog.Dataset{}, fmt.Errorf("%s row %d: %w", sheet, i+2, err)
				}
				ds.Steps = append(ds.Steps, st)
			}
		}
	}
	return ds, nil
}

// sheetRecords turns rows into header-keyed maps. The first row is the header.
func sheetRecords(rows [][]string) []map[string]string {
	if len(rows) < 2 {
		return nil
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if alias, ok := headerAliases[h]; ok {
			h = alias
		}
		headers[i] = h
	}
	var out []map[string]string
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(headers))
		empty := true
		for i, h := range headers {
			if h == "" || i >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[i])
			if v != "" {
				empty = false
			}
			rec[h] = v
		}
		if !empty {
			out = append(out, rec)
		}
	}
	return out
}

func materialFromRecord(rec map[string]string, typeLetter string) (catalog.Material, error) {
	price, err := parseNumber(rec["unit_price_wo_tax"])
	if err != nil {
		return catalog.Material{}, fmt.Errorf("unit price: %w", err)
	}
	materialType := strings.ToUpper(rec["material_type"])
	if materialType == "" {
		materialType = typeLetter
	}
	return catalog.Material{
		Code:           rec["material_code"],
		Name:           rec["material_name"],
		Type:           materialType,
		Specification:  rec["specification"],
		Unit:           rec["unit"],
		UnitPrice:      price,
		Characteristic: rec["characteristic"],
		SupplierID:     rec["supplier_id"],
		SupplierName:   rec["supplier_name"],
	}, nil
}

func recipeFromRecord(rec map[string]string, typeLetter string) catalog.Recipe {
	recipeType := strings.ToUpper(rec["recipe_type"])
	if recipeType == "" {
		recipeType = typeLetter
	}
	return catalog.Recipe{
		ID:            rec["recipe_id"],
		Name:          rec["recipe_name"],
		Type:          recipeType,
		Version:       rec["version"],
		StandardHours: rec["standard_hours"],
		Specification: rec["specification"],
		Notes:         rec["notes"],
		CreatedAt:     rec["created_at"],
	}
}

func stepFromRecord(rec map[string]string) (catalog.Step, error) {
	order, err := parseNumber(rec["step_order"])
	if err != nil {
		return catalog.Step{}, fmt.Errorf("step order: %w", err)
	}
	quantity, err := parseNumber(rec["quantity"])
	if err != nil {
		return catalog.Step{}, fmt.Errorf("quantity: %w", err)
	}
	base, err := parseNumber(rec["product_base"])
	if err != nil {
		return catalog.Step{}, fmt.Errorf("product base: %w", err)
	}
	return catalog.Step{
		RecipeID:     rec["recipe_id"],
		Order:        int(order),
		MaterialCode: rec["material_code"],
		Unit:         rec["unit"],
		Quantity:     quantity,
		ProductBase:  base,
		Notes:        rec["notes"],
		Precaution:   rec["precaution"],
	}, nil
}

func parseNumber(raw string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" || strings.EqualFold(raw, "nan") {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
