// Package seed loads catalog datasets from YAML files and Excel workbooks.
package seed

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/valueproject/recipe-lookup/internal/catalog"
)

type yamlDataset struct {
	Materials []yamlMaterial `yaml:"materials"`
	Recipes   []yamlRecipe   `yaml:"recipes"`
}

type yamlMaterial struct {
	Code           string  `yaml:"code"`
	Name           string  `yaml:"name"`
	Type           string  `yaml:"type,omitempty"`
	Specification  string  `yaml:"specification,omitempty"`
	Unit           string  `yaml:"unit,omitempty"`
	UnitPrice      float64 `yaml:"unit_price,omitempty"`
	Characteristic string  `yaml:"characteristic,omitempty"`
	SupplierID     string  `yaml:"supplier_id,omitempty"`
	SupplierName   string  `yaml:"supplier_name,omitempty"`
}

type yamlRecipe struct {
	ID            string     `yaml:"id"`
	Name          string     `yaml:"name"`
	Type          string     `yaml:"type,omitempty"`
	Version       string     `yaml:"version,omitempty"`
	StandardHours string     `yaml:"standard_hours,omitempty"`
	Specification string     `yaml:"specification,omitempty"`
	Notes         string     `yaml:"notes,omitempty"`
	CreatedAt     string     `yaml:"created_at,omitempty"`
	Steps         []yamlStep `yaml:"steps,omitempty"`
}

type yamlStep struct {
	Order       int     `yaml:"order,omitempty"`
	Code        string  `yaml:"code"`
	Unit        string  `yaml:"unit,omitempty"`
	Quantity    float64 `yaml:"quantity"`
	ProductBase float64 `yaml:"product_base,omitempty"`
	Notes       string  `yaml:"notes,omitempty"`
	Precaution  string  `yaml:"precaution,omitempty"`
}

// Expand resolves glob patterns (doublestar syntax, e.g. seeds/**/*.yaml) into a
// sorted, de-duplicated file list. A pattern without metacharacters must name an
// existing file.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("seed pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 && !hasMeta(pattern) {
			return nil, fmt.Errorf("seed file not found: %s", pattern)
		}
		for _, match := range matches {
			clean := filepath.Clean(match)
			if seen[clean] {
				continue
			}
			seen[clean] = true
			files = append(files, clean)
		}
	}
	sort.Strings(files)
	return files, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// LoadFiles reads every file and merges the datasets in order.
func LoadFiles(files []string) (catalog.Dataset, error) {
	var ds catalog.Dataset
	for _, file := range files {
		part, err := LoadFile(file)
		if err != nil {
			return catalog.Dataset{}, err
		}
		ds.Merge(part)
	}
	return ds, nil
}

// LoadFile dispatches on the extension: .yaml/.yml or .xlsx.
func LoadFile(path string) (catalog.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".xlsx", ".xlsm":
		return LoadWorkbook(path)
	default:
		return catalog.Dataset{}, fmt.Errorf("unsupported seed file %s", path)
	}
}

// LoadYAML reads a dataset whose recipes carry their steps inline.
func LoadYAML(path string) (catalog.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog.Dataset{}, err
	}
	return ParseYAML(data)
}

func ParseYAML(data []byte) (catalog.Dataset, error) {
	var raw yamlDataset
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return catalog.Dataset{}, fmt.Errorf("parse seed yaml: %w", err)
	}

	var ds catalog.Dataset
	for _, m := range raw.Materials {
		ds.Materials = append(ds.Materials, catalog.Material{
			Code:           strings.TrimSpace(m.Code),
			Name:           strings.TrimSpace(m.Name),
			Type:           strings.ToUpper(strings.TrimSpace(m.Type)),
			Specification:  m.Specification,
			Unit:           m.Unit,
			UnitPrice:      m.UnitPrice,
			Characteristic: m.Characteristic,
			SupplierID:     m.SupplierID,
			SupplierName:   m.SupplierName,
		})
	}
	for _, r := range raw.Recipes {
		id := strings.TrimSpace(r.ID)
		ds.Recipes = append(ds.Recipes, catalog.Recipe{
			ID:            id,
			Name:          strings.TrimSpace(r.Name),
			Type:          strings.ToUpper(strings.TrimSpace(r.Type)),
			Version:       r.Version,
			StandardHours: r.StandardHours,
			Specification: r.Specification,
			Notes:         r.Notes,
			CreatedAt:     r.CreatedAt,
		})
		for i, st := range r.Steps {
			order := st.Order
			if order == 0 {
				order = i + 1
			}
			ds.Steps = append(ds.Steps, catalog.Step{
				RecipeID:     id,
				Order:        order,
				MaterialCode: strings.TrimSpace(st.Code),
				Unit:         st.Unit,
				Quantity:     st.Quantity,
				ProductBase:  st.ProductBase,
				Notes:        st.Notes,
				Precaution:   st.Precaution,
			})
		}
	}
	return ds, nil
}
