// Package catalog is the SQLite-backed recipe and material catalog behind the
// recipe service. It owns the bom, materials and recipe_step tables and builds
// the costed recipe view returned by GET /api/recipe/{id}.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a recipe or material does not exist.
var ErrNotFound = errors.New("catalog: not found")

type Recipe struct {
	ID            string
	Name          string
	Type          string // "G" finished or "F" semi-finished
	Version       string
	StandardHours string
	Specification string
	Notes         string
	CreatedAt     string
}

type Material struct {
	Code           string
	Name           string
	Type           string // "A" general or "B" controlled
	Specification  string
	Unit           string
	UnitPrice      float64
	Characteristic string
	SupplierID     string
	SupplierName   string
}

// Step is one ingredient line of a recipe. MaterialName and MaterialType come
// from the materials table and are empty when the code names a recipe.
type Step struct {
	RecipeID     string
	Order        int
	MaterialCode string
	Unit         string
	Quantity     float64
	ProductBase  float64
	Notes        string
	Precaution   string
	MaterialName string
	MaterialType string
}

// Usage is one recipe that consumes a given material.
type Usage struct {
	RecipeID    string
	RecipeName  string
	RecipeType  string
	Version     string
	Unit        string
	Quantity    float64
	ProductBase float64
}

// Dataset is a batch of rows to import.
type Dataset struct {
	Materials []Material
	Recipes   []Recipe
	Steps     []Step
}

func (d Dataset) Empty() bool {
	return len(d.Materials) == 0 && len(d.Recipes) == 0 && len(d.Steps) == 0
}

// Merge appends other onto d.
func (d *Dataset) Merge(other Dataset) {
	d.Materials = append(d.Materials, other.Materials...)
	d.Recipes = append(d.Recipes, other.Recipes...)
	d.Steps = append(d.Steps, other.Steps...)
}

type Stats struct {
	Materials int
	Recipes   int
	Steps     int
}

type Store struct {
	db    *sql.DB
	path  string
	costs singleflight.Group
}

// Open opens (creating if needed) the catalog database at path and migrates it.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("catalog: database path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

func migrate(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS bom (
			recipe_id TEXT PRIMARY KEY,
			recipe_name TEXT NOT NULL,
			recipe_type TEXT NOT NULL DEFAULT 'G',
			version TEXT NOT NULL DEFAULT '',
			standard_hours TEXT,
			specification TEXT,
			notes TEXT,
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_bom_type ON bom(recipe_type);`,
		`CREATE TABLE IF NOT EXISTS materials (
			material_code TEXT PRIMARY KEY,
			material_name TEXT NOT NULL,
			material_type TEXT NOT NULL DEFAULT 'A',
			specification TEXT,
			unit TEXT,
			unit_price_wo_tax REAL,
			characteristic TEXT,
			supplier_id TEXT,
			supplier_name TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS recipe_step (
			step_id INTEGER PRIMARY KEY AUTOINCREMENT,
			recipe_id TEXT NOT NULL,
			step_order INTEGER NOT NULL,
			material_code TEXT NOT NULL,
			unit TEXT,
			quantity REAL NOT NULL DEFAULT 0,
			product_base REAL NOT NULL DEFAULT 1,
			notes TEXT,
			precaution TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_step_recipe ON recipe_step(recipe_id);`,
		`CREATE INDEX IF NOT EXISTS idx_step_material ON recipe_step(material_code);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("catalog migration failed: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	return s.path
}

const recipeColumns = `recipe_id, recipe_name, recipe_type, version,
	COALESCE(standard_hours, ''), COALESCE(specification, ''), COALESCE(notes, ''), created_at`

func scanRecipe(row interface{ Scan(...any) error }) (Recipe, error) {
	var r Recipe
	err := row.Scan(&r.ID, &r.Name, &r.Type, &r.Version, &r.StandardHours, &r.Specification, &r.Notes, &r.CreatedAt)
	return r, err
}

// Recipe returns the bom row for id.
func (s *Store) Recipe(ctx context.Context, id string) (Recipe, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM bom WHERE recipe_id = ?`, id)
	r, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Recipe{}, ErrNotFound
	}
	if err != nil {
		return Recipe{}, fmt.Errorf("load recipe %s: %w", id, err)
	}
	return r, nil
}

// AllRecipes lists every recipe ordered by type then name.
func (s *Store) AllRecipes(ctx context.Context) ([]Recipe, error) {
	return s.queryRecipes(ctx, `SELECT `+recipeColumns+` FROM bom ORDER BY recipe_type, recipe_name`)
}

// SearchRecipes matches keyword against recipe names and ids.
func (s *Store) SearchRecipes(ctx context.Context, keyword string) ([]Recipe, error) {
	pattern := "%" + strings.TrimSpace(keyword) + "%"
	return s.queryRecipes(ctx, `SELECT `+recipeColumns+` FROM bom
		WHERE recipe_name LIKE ? OR recipe_id LIKE ?
		ORDER BY recipe_type, recipe_name`, pattern, pattern)
}

func (s *Store) queryRecipes(ctx context.Context, query string, args ...any) ([]Recipe, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Material returns the materials row for code.
func (s *Store) Material(ctx context.Context, code string) (Material, error) {
	var m Material
	err := s.db.QueryRowContext(ctx, `SELECT material_code, material_name, material_type,
			COALESCE(specification, ''), COALESCE(unit, ''), COALESCE(unit_price_wo_tax, 0),
			COALESCE(characteristic, ''), COALESCE(supplier_id, ''), COALESCE(supplier_name, '')
		FROM materials WHERE material_code = ?`, code).
		Scan(&m.Code, &m.Name, &m.Type, &m.Specification, &m.Unit, &m.UnitPrice,
			&m.Characteristic, &m.SupplierID, &m.SupplierName)
	if errors.Is(err, sql.ErrNoRows) {
		return Material{}, ErrNotFound
	}
	if err != nil {
		return Material{}, fmt.Errorf("load material %s: %w", code, err)
	}
	return m, nil
}

// Steps returns a recipe's ingredient lines in step order.
func (s *Store) Steps(ctx context.Context, recipeID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT s.recipe_id, s.step_order, s.material_code,
			COALESCE(s.unit, ''), s.quantity, s.product_base, COALESCE(s.notes, ''),
			COALESCE(s.precaution, ''), COALESCE(m.material_name, ''), COALESCE(m.material_type, '')
		FROM recipe_step s
		LEFT JOIN materials m ON s.material_code = m.material_code
		WHERE s.recipe_id = ?
		ORDER BY s.step_order, s.step_id`, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Step
	for rows.Next() {
		var st Step
		if err := rows.Scan(&st.RecipeID, &st.Order, &st.MaterialCode, &st.Unit, &st.Quantity,
			&st.ProductBase, &st.Notes, &st.Precaution, &st.MaterialName, &st.MaterialType); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// MaterialUsage lists the recipes that consume code.
func (s *Store) MaterialUsage(ctx context.Context, code string) ([]Usage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT b.recipe_id, b.recipe_name, b.recipe_type, b.version,
			COALESCE(r.unit, ''), r.quantity, r.product_base
		FROM recipe_step r
		JOIN bom b ON r.recipe_id = b.recipe_id
		WHERE r.material_code = ?
		ORDER BY b.recipe_type, b.recipe_name`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Usage
	for rows.Next() {
		var u Usage
		if err := rows.Scan(&u.RecipeID, &u.RecipeName, &u.RecipeType, &u.Version, &u.Unit, &u.Quantity, &u.ProductBase); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Stats counts the rows of each table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	targets := []struct {
		table string
		dest  *int
	}{
		{"materials", &st.Materials},
		{"bom", &st.Recipes},
		{"recipe_step", &st.Steps},
	}
	for _, target := range targets {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+target.table).Scan(target.dest); err != nil {
			return Stats{}, err
		}
	}
	return st, nil
}

// Import upserts materials and recipes and replaces the steps of every recipe
// that appears in ds.Steps, all in one transaction.
func (s *Store) Import(ctx context.Context, ds Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := importTx(ctx, tx, ds); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func importTx(ctx context.Context, tx *sql.Tx, ds Dataset) error {
	for _, m := range ds.Materials {
		if strings.TrimSpace(m.Code) == "" {
			continue
		}
		materialType := strings.TrimSpace(m.Type)
		if materialType == "" {
			materialType = "A"
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO materials
				(material_code, material_name, material_type, specification, unit, unit_price_wo_tax, characteristic, supplier_id, supplier_name)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(material_code) DO UPDATE SET
				material_name = excluded.material_name,
				material_type = excluded.material_type,
				specification = excluded.specification,
				unit = excluded.unit,
				unit_price_wo_tax = excluded.unit_price_wo_tax,
				characteristic = excluded.characteristic,
				supplier_id = excluded.supplier_id,
				supplier_name = excluded.supplier_name`,
			m.Code, m.Name, materialType, m.Specification, m.Unit, m.UnitPrice, m.Characteristic, m.SupplierID, m.SupplierName); err != nil {
			return fmt.Errorf("import material %s: %w", m.Code, err)
		}
	}

	for _, r := range ds.Recipes {
		if strings.TrimSpace(r.ID) == "" {
			continue
		}
		recipeType := strings.TrimSpace(r.Type)
		if recipeType == "" {
			recipeType = string(r.ID[0])
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO bom
				(recipe_id, recipe_name, recipe_type, version, standard_hours, specification, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(recipe_id) DO UPDATE SET
				recipe_name = excluded.recipe_name,
				recipe_type = excluded.recipe_type,
				version = excluded.version,
				standard_hours = excluded.standard_hours,
				specification = excluded.specification,
				notes = excluded.notes`,
			r.ID, r.Name, recipeType, r.Version, r.StandardHours, r.Specification, r.Notes); err != nil {
			return fmt.Errorf("import recipe %s: %w", r.ID, err)
		}
		if created := strings.TrimSpace(r.CreatedAt); created != "" {
			if _, err := tx.ExecContext(ctx, `UPDATE bom SET created_at = ? WHERE recipe_id = ?`, created, r.ID); err != nil {
				return fmt.Errorf("import recipe %s: %w", r.ID, err)
			}
		}
	}

	cleared := make(map[string]bool)
	for _, st := range ds.Steps {
		if strings.TrimSpace(st.RecipeID) == "" || strings.TrimSpace(st.MaterialCode) == "" {
			continue
		}
		if !cleared[st.RecipeID] {
			if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_step WHERE recipe_id = ?`, st.RecipeID); err != nil {
				return fmt.Errorf("clear steps of %s: %w", st.RecipeID, err)
			}
			cleared[st.RecipeID] = true
		}
		base := st.ProductBase
		if base == 0 {
			base = 1
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO recipe_step
				(recipe_id, step_order, material_code, unit, quantity, product_base, notes, precaution)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			st.RecipeID, st.Order, st.MaterialCode, st.Unit, st.Quantity, base, st.Notes, st.Precaution); err != nil {
			return fmt.Errorf("import step %s/%d: %w", st.RecipeID, st.Order, err)
		}
	}
	return nil
}
