// Package recipe holds the JSON shapes exchanged between the recipe service and
// its clients, plus the material-code conventions both sides rely on.
package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// FinalResultPath is the route prefix of a recipe's detail page.
const FinalResultPath = "/search/result/final/"

// OptionalFloat is a number that may be missing. The service emits numbers, but
// older rows carry numeric strings or empty strings, so decoding accepts all three.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Float returns a present value.
func Float(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// Or returns the value, or fallback when missing.
func (f OptionalFloat) Or(fallback float64) float64 {
	if !f.Valid {
		return fallback
	}
	return f.Value
}

func (f OptionalFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f.Value, 'f', -1, 64)), nil
}

func (f *OptionalFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = OptionalFloat{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" || strings.EqualFold(s, "nan") {
			*f = OptionalFloat{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		*f = Float(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// IngredientRow is one line of a recipe's ingredient table.
type IngredientRow struct {
	StepOrder      int           `json:"step_order,omitempty"`
	MaterialCode   string        `json:"material_code"`
	MaterialName   string        `json:"material_name"`
	Unit           string        `json:"unit"`
	Quantity       OptionalFloat `json:"quantity"`
	ProductBase    OptionalFloat `json:"product_base"`
	Notes          string        `json:"notes"`
	UnitPrice      OptionalFloat `json:"unit_price"`
	Cost           OptionalFloat `json:"cost"`
	Characteristic string        `json:"characteristic,omitempty"`
	IsSubRecipe    bool          `json:"is_sub_recipe"`
}

// RecipeDetails is the header block of a recipe. Only the id and name are
// guaranteed; the rest may be empty.
type RecipeDetails struct {
	RecipeID      string `json:"recipe_id"`
	RecipeName    string `json:"recipe_name"`
	Version       string `json:"version,omitempty"`
	StandardHours string `json:"standard_hours,omitempty"`
	Specification string `json:"specification,omitempty"`
	Notes         string `json:"notes,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// RecipeResponse is the body of GET /api/recipe/{id}.
type RecipeResponse struct {
	RecipeDetails RecipeDetails   `json:"recipe_details"`
	Ingredients   []IngredientRow `json:"ingredients"`
	TotalCost     float64         `json:"total_cost"`
	Notices       []string        `json:"notices"`
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Keyword string `json:"keyword"`
}

// SearchResult is one match returned by the search endpoint.
type SearchResult struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Keyword string         `json:"keyword"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect,omitempty"`
	Message  string `json:"message,omitempty"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

// SessionResponse is the body of GET /api/session.
type SessionResponse struct {
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username,omitempty"`
}

// Material is the body of GET /api/materials/{code}.
type Material struct {
	MaterialCode   string  `json:"material_code"`
	MaterialName   string  `json:"material_name"`
	MaterialType   string  `json:"material_type"`
	Specification  string  `json:"specification"`
	Unit           string  `json:"unit"`
	UnitPrice      float64 `json:"unit_price_wo_tax"`
	Characteristic string  `json:"characteristic"`
	SupplierID     string  `json:"supplier_id"`
	SupplierName   string  `json:"supplier_name"`
}

type MaterialUsage struct {
	RecipeID    string  `json:"recipe_id"`
	RecipeName  string  `json:"recipe_name"`
	RecipeType  string  `json:"recipe_type"`
	Version     string  `json:"version"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	ProductBase float64 `json:"product_base"`
}

// MaterialUsageResponse is the body of GET /api/materials/{code}/usage.
type MaterialUsageResponse struct {
	MaterialCode string          `json:"material_code"`
	Usage        []MaterialUsage `json:"usage"`
}

// ErrorResponse is the JSON body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FinalResultURL returns the detail route for a recipe or sub-recipe code. The
// code is path-escaped.
func FinalResultURL(code string) string {
	return FinalResultPath + url.PathEscape(code)
}
