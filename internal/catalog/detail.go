package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/valueproject/recipe-lookup/internal/recipe"
)

// MaxSubRecipeDepth bounds sub-recipe cost recursion so cyclic BOMs terminate.
const MaxSubRecipeDepth = 10

const (
	semiFinishedCharacteristic = "此為半成品配方"
	finishedCharacteristic     = "此為成品配方"
)

// RecipeDetail builds the costed view of a recipe: header, ingredient rows with
// unit prices and costs, total cost and distinct precautions.
func (s *Store) RecipeDetail(ctx context.Context, id string) (*recipe.RecipeResponse, error) {
	header, err := s.Recipe(ctx, id)
	if err != nil {
		return nil, err
	}
	steps, err := s.Steps(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load steps of %s: %w", id, err)
	}

	resp := &recipe.RecipeResponse{
		RecipeDetails: recipe.RecipeDetails{
			RecipeID:      header.ID,
			RecipeName:    header.Name,
			Version:       header.Version,
			StandardHours: header.StandardHours,
			Specification: header.Specification,
			Notes:         header.Notes,
			CreatedAt:     dateOnly(header.CreatedAt),
		},
		Ingredients: make([]recipe.IngredientRow, 0, len(steps)),
		Notices:     []string{},
	}

	total := decimal.Zero
	for _, st := range steps {
		row, cost, err := s.ingredientRow(ctx, st)
		if err != nil {
			return nil, err
		}
		total = total.Add(cost)
		resp.Ingredients = append(resp.Ingredients, row)
	}
	resp.TotalCost = total.Round(2).InexactFloat64()
	resp.Notices = distinctPrecautions(steps)
	return resp, nil
}

// ingredientRow also returns the row cost rounded to cents, which is what the
// total is summed from.
func (s *Store) ingredientRow(ctx context.Context, st Step) (recipe.IngredientRow, decimal.Decimal, error) {
	row := recipe.IngredientRow{
		StepOrder:    st.Order,
		MaterialCode: st.MaterialCode,
		MaterialName: st.MaterialName,
		Unit:         st.Unit,
		Quantity:     recipe.Float(sanitize(st.Quantity)),
		ProductBase:  recipe.Float(sanitize(st.ProductBase)),
		Notes:        st.Notes,
	}
	quantity := money(row.Quantity.Value)
	price := decimal.Zero

	switch recipe.KindOf(st.MaterialCode) {
	case recipe.CodeSemiFinished:
		sub, err := s.Recipe(ctx, st.MaterialCode)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return row, decimal.Zero, err
		default:
			row.MaterialName = sub.Name
			row.IsSubRecipe = true
			row.Characteristic = semiFinishedCharacteristic
			if quantity.IsPositive() {
				cost, err := s.sharedSubRecipeCost(ctx, st.MaterialCode)
				if err != nil {
					return row, decimal.Zero, err
				}
				price = cost
			}
		}
	case recipe.CodeFinished:
		sub, err := s.Recipe(ctx, st.MaterialCode)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return row, decimal.Zero, err
		default:
			row.MaterialName = sub.Name
			row.IsSubRecipe = true
			row.Characteristic = finishedCharacteristic
		}
	default:
		m, err := s.Material(ctx, st.MaterialCode)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return row, decimal.Zero, err
		default:
			price = money(m.UnitPrice)
			row.Characteristic = m.Characteristic
		}
	}

	cost := decimal.Zero
	if price.IsPositive() && quantity.IsPositive() {
		cost = price.Mul(quantity).Round(2)
	}
	row.UnitPrice = recipe.Float(price.InexactFloat64())
	row.Cost = recipe.Float(cost.InexactFloat64())
	return row, cost, nil
}

// sharedSubRecipeCost collapses concurrent computations of the same sub-recipe.
// Only the outermost call goes through the group; recursion below it does not,
// so a cyclic BOM cannot wait on itself. The shared computation is detached
// from the caller that started it; each caller still stops waiting when its
// own ctx is done.
func (s *Store) sharedSubRecipeCost(ctx context.Context, id string) (decimal.Decimal, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.costs.DoChan(id, func() (any, error) {
		return s.SubRecipeCost(detached, id, 0)
	})
	select {
	case <-ctx.Done():
		return decimal.Zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return decimal.Zero, res.Err
		}
		return res.Val.(decimal.Decimal), nil
	}
}

// SubRecipeCost is the summed cost of one batch of recipe id. Nested F recipes
// are costed recursively up to MaxSubRecipeDepth; deeper levels count as zero.
func (s *Store) SubRecipeCost(ctx context.Context, id string, depth int) (decimal.Decimal, error) {
	if depth >= MaxSubRecipeDepth {
		return decimal.Zero, nil
	}
	steps, err := s.Steps(ctx, id)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cost %s: %w", id, err)
	}
	total := decimal.Zero
	for _, st := range steps {
		quantity := money(st.Quantity)
		if !quantity.IsPositive() || st.MaterialCode == "" {
			continue
		}
		if recipe.KindOf(st.MaterialCode) == recipe.CodeSemiFinished {
			sub, err := s.SubRecipeCost(ctx, st.MaterialCode, depth+1)
			if err != nil {
				return decimal.Zero, err
			}
			total = total.Add(sub.Mul(quantity))
			continue
		}
		m, err := s.Material(ctx, st.MaterialCode)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(money(m.UnitPrice).Mul(quantity))
	}
	return total, nil
}

func distinctPrecautions(steps []Step) []string {
	notices := []string{}
	seen := make(map[string]bool)
	for _, st := range steps {
		p := strings.TrimSpace(st.Precaution)
		if p == "" || strings.EqualFold(p, "nan") || seen[p] {
			continue
		}
		seen[p] = true
		notices = append(notices, p)
	}
	return notices
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// money converts a stored number to a decimal, treating NaN and infinities as
// zero.
func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(sanitize(v))
}

func dateOnly(ts string) string {
	ts = strings.TrimSpace(ts)
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
