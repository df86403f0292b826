package service

import (
	"fmt"
	"strings"

	"github.com/pageza/nocapcooking/backend/internal/model"
	"gorm.io/gorm"
)

// Dimension names a categorical relation a recipe can be filtered on.
type Dimension string

const (
	DimensionCuisine    Dimension = "cuisine"
	DimensionDiet       Dimension = "diet"
	DimensionIngredient Dimension = "ingredient"
)

// ClauseKind tells whether a clause narrows or removes.
type ClauseKind int

const (
	Include ClauseKind = iota
	Exclude
)

func (k ClauseKind) String() string {
	if k == Exclude {
		return "exclude"
	}
	return "include"
}

// Clause is one typed filter predicate over a dimension.
//
// An include clause on cuisine matches any listed name. Include clauses on
// diet and ingredient are emitted one per value so that a recipe must carry
// every listed name. Exclude clauses drop a recipe matching any listed name.
type Clause struct {
	Kind      ClauseKind
	Dimension Dimension
	Values    []string
}

// RecipeQuery is the full set of filter and sort parameters for the filter
// endpoint. Empty slices impose no restriction.
type RecipeQuery struct {
	Cuisines    []string
	Diets       []string
	Ingredients []string

	ExcludeCuisines    []string
	ExcludeDiets       []string
	ExcludeIngredients []string

	OrderBy string
}

// Clauses accumulates the query's predicates in application order: all
// includes, then all excludes.
func (q RecipeQuery) Clauses() []Clause {
	var clauses []Clause

	if vals := compact(q.Cuisines); len(vals) > 0 {
		clauses = append(clauses, Clause{Kind: Include, Dimension: DimensionCuisine, Values: vals})
	}
	for _, v := range compact(q.Diets) {
		clauses = append(clauses, Clause{Kind: Include, Dimension: DimensionDiet, Values: []string{v}})
	}
	for _, v := range compact(q.Ingredients) {
		clauses = append(clauses, Clause{Kind: Include, Dimension: DimensionIngredient, Values: []string{v}})
	}

	if vals := compact(q.ExcludeCuisines); len(vals) > 0 {
		clauses = append(clauses, Clause{Kind: Exclude, Dimension: DimensionCuisine, Values: vals})
	}
	if vals := compact(q.ExcludeDiets); len(vals) > 0 {
		clauses = append(clauses, Clause{Kind: Exclude, Dimension: DimensionDiet, Values: vals})
	}
	if vals := compact(q.ExcludeIngredients); len(vals) > 0 {
		clauses = append(clauses, Clause{Kind: Exclude, Dimension: DimensionIngredient, Values: vals})
	}

	return clauses
}

// compact trims values and drops blanks and duplicates, keeping first-seen order.
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

const (
	cuisineMatchSQL    = "recipes.cuisine_id IN (SELECT cuisines.id FROM cuisines WHERE cuisines.name IN ?)"
	dietMatchSQL       = "EXISTS (SELECT 1 FROM recipe_diets JOIN diets ON diets.id = recipe_diets.diet_id WHERE recipe_diets.recipe_id = recipes.id AND diets.name IN ?)"
	ingredientMatchSQL = "EXISTS (SELECT 1 FROM recipe_ingredients JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id WHERE recipe_ingredients.recipe_id = recipes.id AND ingredients.name IN ?)"
)

func (c Clause) apply(tx *gorm.DB) *gorm.DB {
	var predicate string
	switch c.Dimension {
	case DimensionCuisine:
		predicate = cuisineMatchSQL
	case DimensionDiet:
		predicate = dietMatchSQL
	case DimensionIngredient:
		predicate = ingredientMatchSQL
	default:
		return tx
	}

	if c.Kind == Exclude {
		return tx.Where("NOT ("+predicate+")", c.Values)
	}
	return tx.Where(predicate, c.Values)
}

// SortKey is an allow-listed ordering field.
type SortKey string

const (
	SortName             SortKey = "name"
	SortCuisine          SortKey = "cuisine"
	SortDiet             SortKey = "diet"
	SortIngredientsCount SortKey = "ingredients_count"
)

// AllowedSortKeys lists the accepted order_by fields in documentation order.
var AllowedSortKeys = []SortKey{SortName, SortCuisine, SortDiet, SortIngredientsCount}

// InvalidOrderError reports an order_by value outside the allow-list.
type InvalidOrderError struct {
	Value   string
	Allowed []SortKey
}

func (e *InvalidOrderError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, k := range e.Allowed {
		allowed[i] = string(k)
	}
	return fmt.Sprintf("invalid order_by field: %s. Allowed fields: %s", e.Value, strings.Join(allowed, ", "))
}

// Ordering is a parsed order_by value.
type Ordering struct {
	Key        SortKey
	Descending bool
}

// ParseOrdering parses raw ("name", "-cuisine", ...). At most one leading
// "-" is accepted. An empty value yields nil, meaning identity order.
func ParseOrdering(raw string) (*Ordering, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	key := strings.TrimPrefix(raw, "-")
	for _, allowed := range AllowedSortKeys {
		if SortKey(key) == allowed {
			return &Ordering{Key: allowed, Descending: key != raw}, nil
		}
	}
	return nil, &InvalidOrderError{Value: raw, Allowed: AllowedSortKeys}
}

// Per-recipe scalar sort keys. None of them joins a to-many relation into
// the outer query, so ordering never multiplies rows.
const (
	cuisineNameExpr      = "(SELECT cuisines.name FROM cuisines WHERE cuisines.id = recipes.cuisine_id)"
	firstDietExpr        = "(SELECT MIN(diets.name) FROM diets JOIN recipe_diets ON recipe_diets.diet_id = diets.id WHERE recipe_diets.recipe_id = recipes.id)"
	ingredientsCountExpr = "(SELECT COUNT(DISTINCT recipe_ingredients.ingredient_id) FROM recipe_ingredients WHERE recipe_ingredients.recipe_id = recipes.id)"
)

func (o *Ordering) apply(tx *gorm.DB) *gorm.DB {
	if o == nil {
		return tx.Order("recipes.id ASC")
	}

	dir := "ASC"
	if o.Descending {
		dir = "DESC"
	}

	switch o.Key {
	case SortName:
		return tx.Order("recipes.name " + dir).Order("recipes.id " + dir)
	case SortCuisine:
		tx = orderNullsLast(tx, cuisineNameExpr, dir)
	case SortDiet:
		tx = orderNullsLast(tx, firstDietExpr, dir)
	case SortIngredientsCount:
		tx = tx.Order(ingredientsCountExpr + " " + dir)
	}
	return tx.Order("recipes.name ASC").Order("recipes.id ASC")
}

// orderNullsLast sorts by expr in dir with missing keys after present ones,
// regardless of the dialect's default null placement.
func orderNullsLast(tx *gorm.DB, expr, dir string) *gorm.DB {
	return tx.
		Order("CASE WHEN " + expr + " IS NULL THEN 1 ELSE 0 END ASC").
		Order(expr + " " + dir)
}

// filteredIDs selects the ids of recipes passing every clause, applying
// includes before excludes.
func (q RecipeQuery) filteredIDs(db *gorm.DB) *gorm.DB {
	tx := db.Model(&model.Recipe{}).Select("recipes.id")
	for _, c := range q.Clauses() {
		tx = c.apply(tx)
	}
	return tx
}

// scope returns recipes whose identity is in the filtered set. Matching by
// id deduplicates the result whatever the predicates joined.
func (q RecipeQuery) scope(db *gorm.DB) *gorm.DB {
	if len(q.Clauses()) == 0 {
		return db.Model(&model.Recipe{})
	}
	return db.Model(&model.Recipe{}).Where("recipes.id IN (?)", q.filteredIDs(db))
}
