package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pageza/nocapcooking/backend/internal/model"
	"github.com/pageza/nocapcooking/backend/internal/pagination"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

// RecipePage is one page of fully loaded recipes.
type RecipePage struct {
	Recipes []model.Recipe
	Meta    pagination.Meta
}

// NamePage is one page of entity names.
type NamePage struct {
	Names []string
	Meta  pagination.Meta
}

// CatalogStats summarizes table sizes for the admin endpoint.
type CatalogStats struct {
	Recipes            int64 `json:"recipes"`
	Cuisines           int64 `json:"cuisines"`
	Diets              int64 `json:"diets"`
	Ingredients        int64 `json:"ingredients"`
	RecipesWithImage   int64 `json:"recipes_with_image"`
	RecipesWithAudio   int64 `json:"recipes_with_audio"`
	RecipesWithoutDiet int64 `json:"recipes_without_diet"`
}

// CatalogService answers read-only catalog queries.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a new CatalogService instance
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListCuisines returns every cuisine name in identity order.
func (s *CatalogService) ListCuisines(ctx context.Context) ([]string, error) {
	return s.names(ctx, &model.Cuisine{})
}

// ListDiets returns every diet name in identity order.
func (s *CatalogService) ListDiets(ctx context.Context) ([]string, error) {
	return s.names(ctx, &model.Diet{})
}

func (s *CatalogService) names(ctx context.Context, entity interface{}) ([]string, error) {
	names := []string{}
	if err := s.db.WithContext(ctx).Model(entity).Order("id ASC").Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// ListIngredients pages ingredient names ordered by name. A non-empty search
// keeps names containing it, case-insensitively; the term is used as given.
func (s *CatalogService) ListIngredients(ctx context.Context, search string, limits pagination.Limits, req pagination.Request) (*NamePage, error) {
	db := s.db.WithContext(ctx)
	if search != "" && db.Dialector.Name() != "postgres" {
		return s.searchIngredientsFolded(db, search, limits, req)
	}

	scope := func() *gorm.DB {
		tx := db.Model(&model.Ingredient{})
		if search != "" {
			tx = tx.Where(`name ILIKE ? ESCAPE '\'`, "%"+escapeLike(search)+"%")
		}
		return tx
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count ingredients: %w", err)
	}

	window := limits.Resolve(req, total)
	names := []string{}
	if err := scope().
		Order("name ASC").Order("id ASC").
		Offset(window.Offset).Limit(window.Limit).
		Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}

	return &NamePage{Names: names, Meta: window.Meta}, nil
}

// searchIngredientsFolded matches search in Go for dialects whose LIKE only
// folds ASCII, so that e.g. "żur" finds "Żurek" as ILIKE would.
func (s *CatalogService) searchIngredientsFolded(db *gorm.DB, search string, limits pagination.Limits, req pagination.Request) (*NamePage, error) {
	all := []string{}
	if err := db.Model(&model.Ingredient{}).
		Order("name ASC").Order("id ASC").
		Pluck("name", &all).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}

	fold := cases.Fold()
	term := fold.String(search)
	matched := make([]string, 0, len(all))
	for _, name := range all {
		if strings.Contains(fold.String(name), term) {
			matched = append(matched, name)
		}
	}

	window := limits.Resolve(req, int64(len(matched)))
	end := window.Offset + window.Limit
	if end > len(matched) {
		end = len(matched)
	}
	names := []string{}
	if window.Offset < end {
		names = append(names, matched[window.Offset:end]...)
	}
	return &NamePage{Names: names, Meta: window.Meta}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in term match literally.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// ListRecipes pages every recipe in identity order.
func (s *CatalogService) ListRecipes(ctx context.Context, limits pagination.Limits, req pagination.Request) (*RecipePage, error) {
	return s.pageRecipes(ctx, RecipeQuery{}, nil, limits, req)
}

// FilterRecipes pages the recipes matching q. An order_by outside the
// allow-list fails with *InvalidOrderError before any query runs.
func (s *CatalogService) FilterRecipes(ctx context.Context, q RecipeQuery, limits pagination.Limits, req pagination.Request) (*RecipePage, error) {
	ordering, err := ParseOrdering(q.OrderBy)
	if err != nil {
		return nil, err
	}
	return s.pageRecipes(ctx, q, ordering, limits, req)
}

func (s *CatalogService) pageRecipes(ctx context.Context, q RecipeQuery, ordering *Ordering, limits pagination.Limits, req pagination.Request) (*RecipePage, error) {
	db := s.db.WithContext(ctx)

	// Counted without ORDER BY; postgres rejects ordering on an aggregate.
	var total int64
	if err := q.scope(db).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count recipes: %w", err)
	}

	window := limits.Resolve(req, total)
	recipes := []model.Recipe{}
	tx := withRelations(ordering.apply(q.scope(db)))
	if err := tx.Offset(window.Offset).Limit(window.Limit).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	return &RecipePage{Recipes: recipes, Meta: window.Meta}, nil
}

// withRelations batch-loads the related entities of a page of recipes,
// related names in name order.
func withRelations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Cuisine").
		Preload("Diets", func(db *gorm.DB) *gorm.DB {
			return db.Order("diets.name ASC").Order("diets.id ASC")
		}).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("ingredients.name ASC").Order("ingredients.id ASC")
		})
}

// Stats counts catalog rows for the admin endpoint.
func (s *CatalogService) Stats(ctx context.Context) (*CatalogStats, error) {
	db := s.db.WithContext(ctx)
	stats := &CatalogStats{}

	counts := []struct {
		dst  *int64
		tx   *gorm.DB
		name string
	}{
		{&stats.Recipes, db.Model(&model.Recipe{}), "recipes"},
		{&stats.Cuisines, db.Model(&model.Cuisine{}), "cuisines"},
		{&stats.Diets, db.Model(&model.Diet{}), "diets"},
		{&stats.Ingredients, db.Model(&model.Ingredient{}), "ingredients"},
		{&stats.RecipesWithImage, db.Model(&model.Recipe{}).Where("image_path <> ''"), "recipes with image"},
		{&stats.RecipesWithAudio, db.Model(&model.Recipe{}).Where("audio_path <> ''"), "recipes with audio"},
		{&stats.RecipesWithoutDiet, db.Model(&model.Recipe{}).
			Where("NOT EXISTS (SELECT 1 FROM recipe_diets WHERE recipe_diets.recipe_id = recipes.id)"), "recipes without diet"},
	}
	for _, c := range counts {
		if err := c.tx.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", c.name, err)
		}
	}
	return stats, nil
}

// Ping checks the database connection.
func (s *CatalogService) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
