// Package integration runs the import and query paths end to end against
// PostgreSQL in a container.
package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pageza/nocapcooking/backend/internal/importer"
	"github.com/pageza/nocapcooking/backend/internal/router"
	"github.com/pageza/nocapcooking/backend/internal/service"
	"github.com/pageza/nocapcooking/backend/internal/testhelpers"
	"github.com/pageza/nocapcooking/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const sourceFile = `[
	{"name": "Pierogi", "cuisine": "Polish", "diets": ["vegetarian"], "ingredients": ["flour", "potato", "onion"], "recipe": "Boil."},
	{"name": "Bigos", "cuisine": "Polish", "ingredients": ["cabbage", "pork"], "recipe": "Stew."},
	{"name": "Ramen", "cuisine": "Japanese", "diet": "dairy free", "ingredients": ["noodles", "pork", "onion"], "instructions": "Simmer."},
	{"name": "Miso Soup", "cuisine": "Japanese", "diets": ["vegan", "vegetarian"], "ingredients": ["miso", "tofu"], "recipe": "Whisk."}
]`

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupPostgresDB(t)
	logger := zaptest.NewLogger(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "recipes.json"), []byte(sourceFile), 0o644))

	report, err := importer.New(db, logger).ImportDir(context.Background(), dir)
	require.NoError(t, err)
	require.Empty(t, report.Failed)
	require.Equal(t, 4, report.Imported)

	return router.SetupRouter(router.Dependencies{
		Catalog: service.NewCatalogService(db),
		Logger:  logger,
		Version: "integration",
	})
}

func getJSON(t *testing.T, r http.Handler, target string, v interface{}) int {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	if v != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
	}
	return w.Code
}

func recipeNames(t *testing.T, r http.Handler, target string) []string {
	t.Helper()
	var page types.Page[types.RecipeResponse]
	require.Equal(t, http.StatusOK, getJSON(t, r, target, &page))

	names := make([]string, 0, len(page.Results))
	for _, recipe := range page.Results {
		names = append(names, recipe.Name)
	}
	return names
}

func TestCatalogOnPostgres(t *testing.T) {
	r := setup(t)

	t.Run("cuisines in import order", func(t *testing.T) {
		var cuisines []string
		require.Equal(t, http.StatusOK, getJSON(t, r, "/api/v1/cuisines", &cuisines))
		assert.Equal(t, []string{"Polish", "Japanese"}, cuisines)
	})

	t.Run("ingredient search is case-insensitive", func(t *testing.T) {
		var page types.Page[string]
		require.Equal(t, http.StatusOK, getJSON(t, r, "/ingredients?search=PO", &page))
		assert.Equal(t, []string{"pork", "potato"}, page.Results)
		assert.Equal(t, int64(2), page.Pagination.Total)
	})

	t.Run("filters", func(t *testing.T) {
		tests := []struct {
			query string
			want  []string
		}{
			{"cuisine=Polish", []string{"Pierogi", "Bigos"}},
			{"diet=vegetarian&exclude_cuisine=Polish", []string{"Miso Soup"}},
			{"ingredient=pork&ingredient=onion", []string{"Ramen"}},
			{"exclude_ingredient=pork&exclude_ingredient=miso", []string{"Pierogi"}},
			{"cuisine=Polish&cuisine=Japanese&exclude_diet=vegan", []string{"Pierogi", "Bigos", "Ramen"}},
		}
		for _, tt := range tests {
			t.Run(tt.query, func(t *testing.T) {
				assert.Equal(t, tt.want, recipeNames(t, r, "/api/v1/recipes/filter?"+tt.query))
			})
		}
	})

	t.Run("orderings", func(t *testing.T) {
		tests := []struct {
			order string
			want  []string
		}{
			{"name", []string{"Bigos", "Miso Soup", "Pierogi", "Ramen"}},
			{"-name", []string{"Ramen", "Pierogi", "Miso Soup", "Bigos"}},
			{"cuisine", []string{"Miso Soup", "Ramen", "Bigos", "Pierogi"}},
			{"diet", []string{"Ramen", "Miso Soup", "Pierogi", "Bigos"}},
			{"-diet", []string{"Pierogi", "Miso Soup", "Ramen", "Bigos"}},
			{"-ingredients_count", []string{"Pierogi", "Ramen", "Bigos", "Miso Soup"}},
		}
		for _, tt := range tests {
			t.Run(tt.order, func(t *testing.T) {
				assert.Equal(t, tt.want, recipeNames(t, r, "/recipes/filter?order_by="+tt.order))
			})
		}
	})

	t.Run("recipe payload", func(t *testing.T) {
		var page types.Page[types.RecipeResponse]
		require.Equal(t, http.StatusOK, getJSON(t, r, "/recipes/filter?ingredient=miso", &page))
		require.Len(t, page.Results, 1)

		miso := page.Results[0]
		require.NotNil(t, miso.Cuisine)
		assert.Equal(t, "Japanese", *miso.Cuisine)
		assert.Equal(t, []string{"vegan", "vegetarian"}, miso.Diets)
		assert.Equal(t, []string{"miso", "tofu"}, miso.Ingredients)
		assert.Equal(t, "Whisk.", miso.Instructions)
	})

	t.Run("invalid order", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, getJSON(t, r, "/recipes/filter?order_by=calories", nil))
	})
}
