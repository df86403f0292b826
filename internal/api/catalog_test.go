package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pageza/nocapcooking/backend/internal/pagination"
	"github.com/pageza/nocapcooking/backend/internal/service"
	"github.com/pageza/nocapcooking/backend/internal/testhelpers"
	"github.com/pageza/nocapcooking/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockCatalogService implements service.ICatalogService for failure paths
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListCuisines(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *MockCatalogService) ListDiets(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *MockCatalogService) ListIngredients(ctx context.Context, search string, limits pagination.Limits, req pagination.Request) (*service.NamePage, error) {
	args := m.Called(ctx, search, limits, req)
	page, _ := args.Get(0).(*service.NamePage)
	return page, args.Error(1)
}

func (m *MockCatalogService) ListRecipes(ctx context.Context, limits pagination.Limits, req pagination.Request) (*service.RecipePage, error) {
	args := m.Called(ctx, limits, req)
	page, _ := args.Get(0).(*service.RecipePage)
	return page, args.Error(1)
}

func (m *MockCatalogService) FilterRecipes(ctx context.Context, q service.RecipeQuery, limits pagination.Limits, req pagination.Request) (*service.RecipePage, error) {
	args := m.Called(ctx, q, limits, req)
	page, _ := args.Get(0).(*service.RecipePage)
	return page, args.Error(1)
}

func (m *MockCatalogService) Stats(ctx context.Context) (*service.CatalogStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*service.CatalogStats)
	return stats, args.Error(1)
}

func (m *MockCatalogService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newCatalogRouter(catalog service.ICatalogService) *gin.Engine {
	r := gin.New()
	h := NewCatalogHandler(catalog, nil, nil)
	h.RegisterRoutes(r.Group(""))
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func newScenarioRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedScenario(t, db)
	return newCatalogRouter(service.NewCatalogService(db))
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decodeRecipePage(t *testing.T, w *httptest.ResponseRecorder) types.Page[types.RecipeResponse] {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page types.Page[types.RecipeResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	return page
}

func names(page types.Page[types.RecipeResponse]) []string {
	out := make([]string, 0, len(page.Results))
	for _, r := range page.Results {
		out = append(out, r.Name)
	}
	return out
}

func TestListCuisinesAndDiets(t *testing.T) {
	r := newScenarioRouter(t)

	for _, path := range []string{"/cuisines/", "/cuisines", "/api/v1/cuisines/"} {
		w := get(t, r, path)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `["C1","C2"]`, w.Body.String(), path)
	}

	w := get(t, r, "/diets/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["D1","D2"]`, w.Body.String())
}

func TestListIngredients(t *testing.T) {
	r := newScenarioRouter(t)

	w := get(t, r, "/ingredients/?search=i2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"results": ["I2"],
		"pagination": {"total": 1, "per_page": 10, "current_page": 1, "total_pages": 1, "has_next": false, "has_previous": false}
	}`, w.Body.String())

	w = get(t, r, "/ingredients?per_page=1&page=2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"results": ["I2"],
		"pagination": {"total": 2, "per_page": 1, "current_page": 2, "total_pages": 2, "has_next": false, "has_previous": true}
	}`, w.Body.String())
}

func TestListRecipes(t *testing.T) {
	r := newScenarioRouter(t)

	page := decodeRecipePage(t, get(t, r, "/recipes/?per_page=100"))
	assert.Equal(t, []string{"A", "B", "C"}, names(page))
	assert.Equal(t, 25, page.Pagination.PerPage)

	page = decodeRecipePage(t, get(t, r, "/recipes/?per_page=0"))
	assert.Equal(t, 10, page.Pagination.PerPage)
}

func TestFilterRecipesSerializesRecipes(t *testing.T) {
	r := newScenarioRouter(t)

	w := get(t, r, "/recipes/filter/?cuisine=C1&diet=D1&ingredient=I1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"results": [{
			"name": "A", "cuisine": "C1", "diets": ["D1"], "ingredients": ["I1"],
			"recipe": "Recipe A", "image_path": "", "audio_path": ""
		}],
		"pagination": {"total": 1, "per_page": 10, "current_page": 1, "total_pages": 1, "has_next": false, "has_previous": false}
	}`, w.Body.String())
}

func TestFilterRecipesScenario(t *testing.T) {
	r := newScenarioRouter(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"A", "B", "C"}},
		{"exclude_cuisine=C1&exclude_diet=D1", []string{"B"}},
		{"exclude_ingredient=I1", []string{"C"}},
		{"cuisine=C1&exclude_ingredient=I2", []string{"A"}},
		{"cuisine=C1&cuisine=C2", []string{"A", "B", "C"}},
		{"ingredient=I1&ingredient=I2", []string{"B"}},
		{"cuisine=&diet=", []string{"A", "B", "C"}},
		{"order_by=", []string{"A", "B", "C"}},
		{"order_by=cuisine", []string{"A", "C", "B"}},
		{"order_by=-cuisine", []string{"B", "A", "C"}},
		{"order_by=diet", []string{"A", "C", "B"}},
		{"order_by=-diet", []string{"B", "A", "C"}},
		{"order_by=ingredients_count", []string{"A", "C", "B"}},
		{"order_by=-ingredients_count", []string{"B", "A", "C"}},
		{"order_by=name", []string{"A", "B", "C"}},
		{"order_by=-name", []string{"C", "B", "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page := decodeRecipePage(t, get(t, r, "/recipes/filter/?"+tt.query))
			assert.Equal(t, tt.want, names(page))
		})
	}
}

func TestFilterRecipesRoutes(t *testing.T) {
	r := newScenarioRouter(t)

	for _, path := range []string{"/recipes/filter", "/recipes/filter/", "/api/v1/recipes/filter/"} {
		page := decodeRecipePage(t, get(t, r, path+"?exclude_ingredient=I1"))
		assert.Equal(t, []string{"C"}, names(page), path)
	}
}

func TestFilterRecipesInvalidOrder(t *testing.T) {
	r := newScenarioRouter(t)

	w := get(t, r, "/recipes/filter/?order_by=invalid_field")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "invalid_field")
}

func TestFilterRecipesPagination(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	fixtures := make([]testhelpers.RecipeFixture, 0, 12)
	for i := 0; i < 12; i++ {
		fixtures = append(fixtures, testhelpers.RecipeFixture{Name: string(rune('a' + i)), Cuisine: "C"})
	}
	testhelpers.Seed(t, db, fixtures...)
	r := newCatalogRouter(service.NewCatalogService(db))

	page := decodeRecipePage(t, get(t, r, "/recipes/filter/?per_page=25"))
	assert.Len(t, page.Results, 10)
	assert.Equal(t, 10, page.Pagination.PerPage)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	page = decodeRecipePage(t, get(t, r, "/recipes/filter/?page=999"))
	assert.Equal(t, 2, page.Pagination.CurrentPage)
	assert.Equal(t, []string{"k", "l"}, names(page))

	page = decodeRecipePage(t, get(t, r, "/recipes/filter/?page=abc"))
	assert.Equal(t, 1, page.Pagination.CurrentPage)
}

func TestFilterRecipesEmptyResult(t *testing.T) {
	r := newScenarioRouter(t)

	w := get(t, r, "/recipes/filter/?cuisine=Nope")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"results": [],
		"pagination": {"total": 0, "per_page": 10, "current_page": 1, "total_pages": 1, "has_next": false, "has_previous": false}
	}`, w.Body.String())
}

func TestFilterRecipesPassesParsedQuery(t *testing.T) {
	catalog := new(MockCatalogService)
	catalog.On("FilterRecipes", mock.Anything, service.RecipeQuery{
		Cuisines:           []string{"Thai", "Greek"},
		Diets:              []string{},
		Ingredients:        []string{"Basil"},
		ExcludeCuisines:    []string{},
		ExcludeDiets:       []string{},
		ExcludeIngredients: []string{"Nuts"},
		OrderBy:            "-name",
	}, pagination.FilterLimits, pagination.Request{Page: "2", PerPage: "5"}).
		Return(&service.RecipePage{}, nil)

	r := newCatalogRouter(catalog)
	w := get(t, r, "/recipes/filter/?cuisine=Thai&cuisine=%20Greek%20&cuisine=&ingredient=Basil&exclude_ingredient=Nuts&order_by=-name&page=2&per_page=5")

	assert.Equal(t, http.StatusOK, w.Code)
	catalog.AssertExpectations(t)
}

func TestStoreFailuresReturn500(t *testing.T) {
	storeErr := errors.New("connection refused")
	catalog := new(MockCatalogService)
	catalog.On("ListCuisines", mock.Anything).Return(nil, storeErr)
	catalog.On("ListDiets", mock.Anything).Return(nil, storeErr)
	catalog.On("ListIngredients", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, storeErr)
	catalog.On("ListRecipes", mock.Anything, mock.Anything, mock.Anything).Return(nil, storeErr)
	catalog.On("FilterRecipes", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, storeErr)
	r := newCatalogRouter(catalog)

	tests := map[string]string{
		"/cuisines/":       "failed to fetch cuisines",
		"/diets/":          "failed to fetch diets",
		"/ingredients/":    "failed to fetch ingredients",
		"/recipes/":        "failed to fetch recipes",
		"/recipes/filter/": "failed to fetch recipes",
	}
	for path, message := range tests {
		w := get(t, r, path)
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, message, body["error"], path)
		assert.NotContains(t, w.Body.String(), "connection refused")
	}
}
