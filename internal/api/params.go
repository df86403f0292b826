package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pageza/nocapcooking/backend/internal/pagination"
	"github.com/pageza/nocapcooking/backend/internal/service"
)

// Endpoint names a paginated endpoint.
type Endpoint string

const (
	EndpointIngredients Endpoint = "ingredients"
	EndpointRecipes     Endpoint = "recipes"
	EndpointFilter      Endpoint = "recipes_filter"
)

// EndpointLimits is the page-size policy of every paginated endpoint.
var EndpointLimits = map[Endpoint]pagination.Limits{
	EndpointIngredients: pagination.ListLimits,
	EndpointRecipes:     pagination.ListLimits,
	EndpointFilter:      pagination.FilterLimits,
}

// Query parameter names.
const (
	ParamPage              = "page"
	ParamPerPage           = "per_page"
	ParamSearch            = "search"
	ParamCuisine           = "cuisine"
	ParamDiet              = "diet"
	ParamIngredient        = "ingredient"
	ParamExcludeCuisine    = "exclude_cuisine"
	ParamExcludeDiet       = "exclude_diet"
	ParamExcludeIngredient = "exclude_ingredient"
	ParamOrderBy           = "order_by"
)

func limitsFor(e Endpoint) pagination.Limits {
	if l, ok := EndpointLimits[e]; ok {
		return l
	}
	return pagination.ListLimits
}

// pageRequest reads the raw page selection. Normalization happens in the
// pagination package.
func pageRequest(c *gin.Context) pagination.Request {
	return pagination.Request{
		Page:    c.Query(ParamPage),
		PerPage: c.Query(ParamPerPage),
	}
}

// queryValues returns every non-blank value of a repeated parameter, trimmed.
func queryValues(c *gin.Context, key string) []string {
	raw := c.QueryArray(key)
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// recipeQuery reads the filter endpoint's parameters.
func recipeQuery(c *gin.Context) service.RecipeQuery {
	return service.RecipeQuery{
		Cuisines:           queryValues(c, ParamCuisine),
		Diets:              queryValues(c, ParamDiet),
		Ingredients:        queryValues(c, ParamIngredient),
		ExcludeCuisines:    queryValues(c, ParamExcludeCuisine),
		ExcludeDiets:       queryValues(c, ParamExcludeDiet),
		ExcludeIngredients: queryValues(c, ParamExcludeIngredient),
		OrderBy:            strings.TrimSpace(c.Query(ParamOrderBy)),
	}
}
