package types

import (
	"github.com/pageza/nocapcooking/backend/internal/model"
	"github.com/pageza/nocapcooking/backend/internal/pagination"
)

// RecipeResponse is the flat transport shape of a recipe.
type RecipeResponse struct {
	Name         string   `json:"name"`
	Cuisine      *string  `json:"cuisine"`
	Diets        []string `json:"diets"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"recipe"`
	ImagePath    string   `json:"image_path"`
	AudioPath    string   `json:"audio_path"`
}

// Page is the pagination envelope shared by every paginated endpoint.
type Page[T any] struct {
	Results    []T             `json:"results"`
	Pagination pagination.Meta `json:"pagination"`
}

// NewPage wraps results, substituting an empty slice for nil so the field
// always encodes as an array.
func NewPage[T any](results []T, meta pagination.Meta) Page[T] {
	if results == nil {
		results = []T{}
	}
	return Page[T]{Results: results, Pagination: meta}
}

// NewRecipeResponse flattens a recipe and the names of its related entities.
// Related slices keep the order in which they were loaded.
func NewRecipeResponse(r *model.Recipe) RecipeResponse {
	resp := RecipeResponse{
		Name:         r.Name,
		Diets:        make([]string, 0, len(r.Diets)),
		Ingredients:  make([]string, 0, len(r.Ingredients)),
		Instructions: r.Instructions,
		ImagePath:    r.ImagePath,
		AudioPath:    r.AudioPath,
	}
	if r.Cuisine != nil {
		name := r.Cuisine.Name
		resp.Cuisine = &name
	}
	for _, d := range r.Diets {
		resp.Diets = append(resp.Diets, d.Name)
	}
	for _, i := range r.Ingredients {
		resp.Ingredients = append(resp.Ingredients, i.Name)
	}
	return resp
}

// NewRecipeResponses serializes a slice of recipes in order.
func NewRecipeResponses(recipes []model.Recipe) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, NewRecipeResponse(&recipes[i]))
	}
	return out
}
