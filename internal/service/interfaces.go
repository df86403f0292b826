package service

import (
	"context"
	"time"

	"github.com/pageza/nocapcooking/backend/internal/pagination"
	"github.com/pageza/nocapcooking/backend/internal/types"
)

// ICatalogService defines the interface for catalog read operations
type ICatalogService interface {
	ListCuisines(ctx context.Context) ([]string, error)
	ListDiets(ctx context.Context) ([]string, error)
	ListIngredients(ctx context.Context, search string, limits pagination.Limits, req pagination.Request) (*NamePage, error)
	ListRecipes(ctx context.Context, limits pagination.Limits, req pagination.Request) (*RecipePage, error)
	FilterRecipes(ctx context.Context, q RecipeQuery, limits pagination.Limits, req pagination.Request) (*RecipePage, error)
	Stats(ctx context.Context) (*CatalogStats, error)
	Ping(ctx context.Context) error
}

// ITokenService defines the interface for admin token operations
type ITokenService interface {
	GenerateToken(subject string, ttl time.Duration) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}
