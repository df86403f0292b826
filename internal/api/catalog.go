package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/nocapcooking/backend/internal/logging"
	"github.com/pageza/nocapcooking/backend/internal/middleware"
	"github.com/pageza/nocapcooking/backend/internal/service"
	"github.com/pageza/nocapcooking/backend/internal/types"
	"go.uber.org/zap"
)

// CatalogHandler serves the read-only catalog endpoints.
type CatalogHandler struct {
	catalog     service.ICatalogService
	logger      *zap.Logger
	rateLimiter *middleware.RateLimiter
}

// NewCatalogHandler creates a CatalogHandler. rateLimiter may be nil.
func NewCatalogHandler(catalog service.ICatalogService, logger *zap.Logger, rateLimiter *middleware.RateLimiter) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{
		catalog:     catalog,
		logger:      logger,
		rateLimiter: rateLimiter,
	}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	getWithSlash(router, "/cuisines", h.ListCuisines)
	getWithSlash(router, "/diets", h.ListDiets)
	getWithSlash(router, "/ingredients", h.ListIngredients)
	getWithSlash(router, "/recipes", h.ListRecipes)

	filter := []gin.HandlerFunc{h.FilterRecipes}
	if h.rateLimiter.Enabled() {
		filter = append([]gin.HandlerFunc{h.rateLimiter.RateLimitMiddleware()}, filter...)
	}
	getWithSlash(router, "/recipes/filter", filter...)
}

// getWithSlash registers path both without and with a trailing slash so
// neither form is redirected.
func getWithSlash(router *gin.RouterGroup, path string, handlers ...gin.HandlerFunc) {
	router.GET(path, handlers...)
	router.GET(path+"/", handlers...)
}

func (h *CatalogHandler) ListCuisines(c *gin.Context) {
	names, err := h.catalog.ListCuisines(c.Request.Context())
	if err != nil {
		h.storeFailure(c, "cuisines", err)
		return
	}
	c.JSON(http.StatusOK, names)
}

func (h *CatalogHandler) ListDiets(c *gin.Context) {
	names, err := h.catalog.ListDiets(c.Request.Context())
	if err != nil {
		h.storeFailure(c, "diets", err)
		return
	}
	c.JSON(http.StatusOK, names)
}

func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	page, err := h.catalog.ListIngredients(c.Request.Context(), c.Query(ParamSearch),
		limitsFor(EndpointIngredients), pageRequest(c))
	if err != nil {
		h.storeFailure(c, "ingredients", err)
		return
	}
	c.JSON(http.StatusOK, types.NewPage(page.Names, page.Meta))
}

func (h *CatalogHandler) ListRecipes(c *gin.Context) {
	page, err := h.catalog.ListRecipes(c.Request.Context(), limitsFor(EndpointRecipes), pageRequest(c))
	if err != nil {
		h.storeFailure(c, "recipes", err)
		return
	}
	c.JSON(http.StatusOK, types.NewPage(types.NewRecipeResponses(page.Recipes), page.Meta))
}

func (h *CatalogHandler) FilterRecipes(c *gin.Context) {
	page, err := h.catalog.FilterRecipes(c.Request.Context(), recipeQuery(c), limitsFor(EndpointFilter), pageRequest(c))
	if err != nil {
		var orderErr *service.InvalidOrderError
		if errors.As(err, &orderErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": orderErr.Error()})
			return
		}
		h.storeFailure(c, "recipes", err)
		return
	}
	c.JSON(http.StatusOK, types.NewPage(types.NewRecipeResponses(page.Recipes), page.Meta))
}

// storeFailure logs err and answers 500 without leaking store details.
func (h *CatalogHandler) storeFailure(c *gin.Context, what string, err error) {
	_ = c.Error(err)
	logging.WithContext(c.Request.Context(), h.logger).Error("failed to fetch "+what,
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch " + what})
}
