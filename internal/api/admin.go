package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/nocapcooking/backend/internal/logging"
	"github.com/pageza/nocapcooking/backend/internal/middleware"
	"github.com/pageza/nocapcooking/backend/internal/service"
	"go.uber.org/zap"
)

// AdminHandler serves operator endpoints behind an admin token.
type AdminHandler struct {
	catalog service.ICatalogService
	tokens  middleware.TokenValidator
	logger  *zap.Logger
}

func NewAdminHandler(catalog service.ICatalogService, tokens middleware.TokenValidator, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{catalog: catalog, tokens: tokens, logger: logger}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	admin.Use(middleware.AdminAuth(h.tokens))
	{
		admin.GET("/stats", h.Stats)
	}
}

// Stats returns catalog row counts.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.catalog.Stats(c.Request.Context())
	if err != nil {
		logging.WithContext(c.Request.Context(), h.logger).Error("failed to fetch stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stats":        stats,
		"requested_by": c.GetString(middleware.ContextKeyAdminSubject),
	})
}
