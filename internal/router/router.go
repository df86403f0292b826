package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pageza/nocapcooking/backend/internal/api"
	"github.com/pageza/nocapcooking/backend/internal/middleware"
	"github.com/pageza/nocapcooking/backend/internal/service"
	"go.uber.org/zap"
)

// APIPrefix is the versioned mount point. Catalog routes are served both at
// the root and under it.
const APIPrefix = "/api/v1"

// Dependencies are the collaborators the route table wires together.
type Dependencies struct {
	Catalog     service.ICatalogService
	Tokens      middleware.TokenValidator
	RateLimiter *middleware.RateLimiter
	Logger      *zap.Logger

	AllowedOrigins []string
	// ProtectMetrics puts /metrics behind the admin token.
	ProtectMetrics bool
	Version        string
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	// Both slash forms are registered explicitly.
	router.RedirectTrailingSlash = false

	router.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.AccessLog(logger),
		middleware.Metrics(),
		middleware.CORS(deps.AllowedOrigins),
	)
	router.NoRoute(middleware.NotFound())

	catalog := api.NewCatalogHandler(deps.Catalog, logger, deps.RateLimiter)
	admin := api.NewAdminHandler(deps.Catalog, deps.Tokens, logger)

	for _, group := range []*gin.RouterGroup{router.Group(""), router.Group(APIPrefix)} {
		catalog.RegisterRoutes(group)
		admin.RegisterRoutes(group)
	}

	api.NewHealthHandler(deps.Catalog, deps.Version).RegisterRoutes(router.Group(""))

	if deps.ProtectMetrics {
		router.GET("/metrics", middleware.AdminAuth(deps.Tokens), middleware.MetricsHandler())
	} else {
		router.GET("/metrics", middleware.MetricsHandler())
	}

	return router
}
