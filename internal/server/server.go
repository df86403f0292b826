package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/nocapcooking/backend/config"
	"github.com/pageza/nocapcooking/backend/internal/middleware"
	"github.com/pageza/nocapcooking/backend/internal/router"
	"github.com/pageza/nocapcooking/backend/internal/service"
)

// Version is reported by /health. It is set at build time with -ldflags.
var Version = "dev"

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// New wires the catalog services into an HTTP server. redisClient may be nil,
// which disables the filter rate limit.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	var limiter *middleware.RateLimiter
	if redisClient != nil {
		limiter = middleware.NewFilterRateLimiter(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow, logger)
	}

	engine := router.SetupRouter(router.Dependencies{
		Catalog:        service.NewCatalogService(db),
		Tokens:         service.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer),
		RateLimiter:    limiter,
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		ProtectMetrics: cfg.JWTSecret != "",
		Version:        Version,
	})

	return &Server{
		cfg:    cfg,
		router: engine,
		logger: logger,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. A graceful stop returns nil.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.http.Addr), zap.String("version", Version))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, waiting at most the configured
// shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Info("shutting down server", zap.Duration("timeout", timeout))
	return s.http.Shutdown(ctx)
}
