// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/review"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
)

// Services are the domain services the HTTP layer drives
type Services struct {
	Users    *user.Service
	Products *product.Service
	Reviews  *review.Service
	Carts    *cart.Service
	Orders   *order.Service
	Webhooks handlers.WebhookVerifier
}

// Dependency is an external system reported by the health check
type Dependency struct {
	Name string
	Ping func(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	config       *config.Config
	log          logrus.FieldLogger
	gin          *gin.Engine
	httpServer   *http.Server
	services     Services
	dependencies []Dependency
	rateCounter  middleware.RateCounter
	startedAt    time.Time
}

// Option customizes a Server
type Option func(*Server)

// WithDependencies registers systems checked by /health
func WithDependencies(deps ...Dependency) Option {
	return func(s *Server) { s.dependencies = append(s.dependencies, deps...) }
}

// WithRateCounter enables per-IP rate limiting
func WithRateCounter(counter middleware.RateCounter) Option {
	return func(s *Server) { s.rateCounter = counter }
}

// NewServer creates a new HTTP server instance with its routes mounted
func NewServer(cfg *config.Config, log logrus.FieldLogger, services Services, opts ...Option) *Server {
	s := &Server{
		config:    cfg,
		log:       log,
		services:  services,
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.gin = gin.New()
	if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		log.WithError(err).Warn("Ignoring invalid TRUSTED_PROXIES")
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.log.Infof("🚀 HTTP Server starting on port %s", s.config.Server.Port)
	s.log.Infof("🌐 API Base URL: http://localhost:%s/api/v1", s.config.Server.Port)
	s.log.Infof("📊 Health Check: http://localhost:%s/health", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("🛑 Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.log.Info("✅ HTTP server stopped gracefully")
	return nil
}

func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.log))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders(s.config))
	s.gin.Use(middleware.RateLimit(s.rateCounter, s.config.Security.RateLimitPerMinute, s.log))
	s.gin.Use(middleware.RequestSizeLimit(s.config.Server.MaxBodyBytes))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	apiV1 := s.gin.Group("/api/v1")
	apiV1.Use(middleware.Session(s.config, s.services.Users))

	routes.SetupRoutes(apiV1, routes.Handlers{
		Auth:     handlers.NewAuthHandler(s.services.Users, s.config, s.log),
		Products: handlers.NewProductHandler(s.services.Products, s.services.Reviews, s.log),
		Seller:   handlers.NewSellerHandler(s.services.Products, s.log),
		Cart:     handlers.NewCartHandler(s.services.Carts, s.log),
		Orders:   handlers.NewOrderHandler(s.services.Orders, s.log),
		Webhooks: handlers.NewWebhookHandler(s.services.Webhooks, s.services.Orders, s.log),
	})
}

// healthCheck pings every registered dependency
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true
	for _, dep := range s.dependencies {
		if err := dep.Ping(ctx); err != nil {
			s.log.WithError(err).WithField("dependency", dep.Name).Warn("Health check failed")
			checks[dep.Name] = "unavailable"
			healthy = false
			continue
		}
		checks[dep.Name] = "ok"
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":      status,
		"checks":      checks,
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck reports that the router is serving
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
