package server

import (
	"time"

	"replyflow/internal/auth"
	"replyflow/internal/autoreply"
	"replyflow/internal/config"
	"replyflow/internal/handlers"
	"replyflow/internal/rulestore"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Server represents the application server
type Server struct {
	echo   *echo.Echo
	db     *sqlx.DB
	config *config.Config
	logger zerolog.Logger
	store  *rulestore.Store
	runner *autoreply.Runner
	authMg *auth.Manager
}

// New creates a new server instance
func New(cfg *config.Config, db *sqlx.DB, store *rulestore.Store, runner *autoreply.Runner, logger zerolog.Logger) *Server {
	return &Server{
		config: cfg,
		db:     db,
		store:  store,
		runner: runner,
		logger: logger,
		authMg: auth.NewManager(cfg.APITokens),
	}
}

// zerologMiddleware creates a zerolog-based logging middleware for Echo
func (s *Server) zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			s.logger.Info().
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Str("user_agent", req.UserAgent()).
				Msg("HTTP request")

			return err
		}
	}
}

// Initialize sets up the Echo framework with middleware and routes
func (s *Server) Initialize() {
	s.echo = echo.New()

	// Middleware
	s.echo.Use(s.zerologMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())

	// Hide Echo banner
	s.echo.HideBanner = true

	// Setup routes
	s.setupRoutes()
}

// setupRoutes configures all the application routes
func (s *Server) setupRoutes() {
	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// Health and metrics endpoints (kept at root level for monitoring)
	s.echo.GET("/healthz", handlers.HealthHandler(s.config.Version))
	s.echo.GET("/healthz/db", handlers.DBHealthHandler(s.db))
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Authenticated API endpoints under /api prefix
	api := s.echo.Group("/api", auth.Middleware(s.authMg))
	api.GET("/", handlers.RootHandler(s.config.Version))
	api.POST("/auto-reply/run", handlers.RunAutoReplyHandler(s.runner, s.logger))
	api.GET("/config", handlers.GetConfigHandler(s.store, s.config.SlackConfigured()))
	api.PUT("/config", handlers.UpdateConfigHandler(s.store, s.config.SlackConfigured()))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().Str("port", s.config.Port).Msg("Server starting")
	return s.echo.Start(":" + s.config.Port)
}
