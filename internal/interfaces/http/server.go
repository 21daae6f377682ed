// Package http provides the HTTP adapter: it maps requests onto the bills
// containers and mounts the rendered views.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/route"
	"github.com/garyjia/billed/internal/infrastructure/authz"
	"github.com/garyjia/billed/internal/interfaces/http/view"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Mode         string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Mode:         gin.ReleaseMode,
	}
}

// Deps holds what the handlers need
type Deps struct {
	Stores            StoreProvider
	Receipts          port.ReceiptStorage
	Events            port.EventPublisher
	ReceiptsDir       string
	ReceiptsURLPrefix string
	Authorizer        Authorizer
	Renderer          *view.Renderer
	Exporter          BillsExporter
	Sessions          *SessionCodec
	ModalWidth        int
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	deps       Deps
	logger     Logger
}

// NewServer creates a new HTTP server
func NewServer(config ServerConfig, deps Deps, logger Logger) *Server {
	mode := config.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	router := gin.New()

	server := &Server{
		config: config,
		router: router,
		deps:   deps,
		logger: logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	rt := NewRouter(s.deps.Renderer, s.deps.Authorizer, s.deps.Sessions, s.logger)
	handlers := &Handlers{
		router:     rt,
		renderer:   s.deps.Renderer,
		sessions:   s.deps.Sessions,
		stores:     s.deps.Stores,
		receipts:   s.deps.Receipts,
		events:     s.deps.Events,
		exporter:   s.deps.Exporter,
		modalWidth: s.deps.ModalWidth,
		logger:     s.logger,
	}

	s.router.GET("/health", handlers.HealthCheck)
	s.router.NoRoute(handlers.NotFound)

	s.router.GET(route.Login.Path(), handlers.LoginPage)
	s.router.POST("/login", handlers.Login)
	s.router.POST("/logout", handlers.Logout)

	// Employee
	s.router.GET(route.Bills.Path(), rt.Guard(route.Bills, authz.ActionRead), handlers.Bills)
	s.router.POST(view.NewBillAction, rt.Guard(route.Bills, authz.ActionWrite), handlers.NewBillButton)
	s.router.GET(view.ExportPath, rt.Guard(route.Bills, authz.ActionRead), handlers.ExportBills)
	s.router.GET(route.NewBill.Path(), rt.Guard(route.NewBill, authz.ActionRead), handlers.NewBillPage)
	s.router.POST(route.NewBill.Path(), rt.Guard(route.NewBill, authz.ActionWrite), handlers.SubmitNewBill)

	// Admin
	s.router.GET(route.Dashboard.Path(), rt.Guard(route.Dashboard, authz.ActionRead), handlers.Dashboard)
	s.router.POST(route.Dashboard.Path()+"/:id", rt.Guard(route.Dashboard, authz.ActionWrite), handlers.Decide)

	if s.deps.ReceiptsDir != "" && s.deps.ReceiptsURLPrefix != "" {
		receipts := s.router.Group(s.deps.ReceiptsURLPrefix, rt.RequireUser())
		receipts.Static("/", s.deps.ReceiptsDir)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
