package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/dispatcher"
	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/infrastructure/storage"
	httpiface "github.com/garyjia/billed/internal/interfaces/http"
)

// Container manages all application dependencies and lifecycle.
// Components start in dependency order and close in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	database *DatabaseBundle
	stores   httpiface.StoreProvider
	receipts *storage.LocalFileStorage
	events   *dispatcher.Dispatcher
	server   *httpiface.Server

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components:
// 1. Database (sqlite store only)
// 2. Bill stores
// 3. Receipt storage
// 4. Bill event dispatcher
// 5. HTTP server
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization",
		zap.String("store_driver", c.config.Store.Driver))

	if c.config.Store.Driver == config.StoreDriverSQLite {
		db, err := ProvideDatabase(&c.config.Database, c.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		c.database = db
		c.logger.Info("Database initialized", zap.String("path", c.config.Database.Path))
	}

	stores, err := ProvideStores(&c.config.Store, c.database, c.logger)
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize stores: %w", err)
	}
	c.stores = stores

	receipts, err := ProvideReceiptStorage(&c.config.Receipts, c.logger)
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize receipt storage: %w", err)
	}
	c.receipts = receipts
	c.logger.Info("Receipt storage initialized", zap.String("dir", c.config.Receipts.Dir))

	c.events = ProvideEvents(c.logger)

	server, err := ProvideServer(&ServerDeps{
		Config:   c.config,
		Stores:   c.stores,
		Receipts: c.receipts,
		Events:   c.events,
		Logger:   c.logger,
	})
	if err != nil {
		c.closeEvents()
		c.closeDatabase()
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}
	c.server = server

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error
	if c.server != nil {
		if err := c.server.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop server: %w", err))
		}
	}
	if err := c.closeEvents(); err != nil {
		errs = append(errs, fmt.Errorf("close events: %w", err))
	}
	if err := c.closeDatabase(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors: %v", len(errs), errs)
	}

	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) closeEvents() error {
	if c.events == nil {
		return nil
	}
	err := c.events.Close()
	c.events = nil
	return err
}

func (c *Container) closeDatabase() error {
	if c.database == nil {
		return nil
	}
	err := c.database.DB.Close()
	c.database = nil
	if err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
		return err
	}
	c.logger.Info("Database closed")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health() *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	switch {
	case c.config.Store.Driver != config.StoreDriverSQLite:
		status.Components["database"] = ComponentHealth{Healthy: true, Message: "not used"}
	case c.database == nil:
		status.Components["database"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	default:
		if err := c.database.DB.Ping(); err != nil {
			status.Components["database"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("ping failed: %v", err),
			}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	}

	if c.stores != nil {
		status.Components["store"] = ComponentHealth{Healthy: true, Message: c.config.Store.Driver}
	} else {
		status.Components["store"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	return status
}

// Server returns the HTTP server.
func (c *Container) Server() *httpiface.Server {
	return c.server
}

// Stores returns the per-user store provider.
func (c *Container) Stores() httpiface.StoreProvider {
	return c.stores
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}
