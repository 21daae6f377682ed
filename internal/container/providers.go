// Package container provides dependency injection and lifecycle management
// for the bills application.
package container

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/dispatcher"
	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/domain/event"
	"github.com/garyjia/billed/internal/infrastructure/authz"
	"github.com/garyjia/billed/internal/infrastructure/export"
	"github.com/garyjia/billed/internal/infrastructure/external/api"
	"github.com/garyjia/billed/internal/infrastructure/persistence/repository"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/billed/internal/infrastructure/storage"
	"github.com/garyjia/billed/internal/infrastructure/store"
	httpiface "github.com/garyjia/billed/internal/interfaces/http"
	"github.com/garyjia/billed/internal/interfaces/http/view"
	"github.com/garyjia/billed/pkg/database"
	"github.com/garyjia/billed/pkg/utils"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// ProvideDatabase opens the sqlite database and applies pending migrations.
func ProvideDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	migrations, err := database.MigrationsFS(cfg.MigrationsDir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}
	if err := database.NewMigrator(db, logger).RunMigrations(migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideStores returns the per-user store provider for the configured driver.
// The sqlite driver needs dbBundle; the api driver ignores it.
func ProvideStores(cfg *config.StoreConfig, dbBundle *DatabaseBundle, logger *zap.Logger) (httpiface.StoreProvider, error) {
	switch cfg.Driver {
	case config.StoreDriverSQLite:
		if dbBundle == nil {
			return nil, fmt.Errorf("sqlite store requires a database")
		}
		repo := repository.NewBillRepository(dbBundle.DB.DB, logger)
		return store.NewFactory(repo, dbBundle.TransactionMgr), nil
	case config.StoreDriverAPI:
		return api.NewClient(api.Config{
			BaseURL: cfg.API.BaseURL,
			Token:   cfg.API.Token,
			Timeout: cfg.API.Timeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// ProvideReceiptStorage creates the receipts directory and its storage.
func ProvideReceiptStorage(cfg *config.ReceiptsConfig, logger *zap.Logger) (*storage.LocalFileStorage, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create receipts directory: %w", err)
	}
	return storage.NewLocalFileStorage(cfg.Dir, cfg.URLPrefix, logger), nil
}

// ProvideEvents creates the bill event dispatcher with the audit log subscriber.
func ProvideEvents(logger *zap.Logger) *dispatcher.Dispatcher {
	kv := utils.NewKeyValueLogger(logger.Named("events"))
	d := dispatcher.NewDispatcher(dispatcher.WithLogger(kv))
	for _, t := range []event.Type{event.TypeBillCreated, event.TypeBillReviewed} {
		d.Subscribe(t, "audit-log", dispatcher.AuditLogHandler(kv))
	}
	return d
}

// ServerDeps holds what ProvideServer wires together.
type ServerDeps struct {
	Config   *config.Config
	Stores   httpiface.StoreProvider
	Receipts *storage.LocalFileStorage
	Events   *dispatcher.Dispatcher
	Logger   *zap.Logger
}

// ProvideServer builds the HTTP server with its views and access policy.
func ProvideServer(deps *ServerDeps) (*httpiface.Server, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load views: %w", err)
	}

	authorizer, err := authz.NewDefaultAuthorizer()
	if err != nil {
		return nil, err
	}

	cfg := deps.Config
	return httpiface.NewServer(httpiface.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Mode:         cfg.Server.Mode,
	}, httpiface.Deps{
		Stores:            deps.Stores,
		Receipts:          deps.Receipts,
		Events:            deps.Events,
		ReceiptsDir:       deps.Receipts.BaseDir(),
		ReceiptsURLPrefix: cfg.Receipts.URLPrefix,
		Authorizer:        authorizer,
		Renderer:          renderer,
		Exporter:          export.NewExcelExporter(deps.Logger),
		Sessions:          httpiface.NewSessionCodec(cfg.Server.SessionSecret, cfg.Server.Mode == "release"),
		ModalWidth:        cfg.UI.ModalWidth,
	}, utils.NewKeyValueLogger(deps.Logger)), nil
}
