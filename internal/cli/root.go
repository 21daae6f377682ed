// Package cli defines the billed command line.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/container"
	"github.com/garyjia/billed/pkg/database"
	"github.com/garyjia/billed/pkg/utils"
)

// Execute runs the root command
func Execute() error {
	return NewRoot().Execute()
}

// NewRoot builds the billed command tree
func NewRoot() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "billed",
		Short:         "Employee expense reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to the YAML config file (empty for env only)")

	root.AddCommand(
		ServeCmd(&configPath),
		MigrateCmd(&configPath),
	)
	return root
}

// ServeCmd starts the HTTP server until interrupted
func ServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web application",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			logger.Info("Starting billed",
				zap.String("version", "1.0.0"),
				zap.Int("port", cfg.Server.Port),
				zap.String("store", cfg.Store.Driver))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := container.NewContainer(cfg, logger)
			if err != nil {
				return err
			}
			if err := c.Start(ctx); err != nil {
				return err
			}
			defer c.Close()

			return c.Server().Start(ctx)
		},
	}
}

// MigrateCmd applies pending database migrations and exits
func MigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			bundle, err := container.ProvideDatabase(&cfg.Database, logger)
			if err != nil {
				return err
			}
			defer bundle.DB.Close()

			versions, err := database.NewMigrator(bundle.DB, logger).AppliedVersions()
			if err != nil {
				return fmt.Errorf("failed to read applied migrations: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d migrations applied to %s\n", len(versions), cfg.Database.Path)
			return nil
		},
	}
}

func bootstrap(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

