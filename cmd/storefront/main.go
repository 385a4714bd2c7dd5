package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/repo"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Online store with inventory, cart, checkout and live notifications",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML file overlaid on the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedAdminCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reindexCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment, the optional --config file, and checks
// the result.
func loadConfig() (config.Config, error) {
	cfg := config.Load()
	if configFile != "" {
		var err error
		if cfg, err = config.MergeFile(cfg, configFile); err != nil {
			return cfg, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setup loads config, installs the default logger and opens the database.
func setup(ctx context.Context) (config.Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, nil, nil, err
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	db, err := pkgdb.OpenDriver(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return cfg, logger, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, logger, db, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		_, logger, db, err := setup(ctx)
		if err != nil {
			return err
		}
		defer pkgdb.Close(db)

		if err := (&repo.GormRepo{DB: db}).Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrate_success")
		return nil
	},
}
