package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/export"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

var (
	adminUsername string
	adminEmail    string
	adminPassword string
	exportOut     string
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		_, logger, db, err := setup(ctx)
		if err != nil {
			return err
		}
		defer pkgdb.Close(db)

		if adminPassword == "" {
			adminPassword = os.Getenv("ADMIN_PASSWORD")
		}
		svc := &service.AuthService{Repo: &repo.GormRepo{DB: db}, Events: events.NopPublisher{}}
		u, err := svc.SeedAdmin(ctx, adminUsername, adminEmail, adminPassword)
		if err != nil {
			return fmt.Errorf("seed admin: %s", service.Message(err, err.Error()))
		}
		logger.Info("seed_admin_success", "user_id", u.ID, "email", u.Email)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export-inventory",
	Short: "Write every product to an Excel workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		_, logger, db, err := setup(ctx)
		if err != nil {
			return err
		}
		defer pkgdb.Close(db)

		products, err := (&repo.GormRepo{DB: db}).ListProducts(ctx, repo.ProductFilter{})
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		w := bufio.NewWriter(f)
		if err := export.WriteProducts(w, products); err != nil {
			f.Close()
			return fmt.Errorf("write workbook: %w", err)
		}
		if err := w.Flush(); err != nil {
			f.Close()
			return fmt.Errorf("write workbook: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		logger.Info("export_success", "file", exportOut, "products", len(products))
		return nil
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Push every product to the search index",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, logger, db, err := setup(ctx)
		if err != nil {
			return err
		}
		defer pkgdb.Close(db)

		if cfg.ESURL == "" {
			return fmt.Errorf("missing required env %s", "ES_URL")
		}
		ix, err := search.NewESIndexer(ctx, search.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			return err
		}

		svc := &service.CatalogService{Repo: &repo.GormRepo{DB: db}, Index: ix, Events: events.NopPublisher{}}
		n, err := svc.Reindex(ctx)
		if err != nil {
			return err
		}
		logger.Info("reindex_success", "products", n)
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().StringVar(&adminUsername, "username", "admin", "administrator display name")
	seedAdminCmd.Flags().StringVar(&adminEmail, "email", "", "administrator email")
	seedAdminCmd.Flags().StringVar(&adminPassword, "password", "", "administrator password (or ADMIN_PASSWORD)")
	_ = seedAdminCmd.MarkFlagRequired("email")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "inventory.xlsx", "output file")
}
