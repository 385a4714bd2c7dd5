package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/upload"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

const sweepInterval = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, db, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := pkgdb.Close(db); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}()

	r := &repo.GormRepo{DB: db}
	if cfg.AutoMigrate {
		if err := r.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pub := publisher(cfg, logger)
	defer func() {
		if err := pub.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}()

	var index search.Indexer
	if cfg.ESURL != "" {
		ix, err := search.NewESIndexer(ctx, search.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			logger.Warn("search_disabled", "reason", "elasticsearch unavailable", "error", err)
		} else {
			index = ix
		}
	}

	hub := notify.NewHub()

	store, memory, err := sessionStore(cfg)
	if err != nil {
		return err
	}
	sessions := session.NewManager(store, []byte(cfg.SessionSecret), cfg.SessionTTL)
	sessions.Secure = cfg.CookieSecure
	sessions.Notifier = hub

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = cfg.CookieSecure

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.Secure())
	e.Use(loggingmw.RequestLogger(logger))

	err = httpserver.Register(e, &httpserver.Deps{
		DB:       db,
		Sessions: sessions,
		Hub:      hub,
		Uploads:  upload.NewDir(cfg.UploadDir),
		CSRF:     csrfCfg,
		Auth:     &service.AuthService{Repo: r, Events: pub},
		Users:    &service.UserService{Repo: r, Events: pub},
		Catalog:  &service.CatalogService{Repo: r, Index: index, Events: pub},
		Cart:     &service.CartService{Repo: r, Events: pub},
		Checkout: &service.CheckoutService{Repo: r, Events: pub},
	})
	if err != nil {
		return fmt.Errorf("register routes: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server_start", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error { return hub.Run(gctx) })
	if memory != nil {
		g.Go(func() error { return memory.Run(gctx, sweepInterval) })
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server_shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown_complete")
	return nil
}

func publisher(cfg config.Config, logger *slog.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("events_disabled", "reason", "no kafka brokers configured")
		return events.NopPublisher{}
	}
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
}

// sessionStore returns the configured store. The memory store is also
// returned on its own so its sweeper can be started.
func sessionStore(cfg config.Config) (session.Store, *session.MemoryStore, error) {
	switch cfg.SessionBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return session.NewRedisStore(client), nil, nil
	case "", "memory":
		m := session.NewMemoryStore()
		return m, m, nil
	}
	return nil, nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
}
