// Command server runs the sellerdesk operator service.
//
// Configuration is read from a YAML file (see pkg/config) with
// SELLERDESK_* environment variable overrides. A .env file in the
// working directory is loaded first when present.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sellerdesk/sellerdesk/pkg/avito"
	"github.com/sellerdesk/sellerdesk/pkg/config"
	"github.com/sellerdesk/sellerdesk/pkg/dialog"
	"github.com/sellerdesk/sellerdesk/pkg/drive"
	"github.com/sellerdesk/sellerdesk/pkg/feed"
	"github.com/sellerdesk/sellerdesk/pkg/sessions"
	sessmem "github.com/sellerdesk/sellerdesk/pkg/sessions/memory"
	sessredis "github.com/sellerdesk/sellerdesk/pkg/sessions/redis"
	"github.com/sellerdesk/sellerdesk/pkg/storage"
	storemem "github.com/sellerdesk/sellerdesk/pkg/storage/memory"
	"github.com/sellerdesk/sellerdesk/pkg/storage/postgres"
	"github.com/sellerdesk/sellerdesk/pkg/storage/sqlite"
	transporthttp "github.com/sellerdesk/sellerdesk/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	// A local .env is a convenience for development; missing is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer store.Close()
	logger.Info("storage ready", slog.String("type", cfg.Storage.Type))

	sessStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating session store: %w", err)
	}
	defer sessStore.Close()
	logger.Info("sessions ready", slog.String("type", cfg.Sessions.Type))

	upstream := avito.NewClient(cfg.Upstream.BaseURL, store, store, cfg.Upstream.Timeout)
	feedClient := feed.NewClient(cfg.Feed.BaseURL, cfg.Feed.Timeout)
	driveClient := drive.NewClient(cfg.Drive.AccessToken, cfg.Drive.FolderID)

	engine := dialog.NewEngine(sessStore, store, upstream, feedClient, driveClient, logger)

	opts := []transporthttp.ServerOption{
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(logger),
	}
	if cfg.Auth.Type == "apikey" {
		keys := make([]string, 0, len(cfg.Auth.APIKeys))
		for _, k := range cfg.Auth.APIKeys {
			keys = append(keys, k.Key)
		}
		opts = append(opts, transporthttp.WithAuth(transporthttp.NewAuthenticator(keys)))
	}

	srv := transporthttp.NewServer(engine, opts...)
	return srv.ListenAndServe(ctx)
}

func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Type {
	case "sqlite":
		return sqlite.New(cfg.Storage.SQLite.Path)
	case "postgres":
		return postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
	default:
		return storemem.New(), nil
	}
}

func newSessionStore(ctx context.Context, cfg *config.Config) (sessions.Store, error) {
	if cfg.Sessions.Type == "redis" {
		return sessredis.New(ctx, cfg.Sessions.URL, cfg.Sessions.TTL)
	}
	return sessmem.New(), nil
}
