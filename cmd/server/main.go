package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/borelog/internal/blob"
	"github.com/JonMunkholm/borelog/internal/config"
	"github.com/JonMunkholm/borelog/internal/core"
	"github.com/JonMunkholm/borelog/internal/history"
	"github.com/JonMunkholm/borelog/internal/logging"
	"github.com/JonMunkholm/borelog/internal/metrics"
	"github.com/JonMunkholm/borelog/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	store, err := blob.Open(ctx, blobConfig(cfg.Storage))
	if err != nil {
		slog.Error("failed to open blob storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	slog.Info("blob storage ready", "driver", store.Driver())

	// History is optional; a nil HistoryStore disables it.
	var hist core.HistoryStore
	if cfg.Database.Enabled() {
		pool, err := history.Connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if u, err := url.Parse(cfg.Database.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		}

		hs := history.NewStore(pool)
		if err := hs.Migrate(ctx); err != nil {
			slog.Error("failed to migrate import history", "error", err)
			os.Exit(1)
		}
		hist = hs
	} else {
		slog.Info("import history disabled (no DATABASE_URL)")
	}

	var m *metrics.Metrics
	if cfg.Server.MetricsEnabled {
		m = metrics.New()
	}

	service := core.NewService(store, hist, m, cfg.Import)
	server := web.NewServer(service, cfg, m)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop accepting requests first, then let running imports finish.
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		status := service.ImportLimiterStatus()
		if status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

func blobConfig(s config.StorageConfig) blob.Config {
	return blob.Config{
		Driver:          blob.Driver(s.Driver),
		Root:            s.Root,
		Bucket:          s.Bucket,
		Region:          s.Region,
		Endpoint:        s.Endpoint,
		AccessKeyID:     s.AccessKeyID,
		SecretAccessKey: s.SecretAccessKey,
		PathStyle:       s.PathStyle,
	}
}
