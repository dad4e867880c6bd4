// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/opdeck/opdeck/internal/api"
	"github.com/opdeck/opdeck/internal/assist"
	"github.com/opdeck/opdeck/internal/backup"
	"github.com/opdeck/opdeck/internal/dashboard"
	"github.com/opdeck/opdeck/internal/index"
	"github.com/opdeck/opdeck/internal/mcpserver"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/modules"
	"github.com/opdeck/opdeck/internal/settings"
	"github.com/opdeck/opdeck/internal/sse"
	"github.com/opdeck/opdeck/internal/storage"
	"github.com/opdeck/opdeck/internal/watch"
)

// core holds the wired application services shared by the HTTP and MCP
// entry points.
type core struct {
	store    *storage.Store
	registry *modules.Registry
	agg      *dashboard.Aggregator
	backup   *backup.Service
	settings *settings.Service
	db       *index.DB // nil when the index is disabled
	brain    assist.Client
}

// buildCore wires storage, feature services, the search index, and the
// collaborator from config. notify may be nil.
func buildCore(ctx context.Context, cfg *Config, logger *slog.Logger, notify modules.Notifier) (*core, error) {
	if err := os.MkdirAll(cfg.Data.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	provider, err := storage.NewFS(cfg.Data.Path, cfg.Data.QuotaBytes)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	store, err := storage.New(provider, logger)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	onCommitError := func(collection string, cerr error) {
		logger.Error("persist failed, in-memory state ahead of storage",
			slog.String("collection", collection), slog.String("error", cerr.Error()))
	}

	registry := modules.NewRegistry(store, logger, notify, onCommitError)

	c := &core{
		store:    store,
		registry: registry,
		agg:      dashboard.New(store, 3),
		backup:   backup.New(store, logger),
		settings: settings.New(store, logger),
		brain:    assist.Disabled{},
	}

	if cfg.Index.Enabled() {
		db, err := index.Open(cfg.Index.Path)
		if err != nil {
			return nil, fmt.Errorf("init index: %w", err)
		}
		c.db = db
		registry.Notes.SetIndexer(index.NewIndexer(db))
	}

	// Seed empty collections, then bring the index up to date.
	registry.Init()
	if c.db != nil {
		if err := index.Sync(c.db, store, logger); err != nil {
			logger.Warn("initial sync failed", slog.String("error", err.Error()))
		}
	}

	if cfg.Assist.APIKey != "" {
		gem, err := assist.NewGemini(ctx, cfg.Assist.APIKey, cfg.Assist.Model, logger)
		if err != nil {
			logger.Warn("assist unavailable, using fallbacks", slog.String("error", err.Error()))
		} else {
			c.brain = gem
		}
	}

	return c, nil
}

func (c *core) close() {
	if c.db != nil {
		c.db.Close()
	}
}

func (c *core) noteIndex() index.NoteIndex {
	if c.db == nil {
		return nil
	}
	return c.db
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_path", cfg.Data.Path),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker, fed by every record mutation.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	c, err := buildCore(ctx, cfg, logger, broker.PublishRecordEvent)
	if err != nil {
		return err
	}
	defer c.close()

	h := api.NewHandler(c.store, c.registry, c.agg, c.backup, c.settings, c.noteIndex())
	ah := api.NewAssistHandler(c.brain, c.registry)
	assets := api.NewAssetHandler(cfg.Data.Path)
	apiRouter := api.NewRouter(h, ah, assets, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)
	r.Get("/assets/{filename}", assets.ServeFile)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the data dir for writes from other process instances: reload
	// the affected mirror, re-sync the note index, and tell clients.
	g.Go(func() error {
		return watch.Run(gCtx, cfg.Data.Path, logger, func(key string) {
			if !c.registry.Reload(key) {
				return
			}
			if key == models.CollectionNotes && c.db != nil {
				if err := index.Sync(c.db, c.store, logger); err != nil {
					logger.Warn("watch sync failed", slog.String("error", err.Error()))
				}
			}
			broker.Publish(sse.Event{
				Type: "collection.reloaded",
				Data: map[string]string{"collection": key},
			})
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools over stdio. Logs go to stderr so stdout
// stays clean for the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	c, err := buildCore(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer c.close()

	srv := mcpserver.New(c.registry, c.agg, c.noteIndex(), c.brain)
	logger.Info("MCP server starting on stdio")
	if err := srv.ServeStdio(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
