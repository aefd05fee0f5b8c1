// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/calloway/scribe/internal/api"
	"github.com/calloway/scribe/internal/cards"
	"github.com/calloway/scribe/internal/mcpserver"
	"github.com/calloway/scribe/internal/sse"
	"github.com/calloway/scribe/internal/stats"
	"github.com/calloway/scribe/internal/storage"
	"github.com/calloway/scribe/internal/views"
	"github.com/calloway/scribe/internal/watch"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. In MCP mode stdout carries the
	// protocol, so logs go to stderr.
	logOut := os.Stdout
	if app.mcpMode {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("project_path", cfg.Project.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure the project layout exists.
	contentRoot := filepath.Join(cfg.Project.Path, cfg.Project.ContentDir)
	if err := os.MkdirAll(contentRoot, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}

	// Initialize storage. The card store is excluded from scans so generated
	// cards never feed mentions back into the map.
	store, err := storage.NewFS(cfg.Project.Path, cfg.Project.CardsDir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize the statistics database.
	db, err := stats.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init stats db: %w", err)
	}
	defer db.Close()

	// SSE broker. Started in both modes; unused clients cost nothing.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Card reconciler: failed card writes surface to connected clients.
	rec := cards.New(store, cfg.Project.ContentDir, cfg.Project.CardsDir, logger, broker.Notice)

	// Derived views. The structure view additionally records a totals
	// snapshot after each refresh.
	var structView *views.Structure
	onStructure := func() {
		broker.PublishViewEvent("structure")
		t := structView.Totals()
		if _, err := db.Record(t.Words, t.Pages, t.PerFile); err != nil {
			logger.Error("stats record failed", slog.String("error", err.Error()))
		}
	}
	structView = views.NewStructure(store, cfg.Project.ContentDir, cfg.Project.WordsPerPage, logger, onStructure)

	charView := views.NewCharacters(store, rec, cfg.Project.ContentDir, logger, func() {
		broker.PublishViewEvent("characters")
	})
	markerView := views.NewMarkers(store, cfg.Project.ContentDir, logger, func() {
		broker.PublishViewEvent("markers")
	})
	taskView := views.NewTasks(store, cfg.Project.ContentDir, logger, func() {
		broker.PublishViewEvent("tasks")
	})

	group := views.NewGroup(logger)
	group.Register("characters", charView)
	group.Register("structure", structView)
	group.Register("markers", markerView)
	group.Register("tasks", taskView)

	// Initial scan before serving.
	if err := group.RefreshAllWait(ctx); err != nil {
		logger.Warn("initial refresh failed", slog.String("error", err.Error()))
	}

	// Debounced watcher-driven refreshes.
	scheduler := views.NewSingleFlight(cfg.Project.Debounce(), func() {
		if err := group.RefreshAllWait(context.Background()); err != nil {
			logger.Error("scheduled refresh failed", slog.String("error", err.Error()))
		}
	})
	defer scheduler.Stop()

	absContentRoot, err := filepath.Abs(contentRoot)
	if err != nil {
		return fmt.Errorf("resolve content root: %w", err)
	}
	absCardsDir, err := filepath.Abs(filepath.Join(cfg.Project.Path, cfg.Project.CardsDir))
	if err != nil {
		return fmt.Errorf("resolve cards dir: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start the file watcher.
	g.Go(func() error {
		return watch.Watch(gCtx, absContentRoot, []string{absCardsDir}, scheduler, logger)
	})

	if app.mcpMode {
		mcpSrv := mcpserver.New(store, charView, structView, markerView, taskView, group)
		g.Go(func() error {
			logger.Info("Starting MCP stdio server")
			return mcpSrv.ServeStdio()
		})
		g.Go(func() error {
			<-gCtx.Done()
			return nil
		})
		return g.Wait()
	}

	// Build API handler and router.
	h := api.NewHandler(charView, structView, markerView, taskView, group, db)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
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

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

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
