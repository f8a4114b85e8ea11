package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"calmate-web/internal/api"
	"calmate-web/internal/config"
	"calmate-web/internal/database"
	"calmate-web/internal/event"
	"calmate-web/internal/handler"
	"calmate-web/internal/metrics"
	"calmate-web/internal/middleware"
	"calmate-web/internal/resource"
	"calmate-web/internal/router"
	"calmate-web/internal/session"
	"calmate-web/internal/view"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	client := api.New(cfg.APIBaseURL, cfg.UpstreamTimeout,
		api.WithRetries(cfg.UpstreamRetries),
		api.WithRecorder(collector),
	)

	var cleanupFuncs []func()

	// Sessions live in memory unless a database is configured, in which case
	// they survive restarts.
	var store session.Store = session.NewMemoryStore()
	var healthCheck func() error
	if cfg.DatabaseURL != "" {
		slog.Info("connecting to PostgreSQL")
		db, dbErr := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if dbErr != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", dbErr)
		}
		if err := db.EnsureSchema(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}
		store = session.NewPostgresStore(db.Pool)
		healthCheck = func() error { return db.Health(context.Background()) }
		cleanupFuncs = append(cleanupFuncs, db.Close)
		slog.Info("database ready")
	}

	bus := event.NewBus()
	events, unsubscribe := bus.Subscribe()
	cleanupFuncs = append(cleanupFuncs, unsubscribe)
	go watchSessions(events, collector)

	manager := session.NewManager(client, store, bus, cfg.SessionTTL)
	cookies := session.NewCookieCodec(cfg.SessionCookieName, cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure)
	resources := resource.NewRegistry(client, bus)
	cleanupFuncs = append(cleanupFuncs, resources.Shutdown)

	renderer, err := view.New()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	guard := middleware.NewGuard(manager, cookies)
	authHandler := handler.NewAuthHandler(manager, cookies, renderer)
	pageHandler := handler.NewPageHandler(resources, renderer)
	foodHandler := handler.NewFoodHandler(resources, renderer, cfg.MaxUploadSize, cfg.MaxImageEdge)
	socialHandler := handler.NewSocialHandler(resources, renderer)
	settingsHandler := handler.NewSettingsHandler(resources, renderer)
	dataHandler := handler.NewDataHandler(resources)

	appRouter := router.New(cfg, guard, registry,
		authHandler, pageHandler, foodHandler, socialHandler, settingsHandler, dataHandler,
		healthCheck,
	)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{server: server, cleanupFuncs: cleanupFuncs}, nil
}

// watchSessions keeps the active-session gauge in step with lifecycle events.
func watchSessions(ch <-chan event.Event, collector *metrics.Collector) {
	for e := range ch {
		switch e.Type {
		case event.TypeSessionAuthenticated:
			collector.SessionOpened()
		case event.TypeSessionEnded:
			collector.SessionClosed()
		}
	}
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
