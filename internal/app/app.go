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

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"go-admin-panel/internal/apiclient"
	"go-admin-panel/internal/authclient"
	"go-admin-panel/internal/config"
	"go-admin-panel/internal/database"
	"go-admin-panel/internal/event"
	"go-admin-panel/internal/guard"
	"go-admin-panel/internal/handler"
	"go-admin-panel/internal/logger"
	"go-admin-panel/internal/metrics"
	"go-admin-panel/internal/permission"
	"go-admin-panel/internal/repository"
	"go-admin-panel/internal/router"
	"go-admin-panel/internal/session"
	"go-admin-panel/internal/websocket"
)

type App struct {
	server       *http.Server
	background   []func(ctx context.Context)
	cleanupFuncs []func()
}

// New wires the console server.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel))

	store, closeStore, err := newSessionStore(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	slog.Info("session store ready", "kind", cfg.SessionStore)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	authMetrics := metrics.New(registry)

	bus := event.NewBus()
	catalogue := permission.DefaultCatalogue()

	httpClient := &http.Client{Timeout: cfg.APITimeout}
	api := apiclient.New(cfg.APIBaseURL, cfg.APIRefreshPath, httpClient)
	manager := authclient.NewManager(store, api, authclient.Options{
		Catalogue:      catalogue,
		Bus:            bus,
		Metrics:        authMetrics,
		RefreshTimeout: cfg.RefreshTimeout,
		LookupTimeout:  cfg.LookupTimeout,
		LoginPath:      guard.DefaultLoginPath,
	})
	httpClient.Transport = manager.Transport(nil, api.RefreshPath(), apiclient.LoginPath)

	permissions := permission.NewModel(manager)
	routeGuard := guard.New(manager, permissions, guard.Options{Metrics: authMetrics, Bus: bus})

	hub := websocket.NewHub(bus, stateSnapshot(manager))

	appRouter, err := router.New(cfg, routeGuard, catalogue, router.Handlers{
		Session:     handler.NewSessionHandler(manager, permissions, catalogue, routeGuard.LoginPath()),
		Screens:     handler.NewScreenHandler(api, manager, routeGuard.LoginPath(), router.HomePath),
		Permissions: handler.NewPermissionHandler(catalogue, api),
		Events:      websocket.NewHandler(hub, cfg.CORSOrigins),
		Metrics:     metrics.Handler(registry),
	})
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to build router: %w", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		background: []func(ctx context.Context){
			hub.Run,
			func(ctx context.Context) {
				state := manager.Bootstrap(ctx)
				slog.Info("session bootstrap finished", "state", state.String())
			},
		},
		cleanupFuncs: []func(){closeStore},
	}, nil
}

func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	switch cfg.SessionStore {
	case config.SessionStoreMemory:
		return session.NewMemoryStore(), func() {}, nil

	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return session.NewRedisStore(client, cfg.RedisKeyPrefix), func() { _ = client.Close() }, nil

	case config.SessionStorePostgres:
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}
		return repository.NewSessionRepository(db.Pool, cfg.ConsoleID), db.Close, nil

	default:
		store, err := session.NewFileStore(cfg.SessionFile)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

// stateSnapshot is the first event a newly connected shell receives.
func stateSnapshot(manager *authclient.Manager) func() event.Event {
	return func() event.Event {
		payload := map[string]any{"state": manager.State().String()}
		var actor int64
		if p, ok := manager.Principal(); ok {
			payload["user"] = p.User
			payload["role"] = p.Role.Name
			actor = p.User.ID
		}
		return event.Event{
			ID:        uuid.NewString(),
			Type:      event.TypeStateChanged,
			Payload:   payload,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			ActorID:   actor,
		}
	}
}

func (a *App) Run() error {
	ctx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	for _, run := range a.background {
		go run(ctx)
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-stop:
	case err := <-serveErr:
		runErr = fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("graceful shutdown failed: %w", err)
	}
	stopBackground()

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return runErr
}
