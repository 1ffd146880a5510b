package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"go-admin-panel/internal/config"
	"go-admin-panel/internal/handler"
	"go-admin-panel/internal/logger"
	"go-admin-panel/internal/middleware"
	"go-admin-panel/internal/permission"
	"go-admin-panel/internal/router"
	"go-admin-panel/internal/service"
)

// NewDevAPI wires the development e-commerce backend with its seed data.
func NewDevAPI() (*App, error) {
	cfg, err := config.LoadDevAPI()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel))

	resources := service.SeedResources()
	catalog, err := service.NewCatalogService(
		permission.DefaultCatalogue(),
		service.SeedRoles(),
		service.SeedUsers(),
		resources,
		bcrypt.DefaultCost,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}

	authService, err := service.NewAuthService(catalog, service.AuthOptions{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.JWTAccessTTL,
		RefreshTTL: cfg.JWTRefreshTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}

	apiRouter := router.NewDevAPI(
		cfg,
		middleware.NewAuthMiddleware(authService, catalog),
		handler.NewAuthHandler(authService),
		handler.NewDirectoryHandler(catalog),
		resources,
	)

	return &App{
		server: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           apiRouter,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}, nil
}
