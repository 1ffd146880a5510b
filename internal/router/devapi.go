package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-admin-panel/internal/config"
	"go-admin-panel/internal/handler"
	"go-admin-panel/internal/middleware"
	"go-admin-panel/internal/permission"
	"go-admin-panel/internal/service"
)

// NewDevAPI builds the development e-commerce backend router.
func NewDevAPI(
	cfg *config.DevAPIConfig,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	directoryHandler *handler.DirectoryHandler,
	resources []service.Resource,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", authHandler.Login)
			auth.Post("/refresh", authHandler.Refresh)
			auth.Post("/logout", authHandler.Logout)
		})

		api.Group(func(protected chi.Router) {
			protected.Use(authMiddleware.RequireAuth)

			// Any signed-in operator resolves users and roles by id.
			protected.Get("/users/{id}", directoryHandler.GetUser)
			protected.Get("/roles/{id}", directoryHandler.GetRole)

			protected.With(authMiddleware.RequirePermission(permission.PageUser, permission.ActionView)).
				Get("/users", directoryHandler.ListUsers)
			protected.With(authMiddleware.RequirePermission(permission.PageRole, permission.ActionView)).
				Get("/roles", directoryHandler.ListRoles)

			for _, res := range resources {
				protected.With(authMiddleware.RequirePermission(res.Page, permission.ActionView)).
					Get("/"+res.Name, directoryHandler.ListResource(res.Name))
			}
		})
	})

	return r
}
