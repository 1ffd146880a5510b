package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-admin-panel/internal/config"
	"go-admin-panel/internal/guard"
	"go-admin-panel/internal/handler"
	"go-admin-panel/internal/middleware"
	"go-admin-panel/internal/permission"
)

const HomePath = "/dashboard"

// screen is one admin area: a list route backed by a backend collection
// plus editor routes for whichever of create/edit the page supports.
type screen struct {
	path    string
	apiPath string
	page    permission.Page
}

var screens = []screen{
	{path: "/dashboard", apiPath: "/api/dashboard", page: permission.PageDashboard},
	{path: "/products", apiPath: "/api/products", page: permission.PageProduct},
	{path: "/categories", apiPath: "/api/categories", page: permission.PageCategory},
	{path: "/orders", apiPath: "/api/orders", page: permission.PageOrder},
	{path: "/purchase-orders", apiPath: "/api/purchase-orders", page: permission.PagePurchaseOrder},
	{path: "/transactions", apiPath: "/api/transactions", page: permission.PageTransaction},
	{path: "/reports", apiPath: "/api/reports", page: permission.PageReport},
	{path: "/chat", apiPath: "/api/chats", page: permission.PageChat},
	{path: "/roles", apiPath: "/api/roles", page: permission.PageRole},
	{path: "/users", apiPath: "/api/users", page: permission.PageUser},
}

// extraRoutes are screens outside the list/new/edit pattern.
var extraRoutes = []guard.Route{
	{Method: http.MethodGet, Pattern: "/reports/jobs", Page: permission.PageReport, Action: permission.ActionJobsManagement},
	{Method: http.MethodGet, Pattern: "/products/stores", Page: permission.PageProduct, Action: permission.ActionStoreAccess},
	{Method: http.MethodGet, Pattern: "/orders/stores", Page: permission.PageOrder, Action: permission.ActionStoreAccess},
}

type Handlers struct {
	Session     *handler.SessionHandler
	Screens     *handler.ScreenHandler
	Permissions *handler.PermissionHandler
	Events      http.Handler
	Metrics     http.Handler
}

// ScreenRoutes is the console's guarded route table.
func ScreenRoutes(catalogue *permission.Catalogue) []guard.Route {
	var routes []guard.Route
	for _, s := range screens {
		routes = append(routes, guard.Route{Method: http.MethodGet, Pattern: s.path, Page: s.page, Action: permission.ActionView})
		if catalogue.Check(s.page, permission.ActionCreate) == nil {
			routes = append(routes, guard.Route{Method: http.MethodGet, Pattern: s.path + "/new", Page: s.page, Action: permission.ActionCreate})
		}
		if catalogue.Check(s.page, permission.ActionEdit) == nil {
			routes = append(routes, guard.Route{Method: http.MethodGet, Pattern: s.path + "/{id}/edit", Page: s.page, Action: permission.ActionEdit})
		}
	}
	return append(routes, extraRoutes...)
}

// New builds the console router. It fails if the route table does not fit
// the permission catalogue.
func New(cfg *config.Config, g *guard.Guard, catalogue *permission.Catalogue, h Handlers) (http.Handler, error) {
	routes := ScreenRoutes(catalogue)
	if err := guard.ValidateRoutes(catalogue, routes); err != nil {
		return nil, err
	}

	lists := make(map[string]string, len(screens))
	for _, s := range screens {
		lists[s.path] = s.apiPath
	}

	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM, "/api/session/login")

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}
	if h.Events != nil {
		r.Method(http.MethodGet, "/ws", h.Events)
	}

	r.Get("/", h.Screens.Home)
	r.Get(g.LoginPath(), h.Screens.LoginView)
	r.Get(g.DeniedPath(), h.Screens.UnauthorizeView)

	r.Route("/api/session", func(api chi.Router) {
		api.Get("/", h.Session.State)
		api.Post("/login", h.Session.Login)
		api.Post("/logout", h.Session.Logout)
		api.Get("/affordances", h.Session.Affordances)
	})

	r.With(g.Require(permission.PageRole, permission.ActionView)).
		Get("/api/permissions/catalogue", h.Permissions.Catalogue)

	for _, route := range routes {
		var endpoint http.Handler = http.HandlerFunc(h.Screens.Form)
		if apiPath, ok := lists[route.Pattern]; ok {
			endpoint = h.Screens.List(apiPath)
		}
		if route.Method != http.MethodGet {
			return nil, fmt.Errorf("%w: %s %s", guard.ErrInvalidRoute, route.Method, route.Pattern)
		}
		r.With(g.Require(route.Page, route.Action)).Method(route.Method, route.Pattern, endpoint)
	}

	return r, nil
}
