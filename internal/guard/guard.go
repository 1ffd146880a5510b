// Package guard gates the console's screen routes on the session state and
// the operator's permissions.
package guard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go-admin-panel/internal/authclient"
	"go-admin-panel/internal/event"
	"go-admin-panel/internal/metrics"
	"go-admin-panel/internal/model"
	"go-admin-panel/internal/permission"
)

const (
	DefaultLoginPath  = "/login"
	DefaultDeniedPath = "/unauthorize"
)

type Decision int

const (
	DecisionLoading Decision = iota
	DecisionLogin
	DecisionDenied
	DecisionAllow
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionLogin:
		return "login"
	case DecisionDenied:
		return "denied"
	case DecisionAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// StateReader is the part of the session manager the guard needs.
type StateReader interface {
	State() authclient.State
}

// Rule is the permission a route requires.
type Rule struct {
	Page   permission.Page
	Action permission.Action
}

type Options struct {
	LoginPath  string
	DeniedPath string
	Metrics    *metrics.Auth
	Bus        event.Publisher
}

type Guard struct {
	auth  StateReader
	model *permission.Model
	opts  Options
}

func New(auth StateReader, model *permission.Model, opts Options) *Guard {
	if opts.LoginPath == "" {
		opts.LoginPath = DefaultLoginPath
	}
	if opts.DeniedPath == "" {
		opts.DeniedPath = DefaultDeniedPath
	}
	return &Guard{auth: auth, model: model, opts: opts}
}

func (g *Guard) LoginPath() string  { return g.opts.LoginPath }
func (g *Guard) DeniedPath() string { return g.opts.DeniedPath }

// Decide evaluates a navigation to a route requiring rule. While the
// session is bootstrapping the answer is always DecisionLoading.
func (g *Guard) Decide(rule Rule) Decision {
	switch g.auth.State() {
	case authclient.StateBootstrapping:
		return DecisionLoading
	case authclient.StateUnauthenticated:
		return DecisionLogin
	}

	if !g.model.HasRequiredPermission(rule.Page, rule.Action) {
		return DecisionDenied
	}
	return DecisionAllow
}

// Require is chi middleware enforcing rule on the wrapped handler.
func (g *Guard) Require(page permission.Page, action permission.Action) func(http.Handler) http.Handler {
	rule := Rule{Page: page, Action: action}
	if rule.Action == "" {
		rule.Action = permission.ActionView
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := g.Decide(rule)
			g.opts.Metrics.Guard(decision.String())

			switch decision {
			case DecisionLoading:
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusAccepted)
				_ = json.NewEncoder(w).Encode(model.View{Name: "loading"})
			case DecisionLogin:
				http.Redirect(w, r, g.opts.LoginPath, http.StatusFound)
			case DecisionDenied:
				slog.Info("route access denied", "path", r.URL.Path, "page", rule.Page, "action", rule.Action)
				if g.opts.Bus != nil {
					g.opts.Bus.Publish(event.Event{
						Type:    event.TypeAccessDenied,
						Payload: map[string]any{"path": r.URL.Path, "page": rule.Page, "action": rule.Action},
					})
				}
				http.Redirect(w, r, g.opts.DeniedPath, http.StatusFound)
			default:
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ruleContextKey, rule)))
			}
		})
	}
}

type contextKey string

const ruleContextKey contextKey = "guard_rule"

// RuleFromContext returns the rule the guard admitted the request under.
func RuleFromContext(ctx context.Context) (Rule, bool) {
	rule, ok := ctx.Value(ruleContextKey).(Rule)
	return rule, ok
}

// Route binds a URL pattern of the console to the permission it requires.
type Route struct {
	Method  string
	Pattern string
	Page    permission.Page
	Action  permission.Action
}

var ErrInvalidRoute = errors.New("invalid route table")

// ValidateRoutes checks every route against the catalogue and rejects
// duplicate method+pattern pairs.
func ValidateRoutes(catalogue *permission.Catalogue, routes []Route) error {
	seen := make(map[string]struct{}, len(routes))
	for _, route := range routes {
		key := route.Method + " " + route.Pattern
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate route %s", ErrInvalidRoute, key)
		}
		seen[key] = struct{}{}

		if route.Page == permission.PageAll {
			return fmt.Errorf("%w: %s cannot require page %q", ErrInvalidRoute, key, route.Page)
		}
		if err := catalogue.Check(route.Page, route.Action); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidRoute, key, err)
		}
	}
	return nil
}
