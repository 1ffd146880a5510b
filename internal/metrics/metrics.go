// Package metrics exposes Prometheus counters for the session lifecycle
// and the route guard. A nil *Auth is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "admin_panel"

type Auth struct {
	refreshes      *prometheus.CounterVec
	refreshWaiters prometheus.Counter
	replays        prometheus.Counter
	signOuts       *prometheus.CounterVec
	guard          *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Auth {
	factory := promauto.With(reg)

	return &Auth{
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Refresh network calls by outcome.",
		}, []string{"outcome"}),
		refreshWaiters: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_waiters_total",
			Help:      "Callers that joined an in-flight refresh instead of starting one.",
		}),
		replays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_replays_total",
			Help:      "Requests replayed after a successful refresh.",
		}),
		signOuts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_outs_total",
			Help:      "Session terminations by reason.",
		}, []string{"reason"}),
		guard: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_decisions_total",
			Help:      "Route guard outcomes.",
		}, []string{"outcome"}),
	}
}

func (a *Auth) Refresh(outcome string) {
	if a == nil {
		return
	}
	a.refreshes.WithLabelValues(outcome).Inc()
}

func (a *Auth) RefreshWaiter() {
	if a == nil {
		return
	}
	a.refreshWaiters.Inc()
}

func (a *Auth) Replay() {
	if a == nil {
		return
	}
	a.replays.Inc()
}

func (a *Auth) SignOut(reason string) {
	if a == nil {
		return
	}
	a.signOuts.WithLabelValues(reason).Inc()
}

func (a *Auth) Guard(outcome string) {
	if a == nil {
		return
	}
	a.guard.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
