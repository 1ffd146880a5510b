package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_CountsAndServes(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Refresh("success")
	m.Refresh("success")
	m.Refresh("failure")
	m.RefreshWaiter()
	m.SignOut("unauthorized")
	m.Guard("denied")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.refreshes.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshWaiters))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `admin_panel_sign_outs_total{reason="unauthorized"} 1`)
	assert.Contains(t, string(body), `admin_panel_guard_decisions_total{outcome="denied"} 1`)
}

func TestAuth_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *Auth
	m.Refresh("success")
	m.RefreshWaiter()
	m.Replay()
	m.SignOut("user")
	m.Guard("allowed")
}
