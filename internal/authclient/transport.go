package authclient

import (
	"io"
	"net/http"
	"strings"

	"go-admin-panel/internal/model"
)

// HeaderAccessToken carries the access token on every decorated request.
const HeaderAccessToken = "x-access-token"

// attempt is an outgoing request plus its retry state. A retried attempt
// carries the token minted by the refresh that triggered it. epoch names
// the session whose token went out with the request.
type attempt struct {
	req     *http.Request
	retried bool
	token   string
	epoch   uint64
}

func (a attempt) retryWith(token string) attempt {
	return attempt{req: a.req, retried: true, token: token}
}

func (a attempt) sentIn(epoch uint64) attempt {
	a.epoch = epoch
	return a
}

// Transport decorates requests with the access token and reacts to
// authorization failures: 403 refreshes and replays once, 401 signs out.
// Requests to exempt paths pass through untouched.
type Transport struct {
	manager *Manager
	base    http.RoundTripper
	exempt  []string
}

// Transport wraps base. exemptPaths are path suffixes (the refresh and login
// endpoints) that are neither decorated nor intercepted.
func (m *Manager) Transport(base http.RoundTripper, exemptPaths ...string) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{manager: m, base: base, exempt: exemptPaths}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.isExempt(req) {
		return t.base.RoundTrip(req)
	}
	return t.send(attempt{req: req})
}

func (t *Transport) isExempt(req *http.Request) bool {
	for _, path := range t.exempt {
		if path != "" && strings.HasSuffix(req.URL.Path, path) {
			return true
		}
	}
	return false
}

func (t *Transport) send(a attempt) (*http.Response, error) {
	out, a, err := t.interceptRequest(a)
	if err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	return t.interceptResponse(a, resp)
}

// interceptRequest returns the decorated request and the attempt stamped
// with the session it was sent under.
func (t *Transport) interceptRequest(a attempt) (*http.Request, attempt, error) {
	out := a.req.Clone(a.req.Context())

	if a.retried && a.req.Body != nil && a.req.Body != http.NoBody {
		if a.req.GetBody == nil {
			return nil, a, model.ErrNotReplayable
		}
		body, err := a.req.GetBody()
		if err != nil {
			return nil, a, err
		}
		out.Body = body
	}

	current, epoch := t.manager.snapshot()
	token := a.token
	if token == "" {
		token = current.AccessToken
	}
	if token != "" {
		out.Header.Set(HeaderAccessToken, token)
	} else {
		out.Header.Del(HeaderAccessToken)
	}

	return out, a.sentIn(epoch), nil
}

func (t *Transport) interceptResponse(a attempt, resp *http.Response) (*http.Response, error) {
	if a.retried {
		return resp, nil
	}

	switch resp.StatusCode {
	case http.StatusForbidden:
		discard(resp)
		token, place, err := t.manager.refreshInTurn(a.req.Context())
		defer place.release()
		if err != nil {
			return nil, err
		}
		if err := place.wait(a.req.Context()); err != nil {
			return nil, err
		}
		t.manager.opts.Metrics.Replay()
		return t.send(a.retryWith(token))
	case http.StatusUnauthorized:
		// A 401 for a session that has since been replaced is stale.
		t.manager.signOutIf(a.req.Context(), a.epoch, "unauthorized")
		return resp, nil
	default:
		return resp, nil
	}
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
