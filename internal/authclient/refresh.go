package authclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go-admin-panel/internal/event"
	"go-admin-panel/internal/model"
	"go-admin-panel/internal/session"
)

type refreshOutcome struct {
	token string
	err   error
}

// turn is a caller's place in one refresh round. Replays go out in the
// order their callers joined the round: each waits for its predecessor's
// turn to be released before sending.
type turn struct {
	prev <-chan struct{}
	done chan struct{}
	once sync.Once
}

// wait blocks until every earlier caller of the round has replayed.
func (t *turn) wait(ctx context.Context) error {
	if t.prev == nil {
		return nil
	}
	select {
	case <-t.prev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release hands the turn to the next caller, never ahead of an earlier one.
// It is safe to call more than once.
func (t *turn) release() {
	t.once.Do(func() {
		if t.prev == nil {
			close(t.done)
			return
		}
		select {
		case <-t.prev:
			close(t.done)
		default:
			go func() {
				<-t.prev
				close(t.done)
			}()
		}
	})
}

// Refresh obtains a new token pair and returns the new access token.
//
// At most one refresh call is on the wire at a time. Callers arriving while
// one is in flight queue up and are settled, in arrival order, with the
// outcome of that call. A waiter whose ctx ends leaves with ctx.Err().
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	token, t, err := m.refreshInTurn(ctx)
	t.release()
	return token, err
}

// refreshInTurn is Refresh for callers that replay a request afterwards.
// The caller must release the returned turn once its replay has been
// answered, or when it gives up.
func (m *Manager) refreshInTurn(ctx context.Context) (string, *turn, error) {
	t := &turn{done: make(chan struct{})}

	m.refreshMu.Lock()
	if m.refreshing {
		t.prev = m.replayTail
		m.replayTail = t.done
		ch := make(chan refreshOutcome, 1)
		m.waiters = append(m.waiters, ch)
		m.refreshMu.Unlock()
		m.opts.Metrics.RefreshWaiter()

		select {
		case out := <-ch:
			return out.token, t, out.err
		case <-ctx.Done():
			return "", t, ctx.Err()
		}
	}
	m.refreshing = true
	m.replayTail = t.done
	m.refreshMu.Unlock()

	token, err := m.refreshOnce(ctx)

	m.refreshMu.Lock()
	waiters := m.waiters
	m.waiters = nil
	m.refreshing = false
	m.replayTail = nil
	m.refreshMu.Unlock()

	for _, ch := range waiters {
		ch <- refreshOutcome{token: token, err: err}
	}

	return token, t, err
}

func (m *Manager) refreshOnce(ctx context.Context) (string, error) {
	current, epoch := m.snapshot()
	if current.RefreshToken == "" {
		m.signOutIf(ctx, epoch, "no_refresh_token")
		return "", fmt.Errorf("%w: %w", model.ErrRefreshFailed, model.ErrNoRefreshToken)
	}

	// The call outlives the caller that started it; waiters depend on it.
	callCtx, cancel := withTimeout(context.WithoutCancel(ctx), m.opts.RefreshTimeout)
	defer cancel()

	pair, err := m.backend.Refresh(callCtx, current.RefreshToken)
	if err == nil && !pair.Valid() {
		err = errors.New("refresh response is missing a token")
	}
	if err != nil {
		m.opts.Metrics.Refresh("failure")
		slog.Warn("token refresh failed", "error", err)
		m.signOutIf(ctx, epoch, "refresh_failed")
		return "", fmt.Errorf("%w: %w", model.ErrRefreshFailed, err)
	}

	next := session.Session{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
	if err := m.commitRefresh(ctx, epoch, next); err != nil {
		m.opts.Metrics.Refresh("failure")
		return "", err
	}

	m.opts.Metrics.Refresh("success")
	slog.Info("access token refreshed")
	m.publish(event.TypeSessionRefresh, 0, nil)
	return next.AccessToken, nil
}

// commitRefresh persists and installs the new pair unless the session it
// was minted for has ended in the meantime.
func (m *Manager) commitRefresh(ctx context.Context, epoch uint64, next session.Session) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.RLock()
	current := m.epoch
	m.mu.RUnlock()
	if current != epoch {
		return fmt.Errorf("%w: session ended during refresh", model.ErrRefreshFailed)
	}

	if err := m.store.Save(context.WithoutCancel(ctx), next); err != nil {
		slog.Error("failed to persist refreshed session", "error", err)
		m.signOutLocked(ctx, "refresh_failed")
		return fmt.Errorf("%w: persist session: %w", model.ErrRefreshFailed, err)
	}

	m.mu.Lock()
	m.sess = next
	m.mu.Unlock()
	return nil
}
