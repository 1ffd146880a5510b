package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-admin-panel/internal/session"
)

// SessionRepository stores the console's token pair in one Postgres row,
// so a save or clear always touches both tokens in a single statement.
type SessionRepository struct {
	pool      *pgxpool.Pool
	consoleID string
}

func NewSessionRepository(pool *pgxpool.Pool, consoleID string) *SessionRepository {
	return &SessionRepository{pool: pool, consoleID: consoleID}
}

func (r *SessionRepository) Load(ctx context.Context) (session.Session, error) {
	var s session.Session
	err := r.pool.QueryRow(ctx,
		`SELECT access_token, refresh_token FROM console_sessions WHERE console_id = $1`,
		r.consoleID).Scan(&s.AccessToken, &s.RefreshToken)

	if errors.Is(err, pgx.ErrNoRows) {
		return session.Session{}, nil
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("load console session: %w", err)
	}
	return s, nil
}

func (r *SessionRepository) Save(ctx context.Context, s session.Session) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO console_sessions (console_id, access_token, refresh_token, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (console_id) DO UPDATE
		 SET access_token = EXCLUDED.access_token,
		     refresh_token = EXCLUDED.refresh_token,
		     updated_at = EXCLUDED.updated_at`,
		r.consoleID, s.AccessToken, s.RefreshToken, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save console session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM console_sessions WHERE console_id = $1`, r.consoleID)
	if err != nil {
		return fmt.Errorf("clear console session: %w", err)
	}
	return nil
}
