package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/oauth2"

	"fitpulse/internal/auth"
)

// PostgresStore implements Store using PostgreSQL, for deployments where
// sessions should survive a process restart.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get returns the session, or nil when the id is unknown.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	const query = `SELECT id, tokens, profile FROM sessions WHERE id = $1`

	var row sessionRow
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return row.toSession()
}

// SetTokens upserts the token pair, creating the record on first write.
func (s *PostgresStore) SetTokens(ctx context.Context, id string, tokens *oauth2.Token) error {
	raw, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("marshal tokens: %w", err)
	}

	const query = `
		INSERT INTO sessions (id, tokens, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (id) DO UPDATE SET tokens = EXCLUDED.tokens, updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query, id, raw, time.Now())
	return err
}

// SetProfile stores the profile for a session that already holds tokens.
func (s *PostgresStore) SetProfile(ctx context.Context, id string, profile auth.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	const query = `
		UPDATE sessions
		SET profile = $2, updated_at = $3
		WHERE id = $1 AND tokens IS NOT NULL
	`

	result, err := s.db.ExecContext(ctx, query, id, raw, time.Now())
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTokensRequired
	}
	return nil
}

// DeleteStale removes sessions whose last write is older than maxAge.
func (s *PostgresStore) DeleteStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	const query = `DELETE FROM sessions WHERE updated_at < $1`

	result, err := s.db.ExecContext(ctx, query, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// sessionRow is a database row representation of Session.
type sessionRow struct {
	ID      string `db:"id"`
	Tokens  []byte `db:"tokens"`
	Profile []byte `db:"profile"`
}

func (r *sessionRow) toSession() (*Session, error) {
	s := &Session{ID: r.ID}

	if len(r.Tokens) > 0 {
		var tokens oauth2.Token
		if err := json.Unmarshal(r.Tokens, &tokens); err != nil {
			return nil, fmt.Errorf("unmarshal tokens: %w", err)
		}
		s.Tokens = &tokens
	}

	if len(r.Profile) > 0 {
		var profile auth.UserProfile
		if err := json.Unmarshal(r.Profile, &profile); err != nil {
			return nil, fmt.Errorf("unmarshal profile: %w", err)
		}
		s.Profile = &profile
	}

	return s, nil
}
