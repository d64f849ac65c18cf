// Package session persists the gateway's authenticated sessions: the manager
// identity shown in the UI shell plus the opaque token issued by the backend.
// Identity and backend token live and die together; logout clears both.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when no session exists for the given token.
	ErrNotFound = errors.New("session: not found")
	// ErrExpired is returned when the session exists but its validity window
	// has passed.
	ErrExpired = errors.New("session: expired")
)

// Session is the persisted identity record keyed by the gateway token.
type Session struct {
	Token       string
	Username    string
	DisplayName string
	RemoteToken string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ExpiresAt   time.Time
}

// Store is a SQLite backed session store.
type Store struct {
	db *sql.DB
}

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	token        TEXT PRIMARY KEY,
	username     TEXT NOT NULL,
	display_name TEXT NOT NULL,
	remote_token TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL,
	expires_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
`

// Open opens the store at the given DSN.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("session: open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate ensures the schema exists, guarded by the database user_version.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("session: store not configured")
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("session: read schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("session: apply schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("session: record schema version: %w", err)
	}
	return nil
}

// Save stores or replaces the session for its token.
func (s *Store) Save(ctx context.Context, session Session) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("session: store not configured")
	}
	if strings.TrimSpace(session.Token) == "" {
		return fmt.Errorf("session: token is required")
	}
	if strings.TrimSpace(session.Username) == "" {
		return fmt.Errorf("session: username is required")
	}

	const query = `
		INSERT INTO sessions (token, username, display_name, remote_token, created_at, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			username = excluded.username,
			display_name = excluded.display_name,
			remote_token = excluded.remote_token,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at
	`

	_, err := s.db.ExecContext(ctx, query,
		session.Token,
		session.Username,
		session.DisplayName,
		session.RemoteToken,
		session.CreatedAt.UTC().Format(time.RFC3339),
		session.UpdatedAt.UTC().Format(time.RFC3339),
		session.ExpiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

// Load retrieves the session for a token, checking expiry against reference.
func (s *Store) Load(ctx context.Context, token string, reference time.Time) (Session, error) {
	if s == nil || s.db == nil {
		return Session{}, fmt.Errorf("session: store not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrNotFound
	}

	const query = `
		SELECT token, username, display_name, remote_token, created_at, updated_at, expires_at
		FROM sessions
		WHERE token = ?
	`

	var session Session
	var createdAt, updatedAt, expiresAt string
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&session.Username,
		&session.DisplayName,
		&session.RemoteToken,
		&createdAt,
		&updatedAt,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("session: load: %w", err)
	}

	if session.CreatedAt, err = parseStoredTime(createdAt); err != nil {
		return Session{}, err
	}
	if session.UpdatedAt, err = parseStoredTime(updatedAt); err != nil {
		return Session{}, err
	}
	if session.ExpiresAt, err = parseStoredTime(expiresAt); err != nil {
		return Session{}, err
	}

	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(reference) {
		return Session{}, ErrExpired
	}
	return session, nil
}

// Clear removes the session for a token. Clearing an unknown token is not an
// error.
func (s *Store) Clear(ctx context.Context, token string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("session: store not configured")
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", strings.TrimSpace(token)); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// PurgeExpired removes every session whose validity window passed before the
// reference instant.
func (s *Store) PurgeExpired(ctx context.Context, reference time.Time) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("session: store not configured")
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", reference.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("session: purge: %w", err)
	}
	return nil
}

func parseStoredTime(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("session: parse stored timestamp %q: %w", value, err)
	}
	return ts, nil
}
