package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"

	"github.com/UnknownOlympus/verdeando/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database is the subset of pgxpool.Pool used by PostgresStore.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps sessions in the sessions table, one row per station key.
type PostgresStore struct {
	db  Database
	key string
	log *slog.Logger
}

// NewDatabase opens a connection pool and pings it.
func NewDatabase(ctx context.Context, host, port, user, password, name string) (*pgxpool.Pool, error) {
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, password),
		Host:   net.JoinHostPort(host, port),
		Path:   name,
	}

	pool, err := pgxpool.New(ctx, dsn.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// NewPostgresStore creates a store for the given station key.
func NewPostgresStore(db Database, key string, log *slog.Logger) *PostgresStore {
	return &PostgresStore{db: db, key: key, log: log}
}

// EnsureSchema creates the sessions table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS sessions (
			key        TEXT PRIMARY KEY,
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}

	return nil
}

// Load returns the stored session user, or ErrNoSession when the row is absent.
func (s *PostgresStore) Load(ctx context.Context) (models.User, error) {
	query := `
		SELECT payload
		FROM sessions
		WHERE key = $1;
	`

	var payload []byte
	err := s.db.QueryRow(ctx, query, s.key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNoSession
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to query session: %w", err)
	}

	var user models.User
	if err = json.Unmarshal(payload, &user); err != nil {
		return models.User{}, fmt.Errorf("failed to decode stored session: %w", err)
	}
	s.log.DebugContext(ctx, "Session loaded from database", "key", s.key, "user", user.ID)

	return user, nil
}

// Save upserts the session row.
func (s *PostgresStore) Save(ctx context.Context, user models.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	query := `
		INSERT INTO sessions (key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = now();
	`

	if _, err = s.db.Exec(ctx, query, s.key, payload); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Delete removes the session row.
func (s *PostgresStore) Delete(ctx context.Context) error {
	query := `
		DELETE FROM sessions
		WHERE key = $1;
	`

	if _, err := s.db.Exec(ctx, query, s.key); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
