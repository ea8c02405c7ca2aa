// Package session holds the authenticated user of the station and persists it between runs.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/UnknownOlympus/verdeando/internal/models"
)

// ErrNoSession is returned when no user is logged in or nothing is persisted.
var ErrNoSession = errors.New("no active session")

// Backend is the part of the backend API used for authentication.
type Backend interface {
	Login(ctx context.Context, creds models.Credentials) (models.User, error)
	GetUser(ctx context.Context, token, userID string) (models.User, error)
}

// Store persists the session user, token included.
type Store interface {
	Load(ctx context.Context) (models.User, error)
	Save(ctx context.Context, user models.User) error
	Delete(ctx context.Context) error
}

// Manager owns the current session. It is safe for concurrent use.
type Manager struct {
	backend Backend
	store   Store
	log     *slog.Logger

	mu   sync.RWMutex
	user *models.User
}

// NewManager creates a manager with no active session.
func NewManager(backend Backend, store Store, log *slog.Logger) *Manager {
	return &Manager{backend: backend, store: store, log: log}
}

// Restore loads a persisted session, if any.
func (m *Manager) Restore(ctx context.Context) error {
	user, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if user.Token == "" {
		return fmt.Errorf("failed to restore session: %w", ErrNoSession)
	}

	m.set(user)
	m.log.InfoContext(ctx, "Session restored", "user", user.ID, "role", user.Role)

	return nil
}

// Login authenticates against the backend and persists the new session.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) (models.User, error) {
	user, err := m.backend.Login(ctx, creds)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to log in: %w", err)
	}

	if err = m.store.Save(ctx, user); err != nil {
		m.log.WarnContext(ctx, "Failed to persist session", "user", user.ID, "error", err)
	}
	m.set(user)
	m.log.InfoContext(ctx, "Logged in", "user", user.ID, "role", user.Role)

	return clone(user), nil
}

// Current returns a copy of the session user.
func (m *Manager) Current() (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.user == nil {
		return models.User{}, ErrNoSession
	}

	return clone(*m.user), nil
}

// Refresh re-reads the user record (point balance included) and keeps the current token.
func (m *Manager) Refresh(ctx context.Context) (models.User, error) {
	current, err := m.Current()
	if err != nil {
		return models.User{}, err
	}

	fresh, err := m.backend.GetUser(ctx, current.Token, current.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to refresh user: %w", err)
	}
	fresh.Token = current.Token

	if err = m.store.Save(ctx, fresh); err != nil {
		m.log.WarnContext(ctx, "Failed to persist refreshed session", "user", fresh.ID, "error", err)
	}
	m.set(fresh)
	m.log.InfoContext(ctx, "User refreshed", "user", fresh.ID, "points", fresh.Points)

	return clone(fresh), nil
}

// Logout drops the session both in memory and in the store.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()

	if err := m.store.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (m *Manager) set(user models.User) {
	stored := clone(user)

	m.mu.Lock()
	m.user = &stored
	m.mu.Unlock()
}

func clone(user models.User) models.User {
	if user.Collaborator != nil {
		collaborator := *user.Collaborator
		user.Collaborator = &collaborator
	}

	return user
}
