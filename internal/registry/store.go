// Package registry keeps the client-side cache of green points.
//
// The cache is replaced wholesale on every reload and never mutated locally: creating,
// updating or deleting a point is a backend round-trip followed by a full reload.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/UnknownOlympus/verdeando/internal/geocoding"
	"github.com/UnknownOlympus/verdeando/internal/metrics"
	"github.com/UnknownOlympus/verdeando/internal/models"
)

// Backend is the part of the backend API the registry relies on.
type Backend interface {
	ListGreenPoints(ctx context.Context) ([]models.GreenPoint, error)
	CreateGreenPoint(ctx context.Context, token, collaboratorID string, draft models.GreenPointDraft) error
	UpdateGreenPoint(ctx context.Context, token, id, collaboratorID string, patch models.GreenPointPatch) error
	DeleteGreenPoint(ctx context.Context, token, id string) error
}

// ErrNoAddress is returned when a draft has neither coordinates nor an address to geocode.
var ErrNoAddress = errors.New("green point needs coordinates or an address")

// Store is the shared green point registry. Reads are lock-free snapshot loads.
type Store struct {
	backend  Backend
	geocoder geocoding.Provider // optional, resolves drafts that only carry an address
	current  atomic.Pointer[Snapshot]
	reloadMu sync.Mutex // serializes reloads so snapshots are published in request order
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewStore creates an empty registry. geocoder may be nil.
func NewStore(backend Backend, geocoder geocoding.Provider, m *metrics.Metrics, log *slog.Logger) *Store {
	store := &Store{backend: backend, geocoder: geocoder, metrics: m, log: log}
	store.current.Store(&Snapshot{})

	return store
}

// Snapshot returns the current registry contents. It never returns nil.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Reload fetches the full collection from the backend and publishes it as the new snapshot.
// On failure the previous snapshot stays in place.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	s.log.DebugContext(ctx, "Reloading green point registry")

	points, err := s.backend.ListGreenPoints(ctx)
	if err != nil {
		s.metrics.RegistryReloads.WithLabelValues("failure").Inc()
		s.log.ErrorContext(ctx, "Failed to reload green points", "error", err)
		return nil, fmt.Errorf("failed to load green points: %w", err)
	}

	snapshot := newSnapshot(points, time.Now())
	s.current.Store(snapshot)
	s.metrics.RegistryReloads.WithLabelValues("success").Inc()
	s.metrics.RegistrySize.Set(float64(snapshot.Len()))
	s.log.InfoContext(ctx, "Green point registry reloaded", "points", snapshot.Len())

	return snapshot, nil
}

// Create submits a new point owned by collaboratorID and reloads the registry.
// Drafts without coordinates are geocoded from their address first.
func (s *Store) Create(
	ctx context.Context,
	token, collaboratorID string,
	draft models.GreenPointDraft,
) (*Snapshot, error) {
	if draft.Location == nil {
		coords, err := s.locate(ctx, draft.Address)
		if err != nil {
			return nil, err
		}
		draft.Location = coords
	}

	if err := s.backend.CreateGreenPoint(ctx, token, collaboratorID, draft); err != nil {
		return nil, fmt.Errorf("failed to create green point: %w", err)
	}
	s.log.InfoContext(ctx, "Green point created", "name", draft.Name, "collaborator", collaboratorID)

	return s.Reload(ctx)
}

// Update changes the editable fields of a point and reloads the registry.
func (s *Store) Update(
	ctx context.Context,
	token, id, collaboratorID string,
	patch models.GreenPointPatch,
) (*Snapshot, error) {
	if err := s.backend.UpdateGreenPoint(ctx, token, id, collaboratorID, patch); err != nil {
		return nil, fmt.Errorf("failed to update green point %s: %w", id, err)
	}
	s.log.InfoContext(ctx, "Green point updated", "id", id)

	return s.Reload(ctx)
}

// Delete removes a point and reloads the registry.
func (s *Store) Delete(ctx context.Context, token, id string) (*Snapshot, error) {
	if err := s.backend.DeleteGreenPoint(ctx, token, id); err != nil {
		return nil, fmt.Errorf("failed to delete green point %s: %w", id, err)
	}
	s.log.InfoContext(ctx, "Green point deleted", "id", id)

	return s.Reload(ctx)
}

func (s *Store) locate(ctx context.Context, address string) (*models.Coordinates, error) {
	if address == "" || s.geocoder == nil {
		return nil, ErrNoAddress
	}

	coords, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode green point address: %w", err)
	}

	return coords, nil
}
