// Package location produces the station's current coordinate on demand.
package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/UnknownOlympus/verdeando/internal/geocoding"
	"github.com/UnknownOlympus/verdeando/internal/models"
)

// Provider returns the current coordinate. Implementations may block until a fix is available.
type Provider interface {
	Current(ctx context.Context) (models.Coordinates, error)
}

var (
	// ErrPermissionDenied is returned when location access is refused. It is never retried.
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrNoFix is returned when no coordinate could be obtained.
	ErrNoFix = errors.New("no location fix available")
)

// Static always reports the same coordinate, typically the one the station was installed at.
type Static struct {
	coords models.Coordinates
}

// NewStatic returns a provider fixed at coords.
func NewStatic(coords models.Coordinates) *Static {
	return &Static{coords: coords}
}

func (s *Static) Current(ctx context.Context) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, err
	}

	return s.coords, nil
}

// Denied models a device where the location permission was refused.
type Denied struct{}

func (Denied) Current(context.Context) (models.Coordinates, error) {
	return models.Coordinates{}, ErrPermissionDenied
}

// Address resolves the station's street address once and then serves the cached result.
// A failed lookup is not cached, so the next call tries again.
type Address struct {
	geocoder geocoding.Provider
	address  string
	log      *slog.Logger

	mu     sync.Mutex
	cached *models.Coordinates
}

// NewAddress creates a provider that geocodes address lazily.
func NewAddress(geocoder geocoding.Provider, address string, log *slog.Logger) *Address {
	return &Address{geocoder: geocoder, address: address, log: log}
}

func (a *Address) Current(ctx context.Context) (models.Coordinates, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cached != nil {
		return *a.cached, nil
	}

	coords, err := a.geocoder.Geocode(ctx, a.address)
	if err != nil {
		a.log.WarnContext(ctx, "Failed to geocode station address", "address", a.address, "error", err)
		return models.Coordinates{}, fmt.Errorf("%w: %w", ErrNoFix, err)
	}

	a.log.InfoContext(ctx, "Station address geocoded",
		"address", a.address,
		"latitude", coords.Latitude,
		"longitude", coords.Longitude)
	a.cached = coords

	return *coords, nil
}
