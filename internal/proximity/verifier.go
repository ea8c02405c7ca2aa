// Package proximity decides whether a collaborator stands at one of their green points.
package proximity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/UnknownOlympus/verdeando/internal/metrics"
	"github.com/UnknownOlympus/verdeando/internal/models"
	"github.com/UnknownOlympus/verdeando/internal/registry"
	"github.com/UnknownOlympus/verdeando/internal/retry"
)

// DefaultTolerance is the half-width, in degrees, of the box around a green point.
// It is applied to latitude and longitude independently, not as a metric radius.
const DefaultTolerance = 0.002

// DefaultPolicy is five attempts two seconds apart.
var DefaultPolicy = retry.Policy{MaxAttempts: 5, Delay: 2 * time.Second}

// ErrNoCollaborator is returned when verification is requested without a collaborator identity.
var ErrNoCollaborator = errors.New("no collaborator identity to verify against")

var errNoMatch = errors.New("no green point of the collaborator within tolerance")

// NoNearbyPointError is returned once every attempt failed to find a matching point.
type NoNearbyPointError struct {
	Attempts uint
	Observed models.Coordinates
	Last     error // error of the final attempt
}

func (e *NoNearbyPointError) Error() string {
	return fmt.Sprintf("no nearby green point after %d attempts at (%.6f, %.6f): %v",
		e.Attempts, e.Observed.Latitude, e.Observed.Longitude, e.Last)
}

func (e *NoNearbyPointError) Unwrap() error {
	return e.Last
}

// Registry is the read side of the green point store plus its reload.
type Registry interface {
	Snapshot() *registry.Snapshot
	Reload(ctx context.Context) (*registry.Snapshot, error)
}

// Within reports whether b lies inside the axis-aligned box of half-width tolerance around a.
func Within(a, b models.Coordinates, tolerance float64) bool {
	return math.Abs(a.Latitude-b.Latitude) <= tolerance &&
		math.Abs(a.Longitude-b.Longitude) <= tolerance
}

// Match returns the first point, in the given order, owned by collaboratorID whose
// location is within tolerance of observed. There is no ranking by distance.
func Match(
	points []models.GreenPoint,
	collaboratorID string,
	observed models.Coordinates,
	tolerance float64,
) (models.GreenPoint, bool) {
	for _, point := range points {
		if point.OwnerCollaboratorID != collaboratorID {
			continue
		}
		if Within(point.Location, observed, tolerance) {
			return point, true
		}
	}

	return models.GreenPoint{}, false
}

// Verifier matches an observed coordinate against the registry, retrying per its policy.
type Verifier struct {
	registry  Registry
	policy    retry.Policy
	tolerance float64
	metrics   *metrics.Metrics
	log       *slog.Logger
}

// NewVerifier creates a verifier over the given registry.
func NewVerifier(
	reg Registry,
	policy retry.Policy,
	tolerance float64,
	m *metrics.Metrics,
	log *slog.Logger,
) *Verifier {
	return &Verifier{registry: reg, policy: policy, tolerance: tolerance, metrics: m, log: log}
}

// Verify returns the id of the collaborator's green point near observed.
//
// Each attempt reads the current registry snapshot, reloading it first when it is empty.
// A failed attempt is followed by the policy delay. When every attempt failed the result
// is a *NoNearbyPointError carrying the attempt count; when ctx ends first, its error.
func (v *Verifier) Verify(ctx context.Context, collaboratorID string, observed models.Coordinates) (string, error) {
	if collaboratorID == "" {
		return "", ErrNoCollaborator
	}

	res, err := retry.Do(ctx, v.policy, func(ctx context.Context, attempt uint) (string, error) {
		v.log.DebugContext(ctx, "Verifying green point proximity",
			"attempt", attempt,
			"max_attempts", v.policy.MaxAttempts,
			"latitude", observed.Latitude,
			"longitude", observed.Longitude)

		id, err := v.attempt(ctx, collaboratorID, observed)
		if err != nil {
			v.metrics.VerifyAttempts.WithLabelValues("miss").Inc()
			v.log.InfoContext(ctx, "Proximity attempt failed", "attempt", attempt, "error", err)
			return "", err
		}

		v.metrics.VerifyAttempts.WithLabelValues("match").Inc()
		v.log.InfoContext(ctx, "Green point found", "attempt", attempt, "green_point", id)
		return id, nil
	})
	if err == nil {
		return res.Value, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("proximity verification interrupted after %d attempts: %w", res.Attempts, ctxErr)
	}

	v.log.WarnContext(ctx, "No nearby green point", "attempts", res.Attempts, "collaborator", collaboratorID)
	return "", &NoNearbyPointError{Attempts: res.Attempts, Observed: observed, Last: err}
}

func (v *Verifier) attempt(ctx context.Context, collaboratorID string, observed models.Coordinates) (string, error) {
	snapshot := v.registry.Snapshot()
	if snapshot.Empty() {
		v.log.DebugContext(ctx, "Green point registry empty, reloading")

		reloaded, err := v.registry.Reload(ctx)
		if err != nil {
			return "", err
		}
		snapshot = reloaded
	}

	point, ok := Match(snapshot.Points(), collaboratorID, observed, v.tolerance)
	if !ok {
		return "", errNoMatch
	}

	return point.ID, nil
}
