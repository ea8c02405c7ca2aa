// Package exchange confirms scanned exchange tokens and keeps the user's exchange list.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/verdeando/internal/backend"
	"github.com/UnknownOlympus/verdeando/internal/location"
	"github.com/UnknownOlympus/verdeando/internal/metrics"
	"github.com/UnknownOlympus/verdeando/internal/models"
	"github.com/UnknownOlympus/verdeando/internal/proximity"
)

var (
	// ErrUnauthorizedRole is returned when a non-collaborator tries to confirm an exchange.
	ErrUnauthorizedRole = errors.New("only collaborators can confirm exchanges")
	// ErrEmptyToken is returned for a blank scanned token.
	ErrEmptyToken = errors.New("exchange token is empty")
	// ErrConfirmInFlight is returned when the same token is already being confirmed.
	ErrConfirmInFlight = errors.New("exchange confirmation already in progress")
)

// Backend is the part of the backend API dealing with exchanges.
type Backend interface {
	ConfirmExchange(ctx context.Context, token string, confirmation models.Confirmation) error
	ListExchanges(ctx context.Context, token, userID string) ([]models.Exchange, error)
	CreateExchange(ctx context.Context, token, userID string, req models.ExchangeRequest) (models.Exchange, error)
}

// Session exposes the logged-in user and refreshes its record.
type Session interface {
	Current() (models.User, error)
	Refresh(ctx context.Context) (models.User, error)
}

// Verifier finds the collaborator's green point near a coordinate.
type Verifier interface {
	Verify(ctx context.Context, collaboratorID string, observed models.Coordinates) (string, error)
}

// Receipt describes a successful confirmation.
type Receipt struct {
	GreenPointID string
	User         models.User // refreshed record; zero if the refresh failed
}

// Coordinator runs the confirmation workflow and caches the user's exchange list.
type Coordinator struct {
	backend  Backend
	session  Session
	location location.Provider
	verifier Verifier
	metrics  *metrics.Metrics
	log      *slog.Logger

	mu        sync.Mutex
	inFlight  map[string]struct{}
	exchanges []models.Exchange
}

// NewCoordinator wires the confirmation workflow.
func NewCoordinator(
	backend Backend,
	session Session,
	locator location.Provider,
	verifier Verifier,
	m *metrics.Metrics,
	log *slog.Logger,
) *Coordinator {
	return &Coordinator{
		backend:  backend,
		session:  session,
		location: locator,
		verifier: verifier,
		metrics:  m,
		log:      log,
		inFlight: make(map[string]struct{}),
	}
}

// Confirm confirms the exchange behind a scanned token.
//
// The steps run strictly in order: role check (no I/O), location fix, proximity
// verification, backend confirmation, then a refresh of the exchange list and of the
// user's balance. Any failure before the backend accepts leaves the exchange pending.
// Refresh failures after acceptance are logged and do not fail the confirmation.
func (c *Coordinator) Confirm(ctx context.Context, token string) (Receipt, error) {
	startTime := time.Now()
	receipt, err := c.confirm(ctx, token)
	c.metrics.ConfirmSeconds.Observe(time.Since(startTime).Seconds())
	c.metrics.Confirmations.WithLabelValues(outcome(err)).Inc()

	if err != nil {
		c.log.WarnContext(ctx, "Exchange confirmation failed", "error", err)
		return Receipt{}, err
	}

	c.log.InfoContext(ctx, "Exchange confirmed", "green_point", receipt.GreenPointID)

	return receipt, nil
}

func (c *Coordinator) confirm(ctx context.Context, token string) (Receipt, error) {
	user, err := c.session.Current()
	if err != nil {
		return Receipt{}, err
	}
	if !user.IsCollaborator() {
		return Receipt{}, ErrUnauthorizedRole
	}
	if token == "" {
		return Receipt{}, ErrEmptyToken
	}

	release, err := c.acquire(token)
	if err != nil {
		return Receipt{}, err
	}
	defer release()

	coords, err := c.location.Current(ctx)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to get current location: %w", err)
	}
	c.log.DebugContext(ctx, "Current location acquired", "latitude", coords.Latitude, "longitude", coords.Longitude)

	greenPointID, err := c.verifier.Verify(ctx, user.CollaboratorID(), coords)
	if err != nil {
		return Receipt{}, err
	}

	confirmation := models.Confirmation{
		Token:          token,
		CollaboratorID: user.CollaboratorID(),
		GreenPointID:   greenPointID,
	}
	if err = c.backend.ConfirmExchange(ctx, user.Token, confirmation); err != nil {
		return Receipt{}, fmt.Errorf("failed to confirm exchange: %w", err)
	}

	receipt := Receipt{GreenPointID: greenPointID}

	if _, err = c.List(ctx); err != nil {
		c.log.WarnContext(ctx, "Failed to refresh exchanges after confirmation", "error", err)
	}
	if receipt.User, err = c.session.Refresh(ctx); err != nil {
		c.log.WarnContext(ctx, "Failed to refresh user after confirmation", "error", err)
	}

	return receipt, nil
}

func (c *Coordinator) acquire(token string) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.inFlight[token]; busy {
		return nil, ErrConfirmInFlight
	}
	c.inFlight[token] = struct{}{}

	return func() {
		c.mu.Lock()
		delete(c.inFlight, token)
		c.mu.Unlock()
	}, nil
}

func outcome(err error) string {
	var (
		noPoint   *proximity.NoNearbyPointError
		rejection *backend.RejectionError
		netErr    *backend.NetworkError
	)

	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUnauthorizedRole):
		return "unauthorized"
	case errors.Is(err, location.ErrPermissionDenied), errors.Is(err, location.ErrNoFix):
		return "location"
	case errors.As(err, &noPoint):
		return "no_nearby_point"
	case errors.As(err, &rejection):
		return "rejected"
	case errors.As(err, &netErr):
		return "network"
	default:
		return "error"
	}
}
