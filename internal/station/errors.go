package station

import (
	"context"
	"errors"
	"net/http"

	"github.com/UnknownOlympus/verdeando/internal/backend"
	"github.com/UnknownOlympus/verdeando/internal/exchange"
	"github.com/UnknownOlympus/verdeando/internal/location"
	"github.com/UnknownOlympus/verdeando/internal/proximity"
	"github.com/UnknownOlympus/verdeando/internal/registry"
	"github.com/UnknownOlympus/verdeando/internal/rewards"
	"github.com/UnknownOlympus/verdeando/internal/session"
)

var (
	errBadRequest      = errors.New("malformed request body")
	errNotCollaborator = errors.New("only collaborators can manage green points")
)

// apiError is the JSON body of every failed request.
type apiError struct {
	Error    string `json:"error"`
	Attempts uint   `json:"attempts,omitempty"`
}

// describe maps a domain error to an HTTP status and a user-facing body.
func describe(err error) (int, apiError) {
	var (
		noPoint   *proximity.NoNearbyPointError
		rejection *backend.RejectionError
		netErr    *backend.NetworkError
	)

	switch {
	case errors.As(err, &noPoint):
		return http.StatusUnprocessableEntity, apiError{
			Error:    "no green point of yours was found near your location",
			Attempts: noPoint.Attempts,
		}
	case errors.As(err, &rejection):
		return http.StatusBadGateway, apiError{Error: rejection.Message}
	case errors.As(err, &netErr):
		return http.StatusServiceUnavailable, apiError{Error: "backend unreachable, check your connection"}
	case errors.Is(err, backend.ErrMalformedPayload):
		return http.StatusBadGateway, apiError{Error: "backend returned an unexpected response"}
	case errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized, apiError{Error: err.Error()}
	case errors.Is(err, exchange.ErrUnauthorizedRole),
		errors.Is(err, proximity.ErrNoCollaborator),
		errors.Is(err, errNotCollaborator):
		return http.StatusForbidden, apiError{Error: err.Error()}
	case errors.Is(err, exchange.ErrConfirmInFlight):
		return http.StatusConflict, apiError{Error: err.Error()}
	case errors.Is(err, location.ErrPermissionDenied), errors.Is(err, location.ErrNoFix):
		return http.StatusServiceUnavailable, apiError{Error: err.Error()}
	case errors.Is(err, exchange.ErrEmptyToken),
		errors.Is(err, registry.ErrNoAddress),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, apiError{Error: err.Error()}
	case errors.Is(err, rewards.ErrUnknownReward):
		return http.StatusNotFound, apiError{Error: err.Error()}
	case errors.Is(err, rewards.ErrInsufficientPoints),
		errors.Is(err, rewards.ErrOutOfStock):
		return http.StatusUnprocessableEntity, apiError{Error: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, apiError{Error: "request timed out"}
	default:
		return http.StatusInternalServerError, apiError{Error: "internal error"}
	}
}
