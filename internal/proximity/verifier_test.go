package proximity_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/UnknownOlympus/verdeando/internal/backend"
	"github.com/UnknownOlympus/verdeando/internal/metrics"
	"github.com/UnknownOlympus/verdeando/internal/models"
	"github.com/UnknownOlympus/verdeando/internal/proximity"
	"github.com/UnknownOlympus/verdeando/internal/registry"
	"github.com/UnknownOlympus/verdeando/internal/retry"
	"github.com/UnknownOlympus/verdeando/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var (
	observed   = models.Coordinates{Latitude: -26.8160, Longitude: -65.2157}
	fastPolicy = retry.Policy{MaxAttempts: 5, Delay: 10 * time.Millisecond}
)

func points() []models.GreenPoint {
	return []models.GreenPoint{
		{ID: "pv-other", Location: models.Coordinates{Latitude: -26.8161, Longitude: -65.2158}, OwnerCollaboratorID: "col-2"},
		{ID: "pv-far", Location: models.Coordinates{Latitude: -27.8160, Longitude: -65.2157}, OwnerCollaboratorID: "col-1"},
		{ID: "pv-1", Location: models.Coordinates{Latitude: -26.8161, Longitude: -65.2158}, OwnerCollaboratorID: "col-1"},
		{ID: "pv-2", Location: models.Coordinates{Latitude: -26.8159, Longitude: -65.2156}, OwnerCollaboratorID: "col-1"},
	}
}

func TestWithin(t *testing.T) {
	origin := models.Coordinates{}

	tests := []struct {
		name  string
		point models.Coordinates
		want  bool
	}{
		{"same point", models.Coordinates{}, true},
		{"on the latitude edge", models.Coordinates{Latitude: 0.002}, true},
		{"on the corner", models.Coordinates{Latitude: -0.002, Longitude: 0.002}, true},
		{"just past latitude", models.Coordinates{Latitude: 0.0021}, false},
		{"just past longitude", models.Coordinates{Longitude: -0.0021}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, proximity.Within(origin, tt.point, proximity.DefaultTolerance))
			assert.Equal(t, tt.want, proximity.Within(tt.point, origin, proximity.DefaultTolerance))
		})
	}
}

func TestMatch(t *testing.T) {
	t.Run("first owned point in order wins", func(t *testing.T) {
		point, ok := proximity.Match(points(), "col-1", observed, proximity.DefaultTolerance)

		require.True(t, ok)
		assert.Equal(t, "pv-1", point.ID)
	})

	t.Run("points of other collaborators never match", func(t *testing.T) {
		_, ok := proximity.Match(points()[:1], "col-1", observed, proximity.DefaultTolerance)

		assert.False(t, ok)
	})

	t.Run("empty registry", func(t *testing.T) {
		_, ok := proximity.Match(nil, "col-1", observed, proximity.DefaultTolerance)

		assert.False(t, ok)
	})
}

func newVerifier(t *testing.T, backend registry.Backend) (*proximity.Verifier, *registry.Store, *metrics.Metrics) {
	t.Helper()
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	store := registry.NewStore(backend, nil, appMetrics, slog.Default())

	return proximity.NewVerifier(store, fastPolicy, proximity.DefaultTolerance, appMetrics, slog.Default()), store, appMetrics
}

func TestVerifier_Verify(t *testing.T) {
	ctx := t.Context()

	t.Run("match on the first attempt loads the empty registry", func(t *testing.T) {
		backend := mocks.NewGreenPointBackend(t)
		backend.On("ListGreenPoints", ctx).Return(points(), nil).Once()
		verifier, _, appMetrics := newVerifier(t, backend)

		id, err := verifier.Verify(ctx, "col-1", observed)

		require.NoError(t, err)
		assert.Equal(t, "pv-1", id)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.VerifyAttempts.WithLabelValues("match")), 0)
	})

	t.Run("loaded registry is not reloaded", func(t *testing.T) {
		backend := mocks.NewGreenPointBackend(t)
		backend.On("ListGreenPoints", ctx).Return(points(), nil).Once()
		verifier, store, _ := newVerifier(t, backend)
		_, err := store.Reload(ctx)
		require.NoError(t, err)

		id, err := verifier.Verify(ctx, "col-1", observed)

		require.NoError(t, err)
		assert.Equal(t, "pv-1", id)
	})

	t.Run("far away exhausts every attempt", func(t *testing.T) {
		backend := mocks.NewGreenPointBackend(t)
		backend.On("ListGreenPoints", ctx).Return(points(), nil).Once()
		verifier, _, appMetrics := newVerifier(t, backend)
		away := models.Coordinates{Latitude: observed.Latitude + 1, Longitude: observed.Longitude}

		startTime := time.Now()
		_, err := verifier.Verify(ctx, "col-1", away)
		elapsed := time.Since(startTime)

		var noPoint *proximity.NoNearbyPointError
		require.ErrorAs(t, err, &noPoint)
		assert.Equal(t, uint(5), noPoint.Attempts)
		assert.Equal(t, away, noPoint.Observed)
		assert.GreaterOrEqual(t, elapsed, 4*fastPolicy.Delay)
		assert.InDelta(t, 5, testutil.ToFloat64(appMetrics.VerifyAttempts.WithLabelValues("miss")), 0)
	})

	t.Run("empty registry is reloaded on every attempt", func(t *testing.T) {
		backend := mocks.NewGreenPointBackend(t)
		backend.On("ListGreenPoints", ctx).Return([]models.GreenPoint{}, nil).Twice()
		backend.On("ListGreenPoints", ctx).Return(points(), nil).Once()
		verifier, _, _ := newVerifier(t, backend)

		id, err := verifier.Verify(ctx, "col-1", observed)

		require.NoError(t, err)
		assert.Equal(t, "pv-1", id)
	})

	t.Run("reload failures count as failed attempts", func(t *testing.T) {
		backend := mocks.NewGreenPointBackend(t)
		backend.On("ListGreenPoints", ctx).Return(nil, assert.AnError).Times(5)
		verifier, _, _ := newVerifier(t, backend)

		_, err := verifier.Verify(ctx, "col-1", observed)

		var noPoint *proximity.NoNearbyPointError
		require.ErrorAs(t, err, &noPoint)
		assert.Equal(t, uint(5), noPoint.Attempts)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("missing collaborator identity", func(t *testing.T) {
		verifier, _, _ := newVerifier(t, mocks.NewGreenPointBackend(t))

		_, err := verifier.Verify(ctx, "", observed)

		require.ErrorIs(t, err, proximity.ErrNoCollaborator)
	})

	t.Run("cancellation stops the retry loop", func(t *testing.T) {
		backend := mocks.NewGreenPointBackend(t)
		backend.On("ListGreenPoints", ctx).Return(points(), nil).Once()
		appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
		store := registry.NewStore(backend, nil, appMetrics, slog.Default())
		_, err := store.Reload(ctx)
		require.NoError(t, err)

		slow := retry.Policy{MaxAttempts: 5, Delay: time.Minute}
		verifier := proximity.NewVerifier(store, slow, proximity.DefaultTolerance, appMetrics, slog.Default())
		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err = verifier.Verify(cctx, "col-2", models.Coordinates{})

		require.ErrorIs(t, err, context.DeadlineExceeded)
		var noPoint *proximity.NoNearbyPointError
		assert.False(t, errors.As(err, &noPoint))
	})
}

type httpFunc func(req *http.Request) (*http.Response, error)

func (f httpFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestVerifier_SkipsPointsWithoutCoordinates(t *testing.T) {
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	client := backend.NewClientWithHTTP(
		httpFunc(func(_ *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body: io.NopCloser(strings.NewReader(`[
					{"id":"pv-draft","colaboradorId":"col-1"},
					{"id":"pv-1","latitud":-26.8161,"longitud":-65.2158,"colaboradorId":"col-1"}
				]`)),
			}, nil
		}),
		"https://backend.test",
		rate.NewLimiter(rate.Inf, 0),
		appMetrics,
		slog.Default(),
	)
	store := registry.NewStore(client, nil, appMetrics, slog.Default())
	verifier := proximity.NewVerifier(store, fastPolicy, proximity.DefaultTolerance, appMetrics, slog.Default())

	id, err := verifier.Verify(t.Context(), "col-1", observed)

	require.NoError(t, err)
	assert.Equal(t, "pv-1", id)
	assert.Equal(t, 1, store.Snapshot().Len())
	assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.BackendErrors.WithLabelValues("malformed")), 0)
}
