package location_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/verdeando/internal/location"
	"github.com/UnknownOlympus/verdeando/internal/models"
	"github.com/UnknownOlympus/verdeando/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	coords := models.Coordinates{Latitude: -26.8160, Longitude: -65.2157}
	provider := location.NewStatic(coords)

	got, err := provider.Current(t.Context())

	require.NoError(t, err)
	assert.Equal(t, coords, got)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = provider.Current(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDenied(t *testing.T) {
	_, err := location.Denied{}.Current(t.Context())

	require.ErrorIs(t, err, location.ErrPermissionDenied)
}

func TestAddress(t *testing.T) {
	ctx := t.Context()

	t.Run("geocodes once and caches", func(t *testing.T) {
		geocoder := mocks.NewProvider(t)
		coords := &models.Coordinates{Latitude: -26.8161, Longitude: -65.2158}
		geocoder.On("Geocode", ctx, "Av. Mate de Luna 1800").Return(coords, nil).Once()

		provider := location.NewAddress(geocoder, "Av. Mate de Luna 1800", slog.Default())

		first, err := provider.Current(ctx)
		require.NoError(t, err)
		second, err := provider.Current(ctx)
		require.NoError(t, err)

		assert.Equal(t, *coords, first)
		assert.Equal(t, first, second)
	})

	t.Run("failure is reported as no fix and retried next time", func(t *testing.T) {
		geocoder := mocks.NewProvider(t)
		coords := &models.Coordinates{Latitude: -26.8, Longitude: -65.2}
		geocoder.On("Geocode", ctx, "Plaza").Return(nil, assert.AnError).Once()
		geocoder.On("Geocode", ctx, "Plaza").Return(coords, nil).Once()

		provider := location.NewAddress(geocoder, "Plaza", slog.Default())

		_, err := provider.Current(ctx)
		require.ErrorIs(t, err, location.ErrNoFix)
		require.ErrorIs(t, err, assert.AnError)

		got, err := provider.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, *coords, got)
	})
}
