package registry_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/verdeando/internal/metrics"
	"github.com/UnknownOlympus/verdeando/internal/models"
	"github.com/UnknownOlympus/verdeando/internal/registry"
	"github.com/UnknownOlympus/verdeando/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func greenPoints() []models.GreenPoint {
	return []models.GreenPoint{
		{
			ID:                  "pv-2",
			Name:                "Plaza Urquiza",
			Location:            models.Coordinates{Latitude: -26.8161, Longitude: -65.2158},
			OwnerCollaboratorID: "col-1",
			AcceptedMaterials:   []string{"Papel"},
		},
		{
			ID:                  "pv-1",
			Name:                "Club Atletico",
			Location:            models.Coordinates{Latitude: -26.9, Longitude: -65.3},
			OwnerCollaboratorID: "col-2",
		},
	}
}

func newStore(t *testing.T, backend registry.Backend) (*registry.Store, *metrics.Metrics) {
	t.Helper()
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())

	return registry.NewStore(backend, nil, appMetrics, slog.Default()), appMetrics
}

func TestStore_Reload(t *testing.T) {
	ctx := t.Context()

	t.Run("empty before the first load", func(t *testing.T) {
		store, _ := newStore(t, mocks.NewGreenPointBackend(t))

		snapshot := store.Snapshot()

		require.NotNil(t, snapshot)
		assert.True(t, snapshot.Empty())
		assert.True(t, snapshot.LoadedAt().IsZero())
	})

	t.Run("publishes backend order", func(t *testing.T) {
		backend := mocks.NewGreenPointBackend(t)
		backend.On("ListGreenPoints", ctx).Return(greenPoints(), nil).Once()
		store, appMetrics := newStore(t, backend)

		snapshot, err := store.Reload(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"pv-2", "pv-1"}, snapshot.IDs())
		assert.Same(t, snapshot, store.Snapshot())
		assert.InDelta(t, 2, testutil.ToFloat64(appMetrics.RegistrySize), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.RegistryReloads.WithLabelValues("success")), 0)
	})

	t.Run("reloading an unchanged backend gives the same ids", func(t *testing.T) {
		backend := mocks.NewGreenPointBackend(t)
		backend.On("ListGreenPoints", ctx).Return(greenPoints(), nil).Twice()
		store, _ := newStore(t, backend)

		first, err := store.Reload(ctx)
		require.NoError(t, err)
		second, err := store.Reload(ctx)
		require.NoError(t, err)

		assert.Equal(t, first.IDs(), second.IDs())
	})

	t.Run("failure keeps the previous snapshot", func(t *testing.T) {
		backend := mocks.NewGreenPointBackend(t)
		backend.On("ListGreenPoints", ctx).Return(greenPoints(), nil).Once()
		backend.On("ListGreenPoints", ctx).Return(nil, assert.AnError).Once()
		store, appMetrics := newStore(t, backend)

		previous, err := store.Reload(ctx)
		require.NoError(t, err)

		snapshot, err := store.Reload(ctx)

		require.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, snapshot)
		assert.Same(t, previous, store.Snapshot())
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.RegistryReloads.WithLabelValues("failure")), 0)
	})
}

func TestSnapshot_Queries(t *testing.T) {
	ctx := t.Context()
	backend := mocks.NewGreenPointBackend(t)
	backend.On("ListGreenPoints", ctx).Return(greenPoints(), nil).Once()
	store, _ := newStore(t, backend)

	snapshot, err := store.Reload(ctx)
	require.NoError(t, err)

	owned := snapshot.OwnedBy("col-1")
	require.Len(t, owned, 1)
	assert.Equal(t, "pv-2", owned[0].ID)
	assert.Empty(t, snapshot.OwnedBy("col-9"))

	point, ok := snapshot.Get("pv-1")
	require.True(t, ok)
	assert.Equal(t, "Club Atletico", point.Name)
	_, ok = snapshot.Get("pv-404")
	assert.False(t, ok)

	points := snapshot.Points()
	points[0].AcceptedMaterials[0] = "Vidrio"
	points[0].ID = "changed"
	assert.Equal(t, []string{"pv-2", "pv-1"}, snapshot.IDs())
	fresh, _ := snapshot.Get("pv-2")
	assert.Equal(t, []string{"Papel"}, fresh.AcceptedMaterials)
}

func TestStore_Create(t *testing.T) {
	ctx := t.Context()
	coords := &models.Coordinates{Latitude: -26.8161, Longitude: -65.2158}

	t.Run("with coordinates", func(t *testing.T) {
		backend := mocks.NewGreenPointBackend(t)
		draft := models.GreenPointDraft{Name: "Plaza", Location: coords}
		backend.On("CreateGreenPoint", ctx, "jwt", "col-1", draft).Return(nil).Once()
		backend.On("ListGreenPoints", ctx).Return(greenPoints(), nil).Once()
		store, _ := newStore(t, backend)

		snapshot, err := store.Create(ctx, "jwt", "col-1", draft)

		require.NoError(t, err)
		assert.Equal(t, 2, snapshot.Len())
	})

	t.Run("address is geocoded", func(t *testing.T) {
		backend := mocks.NewGreenPointBackend(t)
		geocoder := mocks.NewProvider(t)
		geocoder.On("Geocode", ctx, "Av. Mate de Luna 1800").Return(coords, nil).Once()
		backend.On("CreateGreenPoint", ctx, "jwt", "col-1", mock.MatchedBy(func(d models.GreenPointDraft) bool {
			return d.Location != nil && *d.Location == *coords
		})).Return(nil).Once()
		backend.On("ListGreenPoints", ctx).Return(greenPoints(), nil).Once()

		store := registry.NewStore(backend, geocoder, metrics.NewMetrics(prometheus.NewRegistry()), slog.Default())
		_, err := store.Create(ctx, "jwt", "col-1", models.GreenPointDraft{Name: "Plaza", Address: "Av. Mate de Luna 1800"})

		require.NoError(t, err)
	})

	t.Run("neither coordinates nor geocoder", func(t *testing.T) {
		store, _ := newStore(t, mocks.NewGreenPointBackend(t))

		_, err := store.Create(ctx, "jwt", "col-1", models.GreenPointDraft{Name: "Plaza", Address: "Somewhere"})

		require.ErrorIs(t, err, registry.ErrNoAddress)
	})

	t.Run("backend rejection skips the reload", func(t *testing.T) {
		backend := mocks.NewGreenPointBackend(t)
		backend.On("CreateGreenPoint", ctx, "jwt", "col-1", mock.Anything).Return(assert.AnError).Once()
		store, _ := newStore(t, backend)

		_, err := store.Create(ctx, "jwt", "col-1", models.GreenPointDraft{Location: coords})

		require.ErrorIs(t, err, assert.AnError)
		assert.True(t, store.Snapshot().Empty())
	})
}

func TestStore_UpdateAndDelete(t *testing.T) {
	ctx := t.Context()
	patch := models.GreenPointPatch{Name: "Plaza renovada"}

	backend := mocks.NewGreenPointBackend(t)
	backend.On("UpdateGreenPoint", ctx, "jwt", "pv-2", "col-1", patch).Return(nil).Once()
	backend.On("DeleteGreenPoint", ctx, "jwt", "pv-1").Return(nil).Once()
	backend.On("DeleteGreenPoint", ctx, "jwt", "pv-404").Return(assert.AnError).Once()
	backend.On("ListGreenPoints", ctx).Return(greenPoints(), nil).Once()
	backend.On("ListGreenPoints", ctx).Return(greenPoints()[:1], nil).Once()
	store, _ := newStore(t, backend)

	snapshot, err := store.Update(ctx, "jwt", "pv-2", "col-1", patch)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.Len())

	snapshot, err = store.Delete(ctx, "jwt", "pv-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"pv-2"}, snapshot.IDs())

	_, err = store.Delete(ctx, "jwt", "pv-404")
	require.ErrorIs(t, err, assert.AnError)
	require.ErrorContains(t, err, "failed to delete green point pv-404")
}
