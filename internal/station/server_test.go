package station_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UnknownOlympus/verdeando/internal/backend"
	"github.com/UnknownOlympus/verdeando/internal/events"
	"github.com/UnknownOlympus/verdeando/internal/exchange"
	"github.com/UnknownOlympus/verdeando/internal/location"
	"github.com/UnknownOlympus/verdeando/internal/metrics"
	"github.com/UnknownOlympus/verdeando/internal/models"
	"github.com/UnknownOlympus/verdeando/internal/news"
	"github.com/UnknownOlympus/verdeando/internal/proximity"
	"github.com/UnknownOlympus/verdeando/internal/registry"
	"github.com/UnknownOlympus/verdeando/internal/rewards"
	"github.com/UnknownOlympus/verdeando/internal/session"
	"github.com/UnknownOlympus/verdeando/internal/station"
	"github.com/UnknownOlympus/verdeando/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	user      models.User
	err       error
	loggedOut bool
}

func (f *fakeSession) Current() (models.User, error) {
	return f.user, f.err
}

func (f *fakeSession) Logout(context.Context) error {
	f.loggedOut = true
	f.err = session.ErrNoSession

	return nil
}

type fakeExchanges struct {
	confirm   func(token string) (exchange.Receipt, error)
	exchanges []models.Exchange
	err       error
}

func (f *fakeExchanges) Confirm(_ context.Context, token string) (exchange.Receipt, error) {
	return f.confirm(token)
}

func (f *fakeExchanges) List(context.Context) ([]models.Exchange, error) {
	return f.exchanges, f.err
}

func (f *fakeExchanges) Submit(_ context.Context, req models.ExchangeRequest) (models.Exchange, error) {
	if f.err != nil {
		return models.Exchange{}, f.err
	}

	return models.Exchange{ID: "ex-new", State: "PENDIENTE", TotalWeight: req.Lines[0].WeightGrams}, nil
}

type fakeNews struct {
	order news.Order
	limit int
}

func (f *fakeNews) Load(_ context.Context, order news.Order, limit int) ([]models.Article, error) {
	f.order, f.limit = order, limit

	return []models.Article{{ID: "n-1"}}, nil
}

type fakeRewards struct {
	redeemErr error
}

func (f *fakeRewards) Catalog(context.Context) ([]models.Reward, error) {
	return []models.Reward{{ID: "rw-1", Points: 100}}, nil
}

func (f *fakeRewards) Redeem(context.Context, string) (models.User, error) {
	return models.User{ID: "u-1", Points: 20, Token: "jwt"}, f.redeemErr
}

func (f *fakeRewards) History(context.Context) ([]models.Redemption, error) {
	return nil, nil
}

type fakeMaterials struct {
	err error
}

func (f *fakeMaterials) ListMaterials(context.Context) ([]models.Material, error) {
	return []models.Material{{ID: "r-1", Name: "Papel", Points: 2}}, f.err
}

type fakeEvents struct {
	filter        events.Filter
	multiplier    float64
	multiplierErr error
}

func (f *fakeEvents) List(_ context.Context, filter events.Filter) ([]models.Event, error) {
	f.filter = filter

	return []models.Event{{ID: "ev-1", Multiplier: 2, GreenPoints: []string{}}}, nil
}

func (f *fakeEvents) Multiplier(context.Context, string) (float64, error) {
	return f.multiplier, f.multiplierErr
}

func collaborator() models.User {
	return models.User{
		ID:           "u-1",
		Role:         models.RoleCollaborator,
		Collaborator: &models.Collaborator{ID: "col-1"},
		Token:        "jwt",
	}
}

type harness struct {
	session   *fakeSession
	exchanges *fakeExchanges
	backend   *mocks.GreenPointBackend
	news      *fakeNews
	rewards   *fakeRewards
	materials *fakeMaterials
	events    *fakeEvents
	handler   http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		session:   &fakeSession{user: collaborator()},
		exchanges: &fakeExchanges{},
		backend:   mocks.NewGreenPointBackend(t),
		news:      &fakeNews{},
		rewards:   &fakeRewards{},
		materials: &fakeMaterials{},
		events:    &fakeEvents{multiplier: 1},
	}
	store := registry.NewStore(h.backend, nil, metrics.NewMetrics(prometheus.NewRegistry()), slog.Default())
	h.handler = station.NewServer(
		h.session, h.exchanges, store, h.news, h.rewards, h.materials, h.events, slog.Default(),
	).Router()

	return h
}

func (h *harness) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequestWithContext(t.Context(), method, target, &payload)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))

	return out
}

func TestConfirmEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"wrong role", exchange.ErrUnauthorizedRole, http.StatusForbidden, exchange.ErrUnauthorizedRole.Error()},
		{
			"no nearby point",
			&proximity.NoNearbyPointError{Attempts: 5},
			http.StatusUnprocessableEntity,
			"no green point of yours was found near your location",
		},
		{
			"backend rejection",
			&backend.RejectionError{Status: 400, Message: "El intercambio ya fue confirmado"},
			http.StatusBadGateway,
			"El intercambio ya fue confirmado",
		},
		{"network", &backend.NetworkError{Err: assert.AnError}, http.StatusServiceUnavailable, "backend unreachable, check your connection"},
		{"location denied", location.ErrPermissionDenied, http.StatusServiceUnavailable, location.ErrPermissionDenied.Error()},
		{"in flight", exchange.ErrConfirmInFlight, http.StatusConflict, exchange.ErrConfirmInFlight.Error()},
		{"empty token", exchange.ErrEmptyToken, http.StatusBadRequest, exchange.ErrEmptyToken.Error()},
		{"no session", session.ErrNoSession, http.StatusUnauthorized, session.ErrNoSession.Error()},
		{"unexpected", assert.AnError, http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.exchanges.confirm = func(string) (exchange.Receipt, error) { return exchange.Receipt{}, tt.err }

			rec := h.do(t, http.MethodPost, "/exchanges/confirm", map[string]string{"token": "qr"})

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode[map[string]any](t, rec)
			assert.Equal(t, tt.wantError, body["error"])
		})
	}

	t.Run("success", func(t *testing.T) {
		h := newHarness(t)
		h.exchanges.confirm = func(token string) (exchange.Receipt, error) {
			assert.Equal(t, "qr", token)
			return exchange.Receipt{GreenPointID: "pv-1", User: models.User{Points: 150}}, nil
		}

		rec := h.do(t, http.MethodPost, "/exchanges/confirm", map[string]string{"token": "qr"})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		body := decode[map[string]any](t, rec)
		assert.Equal(t, "confirmed", body["status"])
		assert.Equal(t, "pv-1", body["greenPointId"])
		assert.InDelta(t, 150, body["points"], 0)
		assert.InDelta(t, 1, body["multiplier"], 0)
	})

	t.Run("running event multiplier", func(t *testing.T) {
		h := newHarness(t)
		h.events.multiplier = 2
		h.exchanges.confirm = func(string) (exchange.Receipt, error) {
			return exchange.Receipt{GreenPointID: "pv-1"}, nil
		}

		rec := h.do(t, http.MethodPost, "/exchanges/confirm", map[string]string{"token": "qr"})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.InDelta(t, 2, decode[map[string]any](t, rec)["multiplier"], 0)
	})

	t.Run("events failure does not fail the confirmation", func(t *testing.T) {
		h := newHarness(t)
		h.events.multiplierErr = assert.AnError
		h.exchanges.confirm = func(string) (exchange.Receipt, error) {
			return exchange.Receipt{GreenPointID: "pv-1"}, nil
		}

		rec := h.do(t, http.MethodPost, "/exchanges/confirm", map[string]string{"token": "qr"})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[map[string]any](t, rec)
		assert.Equal(t, "confirmed", body["status"])
		assert.NotContains(t, body, "multiplier")
	})

	t.Run("attempts are reported", func(t *testing.T) {
		h := newHarness(t)
		h.exchanges.confirm = func(string) (exchange.Receipt, error) {
			return exchange.Receipt{}, &proximity.NoNearbyPointError{Attempts: 5}
		}

		rec := h.do(t, http.MethodPost, "/exchanges/confirm", map[string]string{"token": "qr"})

		body := decode[map[string]any](t, rec)
		assert.InDelta(t, 5, body["attempts"], 0)
	})

	t.Run("malformed body", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodPost, "/exchanges/confirm", map[string]int{"qr": 1})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExchangesEndpoints(t *testing.T) {
	h := newHarness(t)
	h.exchanges.exchanges = []models.Exchange{
		{ID: "ex-1", State: models.ExchangeCompleted, TotalWeight: 1500},
		{ID: "ex-2", State: "PENDIENTE", TotalWeight: 300},
	}

	rec := h.do(t, http.MethodGet, "/exchanges", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.InDelta(t, 1500, body["recycledWeight"], 0)
	assert.Len(t, body["exchanges"], 2)

	rec = h.do(t, http.MethodPost, "/exchanges", models.ExchangeRequest{
		Lines: []models.ExchangeLine{{MaterialID: "r-1", WeightGrams: 400}},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Exchange](t, rec)
	assert.Equal(t, models.ExchangeState("PENDIENTE"), created.State)
}

func TestGreenPointEndpoints(t *testing.T) {
	points := []models.GreenPoint{
		{ID: "pv-1", OwnerCollaboratorID: "col-1", AcceptedMaterials: []string{}},
		{ID: "pv-2", OwnerCollaboratorID: "col-2", AcceptedMaterials: []string{}},
	}

	t.Run("empty before reload", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodGet, "/green-points", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[map[string]any](t, rec)
		assert.Empty(t, body["greenPoints"])
		assert.NotContains(t, body, "loadedAt")
	})

	t.Run("reload then filter mine", func(t *testing.T) {
		h := newHarness(t)
		h.backend.On("ListGreenPoints", mock.Anything).Return(points, nil).Once()

		rec := h.do(t, http.MethodPost, "/green-points/reload", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[map[string]any](t, rec)["greenPoints"], 2)

		rec = h.do(t, http.MethodGet, "/green-points?mine=true", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		mine := decode[struct {
			GreenPoints []models.GreenPoint `json:"greenPoints"`
		}](t, rec).GreenPoints
		require.Len(t, mine, 1)
		assert.Equal(t, "pv-1", mine[0].ID)
	})

	t.Run("create with coordinates", func(t *testing.T) {
		h := newHarness(t)
		h.backend.On("CreateGreenPoint", mock.Anything, "jwt", "col-1", mock.MatchedBy(func(d models.GreenPointDraft) bool {
			return d.Name == "Plaza" && d.Location != nil && d.Location.Latitude == -26.8
		})).Return(nil).Once()
		h.backend.On("ListGreenPoints", mock.Anything).Return(points, nil).Once()

		rec := h.do(t, http.MethodPost, "/green-points", map[string]any{
			"name":      "Plaza",
			"latitude":  -26.8,
			"longitude": -65.2,
		})

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("create without address or coordinates", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodPost, "/green-points", map[string]any{"name": "Plaza"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("regular users cannot manage points", func(t *testing.T) {
		h := newHarness(t)
		h.session.user.Role = models.RoleUser

		rec := h.do(t, http.MethodDelete, "/green-points/pv-1", nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("update and delete", func(t *testing.T) {
		h := newHarness(t)
		patch := models.GreenPointPatch{OpeningHours: "Lun a Vie 9-13"}
		h.backend.On("UpdateGreenPoint", mock.Anything, "jwt", "pv-1", "col-1", patch).Return(nil).Once()
		h.backend.On("DeleteGreenPoint", mock.Anything, "jwt", "pv-1").Return(nil).Once()
		h.backend.On("ListGreenPoints", mock.Anything).Return(points, nil).Twice()

		rec := h.do(t, http.MethodPut, "/green-points/pv-1", patch)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = h.do(t, http.MethodDelete, "/green-points/pv-1", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestNewsEndpoint(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/news?sort=recent&limit=3", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, news.ByRecency, h.news.order)
	assert.Equal(t, 3, h.news.limit)

	rec = h.do(t, http.MethodGet, "/news", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, news.ByRelevance, h.news.order)

	rec = h.do(t, http.MethodGet, "/news?sort=popular", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, "/news?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRewardsEndpoints(t *testing.T) {
	t.Run("redeem hides the token", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodPost, "/rewards/rw-1/redeem", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		user := decode[models.User](t, rec)
		assert.Equal(t, 20, user.Points)
		assert.Empty(t, user.Token)
	})

	t.Run("insufficient points", func(t *testing.T) {
		h := newHarness(t)
		h.rewards.redeemErr = rewards.ErrInsufficientPoints

		rec := h.do(t, http.MethodPost, "/rewards/rw-1/redeem", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("unknown reward", func(t *testing.T) {
		h := newHarness(t)
		h.rewards.redeemErr = rewards.ErrUnknownReward

		rec := h.do(t, http.MethodPost, "/rewards/rw-9/redeem", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("catalog", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, http.MethodGet, "/rewards", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]models.Reward](t, rec), 1)
	})
}

func TestSessionEndpoint(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/session", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	user := decode[models.User](t, rec)
	assert.Equal(t, "u-1", user.ID)
	assert.Empty(t, user.Token)

	h.session.err = session.ErrNoSession
	rec = h.do(t, http.MethodGet, "/session", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodDelete, "/session", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, h.session.loggedOut)

	rec = h.do(t, http.MethodGet, "/session", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMaterialsEndpoint(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/materials", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	materials := decode[[]models.Material](t, rec)
	require.Len(t, materials, 1)
	assert.Equal(t, "Papel", materials[0].Name)

	h.materials.err = &backend.NetworkError{Err: assert.AnError}
	rec = h.do(t, http.MethodGet, "/materials", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestEventsEndpoint(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/events?active=true&greenPoint=pv-1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, events.Filter{ActiveOnly: true, GreenPointID: "pv-1"}, h.events.filter)
	assert.Len(t, decode[[]models.Event](t, rec), 1)

	rec = h.do(t, http.MethodGet, "/events?active=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
