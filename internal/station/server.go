// Package station serves the local HTTP API of a collaborator station.
package station

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/verdeando/internal/events"
	"github.com/UnknownOlympus/verdeando/internal/exchange"
	"github.com/UnknownOlympus/verdeando/internal/models"
	"github.com/UnknownOlympus/verdeando/internal/news"
	"github.com/UnknownOlympus/verdeando/internal/registry"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Session exposes the logged-in user.
type Session interface {
	Current() (models.User, error)
	Logout(ctx context.Context) error
}

// Exchanges confirms tokens and lists the session user's exchanges.
type Exchanges interface {
	Confirm(ctx context.Context, token string) (exchange.Receipt, error)
	List(ctx context.Context) ([]models.Exchange, error)
	Submit(ctx context.Context, req models.ExchangeRequest) (models.Exchange, error)
}

// GreenPoints is the registry as seen by the API.
type GreenPoints interface {
	Snapshot() *registry.Snapshot
	Reload(ctx context.Context) (*registry.Snapshot, error)
	Create(ctx context.Context, token, collaboratorID string, draft models.GreenPointDraft) (*registry.Snapshot, error)
	Update(ctx context.Context, token, id, collaboratorID string, patch models.GreenPointPatch) (*registry.Snapshot, error)
	Delete(ctx context.Context, token, id string) (*registry.Snapshot, error)
}

// News loads a ranked article feed.
type News interface {
	Load(ctx context.Context, order news.Order, limit int) ([]models.Article, error)
}

// Rewards lists and redeems rewards.
type Rewards interface {
	Catalog(ctx context.Context) ([]models.Reward, error)
	Redeem(ctx context.Context, rewardID string) (models.User, error)
	History(ctx context.Context) ([]models.Redemption, error)
}

// Materials lists the recyclable materials exchanges are built from.
type Materials interface {
	ListMaterials(ctx context.Context) ([]models.Material, error)
}

// Events lists community events and the multiplier running at a green point.
type Events interface {
	List(ctx context.Context, filter events.Filter) ([]models.Event, error)
	Multiplier(ctx context.Context, greenPointID string) (float64, error)
}

// Server wires the API handlers to the station components.
type Server struct {
	session     Session
	exchanges   Exchanges
	greenPoints GreenPoints
	news        News
	rewards     Rewards
	materials   Materials
	events      Events
	log         *slog.Logger
}

// NewServer creates the API server.
func NewServer(
	session Session,
	exchanges Exchanges,
	greenPoints GreenPoints,
	feed News,
	rewards Rewards,
	materials Materials,
	calendar Events,
	log *slog.Logger,
) *Server {
	return &Server{
		session:     session,
		exchanges:   exchanges,
		greenPoints: greenPoints,
		news:        feed,
		rewards:     rewards,
		materials:   materials,
		events:      calendar,
		log:         log,
	}
}

// Router returns the API routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/session", s.handleSession).Methods(http.MethodGet)
	r.HandleFunc("/session", s.handleLogout).Methods(http.MethodDelete)

	r.HandleFunc("/materials", s.handleMaterials).Methods(http.MethodGet)
	r.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)

	r.HandleFunc("/exchanges", s.handleListExchanges).Methods(http.MethodGet)
	r.HandleFunc("/exchanges", s.handleSubmitExchange).Methods(http.MethodPost)
	r.HandleFunc("/exchanges/confirm", s.handleConfirm).Methods(http.MethodPost)

	r.HandleFunc("/green-points", s.handleListGreenPoints).Methods(http.MethodGet)
	r.HandleFunc("/green-points", s.handleCreateGreenPoint).Methods(http.MethodPost)
	r.HandleFunc("/green-points/reload", s.handleReload).Methods(http.MethodPost)
	r.HandleFunc("/green-points/{id}", s.handleUpdateGreenPoint).Methods(http.MethodPut)
	r.HandleFunc("/green-points/{id}", s.handleDeleteGreenPoint).Methods(http.MethodDelete)

	r.HandleFunc("/news", s.handleNews).Methods(http.MethodGet)

	r.HandleFunc("/rewards", s.handleRewards).Methods(http.MethodGet)
	r.HandleFunc("/rewards/history", s.handleRedemptions).Methods(http.MethodGet)
	r.HandleFunc("/rewards/{id}/redeem", s.handleRedeem).Methods(http.MethodPost)

	return r
}

// Run serves the API on port until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	const (
		readTimeout     = 5 * time.Second
		shutdownTimeout = 10 * time.Second
	)

	// Confirmation may spend the whole retry policy waiting for a fix, so writes are not bounded.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Starting station API", "port", port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("station API failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down station API: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("station API failed: %w", err)
	}
	s.log.InfoContext(ctx, "Station API stopped")

	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		startTime := time.Now()
		next.ServeHTTP(recorder, r)

		s.log.InfoContext(r.Context(), "API request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration", time.Since(startTime),
			"request_id", requestID)
	})
}
