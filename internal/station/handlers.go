package station

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/UnknownOlympus/verdeando/internal/events"
	"github.com/UnknownOlympus/verdeando/internal/exchange"
	"github.com/UnknownOlympus/verdeando/internal/models"
	"github.com/UnknownOlympus/verdeando/internal/news"
	"github.com/gorilla/mux"
)

type confirmRequest struct {
	Token string `json:"token"`
}

type confirmResponse struct {
	Status       string  `json:"status"`
	GreenPointID string  `json:"greenPointId"`
	Points       int     `json:"points,omitempty"`
	Multiplier   float64 `json:"multiplier,omitempty"`
}

type exchangesResponse struct {
	Exchanges      []models.Exchange `json:"exchanges"`
	RecycledWeight float64           `json:"recycledWeight"`
}

type greenPointsResponse struct {
	GreenPoints []models.GreenPoint `json:"greenPoints"`
	LoadedAt    *time.Time          `json:"loadedAt,omitempty"`
}

type greenPointRequest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Address           string   `json:"address"`
	OpeningHours      string   `json:"openingHours"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	AcceptedMaterials []string `json:"acceptedMaterials"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	user, err := s.session.Current()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	user.Token = ""

	s.reply(w, r, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Logout(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	receipt, err := s.exchanges.Confirm(r.Context(), req.Token)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := confirmResponse{
		Status:       "confirmed",
		GreenPointID: receipt.GreenPointID,
		Points:       receipt.User.Points,
	}
	// The exchange is already confirmed; a missing multiplier only leaves the field out.
	multiplier, err := s.events.Multiplier(r.Context(), receipt.GreenPointID)
	if err != nil {
		s.log.WarnContext(r.Context(), "Failed to resolve event multiplier", "error", err)
	} else {
		resp.Multiplier = multiplier
	}

	s.reply(w, r, http.StatusOK, resp)
}

func (s *Server) handleListExchanges(w http.ResponseWriter, r *http.Request) {
	exchanges, err := s.exchanges.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.reply(w, r, http.StatusOK, exchangesResponse{
		Exchanges:      exchanges,
		RecycledWeight: exchange.RecycledWeight(exchanges),
	})
}

func (s *Server) handleSubmitExchange(w http.ResponseWriter, r *http.Request) {
	var req models.ExchangeRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	created, err := s.exchanges.Submit(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.reply(w, r, http.StatusCreated, created)
}

func (s *Server) handleListGreenPoints(w http.ResponseWriter, r *http.Request) {
	snapshot := s.greenPoints.Snapshot()
	if r.URL.Query().Get("mine") == "true" {
		user, err := s.collaborator()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.replyPoints(w, r, http.StatusOK, snapshot.OwnedBy(user.CollaboratorID()), snapshot.LoadedAt())
		return
	}

	s.replySnapshot(w, r, http.StatusOK, snapshot)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.greenPoints.Reload(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.replySnapshot(w, r, http.StatusOK, snapshot)
}

func (s *Server) handleCreateGreenPoint(w http.ResponseWriter, r *http.Request) {
	user, err := s.collaborator()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req greenPointRequest
	if err = decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	draft := models.GreenPointDraft{
		Name:              req.Name,
		Description:       req.Description,
		Address:           req.Address,
		OpeningHours:      req.OpeningHours,
		AcceptedMaterials: req.AcceptedMaterials,
	}
	if req.Latitude != nil && req.Longitude != nil {
		draft.Location = &models.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	snapshot, err := s.greenPoints.Create(r.Context(), user.Token, user.CollaboratorID(), draft)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.replySnapshot(w, r, http.StatusCreated, snapshot)
}

func (s *Server) handleUpdateGreenPoint(w http.ResponseWriter, r *http.Request) {
	user, err := s.collaborator()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var patch models.GreenPointPatch
	if err = decodeBody(r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}

	snapshot, err := s.greenPoints.Update(r.Context(), user.Token, mux.Vars(r)["id"], user.CollaboratorID(), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.replySnapshot(w, r, http.StatusOK, snapshot)
}

func (s *Server) handleDeleteGreenPoint(w http.ResponseWriter, r *http.Request) {
	user, err := s.collaborator()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	snapshot, err := s.greenPoints.Delete(r.Context(), user.Token, mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.replySnapshot(w, r, http.StatusOK, snapshot)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	order := news.ByRelevance
	switch query.Get("sort") {
	case "", string(news.ByRelevance):
	case string(news.ByRecency):
		order = news.ByRecency
	default:
		s.fail(w, r, fmt.Errorf("%w: unknown sort %q", errBadRequest, query.Get("sort")))
		return
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.fail(w, r, fmt.Errorf("%w: invalid limit %q", errBadRequest, raw))
			return
		}
		limit = parsed
	}

	articles, err := s.news.Load(r.Context(), order, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.reply(w, r, http.StatusOK, articles)
}

func (s *Server) handleRewards(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.rewards.Catalog(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.reply(w, r, http.StatusOK, catalog)
}

func (s *Server) handleRedemptions(w http.ResponseWriter, r *http.Request) {
	history, err := s.rewards.History(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.reply(w, r, http.StatusOK, history)
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	user, err := s.rewards.Redeem(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	user.Token = ""

	s.reply(w, r, http.StatusOK, user)
}

func (s *Server) handleMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := s.materials.ListMaterials(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.reply(w, r, http.StatusOK, materials)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := events.Filter{GreenPointID: query.Get("greenPoint")}
	if raw := query.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			s.fail(w, r, fmt.Errorf("%w: invalid active %q", errBadRequest, raw))
			return
		}
		filter.ActiveOnly = active
	}

	list, err := s.events.List(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.reply(w, r, http.StatusOK, list)
}

func (s *Server) collaborator() (models.User, error) {
	user, err := s.session.Current()
	if err != nil {
		return models.User{}, err
	}
	if !user.IsCollaborator() {
		return models.User{}, errNotCollaborator
	}

	return user, nil
}
