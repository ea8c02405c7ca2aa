package station

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/UnknownOlympus/verdeando/internal/models"
	"github.com/UnknownOlympus/verdeando/internal/registry"
)

func decodeBody(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	return nil
}

func (s *Server) reply(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.ErrorContext(r.Context(), "failed to write reply", "error", err)
	}
}

func (s *Server) replySnapshot(w http.ResponseWriter, r *http.Request, status int, snapshot *registry.Snapshot) {
	s.replyPoints(w, r, status, snapshot.Points(), snapshot.LoadedAt())
}

func (s *Server) replyPoints(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	points []models.GreenPoint,
	loadedAt time.Time,
) {
	body := greenPointsResponse{GreenPoints: points}
	if !loadedAt.IsZero() {
		body.LoadedAt = &loadedAt
	}

	s.reply(w, r, status, body)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := describe(err)
	if status >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "API request failed", "path", r.URL.Path, "error", err)
	} else {
		s.log.InfoContext(r.Context(), "API request rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	s.reply(w, r, status, body)
}
