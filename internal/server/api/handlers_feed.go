package api

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type feedItemPayload struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
	Read       bool      `json:"read"`
}

func (s *Server) handleListFeed(w http.ResponseWriter, r *http.Request) {
	items, err := s.feed.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]*feedItemPayload, 0, len(items))
	for _, i := range items {
		payload = append(payload, &feedItemPayload{
			ID:         i.ID,
			Title:      i.Title,
			Message:    i.Message,
			OccurredAt: i.OccurredAt,
			Read:       i.Read,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": payload})
}

func (s *Server) handleAppendFeed(w http.ResponseWriter, r *http.Request) {
	var in feedItemPayload
	if err := readJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	item := &models.FeedItem{
		ID:         in.ID,
		Title:      in.Title,
		Message:    in.Message,
		OccurredAt: in.OccurredAt,
		Read:       in.Read,
	}
	if _, err := s.feed.Append(r.Context(), userID(r), item); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleMarkFeedRead(w http.ResponseWriter, r *http.Request) {
	if err := s.feed.MarkRead(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteFeedItem(w http.ResponseWriter, r *http.Request) {
	if err := s.feed.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearFeed(w http.ResponseWriter, r *http.Request) {
	if err := s.feed.Clear(r.Context(), userID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
