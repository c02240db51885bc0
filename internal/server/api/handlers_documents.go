package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type documentPayload struct {
	Path    string         `json:"path"`
	Fields  map[string]any `json:"fields"`
	Version int64          `json:"version"`
}

func toDocumentPayload(d *models.Document) *documentPayload {
	return &documentPayload{Path: d.Path, Fields: d.Fields, Version: d.Version}
}

// docPath extracts the document path route parameter. Clients escape the
// whole path into a single segment, so it has to be unescaped here.
func docPath(r *http.Request) (string, error) {
	path, err := url.PathUnescape(chi.URLParam(r, "path"))
	if err != nil || path == "" {
		return "", common.ErrorValidation
	}
	return path, nil
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	path, err := docPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	doc, err := s.documents.Get(r.Context(), userID(r), path)
	if err != nil {
		writeError(w, err)
		return
	}

	// Pollers pass the last version they saw; an unchanged document is
	// answered without a body.
	if since := r.URL.Query().Get("since"); since != "" {
		if v, err := strconv.ParseInt(since, 10, 64); err == nil && doc.Version <= v {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	writeJSON(w, http.StatusOK, toDocumentPayload(doc))
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	docs, err := s.documents.List(r.Context(), userID(r), prefix)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]*documentPayload, 0, len(docs))
	for _, d := range docs {
		payload = append(payload, toDocumentPayload(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": payload})
}

func (s *Server) handleSetDocument(w http.ResponseWriter, r *http.Request) {
	path, err := docPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var in struct {
		Fields map[string]any `json:"fields"`
		Merge  bool           `json:"merge"`
	}
	if err := readJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	version, err := s.documents.Set(r.Context(), userID(r), path, in.Fields, in.Merge)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"version": version})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	path, err := docPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.documents.Delete(r.Context(), userID(r), path); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
