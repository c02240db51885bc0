package api

import (
	"net/http"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
)

func (s *Server) handlePresignPut(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FileName    string `json:"file_name"`
		ContentType string `json:"content_type"`
	}
	if err := readJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.FileName == "" {
		writeError(w, common.ErrorValidation)
		return
	}

	key, url, err := s.attachments.GetPresignedPutURL(r.Context(), in.FileName, in.ContentType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "url": url})
}

func (s *Server) handlePresignGet(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, common.ErrorValidation)
		return
	}

	url, err := s.attachments.GetPresignedGetURL(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
