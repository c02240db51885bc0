package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func writeAPIError(t *testing.T, w http.ResponseWriter, status int, code, msg string) {
	t.Helper()
	writeJSON(t, w, status, apiError{Error: msg, Code: code})
}

func TestHTTPClientLoginStoresTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/user/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "anna@example.com", in["email"])
		require.NotEmpty(t, in["verifier"])

		writeJSON(t, w, http.StatusOK, map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"user": map[string]any{
				"uid": "u1", "email": "anna@example.com",
				"display_name": "Anna", "email_verified": false,
			},
		})
	})
	mux.HandleFunc("GET /api/user/me", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"uid": "u1", "email": "anna@example.com",
			"display_name": "Anna", "email_verified": true,
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	ctx := context.Background()

	p, err := c.Login(ctx, "anna@example.com", []byte("verifier"))
	require.NoError(t, err)
	require.Equal(t, "u1", p.UID)
	require.False(t, p.EmailVerified)

	p, err = c.Me(ctx)
	require.NoError(t, err)
	require.True(t, p.EmailVerified)
}

func TestHTTPClientRefreshesExpiredToken(t *testing.T) {
	var refreshCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/user/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-2" {
			writeAPIError(t, w, http.StatusUnauthorized, "token_expired", "token expired")
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"uid": "u1", "email": "anna@example.com"})
	})
	mux.HandleFunc("POST /api/user/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "refresh-1", in["refresh_token"])
		writeJSON(t, w, http.StatusOK, tokenPayload{AccessToken: "access-2", RefreshToken: "refresh-2"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	c.setTokens("access-1", "refresh-1")

	p, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", p.UID)
	require.Equal(t, 1, refreshCalls)

	access, refresh := c.tokens()
	require.Equal(t, "access-2", access)
	require.Equal(t, "refresh-2", refresh)
}

func TestHTTPClientRefreshFailureIsUnauthorized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/user/me", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(t, w, http.StatusUnauthorized, "token_expired", "token expired")
	})
	mux.HandleFunc("POST /api/user/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(t, w, http.StatusUnauthorized, "refresh_token_expired", "refresh token expired")
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	c.setTokens("stale", "stale")

	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestHTTPClientErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
		want   error
	}{
		{"not found", http.StatusNotFound, "", common.ErrorNotFound},
		{"email exists", http.StatusConflict, "email_exists", common.ErrorEmailAlreadyExists},
		{"reauth required", http.StatusForbidden, "reauth_required", common.ErrReauthRequired},
		{"version conflict", http.StatusConflict, "version_conflict", common.ErrVersionConflict},
		{"validation", http.StatusBadRequest, "validation", common.ErrorValidation},
		{"unauthorized", http.StatusUnauthorized, "", ErrUnauthorized},
		{"unavailable", http.StatusServiceUnavailable, "", ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeAPIError(t, w, tt.status, tt.code, tt.name)
			}))
			defer srv.Close()

			c := NewHTTPClient(srv.URL)
			_, err := c.GetDocument(context.Background(), "trips/t1")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHTTPClientConnectionErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	c := NewHTTPClient(srv.URL)
	err := c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClientDocumentRoundtrip(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/documents/{path}", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.PathValue("path")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(t, w, http.StatusOK, map[string]any{"version": 7})
	})
	mux.HandleFunc("GET /api/documents/{path}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"path":    "trips/t1",
			"fields":  map[string]any{"name": "Autumn in Riga"},
			"version": 7,
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	ctx := context.Background()

	version, err := c.SetDocument(ctx, "trips/t1", map[string]any{"name": "Autumn in Riga"}, true)
	require.NoError(t, err)
	require.Equal(t, int64(7), version)
	// Document paths contain slashes and travel as a single escaped segment.
	require.Equal(t, "trips/t1", gotPath)
	require.Equal(t, true, gotBody["merge"])

	doc, err := c.GetDocument(ctx, "trips/t1")
	require.NoError(t, err)
	require.Equal(t, "Autumn in Riga", doc.StringField("name"))
	require.Equal(t, int64(7), doc.Version)
}

func TestHTTPClientConditionalDocumentFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/documents/{path}", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("since") == "7" {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"path":    "trips/t1",
			"fields":  map[string]any{"name": "Autumn in Riga"},
			"version": 7,
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	ctx := context.Background()

	doc, changed, err := c.GetDocumentIfChanged(ctx, "trips/t1", 3)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, int64(7), doc.Version)

	doc, changed, err = c.GetDocumentIfChanged(ctx, "trips/t1", 7)
	require.NoError(t, err)
	require.False(t, changed)
	require.Nil(t, doc)
}

func TestHTTPClientPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/api/ping") {
			writeJSON(t, w, http.StatusOK, map[string]string{"status": "OK"})
		}
	}))
	defer srv.Close()

	require.NoError(t, NewHTTPClient(srv.URL).Ping(context.Background()))
}

func TestHTTPClientLogoutClearsTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/user/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	c.setTokens("access-1", "refresh-1")

	require.NoError(t, c.Logout(context.Background()))
	access, refresh := c.tokens()
	require.Empty(t, access)
	require.Empty(t, refresh)
}
