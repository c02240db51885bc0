package api

import (
	"encoding/base64"
	"net/http"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/server/models"
)

type userPayload struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	EmailVerified bool   `json:"email_verified"`
}

func toUserPayload(u *models.User) *userPayload {
	return &userPayload{
		UID:           u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		EmailVerified: u.EmailVerified,
	}
}

type tokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		Salt        string `json:"salt"`
		Verifier    string `json:"verifier"`
	}
	if err := readJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	salt, err := base64.StdEncoding.DecodeString(in.Salt)
	if err != nil {
		writeError(w, common.ErrorValidation)
		return
	}
	verifier, err := base64.StdEncoding.DecodeString(in.Verifier)
	if err != nil {
		writeError(w, common.ErrorValidation)
		return
	}

	user, err := s.users.Register(r.Context(), in.Email, in.DisplayName, salt, verifier)
	if err != nil {
		writeError(w, err)
		return
	}

	s.log.Info(r.Context(), "user registered", "uid", user.ID)
	writeJSON(w, http.StatusCreated, toUserPayload(user))
}

func (s *Server) handleGetSalt(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, common.ErrorValidation)
		return
	}

	salt, err := s.users.GetSalt(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"salt": base64.StdEncoding.EncodeToString(salt),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Verifier string `json:"verifier"`
	}
	if err := readJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	verifier, err := base64.StdEncoding.DecodeString(in.Verifier)
	if err != nil {
		writeError(w, common.ErrorValidation)
		return
	}

	pair, user, err := s.users.Login(r.Context(), in.Email, verifier)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		tokenPayload
		User *userPayload `json:"user"`
	}{
		tokenPayload: tokenPayload{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		User:         toUserPayload(user),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := readJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), in.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &tokenPayload{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := readJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	if err := s.users.Logout(r.Context(), in.RefreshToken); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Me(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserPayload(user))
}

func (s *Server) handleSendVerification(w http.ResponseWriter, r *http.Request) {
	if err := s.users.SendVerificationEmail(r.Context(), userID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token string `json:"token"`
	}
	if err := readJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	if err := s.users.ConfirmEmail(r.Context(), in.Token); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Verifier string `json:"verifier"`
	}
	if err := readJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	verifier, err := base64.StdEncoding.DecodeString(in.Verifier)
	if err != nil {
		writeError(w, common.ErrorValidation)
		return
	}

	uid := userID(r)
	if err := s.users.DeleteAccount(r.Context(), uid, verifier); err != nil {
		writeError(w, err)
		return
	}

	s.log.Info(r.Context(), "account deleted", "uid", uid)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResolveCollaborator(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := readJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	uid, err := s.users.ResolveByEmail(r.Context(), in.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"uid": uid})
}
