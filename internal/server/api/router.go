// Package api exposes the JSON HTTP API. Handlers are thin: they decode the
// request, call a service, and encode the result; all business rules live in
// the services package.
package api

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/server/models"
	"github.com/dmitrijs2005/tripkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// UserService is the slice of services.UserService the handlers need.
type UserService interface {
	Register(ctx context.Context, email string, displayName string, salt, verifier []byte) (*models.User, error)
	GetSalt(ctx context.Context, email string) ([]byte, error)
	Login(ctx context.Context, email string, verifier []byte) (*services.TokenPair, *models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, uid string) (*models.User, error)
	SendVerificationEmail(ctx context.Context, uid string) error
	ConfirmEmail(ctx context.Context, token string) error
	DeleteAccount(ctx context.Context, uid string, verifier []byte) error
	ResolveByEmail(ctx context.Context, email string) (string, error)
}

type DocumentService interface {
	Get(ctx context.Context, uid string, path string) (*models.Document, error)
	List(ctx context.Context, uid string, prefix string) ([]*models.Document, error)
	Set(ctx context.Context, uid string, path string, fields map[string]any, merge bool) (int64, error)
	Delete(ctx context.Context, uid string, path string) error
}

type FeedService interface {
	List(ctx context.Context, uid string) ([]*models.FeedItem, error)
	Append(ctx context.Context, uid string, item *models.FeedItem) (*models.FeedItem, error)
	MarkRead(ctx context.Context, uid string, id string) error
	Delete(ctx context.Context, uid string, id string) error
	Clear(ctx context.Context, uid string) error
}

type AttachmentService interface {
	GetPresignedPutURL(ctx context.Context, fileName string, contentType string) (string, string, error)
	GetPresignedGetURL(ctx context.Context, key string) (string, error)
}

// Server bundles the services behind the HTTP API.
type Server struct {
	users       UserService
	documents   DocumentService
	feed        FeedService
	attachments AttachmentService
	jwtSecret   []byte
	log         logging.Logger
}

func NewServer(users UserService, documents DocumentService, feed FeedService,
	attachments AttachmentService, jwtSecret []byte, log logging.Logger) *Server {
	return &Server{
		users:       users,
		documents:   documents,
		feed:        feed,
		attachments: attachments,
		jwtSecret:   jwtSecret,
		log:         log,
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", s.handlePing)

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Get("/salt", s.handleGetSalt)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/verification/confirm", s.handleConfirmEmail)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
			r.Post("/verification/send", s.handleSendVerification)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Delete("/api/user", s.handleDeleteAccount)

		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/documents/{path}", s.handleGetDocument)
		r.Put("/api/documents/{path}", s.handleSetDocument)
		r.Delete("/api/documents/{path}", s.handleDeleteDocument)

		r.Get("/api/feed", s.handleListFeed)
		r.Post("/api/feed", s.handleAppendFeed)
		r.Delete("/api/feed", s.handleClearFeed)
		r.Post("/api/feed/{id}/read", s.handleMarkFeedRead)
		r.Delete("/api/feed/{id}", s.handleDeleteFeedItem)

		r.Post("/api/files/presign-put", s.handlePresignPut)
		r.Get("/api/files/presign-get", s.handlePresignGet)

		r.Post("/api/collaborators/resolve", s.handleResolveCollaborator)
	})

	return r
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
