package client

import (
	"context"

	"github.com/dmitrijs2005/tripkeeper/internal/client/models"
	"github.com/dmitrijs2005/tripkeeper/internal/docstore"
	"github.com/dmitrijs2005/tripkeeper/internal/identity"
)

// Client is the transport-agnostic contract to the TripKeeper backend.
// Authentication uses a salt/verifier exchange: the password never leaves
// the device, only an argon2id verifier derived from it.
type Client interface {
	Close() error

	Register(ctx context.Context, email string, displayName string, salt []byte, verifier []byte) error
	GetSalt(ctx context.Context, email string) ([]byte, error)
	Login(ctx context.Context, email string, verifier []byte) (*identity.Principal, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*identity.Principal, error)
	SendVerificationEmail(ctx context.Context) error
	ConfirmEmail(ctx context.Context, token string) error
	DeleteAccount(ctx context.Context, verifier []byte) error

	GetDocument(ctx context.Context, path string) (*docstore.Document, error)
	// GetDocumentIfChanged fetches path only if its version advanced past
	// since; changed reports whether a document came back.
	GetDocumentIfChanged(ctx context.Context, path string, since int64) (doc *docstore.Document, changed bool, err error)
	ListDocuments(ctx context.Context, prefix string) ([]*docstore.Document, error)
	SetDocument(ctx context.Context, path string, fields map[string]any, merge bool) (int64, error)
	DeleteDocument(ctx context.Context, path string) error

	ListFeedItems(ctx context.Context) ([]models.FeedItem, error)
	AppendFeedItem(ctx context.Context, item models.FeedItem) error
	MarkFeedItemRead(ctx context.Context, id string) error
	DeleteFeedItem(ctx context.Context, id string) error
	ClearFeed(ctx context.Context) error

	GetPresignedPutURL(ctx context.Context, fileName string, contentType string) (string, string, error)
	GetPresignedGetURL(ctx context.Context, key string) (string, error)

	ResolveCollaborator(ctx context.Context, email string) (string, error)

	Ping(ctx context.Context) error
}
