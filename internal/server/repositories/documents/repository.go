// Package documents declares the server-side repository contract for the
// versioned, path-addressed document store.
package documents

import (
	"context"

	"github.com/dmitrijs2005/tripkeeper/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, path string) (*models.Document, error)

	// ListByPrefix returns every document whose path starts with prefix,
	// ordered by path. Access filtering is the caller's responsibility.
	ListByPrefix(ctx context.Context, prefix string) ([]*models.Document, error)

	// Upsert inserts the document at version 1 or updates it, incrementing the
	// stored version. When doc.Version is non-zero the update only applies if
	// the stored version still matches, otherwise a version conflict error is
	// returned. The new version is returned on success.
	Upsert(ctx context.Context, doc *models.Document) (int64, error)

	// UpdateAccess replaces the access list on every document whose path
	// starts with prefix, bumping their versions.
	UpdateAccess(ctx context.Context, prefix string, accessUIDs []string) error

	Delete(ctx context.Context, path string) error
	DeleteByPrefix(ctx context.Context, prefix string) error

	// DeleteByOwner removes every document owned by uid.
	DeleteByOwner(ctx context.Context, uid string) error
}
