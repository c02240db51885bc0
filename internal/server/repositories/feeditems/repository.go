// Package feeditems declares the server-side repository contract for the
// per-user notification feed.
package feeditems

import (
	"context"

	"github.com/dmitrijs2005/tripkeeper/internal/server/models"
)

type Repository interface {
	// List returns every feed item belonging to uid, newest first.
	List(ctx context.Context, uid string) ([]*models.FeedItem, error)
	Create(ctx context.Context, item *models.FeedItem) error
	MarkRead(ctx context.Context, uid string, id string) error
	Delete(ctx context.Context, uid string, id string) error
	Clear(ctx context.Context, uid string) error
}
