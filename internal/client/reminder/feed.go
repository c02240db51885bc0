package reminder

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/tripkeeper/internal/client/models"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
)

// FeedStore is the backend persistence contract for notification feed
// items. The production implementation is the API client; backend copies
// outlive the in-memory mirror.
type FeedStore interface {
	ListFeedItems(ctx context.Context) ([]models.FeedItem, error)
	AppendFeedItem(ctx context.Context, item models.FeedItem) error
	MarkFeedItemRead(ctx context.Context, id string) error
	DeleteFeedItem(ctx context.Context, id string) error
	ClearFeed(ctx context.Context) error
}

// Feed mirrors the per-user notification feed in memory, always ordered by
// event time descending. Persistence failures are logged and never fatal:
// the in-memory copy stays authoritative for the current session and
// self-heals on the next Refresh.
type Feed struct {
	store FeedStore
	log   logging.Logger

	mu    sync.Mutex
	items []models.FeedItem
}

func NewFeed(store FeedStore, log logging.Logger) *Feed {
	return &Feed{store: store, log: log.With("component", "feed")}
}

// Refresh replaces the in-memory mirror with the backend's copy.
func (f *Feed) Refresh(ctx context.Context) error {
	items, err := f.store.ListFeedItems(ctx)
	if err != nil {
		return err
	}
	models.SortFeedItemsDesc(items)

	f.mu.Lock()
	f.items = items
	f.mu.Unlock()
	return nil
}

// Append adds an item to the mirror and persists it.
func (f *Feed) Append(ctx context.Context, item models.FeedItem) {
	f.mu.Lock()
	f.items = append(f.items, item)
	models.SortFeedItemsDesc(f.items)
	f.mu.Unlock()

	if err := f.store.AppendFeedItem(ctx, item); err != nil {
		f.log.Warn(ctx, "failed to persist feed item", "id", item.ID, "error", err)
	}
}

// Items returns a copy of the mirror, newest first.
func (f *Feed) Items() []models.FeedItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.FeedItem, len(f.items))
	copy(out, f.items)
	return out
}

// MarkRead flags an item as read. Unknown ids are a no-op.
func (f *Feed) MarkRead(ctx context.Context, id string) {
	f.mu.Lock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Read = true
		}
	}
	f.mu.Unlock()

	if err := f.store.MarkFeedItemRead(ctx, id); err != nil {
		f.log.Warn(ctx, "failed to persist read status", "id", id, "error", err)
	}
}

// Delete removes a single item.
func (f *Feed) Delete(ctx context.Context, id string) {
	f.mu.Lock()
	kept := f.items[:0]
	for _, it := range f.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	f.items = kept
	f.mu.Unlock()

	if err := f.store.DeleteFeedItem(ctx, id); err != nil {
		f.log.Warn(ctx, "failed to delete feed item", "id", id, "error", err)
	}
}

// Clear removes all items.
func (f *Feed) Clear(ctx context.Context) {
	f.mu.Lock()
	f.items = nil
	f.mu.Unlock()

	if err := f.store.ClearFeed(ctx); err != nil {
		f.log.Warn(ctx, "failed to clear feed", "error", err)
	}
}

// Reset drops the in-memory mirror only, e.g. on sign-out. Backend copies
// persist.
func (f *Feed) Reset() {
	f.mu.Lock()
	f.items = nil
	f.mu.Unlock()
}
