package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/server/models"
)

func newFeedService(t *testing.T, rm *fakeRepoManager) *FeedService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })
	return NewFeedService(db, rm)
}

func TestFeedAppend_AssignsIDAndOwner(t *testing.T) {
	rm := newFakeRepoManager()
	s := newFeedService(t, rm)

	item, err := s.Append(context.Background(), "u-1", &models.FeedItem{Title: "Trip soon", Message: "Rome in 24h"})
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if item.ID == "" || item.UserUID != "u-1" || item.OccurredAt.IsZero() {
		t.Fatalf("unexpected item: %+v", item)
	}
	if len(rm.f.items) != 1 {
		t.Fatalf("item not persisted: %v", rm.f.items)
	}
}

func TestFeedAppend_KeepsProvidedID(t *testing.T) {
	rm := newFakeRepoManager()
	s := newFeedService(t, rm)

	now := time.Now().UTC()
	item, err := s.Append(context.Background(), "u-1", &models.FeedItem{ID: "trip-t1-24h", Title: "Trip soon", OccurredAt: now})
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if item.ID != "trip-t1-24h" || !item.OccurredAt.Equal(now) {
		t.Fatalf("unexpected item: %+v", item)
	}
}

func TestFeedMarkReadAndClear_ScopedToUser(t *testing.T) {
	rm := newFakeRepoManager()
	rm.f.items = []*models.FeedItem{
		{ID: "f-1", UserUID: "u-1"},
		{ID: "f-2", UserUID: "u-2"},
	}
	s := newFeedService(t, rm)

	if err := s.MarkRead(context.Background(), "u-1", "f-1"); err != nil {
		t.Fatalf("MarkRead error: %v", err)
	}
	if !rm.f.items[0].Read || rm.f.items[1].Read {
		t.Fatalf("unexpected read flags: %+v", rm.f.items)
	}

	if err := s.Clear(context.Background(), "u-1"); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if len(rm.f.items) != 1 || rm.f.items[0].UserUID != "u-2" {
		t.Fatalf("unexpected items after clear: %+v", rm.f.items)
	}
}
