package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/server/models"
	"github.com/dmitrijs2005/tripkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// FeedService manages the per-user notification feed.
type FeedService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFeedService(db *sql.DB, m repomanager.RepositoryManager) *FeedService {
	return &FeedService{db: db, repomanager: m}
}

// List returns uid's feed, newest first.
func (s *FeedService) List(ctx context.Context, uid string) ([]*models.FeedItem, error) {
	return s.repomanager.FeedItems(s.db).List(ctx, uid)
}

// Append stores a new feed item for uid, assigning an ID when the caller did
// not provide one, and returns the stored item.
func (s *FeedService) Append(ctx context.Context, uid string, item *models.FeedItem) (*models.FeedItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.OccurredAt.IsZero() {
		item.OccurredAt = time.Now().UTC()
	}
	item.UserUID = uid

	if err := s.repomanager.FeedItems(s.db).Create(ctx, item); err != nil {
		return nil, fmt.Errorf("error appending feed item: %v", err)
	}
	return item, nil
}

// MarkRead marks one of uid's feed items as read.
func (s *FeedService) MarkRead(ctx context.Context, uid string, id string) error {
	return s.repomanager.FeedItems(s.db).MarkRead(ctx, uid, id)
}

// Delete removes one of uid's feed items.
func (s *FeedService) Delete(ctx context.Context, uid string, id string) error {
	return s.repomanager.FeedItems(s.db).Delete(ctx, uid, id)
}

// Clear removes uid's entire feed.
func (s *FeedService) Clear(ctx context.Context, uid string) error {
	return s.repomanager.FeedItems(s.db).Clear(ctx, uid)
}
