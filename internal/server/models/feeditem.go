package models

import "time"

// FeedItem is one persisted notification-feed entry.
type FeedItem struct {
	ID         string
	UserUID    string
	Title      string
	Message    string
	OccurredAt time.Time
	Read       bool
}
