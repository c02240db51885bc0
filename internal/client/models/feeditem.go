package models

import (
	"sort"
	"time"
)

// FeedItem is a persisted, user-visible record of a reminder having been
// scheduled or delivered.
type FeedItem struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
	Read       bool      `json:"read"`
}

// SortFeedItemsDesc orders items by event time, newest first. Ties break on
// ID so the order is stable.
func SortFeedItemsDesc(items []FeedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].OccurredAt.Equal(items[j].OccurredAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].OccurredAt.After(items[j].OccurredAt)
	})
}
