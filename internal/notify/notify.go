// Package notify defines the local-notification scheduler contract and an
// in-process timer-based implementation. Registration is replace-by-id: at
// most one pending reminder exists per id, and re-registering an id
// overwrites the previous request.
//
// Fire times are absolute instants. The original mobile platform anchored
// reminders to local wall-clock calendar components, which silently shifts
// them under timezone changes; this implementation deliberately anchors to
// time.Time instead.
package notify

import (
	"context"
	"errors"
	"time"
)

// ErrPastFireTime is returned when a request's fire time is not in the
// future at registration time. Such requests must never reach the pending
// set.
var ErrPastFireTime = errors.New("fire time already passed")

// Request is a reminder registration.
type Request struct {
	ID     string
	FireAt time.Time
	Title  string
	Body   string
}

// Delivery is reported when a pending reminder fires.
type Delivery struct {
	ID          string
	Title       string
	Body        string
	DeliveredAt time.Time
}

// LocalScheduler is the platform notification contract.
//
//   - Schedule registers a request keyed by ID, replacing any pending
//     request with the same ID. Past fire times yield ErrPastFireTime.
//   - Cancel deregisters by ID and is a no-op for unknown IDs.
//   - OnDelivered registers the single delivery callback. Deliveries for
//     cancelled IDs are never reported.
type LocalScheduler interface {
	Schedule(ctx context.Context, req Request) error
	Cancel(ctx context.Context, id string) error
	OnDelivered(fn func(Delivery))
}
