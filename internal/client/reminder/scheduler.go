package reminder

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/tripkeeper/internal/client/models"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/notify"
)

// Scheduler keeps the platform's pending-reminder set consistent with the
// current itinerary and reflects schedulings/deliveries into the feed.
//
// Scheduling is strictly best-effort-after-save: itinerary persistence never
// depends on it, and registration failures are logged, not retried — the
// user re-triggers by re-saving the entry.
type Scheduler struct {
	platform notify.LocalScheduler
	feed     *Feed
	log      logging.Logger

	// feedOnSchedule mirrors successful registrations into the feed in
	// addition to deliveries. The original client appended on both events;
	// here it is an explicit choice, off by default.
	feedOnSchedule bool

	// now is a seam for tests.
	now func() time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithFeedOnSchedule makes successful registrations append a feed item at
// scheduling time, in addition to the delivered entry.
func WithFeedOnSchedule() Option {
	return func(s *Scheduler) { s.feedOnSchedule = true }
}

func withNow(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// NewScheduler wires the scheduler to the platform collaborator and the
// feed, and registers for delivery events.
func NewScheduler(platform notify.LocalScheduler, feed *Feed, log logging.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		platform: platform,
		feed:     feed,
		log:      log.With("component", "reminder"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	platform.OnDelivered(s.HandleDelivered)
	return s
}

// Schedule registers a single request with the platform. Replace-by-id: the
// platform keeps at most one pending reminder per id. On success, a
// "scheduled" feed item is appended when feedOnSchedule is set.
func (s *Scheduler) Schedule(ctx context.Context, req notify.Request) error {
	if err := s.platform.Schedule(ctx, req); err != nil {
		if errors.Is(err, notify.ErrPastFireTime) {
			s.log.Debug(ctx, "skipping past-dated reminder", "id", req.ID, "fire_at", req.FireAt)
			return nil
		}
		s.log.Warn(ctx, "reminder registration failed", "id", req.ID, "error", err)
		return err
	}

	s.log.Debug(ctx, "reminder scheduled", "id", req.ID, "fire_at", req.FireAt)
	if s.feedOnSchedule {
		s.feed.Append(ctx, models.FeedItem{
			ID:         uuid.NewString(),
			Title:      "Reminder scheduled",
			Message:    req.Title,
			OccurredAt: s.now(),
		})
	}
	return nil
}

// Cancel deregisters a pending reminder. Idempotent.
func (s *Scheduler) Cancel(ctx context.Context, id string) error {
	return s.platform.Cancel(ctx, id)
}

// ReconcileTrip re-registers all future milestones for a trip. Existing
// milestone registrations with the same ids are replaced, and milestones
// that have slipped into the past are cancelled.
func (s *Scheduler) ReconcileTrip(ctx context.Context, trip *models.Trip) error {
	reqs := ComputeTripMilestones(trip, s.now())

	scheduled := make(map[string]bool, len(reqs))
	var firstErr error
	for _, req := range reqs {
		if err := s.Schedule(ctx, req); err != nil && firstErr == nil {
			firstErr = err
		}
		scheduled[req.ID] = true
	}

	for _, id := range TripMilestoneIDs(trip.ID) {
		if !scheduled[id] {
			if err := s.Cancel(ctx, id); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// CancelTrip deregisters all milestone reminders for a trip.
func (s *Scheduler) CancelTrip(ctx context.Context, tripID string) error {
	var firstErr error
	for _, id := range TripMilestoneIDs(tripID) {
		if err := s.Cancel(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ReconcileLocation aligns the pending set with a location edit or delete.
// On edit (newLoc non-nil) the old registration is cancelled if its trigger
// changed or vanished, then the new one is scheduled if applicable. On
// delete (newLoc nil) the registration is cancelled unconditionally.
func (s *Scheduler) ReconcileLocation(ctx context.Context, oldLoc, newLoc *models.Location, tripName string) error {
	if newLoc == nil {
		if oldLoc == nil {
			return nil
		}
		return s.Cancel(ctx, LocationReminderID(oldLoc.ID))
	}

	req, ok := ComputeLocationReminder(newLoc, tripName, s.now())
	if !ok {
		if newLoc.ReminderOffset == nil {
			s.log.Debug(ctx, "location has no reminder offset", "location", newLoc.ID)
		} else {
			s.log.Debug(ctx, "location reminder already in the past", "location", newLoc.ID)
		}
		// Old registration is stale either way.
		return s.Cancel(ctx, LocationReminderID(newLoc.ID))
	}
	return s.Schedule(ctx, req)
}

// HandleDelivered routes platform delivery events into the feed. Foreground
// and background deliveries both arrive here, so the feed stays complete
// regardless of app lifecycle state.
func (s *Scheduler) HandleDelivered(d notify.Delivery) {
	ctx := context.Background()
	s.feed.Append(ctx, models.FeedItem{
		ID:         uuid.NewString(),
		Title:      d.Title,
		Message:    d.Body,
		OccurredAt: d.DeliveredAt,
	})
	s.log.Debug(ctx, "reminder delivered", "id", d.ID)
}
