// Package reminder derives concrete local-notification requests from
// itinerary data, keeps the platform's pending set consistent with the
// current itinerary, and mirrors scheduled/delivered reminders into the
// persisted notification feed.
package reminder

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/client/models"
	"github.com/dmitrijs2005/tripkeeper/internal/notify"
)

// Trip milestones, relative to the trip start.
var tripMilestones = []struct {
	suffix string
	before time.Duration
	title  string
}{
	{"24h", 24 * time.Hour, "%s starts in 24 hours"},
	{"1h", time.Hour, "%s starts in 1 hour"},
	{"start", 0, "%s starts now"},
}

// TripMilestoneID returns the deterministic reminder id for a trip
// milestone. Re-scheduling the same trip reuses these ids, so registration
// replaces rather than duplicates.
func TripMilestoneID(tripID, suffix string) string {
	return fmt.Sprintf("trip-%s-%s", tripID, suffix)
}

// TripMilestoneIDs returns all milestone ids for a trip, whether pending or
// not. Used for cancellation on trip deletion.
func TripMilestoneIDs(tripID string) []string {
	ids := make([]string, 0, len(tripMilestones))
	for _, m := range tripMilestones {
		ids = append(ids, TripMilestoneID(tripID, m.suffix))
	}
	return ids
}

// LocationReminderID returns the deterministic reminder id for a location.
func LocationReminderID(locationID string) string {
	return fmt.Sprintf("location-%s-start", locationID)
}

// ComputeTripMilestones produces up to three reminder requests for a trip:
// 24 hours before, 1 hour before, and at the start. A milestone whose fire
// time is not strictly in the future at now is omitted.
func ComputeTripMilestones(trip *models.Trip, now time.Time) []notify.Request {
	var reqs []notify.Request
	for _, m := range tripMilestones {
		fireAt := trip.StartDate.Add(-m.before)
		if !fireAt.After(now) {
			continue
		}
		reqs = append(reqs, notify.Request{
			ID:     TripMilestoneID(trip.ID, m.suffix),
			FireAt: fireAt,
			Title:  fmt.Sprintf(m.title, trip.Name),
			Body:   fmt.Sprintf("Destination: %s", trip.Destination),
		})
	}
	return reqs
}

// ComputeLocationReminder produces the reminder request for a location, if
// any. A nil offset is an explicit opt-out. An offset of 0 fires exactly at
// the location's start time. A fire time at or before now yields no request.
func ComputeLocationReminder(loc *models.Location, tripName string, now time.Time) (notify.Request, bool) {
	if loc.ReminderOffset == nil {
		return notify.Request{}, false
	}
	fireAt := loc.StartDate.Add(-time.Duration(*loc.ReminderOffset) * time.Second)
	if !fireAt.After(now) {
		return notify.Request{}, false
	}
	return notify.Request{
		ID:     LocationReminderID(loc.ID),
		FireAt: fireAt,
		Title:  fmt.Sprintf("Upcoming: %s", loc.Name),
		Body:   fmt.Sprintf("Part of trip %q", tripName),
	}, true
}
