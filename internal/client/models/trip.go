// Package models defines the client-side itinerary types and their mapping
// to document-store records. Documents travel as loosely-typed field maps;
// decoding is relaxed — every field is read with an explicit default rather
// than failing the whole record.
package models

import "time"

// Trip is a planned journey owned by one user and optionally shared with
// collaborators.
type Trip struct {
	ID            string
	OwnerUID      string
	Name          string
	Destination   string
	StartDate     time.Time
	EndDate       time.Time
	Collaborators []string
	Attachments   []Attachment
}

// Location is an itinerary entry within a trip.
//
// ReminderOffset is the number of seconds before StartDate at which a
// reminder should fire: 0 means "at start time", nil means no reminder.
type Location struct {
	ID             string
	TripID         string
	Name           string
	Address        string
	StartDate      time.Time
	ReminderOffset *int64
}

// Flight is a flight segment attached to a trip.
type Flight struct {
	ID      string
	TripID  string
	Number  string
	From    string
	To      string
	Departs time.Time
	Arrives time.Time
}

// Attachment is metadata for an uploaded trip document (ticket, boarding
// pass). File bytes live in object storage under StorageKey.
type Attachment struct {
	ID          string
	Name        string
	StorageKey  string
	ContentType string
}

// TripDocPath returns the document-store path for a trip.
func TripDocPath(tripID string) string { return "trips/" + tripID }

// LocationDocPath returns the document-store path for a location.
func LocationDocPath(tripID, locationID string) string {
	return "trips/" + tripID + "/locations/" + locationID
}

// FlightDocPath returns the document-store path for a flight.
func FlightDocPath(tripID, flightID string) string {
	return "trips/" + tripID + "/flights/" + flightID
}

// UserDocPath returns the document-store path of the per-user record that
// mirrors profile state such as the email-verified flag.
func UserDocPath(uid string) string { return "users/" + uid }

func (t *Trip) Fields() map[string]any {
	collaborators := make([]any, 0, len(t.Collaborators))
	for _, c := range t.Collaborators {
		collaborators = append(collaborators, c)
	}
	attachments := make([]any, 0, len(t.Attachments))
	for _, a := range t.Attachments {
		attachments = append(attachments, map[string]any{
			"id":           a.ID,
			"name":         a.Name,
			"storage_key":  a.StorageKey,
			"content_type": a.ContentType,
		})
	}
	return map[string]any{
		"id":            t.ID,
		"owner_uid":     t.OwnerUID,
		"name":          t.Name,
		"destination":   t.Destination,
		"start_date":    t.StartDate.UTC().Format(time.RFC3339),
		"end_date":      t.EndDate.UTC().Format(time.RFC3339),
		"collaborators": collaborators,
		"attachments":   attachments,
	}
}

func (l *Location) Fields() map[string]any {
	fields := map[string]any{
		"id":         l.ID,
		"trip_id":    l.TripID,
		"name":       l.Name,
		"address":    l.Address,
		"start_date": l.StartDate.UTC().Format(time.RFC3339),
	}
	if l.ReminderOffset != nil {
		fields["reminder_offset"] = float64(*l.ReminderOffset)
	}
	return fields
}

func (f *Flight) Fields() map[string]any {
	return map[string]any{
		"id":      f.ID,
		"trip_id": f.TripID,
		"number":  f.Number,
		"from":    f.From,
		"to":      f.To,
		"departs": f.Departs.UTC().Format(time.RFC3339),
		"arrives": f.Arrives.UTC().Format(time.RFC3339),
	}
}
