package models

import "time"

// Relaxed field readers. A missing or mistyped field yields the zero value
// instead of an error, mirroring the strict schema field-by-field.

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func timeField(fields map[string]any, key string) time.Time {
	s, ok := fields[key].(string)
	if !ok {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// secondsField reads an optional numeric field expressed in seconds.
// JSON numbers arrive as float64; absent or mistyped values yield nil.
func secondsField(fields map[string]any, key string) *int64 {
	f, ok := fields[key].(float64)
	if !ok {
		return nil
	}
	v := int64(f)
	return &v
}

func stringSliceField(fields map[string]any, key string) []string {
	raw, ok := fields[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// DecodeTrip builds a Trip from a document field map.
func DecodeTrip(fields map[string]any) *Trip {
	t := &Trip{
		ID:            stringField(fields, "id"),
		OwnerUID:      stringField(fields, "owner_uid"),
		Name:          stringField(fields, "name"),
		Destination:   stringField(fields, "destination"),
		StartDate:     timeField(fields, "start_date"),
		EndDate:       timeField(fields, "end_date"),
		Collaborators: stringSliceField(fields, "collaborators"),
	}
	if raw, ok := fields["attachments"].([]any); ok {
		for _, v := range raw {
			m, ok := v.(map[string]any)
			if !ok {
				continue
			}
			t.Attachments = append(t.Attachments, Attachment{
				ID:          stringField(m, "id"),
				Name:        stringField(m, "name"),
				StorageKey:  stringField(m, "storage_key"),
				ContentType: stringField(m, "content_type"),
			})
		}
	}
	return t
}

// DecodeLocation builds a Location from a document field map.
func DecodeLocation(fields map[string]any) *Location {
	return &Location{
		ID:             stringField(fields, "id"),
		TripID:         stringField(fields, "trip_id"),
		Name:           stringField(fields, "name"),
		Address:        stringField(fields, "address"),
		StartDate:      timeField(fields, "start_date"),
		ReminderOffset: secondsField(fields, "reminder_offset"),
	}
}

// DecodeFlight builds a Flight from a document field map.
func DecodeFlight(fields map[string]any) *Flight {
	return &Flight{
		ID:      stringField(fields, "id"),
		TripID:  stringField(fields, "trip_id"),
		Number:  stringField(fields, "number"),
		From:    stringField(fields, "from"),
		To:      stringField(fields, "to"),
		Departs: timeField(fields, "departs"),
		Arrives: timeField(fields, "arrives"),
	}
}
