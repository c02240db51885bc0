// Package services contains application services for the TripKeeper client.
// This file defines the trip service: itinerary CRUD against the backend
// document store, trip sharing, and reminder reconciliation after each save.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/tripkeeper/internal/client/client"
	"github.com/dmitrijs2005/tripkeeper/internal/client/models"
	"github.com/dmitrijs2005/tripkeeper/internal/client/reminder"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
)

// TripService defines itinerary operations for the CLI.
//
// Contract:
//   - List/Get/Save/Delete manage trip documents.
//   - SaveLocation/DeleteLocation and SaveFlight/DeleteFlight manage
//     sub-documents of a trip.
//   - Share grants a collaborator access to a trip by email.
//
// Saving an itinerary entry never fails on reminder problems: persistence
// completes first, then the pending reminder set is reconciled best-effort.
//
// All methods must honor context cancellation/timeouts.
type TripService interface {
	List(ctx context.Context) ([]*models.Trip, error)
	Get(ctx context.Context, tripID string) (*models.Trip, error)
	Save(ctx context.Context, trip *models.Trip) error
	Delete(ctx context.Context, tripID string) error

	Locations(ctx context.Context, tripID string) ([]*models.Location, error)
	SaveLocation(ctx context.Context, trip *models.Trip, loc *models.Location) error
	DeleteLocation(ctx context.Context, tripID, locationID string) error

	Flights(ctx context.Context, tripID string) ([]*models.Flight, error)
	SaveFlight(ctx context.Context, flight *models.Flight) error
	DeleteFlight(ctx context.Context, tripID, flightID string) error

	Share(ctx context.Context, tripID, email string) error
}

type tripService struct {
	client    client.Client
	reminders *reminder.Scheduler
	log       logging.Logger
}

// NewTripService constructs a TripService bound to the given API client and
// reminder scheduler.
func NewTripService(c client.Client, reminders *reminder.Scheduler, log logging.Logger) TripService {
	return &tripService{client: c, reminders: reminders, log: log.With("component", "trips")}
}

func (s *tripService) List(ctx context.Context) ([]*models.Trip, error) {
	docs, err := s.client.ListDocuments(ctx, "trips/")
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	var trips []*models.Trip
	for _, doc := range docs {
		// The prefix also matches location and flight sub-documents.
		if strings.Count(doc.Path, "/") != 1 {
			continue
		}
		trips = append(trips, models.DecodeTrip(doc.Fields))
	}
	return trips, nil
}

func (s *tripService) Get(ctx context.Context, tripID string) (*models.Trip, error) {
	doc, err := s.client.GetDocument(ctx, models.TripDocPath(tripID))
	if err != nil {
		return nil, err
	}
	return models.DecodeTrip(doc.Fields), nil
}

// Save persists a trip and reconciles its milestone reminders. A trip
// without an ID is new and gets one assigned.
func (s *tripService) Save(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}
	if _, err := s.client.SetDocument(ctx, models.TripDocPath(trip.ID), trip.Fields(), false); err != nil {
		return fmt.Errorf("failed to save trip: %w", err)
	}

	if err := s.reminders.ReconcileTrip(ctx, trip); err != nil {
		s.log.Warn(ctx, "trip saved but reminders not reconciled", "trip", trip.ID, "error", err)
	}
	return nil
}

// Delete removes the trip and all of its sub-documents, then cancels every
// reminder registered for it.
func (s *tripService) Delete(ctx context.Context, tripID string) error {
	subDocs, err := s.client.ListDocuments(ctx, models.TripDocPath(tripID)+"/")
	if err != nil {
		return fmt.Errorf("failed to list trip sub-documents: %w", err)
	}
	for _, doc := range subDocs {
		if err := s.client.DeleteDocument(ctx, doc.Path); err != nil {
			return fmt.Errorf("failed to delete %s: %w", doc.Path, err)
		}
		if loc := locationFromDoc(doc.Path, doc.Fields); loc != nil {
			if err := s.reminders.Cancel(ctx, reminder.LocationReminderID(loc.ID)); err != nil {
				s.log.Warn(ctx, "failed to cancel location reminder", "location", loc.ID, "error", err)
			}
		}
	}

	if err := s.client.DeleteDocument(ctx, models.TripDocPath(tripID)); err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}

	if err := s.reminders.CancelTrip(ctx, tripID); err != nil {
		s.log.Warn(ctx, "trip deleted but reminders not cancelled", "trip", tripID, "error", err)
	}
	return nil
}

func locationFromDoc(path string, fields map[string]any) *models.Location {
	if !strings.Contains(path, "/locations/") {
		return nil
	}
	return models.DecodeLocation(fields)
}

func (s *tripService) Locations(ctx context.Context, tripID string) ([]*models.Location, error) {
	docs, err := s.client.ListDocuments(ctx, models.TripDocPath(tripID)+"/locations/")
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	locs := make([]*models.Location, 0, len(docs))
	for _, doc := range docs {
		locs = append(locs, models.DecodeLocation(doc.Fields))
	}
	return locs, nil
}

// SaveLocation persists a location and reconciles its reminder against the
// previously stored state.
func (s *tripService) SaveLocation(ctx context.Context, trip *models.Trip, loc *models.Location) error {
	if loc.ID == "" {
		loc.ID = uuid.NewString()
	}
	loc.TripID = trip.ID

	var oldLoc *models.Location
	if doc, err := s.client.GetDocument(ctx, models.LocationDocPath(trip.ID, loc.ID)); err == nil {
		oldLoc = models.DecodeLocation(doc.Fields)
	}

	if _, err := s.client.SetDocument(ctx, models.LocationDocPath(trip.ID, loc.ID), loc.Fields(), false); err != nil {
		return fmt.Errorf("failed to save location: %w", err)
	}

	if err := s.reminders.ReconcileLocation(ctx, oldLoc, loc, trip.Name); err != nil {
		s.log.Warn(ctx, "location saved but reminder not reconciled", "location", loc.ID, "error", err)
	}
	return nil
}

func (s *tripService) DeleteLocation(ctx context.Context, tripID, locationID string) error {
	if err := s.client.DeleteDocument(ctx, models.LocationDocPath(tripID, locationID)); err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if err := s.reminders.Cancel(ctx, reminder.LocationReminderID(locationID)); err != nil {
		s.log.Warn(ctx, "location deleted but reminder not cancelled", "location", locationID, "error", err)
	}
	return nil
}

func (s *tripService) Flights(ctx context.Context, tripID string) ([]*models.Flight, error) {
	docs, err := s.client.ListDocuments(ctx, models.TripDocPath(tripID)+"/flights/")
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}
	flights := make([]*models.Flight, 0, len(docs))
	for _, doc := range docs {
		flights = append(flights, models.DecodeFlight(doc.Fields))
	}
	return flights, nil
}

func (s *tripService) SaveFlight(ctx context.Context, flight *models.Flight) error {
	if flight.ID == "" {
		flight.ID = uuid.NewString()
	}
	if _, err := s.client.SetDocument(ctx, models.FlightDocPath(flight.TripID, flight.ID), flight.Fields(), false); err != nil {
		return fmt.Errorf("failed to save flight: %w", err)
	}
	return nil
}

func (s *tripService) DeleteFlight(ctx context.Context, tripID, flightID string) error {
	if err := s.client.DeleteDocument(ctx, models.FlightDocPath(tripID, flightID)); err != nil {
		return fmt.Errorf("failed to delete flight: %w", err)
	}
	return nil
}

// Share resolves the collaborator's account by email and adds their uid to
// the trip's collaborator list. Sharing twice is a no-op.
func (s *tripService) Share(ctx context.Context, tripID, email string) error {
	uid, err := s.client.ResolveCollaborator(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to resolve collaborator: %w", err)
	}

	trip, err := s.Get(ctx, tripID)
	if err != nil {
		return err
	}
	for _, c := range trip.Collaborators {
		if c == uid {
			return nil
		}
	}
	trip.Collaborators = append(trip.Collaborators, uid)

	collaborators := make([]any, 0, len(trip.Collaborators))
	for _, c := range trip.Collaborators {
		collaborators = append(collaborators, c)
	}
	fields := map[string]any{"collaborators": collaborators}
	if _, err := s.client.SetDocument(ctx, models.TripDocPath(tripID), fields, true); err != nil {
		return fmt.Errorf("failed to share trip: %w", err)
	}
	return nil
}
