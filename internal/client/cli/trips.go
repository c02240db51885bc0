package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/client/models"
)

const dateTimeLayout = "2006-01-02 15:04"

func (a *App) getDateTime(prompt string) (time.Time, error) {
	s, err := getSimpleText(a.reader, prompt+" (YYYY-MM-DD HH:MM, local time)", os.Stdout)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(dateTimeLayout, s, time.Local)
	if err != nil {
		fmt.Println("Could not parse date:", err)
		return time.Time{}, err
	}
	return t, nil
}

// Trips prints all trips visible to the user, with their locations and
// flights.
func (a *App) Trips(ctx context.Context) error {
	trips, err := a.trips.List(ctx)
	if err != nil {
		log.Printf("Could not list trips: %s", err.Error())
		return err
	}
	if len(trips) == 0 {
		fmt.Println("No trips yet. Use 'addtrip' to plan one.")
		return nil
	}

	for _, trip := range trips {
		fmt.Printf("%s  %s → %s  [%s .. %s]\n", trip.ID, trip.Name, trip.Destination,
			trip.StartDate.Local().Format(dateTimeLayout), trip.EndDate.Local().Format(dateTimeLayout))

		locs, err := a.trips.Locations(ctx, trip.ID)
		if err == nil {
			for _, loc := range locs {
				reminderNote := "no reminder"
				if loc.ReminderOffset != nil {
					reminderNote = fmt.Sprintf("reminder %ds before", *loc.ReminderOffset)
				}
				fmt.Printf("  loc %s  %s at %s (%s)\n", loc.ID, loc.Name,
					loc.StartDate.Local().Format(dateTimeLayout), reminderNote)
			}
		}

		flights, err := a.trips.Flights(ctx, trip.ID)
		if err == nil {
			for _, f := range flights {
				fmt.Printf("  flight %s  %s %s→%s departs %s\n", f.ID, f.Number, f.From, f.To,
					f.Departs.Local().Format(dateTimeLayout))
			}
		}

		for _, att := range trip.Attachments {
			fmt.Printf("  file %s  %s (%s)\n", att.ID, att.Name, att.StorageKey)
		}
	}
	return nil
}

// AddTrip prompts for trip details and saves a new trip. Milestone
// reminders are scheduled as part of the save.
func (a *App) AddTrip(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Trip name", os.Stdout)
	if err != nil {
		return err
	}
	destination, err := getSimpleText(a.reader, "Destination", os.Stdout)
	if err != nil {
		return err
	}
	start, err := a.getDateTime("Start date")
	if err != nil {
		return err
	}
	end, err := a.getDateTime("End date")
	if err != nil {
		return err
	}

	trip := &models.Trip{
		OwnerUID:    a.controller.Snapshot().UID,
		Name:        name,
		Destination: destination,
		StartDate:   start,
		EndDate:     end,
	}
	if err := a.trips.Save(ctx, trip); err != nil {
		log.Printf("Could not save trip: %s", err.Error())
		return err
	}
	fmt.Println("Trip saved:", trip.ID)
	return nil
}

func (a *App) DeleteTrip(ctx context.Context) error {
	tripID, err := getSimpleText(a.reader, "Trip id", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.trips.Delete(ctx, tripID); err != nil {
		log.Printf("Could not delete trip: %s", err.Error())
		return err
	}
	fmt.Println("Trip deleted.")
	return nil
}

// ShareTrip grants another account access to a trip by email.
func (a *App) ShareTrip(ctx context.Context) error {
	tripID, err := getSimpleText(a.reader, "Trip id", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Collaborator email", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.trips.Share(ctx, tripID, email); err != nil {
		log.Printf("Could not share trip: %s", err.Error())
		return err
	}
	fmt.Println("Trip shared.")
	return nil
}

// AddLocation prompts for an itinerary entry. An empty reminder offset
// means no reminder; 0 means "remind at start time".
func (a *App) AddLocation(ctx context.Context) error {
	tripID, err := getSimpleText(a.reader, "Trip id", os.Stdout)
	if err != nil {
		return err
	}
	trip, err := a.trips.Get(ctx, tripID)
	if err != nil {
		log.Printf("Could not load trip: %s", err.Error())
		return err
	}

	name, err := getSimpleText(a.reader, "Location name", os.Stdout)
	if err != nil {
		return err
	}
	address, err := getSimpleText(a.reader, "Address (optional)", os.Stdout)
	if err != nil {
		return err
	}
	start, err := a.getDateTime("Start date")
	if err != nil {
		return err
	}

	loc := &models.Location{Name: name, Address: address, StartDate: start}

	offsetStr, err := getSimpleText(a.reader, "Reminder offset in seconds before start (empty for none)", os.Stdout)
	if err != nil {
		return err
	}
	if offsetStr != "" {
		offset, err := strconv.ParseInt(offsetStr, 10, 64)
		if err != nil || offset < 0 {
			fmt.Println("Offset must be a non-negative number of seconds.")
			return err
		}
		loc.ReminderOffset = &offset
	}

	if err := a.trips.SaveLocation(ctx, trip, loc); err != nil {
		log.Printf("Could not save location: %s", err.Error())
		return err
	}
	fmt.Println("Location saved:", loc.ID)
	return nil
}

func (a *App) DeleteLocation(ctx context.Context) error {
	tripID, err := getSimpleText(a.reader, "Trip id", os.Stdout)
	if err != nil {
		return err
	}
	locationID, err := getSimpleText(a.reader, "Location id", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.trips.DeleteLocation(ctx, tripID, locationID); err != nil {
		log.Printf("Could not delete location: %s", err.Error())
		return err
	}
	fmt.Println("Location deleted.")
	return nil
}

func (a *App) AddFlight(ctx context.Context) error {
	tripID, err := getSimpleText(a.reader, "Trip id", os.Stdout)
	if err != nil {
		return err
	}
	number, err := getSimpleText(a.reader, "Flight number", os.Stdout)
	if err != nil {
		return err
	}
	from, err := getSimpleText(a.reader, "From (airport code)", os.Stdout)
	if err != nil {
		return err
	}
	to, err := getSimpleText(a.reader, "To (airport code)", os.Stdout)
	if err != nil {
		return err
	}
	departs, err := a.getDateTime("Departure")
	if err != nil {
		return err
	}
	arrives, err := a.getDateTime("Arrival")
	if err != nil {
		return err
	}

	flight := &models.Flight{TripID: tripID, Number: number, From: from, To: to,
		Departs: departs, Arrives: arrives}
	if err := a.trips.SaveFlight(ctx, flight); err != nil {
		log.Printf("Could not save flight: %s", err.Error())
		return err
	}
	fmt.Println("Flight saved:", flight.ID)
	return nil
}
