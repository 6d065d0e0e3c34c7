package models

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

type EventsRepo interface {
	CreateEvent(ctx context.Context, e *Event, accessToken string) (*Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*Event, error)
	ListEvents(ctx context.Context, category string, offset, limit int) ([]*Event, int, error)
	ListOrganizerEvents(ctx context.Context, organizerID uuid.UUID) ([]*Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, fields map[string]interface{}, accessToken string) (*Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID, accessToken string) error

	CreateRegistration(ctx context.Context, r *EventBooking, accessToken string) (*EventBooking, error)
	GetRegistration(ctx context.Context, id uuid.UUID, accessToken string) (*EventBooking, error)
	ListUserRegistrations(ctx context.Context, userID uuid.UUID, accessToken string) ([]*EventBooking, error)
	ListEventRegistrations(ctx context.Context, eventIDs []uuid.UUID, accessToken string) ([]*EventBooking, error)
	DeleteRegistration(ctx context.Context, id uuid.UUID, accessToken string) error
}

const registrationColumns = "*,events(title,image,date,location)"

var byDate = &postgrest.OrderOpts{Ascending: true}

func (su *SupabaseRepo) CreateEvent(ctx context.Context, e *Event, accessToken string) (*Event, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}
	row := map[string]interface{}{
		"id":           e.ID,
		"organizer_id": e.OrganizerID,
		"title":        e.Title,
		"date":         e.Date.String(),
		"category":     e.Category,
		"price":        e.Price,
		"location":     e.Location,
		"image":        e.Image,
		"description":  e.Description,
		"lat":          e.Lat,
		"lng":          e.Lng,
	}
	data, _, err := client.From(EventsTable).
		Insert(row, false, "", "representation", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %v", err)
	}
	return firstRow[Event](data)
}

func (su *SupabaseRepo) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	data, _, err := su.supabaseClient.From(EventsTable).
		Select("*", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %v", err)
	}
	return firstRow[Event](data)
}

// ListEvents returns events soonest first. An empty category means all.
func (su *SupabaseRepo) ListEvents(ctx context.Context, category string, offset, limit int) ([]*Event, int, error) {
	q := su.supabaseClient.From(EventsTable).Select("*", "exact", false)
	if category != "" {
		q = q.Eq("category", category)
	}
	q = q.Order("date", byDate)
	if limit > 0 {
		q = q.Range(offset, offset+limit-1, "")
	}
	data, count, err := q.Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %v", err)
	}
	events, err := decodeRows[Event](data)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal events: %v", err)
	}
	return events, int(count), nil
}

func (su *SupabaseRepo) ListOrganizerEvents(ctx context.Context, organizerID uuid.UUID) ([]*Event, error) {
	data, _, err := su.supabaseClient.From(EventsTable).
		Select("*", "", false).
		Eq("organizer_id", organizerID.String()).
		Order("date", byDate).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list organizer events: %v", err)
	}
	return decodeRows[Event](data)
}

func (su *SupabaseRepo) UpdateEvent(ctx context.Context, id uuid.UUID, fields map[string]interface{}, accessToken string) (*Event, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}
	data, _, err := client.From(EventsTable).
		Update(fields, "representation", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %v", err)
	}
	return firstRow[Event](data)
}

func (su *SupabaseRepo) DeleteEvent(ctx context.Context, id uuid.UUID, accessToken string) error {
	client, err := su.client(accessToken)
	if err != nil {
		return err
	}
	data, _, err := client.From(EventsTable).
		Delete("representation", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete event: %v", err)
	}
	_, err = firstRow[Event](data)
	return err
}

func (su *SupabaseRepo) CreateRegistration(ctx context.Context, r *EventBooking, accessToken string) (*EventBooking, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}
	row := map[string]interface{}{
		"id":       r.ID,
		"event_id": r.EventID,
		"email":    r.Email,
	}
	if r.UserID != nil {
		row["user_id"] = *r.UserID
	}
	data, _, err := client.From(EventBookingsTable).
		Insert(row, false, "", "representation", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to insert registration: %v", err)
	}
	return firstRow[EventBooking](data)
}

func (su *SupabaseRepo) GetRegistration(ctx context.Context, id uuid.UUID, accessToken string) (*EventBooking, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}
	data, _, err := client.From(EventBookingsTable).
		Select("*", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %v", err)
	}
	return firstRow[EventBooking](data)
}

func (su *SupabaseRepo) ListUserRegistrations(ctx context.Context, userID uuid.UUID, accessToken string) ([]*EventBooking, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}
	data, _, err := client.From(EventBookingsTable).
		Select(registrationColumns, "", false).
		Eq("user_id", userID.String()).
		Order("created_at", newestFirst).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %v", err)
	}
	return decodeRows[EventBooking](data)
}

// ListEventRegistrations returns the tickets of the given events. A nil slice
// returns every registration (admin view).
func (su *SupabaseRepo) ListEventRegistrations(ctx context.Context, eventIDs []uuid.UUID, accessToken string) ([]*EventBooking, error) {
	if eventIDs != nil && len(eventIDs) == 0 {
		return []*EventBooking{}, nil
	}
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}
	q := client.From(EventBookingsTable).Select(registrationColumns, "", false)
	if eventIDs != nil {
		ids := make([]string, 0, len(eventIDs))
		for _, id := range eventIDs {
			ids = append(ids, id.String())
		}
		q = q.In("event_id", ids)
	}
	data, _, err := q.Order("created_at", newestFirst).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list event registrations: %v", err)
	}
	return decodeRows[EventBooking](data)
}

func (su *SupabaseRepo) DeleteRegistration(ctx context.Context, id uuid.UUID, accessToken string) error {
	client, err := su.client(accessToken)
	if err != nil {
		return err
	}
	data, _, err := client.From(EventBookingsTable).
		Delete("representation", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete registration: %v", err)
	}
	_, err = firstRow[EventBooking](data)
	return err
}
