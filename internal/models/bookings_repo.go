package models

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

const bookingColumns = "*,spaces(title,image,location)"

type BookingsRepo interface {
	CreateBooking(ctx context.Context, b *Booking, accessToken string) (*Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID, accessToken string) (*Booking, error)
	CommittedBookings(ctx context.Context, spaceID uuid.UUID) ([]*Booking, error)
	ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, accessToken string) ([]*Booking, error)
	ListRenterBookings(ctx context.Context, renterID uuid.UUID, accessToken string) ([]*Booking, error)
	ListAllBookings(ctx context.Context, offset, limit int, accessToken string) ([]*Booking, int, error)
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, from, to BookingStatus, accessToken string) (*Booking, error)
}

type BlackoutsRepo interface {
	CreateBlackout(ctx context.Context, b *Blackout, accessToken string) (*Blackout, error)
	GetBlackout(ctx context.Context, id uuid.UUID, accessToken string) (*Blackout, error)
	SpaceBlackouts(ctx context.Context, spaceID uuid.UUID) ([]*Blackout, error)
	ListOwnerBlackouts(ctx context.Context, ownerID uuid.UUID, accessToken string) ([]*Blackout, error)
	DeleteBlackout(ctx context.Context, id uuid.UUID, accessToken string) error
}

var committedStatuses = []string{string(BookingApproved), string(BookingBlocked)}

func (su *SupabaseRepo) CreateBooking(ctx context.Context, b *Booking, accessToken string) (*Booking, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}

	row := map[string]interface{}{
		"id":           b.ID,
		"space_id":     b.SpaceID,
		"renter_id":    b.RenterID,
		"owner_id":     b.OwnerID,
		"start_date":   b.StartDate.String(),
		"end_date":     b.EndDate.String(),
		"days":         b.Days,
		"subtotal":     b.Subtotal,
		"discount":     b.Discount,
		"platform_fee": b.PlatformFee,
		"total_price":  b.TotalPrice,
		"status":       b.Status,
	}

	data, _, err := client.From(BookingsTable).
		Insert(row, false, "", "representation", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking: %v", err)
	}
	return firstRow[Booking](data)
}

func (su *SupabaseRepo) GetBooking(ctx context.Context, id uuid.UUID, accessToken string) (*Booking, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}
	data, _, err := client.From(BookingsTable).
		Select(bookingColumns, "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %v", err)
	}
	return firstRow[Booking](data)
}

// CommittedBookings returns the approved and legacy blocked rows of a space.
func (su *SupabaseRepo) CommittedBookings(ctx context.Context, spaceID uuid.UUID) ([]*Booking, error) {
	data, _, err := su.supabaseClient.From(BookingsTable).
		Select("id,space_id,start_date,end_date,status", "", false).
		Eq("space_id", spaceID.String()).
		In("status", committedStatuses).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get committed bookings: %v", err)
	}
	return decodeRows[Booking](data)
}

// ListOwnerBookings is the owner's request inbox. Legacy blocked rows are left
// out.
func (su *SupabaseRepo) ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, accessToken string) ([]*Booking, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}
	data, _, err := client.From(BookingsTable).
		Select(bookingColumns, "", false).
		Eq("owner_id", ownerID.String()).
		Neq("status", string(BookingBlocked)).
		Order("created_at", newestFirst).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list owner bookings: %v", err)
	}
	return decodeRows[Booking](data)
}

func (su *SupabaseRepo) ListRenterBookings(ctx context.Context, renterID uuid.UUID, accessToken string) ([]*Booking, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}
	data, _, err := client.From(BookingsTable).
		Select(bookingColumns, "", false).
		Eq("renter_id", renterID.String()).
		Order("created_at", newestFirst).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list rentals: %v", err)
	}
	return decodeRows[Booking](data)
}

func (su *SupabaseRepo) ListAllBookings(ctx context.Context, offset, limit int, accessToken string) ([]*Booking, int, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, 0, err
	}
	data, count, err := client.From(BookingsTable).
		Select(bookingColumns, "exact", false).
		Order("created_at", newestFirst).
		Range(offset, offset+limit-1, "").
		Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %v", err)
	}
	rows, err := decodeRows[Booking](data)
	if err != nil {
		return nil, 0, err
	}
	return rows, int(count), nil
}

// UpdateBookingStatus writes to only while the row still holds from. A
// concurrent change leaves zero rows matched and yields ErrStaleStatus.
func (su *SupabaseRepo) UpdateBookingStatus(ctx context.Context, id uuid.UUID, from, to BookingStatus, accessToken string) (*Booking, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}
	data, _, err := client.From(BookingsTable).
		Update(map[string]interface{}{"status": to}, "representation", "exact").
		Eq("id", id.String()).
		Eq("status", string(from)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %v", err)
	}
	rows, err := decodeRows[Booking](data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrStaleStatus
	}
	return rows[0], nil
}

func (su *SupabaseRepo) CreateBlackout(ctx context.Context, b *Blackout, accessToken string) (*Blackout, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}
	row := map[string]interface{}{
		"id":         b.ID,
		"space_id":   b.SpaceID,
		"owner_id":   b.OwnerID,
		"start_date": b.StartDate.String(),
		"end_date":   b.EndDate.String(),
		"reason":     b.Reason,
	}
	data, _, err := client.From(BlackoutsTable).
		Insert(row, false, "", "representation", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to insert blackout: %v", err)
	}
	return firstRow[Blackout](data)
}

func (su *SupabaseRepo) GetBlackout(ctx context.Context, id uuid.UUID, accessToken string) (*Blackout, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}
	data, _, err := client.From(BlackoutsTable).
		Select("*", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get blackout: %v", err)
	}
	return firstRow[Blackout](data)
}

func (su *SupabaseRepo) SpaceBlackouts(ctx context.Context, spaceID uuid.UUID) ([]*Blackout, error) {
	data, _, err := su.supabaseClient.From(BlackoutsTable).
		Select("id,space_id,start_date,end_date", "", false).
		Eq("space_id", spaceID.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get space blackouts: %v", err)
	}
	return decodeRows[Blackout](data)
}

func (su *SupabaseRepo) ListOwnerBlackouts(ctx context.Context, ownerID uuid.UUID, accessToken string) ([]*Blackout, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}
	data, _, err := client.From(BlackoutsTable).
		Select("*,spaces(title,image,location)", "", false).
		Eq("owner_id", ownerID.String()).
		Order("start_date", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list blackouts: %v", err)
	}
	return decodeRows[Blackout](data)
}

func (su *SupabaseRepo) DeleteBlackout(ctx context.Context, id uuid.UUID, accessToken string) error {
	client, err := su.client(accessToken)
	if err != nil {
		return err
	}
	data, _, err := client.From(BlackoutsTable).
		Delete("representation", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete blackout: %v", err)
	}
	_, err = firstRow[Blackout](data)
	return err
}
