package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
	// BookingBlocked is only read from rows written before blackouts existed.
	BookingBlocked BookingStatus = "blocked"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingApproved, BookingRejected},
	BookingApproved:  {BookingCancelled},
	BookingRejected:  {BookingApproved},
	BookingCancelled: {BookingApproved},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingRejected, BookingCancelled, BookingBlocked:
		return true
	}
	return false
}

// Commits reports whether a booking in this status holds its dates.
func (s BookingStatus) Commits() bool {
	return s == BookingApproved || s == BookingBlocked
}

// AllowedTransitions lists the statuses reachable from s.
func AllowedTransitions(s BookingStatus) []BookingStatus {
	next := bookingTransitions[s]
	out := make([]BookingStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition is the single guard every status change goes through.
func CanTransition(from, to BookingStatus) bool {
	for _, s := range bookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SpaceRef is the embedded space summary postgrest returns for spaces(...) joins.
type SpaceRef struct {
	Title    string `json:"title"`
	Image    string `json:"image,omitempty"`
	Location string `json:"location,omitempty"`
}

type Booking struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	SpaceID     uuid.UUID     `db:"space_id" json:"space_id"`
	RenterID    uuid.UUID     `db:"renter_id" json:"renter_id"`
	OwnerID     uuid.UUID     `db:"owner_id" json:"owner_id"`
	StartDate   Date          `db:"start_date" json:"start_date"`
	EndDate     Date          `db:"end_date" json:"end_date"`
	Days        int           `db:"days" json:"days,omitempty"`
	Subtotal    float64       `db:"subtotal" json:"subtotal,omitempty"`
	Discount    float64       `db:"discount" json:"discount,omitempty"`
	PlatformFee float64       `db:"platform_fee" json:"platform_fee,omitempty"`
	TotalPrice  float64       `db:"total_price" json:"total_price"`
	Status      BookingStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	Space       *SpaceRef     `json:"spaces,omitempty"`
}

func (b *Booking) Range() DateRange {
	return DateRange{From: b.StartDate, To: b.EndDate}
}

func (b *Booking) BlockedRange() (DateRange, bool) {
	return b.Range(), b.Status.Commits()
}

// ApplyQuote copies a server-computed price breakdown onto the booking.
func (b *Booking) ApplyQuote(q *Quote) {
	b.StartDate = q.StartDate
	b.EndDate = q.EndDate
	b.Days = q.Days
	b.Subtotal = q.Subtotal
	b.Discount = q.Discount
	b.PlatformFee = q.PlatformFee
	b.TotalPrice = q.Total
}

type BookingRequest struct {
	SpaceID   uuid.UUID `json:"space_id" validate:"required"`
	StartDate Date      `json:"start_date"`
	EndDate   Date      `json:"end_date"`
}

type StatusUpdate struct {
	Status BookingStatus `json:"status" validate:"required,oneof=pending approved rejected cancelled blocked"`
}

// Blackout marks a space unavailable for a range at the owner's request.
type Blackout struct {
	ID        uuid.UUID `db:"id" json:"id"`
	SpaceID   uuid.UUID `db:"space_id" json:"space_id"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	StartDate Date      `db:"start_date" json:"start_date"`
	EndDate   Date      `db:"end_date" json:"end_date"`
	Reason    string    `db:"reason" json:"reason,omitempty" validate:"max=200"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Space     *SpaceRef `json:"spaces,omitempty"`
}

func (b *Blackout) Range() DateRange {
	return DateRange{From: b.StartDate, To: b.EndDate}
}

func (b *Blackout) BlockedRange() (DateRange, bool) {
	return b.Range(), true
}
