package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

var EventCategories = []string{"Networking", "Talleres", "Social", "Corporativo"}

const DefaultEventCategory = "Networking"

func IsEventCategory(c string) bool {
	for _, known := range EventCategories {
		if known == c {
			return true
		}
	}
	return false
}

type Event struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OrganizerID uuid.UUID `db:"organizer_id" json:"organizer_id"`
	Title       string    `db:"title" json:"title"`
	Date        Date      `db:"date" json:"date"`
	Category    string    `db:"category" json:"category"`
	Price       float64   `db:"price" json:"price"`
	Location    string    `db:"location" json:"location"`
	Image       string    `db:"image" json:"image"`
	Description string    `db:"description" json:"description"`
	Lat         float64   `db:"lat" json:"lat"`
	Lng         float64   `db:"lng" json:"lng"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type EventInput struct {
	Title       string   `json:"title" validate:"required,max=140"`
	Date        Date     `json:"date"`
	Category    string   `json:"category"`
	Price       float64  `json:"price" validate:"gte=0"`
	Location    string   `json:"location" validate:"required,max=240"`
	Image       string   `json:"image" validate:"required,url"`
	Description string   `json:"description" validate:"max=5000"`
	Lat         *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng         *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
}

type EventUpdate struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=140"`
	Date        *Date    `json:"date"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Location    *string  `json:"location" validate:"omitempty,min=1,max=240"`
	Image       *string  `json:"image" validate:"omitempty,url"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Lat         *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng         *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
}

func (u *EventUpdate) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Title != nil {
		fields["title"] = strings.TrimSpace(*u.Title)
	}
	if u.Date != nil && !u.Date.IsZero() {
		fields["date"] = u.Date.String()
	}
	if u.Category != nil {
		fields["category"] = *u.Category
	}
	if u.Price != nil {
		fields["price"] = *u.Price
	}
	if u.Location != nil {
		fields["location"] = strings.TrimSpace(*u.Location)
	}
	if u.Image != nil {
		fields["image"] = strings.TrimSpace(*u.Image)
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.Lat != nil {
		fields["lat"] = *u.Lat
	}
	if u.Lng != nil {
		fields["lng"] = *u.Lng
	}
	return fields
}

// EventRef is the embedded event summary for events(...) joins.
type EventRef struct {
	Title    string `json:"title"`
	Image    string `json:"image,omitempty"`
	Date     Date   `json:"date,omitempty"`
	Location string `json:"location,omitempty"`
}

// EventBooking is a ticket. UserID is nil for anonymous registrations.
type EventBooking struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	EventID   uuid.UUID  `db:"event_id" json:"event_id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id"`
	Email     string     `db:"email" json:"email"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	Event     *EventRef  `json:"events,omitempty"`
}

type RegistrationRequest struct {
	Email string `json:"email" validate:"required,email"`
}
