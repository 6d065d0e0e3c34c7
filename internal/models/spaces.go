package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultSpaceType = "Local comercial"
	MaxSpacePhotos   = 7
)

// Coordinates is a WGS84 point as returned by the geocoder and stored in the
// lat/lng columns.
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

func (c Coordinates) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

type Space struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	OwnerID     uuid.UUID   `db:"owner_id" json:"owner_id"`
	Title       string      `db:"title" json:"title"`
	Price       float64     `db:"price" json:"price"`
	Type        string      `db:"type" json:"type"`
	Size        float64     `db:"size" json:"size"`
	Location    string      `db:"location" json:"location"`
	Image       string      `db:"image" json:"image"`
	Images      []string    `db:"images" json:"images"`
	Description string      `db:"description" json:"description"`
	Lat         float64     `db:"lat" json:"lat"`
	Lng         float64     `db:"lng" json:"lng"`
	Amenities   []string    `db:"amenities" json:"amenities"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	Owner       *ProfileRef `json:"profiles,omitempty"`
}

func (s *Space) Coordinates() Coordinates {
	return Coordinates{Latitude: s.Lat, Longitude: s.Lng}
}

func (s *Space) Gallery() Gallery {
	return BuildGallery(s.Image, s.Images)
}

// SpaceInput is the create form. UploadedImages come from the upload endpoint,
// ImageURL is an optional extra photo given by address.
type SpaceInput struct {
	Title          string   `json:"title" validate:"required,max=140"`
	Price          float64  `json:"price" validate:"required,gt=0"`
	Type           string   `json:"type" validate:"max=60"`
	Size           float64  `json:"size" validate:"gte=0"`
	Location       string   `json:"location" validate:"required,max=240"`
	ImageURL       string   `json:"image" validate:"omitempty,url"`
	UploadedImages []string `json:"images" validate:"max=6,dive,url"`
	Description    string   `json:"description" validate:"max=5000"`
	Lat            *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng            *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	Amenities      []string `json:"amenities" validate:"max=30,dive,max=60"`
}

// Photos returns the final ordered gallery for a new space: uploads first,
// then the extra URL.
func (in *SpaceInput) Photos() []string {
	out := make([]string, 0, len(in.UploadedImages)+1)
	for _, u := range in.UploadedImages {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	if u := strings.TrimSpace(in.ImageURL); u != "" {
		out = append(out, u)
	}
	return out
}

// SpaceUpdate carries the fields the owner and admin edit modals may change.
type SpaceUpdate struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=140"`
	Price       *float64  `json:"price" validate:"omitempty,gt=0"`
	Type        *string   `json:"type" validate:"omitempty,max=60"`
	Size        *float64  `json:"size" validate:"omitempty,gte=0"`
	Location    *string   `json:"location" validate:"omitempty,min=1,max=240"`
	Image       *string   `json:"image" validate:"omitempty,url"`
	Description *string   `json:"description" validate:"omitempty,max=5000"`
	Lat         *float64  `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng         *float64  `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	Amenities   *[]string `json:"amenities" validate:"omitempty,max=30,dive,max=60"`
}

// Fields flattens the update into a column map for postgrest.
func (u *SpaceUpdate) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Title != nil {
		fields["title"] = strings.TrimSpace(*u.Title)
	}
	if u.Price != nil {
		fields["price"] = *u.Price
	}
	if u.Type != nil {
		fields["type"] = strings.TrimSpace(*u.Type)
	}
	if u.Size != nil {
		fields["size"] = *u.Size
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
	if u.Amenities != nil {
		fields["amenities"] = NormalizeAmenities(*u.Amenities)
	}
	return fields
}

// NormalizeAmenities trims and de-duplicates, keeping first-seen order.
func NormalizeAmenities(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

type SpaceFilter struct {
	Type     string
	Location string
	OwnerID  uuid.UUID
	Offset   int
	Limit    int
}

// MapView is what the client needs to draw the embedded tile map.
type MapView struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Zoom        int     `json:"zoom"`
	TileURL     string  `json:"tile_url"`
	Attribution string  `json:"attribution"`
	Interactive bool    `json:"interactive"`
}

type SpaceDetail struct {
	*Space
	Gallery Gallery `json:"gallery"`
	Map     MapView `json:"map"`
}
