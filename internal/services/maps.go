package services

import (
	"context"

	"github.com/joshua-takyi/rentyclub/internal/models"
)

const (
	detailZoom  = 15
	defaultZoom = 12
)

// Geocoder resolves an address, returning prev when it cannot.
type Geocoder interface {
	Resolve(ctx context.Context, address string, prev models.Coordinates) models.Coordinates
}

type MapSettings struct {
	TileURL     string
	Attribution string
	Center      models.Coordinates
}

// ViewFor centres the map on c, or on the default centre when c is unset.
func (m MapSettings) ViewFor(c models.Coordinates) models.MapView {
	zoom := detailZoom
	if c.IsZero() {
		c = m.Center
		zoom = defaultZoom
	}
	return models.MapView{
		Lat:         c.Latitude,
		Lng:         c.Longitude,
		Zoom:        zoom,
		TileURL:     m.TileURL,
		Attribution: m.Attribution,
		Interactive: true,
	}
}

// locate picks explicit coordinates when both are given, otherwise geocodes
// the address with prev as the fallback.
func locate(ctx context.Context, g Geocoder, address string, lat, lng *float64, prev models.Coordinates) models.Coordinates {
	if lat != nil && lng != nil {
		return models.Coordinates{Latitude: *lat, Longitude: *lng}
	}
	if g == nil {
		return prev
	}
	return g.Resolve(ctx, address, prev)
}
