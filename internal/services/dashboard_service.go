package services

import (
	"context"

	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"golang.org/x/sync/errgroup"
)

// Dashboard is everything the account page shows in one payload.
type Dashboard struct {
	Profile         *models.Profile        `json:"profile"`
	Spaces          []*models.Space        `json:"spaces"`
	Requests        []*models.Booking      `json:"requests"`
	PendingRequests int                    `json:"pending_requests"`
	Rentals         []*models.Booking      `json:"rentals"`
	Blackouts       []*models.Blackout     `json:"blackouts"`
	Events          []*models.Event        `json:"events"`
	Registrations   []*models.EventBooking `json:"registrations"`
}

type DashboardService struct {
	profiles *ProfilesService
	spaces   *SpacesService
	bookings *BookingsService
	events   *EventsService
}

func NewDashboardService(profiles *ProfilesService, spaces *SpacesService, bookings *BookingsService, events *EventsService) *DashboardService {
	return &DashboardService{
		profiles: profiles,
		spaces:   spaces,
		bookings: bookings,
		events:   events,
	}
}

// Load fans the section queries out and fails if any of them fails.
func (ds *DashboardService) Load(ctx context.Context, actor *helpers.EnhancedClaims) (*Dashboard, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Profile, err = ds.profiles.GetProfile(gctx, actor)
		return err
	})
	g.Go(func() (err error) {
		d.Spaces, err = ds.spaces.MySpaces(gctx, actor)
		return err
	})
	g.Go(func() (err error) {
		d.Requests, err = ds.bookings.ListRequests(gctx, actor)
		return err
	})
	g.Go(func() (err error) {
		d.Rentals, err = ds.bookings.ListRentals(gctx, actor)
		return err
	})
	g.Go(func() (err error) {
		d.Blackouts, err = ds.bookings.ListBlackouts(gctx, actor)
		return err
	})
	g.Go(func() (err error) {
		d.Events, err = ds.events.MyEvents(gctx, actor)
		return err
	})
	g.Go(func() (err error) {
		d.Registrations, err = ds.events.MyRegistrations(gctx, actor)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, b := range d.Requests {
		if b.Status == models.BookingPending {
			d.PendingRequests++
		}
	}
	return &d, nil
}
