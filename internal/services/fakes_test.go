package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/media"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/joshua-takyi/rentyclub/internal/notify"
)

var (
	testToday = models.NewDate(2026, time.March, 2)
	testNow   = func() time.Time { return testToday.Time().Add(10 * time.Hour) }
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func actorFor(id uuid.UUID, role string) *helpers.EnhancedClaims {
	return &helpers.EnhancedClaims{UserID: id, Role: role, AccessToken: "token-" + id.String()}
}

type fakeSpaces struct {
	mu     sync.Mutex
	spaces map[uuid.UUID]*models.Space
}

func newFakeSpaces(spaces ...*models.Space) *fakeSpaces {
	f := &fakeSpaces{spaces: map[uuid.UUID]*models.Space{}}
	for _, s := range spaces {
		f.spaces[s.ID] = s
	}
	return f
}

func (f *fakeSpaces) CreateSpace(_ context.Context, s *models.Space, _ string) (*models.Space, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	cp.CreatedAt = time.Now()
	f.spaces[s.ID] = &cp
	return &cp, nil
}

func (f *fakeSpaces) GetSpace(_ context.Context, id uuid.UUID) (*models.Space, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.spaces[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSpaces) ListSpaces(_ context.Context, filter models.SpaceFilter) ([]*models.Space, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Space{}
	for _, s := range f.spaces {
		if filter.OwnerID != uuid.Nil && s.OwnerID != filter.OwnerID {
			continue
		}
		out = append(out, s)
	}
	return out, len(out), nil
}

func (f *fakeSpaces) UpdateSpace(_ context.Context, id uuid.UUID, fields map[string]interface{}, _ string) (*models.Space, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.spaces[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if v, ok := fields["title"].(string); ok {
		s.Title = v
	}
	if v, ok := fields["location"].(string); ok {
		s.Location = v
	}
	if v, ok := fields["lat"].(float64); ok {
		s.Lat = v
	}
	if v, ok := fields["lng"].(float64); ok {
		s.Lng = v
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSpaces) DeleteSpace(_ context.Context, id uuid.UUID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.spaces[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.spaces, id)
	return nil
}

type fakeBookings struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*models.Booking
}

func newFakeBookings(bookings ...*models.Booking) *fakeBookings {
	f := &fakeBookings{bookings: map[uuid.UUID]*models.Booking{}}
	for _, b := range bookings {
		f.bookings[b.ID] = b
	}
	return f
}

func (f *fakeBookings) CreateBooking(_ context.Context, b *models.Booking, _ string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.bookings[b.ID] = &cp
	return &cp, nil
}

func (f *fakeBookings) GetBooking(_ context.Context, id uuid.UUID, _ string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) filter(keep func(*models.Booking) bool) []*models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Booking{}
	for _, b := range f.bookings {
		if keep(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out
}

func (f *fakeBookings) CommittedBookings(_ context.Context, spaceID uuid.UUID) ([]*models.Booking, error) {
	return f.filter(func(b *models.Booking) bool { return b.SpaceID == spaceID && b.Status.Commits() }), nil
}

func (f *fakeBookings) ListOwnerBookings(_ context.Context, ownerID uuid.UUID, _ string) ([]*models.Booking, error) {
	return f.filter(func(b *models.Booking) bool { return b.OwnerID == ownerID && b.Status != models.BookingBlocked }), nil
}

func (f *fakeBookings) ListRenterBookings(_ context.Context, renterID uuid.UUID, _ string) ([]*models.Booking, error) {
	return f.filter(func(b *models.Booking) bool { return b.RenterID == renterID }), nil
}

func (f *fakeBookings) ListAllBookings(_ context.Context, _, _ int, _ string) ([]*models.Booking, int, error) {
	all := f.filter(func(*models.Booking) bool { return true })
	return all, len(all), nil
}

func (f *fakeBookings) UpdateBookingStatus(_ context.Context, id uuid.UUID, from, to models.BookingStatus, _ string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if b.Status != from {
		return nil, models.ErrStaleStatus
	}
	b.Status = to
	cp := *b
	return &cp, nil
}

type fakeBlackouts struct {
	mu        sync.Mutex
	blackouts map[uuid.UUID]*models.Blackout
}

func newFakeBlackouts(blackouts ...*models.Blackout) *fakeBlackouts {
	f := &fakeBlackouts{blackouts: map[uuid.UUID]*models.Blackout{}}
	for _, b := range blackouts {
		f.blackouts[b.ID] = b
	}
	return f
}

func (f *fakeBlackouts) CreateBlackout(_ context.Context, b *models.Blackout, _ string) (*models.Blackout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.blackouts[b.ID] = &cp
	return &cp, nil
}

func (f *fakeBlackouts) GetBlackout(_ context.Context, id uuid.UUID, _ string) (*models.Blackout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blackouts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBlackouts) SpaceBlackouts(_ context.Context, spaceID uuid.UUID) ([]*models.Blackout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Blackout{}
	for _, b := range f.blackouts {
		if b.SpaceID == spaceID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBlackouts) ListOwnerBlackouts(_ context.Context, ownerID uuid.UUID, _ string) ([]*models.Blackout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Blackout{}
	for _, b := range f.blackouts {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBlackouts) DeleteBlackout(_ context.Context, id uuid.UUID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.blackouts[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.blackouts, id)
	return nil
}

// fakeLocks mirrors the Mongo lock: a second acquire on a held key fails.
type fakeLocks struct {
	mu       sync.Mutex
	held     map[uuid.UUID]bool
	acquired int
}

func newFakeLocks() *fakeLocks {
	return &fakeLocks{held: map[uuid.UUID]bool{}}
}

func (f *fakeLocks) AcquireSpaceLock(_ context.Context, spaceID uuid.UUID) (func(context.Context), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[spaceID] {
		return nil, models.ErrLockHeld
	}
	f.held[spaceID] = true
	f.acquired++
	return func(context.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.held, spaceID)
	}, nil
}

func (f *fakeLocks) isHeld(spaceID uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.held[spaceID]
}

type fakeEvents struct {
	mu     sync.Mutex
	events map[uuid.UUID]*models.Event
	regs   map[uuid.UUID]*models.EventBooking
}

func newFakeEvents(events ...*models.Event) *fakeEvents {
	f := &fakeEvents{events: map[uuid.UUID]*models.Event{}, regs: map[uuid.UUID]*models.EventBooking{}}
	for _, e := range events {
		f.events[e.ID] = e
	}
	return f
}

func (f *fakeEvents) CreateEvent(_ context.Context, e *models.Event, _ string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.events[e.ID] = &cp
	return &cp, nil
}

func (f *fakeEvents) GetEvent(_ context.Context, id uuid.UUID) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEvents) ListEvents(_ context.Context, category string, _, _ int) ([]*models.Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Event{}
	for _, e := range f.events {
		if category == "" || e.Category == category {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (f *fakeEvents) ListOrganizerEvents(_ context.Context, organizerID uuid.UUID) ([]*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Event{}
	for _, e := range f.events {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) UpdateEvent(_ context.Context, id uuid.UUID, fields map[string]interface{}, _ string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if v, ok := fields["title"].(string); ok {
		e.Title = v
	}
	if v, ok := fields["category"].(string); ok {
		e.Category = v
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEvents) DeleteEvent(_ context.Context, id uuid.UUID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEvents) CreateRegistration(_ context.Context, r *models.EventBooking, _ string) (*models.EventBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.regs[r.ID] = &cp
	return &cp, nil
}

func (f *fakeEvents) GetRegistration(_ context.Context, id uuid.UUID, _ string) (*models.EventBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeEvents) ListUserRegistrations(_ context.Context, userID uuid.UUID, _ string) ([]*models.EventBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.EventBooking{}
	for _, r := range f.regs {
		if r.UserID != nil && *r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeEvents) ListEventRegistrations(_ context.Context, eventIDs []uuid.UUID, _ string) ([]*models.EventBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.EventBooking{}
	for _, r := range f.regs {
		if eventIDs == nil {
			out = append(out, r)
			continue
		}
		for _, id := range eventIDs {
			if r.EventID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (f *fakeEvents) DeleteRegistration(_ context.Context, id uuid.UUID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.regs[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.regs, id)
	return nil
}

type fakeMessages struct {
	mu   sync.Mutex
	msgs []*models.Message
}

func (f *fakeMessages) ListUserMessages(_ context.Context, userID uuid.UUID, _ string) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Message{}
	for _, m := range f.msgs {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) CreateMessage(_ context.Context, m *models.Message, _ string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *m
	cp.CreatedAt = time.Now()
	f.msgs = append(f.msgs, &cp)
	return &cp, nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.Profile
	sessions map[string]*models.AuthSession
	signupID uuid.UUID
	signErr  error
	password string
	counts   map[string]int64
}

func newFakeProfiles(profiles ...*models.Profile) *fakeProfiles {
	f := &fakeProfiles{
		profiles: map[uuid.UUID]*models.Profile{},
		sessions: map[string]*models.AuthSession{},
		counts:   map[string]int64{},
	}
	for _, p := range profiles {
		f.profiles[p.ID] = p
	}
	return f
}

func (f *fakeProfiles) SignUp(_ context.Context, req *models.SignupRequest) (uuid.UUID, error) {
	if f.signErr != nil {
		return uuid.Nil, f.signErr
	}
	if f.signupID == uuid.Nil {
		f.signupID = uuid.New()
	}
	return f.signupID, nil
}

func (f *fakeProfiles) SignIn(_ context.Context, email, password string) (*models.AuthSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[email]
	if !ok || password != f.password {
		return nil, models.ErrInvalidCredentials
	}
	return s, nil
}

func (f *fakeProfiles) RefreshSession(_ context.Context, refreshToken string) (*models.AuthSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.RefreshToken == refreshToken {
			return s, nil
		}
	}
	return nil, models.ErrInvalidCredentials
}

func (f *fakeProfiles) SignOut(context.Context, string) error { return nil }

func (f *fakeProfiles) UpdateAuthEmail(context.Context, string, string) error { return nil }

func (f *fakeProfiles) UpdateAuthPassword(_ context.Context, password, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.password = password
	return nil
}

func (f *fakeProfiles) UpsertProfile(_ context.Context, p *models.Profile, _ string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.profiles[p.ID] = &cp
	return &cp, nil
}

func (f *fakeProfiles) GetProfile(_ context.Context, id uuid.UUID, _ string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, id uuid.UUID, fields map[string]interface{}, _ string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if v, ok := fields["full_name"].(string); ok {
		p.FullName = v
	}
	if v, ok := fields["avatar_url"].(string); ok {
		p.AvatarURL = v
	}
	if v, ok := fields["role"].(string); ok {
		p.Role = v
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) ListProfiles(context.Context, int, int, string) ([]*models.Profile, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Profile{}
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakeProfiles) DeleteProfile(_ context.Context, id uuid.UUID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.profiles, id)
	return nil
}

func (f *fakeProfiles) CountRows(_ context.Context, table, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[table], nil
}

type fakeFavourites struct {
	mu   sync.Mutex
	favs map[uuid.UUID]*models.Favourite
}

func newFakeFavourites() *fakeFavourites {
	return &fakeFavourites{favs: map[uuid.UUID]*models.Favourite{}}
}

func (f *fakeFavourites) AddToFavourites(_ context.Context, userID, itemID uuid.UUID, itemType string) (*models.Favourite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fav, ok := f.favs[userID]
	if !ok {
		fav = &models.Favourite{UserID: userID.String(), Items: map[string]models.FavouriteItem{}}
		f.favs[userID] = fav
	}
	fav.Items[itemID.String()] = models.FavouriteItem{ItemID: itemID.String(), ItemType: itemType, AddedAt: time.Now()}
	return fav, nil
}

func (f *fakeFavourites) RemoveFromFavourites(_ context.Context, userID, itemID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fav, ok := f.favs[userID]; ok {
		delete(fav.Items, itemID.String())
	}
	return nil
}

func (f *fakeFavourites) GetFavourites(_ context.Context, userID uuid.UUID) (*models.Favourite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fav, ok := f.favs[userID]; ok {
		return fav, nil
	}
	return &models.Favourite{UserID: userID.String(), Items: map[string]models.FavouriteItem{}}, nil
}

type fakeViews struct {
	mu    sync.Mutex
	views []*models.SpaceView
}

func (f *fakeViews) TrackSpaceView(_ context.Context, v *models.SpaceView) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, v)
	return nil
}

func (f *fakeViews) GetSpaceViewStats(_ context.Context, spaceID string) (*models.ViewStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &models.ViewStats{SpaceID: spaceID}
	for _, v := range f.views {
		if v.SpaceID == spaceID {
			stats.TotalViews++
		}
	}
	return stats, nil
}

func (f *fakeViews) GetOwnerViewStats(_ context.Context, ownerID string) (*models.ViewStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &models.ViewStats{OwnerID: ownerID}
	for _, v := range f.views {
		if v.OwnerID == ownerID {
			stats.TotalViews++
		}
	}
	return stats, nil
}

func (f *fakeViews) GetSpaceViewHistory(_ context.Context, spaceID string, limit int) ([]*models.SpaceView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.SpaceView{}
	for i := len(f.views) - 1; i >= 0 && len(out) < limit; i-- {
		if f.views[i].SpaceID == spaceID {
			out = append(out, f.views[i])
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e notify.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type stubGeocoder struct {
	coords models.Coordinates
	calls  int
}

func (g *stubGeocoder) Resolve(_ context.Context, _ string, prev models.Coordinates) models.Coordinates {
	g.calls++
	if g.coords.IsZero() {
		return prev
	}
	return g.coords
}

type stubUploader struct {
	objects []media.Object
	err     error
}

func (u *stubUploader) Upload(_ context.Context, obj media.Object) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.objects = append(u.objects, obj)
	return "https://cdn.example.com/" + obj.Folder + "/" + obj.Filename, nil
}
