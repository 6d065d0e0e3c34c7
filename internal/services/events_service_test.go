package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rentyclub/internal/apperrors"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/joshua-takyi/rentyclub/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMaps = MapSettings{
	TileURL: "https://tile.example.com/{z}/{x}/{y}.png",
	Center:  models.Coordinates{Latitude: -34.6037, Longitude: -58.3816},
}

func newEventsService(repo *fakeEvents, geo Geocoder, pub notify.Publisher) *EventsService {
	return NewEventsService(repo, geo, &stubUploader{}, pub, testMaps, discardLogger(), testNow)
}

func TestCreateEvent_DefaultsAndGeocoding(t *testing.T) {
	repo := newFakeEvents()
	geo := &stubGeocoder{coords: models.Coordinates{Latitude: -34.58, Longitude: -58.42}}
	svc := newEventsService(repo, geo, nil)
	organizer := uuid.New()

	e, err := svc.CreateEvent(context.Background(), actorFor(organizer, models.RoleUser), &models.EventInput{
		Title:    " Meetup ",
		Date:     testToday.AddDays(10),
		Location: "Palermo Soho",
		Image:    "https://cdn.example.com/e.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "Meetup", e.Title)
	assert.Equal(t, models.DefaultEventCategory, e.Category)
	assert.Equal(t, organizer, e.OrganizerID)
	assert.Equal(t, -34.58, e.Lat)
	assert.Equal(t, 1, geo.calls)
}

func TestCreateEvent_ExplicitCoordinatesSkipGeocoder(t *testing.T) {
	geo := &stubGeocoder{coords: models.Coordinates{Latitude: 1, Longitude: 1}}
	svc := newEventsService(newFakeEvents(), geo, nil)
	lat, lng := -34.1, -58.1

	e, err := svc.CreateEvent(context.Background(), actorFor(uuid.New(), models.RoleUser), &models.EventInput{
		Title: "Taller", Date: testToday, Category: "Talleres", Location: "Centro",
		Image: "https://cdn.example.com/t.jpg", Lat: &lat, Lng: &lng,
	})
	require.NoError(t, err)
	assert.Equal(t, lat, e.Lat)
	assert.Equal(t, 0, geo.calls)
}

func TestCreateEvent_Rejections(t *testing.T) {
	svc := newEventsService(newFakeEvents(), nil, nil)
	actor := actorFor(uuid.New(), models.RoleUser)
	base := models.EventInput{Title: "x", Date: testToday, Location: "y", Image: "https://cdn.example.com/x.jpg"}

	bad := base
	bad.Category = "Conciertos"
	_, err := svc.CreateEvent(context.Background(), actor, &bad)
	requireAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)

	bad = base
	bad.Date = models.Date{}
	_, err = svc.CreateEvent(context.Background(), actor, &bad)
	requireAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)

	bad = base
	bad.Price = -1
	_, err = svc.CreateEvent(context.Background(), actor, &bad)
	requireAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)
}

func TestGetEvent_MapFallsBackToDefaultCentre(t *testing.T) {
	e := &models.Event{ID: uuid.New(), Title: "Sin mapa"}
	svc := newEventsService(newFakeEvents(e), nil, nil)

	detail, err := svc.GetEvent(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, testMaps.Center.Latitude, detail.Map.Lat)
	assert.Equal(t, defaultZoom, detail.Map.Zoom)
}

func TestRegister(t *testing.T) {
	event := &models.Event{ID: uuid.New(), OrganizerID: uuid.New(), Date: testToday.AddDays(3)}
	repo := newFakeEvents(event)
	pub := &recordingPublisher{}
	svc := newEventsService(repo, nil, pub)
	ctx := context.Background()

	anon, err := svc.Register(ctx, nil, event.ID, &models.RegistrationRequest{Email: " Guest@Example.com "})
	require.NoError(t, err)
	assert.Nil(t, anon.UserID)
	assert.Equal(t, "guest@example.com", anon.Email)

	user := uuid.New()
	reg, err := svc.Register(ctx, actorFor(user, models.RoleUser), event.ID, &models.RegistrationRequest{Email: "me@example.com"})
	require.NoError(t, err)
	require.NotNil(t, reg.UserID)
	assert.Equal(t, user, *reg.UserID)

	_, err = svc.Register(ctx, nil, event.ID, &models.RegistrationRequest{Email: "nope"})
	requireAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)

	assert.Equal(t, []string{notify.EventRegistered, notify.EventRegistered}, pub.types())

	mine, err := svc.MyRegistrations(ctx, actorFor(user, models.RoleUser))
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestRegister_PastEvent(t *testing.T) {
	event := &models.Event{ID: uuid.New(), Date: testToday.AddDays(-1)}
	svc := newEventsService(newFakeEvents(event), nil, nil)

	_, err := svc.Register(context.Background(), nil, event.ID, &models.RegistrationRequest{Email: "a@example.com"})
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)
}

func TestOrganizerRegistrationsAndCancel(t *testing.T) {
	organizer, other := uuid.New(), uuid.New()
	mine := &models.Event{ID: uuid.New(), OrganizerID: organizer, Date: testToday}
	theirs := &models.Event{ID: uuid.New(), OrganizerID: other, Date: testToday}
	repo := newFakeEvents(mine, theirs)
	svc := newEventsService(repo, nil, nil)
	ctx := context.Background()

	attendee := uuid.New()
	r1, err := svc.Register(ctx, actorFor(attendee, models.RoleUser), mine.ID, &models.RegistrationRequest{Email: "a@example.com"})
	require.NoError(t, err)
	r2, err := svc.Register(ctx, nil, theirs.ID, &models.RegistrationRequest{Email: "b@example.com"})
	require.NoError(t, err)

	regs, err := svc.OrganizerRegistrations(ctx, actorFor(organizer, models.RoleUser))
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, r1.ID, regs[0].ID)

	all, err := svc.OrganizerRegistrations(ctx, actorFor(uuid.New(), models.RoleSuperAdmin))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	err = svc.CancelRegistration(ctx, actorFor(organizer, models.RoleUser), r2.ID)
	requireAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)

	require.NoError(t, svc.CancelRegistration(ctx, actorFor(other, models.RoleUser), r2.ID))
	require.NoError(t, svc.CancelRegistration(ctx, actorFor(attendee, models.RoleUser), r1.ID))
	assert.Empty(t, repo.regs)
}

func TestUpdateAndDeleteEvent_Ownership(t *testing.T) {
	organizer := uuid.New()
	e := &models.Event{ID: uuid.New(), OrganizerID: organizer, Title: "Old", Location: "A"}
	svc := newEventsService(newFakeEvents(e), nil, nil)
	ctx := context.Background()
	title := "New"

	_, err := svc.UpdateEvent(ctx, actorFor(uuid.New(), models.RoleUser), e.ID, &models.EventUpdate{Title: &title})
	requireAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)

	updated, err := svc.UpdateEvent(ctx, actorFor(organizer, models.RoleUser), e.ID, &models.EventUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)

	_, err = svc.UpdateEvent(ctx, actorFor(organizer, models.RoleUser), e.ID, &models.EventUpdate{})
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)

	require.NoError(t, svc.DeleteEvent(ctx, actorFor(uuid.New(), models.RoleSuperAdmin), e.ID))
	_, err = svc.GetEvent(ctx, e.ID)
	requireAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestListEvents_UnknownCategory(t *testing.T) {
	svc := newEventsService(newFakeEvents(), nil, nil)
	_, _, err := svc.ListEvents(context.Background(), "Conciertos", 0, 0)
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)
}
