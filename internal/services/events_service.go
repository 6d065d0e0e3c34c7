package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rentyclub/internal/apperrors"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/media"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/joshua-takyi/rentyclub/internal/notify"
)

type EventsService struct {
	eventsRepo models.EventsRepo
	geocoder   Geocoder
	uploader   media.Uploader
	publisher  notify.Publisher
	maps       MapSettings
	logger     *slog.Logger
	now        Clock
}

func NewEventsService(eventsRepo models.EventsRepo, geocoder Geocoder, uploader media.Uploader, publisher notify.Publisher, maps MapSettings, logger *slog.Logger, now Clock) *EventsService {
	if now == nil {
		now = time.Now
	}
	if publisher == nil {
		publisher = notify.NopPublisher{}
	}
	return &EventsService{
		eventsRepo: eventsRepo,
		geocoder:   geocoder,
		uploader:   uploader,
		publisher:  publisher,
		maps:       maps,
		logger:     logger,
		now:        now,
	}
}

type EventDetail struct {
	*models.Event
	Map models.MapView `json:"map"`
}

func (es *EventsService) ListEvents(ctx context.Context, category string, offset, limit int) ([]*models.Event, int, error) {
	category = strings.TrimSpace(category)
	if category != "" && !models.IsEventCategory(category) {
		return nil, 0, apperrors.InvalidInput("unknown event category").
			WithDetails(map[string]any{"categories": models.EventCategories})
	}
	offset, limit, err := pageBounds(offset, limit)
	if err != nil {
		return nil, 0, err
	}
	events, total, err := es.eventsRepo.ListEvents(ctx, category, offset, limit)
	if err != nil {
		return nil, 0, repoErr(err, "events")
	}
	return events, total, nil
}

func (es *EventsService) getEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	if id == uuid.Nil {
		return nil, apperrors.InvalidInput("invalid event ID")
	}
	e, err := es.eventsRepo.GetEvent(ctx, id)
	if err != nil {
		return nil, repoErr(err, "event")
	}
	return e, nil
}

func (es *EventsService) GetEvent(ctx context.Context, id uuid.UUID) (*EventDetail, error) {
	e, err := es.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return &EventDetail{
		Event: e,
		Map:   es.maps.ViewFor(models.Coordinates{Latitude: e.Lat, Longitude: e.Lng}),
	}, nil
}

func (es *EventsService) MyEvents(ctx context.Context, actor *helpers.EnhancedClaims) ([]*models.Event, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	events, err := es.eventsRepo.ListOrganizerEvents(ctx, actor.UserID)
	if err != nil {
		return nil, repoErr(err, "events")
	}
	return events, nil
}

func (es *EventsService) CreateEvent(ctx context.Context, actor *helpers.EnhancedClaims, in *models.EventInput) (*models.Event, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		return nil, apperrors.Validation("event date is required", map[string]any{"fields": map[string]string{"date": "required"}})
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = models.DefaultEventCategory
	}
	if !models.IsEventCategory(category) {
		return nil, apperrors.Validation("unknown event category", map[string]any{"categories": models.EventCategories})
	}

	location := strings.TrimSpace(in.Location)
	coords := locate(ctx, es.geocoder, location, in.Lat, in.Lng, es.maps.Center)

	event := &models.Event{
		ID:          uuid.New(),
		OrganizerID: actor.UserID,
		Title:       strings.TrimSpace(in.Title),
		Date:        in.Date,
		Category:    category,
		Price:       in.Price,
		Location:    location,
		Image:       strings.TrimSpace(in.Image),
		Description: in.Description,
		Lat:         coords.Latitude,
		Lng:         coords.Longitude,
	}
	created, err := es.eventsRepo.CreateEvent(ctx, event, actor.AccessToken)
	if err != nil {
		return nil, repoErr(err, "event")
	}
	es.logger.Info("event created", "event_id", created.ID, "organizer_id", actor.UserID)
	return created, nil
}

func (es *EventsService) UpdateEvent(ctx context.Context, actor *helpers.EnhancedClaims, id uuid.UUID, upd *models.EventUpdate) (*models.Event, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validate(upd); err != nil {
		return nil, err
	}
	if upd.Category != nil && !models.IsEventCategory(*upd.Category) {
		return nil, apperrors.Validation("unknown event category", map[string]any{"categories": models.EventCategories})
	}
	event, err := es.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(event.OrganizerID) {
		return nil, apperrors.Forbidden("you can only edit your own events")
	}

	fields := upd.Fields()
	if upd.Location != nil && strings.TrimSpace(*upd.Location) != event.Location && (upd.Lat == nil || upd.Lng == nil) {
		prev := models.Coordinates{Latitude: event.Lat, Longitude: event.Lng}
		coords := locate(ctx, es.geocoder, strings.TrimSpace(*upd.Location), nil, nil, prev)
		fields["lat"] = coords.Latitude
		fields["lng"] = coords.Longitude
	}
	if len(fields) == 0 {
		return nil, apperrors.InvalidInput("no fields to update")
	}

	updated, err := es.eventsRepo.UpdateEvent(ctx, id, fields, actor.AccessToken)
	if err != nil {
		return nil, repoErr(err, "event")
	}
	return updated, nil
}

func (es *EventsService) DeleteEvent(ctx context.Context, actor *helpers.EnhancedClaims, id uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	event, err := es.getEvent(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(event.OrganizerID) {
		return apperrors.Forbidden("you can only delete your own events")
	}
	if err := es.eventsRepo.DeleteEvent(ctx, id, actor.AccessToken); err != nil {
		return repoErr(err, "event")
	}
	es.logger.Info("event deleted", "event_id", id, "by", actor.UserID)
	return nil
}

// UploadImage stores an event cover and returns its public URL.
func (es *EventsService) UploadImage(ctx context.Context, actor *helpers.EnhancedClaims, filename, contentType string, body io.Reader) (string, error) {
	if err := requireActor(actor); err != nil {
		return "", err
	}
	return upload(ctx, es.uploader, media.Object{
		Folder:      media.EventsFolder + "/" + actor.UserID.String(),
		Filename:    filename,
		ContentType: contentType,
		Body:        body,
		AccessToken: actor.AccessToken,
	})
}

// Register books a ticket. actor is optional: anonymous registrations only
// carry the email.
func (es *EventsService) Register(ctx context.Context, actor *helpers.EnhancedClaims, eventID uuid.UUID, req *models.RegistrationRequest) (*models.EventBooking, error) {
	if req != nil {
		req.Email = strings.TrimSpace(req.Email)
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	event, err := es.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Date.Before(today(es.now)) {
		return nil, apperrors.InvalidInput("this event has already taken place")
	}

	reg := &models.EventBooking{
		ID:      uuid.New(),
		EventID: event.ID,
		Email:   strings.ToLower(req.Email),
	}
	token := ""
	if actor != nil {
		uid := actor.UserID
		reg.UserID = &uid
		token = actor.AccessToken
	}

	created, err := es.eventsRepo.CreateRegistration(ctx, reg, token)
	if err != nil {
		return nil, repoErr(err, "registration")
	}
	es.logger.Info("event registration", "event_id", event.ID, "registration_id", created.ID, "anonymous", actor == nil)
	notify.PublishLogged(ctx, es.publisher, es.logger, notify.Event{
		Type: notify.EventRegistered,
		Key:  event.ID.String(),
		Payload: map[string]any{
			"registration_id": created.ID,
			"event_id":        event.ID,
			"organizer_id":    event.OrganizerID,
			"email":           created.Email,
		},
	})
	return created, nil
}

func (es *EventsService) MyRegistrations(ctx context.Context, actor *helpers.EnhancedClaims) ([]*models.EventBooking, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	regs, err := es.eventsRepo.ListUserRegistrations(ctx, actor.UserID, actor.AccessToken)
	if err != nil {
		return nil, repoErr(err, "registrations")
	}
	return regs, nil
}

// OrganizerRegistrations lists the tickets sold for the caller's events, or
// every ticket for a super_admin.
func (es *EventsService) OrganizerRegistrations(ctx context.Context, actor *helpers.EnhancedClaims) ([]*models.EventBooking, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	if !actor.IsAdmin() {
		events, err := es.eventsRepo.ListOrganizerEvents(ctx, actor.UserID)
		if err != nil {
			return nil, repoErr(err, "events")
		}
		ids = make([]uuid.UUID, 0, len(events))
		for _, e := range events {
			ids = append(ids, e.ID)
		}
	}
	regs, err := es.eventsRepo.ListEventRegistrations(ctx, ids, actor.AccessToken)
	if err != nil {
		return nil, repoErr(err, "registrations")
	}
	return regs, nil
}

// CancelRegistration deletes a ticket. The attendee, the event's organizer
// and super_admins may do it.
func (es *EventsService) CancelRegistration(ctx context.Context, actor *helpers.EnhancedClaims, id uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	reg, err := es.eventsRepo.GetRegistration(ctx, id, actor.AccessToken)
	if err != nil {
		return repoErr(err, "registration")
	}

	allowed := actor.IsAdmin() || (reg.UserID != nil && *reg.UserID == actor.UserID)
	if !allowed {
		event, err := es.getEvent(ctx, reg.EventID)
		if err != nil {
			return err
		}
		allowed = event.OrganizerID == actor.UserID
	}
	if !allowed {
		return apperrors.Forbidden("you cannot cancel this registration")
	}

	if err := es.eventsRepo.DeleteRegistration(ctx, id, actor.AccessToken); err != nil {
		return repoErr(err, "registration")
	}
	return nil
}
