package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rentyclub/internal/apperrors"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/joshua-takyi/rentyclub/internal/notify"
)

type MessagesService struct {
	messagesRepo models.MessagesRepo
	eventsRepo   models.EventsRepo
	publisher    notify.Publisher
	logger       *slog.Logger
}

func NewMessagesService(messagesRepo models.MessagesRepo, eventsRepo models.EventsRepo, publisher notify.Publisher, logger *slog.Logger) *MessagesService {
	if publisher == nil {
		publisher = notify.NopPublisher{}
	}
	return &MessagesService{
		messagesRepo: messagesRepo,
		eventsRepo:   eventsRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

// Threads returns the caller's conversations, oldest first.
func (ms *MessagesService) Threads(ctx context.Context, actor *helpers.EnhancedClaims) ([]*models.Thread, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	msgs, err := ms.messagesRepo.ListUserMessages(ctx, actor.UserID, actor.AccessToken)
	if err != nil {
		return nil, repoErr(err, "messages")
	}
	return models.GroupThreads(msgs, actor.UserID), nil
}

func (ms *MessagesService) Send(ctx context.Context, actor *helpers.EnhancedClaims, req *models.SendMessageRequest) (*models.Message, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if req != nil {
		req.Content = strings.TrimSpace(req.Content)
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.ReceiverID == actor.UserID {
		return nil, apperrors.InvalidInput("you cannot message yourself")
	}
	return ms.send(ctx, actor, &models.Message{
		ID:         uuid.New(),
		SenderID:   actor.UserID,
		ReceiverID: req.ReceiverID,
		SpaceID:    req.SpaceID,
		Content:    req.Content,
	})
}

// InquiryContent formats an event inquiry the way organizers read it in their inbox.
func InquiryContent(eventTitle string, req *models.EventInquiryRequest) string {
	return fmt.Sprintf("EVENT: %s\nFROM: %s (%s)\n\nMESSAGE: %s", eventTitle, req.Name, req.Email, req.Message)
}

// EventInquiry sends a message about an event to its organizer. It carries
// no space, so it groups under the "Event inquiry" thread.
func (ms *MessagesService) EventInquiry(ctx context.Context, actor *helpers.EnhancedClaims, eventID uuid.UUID, req *models.EventInquiryRequest) (*models.Message, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if req != nil {
		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)
		req.Message = strings.TrimSpace(req.Message)
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if eventID == uuid.Nil {
		return nil, apperrors.InvalidInput("invalid event ID")
	}
	event, err := ms.eventsRepo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, repoErr(err, "event")
	}
	if event.OrganizerID == actor.UserID {
		return nil, apperrors.InvalidInput("you organize this event")
	}

	return ms.send(ctx, actor, &models.Message{
		ID:         uuid.New(),
		SenderID:   actor.UserID,
		ReceiverID: event.OrganizerID,
		Content:    InquiryContent(event.Title, req),
	})
}

func (ms *MessagesService) send(ctx context.Context, actor *helpers.EnhancedClaims, m *models.Message) (*models.Message, error) {
	created, err := ms.messagesRepo.CreateMessage(ctx, m, actor.AccessToken)
	if err != nil {
		return nil, repoErr(err, "message")
	}
	notify.PublishLogged(ctx, ms.publisher, ms.logger, notify.Event{
		Type: notify.MessageSent,
		Key:  created.ReceiverID.String(),
		Payload: map[string]any{
			"message_id":  created.ID,
			"sender_id":   created.SenderID,
			"receiver_id": created.ReceiverID,
			"space_id":    created.SpaceID,
		},
	})
	return created, nil
}
