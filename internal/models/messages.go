package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	unknownCounterpart  = "User"
	eventInquiryTitle   = "Event inquiry"
	noSpaceThreadPrefix = "null"
)

// ProfileRef is the embedded profile postgrest returns for sender/receiver joins.
type ProfileRef struct {
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

type Message struct {
	ID         uuid.UUID   `db:"id" json:"id"`
	SenderID   uuid.UUID   `db:"sender_id" json:"sender_id"`
	ReceiverID uuid.UUID   `db:"receiver_id" json:"receiver_id"`
	SpaceID    *uuid.UUID  `db:"space_id" json:"space_id"`
	Content    string      `db:"content" json:"content" validate:"required,max=4000"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	Sender     *ProfileRef `json:"sender,omitempty"`
	Receiver   *ProfileRef `json:"receiver,omitempty"`
	Space      *SpaceRef   `json:"spaces,omitempty"`
}

// Thread is every message between the current user and one counterpart about
// one space (or about no space, for event inquiries).
type Thread struct {
	ID              string     `json:"id"`
	OtherID         uuid.UUID  `json:"other_id"`
	OtherEmail      string     `json:"other_email"`
	SpaceID         *uuid.UUID `json:"space_id"`
	SpaceTitle      string     `json:"space_title"`
	SpaceImage      string     `json:"space_image,omitempty"`
	Messages        []*Message `json:"messages"`
	LastMsgContent  string     `json:"last_msg_content"`
	LastMsgTime     time.Time  `json:"last_msg_time"`
	LastMsgSenderID uuid.UUID  `json:"last_msg_sender_id"`
}

func ThreadKey(spaceID *uuid.UUID, otherID uuid.UUID) string {
	prefix := noSpaceThreadPrefix
	if spaceID != nil {
		prefix = spaceID.String()
	}
	return prefix + "-" + otherID.String()
}

// GroupThreads groups msgs, in the order given, into conversations for me.
// Messages keep arrival order inside a thread, the preview is the last one to
// arrive, and threads come back in order of first appearance.
func GroupThreads(msgs []*Message, me uuid.UUID) []*Thread {
	index := make(map[string]*Thread)
	threads := make([]*Thread, 0)

	for _, m := range msgs {
		if m == nil {
			continue
		}
		isMe := m.SenderID == me
		otherID := m.SenderID
		other := m.Sender
		if isMe {
			otherID = m.ReceiverID
			other = m.Receiver
		}

		key := ThreadKey(m.SpaceID, otherID)
		t, ok := index[key]
		if !ok {
			t = &Thread{
				ID:         key,
				OtherID:    otherID,
				OtherEmail: unknownCounterpart,
				SpaceID:    m.SpaceID,
				SpaceTitle: eventInquiryTitle,
				Messages:   []*Message{},
			}
			if other != nil && other.Email != "" {
				t.OtherEmail = other.Email
			}
			if m.Space != nil {
				if m.Space.Title != "" {
					t.SpaceTitle = m.Space.Title
				}
				t.SpaceImage = m.Space.Image
			}
			index[key] = t
			threads = append(threads, t)
		}

		t.Messages = append(t.Messages, m)
		t.LastMsgContent = m.Content
		t.LastMsgTime = m.CreatedAt
		t.LastMsgSenderID = m.SenderID
	}

	return threads
}

type SendMessageRequest struct {
	ReceiverID uuid.UUID  `json:"receiver_id" validate:"required"`
	SpaceID    *uuid.UUID `json:"space_id"`
	Content    string     `json:"content" validate:"required,max=4000"`
}

type EventInquiryRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=4000"`
}
