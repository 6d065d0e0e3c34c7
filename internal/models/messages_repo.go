package models

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

const messageColumns = "*," +
	"sender:profiles!messages_sender_id_fkey(email,full_name)," +
	"receiver:profiles!messages_receiver_id_fkey(email,full_name)," +
	"spaces(title,image)"

type MessagesRepo interface {
	ListUserMessages(ctx context.Context, userID uuid.UUID, accessToken string) ([]*Message, error)
	CreateMessage(ctx context.Context, m *Message, accessToken string) (*Message, error)
}

// ListUserMessages returns every message the user sent or received, oldest
// first.
func (su *SupabaseRepo) ListUserMessages(ctx context.Context, userID uuid.UUID, accessToken string) ([]*Message, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}
	id := userID.String()
	data, _, err := client.From(MessagesTable).
		Select(messageColumns, "", false).
		Or(fmt.Sprintf("sender_id.eq.%s,receiver_id.eq.%s", id, id), "").
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %v", err)
	}
	return decodeRows[Message](data)
}

func (su *SupabaseRepo) CreateMessage(ctx context.Context, m *Message, accessToken string) (*Message, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}
	row := map[string]interface{}{
		"id":          m.ID,
		"sender_id":   m.SenderID,
		"receiver_id": m.ReceiverID,
		"content":     m.Content,
		"space_id":    nil,
	}
	if m.SpaceID != nil {
		row["space_id"] = *m.SpaceID
	}
	data, _, err := client.From(MessagesTable).
		Insert(row, false, "", "representation", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %v", err)
	}
	return firstRow[Message](data)
}
