package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

const spaceColumns = "*,profiles(email,full_name)"

type SpacesRepo interface {
	CreateSpace(ctx context.Context, space *Space, accessToken string) (*Space, error)
	GetSpace(ctx context.Context, id uuid.UUID) (*Space, error)
	ListSpaces(ctx context.Context, filter SpaceFilter) ([]*Space, int, error)
	UpdateSpace(ctx context.Context, id uuid.UUID, fields map[string]interface{}, accessToken string) (*Space, error)
	DeleteSpace(ctx context.Context, id uuid.UUID, accessToken string) error
}

// decodeRows unmarshals a postgrest array response.
func decodeRows[T any](raw []byte) ([]*T, error) {
	rows := []*T{}
	if len(raw) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// firstRow returns the single row of a postgrest response or ErrNotFound.
func firstRow[T any](raw []byte) (*T, error) {
	rows, err := decodeRows[T](raw)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

var newestFirst = &postgrest.OrderOpts{Ascending: false}

func (su *SupabaseRepo) CreateSpace(ctx context.Context, space *Space, accessToken string) (*Space, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}

	row := map[string]interface{}{
		"id":          space.ID,
		"owner_id":    space.OwnerID,
		"title":       space.Title,
		"price":       space.Price,
		"type":        space.Type,
		"size":        space.Size,
		"location":    space.Location,
		"image":       space.Image,
		"images":      space.Images,
		"description": space.Description,
		"lat":         space.Lat,
		"lng":         space.Lng,
		"amenities":   space.Amenities,
	}

	data, _, err := client.From(SpacesTable).
		Insert(row, false, "", "representation", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to insert space: %v", err)
	}

	created, err := firstRow[Space](data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode created space: %w", err)
	}
	return created, nil
}

func (su *SupabaseRepo) GetSpace(ctx context.Context, id uuid.UUID) (*Space, error) {
	data, _, err := su.supabaseClient.From(SpacesTable).
		Select(spaceColumns, "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get space: %v", err)
	}
	return firstRow[Space](data)
}

func (su *SupabaseRepo) ListSpaces(ctx context.Context, filter SpaceFilter) ([]*Space, int, error) {
	q := su.supabaseClient.From(SpacesTable).Select(spaceColumns, "exact", false)
	if filter.OwnerID != uuid.Nil {
		q = q.Eq("owner_id", filter.OwnerID.String())
	}
	if t := strings.TrimSpace(filter.Type); t != "" {
		q = q.Eq("type", t)
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		q = q.Ilike("location", "*"+loc+"*")
	}
	q = q.Order("created_at", newestFirst)
	if filter.Limit > 0 {
		q = q.Range(filter.Offset, filter.Offset+filter.Limit-1, "")
	}

	data, count, err := q.Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list spaces: %v", err)
	}

	spaces, err := decodeRows[Space](data)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal spaces: %v", err)
	}
	return spaces, int(count), nil
}

func (su *SupabaseRepo) UpdateSpace(ctx context.Context, id uuid.UUID, fields map[string]interface{}, accessToken string) (*Space, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(SpacesTable).
		Update(fields, "representation", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update space: %v", err)
	}
	return firstRow[Space](data)
}

func (su *SupabaseRepo) DeleteSpace(ctx context.Context, id uuid.UUID, accessToken string) error {
	client, err := su.client(accessToken)
	if err != nil {
		return err
	}

	data, _, err := client.From(SpacesTable).
		Delete("representation", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete space: %v", err)
	}
	_, err = firstRow[Space](data)
	return err
}
