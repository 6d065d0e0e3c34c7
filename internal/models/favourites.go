package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	FavouriteColName = "favourites"

	FavouriteSpace = "space"
	FavouriteEvent = "event"
)

type FavouriteItem struct {
	ItemID   string    `bson:"item_id" json:"item_id"`
	ItemType string    `bson:"item_type" json:"item_type"`
	AddedAt  time.Time `bson:"added_at" json:"added_at"`
}

type Favourite struct {
	ID        primitive.ObjectID       `bson:"_id,omitempty" json:"id"`
	UserID    string                   `bson:"user_id" json:"user_id" validate:"required"`
	Items     map[string]FavouriteItem `bson:"items" json:"items"`
	CreatedAt time.Time                `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time                `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

type FavouriteRequest struct {
	ItemType string `json:"item_type" validate:"required,oneof=space event"`
}

type FavouriteRepo interface {
	AddToFavourites(ctx context.Context, userID uuid.UUID, itemID uuid.UUID, itemType string) (*Favourite, error)
	RemoveFromFavourites(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) error
	GetFavourites(ctx context.Context, userID uuid.UUID) (*Favourite, error)
}

func (mdb *MongodbRepo) ensureFavouriteIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	_, err = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("user_id_unique"),
	})
	if err != nil {
		return fmt.Errorf("error creating favourite indexes: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) AddToFavourites(ctx context.Context, userID uuid.UUID, itemID uuid.UUID, itemType string) (*Favourite, error) {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	now := time.Now()
	key := itemID.String()

	update := bson.M{
		"$set": bson.M{
			"updated_at": now,
			"items." + key: FavouriteItem{
				ItemID:   key,
				ItemType: itemType,
				AddedAt:  now,
			},
		},
		"$setOnInsert": bson.M{
			"user_id":    userID.String(),
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result Favourite
	err = col.FindOneAndUpdate(ctx, bson.M{"user_id": userID.String()}, update, opts).Decode(&result)
	if err != nil {
		return nil, fmt.Errorf("error upserting favourite: %v", err)
	}
	return &result, nil
}

func (mdb *MongodbRepo) RemoveFromFavourites(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) error {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{
		"$unset": bson.M{"items." + itemID.String(): ""},
		"$set":   bson.M{"updated_at": time.Now()},
	}
	if _, err := col.UpdateOne(ctx, bson.M{"user_id": userID.String()}, update); err != nil {
		return fmt.Errorf("error removing favourite: %v", err)
	}
	return nil
}

// GetFavourites returns the user's favourites document, empty when the user
// never saved anything.
func (mdb *MongodbRepo) GetFavourites(ctx context.Context, userID uuid.UUID) (*Favourite, error) {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var fav Favourite
	err = col.FindOne(ctx, bson.M{"user_id": userID.String()}).Decode(&fav)
	if err == mongo.ErrNoDocuments {
		return &Favourite{UserID: userID.String(), Items: map[string]FavouriteItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding favourites: %v", err)
	}
	if fav.Items == nil {
		fav.Items = map[string]FavouriteItem{}
	}
	return &fav, nil
}
