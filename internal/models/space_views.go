package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SpaceViewsColName = "space_views"

	viewDedupWindow = time.Hour
	viewRetention   = 30 * 24 * time.Hour
)

type SpaceView struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SpaceID   string             `bson:"space_id" json:"space_id" validate:"required"`
	OwnerID   string             `bson:"owner_id" json:"owner_id" validate:"required"`
	UserID    *string            `bson:"user_id,omitempty" json:"user_id,omitempty"`
	SessionID string             `bson:"session_id" json:"session_id" validate:"required"`
	IPAddress string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	ViewedAt  time.Time          `bson:"viewed_at" json:"viewed_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
}

// ViewStats aggregates views over one space or over every space of an owner.
type ViewStats struct {
	SpaceID       string `json:"space_id,omitempty"`
	OwnerID       string `json:"owner_id,omitempty"`
	TotalViews    int64  `json:"total_views"`
	UniqueViews   int64  `json:"unique_views"`
	ViewsToday    int64  `json:"views_today"`
	ViewsThisWeek int64  `json:"views_this_week"`
	TotalSpaces   int64  `json:"total_spaces,omitempty"`
}

type SpaceViewsRepo interface {
	TrackSpaceView(ctx context.Context, view *SpaceView) error
	GetSpaceViewStats(ctx context.Context, spaceID string) (*ViewStats, error)
	GetOwnerViewStats(ctx context.Context, ownerID string) (*ViewStats, error)
	GetSpaceViewHistory(ctx context.Context, spaceID string, limit int) ([]*SpaceView, error)
}

func (mdb *MongodbRepo) ensureViewIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, SpaceViewsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
		},
		{
			Keys: bson.D{
				{Key: "space_id", Value: 1},
				{Key: "session_id", Value: 1},
				{Key: "viewed_at", Value: -1},
			},
			Options: options.Index().SetName("space_session_viewed_idx"),
		},
		{
			Keys: bson.D{
				{Key: "owner_id", Value: 1},
				{Key: "viewed_at", Value: -1},
			},
			Options: options.Index().SetName("owner_viewed_at_idx"),
		},
	}

	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating view indexes: %v", err)
	}
	return nil
}

// TrackSpaceView records at most one view per session per space per hour.
func (mdb *MongodbRepo) TrackSpaceView(ctx context.Context, view *SpaceView) error {
	col, err := mdb.GetCollection(ctx, SpaceViewsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	n, err := col.CountDocuments(ctx, bson.M{
		"space_id":   view.SpaceID,
		"session_id": view.SessionID,
		"viewed_at":  bson.M{"$gte": now.Add(-viewDedupWindow)},
	}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("error checking recent views: %v", err)
	}
	if n > 0 {
		return nil
	}

	view.ViewedAt = now
	view.ExpiresAt = now.Add(viewRetention)
	if view.ID.IsZero() {
		view.ID = primitive.NewObjectID()
	}

	if _, err := col.InsertOne(ctx, view); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("error inserting space view: %v", err)
	}
	return nil
}

func (mdb *MongodbRepo) GetSpaceViewStats(ctx context.Context, spaceID string) (*ViewStats, error) {
	stats := &ViewStats{SpaceID: spaceID}
	if err := mdb.fillViewStats(ctx, bson.M{"space_id": spaceID}, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (mdb *MongodbRepo) GetOwnerViewStats(ctx context.Context, ownerID string) (*ViewStats, error) {
	filter := bson.M{"owner_id": ownerID}
	stats := &ViewStats{OwnerID: ownerID}
	if err := mdb.fillViewStats(ctx, filter, stats); err != nil {
		return nil, err
	}

	col, err := mdb.GetCollection(ctx, SpaceViewsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}
	spaces, err := countDistinct(ctx, col, filter, "$space_id")
	if err != nil {
		return nil, fmt.Errorf("error aggregating spaces count: %v", err)
	}
	stats.TotalSpaces = spaces
	return stats, nil
}

func (mdb *MongodbRepo) fillViewStats(ctx context.Context, filter bson.M, stats *ViewStats) error {
	col, err := mdb.GetCollection(ctx, SpaceViewsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := startOfDay.AddDate(0, 0, -int(now.Weekday()))

	if stats.TotalViews, err = col.CountDocuments(ctx, filter); err != nil {
		return fmt.Errorf("error counting total views: %v", err)
	}
	if stats.UniqueViews, err = countDistinct(ctx, col, filter, "$session_id"); err != nil {
		return fmt.Errorf("error aggregating unique views: %v", err)
	}
	if stats.ViewsToday, err = col.CountDocuments(ctx, since(filter, startOfDay)); err != nil {
		return fmt.Errorf("error counting today's views: %v", err)
	}
	if stats.ViewsThisWeek, err = col.CountDocuments(ctx, since(filter, startOfWeek)); err != nil {
		return fmt.Errorf("error counting this week's views: %v", err)
	}
	return nil
}

func since(filter bson.M, t time.Time) bson.M {
	out := bson.M{"viewed_at": bson.M{"$gte": t}}
	for k, v := range filter {
		out[k] = v
	}
	return out
}

func countDistinct(ctx context.Context, col *mongo.Collection, filter bson.M, field string) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{"_id": field}}},
		{{Key: "$count", Value: "n"}},
	}
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result []struct {
		N int64 `bson:"n"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].N, nil
}

func (mdb *MongodbRepo) GetSpaceViewHistory(ctx context.Context, spaceID string, limit int) ([]*SpaceView, error) {
	col, err := mdb.GetCollection(ctx, SpaceViewsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "viewed_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, bson.M{"space_id": spaceID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding space views: %v", err)
	}
	defer cursor.Close(ctx)

	views := []*SpaceView{}
	if err := cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("error decoding space views: %v", err)
	}
	return views, nil
}
