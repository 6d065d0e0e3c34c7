package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	BookingLocksColName = "booking_locks"
	BookingLockTTL      = 10 * time.Second
)

// ErrLockHeld means another request is booking the same space right now.
var ErrLockHeld = errors.New("space is being booked by another request")

type bookingLock struct {
	Key       string    `bson:"_id"`
	Holder    string    `bson:"holder"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

type LockRepo interface {
	// AcquireSpaceLock takes the per-space lock and returns its release func.
	AcquireSpaceLock(ctx context.Context, spaceID uuid.UUID) (func(context.Context), error)
}

func spaceLockKey(spaceID uuid.UUID) string {
	return "space:" + spaceID.String()
}

func (mdb *MongodbRepo) ensureLockIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, BookingLocksColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	_, err = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
	})
	if err != nil {
		return fmt.Errorf("error creating lock indexes: %v", err)
	}
	return nil
}

// AcquireSpaceLock inserts a document keyed by the space. A duplicate key means
// the lock is held, unless the holder's lease already ran out, in which case
// the stale document is taken over.
func (mdb *MongodbRepo) AcquireSpaceLock(ctx context.Context, spaceID uuid.UUID) (func(context.Context), error) {
	col, err := mdb.GetCollection(ctx, BookingLocksColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	lock := bookingLock{
		Key:       spaceLockKey(spaceID),
		Holder:    uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(BookingLockTTL),
	}

	_, err = col.InsertOne(ctx, lock)
	if mongo.IsDuplicateKeyError(err) {
		// TTL sweeps run about once a minute, so an expired lease can linger.
		res, takeErr := col.UpdateOne(ctx,
			bson.M{"_id": lock.Key, "expires_at": bson.M{"$lt": now}},
			bson.M{"$set": bson.M{"holder": lock.Holder, "created_at": now, "expires_at": lock.ExpiresAt}},
		)
		if takeErr != nil {
			return nil, fmt.Errorf("error taking over stale lock: %v", takeErr)
		}
		if res.ModifiedCount == 0 {
			return nil, ErrLockHeld
		}
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("error acquiring lock: %v", err)
	}

	release := func(ctx context.Context) {
		_, _ = col.DeleteOne(ctx, bson.M{"_id": lock.Key, "holder": lock.Holder})
	}
	return release, nil
}
