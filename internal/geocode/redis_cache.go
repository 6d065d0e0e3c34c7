package geocode

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joshua-takyi/rentyclub/internal/models"
)

const cachePrefix = "geocode:"

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (r *RedisCache) Get(ctx context.Context, address string) (models.Coordinates, bool, error) {
	raw, err := r.rdb.Get(ctx, cachePrefix+address).Bytes()
	if err == redis.Nil {
		return models.Coordinates{}, false, nil
	}
	if err != nil {
		return models.Coordinates{}, false, err
	}

	var c models.Coordinates
	if err := json.Unmarshal(raw, &c); err != nil {
		return models.Coordinates{}, false, err
	}
	return c, true, nil
}

func (r *RedisCache) Set(ctx context.Context, address string, c models.Coordinates, ttl time.Duration) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, cachePrefix+address, raw, ttl).Err()
}
