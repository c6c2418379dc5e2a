package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/muzz-matcher/internal/config"
)

// LikeCountTTL is how long a cached liked-you counter lives without access.
const LikeCountTTL = time.Hour

// geoKey is the sorted set holding visible user locations.
const geoKey = "geo:users"

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

// NewFromClient wraps an existing client (tests, shared pools).
func NewFromClient(c *redis.Client) *RedisCache {
	return &RedisCache{Client: c}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForLikeCount generates Redis key for a user's liked-you count
func (c *RedisCache) KeyForLikeCount(userID uint64) string {
	return fmt.Sprintf("likes:count:%d", userID)
}

// SetLikeCount stores the counter and refreshes its TTL.
func (c *RedisCache) SetLikeCount(ctx context.Context, userID uint64, count int64) error {
	return c.Client.Set(ctx, c.KeyForLikeCount(userID), count, LikeCountTTL).Err()
}

// GetLikeCount returns the cached counter. ok is false on a cache miss.
func (c *RedisCache) GetLikeCount(ctx context.Context, userID uint64) (n int64, ok bool, err error) {
	key := c.KeyForLikeCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err = strconv.ParseInt(val, 10, 64)
	if err != nil || n < 0 {
		// corrupt entry; let the caller recount
		_ = c.Client.Del(ctx, key).Err()
		return 0, false, nil
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, LikeCountTTL).Err()
	return n, true, nil
}

// InvalidateLikeCount drops the cached counter.
func (c *RedisCache) InvalidateLikeCount(ctx context.Context, userID uint64) error {
	return c.Client.Del(ctx, c.KeyForLikeCount(userID)).Err()
}

// GeoAdd indexes a user's position.
func (c *RedisCache) GeoAdd(ctx context.Context, userID uint64, lat, lon float64) error {
	return c.Client.GeoAdd(ctx, geoKey, &redis.GeoLocation{
		Name:      strconv.FormatUint(userID, 10),
		Latitude:  lat,
		Longitude: lon,
	}).Err()
}

// GeoRemove drops a user from the index.
func (c *RedisCache) GeoRemove(ctx context.Context, userID uint64) error {
	return c.Client.ZRem(ctx, geoKey, strconv.FormatUint(userID, 10)).Err()
}

// Nearby is a user found by GeoRadius.
type Nearby struct {
	UserID     uint64
	DistanceKm float64
}

// GeoRadius lists indexed users within radiusKm of the point, nearest first.
func (c *RedisCache) GeoRadius(ctx context.Context, lat, lon, radiusKm float64, count int) ([]Nearby, error) {
	locs, err := c.Client.GeoRadius(ctx, geoKey, lon, lat, &redis.GeoRadiusQuery{
		Radius:   radiusKm,
		Unit:     "km",
		WithDist: true,
		Count:    count,
		Sort:     "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Nearby, 0, len(locs))
	for _, l := range locs {
		id, err := strconv.ParseUint(l.Name, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, Nearby{UserID: id, DistanceKm: l.Dist})
	}
	return out, nil
}

// Publish sends payload on a pub/sub channel.
func (c *RedisCache) Publish(ctx context.Context, channel string, payload []byte) error {
	return c.Client.Publish(ctx, channel, payload).Err()
}
