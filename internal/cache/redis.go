package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"hotelier/internal/models"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Enabled   bool
	Addr      string
	Password  string
	DB        int
	RatingTTL time.Duration
}

// NewRedisClient connects and pings the server.
func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// RatingCache keeps computed room ratings until a review invalidates them
// or the TTL runs out.
type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRatingCache(client *redis.Client, ttl time.Duration) *RatingCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RatingCache{client: client, ttl: ttl}
}

func ratingKey(roomID int64) string {
	return "room:rating:" + strconv.FormatInt(roomID, 10)
}

// GetRating returns nil on a miss.
func (c *RatingCache) GetRating(ctx context.Context, roomID int64) (*models.RoomRating, error) {
	data, err := c.client.Get(ctx, ratingKey(roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}

	var rating models.RoomRating
	if err := json.Unmarshal(data, &rating); err != nil {
		return nil, fmt.Errorf("invalid rating in cache: %w", err)
	}
	return &rating, nil
}

func (c *RatingCache) SetRating(ctx context.Context, rating models.RoomRating) error {
	data, err := json.Marshal(rating)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ratingKey(rating.RoomID), data, c.ttl).Err()
}

func (c *RatingCache) InvalidateRating(ctx context.Context, roomID int64) error {
	return c.client.Del(ctx, ratingKey(roomID)).Err()
}
