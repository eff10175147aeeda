package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"log/slog"

	"github.com/daniel06264831234/dimelo/internal/app"
)

// Images is a redis-backed blob store for chat image uploads. Blobs expire
// after the configured TTL; nothing here touches the room engine.
type Images struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

// NewImages connects to redis and verifies connectivity
func NewImages(ctx context.Context, cfg app.Config, log *slog.Logger) (*Images, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Images{rdb: rdb, ttl: cfg.ImageTTL, log: log}, nil
}

// Put stores a blob under a fresh id and returns the id
func (s *Images) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty image")
	}
	id := uuid.NewString()
	key := imageKey(id)
	if err := s.rdb.HSet(ctx, key, "data", data, "type", contentType).Err(); err != nil {
		return "", err
	}
	if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
		return "", err
	}
	s.log.Debug("image.stored", "id", id, "bytes", len(data))
	return id, nil
}

// Get returns a blob and its content type, or an error if expired/unknown
func (s *Images) Get(ctx context.Context, id string) ([]byte, string, error) {
	vals, err := s.rdb.HGetAll(ctx, imageKey(id)).Result()
	if err != nil {
		return nil, "", err
	}
	data, ok := vals["data"]
	if !ok {
		return nil, "", errors.New("image not found")
	}
	return []byte(data), vals["type"], nil
}

// Close shuts down the redis connection
func (s *Images) Close() { _ = s.rdb.Close() }

// key namespacing for image blobs
func imageKey(id string) string { return "img:" + id }
