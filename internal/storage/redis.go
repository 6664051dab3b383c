package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xxxsen/atomdocs/internal/model"
)

const defaultRedisKey = "atom-docs-data"

type redisConfig struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// redisStore keeps the serialised site under a single key, the same shape
// a browser keeps in local storage.
type redisStore struct {
	client *redis.Client
	key    string
}

func init() {
	Register("redis", createRedisStore)
}

func createRedisStore(args interface{}) (Store, error) {
	cfg := &redisConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client, cfg.Key), nil
}

func NewRedisStore(client *redis.Client, key string) Store {
	if key == "" {
		key = defaultRedisKey
	}
	return &redisStore{client: client, key: key}
}

func (s *redisStore) Type() string {
	return "redis"
}

func (s *redisStore) Read(ctx context.Context) (*model.SiteData, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.EmptySiteData(), nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeSiteData(raw)
}

func (s *redisStore) Write(ctx context.Context, data *model.SiteData) error {
	raw, err := encodeSiteData(data)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
