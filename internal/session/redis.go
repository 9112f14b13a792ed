package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openstax/rope/internal/config"
	"github.com/openstax/rope/internal/model"
	roperrors "github.com/openstax/rope/pkg/errors"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "session:"

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisStore{
		client: rdb,
		ttl:    cfg.Session.MaxAge,
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*model.SessionUser, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, roperrors.ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}

	var user model.SessionUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *RedisStore) Set(ctx context.Context, id string, user model.SessionUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+id, data, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, keyPrefix+id).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
