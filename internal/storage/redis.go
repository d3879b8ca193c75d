package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "imgctl:session:"

// RedisStorage keeps the session under one redis key per profile.
type RedisStorage struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStorage connects to addr and checks the connection.
func NewRedisStorage(ctx context.Context, addr, password string, db int, profile string) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return NewRedisStorageWithClient(client, profile), nil
}

// NewRedisStorageWithClient wraps an existing client.
func NewRedisStorageWithClient(client redis.UniversalClient, profile string) *RedisStorage {
	if profile == "" {
		profile = "default"
	}
	return &RedisStorage{client: client, key: sessionKeyPrefix + profile}
}

func (r *RedisStorage) Load(ctx context.Context) (models.Session, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Session{}, nil
		}
		return models.Session{}, fmt.Errorf("redis get error: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return models.Session{}, fmt.Errorf("failed to parse stored session: %w", err)
	}
	return session, nil
}

func (r *RedisStorage) Save(ctx context.Context, session models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

func (r *RedisStorage) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}

// Close releases the redis connection pool.
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
