package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNoRecord = errors.New("no tracking record")

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    30 * 24 * time.Hour,
	}
}

func (r *RedisStore) Save(ctx context.Context, userID string, record Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal tracking record failed: %w", err)
	}
	if ret := r.client.Set(ctx, trackingKey(userID), string(raw), r.ttl); ret.Err() != nil {
		return fmt.Errorf("redis set failed: %w", ret.Err())
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, userID string) (*Record, error) {
	data, err := r.client.Get(ctx, trackingKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal tracking record failed: %w", err)
	}
	return &record, nil
}

func trackingKey(userID string) string {
	return fmt.Sprintf("tracking:%s", userID)
}
