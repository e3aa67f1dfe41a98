package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"fitroom-server/internal/domain"
)

const redisKeyPrefix = "chat:session:"

// RedisStore persists chat histories in Redis, one JSON document per
// session. Entries carry no TTL; an explicit clear removes them.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]domain.Turn, bool, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("session: redis get: %w", err)
	}
	var turns []domain.Turn
	if err := json.Unmarshal(raw, &turns); err != nil {
		return nil, false, fmt.Errorf("session: decode history: %w", err)
	}
	return turns, true, nil
}

func (r *RedisStore) Put(ctx context.Context, key string, turns []domain.Turn) error {
	raw, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("session: encode history: %w", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, raw, 0).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

var _ domain.SessionStore = (*RedisStore)(nil)
