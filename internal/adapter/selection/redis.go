package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/niksmo/refsearch/internal/core/domain"
	"github.com/niksmo/refsearch/internal/core/port"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "selection:"

var _ port.SelectionStore = (*RedisStore)(nil)

// RedisStore keeps selections as JSON values that expire ttl
// after the last save.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

func (s *RedisStore) LoadSelection(
	ctx context.Context, sessionID string,
) (domain.Selection, error) {
	const op = "RedisStore.LoadSelection"

	data, err := s.client.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Selection{}, nil
	}
	if err != nil {
		return domain.Selection{}, fmt.Errorf("%s: %w", op, err)
	}

	var sel domain.Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		return domain.Selection{}, fmt.Errorf("%s: %w", op, err)
	}
	return sel, nil
}

func (s *RedisStore) SaveSelection(
	ctx context.Context, sessionID string, sel domain.Selection,
) error {
	const op = "RedisStore.SaveSelection"

	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.client.Set(ctx, key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *RedisStore) DeleteSelection(
	ctx context.Context, sessionID string,
) error {
	const op = "RedisStore.DeleteSelection"

	if err := s.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
