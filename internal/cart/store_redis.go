package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "minishop:cart:"

// RedisStore keeps each cart as a JSON string plus a user -> cart id index.
type RedisStore struct {
	rdb *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func cartKey(id string) string     { return keyPrefix + id }
func userKey(userID string) string { return keyPrefix + "user:" + userID }

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Create(ctx context.Context, c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, cartKey(c.ID), data, 0)
		if c.UserID != "" {
			p.Set(ctx, userKey(c.UserID), c.ID, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create cart %s: %w", c.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Cart, error) {
	data, err := s.rdb.Get(ctx, cartKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, ErrNotFound
	}
	if err != nil {
		return Cart{}, fmt.Errorf("get cart %s: %w", id, err)
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("decode cart %s: %w", id, err)
	}
	return c, nil
}

func (s *RedisStore) GetByUser(ctx context.Context, userID string) (Cart, error) {
	id, err := s.rdb.Get(ctx, userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return Cart{}, ErrNotFound
	}
	if err != nil {
		return Cart{}, fmt.Errorf("get cart for user %s: %w", userID, err)
	}
	return s.Get(ctx, id)
}

func (s *RedisStore) Save(ctx context.Context, c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	ok, err := s.rdb.SetXX(ctx, cartKey(c.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("save cart %s: %w", c.ID, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
