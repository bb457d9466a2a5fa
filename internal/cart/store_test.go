package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb)
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemStore() },
		"redis":  func(t *testing.T) Store { return newRedisStore(t) },
	}

	for name, mk := range stores {
		t.Run(name, func(t *testing.T) {
			s := mk(t)
			ctx := context.Background()
			require.NoError(t, s.Ping(ctx))

			now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			c := Cart{ID: "c_1", UserID: "u_1", Items: []Item{}, CreatedAt: now, UpdatedAt: now}
			require.NoError(t, s.Create(ctx, c))

			got, err := s.Get(ctx, "c_1")
			require.NoError(t, err)
			assert.Equal(t, c, got)

			byUser, err := s.GetByUser(ctx, "u_1")
			require.NoError(t, err)
			assert.Equal(t, "c_1", byUser.ID)

			c.Items = append(c.Items, Item{ProductID: 1, Qty: 2})
			require.NoError(t, s.Save(ctx, c))

			got, err = s.Get(ctx, "c_1")
			require.NoError(t, err)
			assert.Equal(t, []Item{{ProductID: 1, Qty: 2}}, got.Items)

			_, err = s.Get(ctx, "c_404")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = s.GetByUser(ctx, "u_404")
			assert.ErrorIs(t, err, ErrNotFound)

			err = s.Save(ctx, Cart{ID: "c_404"})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}
