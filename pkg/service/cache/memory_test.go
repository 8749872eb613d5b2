package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/vendops-lab/vigil/pkg/service/cache"
	"github.com/vendops-lab/vigil/pkg/utils/clock"
)

func TestMemoryCache(t *testing.T) {
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	ctx := clock.With(context.Background(), func() time.Time { return now })

	c := cache.NewMemory()

	t.Run("miss on empty cache", func(t *testing.T) {
		_, err := c.Get(ctx, "driver:vm-001")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, cache.ErrCacheMiss))
	})

	t.Run("set and get", func(t *testing.T) {
		gt.NoError(t, c.Set(ctx, "driver:vm-001", []byte(`{"driver":"d-100"}`), 5*time.Minute))
		got := gt.R1(c.Get(ctx, "driver:vm-001")).NoError(t)
		gt.Equal(t, got, []byte(`{"driver":"d-100"}`))
	})

	t.Run("expires after ttl", func(t *testing.T) {
		gt.NoError(t, c.Set(ctx, "driver:vm-002", []byte("x"), 5*time.Minute))

		later := clock.With(context.Background(), func() time.Time {
			return now.Add(5*time.Minute + time.Second)
		})
		_, err := c.Get(later, "driver:vm-002")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, cache.ErrCacheMiss))
	})

	t.Run("delete invalidates", func(t *testing.T) {
		gt.NoError(t, c.Set(ctx, "driver:vm-003", []byte("x"), time.Hour))
		gt.NoError(t, c.Delete(ctx, "driver:vm-003"))
		_, err := c.Get(ctx, "driver:vm-003")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, cache.ErrCacheMiss))
	})

	t.Run("overwrite refreshes value and ttl", func(t *testing.T) {
		gt.NoError(t, c.Set(ctx, "driver:vm-004", []byte("old"), time.Minute))
		gt.NoError(t, c.Set(ctx, "driver:vm-004", []byte("new"), time.Hour))

		later := clock.With(context.Background(), func() time.Time {
			return now.Add(30 * time.Minute)
		})
		got := gt.R1(c.Get(later, "driver:vm-004")).NoError(t)
		gt.Equal(t, got, []byte("new"))
	})
}
