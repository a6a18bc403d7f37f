package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type record struct {
	Name string `json:"name"`
}

func TestMemoryCacheLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache[record]()
	c.SetClock(func() time.Time { return now })

	missing, err := c.Get(ctx, "cache:missing")
	require.NoError(t, err)
	require.Nil(t, missing)

	require.NoError(t, c.Set(ctx, "cache:a", &record{Name: "first"}, time.Minute))
	require.NoError(t, c.Set(ctx, "cache:a", &record{Name: "second"}, time.Minute))

	got, err := c.Get(ctx, "cache:a")
	require.NoError(t, err)
	require.Equal(t, "second", got.Name)

	now = now.Add(time.Minute)
	got, err = c.Get(ctx, "cache:a")
	require.NoError(t, err)
	require.Nil(t, got)
	require.Equal(t, 0, c.Len())
}

func TestMemoryCacheDeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewMemoryCache[record]()

	require.NoError(t, c.Set(ctx, "k", &record{Name: "x"}, 0))
	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Delete(ctx, "k"))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, got)
}
