package cache_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-indicator-client/cache"
	"github.com/stretchr/testify/require"
)

func TestStore_SetGet(t *testing.T) {
	s := cache.New()

	s.Set("units", []string{"ICU", "ER"}, time.Minute)

	v, ok := s.Get("units")
	require.True(t, ok)
	require.Equal(t, []string{"ICU", "ER"}, v)
}

func TestStore_Expiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := cache.New(cache.WithNowTime(func() time.Time { return now }))

	s.Set("units", "unit-list", 30*time.Minute)

	t.Run("fresh read within TTL", func(t *testing.T) {
		now = now.Add(10 * time.Minute)
		v, ok := s.Get("units")
		require.True(t, ok)
		require.Equal(t, "unit-list", v)
	})

	t.Run("expired read is a miss", func(t *testing.T) {
		now = now.Add(21 * time.Minute)
		v, ok := s.Get("units")
		require.False(t, ok)
		require.Nil(t, v)
	})

	t.Run("expired entry is lazily evicted", func(t *testing.T) {
		require.Equal(t, 0, s.Len())
	})
}

func TestStore_MissIndistinguishableFromExpired(t *testing.T) {
	now := time.Now()
	s := cache.New(cache.WithNowTime(func() time.Time { return now }))

	s.Set("expired", "v", time.Second)
	now = now.Add(2 * time.Second)

	expiredVal, expiredOK := s.Get("expired")
	missVal, missOK := s.Get("never-set")

	require.Equal(t, missOK, expiredOK)
	require.Equal(t, missVal, expiredVal)
}

func TestStore_Overwrite(t *testing.T) {
	s := cache.New()

	s.Set("k", "old", time.Minute)
	s.Set("k", "new", time.Minute)

	v, ok := s.Get("k")
	require.True(t, ok)
	require.Equal(t, "new", v)
}

func TestStore_Invalidate(t *testing.T) {
	s := cache.New()

	s.Set("k", "v", time.Hour)
	s.Invalidate("k")

	_, ok := s.Get("k")
	require.False(t, ok)
}

func TestStore_InvalidatePrefix(t *testing.T) {
	s := cache.New()

	s.Set("entries:ICU:2025-06", "a", time.Hour)
	s.Set("entries:ER:2025-06", "b", time.Hour)
	s.Set("units", "c", time.Hour)

	s.InvalidatePrefix("entries:")

	_, ok := s.Get("entries:ICU:2025-06")
	require.False(t, ok)
	_, ok = s.Get("entries:ER:2025-06")
	require.False(t, ok)
	_, ok = s.Get("units")
	require.True(t, ok)
}

func TestStore_Clear(t *testing.T) {
	s := cache.New()

	s.Set("a", 1, time.Hour)
	s.Set("b", 2, time.Hour)

	s.Clear()

	require.Equal(t, 0, s.Len())
	_, ok := s.Get("a")
	require.False(t, ok)
}
