package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedListing struct {
	ID    uint    `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
}

func setupTestCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

func TestGetSetJSON(t *testing.T) {
	setupTestCache(t)
	ctx := context.Background()

	var got cachedListing
	found, err := GetJSON(ctx, ListingKey(1), &got)
	require.NoError(t, err)
	assert.False(t, found)

	want := cachedListing{ID: 1, Title: "Bicicleta Pegas", Price: 1200}
	require.NoError(t, SetJSON(ctx, ListingKey(1), want, ListingTTL))

	found, err = GetJSON(ctx, ListingKey(1), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestGetJSONDisabledCache(t *testing.T) {
	SetClient(nil)

	var got cachedListing
	found, err := GetJSON(context.Background(), ListingKey(1), &got)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, SetJSON(context.Background(), ListingKey(1), got, time.Minute))
}

func TestAside(t *testing.T) {
	setupTestCache(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedListing) func() error {
		return func() error {
			fetches++
			*dest = cachedListing{ID: 2, Title: "Trotineta", Price: 600}
			return nil
		}
	}

	var first cachedListing
	require.NoError(t, Aside(ctx, ListingKey(2), &first, ListingTTL, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "Trotineta", first.Title)

	// Second read is served from the cache.
	var second cachedListing
	require.NoError(t, Aside(ctx, ListingKey(2), &second, ListingTTL, fetch(&second)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, first, second)
}

func TestAsidePropagatesFetchError(t *testing.T) {
	setupTestCache(t)

	wantErr := errors.New("source unavailable")
	var dest cachedListing
	err := Aside(context.Background(), ListingKey(3), &dest, ListingTTL, func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestInvalidate(t *testing.T) {
	setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey(9), cachedListing{ID: 9}, UserTTL))
	InvalidateUser(ctx, 9)

	var got cachedListing
	found, err := GetJSON(ctx, UserKey(9), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKeys(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "user:7", UserKey(7))
	assert.Equal(t, "listing:12", ListingKey(12))
}
