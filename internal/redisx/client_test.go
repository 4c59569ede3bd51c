package redisx

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

type sample struct {
	Name  string `json:"nombre"`
	Stock int    `json:"stock"`
}

func TestJSONRoundTripWithTTL(t *testing.T) {
	rdb, mr := setupRedis(t)
	ctx := context.Background()
	key := fmt.Sprintf(KeyProduct, 7)

	require.NoError(t, SetJSON(ctx, rdb, key, sample{Name: "Gorra", Stock: 3}, TTLProducts))
	assert.Equal(t, TTLProducts, mr.TTL(key))

	var got sample
	require.NoError(t, GetJSON(ctx, rdb, key, &got))
	assert.Equal(t, sample{Name: "Gorra", Stock: 3}, got)
}

func TestGetJSON_Miss(t *testing.T) {
	rdb, _ := setupRedis(t)

	var got sample
	err := GetJSON(context.Background(), rdb, KeyProductList, &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestGetJSON_Corrupt(t *testing.T) {
	rdb, mr := setupRedis(t)
	require.NoError(t, mr.Set(KeyProductList, "{not json"))

	var got []sample
	err := GetJSON(context.Background(), rdb, KeyProductList, &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestMarkOnce(t *testing.T) {
	rdb, mr := setupRedis(t)
	ctx := context.Background()
	key := fmt.Sprintf(KeyDedup, "notifier", "evt-1")

	first, err := MarkOnce(ctx, rdb, key, time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := MarkOnce(ctx, rdb, key, time.Hour)
	require.NoError(t, err)
	assert.False(t, second)

	ok, err := Exists(ctx, rdb, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Hour, mr.TTL(key))
}
