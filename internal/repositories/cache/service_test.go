package cache

import (
	"context"
	"testing"
	"time"

	"simplepay/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheService(client, time.Hour), mr
}

func TestCacheService_AccountRoundTripDropsWallet(t *testing.T) {
	svc, mr := newTestCache(t)
	ctx := context.Background()

	account := &models.Account{
		ID:     4,
		Name:   "Maria",
		Email:  "maria@example.com",
		Type:   models.AccountTypeMerchant,
		Wallet: &models.Wallet{AccountID: 4, Balance: decimal.RequireFromString("10.00")},
	}
	require.NoError(t, svc.CacheAccount(ctx, account))
	assert.True(t, mr.Exists("account:id:4"))

	cached, err := svc.GetAccount(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, models.AccountTypeMerchant, cached.Type)
	assert.Nil(t, cached.Wallet)
	assert.NotNil(t, account.Wallet, "caller's account must not be mutated")
}

func TestCacheService_MissAndInvalidate(t *testing.T) {
	svc, _ := newTestCache(t)
	ctx := context.Background()

	miss, err := svc.GetAccount(ctx, 99)
	assert.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, svc.CacheAccount(ctx, &models.Account{ID: 99}))
	require.NoError(t, svc.InvalidateAccount(ctx, 99))

	miss, err = svc.GetAccount(ctx, 99)
	assert.NoError(t, err)
	assert.Nil(t, miss)
}

func TestCacheService_TTL(t *testing.T) {
	svc, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, svc.SetWithTTL(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	var out string
	found, err := svc.Get(ctx, "k", &out)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestCacheService_HealthCheck(t *testing.T) {
	svc, mr := newTestCache(t)
	assert.NoError(t, svc.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, svc.HealthCheck(context.Background()))
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := Connect(ctx, &RedisConfig{Host: mr.Host(), Port: mr.Port()})
	require.NoError(t, err)
	require.NoError(t, NewCacheService(client, time.Minute).HealthCheck(ctx))
	client.Close()

	mr.Close()
	_, err = Connect(ctx, &RedisConfig{Host: mr.Host(), Port: mr.Port()})
	assert.ErrorContains(t, err, "unreachable")
}
