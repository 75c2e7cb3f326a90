package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"simplepay/internal/models"

	"github.com/redis/go-redis/v9"
)

// CacheService stores JSON values in redis. Only immutable or explicitly
// invalidated data goes through it; wallet balances are never cached.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Client exposes the underlying redis client for stores sharing the connection.
func (s *CacheService) Client() *redis.Client {
	return s.client
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Get decodes the value at key into dest. A miss is (false, nil).
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Key generation
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// Account caching. The wallet relation is stripped: balances must always be
// read from the database.
func (s *CacheService) CacheAccount(ctx context.Context, account *models.Account) error {
	if account == nil {
		return errors.New("cannot cache nil account")
	}
	stripped := *account
	stripped.Wallet = nil
	return s.Set(ctx, s.GenerateKey("account", "id", account.ID), &stripped)
}

// GetAccount returns the cached account or (nil, nil) on a miss.
func (s *CacheService) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	found, err := s.Get(ctx, s.GenerateKey("account", "id", id), &account)
	if err != nil || !found {
		return nil, err
	}
	return &account, nil
}

func (s *CacheService) InvalidateAccount(ctx context.Context, id uint) error {
	return s.Delete(ctx, s.GenerateKey("account", "id", id))
}

func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
