// Package middleware provides HTTP middleware components for the application.
package middleware

import (
	"context"
	"time"

	"simplepay/internal/repositories/cache"
	"simplepay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	IdempotencyHeader    = "Idempotency-Key"
	IdempotencyHitHeader = "X-Idempotency-Hit"

	idempotencyLockTTL = 30 * time.Second
)

// IdempotencyStore is implemented by cache.IdempotencyStore.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*cache.CachedResponse, error)
	Save(ctx context.Context, key string, resp cache.CachedResponse, ttl time.Duration) error
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Idempotency replays the stored response of a request carrying an already
// seen Idempotency-Key. Server errors are not stored so the client may retry.
// If the store is unreachable the request goes through unprotected.
func Idempotency(store IdempotencyStore, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(IdempotencyHeader)
		if key == "" {
			return c.Next()
		}
		key = c.Method() + ":" + c.Path() + ":" + key
		ctx := c.UserContext()

		cached, err := store.Get(ctx, key)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("idempotency lookup failed")
			return c.Next()
		}
		if cached != nil {
			log.Info().Str("key", key).Msg("idempotency cache hit")
			c.Set(IdempotencyHitHeader, "true")
			c.Set(fiber.HeaderContentType, cached.ContentType)
			return c.Status(cached.StatusCode).Send(cached.Body)
		}

		acquired, err := store.Acquire(ctx, key, idempotencyLockTTL)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("idempotency lock failed")
			return c.Next()
		}
		if !acquired {
			return utils.Error(c, fiber.StatusConflict, "REQUEST_IN_PROGRESS",
				"a request with this idempotency key is still being processed")
		}
		defer func() {
			if err := store.Release(context.Background(), key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("failed to release idempotency lock")
			}
		}()

		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			return nil
		}
		resp := cache.CachedResponse{
			StatusCode:  status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Save(context.Background(), key, resp, ttl); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to save idempotent response")
		}
		return nil
	}
}
