package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"simplepay/internal/repositories/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdempotentApp(t *testing.T, status int) (*fiber.App, *int, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	calls := 0
	app := fiber.New()
	app.Post("/pay", Idempotency(cache.NewIdempotencyStore(client), time.Hour), func(c *fiber.Ctx) error {
		calls++
		return c.Status(status).JSON(fiber.Map{"call": calls})
	})
	return app, &calls, mr
}

func post(t *testing.T, app *fiber.App, key string) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/pay", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp.Header.Get(IdempotencyHitHeader)
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	app, calls, _ := newIdempotentApp(t, fiber.StatusCreated)

	status, body, hit := post(t, app, "k1")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"call":1}`, body)
	assert.Empty(t, hit)

	status, body, hit = post(t, app, "k1")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"call":1}`, body)
	assert.Equal(t, "true", hit)
	assert.Equal(t, 1, *calls)

	_, body, _ = post(t, app, "k2")
	assert.JSONEq(t, `{"call":2}`, body)
}

func TestIdempotency_WithoutKeyAlwaysRuns(t *testing.T) {
	app, calls, _ := newIdempotentApp(t, fiber.StatusOK)
	post(t, app, "")
	post(t, app, "")
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_ServerErrorsAreNotStored(t *testing.T) {
	app, calls, _ := newIdempotentApp(t, fiber.StatusInternalServerError)
	post(t, app, "k1")
	post(t, app, "k1")
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_AcceptedIsReplayed(t *testing.T) {
	app, calls, _ := newIdempotentApp(t, fiber.StatusAccepted)

	post(t, app, "k1")
	status, body, hit := post(t, app, "k1")
	assert.Equal(t, fiber.StatusAccepted, status)
	assert.JSONEq(t, `{"call":1}`, body)
	assert.Equal(t, "true", hit)
	assert.Equal(t, 1, *calls)
}

func TestIdempotency_InFlightKeyConflicts(t *testing.T) {
	app, calls, mr := newIdempotentApp(t, fiber.StatusOK)
	require.NoError(t, mr.Set("idempotency:lock:POST:/pay:k1", "1"))

	status, body, _ := post(t, app, "k1")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Contains(t, body, "REQUEST_IN_PROGRESS")
	assert.Zero(t, *calls)
}

func TestIdempotency_FailsOpenWithoutRedis(t *testing.T) {
	app, calls, mr := newIdempotentApp(t, fiber.StatusOK)
	mr.Close()

	status, _, _ := post(t, app, "k1")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, *calls)
}

func TestRateLimit(t *testing.T) {
	app := fiber.New()
	app.Get("/", RateLimit(2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
