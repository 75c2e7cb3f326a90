package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("SP_TEST_STRING", "")
	t.Setenv("SP_TEST_INT", "not-a-number")

	assert.Equal(t, "fallback", GetEnv("SP_TEST_STRING", "fallback"))
	assert.Equal(t, 7, GetIntEnv("SP_TEST_INT", 7))
	assert.Equal(t, 7, GetIntEnv("SP_TEST_MISSING", 7))
}

func TestGetDurationEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "go duration", value: "750ms", want: 750 * time.Millisecond},
		{name: "bare seconds", value: "3", want: 3 * time.Second},
		{name: "garbage", value: "soon", want: 5 * time.Second},
		{name: "empty", value: "", want: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SP_TEST_DURATION", tt.value)
			assert.Equal(t, tt.want, GetDurationEnv("SP_TEST_DURATION", 5*time.Second))
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTHORIZER_TIMEOUT", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("ENV", "production")
	t.Setenv("IDEMPOTENCY_TTL", "")
	t.Setenv("NOTIFICATION_MAX_RETRY_DELAY", "")

	cfg := Load()

	assert.Equal(t, 5*time.Second, cfg.AuthorizerTimeout)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.True(t, cfg.IsProduction())
	assert.Contains(t, cfg.PostgresDSN(), "sslmode=disable")
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 5*time.Minute, cfg.NotificationMaxRetryDelay)
	assert.Equal(t, 100, cfg.NotificationBatchSize)
}
