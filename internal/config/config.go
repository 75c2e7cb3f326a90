package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds every setting the services read at startup.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	RabbitMQURL string
	MongoURI    string
	MongoDB     string

	IdempotencyTTL  time.Duration
	RateLimitMax    int
	RateLimitWindow time.Duration
	ReconcileAfter  time.Duration

	AuthorizerURL     string
	AuthorizerToken   string
	AuthorizerTimeout time.Duration

	NotifierURL               string
	NotificationBatchSize     int
	NotificationPollInterval  time.Duration
	NotificationRetryDelay    time.Duration
	NotificationMaxRetryDelay time.Duration
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file found, using process environment")
	}
}

// Load reads the environment (after LoadEnv) into a Config.
func Load() *Config {
	LoadEnv()

	return &Config{
		Env:      GetEnv("ENV", "development"),
		Port:     GetEnv("PORT", "3000"),
		LogLevel: GetEnv("LOG_LEVEL", "info"),

		DBDriver:   GetEnv("DB_DRIVER", "postgres"),
		DBHost:     GetEnv("DB_HOST", "localhost"),
		DBPort:     GetEnv("DB_PORT", "5432"),
		DBUser:     GetEnv("DB_USER", "postgres"),
		DBPassword: GetEnv("DB_PASSWORD", "postgres"),
		DBName:     GetEnv("DB_NAME", "simplepay"),
		SQLitePath: GetEnv("SQLITE_PATH", "simplepay.db"),

		RedisHost:     GetEnv("REDIS_HOST", "localhost"),
		RedisPort:     GetEnv("REDIS_PORT", "6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetIntEnv("REDIS_DB", 0),

		RabbitMQURL: GetEnv("RABBITMQ_URL", ""),
		MongoURI:    GetEnv("MONGO_URI", ""),
		MongoDB:     GetEnv("MONGO_DB", "simplepay"),

		IdempotencyTTL:  GetDurationEnv("IDEMPOTENCY_TTL", 24*time.Hour),
		RateLimitMax:    GetIntEnv("RATE_LIMIT_MAX", 60),
		RateLimitWindow: GetDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		ReconcileAfter:  GetDurationEnv("RECONCILE_AFTER", 5*time.Minute),

		AuthorizerURL:     GetEnv("AUTHORIZER_URL", "https://util.devi.tools/api/v2/authorize"),
		AuthorizerToken:   GetEnv("AUTHORIZER_TOKEN", ""),
		AuthorizerTimeout: GetDurationEnv("AUTHORIZER_TIMEOUT", 5*time.Second),

		NotifierURL:               GetEnv("NOTIFIER_URL", "https://util.devi.tools/api/v1/notify"),
		NotificationBatchSize:     GetIntEnv("NOTIFICATION_BATCH_SIZE", 100),
		NotificationPollInterval:  GetDurationEnv("NOTIFICATION_POLL_INTERVAL", time.Second),
		NotificationRetryDelay:    GetDurationEnv("NOTIFICATION_RETRY_DELAY", 2*time.Second),
		NotificationMaxRetryDelay: GetDurationEnv("NOTIFICATION_MAX_RETRY_DELAY", 5*time.Minute),
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv parses values like "5s" or "1m". Bare integers are seconds.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=disable"
}
