package config

import (
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/yukikurage/vuln-kanban-api/internal/constants"
)

// Auth modes
const (
	AuthModeMock        = "mock"
	AuthModeCredentials = "credentials"
)

// Session store backends
const (
	SessionStoreCookie = "cookie"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Port             string
	GinMode          string
	LogLevel         string
	SessionSecret    string
	SessionStore     string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	EventsEnabled    bool
	EventsChannel    string
	AuthMode         string
	AuthDelay        time.Duration
	SeedFile         string
	ActivityDBDriver string
	ActivityDBDSN    string
	OpenAIAPIKey     string
}

func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		SessionSecret:    getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		SessionStore:     getEnv("SESSION_STORE", SessionStoreCookie),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		EventsEnabled:    getEnvBool("EVENTS_ENABLED", false),
		EventsChannel:    getEnv("REDIS_EVENTS_CHANNEL", constants.DefaultEventsChannel),
		AuthMode:         getEnv("AUTH_MODE", AuthModeMock),
		AuthDelay:        getEnvDuration("AUTH_DELAY", constants.DefaultAuthDelay),
		SeedFile:         getEnv("SEED_FILE", ""),
		ActivityDBDriver: getEnv("ACTIVITY_DB_DRIVER", ""),
		ActivityDBDSN:    getEnv("ACTIVITY_DB_DSN", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
	}
}

// RedisAddr returns host:port of the configured Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.WithField("key", key).Warnf("invalid boolean %q, using default %t", value, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		log.WithField("key", key).Warnf("invalid duration %q, using default %s", value, defaultValue)
		return defaultValue
	}
	return d
}
