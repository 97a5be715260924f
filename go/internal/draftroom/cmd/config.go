package main

import (
	"os"
	"strconv"
	"time"
)

// Config holds the draft room server configuration, read from environment
// variables with production defaults.
type Config struct {
	Port           string
	PlayerPoolPath string

	BotDelay    time.Duration
	FillTimeout time.Duration
	Retention   time.Duration

	RedisEnabled bool
	RedisAddr    string

	NATSEnabled bool
	NATSURL     string

	DBEnabled bool
}

func loadConfig() Config {
	return Config{
		Port:           getEnv("DRAFTROOM_PORT", "8081"),
		PlayerPoolPath: getEnv("PLAYER_POOL_PATH", "config/player_pool.yaml"),

		BotDelay:    getEnvAsDuration("BOT_PICK_DELAY", 3*time.Second),
		FillTimeout: getEnvAsDuration("ROOM_FILL_TIMEOUT", 60*time.Second),
		Retention:   getEnvAsDuration("ROOM_RETENTION", 5*time.Minute),

		RedisEnabled: getEnvAsBool("REDIS_ENABLED", true),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),

		NATSEnabled: getEnvAsBool("NATS_ENABLED", true),
		NATSURL:     getEnv("NATS_URL", "nats://localhost:4222"),

		DBEnabled: getEnvAsBool("DB_ENABLED", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
