package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds service configuration.
type Config struct {
	DatabaseURL      string
	MigrationsDir    string
	ServerAddr       string
	SigningKey       string
	BootstrapAPIKey  string
	BootstrapName    string
	RedisAddr        string
	NSQDAddr         string
	NotifyTopic      string
	OtpValidity      time.Duration
	OtpMaxAttempts   int
	OtpSweepInterval time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "freightboard")
		pass := getenv("POSTGRES_PASSWORD", "freightboard_pass")
		db := getenv("POSTGRES_DB", "freightboard")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}

	signingKey := getenv("TRANSITION_SIGNING_KEY", "")
	if signingKey == "" {
		return nil, fmt.Errorf("TRANSITION_SIGNING_KEY is required")
	}

	return &Config{
		DatabaseURL:      dsn,
		MigrationsDir:    getenv("MIGRATIONS_DIR", "internal/infrastructure/postgres/migrations"),
		ServerAddr:       getenv("SERVER_ADDR", "0.0.0.0:8080"),
		SigningKey:       signingKey,
		BootstrapAPIKey:  getenv("BOOTSTRAP_ADMIN_API_KEY", ""),
		BootstrapName:    getenv("BOOTSTRAP_ADMIN_NAME", ""),
		RedisAddr:        getenv("REDIS_ADDR", ""),
		NSQDAddr:         getenv("NSQD_ADDR", ""),
		NotifyTopic:      getenv("NOTIFY_TOPIC", "freightboard.notifications"),
		OtpValidity:      parseDuration(getenv("OTP_VALIDITY", "10m"), 10*time.Minute),
		OtpMaxAttempts:   parseInt(getenv("OTP_MAX_ATTEMPTS", "5"), 5),
		OtpSweepInterval: parseDuration(getenv("OTP_SWEEP_INTERVAL", "1m"), time.Minute),
		ReadTimeout:      parseDuration(getenv("SERVER_READ_TIMEOUT", "15s"), 15*time.Second),
		WriteTimeout:     parseDuration(getenv("SERVER_WRITE_TIMEOUT", "60s"), 60*time.Second),
		IdleTimeout:      parseDuration(getenv("SERVER_IDLE_TIMEOUT", "120s"), 120*time.Second),
		ShutdownTimeout:  parseDuration(getenv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}
