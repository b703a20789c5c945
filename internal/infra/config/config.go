package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the appliance.
type AppConfig struct {
	LogLevel    string
	Environment string
	Location    *time.Location

	DatabaseDriver string // sqlite3, postgres or memory
	DatabaseURL    string

	HTTPAddr        string // empty disables the LAN control surface
	TelegramToken   string // empty disables the bot
	OwnerTelegramID int64

	TimeSyncURL     string
	TimeSyncTimeout time.Duration

	AlertDuration  time.Duration
	SilentDuration time.Duration
	TotalBudget    time.Duration
	AlertPoll      time.Duration
	SilentPoll     time.Duration
	ControllerPoll time.Duration
	SensorHold     time.Duration
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Missing .env is fine; existing env variables win.
	_ = godotenv.Load()

	cfg := &AppConfig{
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Environment:    strings.ToLower(getEnv("ENVIRONMENT", "development")),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite3")),
		DatabaseURL:    getEnv("DATABASE_URL", "./data/reminder.db"),
		HTTPAddr:       os.Getenv("HTTP_ADDR"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TimeSyncURL:    getEnv("TIME_SYNC_URL", "https://www.google.com"),
	}
	if _, ok := os.LookupEnv("HTTP_ADDR"); !ok {
		cfg.HTTPAddr = ":8080"
	}

	switch cfg.DatabaseDriver {
	case "sqlite3", "postgres", "memory":
	default:
		return nil, fmt.Errorf("invalid DATABASE_DRIVER %q: want sqlite3, postgres or memory", cfg.DatabaseDriver)
	}

	var err error
	cfg.Location, err = time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	if ownerIDStr := os.Getenv("OWNER_TELEGRAM_ID"); ownerIDStr != "" {
		cfg.OwnerTelegramID, err = strconv.ParseInt(ownerIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OWNER_TELEGRAM_ID: %w", err)
		}
	}

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"TIME_SYNC_TIMEOUT", 5 * time.Second, &cfg.TimeSyncTimeout},
		{"SESSION_ALERT_DURATION", 60 * time.Second, &cfg.AlertDuration},
		{"SESSION_SILENT_DURATION", 300 * time.Second, &cfg.SilentDuration},
		{"SESSION_TOTAL_BUDGET", 900 * time.Second, &cfg.TotalBudget},
		{"SESSION_ALERT_POLL", 10 * time.Millisecond, &cfg.AlertPoll},
		{"SESSION_SILENT_POLL", 100 * time.Millisecond, &cfg.SilentPoll},
		{"CONTROLLER_POLL", 100 * time.Millisecond, &cfg.ControllerPoll},
		{"SENSOR_HOLD", 2 * time.Second, &cfg.SensorHold},
	}
	for _, d := range durations {
		if *d.dst, err = getEnvDuration(d.key, d.fallback); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
