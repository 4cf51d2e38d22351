package main

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// config is read from the environment.
type config struct {
	DatabaseURL     string
	Port            string
	LogLevel        string
	Env             string
	MaxConns        int
	ConnIdleTimeout time.Duration
	Migrate         bool
}

func (c config) development() bool {
	return c.Env == "development"
}

func loadConfig() (config, error) {
	cfg := config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Port:            getEnv("APP_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Env:             getEnv("APP_ENV", "development"),
		MaxConns:        getEnvInt("DB_MAX_CONNS", 10),
		ConnIdleTimeout: getEnvDuration("DB_CONN_IDLE_TIMEOUT", 30*time.Minute),
		Migrate:         getEnv("DB_MIGRATE", "true") == "true",
	}
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("required environment variable DATABASE_URL not set")
	}
	if cfg.MaxConns <= 0 {
		return cfg, fmt.Errorf("DB_MAX_CONNS must be positive, got %d", cfg.MaxConns)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
