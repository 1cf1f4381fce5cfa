package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AgenciasDSN     string
	AppWebDSN       string
	SessionSecret   []byte
	SessionLifetime int // minutes
	SessionDir      string
	CacheDriver     string
	CacheDir        string
	CacheTTL        int // seconds
	RedisAddr       string
	ExportDir       string
	RateLimit       int
	RateWindow      int // seconds
	Port            string
	LogLevel        string
	Environment     string
	Debug           bool
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	config := &Config{}

	config.AgenciasDSN = mysqlDSN("DB_AGENCIAS", "agencias")
	config.AppWebDSN = mysqlDSN("DB_APPWEB", "appweb")

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}
	if len(sessionSecret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 characters long")
	}
	config.SessionSecret = []byte(sessionSecret)

	config.SessionDir = getEnvWithDefault("SESSION_DIR", "./storage/sessions")
	config.CacheDriver = getEnvWithDefault("CACHE_DRIVER", "file")
	config.CacheDir = getEnvWithDefault("CACHE_DIR", "./storage/cache")
	config.RedisAddr = getEnvWithDefault("REDIS_ADDR", "localhost:6379")
	config.ExportDir = getEnvWithDefault("EXPORT_DIR", "./storage/exports")
	config.Port = getEnvWithDefault("PORT", "8080")
	config.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	config.Environment = getEnvWithDefault("ENVIRONMENT", "development")
	config.Debug = getEnvWithDefault("APP_DEBUG", "false") == "true"

	var err error
	if config.SessionLifetime, err = envInt("SESSION_LIFETIME", 120); err != nil {
		return nil, err
	}
	if config.CacheTTL, err = envInt("CACHE_TTL", 300); err != nil {
		return nil, err
	}
	if config.RateLimit, err = envInt("RATE_LIMIT", 100); err != nil {
		return nil, err
	}
	if config.RateWindow, err = envInt("RATE_WINDOW", 60); err != nil {
		return nil, err
	}

	return config, nil
}

// mysqlDSN assembles a go-sql-driver DSN from the per-database env variables,
// e.g. DB_AGENCIAS_HOST, DB_AGENCIAS_USER.
func mysqlDSN(prefix, defaultName string) string {
	host := getEnvWithDefault(prefix+"_HOST", "localhost")
	port := getEnvWithDefault(prefix+"_PORT", "3306")
	user := getEnvWithDefault(prefix+"_USER", "root")
	pass := os.Getenv(prefix + "_PASSWORD")
	name := getEnvWithDefault(prefix+"_NAME", defaultName)

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4", user, pass, host, port, name)
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}
