package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/joho/godotenv"
)

// Config is the full application configuration, one section per concern.
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	SEOJob    SEOJobConfig
	Generator GeneratorConfig
	Archive   ArchiveConfig
	Server    ServerConfig
}

// Load reads envFile (when present) into the process environment and builds
// the configuration. A missing env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errx.Wrap(err, "failed to load env file", errx.TypeInternal).
				WithDetail("path", envFile)
		}
	}

	return &Config{
		Database:  loadDatabaseConfig(),
		Redis:     loadRedisConfig(),
		SEOJob:    loadSEOJobConfig(),
		Generator: loadGeneratorConfig(),
		Archive:   loadArchiveConfig(),
		Server:    loadServerConfig(),
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvStringSlice(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
