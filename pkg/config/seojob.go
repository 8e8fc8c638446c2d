package config

import "time"

// SEOJobConfig configures the metadata job queue worker and scheduler.
type SEOJobConfig struct {
	// Store selects the job/content backend: "postgres" or "memory".
	Store string

	Concurrency      int
	BatchSize        int
	GenerateTimeout  time.Duration
	StaleAfter       time.Duration
	Interval         time.Duration
	SchedulerEnabled bool
	AutoEnqueue      bool

	// RateLimitPerMinute caps generator calls across all processes. Zero disables it.
	RateLimitPerMinute int
}

func loadSEOJobConfig() SEOJobConfig {
	return SEOJobConfig{
		Store:              getEnv("SEOJOB_STORE", "postgres"),
		Concurrency:        getEnvInt("SEOJOB_CONCURRENCY", 3),
		BatchSize:          getEnvInt("SEOJOB_BATCH_SIZE", 10),
		GenerateTimeout:    getEnvDuration("SEOJOB_GENERATE_TIMEOUT", 30*time.Second),
		StaleAfter:         getEnvDuration("SEOJOB_STALE_AFTER", 15*time.Minute),
		Interval:           getEnvDuration("SEOJOB_INTERVAL", time.Minute),
		SchedulerEnabled:   getEnvBool("SEOJOB_SCHEDULER_ENABLED", false),
		AutoEnqueue:        getEnvBool("SEOJOB_AUTO_ENQUEUE", false),
		RateLimitPerMinute: getEnvInt("SEOJOB_RATE_LIMIT_PER_MINUTE", 0),
	}
}
