package config

// ArchiveConfig configures where batch reports are stored.
// Backend is "s3", "local" or empty (disabled).
type ArchiveConfig struct {
	Backend string
	Bucket  string
	Prefix  string
	Region  string
	Dir     string
}

// Enabled reports whether an archive backend is configured
func (c ArchiveConfig) Enabled() bool {
	switch c.Backend {
	case "s3":
		return c.Bucket != ""
	case "local":
		return c.Dir != ""
	default:
		return false
	}
}

func loadArchiveConfig() ArchiveConfig {
	bucket := getEnv("SEOJOB_ARCHIVE_BUCKET", "")
	backend := ""
	if bucket != "" {
		backend = "s3"
	}
	return ArchiveConfig{
		Backend: getEnv("SEOJOB_ARCHIVE_BACKEND", backend),
		Bucket:  bucket,
		Prefix:  getEnv("SEOJOB_ARCHIVE_PREFIX", "seo-batches"),
		Region:  getEnv("SEOJOB_ARCHIVE_REGION", getEnv("AWS_REGION", "us-east-1")),
		Dir:     getEnv("SEOJOB_ARCHIVE_DIR", "./data/seo-batches"),
	}
}
