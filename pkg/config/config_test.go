package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.SEOJob.Concurrency != 3 {
		t.Errorf("expected default concurrency 3, got %d", cfg.SEOJob.Concurrency)
	}
	if cfg.SEOJob.GenerateTimeout != 30*time.Second {
		t.Errorf("expected 30s generate timeout, got %s", cfg.SEOJob.GenerateTimeout)
	}
	if cfg.SEOJob.StaleAfter != 15*time.Minute {
		t.Errorf("expected 15m stale threshold, got %s", cfg.SEOJob.StaleAfter)
	}
	if cfg.Archive.Enabled() {
		t.Error("archive should be disabled without a bucket")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SEOJOB_CONCURRENCY", "5")
	t.Setenv("SEOJOB_GENERATE_TIMEOUT", "45s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("METAGEN_PROVIDER", "anthropic")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.SEOJob.Concurrency != 5 || cfg.SEOJob.GenerateTimeout != 45*time.Second {
		t.Errorf("overrides not applied: %+v", cfg.SEOJob)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.Server.CORSOrigins)
	}
	if cfg.Generator.Provider != "anthropic" {
		t.Errorf("expected anthropic provider, got %s", cfg.Generator.Provider)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SEOJOB_BATCH_SIZE=25\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SEOJOB_BATCH_SIZE") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SEOJob.BatchSize != 25 {
		t.Errorf("expected batch size from env file, got %d", cfg.SEOJob.BatchSize)
	}
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("missing env file should be ignored, got %v", err)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if c.DSN() != want {
		t.Fatalf("DSN() = %q", c.DSN())
	}
}

func TestLoad_ArchiveBackend(t *testing.T) {
	t.Setenv("SEOJOB_ARCHIVE_BUCKET", "reports")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Archive.Backend != "s3" || !cfg.Archive.Enabled() {
		t.Errorf("expected s3 archive enabled by bucket, got %+v", cfg.Archive)
	}

	t.Setenv("SEOJOB_ARCHIVE_BACKEND", "local")
	t.Setenv("SEOJOB_ARCHIVE_DIR", t.TempDir())
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Archive.Backend != "local" || !cfg.Archive.Enabled() {
		t.Errorf("expected local archive, got %+v", cfg.Archive)
	}
}
