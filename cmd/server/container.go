// Root composition for the admin server. Owns infrastructure and composes
// the job queue container on top of it.
package main

import (
	"context"

	"github.com/Abraxas-365/seoqueue/pkg/config"
	"github.com/Abraxas-365/seoqueue/pkg/logx"
	"github.com/Abraxas-365/seoqueue/pkg/seojob/seojobcontainer"
	"github.com/Abraxas-365/seoqueue/pkg/seojob/seojobinfra"
)

// Container holds shared infrastructure and composed module containers.
type Container struct {
	Config *config.Config
	Infra  *seojobcontainer.Infra

	SEOJob *seojobcontainer.Container
}

func NewContainer(ctx context.Context, cfg *config.Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	logx.Info("🏗️ Initializing infrastructure...")
	infra, err := seojobcontainer.OpenInfra(ctx, cfg)
	if err != nil {
		logx.Fatalf("Failed to initialize infrastructure: %v", err)
	}
	c.Infra = infra

	if infra.DB != nil {
		if err := seojobinfra.Migrate(ctx, infra.DB); err != nil {
			infra.Close()
			logx.Fatalf("Failed to apply migrations: %v", err)
		}
		logx.Info("  ✅ Migrations applied")
	}

	logx.Info("📦 Initializing modules...")
	c.SEOJob, err = seojobcontainer.New(ctx, seojobcontainer.Deps{
		Cfg:     cfg,
		DB:      infra.DB,
		Redis:   infra.Redis,
		Archive: infra.Archive,
	})
	if err != nil {
		infra.Close()
		logx.Fatalf("Failed to initialize job queue: %v", err)
	}

	logx.Info("✅ Application container initialized")
	return c
}

// StartBackgroundServices launches long-running workers.
func (c *Container) StartBackgroundServices(ctx context.Context) {
	logx.Info("🔄 Starting background services...")
	c.SEOJob.StartBackgroundServices(ctx, c.Config)
}

// Cleanup releases infrastructure connections.
func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")
	c.Infra.Close()
	logx.Info("✅ Cleanup complete")
}
