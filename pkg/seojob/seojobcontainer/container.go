package seojobcontainer

import (
	"context"

	"github.com/Abraxas-365/seoqueue/pkg/config"
	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/fsx"
	"github.com/Abraxas-365/seoqueue/pkg/logx"
	"github.com/Abraxas-365/seoqueue/pkg/operator"
	"github.com/Abraxas-365/seoqueue/pkg/seojob"
	"github.com/Abraxas-365/seoqueue/pkg/seojob/seojobapi"
	"github.com/Abraxas-365/seoqueue/pkg/seojob/seojobarchive"
	"github.com/Abraxas-365/seoqueue/pkg/seojob/seojobinfra"
	"github.com/Abraxas-365/seoqueue/pkg/seojob/seojobmemory"
	"github.com/Abraxas-365/seoqueue/pkg/seojob/seojobredis"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// ---------------------------------------------------------------------------
// Deps: everything the job queue needs from the outside.
// ---------------------------------------------------------------------------

type Deps struct {
	Cfg     *config.Config
	DB      *sqlx.DB
	Redis   *redis.Client
	Archive fsx.FileSystem

	// Generator overrides the provider selected by Cfg.Generator.
	Generator seojob.Generator
}

// ---------------------------------------------------------------------------
// Container: the public surface of the job queue module.
// ---------------------------------------------------------------------------

type Container struct {
	Service   *seojob.Service
	Scheduler *seojob.Scheduler
	Handlers  *seojobapi.Handlers
	Archiver  *seojobarchive.Archiver

	// Jobs is the job repository in use; Ping is available on Postgres.
	Jobs seojob.JobRepository

	// Memory is set when the in-process store is selected.
	Memory *seojobmemory.Store
}

// New constructs the module graph: stores, generator, service, scheduler
// and HTTP handlers.
func New(ctx context.Context, deps Deps) (*Container, error) {
	cfg := deps.Cfg
	c := &Container{}

	var content seojob.ContentRepository
	switch cfg.SEOJob.Store {
	case "memory":
		c.Memory = seojobmemory.NewStore()
		c.Jobs, content = c.Memory, c.Memory
		logx.Warn("  ⚠️ Using in-process job store, state is lost on restart")
	case "postgres", "":
		if deps.DB == nil {
			return nil, errx.New("postgres store requires a database", errx.TypeInternal)
		}
		c.Jobs = seojobinfra.NewPostgresJobRepository(deps.DB)
		content = seojobinfra.NewPostgresContentRepository(deps.DB)
	default:
		return nil, errx.New("unknown job store", errx.TypeValidation).WithDetail("store", cfg.SEOJob.Store)
	}

	generator := deps.Generator
	if generator == nil {
		g, err := NewGenerator(ctx, cfg.Generator, nil)
		if err != nil {
			return nil, err
		}
		logx.Infof("  ✅ Metadata generator: %s (%s)", g.Provider(), g.Model())
		generator = g
	}
	svcOpts := []seojob.Option{
		seojob.WithConcurrency(cfg.SEOJob.Concurrency),
		seojob.WithGenerateTimeout(cfg.SEOJob.GenerateTimeout),
		seojob.WithStaleAfter(cfg.SEOJob.StaleAfter),
	}
	if deps.Redis != nil && cfg.SEOJob.RateLimitPerMinute > 0 {
		svcOpts = append(svcOpts, seojob.WithThrottle(seojobredis.NewLimiter(deps.Redis, cfg.SEOJob.RateLimitPerMinute)))
		logx.Infof("  ✅ Generator rate limited to %d/min", cfg.SEOJob.RateLimitPerMinute)
	}

	c.Service = seojob.NewService(c.Jobs, content, generator, svcOpts...)

	schedOpts := []seojob.SchedulerOption{
		seojob.WithInterval(cfg.SEOJob.Interval),
		seojob.WithBatchSize(cfg.SEOJob.BatchSize),
		seojob.WithStaleSweep(cfg.SEOJob.StaleAfter),
		seojob.WithAutoEnqueue(cfg.SEOJob.AutoEnqueue),
	}
	if deps.Redis != nil {
		schedOpts = append(schedOpts, seojob.WithLocker(seojobredis.NewLocker(deps.Redis), "", 0))
	}
	if deps.Archive != nil {
		c.Archiver = seojobarchive.New(deps.Archive)
		schedOpts = append(schedOpts, seojob.WithArchiver(c.Archiver))
	}
	c.Scheduler = seojob.NewScheduler(c.Service, schedOpts...)

	middleware := operator.NewMiddleware(operator.NewVerifier(cfg.Server.OperatorJWTSecret, cfg.Server.OperatorJWTIssuer))
	var reports seojobapi.ReportReader
	if c.Archiver != nil {
		reports = c.Archiver
	}
	c.Handlers = seojobapi.NewHandlers(c.Service, middleware, reports)

	return c, nil
}

// Ping checks the job store.
func (c *Container) Ping(ctx context.Context) error {
	if p, ok := c.Jobs.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// StartBackgroundServices runs the scheduler until ctx is done when enabled.
func (c *Container) StartBackgroundServices(ctx context.Context, cfg *config.Config) {
	if !cfg.SEOJob.SchedulerEnabled {
		logx.Info("  ⏸️ Scheduler disabled")
		return
	}
	go func() {
		if err := c.Scheduler.Start(ctx); err != nil {
			logx.WithError(err).Error("seojob: scheduler exited")
		}
	}()
}
