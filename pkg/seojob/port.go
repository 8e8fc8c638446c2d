package seojob

import (
	"context"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/kernel"
	"github.com/google/uuid"
)

// Generator produces metadata for one generation context.
type Generator interface {
	Generate(ctx context.Context, gc GenerationContext) (Metadata, error)
}

// GeneratorFunc adapts a function to Generator
type GeneratorFunc func(ctx context.Context, gc GenerationContext) (Metadata, error)

func (f GeneratorFunc) Generate(ctx context.Context, gc GenerationContext) (Metadata, error) {
	return f(ctx, gc)
}

// JobRepository owns job rows. At most one row exists per (target_id,
// target_kind).
type JobRepository interface {
	// InsertPending inserts the jobs as pending. A conflicting row is left
	// alone unless it is failed, in which case it is reset to pending with the
	// new context and the new created_at, queueing it behind pending work. Jobs whose target record no longer exists are skipped.
	// Returns the number of rows inserted or reset.
	InsertPending(ctx context.Context, jobs []*Job) (int, error)

	// Regenerate upserts the job's target back to pending with the new
	// context and created_at regardless of its current state, except while
	// processing.
	Regenerate(ctx context.Context, job *Job) (bool, error)

	// Claim moves a pending job to processing. False means another worker won.
	Claim(ctx context.Context, id uuid.UUID) (bool, error)

	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error

	// ListPending returns up to limit pending jobs, oldest first.
	ListPending(ctx context.Context, limit int) ([]*Job, error)

	ResetFailed(ctx context.Context) (int, error)

	// ResetStale moves processing jobs not updated for olderThan to pending.
	// Age is measured on the store's clock, the one that stamps updated_at.
	ResetStale(ctx context.Context, olderThan time.Duration) (int, error)

	CountByStatus(ctx context.Context) ([]StatusCount, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Job, error)
	List(ctx context.Context, filter JobFilter, opts kernel.PaginationOptions) (kernel.Paginated[*Job], error)
}

// ContentRepository reads catalog projections and writes SEO results back.
type ContentRepository interface {
	// ListEligible returns every approved record of kind.
	ListEligible(ctx context.Context, kind TargetKind) ([]*Content, error)

	// ListWithoutJob returns approved records of kind with no job row at all.
	ListWithoutJob(ctx context.Context, kind TargetKind) ([]*Content, error)

	FindTarget(ctx context.Context, kind TargetKind, id string) (*Content, error)

	// WriteMetadata stores metadata and, when slug is non-empty, the slug.
	// Returns a TARGET_NOT_FOUND error when the record is gone and SLUG_TAKEN
	// when another record of kind already holds slug; nothing is written then.
	WriteMetadata(ctx context.Context, kind TargetKind, id string, meta Metadata, slug string) error

	// SlugTaken reports whether a record of kind other than excludeID uses slug.
	SlugTaken(ctx context.Context, kind TargetKind, slug, excludeID string) (bool, error)

	Count(ctx context.Context, kind TargetKind) (int, error)
}

// Throttle paces generator calls. Wait blocks until one call may start.
type Throttle interface {
	Wait(ctx context.Context) error
}

// Locker grants a short lease so only one scheduler replica runs a tick.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// Archiver keeps a copy of each scheduler tick's report.
type Archiver interface {
	Archive(ctx context.Context, report *BatchReport) error
}
