package seojob

import (
	"context"
	"strings"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/kernel"
	"github.com/Abraxas-365/seoqueue/pkg/logx"
	"github.com/google/uuid"
)

// Service is the single entry point for every operator operation on the
// metadata queue.
type Service struct {
	jobs      JobRepository
	content   ContentRepository
	generator Generator
	slugs     *SlugResolver
	opts      Options
}

// NewService wires the queue. generator may be nil for processes that only
// enqueue or report; ProcessBatch then fails with GENERATOR_NOT_CONFIGURED.
func NewService(jobs JobRepository, content ContentRepository, generator Generator, options ...Option) *Service {
	opts := defaultOptions()
	for _, o := range options {
		o(&opts)
	}
	return &Service{
		jobs:      jobs,
		content:   content,
		generator: generator,
		slugs:     NewSlugResolver(content),
		opts:      opts,
	}
}

// Options returns the effective configuration
func (s *Service) Options() Options { return s.opts }

// ============================================================================
// Enqueueing
// ============================================================================

// EnqueueForApproved queues every approved record of kind. Targets that
// already have a pending, processing or completed job are skipped, so a
// second call with unchanged content inserts nothing.
func (s *Service) EnqueueForApproved(ctx context.Context, kind TargetKind) (int, error) {
	if !kind.IsValid() {
		return 0, ErrInvalidKind(string(kind))
	}

	records, err := s.content.ListEligible(ctx, kind)
	if err != nil {
		return 0, errx.Wrap(err, "failed to list eligible content", errx.TypeInternal).
			WithDetail("target_kind", string(kind))
	}

	inserted, err := s.insert(ctx, kind, records)
	if err != nil {
		return 0, err
	}

	logx.WithFields(logx.Fields{
		"target_kind": kind,
		"eligible":    len(records),
		"inserted":    inserted,
	}).Info("seojob: enqueued approved content")

	return inserted, nil
}

// EnqueueMissing queues approved records of kind that have no job row at all.
func (s *Service) EnqueueMissing(ctx context.Context, kind TargetKind) (EnqueueResult, error) {
	if !kind.IsValid() {
		return EnqueueResult{}, ErrInvalidKind(string(kind))
	}

	records, err := s.content.ListWithoutJob(ctx, kind)
	if err != nil {
		return EnqueueResult{}, errx.Wrap(err, "failed to list content without jobs", errx.TypeInternal).
			WithDetail("target_kind", string(kind))
	}

	inserted, err := s.insert(ctx, kind, records)
	if err != nil {
		return EnqueueResult{}, err
	}

	logx.WithFields(logx.Fields{
		"target_kind": kind,
		"candidates":  len(records),
		"inserted":    inserted,
	}).Info("seojob: enqueued missing content")

	return EnqueueResult{Inserted: inserted, Total: len(records)}, nil
}

// EnqueueOne queues a single target with an explicit context using the same
// conflict policy as the bulk paths. Returns false when skipped.
func (s *Service) EnqueueOne(ctx context.Context, kind TargetKind, targetID string, gc GenerationContext) (bool, error) {
	job, err := s.newJob(kind, targetID, gc)
	if err != nil {
		return false, err
	}

	n, err := s.jobs.InsertPending(ctx, []*Job{job})
	if err != nil {
		return false, errx.Wrap(err, "failed to enqueue job", errx.TypeInternal).
			WithDetail("target_kind", string(kind)).
			WithDetail("target_id", targetID)
	}
	return n > 0, nil
}

// EnqueueTarget reads the current record and queues it.
func (s *Service) EnqueueTarget(ctx context.Context, kind TargetKind, targetID string) (bool, error) {
	c, err := s.findContent(ctx, kind, targetID)
	if err != nil {
		return false, err
	}
	return s.EnqueueOne(ctx, kind, targetID, BuildContext(c))
}

// RegenerateOne forces a target back to pending with gc even when its job
// already completed or failed. A job currently processing is left alone and
// false is returned.
func (s *Service) RegenerateOne(ctx context.Context, kind TargetKind, targetID string, gc GenerationContext) (bool, error) {
	job, err := s.newJob(kind, targetID, gc)
	if err != nil {
		return false, err
	}

	queued, err := s.jobs.Regenerate(ctx, job)
	if err != nil {
		return false, errx.Wrap(err, "failed to regenerate job", errx.TypeInternal).
			WithDetail("target_kind", string(kind)).
			WithDetail("target_id", targetID)
	}

	logx.WithFields(logx.Fields{
		"target_kind": kind,
		"target_id":   targetID,
		"queued":      queued,
	}).Info("seojob: regenerate requested")

	return queued, nil
}

// RegenerateTarget is RegenerateOne with the context read from the record.
func (s *Service) RegenerateTarget(ctx context.Context, kind TargetKind, targetID string) (bool, error) {
	c, err := s.findContent(ctx, kind, targetID)
	if err != nil {
		return false, err
	}
	return s.RegenerateOne(ctx, kind, targetID, BuildContext(c))
}

func (s *Service) insert(ctx context.Context, kind TargetKind, records []*Content) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	now := s.opts.Now()
	jobs := make([]*Job, 0, len(records))
	for _, c := range records {
		if c.Kind == "" {
			c.Kind = kind
		}
		jobs = append(jobs, NewJob(kind, c.ID, BuildContext(c), now))
	}

	n, err := s.jobs.InsertPending(ctx, jobs)
	if err != nil {
		return 0, errx.Wrap(err, "failed to insert jobs", errx.TypeInternal).
			WithDetail("target_kind", string(kind)).
			WithDetail("count", len(jobs))
	}
	return n, nil
}

func (s *Service) newJob(kind TargetKind, targetID string, gc GenerationContext) (*Job, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidKind(string(kind))
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return nil, ErrInvalidTarget()
	}
	return NewJob(kind, targetID, gc, s.opts.Now()), nil
}

func (s *Service) findContent(ctx context.Context, kind TargetKind, targetID string) (*Content, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidKind(string(kind))
	}
	if strings.TrimSpace(targetID) == "" {
		return nil, ErrInvalidTarget()
	}
	c, err := s.content.FindTarget(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}
	c.Kind = kind
	return c, nil
}

// ContextFor builds the generation context from the record as it is now.
func (s *Service) ContextFor(ctx context.Context, kind TargetKind, targetID string) (GenerationContext, error) {
	c, err := s.findContent(ctx, kind, targetID)
	if err != nil {
		return GenerationContext{}, err
	}
	return BuildContext(c), nil
}

// ============================================================================
// Requeue
// ============================================================================

// RequeueFailed moves every failed job back to pending and clears its error.
func (s *Service) RequeueFailed(ctx context.Context) (int, error) {
	n, err := s.jobs.ResetFailed(ctx)
	if err != nil {
		return 0, errx.Wrap(err, "failed to requeue failed jobs", errx.TypeInternal)
	}
	if n > 0 {
		logx.WithField("requeued", n).Info("seojob: requeued failed jobs")
	}
	return n, nil
}

// RequeueStale moves processing jobs not updated for olderThan back to
// pending. A non-positive olderThan uses the configured default.
func (s *Service) RequeueStale(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		olderThan = s.opts.StaleAfter
	}

	n, err := s.jobs.ResetStale(ctx, olderThan)
	if err != nil {
		return 0, errx.Wrap(err, "failed to requeue stale jobs", errx.TypeInternal).
			WithDetail("older_than", olderThan.String())
	}
	if n > 0 {
		logx.WithFields(logx.Fields{
			"requeued":   n,
			"older_than": olderThan.String(),
		}).Warn("seojob: requeued stale processing jobs")
	}
	return n, nil
}

// ============================================================================
// Inspection
// ============================================================================

func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	return s.jobs.FindByID(ctx, id)
}

// ListJobs pages through jobs, newest first.
func (s *Service) ListJobs(ctx context.Context, filter JobFilter, opts kernel.PaginationOptions) (kernel.Paginated[*Job], error) {
	if filter.Kind != "" && !filter.Kind.IsValid() {
		return kernel.Paginated[*Job]{}, ErrInvalidKind(string(filter.Kind))
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return kernel.Paginated[*Job]{}, ErrInvalidStatus(string(filter.Status))
	}
	return s.jobs.List(ctx, filter, opts.Normalize())
}
