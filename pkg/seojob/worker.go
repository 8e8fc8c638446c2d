package seojob

import (
	"context"
	"errors"

	"github.com/Abraxas-365/seoqueue/pkg/asyncx"
	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/logx"
)

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeCompleted
	outcomeFailed
)

type jobResult struct {
	outcome outcome
	message string
}

// ProcessBatch drains up to batchSize pending jobs, oldest first, on a
// bounded pool. Per-job failures are recorded on the job and summarized in
// the result; only a failure to list the batch is returned as an error.
//
// Cancelling ctx stops further claims. Jobs already claimed finish on a
// context detached from ctx, still bounded by the generate timeout.
func (s *Service) ProcessBatch(ctx context.Context, batchSize int) (BatchResult, error) {
	result := BatchResult{Errors: []string{}}

	if batchSize <= 0 {
		return result, ErrInvalidBatchSize(batchSize)
	}
	if s.generator == nil {
		return result, ErrGeneratorNotConfigured()
	}

	pending, err := s.jobs.ListPending(ctx, batchSize)
	if err != nil {
		return result, errx.Wrap(err, "failed to list pending jobs", errx.TypeInternal).
			WithDetail("batch_size", batchSize)
	}
	if len(pending) == 0 {
		return result, nil
	}

	settled := asyncx.Pool(ctx, s.opts.Concurrency, pending, s.runJob)

	for _, r := range settled {
		if !r.Started {
			continue
		}
		switch r.Value.outcome {
		case outcomeCompleted:
			result.Claimed++
			result.Succeeded++
		case outcomeFailed:
			result.Claimed++
			result.Failed++
			result.addError(r.Value.message)
		default:
			result.Skipped++
			if r.Value.message != "" {
				result.addError(r.Value.message)
			}
		}
	}

	logx.WithFields(logx.Fields{
		"listed":    len(pending),
		"claimed":   result.Claimed,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
		"skipped":   result.Skipped,
	}).Info("seojob: batch processed")

	return result, nil
}

// runJob never returns an error; the outcome carries everything.
func (s *Service) runJob(ctx context.Context, job *Job) (jobResult, error) {
	log := logx.WithFields(logx.Fields{
		"job_id":      job.ID.String(),
		"target_kind": job.TargetKind,
		"target_id":   job.TargetID,
	})

	claimed, err := s.jobs.Claim(ctx, job.ID)
	if err != nil {
		log.WithError(err).Warn("seojob: claim failed, leaving job pending")
		return jobResult{outcome: outcomeSkipped, message: job.TargetID + ": " + err.Error()}, nil
	}
	if !claimed {
		log.Debug("seojob: job already claimed elsewhere")
		return jobResult{outcome: outcomeSkipped}, nil
	}

	// Claimed jobs always reach a terminal state.
	jobCtx := context.WithoutCancel(ctx)

	if err := s.execute(jobCtx, job); err != nil {
		msg := err.Error()
		if markErr := s.jobs.MarkFailed(jobCtx, job.ID, msg); markErr != nil {
			log.WithError(markErr).Error("seojob: failed to record job failure")
		}
		log.WithError(err).Warn("seojob: job failed")
		return jobResult{outcome: outcomeFailed, message: job.TargetID + ": " + msg}, nil
	}

	if err := s.jobs.MarkCompleted(jobCtx, job.ID); err != nil {
		// Content is written; the job stays processing until the stale sweep.
		log.WithError(err).Error("seojob: failed to mark job completed")
		return jobResult{outcome: outcomeFailed, message: job.TargetID + ": " + err.Error()}, nil
	}

	log.Info("seojob: job completed")
	return jobResult{outcome: outcomeCompleted}, nil
}

func (s *Service) execute(ctx context.Context, job *Job) error {
	if s.opts.Throttle != nil {
		if err := s.opts.Throttle.Wait(ctx); err != nil {
			return errx.Wrap(err, "failed to wait for generator slot", errx.TypeExternal)
		}
	}

	meta, err := asyncx.WithTimeout(ctx, s.opts.GenerateTimeout, func(ctx context.Context) (Metadata, error) {
		return s.generator.Generate(ctx, job.Context)
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrGenerationTimeout(s.opts.GenerateTimeout)
		}
		var e *errx.Error
		if errx.As(err, &e) {
			return e
		}
		return ErrGenerationFailed(err)
	}

	slug := ""
	if meta.Slug != "" {
		resolved, ok, err := s.slugs.Resolve(ctx, meta.Slug, job.TargetKind, job.TargetID)
		if err != nil {
			return errx.Wrap(err, "failed to check slug", errx.TypeInternal)
		}
		if ok {
			slug = resolved
		} else {
			logx.WithFields(logx.Fields{
				"job_id":    job.ID.String(),
				"candidate": meta.Slug,
			}).Debug("seojob: slug unavailable, keeping existing")
		}
	}

	err = s.content.WriteMetadata(ctx, job.TargetKind, job.TargetID, meta, slug)
	if slug != "" && errx.HasCode(err, CodeSlugTaken) {
		// Another record took the slug between the check and the write.
		logx.Warnf("seojob: slug %q taken concurrently for %s %s, keeping existing slug", slug, job.TargetKind, job.TargetID)
		return s.content.WriteMetadata(ctx, job.TargetKind, job.TargetID, meta, "")
	}
	return err
}
