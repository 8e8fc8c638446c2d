package main

import (
	"context"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/kernel"
	"github.com/Abraxas-365/seoqueue/pkg/seojob"
	"github.com/Abraxas-365/seoqueue/pkg/seojob/seojobcontainer"
	"github.com/urfave/cli/v3"
)

func enqueueApprovedAction(ctx context.Context, cmd *cli.Command, q *seojobcontainer.Container) error {
	kind, err := kindArg(cmd)
	if err != nil {
		return err
	}
	n, err := q.Service.EnqueueForApproved(ctx, kind)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]any{"kind": kind, "inserted": n})
}

func enqueueMissingAction(ctx context.Context, cmd *cli.Command, q *seojobcontainer.Container) error {
	kind, err := kindArg(cmd)
	if err != nil {
		return err
	}
	res, err := q.Service.EnqueueMissing(ctx, kind)
	if err != nil {
		return err
	}
	return printJSON(cmd, res)
}

// targetContext loads the record's own context and appends --context.
func targetContext(ctx context.Context, cmd *cli.Command, q *seojobcontainer.Container, kind seojob.TargetKind) (seojob.GenerationContext, error) {
	gc, err := q.Service.ContextFor(ctx, kind, cmd.String("id"))
	if err != nil {
		return seojob.GenerationContext{}, err
	}
	gc.AdditionalContext = cmd.String("context")
	return gc, nil
}

func enqueueOneAction(ctx context.Context, cmd *cli.Command, q *seojobcontainer.Container) error {
	kind, err := kindArg(cmd)
	if err != nil {
		return err
	}
	gc, err := targetContext(ctx, cmd, q, kind)
	if err != nil {
		return err
	}
	queued, err := q.Service.EnqueueOne(ctx, kind, cmd.String("id"), gc)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]any{"kind": kind, "target_id": cmd.String("id"), "queued": queued})
}

func regenerateAction(ctx context.Context, cmd *cli.Command, q *seojobcontainer.Container) error {
	kind, err := kindArg(cmd)
	if err != nil {
		return err
	}
	gc, err := targetContext(ctx, cmd, q, kind)
	if err != nil {
		return err
	}
	queued, err := q.Service.RegenerateOne(ctx, kind, cmd.String("id"), gc)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]any{"kind": kind, "target_id": cmd.String("id"), "queued": queued})
}

func processAction(ctx context.Context, cmd *cli.Command, q *seojobcontainer.Container) error {
	size := int(cmd.Int("batch-size"))
	if size <= 0 {
		size = q.Scheduler.Options().BatchSize
	}
	res, err := q.Service.ProcessBatch(ctx, size)
	if err != nil {
		return err
	}
	return printJSON(cmd, res)
}

func tickAction(ctx context.Context, cmd *cli.Command, q *seojobcontainer.Container) error {
	report, err := q.Scheduler.Tick(ctx)
	if err != nil {
		return err
	}
	if report == nil {
		return printJSON(cmd, map[string]string{"status": "skipped", "reason": "lease held elsewhere"})
	}
	return printJSON(cmd, report)
}

func requeueFailedAction(ctx context.Context, cmd *cli.Command, q *seojobcontainer.Container) error {
	n, err := q.Service.RequeueFailed(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]int{"requeued": n})
}

func requeueStaleAction(ctx context.Context, cmd *cli.Command, q *seojobcontainer.Container) error {
	olderThan := cmd.Duration("older-than")
	if olderThan <= 0 {
		olderThan = q.Service.Options().StaleAfter
	}
	n, err := q.Service.RequeueStale(ctx, olderThan)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]any{"requeued": n, "older_than": olderThan.String()})
}

func statsAction(ctx context.Context, cmd *cli.Command, q *seojobcontainer.Container) error {
	stats, err := q.Service.GetStats(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd, stats)
}

func jobsListAction(ctx context.Context, cmd *cli.Command, q *seojobcontainer.Container) error {
	var filter seojob.JobFilter
	if raw := cmd.String("kind"); raw != "" {
		kind, err := seojob.ParseTargetKind(raw)
		if err != nil {
			return err
		}
		filter.Kind = kind
	}
	if raw := cmd.String("status"); raw != "" {
		status, err := seojob.ParseStatus(raw)
		if err != nil {
			return err
		}
		filter.Status = status
	}
	page, err := q.Service.ListJobs(ctx, filter, kernel.PaginationOptions{
		Page:     int(cmd.Int("page")),
		PageSize: int(cmd.Int("page-size")),
	})
	if err != nil {
		return err
	}
	return printJSON(cmd, page)
}

func jobsGetAction(ctx context.Context, cmd *cli.Command, q *seojobcontainer.Container) error {
	id, err := parseID(cmd.String("id"))
	if err != nil {
		return err
	}
	job, err := q.Service.GetJob(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(cmd, job)
}

func errArchiveDisabled() error {
	return errx.New("report archive is not configured", errx.TypeValidation).
		WithDetail("hint", "set SEOJOB_ARCHIVE_BUCKET or SEOJOB_ARCHIVE_BACKEND=local")
}

func reportsListAction(ctx context.Context, cmd *cli.Command, q *seojobcontainer.Container) error {
	if q.Archiver == nil {
		return errArchiveDisabled()
	}
	day, err := parseDay(cmd.String("day"))
	if err != nil {
		return err
	}
	ids, err := q.Archiver.List(ctx, day)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]any{"day": cmd.String("day"), "reports": ids})
}

func reportsShowAction(ctx context.Context, cmd *cli.Command, q *seojobcontainer.Container) error {
	if q.Archiver == nil {
		return errArchiveDisabled()
	}
	day, err := parseDay(cmd.String("day"))
	if err != nil {
		return err
	}
	id, err := parseID(cmd.String("id"))
	if err != nil {
		return err
	}
	report, err := q.Archiver.Load(ctx, day, id)
	if err != nil {
		return err
	}
	return printJSON(cmd, report)
}
