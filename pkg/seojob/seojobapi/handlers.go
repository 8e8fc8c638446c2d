// Package seojobapi exposes the job queue's operator operations over HTTP.
package seojobapi

import (
	"context"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/kernel"
	"github.com/Abraxas-365/seoqueue/pkg/logx"
	"github.com/Abraxas-365/seoqueue/pkg/operator"
	"github.com/Abraxas-365/seoqueue/pkg/seojob"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ReportReader reads archived batch reports.
type ReportReader interface {
	List(ctx context.Context, day time.Time) ([]uuid.UUID, error)
	Load(ctx context.Context, day time.Time, id uuid.UUID) (*seojob.BatchReport, error)
}

// Handlers serves /api/v1/seo
type Handlers struct {
	svc     *seojob.Service
	auth    *operator.Middleware
	reports ReportReader
}

func NewHandlers(svc *seojob.Service, auth *operator.Middleware, reports ReportReader) *Handlers {
	return &Handlers{svc: svc, auth: auth, reports: reports}
}

// RegisterRoutes mounts every route under /api/v1/seo, guarded by the
// operator middleware.
func (h *Handlers) RegisterRoutes(router fiber.Router) {
	seo := router.Group("/api/v1/seo", h.auth.Authenticate(), h.auth.RequireScope(operator.ScopeJobs, "admin:*"))

	jobs := seo.Group("/jobs")
	jobs.Post("/enqueue/:kind/approved", h.enqueueApproved)
	jobs.Post("/enqueue/:kind/missing", h.enqueueMissing)
	jobs.Post("/enqueue/:kind/target/:id", h.enqueueOne)
	jobs.Post("/regenerate/:kind/:id", h.regenerate)
	jobs.Post("/process", h.process)
	jobs.Post("/requeue-failed", h.requeueFailed)
	jobs.Post("/requeue-stale", h.requeueStale)
	jobs.Get("/stats", h.stats)
	jobs.Get("/", h.listJobs)
	jobs.Get("/:id", h.getJob)

	if h.reports != nil {
		seo.Get("/reports/:day", h.listReports)
		seo.Get("/reports/:day/:id", h.getReport)
	}
}

// contextRequest optionally overrides the generation context. Without a
// title the current record is read and only additional_context applies.
type contextRequest struct {
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	RelatedInfo       map[string]any `json:"related_info"`
	AdditionalContext string         `json:"additional_context"`
}

func (h *Handlers) enqueueApproved(c *fiber.Ctx) error {
	kind, err := seojob.ParseTargetKind(c.Params("kind"))
	if err != nil {
		return err
	}
	n, err := h.svc.EnqueueForApproved(c.UserContext(), kind)
	if err != nil {
		return err
	}
	h.audit(c, "enqueue_approved", logx.Fields{"target_kind": kind, "inserted": n})
	return c.JSON(fiber.Map{"inserted": n})
}

func (h *Handlers) enqueueMissing(c *fiber.Ctx) error {
	kind, err := seojob.ParseTargetKind(c.Params("kind"))
	if err != nil {
		return err
	}
	res, err := h.svc.EnqueueMissing(c.UserContext(), kind)
	if err != nil {
		return err
	}
	h.audit(c, "enqueue_missing", logx.Fields{"target_kind": kind, "inserted": res.Inserted})
	return c.JSON(res)
}

func (h *Handlers) enqueueOne(c *fiber.Ctx) error {
	kind, id, gc, err := h.targetContext(c)
	if err != nil {
		return err
	}
	queued, err := h.svc.EnqueueOne(c.UserContext(), kind, id, gc)
	if err != nil {
		return err
	}
	h.audit(c, "enqueue_one", logx.Fields{"target_kind": kind, "target_id": id, "queued": queued})
	return c.JSON(fiber.Map{"queued": queued})
}

func (h *Handlers) regenerate(c *fiber.Ctx) error {
	kind, id, gc, err := h.targetContext(c)
	if err != nil {
		return err
	}
	queued, err := h.svc.RegenerateOne(c.UserContext(), kind, id, gc)
	if err != nil {
		return err
	}
	h.audit(c, "regenerate", logx.Fields{"target_kind": kind, "target_id": id, "queued": queued})
	return c.JSON(fiber.Map{"queued": queued})
}

func (h *Handlers) targetContext(c *fiber.Ctx) (seojob.TargetKind, string, seojob.GenerationContext, error) {
	kind, err := seojob.ParseTargetKind(c.Params("kind"))
	if err != nil {
		return "", "", seojob.GenerationContext{}, err
	}
	id := c.Params("id")

	var req contextRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return "", "", seojob.GenerationContext{}, errx.Wrap(err, "invalid request body", errx.TypeValidation)
		}
	}

	if req.Title != "" {
		return kind, id, seojob.GenerationContext{
			Title:             req.Title,
			Description:       req.Description,
			ContentKind:       kind.Label(),
			RelatedInfo:       req.RelatedInfo,
			AdditionalContext: req.AdditionalContext,
		}, nil
	}

	gc, err := h.svc.ContextFor(c.UserContext(), kind, id)
	if err != nil {
		return "", "", seojob.GenerationContext{}, err
	}
	gc.AdditionalContext = req.AdditionalContext
	return kind, id, gc, nil
}

func (h *Handlers) process(c *fiber.Ctx) error {
	size := c.QueryInt("batch_size", 10)
	res, err := h.svc.ProcessBatch(c.UserContext(), size)
	if err != nil {
		return err
	}
	h.audit(c, "process", logx.Fields{"batch_size": size, "claimed": res.Claimed, "failed": res.Failed})
	return c.JSON(res)
}

func (h *Handlers) requeueFailed(c *fiber.Ctx) error {
	n, err := h.svc.RequeueFailed(c.UserContext())
	if err != nil {
		return err
	}
	h.audit(c, "requeue_failed", logx.Fields{"requeued": n})
	return c.JSON(fiber.Map{"requeued": n})
}

func (h *Handlers) requeueStale(c *fiber.Ctx) error {
	var olderThan time.Duration
	if raw := c.Query("older_than"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return errx.New("older_than must be a positive duration", errx.TypeValidation).
				WithDetail("older_than", raw)
		}
		olderThan = d
	}
	n, err := h.svc.RequeueStale(c.UserContext(), olderThan)
	if err != nil {
		return err
	}
	h.audit(c, "requeue_stale", logx.Fields{"requeued": n})
	return c.JSON(fiber.Map{"requeued": n})
}

func (h *Handlers) stats(c *fiber.Ctx) error {
	stats, err := h.svc.GetStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (h *Handlers) listJobs(c *fiber.Ctx) error {
	var filter seojob.JobFilter
	if raw := c.Query("kind"); raw != "" {
		kind, err := seojob.ParseTargetKind(raw)
		if err != nil {
			return err
		}
		filter.Kind = kind
	}
	if raw := c.Query("status"); raw != "" {
		status, err := seojob.ParseStatus(raw)
		if err != nil {
			return err
		}
		filter.Status = status
	}

	page, err := h.svc.ListJobs(c.UserContext(), filter, kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", kernel.DefaultPageSize),
	})
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handlers) getJob(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return seojob.ErrJobNotFound(c.Params("id"))
	}
	job, err := h.svc.GetJob(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(job)
}

func (h *Handlers) listReports(c *fiber.Ctx) error {
	day, err := parseDay(c.Params("day"))
	if err != nil {
		return err
	}
	ids, err := h.reports.List(c.UserContext(), day)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"day": day.Format(time.DateOnly), "reports": ids})
}

func (h *Handlers) getReport(c *fiber.Ctx) error {
	day, err := parseDay(c.Params("day"))
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errx.New("invalid report id", errx.TypeValidation).WithDetail("id", c.Params("id"))
	}
	report, err := h.reports.Load(c.UserContext(), day, id)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

func parseDay(raw string) (time.Time, error) {
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errx.New("day must be YYYY-MM-DD", errx.TypeValidation).WithDetail("day", raw)
	}
	return day, nil
}

func (h *Handlers) audit(c *fiber.Ctx, action string, fields logx.Fields) {
	if oc, ok := operator.FromCtx(c); ok {
		fields["operator_id"] = oc.OperatorID.String()
	}
	fields["action"] = action
	logx.WithFields(fields).Info("seojob: operator action")
}
