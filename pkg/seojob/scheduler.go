package seojob

import (
	"context"
	"sync"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/logx"
	"github.com/google/uuid"
)

// BatchReport describes one scheduler tick.
type BatchReport struct {
	ID         uuid.UUID          `json:"id"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Enqueued   map[TargetKind]int `json:"enqueued,omitempty"`
	Requeued   int                `json:"requeued_stale"`
	Result     BatchResult        `json:"result"`
}

// SchedulerOptions configures the periodic driver.
type SchedulerOptions struct {
	Interval    time.Duration
	BatchSize   int
	StaleAfter  time.Duration
	AutoEnqueue bool
	LockKey     string
	LockTTL     time.Duration
	Locker      Locker
	Archiver    Archiver
}

func defaultSchedulerOptions() SchedulerOptions {
	return SchedulerOptions{
		Interval:   time.Minute,
		BatchSize:  10,
		StaleAfter: 15 * time.Minute,
		LockKey:    "seojob:scheduler",
		LockTTL:    5 * time.Minute,
	}
}

// SchedulerOption is a functional option for configuring the scheduler.
type SchedulerOption func(*SchedulerOptions)

func WithInterval(d time.Duration) SchedulerOption {
	return func(o *SchedulerOptions) {
		if d > 0 {
			o.Interval = d
		}
	}
}

func WithBatchSize(n int) SchedulerOption {
	return func(o *SchedulerOptions) {
		if n > 0 {
			o.BatchSize = n
		}
	}
}

// WithStaleSweep sets the age after which processing jobs are requeued each tick.
func WithStaleSweep(d time.Duration) SchedulerOption {
	return func(o *SchedulerOptions) {
		o.StaleAfter = d
	}
}

// WithAutoEnqueue makes every tick enqueue approved records that have no job.
func WithAutoEnqueue(enabled bool) SchedulerOption {
	return func(o *SchedulerOptions) {
		o.AutoEnqueue = enabled
	}
}

// WithLocker guards ticks with a shared lease.
func WithLocker(l Locker, key string, ttl time.Duration) SchedulerOption {
	return func(o *SchedulerOptions) {
		o.Locker = l
		if key != "" {
			o.LockKey = key
		}
		if ttl > 0 {
			o.LockTTL = ttl
		}
	}
}

// WithArchiver stores a report for each tick that claimed work.
func WithArchiver(a Archiver) SchedulerOption {
	return func(o *SchedulerOptions) {
		o.Archiver = a
	}
}

// Scheduler periodically sweeps stale jobs and processes a batch.
type Scheduler struct {
	svc     *Service
	opts    SchedulerOptions
	mu      sync.Mutex
	running bool
}

func NewScheduler(svc *Service, options ...SchedulerOption) *Scheduler {
	opts := defaultSchedulerOptions()
	for _, o := range options {
		o(&opts)
	}
	return &Scheduler{svc: svc, opts: opts}
}

// Options returns the effective scheduler options.
func (s *Scheduler) Options() SchedulerOptions { return s.opts }

// Start runs ticks every Interval until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning()
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	logx.WithFields(logx.Fields{
		"interval":     s.opts.Interval.String(),
		"batch_size":   s.opts.BatchSize,
		"auto_enqueue": s.opts.AutoEnqueue,
	}).Info("seojob: scheduler started")

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logx.Info("seojob: scheduler stopped")
			return nil
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logx.WithError(err).Warn("seojob: scheduler tick failed")
			}
		}
	}
}

// Tick runs one scheduling round. It returns a nil report when another
// replica holds the lease.
func (s *Scheduler) Tick(ctx context.Context) (*BatchReport, error) {
	if s.opts.Locker != nil {
		release, ok, err := s.opts.Locker.Acquire(ctx, s.opts.LockKey, s.opts.LockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			logx.Debug("seojob: tick skipped, lease held elsewhere")
			return nil, nil
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logx.WithError(err).Warn("seojob: failed to release scheduler lease")
			}
		}()
	}

	report := &BatchReport{ID: uuid.New(), StartedAt: s.svc.opts.Now()}

	if s.opts.AutoEnqueue {
		report.Enqueued = make(map[TargetKind]int)
		for _, kind := range AllKinds() {
			res, err := s.svc.EnqueueMissing(ctx, kind)
			if err != nil {
				logx.WithError(err).WithField("target_kind", kind).Warn("seojob: auto-enqueue failed")
				continue
			}
			report.Enqueued[kind] = res.Inserted
		}
	}

	if s.opts.StaleAfter > 0 {
		n, err := s.svc.RequeueStale(ctx, s.opts.StaleAfter)
		if err != nil {
			logx.WithError(err).Warn("seojob: stale sweep failed")
		}
		report.Requeued = n
	}

	result, err := s.svc.ProcessBatch(ctx, s.opts.BatchSize)
	if err != nil {
		return nil, err
	}
	report.Result = result
	report.FinishedAt = s.svc.opts.Now()

	if s.opts.Archiver != nil && result.Claimed > 0 {
		if err := s.opts.Archiver.Archive(context.WithoutCancel(ctx), report); err != nil {
			logx.WithError(err).WithField("report_id", report.ID.String()).Warn("seojob: failed to archive batch report")
		}
	}

	return report, nil
}
