// Package seojobarchive stores scheduler batch reports as JSON files,
// one per tick, under YYYY/MM/DD/<report-id>.json.
package seojobarchive

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/asyncx"
	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/fsx"
	"github.com/Abraxas-365/seoqueue/pkg/logx"
	"github.com/Abraxas-365/seoqueue/pkg/seojob"
	"github.com/google/uuid"
)

const dayLayout = "2006/01/02"

// Archiver implements seojob.Archiver on any fsx.FileSystem.
type Archiver struct {
	fs       fsx.FileSystem
	attempts int
	delay    time.Duration
}

var _ seojob.Archiver = (*Archiver)(nil)

type Option func(*Archiver)

// WithRetry retries failed writes with exponential backoff.
func WithRetry(attempts int, initialDelay time.Duration) Option {
	return func(a *Archiver) {
		if attempts > 0 {
			a.attempts = attempts
		}
		if initialDelay > 0 {
			a.delay = initialDelay
		}
	}
}

func New(fs fsx.FileSystem, opts ...Option) *Archiver {
	a := &Archiver{fs: fs, attempts: 3, delay: 200 * time.Millisecond}
	for _, o := range opts {
		o(a)
	}
	return a
}

// ReportPath is the location of a report relative to the store root.
func ReportPath(report *seojob.BatchReport) string {
	return fsx.Join(report.StartedAt.UTC().Format(dayLayout), report.ID.String()+".json")
}

func (a *Archiver) Archive(ctx context.Context, report *seojob.BatchReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errx.Wrap(err, "failed to encode batch report", errx.TypeInternal)
	}

	path := ReportPath(report)
	_, err = asyncx.RetryWithBackoff(ctx, a.attempts, a.delay, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.fs.WriteFile(ctx, path, data)
	})
	if err != nil {
		return errx.Wrap(err, "failed to archive batch report", errx.TypeExternal).
			WithDetail("path", path)
	}

	logx.WithFields(logx.Fields{
		"report_id": report.ID.String(),
		"path":      path,
		"claimed":   report.Result.Claimed,
	}).Debug("seojob: batch report archived")
	return nil
}

// List returns the ids of the reports archived on day, oldest file name first.
func (a *Archiver) List(ctx context.Context, day time.Time) ([]uuid.UUID, error) {
	files, err := a.fs.List(ctx, day.UTC().Format(dayLayout))
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(files))
	for _, f := range files {
		id, err := uuid.Parse(strings.TrimSuffix(f.Name, ".json"))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Load reads one archived report back.
func (a *Archiver) Load(ctx context.Context, day time.Time, id uuid.UUID) (*seojob.BatchReport, error) {
	path := fsx.Join(day.UTC().Format(dayLayout), id.String()+".json")
	data, err := a.fs.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	var report seojob.BatchReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, errx.Wrap(err, "corrupt batch report", errx.TypeInternal).WithDetail("path", path)
	}
	return &report, nil
}
