// Package seojob schedules, executes and tracks generation of search
// metadata for catalog content.
//
// Jobs move pending → processing → completed | failed. The job row status
// is the only coordination point between enqueueing and processing: the
// claim is a single conditional update and the store keeps at most one row
// per target.
package seojob

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Target kinds
// ============================================================================

// TargetKind identifies which content table a job concerns.
type TargetKind string

const (
	KindCollection TargetKind = "collection"
	KindItem       TargetKind = "item"
	KindProfile    TargetKind = "profile"
)

// ============================================================================
// Job status
// ============================================================================

type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// AllStatuses lists statuses in lifecycle order
func AllStatuses() []JobStatus {
	return []JobStatus{StatusPending, StatusProcessing, StatusCompleted, StatusFailed}
}

func (s JobStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// ParseStatus validates a raw status string
func ParseStatus(raw string) (JobStatus, error) {
	s := JobStatus(raw)
	if !s.IsValid() {
		return "", ErrInvalidStatus(raw)
	}
	return s, nil
}

// ============================================================================
// Generation input and output
// ============================================================================

// GenerationContext is the input snapshot captured when a job is enqueued.
// Processing always uses this snapshot, never the live content record.
type GenerationContext struct {
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	ContentKind       string         `json:"content_kind"`
	RelatedInfo       map[string]any `json:"related_info,omitempty"`
	AdditionalContext string         `json:"additional_context,omitempty"`
}

// Metadata is what the generator returns for one target.
type Metadata struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Slug           string          `json:"slug,omitempty"`
	Keywords       []string        `json:"keywords,omitempty"`
	StructuredData json.RawMessage `json:"structured_data,omitempty"`
}

// ============================================================================
// Job
// ============================================================================

// Job is one scheduled unit of metadata generation for a single target.
type Job struct {
	ID           uuid.UUID         `json:"id"`
	TargetKind   TargetKind        `json:"target_kind"`
	TargetID     string            `json:"target_id"`
	Status       JobStatus         `json:"status"`
	Context      GenerationContext `json:"context"`
	ErrorMessage string            `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// NewJob builds a pending job for a target
func NewJob(kind TargetKind, targetID string, gc GenerationContext, now time.Time) *Job {
	if gc.ContentKind == "" {
		gc.ContentKind = kind.Label()
	}
	return &Job{
		ID:         uuid.New(),
		TargetKind: kind,
		TargetID:   targetID,
		Status:     StatusPending,
		Context:    gc,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsActive reports whether the job blocks a new job for the same target.
func (j *Job) IsActive() bool {
	return j.Status != StatusFailed
}

// ============================================================================
// Content projection
// ============================================================================

// Content is the read projection of a catalog record this package works on.
// The record itself belongs to the catalog; only SEO metadata and slug are
// ever written back.
type Content struct {
	ID          string         `json:"id" db:"id"`
	Kind        TargetKind     `json:"kind" db:"-"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Slug        string         `json:"slug,omitempty" db:"slug"`
	RelatedInfo map[string]any `json:"related_info,omitempty" db:"-"`
}

// ============================================================================
// Results
// ============================================================================

// EnqueueResult reports a missing-target enqueue run.
type EnqueueResult struct {
	Inserted int `json:"inserted"`
	Total    int `json:"total"`
}

// MaxReportedErrors bounds BatchResult.Errors.
const MaxReportedErrors = 5

// BatchResult summarizes one ProcessBatch invocation.
type BatchResult struct {
	Claimed   int      `json:"claimed"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

func (r *BatchResult) addError(msg string) {
	if len(r.Errors) < MaxReportedErrors {
		r.Errors = append(r.Errors, msg)
	}
}

// JobFilter narrows ListJobs. Zero values match everything.
type JobFilter struct {
	Kind   TargetKind
	Status JobStatus
}

// StatusCount is one row of the job store's (kind, status) rollup.
type StatusCount struct {
	Kind   TargetKind `db:"target_kind"`
	Status JobStatus  `db:"status"`
	Count  int        `db:"count"`
}
