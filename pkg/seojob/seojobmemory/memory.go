// Package seojobmemory keeps jobs and content projections in process memory.
// It backs tests and single-process local runs (SEOJOB_STORE=memory).
package seojobmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/kernel"
	"github.com/Abraxas-365/seoqueue/pkg/seojob"
	"github.com/google/uuid"
)

type targetKey struct {
	kind seojob.TargetKind
	id   string
}

type jobRecord struct {
	job seojob.Job
	seq int64
}

type contentRecord struct {
	content  seojob.Content
	approved bool
	metadata *seojob.Metadata
}

// Store implements seojob.JobRepository and seojob.ContentRepository.
type Store struct {
	mu       sync.RWMutex
	jobs     map[uuid.UUID]*jobRecord
	byTarget map[targetKey]uuid.UUID
	content  map[targetKey]*contentRecord
	seq      int64
	now      func() time.Time

	// writes counts WriteMetadata calls that reached a record
	writes int
}

var (
	_ seojob.JobRepository     = (*Store)(nil)
	_ seojob.ContentRepository = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		jobs:     make(map[uuid.UUID]*jobRecord),
		byTarget: make(map[targetKey]uuid.UUID),
		content:  make(map[targetKey]*contentRecord),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the clock used for updated_at.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// ============================================================================
// Content fixtures
// ============================================================================

// PutContent adds or replaces a catalog record.
func (s *Store) PutContent(c seojob.Content, approved bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := targetKey{c.Kind, c.ID}
	rec := &contentRecord{content: c, approved: approved}
	if old, ok := s.content[key]; ok {
		rec.metadata = old.metadata
	}
	s.content[key] = rec
}

// DeleteContent removes a catalog record, leaving any job row in place.
func (s *Store) DeleteContent(kind seojob.TargetKind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.content, targetKey{kind, id})
}

// Content returns a record with its written metadata, if any.
func (s *Store) Content(kind seojob.TargetKind, id string) (seojob.Content, *seojob.Metadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.content[targetKey{kind, id}]
	if !ok {
		return seojob.Content{}, nil, false
	}
	return rec.content, rec.metadata, true
}

// Writes reports how many metadata writes landed.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Jobs returns a snapshot of every job row, oldest first.
func (s *Store) Jobs() []*seojob.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(func(*seojob.Job) bool { return true }, true)
}

// ============================================================================
// Job repository
// ============================================================================

func (s *Store) InsertPending(_ context.Context, jobs []*seojob.Job) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, j := range jobs {
		key := targetKey{j.TargetKind, j.TargetID}
		if _, ok := s.content[key]; !ok {
			continue
		}
		if id, ok := s.byTarget[key]; ok {
			rec := s.jobs[id]
			if rec.job.Status != seojob.StatusFailed {
				continue
			}
			s.requeueLocked(rec, j)
			n++
			continue
		}
		s.insertLocked(j)
		n++
	}
	return n, nil
}

func (s *Store) Regenerate(_ context.Context, j *seojob.Job) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := targetKey{j.TargetKind, j.TargetID}
	if _, ok := s.content[key]; !ok {
		return false, nil
	}
	if id, ok := s.byTarget[key]; ok {
		rec := s.jobs[id]
		if rec.job.Status == seojob.StatusProcessing {
			return false, nil
		}
		s.requeueLocked(rec, j)
		return true, nil
	}
	s.insertLocked(j)
	return true, nil
}

func (s *Store) Claim(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.jobs[id]
	if !ok || rec.job.Status != seojob.StatusPending {
		return false, nil
	}
	rec.job.Status = seojob.StatusProcessing
	rec.job.UpdatedAt = s.now()
	return true, nil
}

func (s *Store) MarkCompleted(_ context.Context, id uuid.UUID) error {
	return s.finish(id, seojob.StatusCompleted, "")
}

func (s *Store) MarkFailed(_ context.Context, id uuid.UUID, message string) error {
	return s.finish(id, seojob.StatusFailed, message)
}

func (s *Store) finish(id uuid.UUID, status seojob.JobStatus, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.jobs[id]
	if !ok {
		return seojob.ErrJobNotFound(id.String())
	}
	rec.job.Status = status
	rec.job.ErrorMessage = message
	rec.job.UpdatedAt = s.now()
	return nil
}

func (s *Store) ListPending(_ context.Context, limit int) ([]*seojob.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.sortedLocked(func(j *seojob.Job) bool { return j.Status == seojob.StatusPending }, true)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ResetFailed(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, rec := range s.jobs {
		if rec.job.Status == seojob.StatusFailed {
			s.resetLocked(rec, nil)
			n++
		}
	}
	return n, nil
}

func (s *Store) ResetStale(_ context.Context, olderThan time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-olderThan)
	n := 0
	for _, rec := range s.jobs {
		if rec.job.Status == seojob.StatusProcessing && rec.job.UpdatedAt.Before(cutoff) {
			s.resetLocked(rec, nil)
			n++
		}
	}
	return n, nil
}

func (s *Store) CountByStatus(_ context.Context) ([]seojob.StatusCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct {
		kind   seojob.TargetKind
		status seojob.JobStatus
	}
	counts := make(map[key]int)
	for _, rec := range s.jobs {
		counts[key{rec.job.TargetKind, rec.job.Status}]++
	}

	out := make([]seojob.StatusCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, seojob.StatusCount{Kind: k.kind, Status: k.status, Count: c})
	}
	return out, nil
}

func (s *Store) FindByID(_ context.Context, id uuid.UUID) (*seojob.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.jobs[id]
	if !ok {
		return nil, seojob.ErrJobNotFound(id.String())
	}
	j := rec.job
	return &j, nil
}

func (s *Store) List(_ context.Context, filter seojob.JobFilter, opts kernel.PaginationOptions) (kernel.Paginated[*seojob.Job], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	opts = opts.Normalize()
	all := s.sortedLocked(func(j *seojob.Job) bool {
		return (filter.Kind == "" || j.TargetKind == filter.Kind) &&
			(filter.Status == "" || j.Status == filter.Status)
	}, false)

	start := min(opts.Offset(), len(all))
	end := min(start+opts.PageSize, len(all))
	return kernel.NewPaginated(all[start:end], opts.Page, opts.PageSize, len(all)), nil
}

func (s *Store) insertLocked(j *seojob.Job) {
	s.seq++
	cp := *j
	s.jobs[j.ID] = &jobRecord{job: cp, seq: s.seq}
	s.byTarget[targetKey{j.TargetKind, j.TargetID}] = j.ID
}

// requeueLocked resets rec with j's context and moves it to the back of the
// pending order, as a new job would be.
func (s *Store) requeueLocked(rec *jobRecord, j *seojob.Job) {
	s.resetLocked(rec, &j.Context)
	s.seq++
	rec.seq = s.seq
	rec.job.CreatedAt = j.CreatedAt
}

// resetLocked puts a row back to pending; gc replaces the context when set.
func (s *Store) resetLocked(rec *jobRecord, gc *seojob.GenerationContext) {
	rec.job.Status = seojob.StatusPending
	rec.job.ErrorMessage = ""
	rec.job.UpdatedAt = s.now()
	if gc != nil {
		rec.job.Context = *gc
	}
}

func (s *Store) sortedLocked(keep func(*seojob.Job) bool, ascending bool) []*seojob.Job {
	recs := make([]*jobRecord, 0, len(s.jobs))
	for _, rec := range s.jobs {
		if keep(&rec.job) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(a, b int) bool {
		ra, rb := recs[a], recs[b]
		if !ra.job.CreatedAt.Equal(rb.job.CreatedAt) {
			if ascending {
				return ra.job.CreatedAt.Before(rb.job.CreatedAt)
			}
			return ra.job.CreatedAt.After(rb.job.CreatedAt)
		}
		if ascending {
			return ra.seq < rb.seq
		}
		return ra.seq > rb.seq
	})

	out := make([]*seojob.Job, len(recs))
	for i, rec := range recs {
		j := rec.job
		out[i] = &j
	}
	return out
}

// ============================================================================
// Content repository
// ============================================================================

func (s *Store) ListEligible(_ context.Context, kind seojob.TargetKind) ([]*seojob.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contentLocked(kind, func(key targetKey) bool { return true }), nil
}

func (s *Store) ListWithoutJob(_ context.Context, kind seojob.TargetKind) ([]*seojob.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contentLocked(kind, func(key targetKey) bool {
		_, has := s.byTarget[key]
		return !has
	}), nil
}

func (s *Store) contentLocked(kind seojob.TargetKind, keep func(targetKey) bool) []*seojob.Content {
	var out []*seojob.Content
	for key, rec := range s.content {
		if key.kind != kind || !rec.approved || !keep(key) {
			continue
		}
		c := rec.content
		out = append(out, &c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

func (s *Store) FindTarget(_ context.Context, kind seojob.TargetKind, id string) (*seojob.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.content[targetKey{kind, id}]
	if !ok {
		return nil, seojob.ErrTargetNotFound(kind, id)
	}
	c := rec.content
	return &c, nil
}

func (s *Store) WriteMetadata(_ context.Context, kind seojob.TargetKind, id string, meta seojob.Metadata, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.content[targetKey{kind, id}]
	if !ok {
		return seojob.ErrTargetNotFound(kind, id)
	}
	if slug != "" {
		for key, other := range s.content {
			if key.kind == kind && key.id != id && other.content.Slug == slug {
				return seojob.ErrSlugTaken(kind, id, slug)
			}
		}
	}
	m := meta
	rec.metadata = &m
	if slug != "" {
		rec.content.Slug = slug
	}
	s.writes++
	return nil
}

func (s *Store) SlugTaken(_ context.Context, kind seojob.TargetKind, slug, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for key, rec := range s.content {
		if key.kind == kind && key.id != excludeID && rec.content.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Count(_ context.Context, kind seojob.TargetKind) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for key := range s.content {
		if key.kind == kind {
			n++
		}
	}
	return n, nil
}
