package seojob

import (
	"context"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
)

// KindStats is the rollup for one content kind.
type KindStats struct {
	Kind         TargetKind `json:"kind"`
	Pending      int        `json:"pending"`
	Processing   int        `json:"processing"`
	Completed    int        `json:"completed"`
	Failed       int        `json:"failed"`
	TotalJobs    int        `json:"total_jobs"`
	TotalContent int        `json:"total_content"`
}

// Count returns the number of jobs of kind in status
func (k KindStats) Count(status JobStatus) int {
	switch status {
	case StatusPending:
		return k.Pending
	case StatusProcessing:
		return k.Processing
	case StatusCompleted:
		return k.Completed
	case StatusFailed:
		return k.Failed
	}
	return 0
}

// Stats is a point-in-time view over the queue.
type Stats struct {
	Kinds       []KindStats `json:"kinds"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// ForKind returns the rollup for kind, zero-valued if unknown.
func (s Stats) ForKind(kind TargetKind) KindStats {
	for _, k := range s.Kinds {
		if k.Kind == kind {
			return k
		}
	}
	return KindStats{Kind: kind}
}

// GetStats counts jobs per kind and status, plus each kind's content total.
// Nothing is cached.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	counts, err := s.jobs.CountByStatus(ctx)
	if err != nil {
		return Stats{}, errx.Wrap(err, "failed to count jobs", errx.TypeInternal)
	}

	byKind := make(map[TargetKind]*KindStats, len(kindSpecs))
	kinds := AllKinds()
	for _, k := range kinds {
		byKind[k] = &KindStats{Kind: k}
	}

	for _, c := range counts {
		ks, ok := byKind[c.Kind]
		if !ok {
			continue
		}
		switch c.Status {
		case StatusPending:
			ks.Pending += c.Count
		case StatusProcessing:
			ks.Processing += c.Count
		case StatusCompleted:
			ks.Completed += c.Count
		case StatusFailed:
			ks.Failed += c.Count
		}
		ks.TotalJobs += c.Count
	}

	out := Stats{Kinds: make([]KindStats, 0, len(kinds)), GeneratedAt: s.opts.Now()}
	for _, k := range kinds {
		total, err := s.content.Count(ctx, k)
		if err != nil {
			return Stats{}, errx.Wrap(err, "failed to count content", errx.TypeInternal).
				WithDetail("target_kind", string(k))
		}
		ks := byKind[k]
		ks.TotalContent = total
		out.Kinds = append(out.Kinds, *ks)
	}

	return out, nil
}
