package seojobinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/kernel"
	"github.com/Abraxas-365/seoqueue/pkg/seojob"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// PostgresJobRepository es la implementación en PostgreSQL de seojob.JobRepository.
type PostgresJobRepository struct {
	db      *sqlx.DB
	queries map[seojob.TargetKind]kindQueries
}

// NewPostgresJobRepository crea una nueva instancia del repositorio.
func NewPostgresJobRepository(db *sqlx.DB) *PostgresJobRepository {
	return &PostgresJobRepository{
		db:      db,
		queries: queriesByKind(),
	}
}

var _ seojob.JobRepository = (*PostgresJobRepository)(nil)

const jobColumns = `id, target_kind, target_id, status, context, error_message, created_at, updated_at`

// InsertPending inserta los jobs en bloque, agrupados por tipo de contenido.
func (r *PostgresJobRepository) InsertPending(ctx context.Context, jobs []*seojob.Job) (int, error) {
	byKind := make(map[seojob.TargetKind][]*seojob.Job)
	for _, j := range jobs {
		byKind[j.TargetKind] = append(byKind[j.TargetKind], j)
	}

	total := 0
	for _, kind := range seojob.AllKinds() {
		group := byKind[kind]
		if len(group) == 0 {
			continue
		}
		n, err := r.insertKind(ctx, kind, group)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *PostgresJobRepository) insertKind(ctx context.Context, kind seojob.TargetKind, jobs []*seojob.Job) (int, error) {
	q, ok := r.queries[kind]
	if !ok {
		return 0, unknownKind(kind)
	}

	// A single statement may not touch the same conflicting row twice.
	seen := make(map[string]bool, len(jobs))
	ids := make([]string, 0, len(jobs))
	targets := make([]string, 0, len(jobs))
	contexts := make([]string, 0, len(jobs))
	for _, j := range jobs {
		if seen[j.TargetID] {
			continue
		}
		seen[j.TargetID] = true

		raw, err := json.Marshal(j.Context)
		if err != nil {
			return 0, errx.Wrap(err, "failed to encode job context", errx.TypeInternal).
				WithDetail("target_id", j.TargetID)
		}
		ids = append(ids, j.ID.String())
		targets = append(targets, j.TargetID)
		contexts = append(contexts, string(raw))
	}

	// The EXISTS guard drops targets deleted since they were selected.
	query := fmt.Sprintf(`
		INSERT INTO seo_jobs (id, target_kind, target_id, status, context, created_at, updated_at)
		SELECT j.id, $1::text, j.target_id, 'pending', j.context, $2::timestamptz, $2::timestamptz
		FROM unnest($3::uuid[], $4::text[], $5::jsonb[]) AS j(id, target_id, context)
		WHERE %s
		ON CONFLICT (target_id, target_kind) DO UPDATE SET
			status = 'pending',
			error_message = NULL,
			context = EXCLUDED.context,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
		WHERE seo_jobs.status = 'failed'`, q.exists)

	result, err := r.db.ExecContext(ctx, query,
		string(kind), jobs[0].CreatedAt, pq.Array(ids), pq.Array(targets), pq.Array(contexts))
	if err != nil {
		return 0, errx.Wrap(err, "failed to insert seo jobs", errx.TypeInternal).
			WithDetail("target_kind", string(kind)).
			WithDetail("count", len(jobs))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errx.Wrap(err, "failed to get rows affected on insert", errx.TypeInternal)
	}
	return int(rowsAffected), nil
}

// Regenerate fuerza un job de vuelta a pending salvo que esté en proceso.
func (r *PostgresJobRepository) Regenerate(ctx context.Context, job *seojob.Job) (bool, error) {
	q, ok := r.queries[job.TargetKind]
	if !ok {
		return false, unknownKind(job.TargetKind)
	}

	raw, err := json.Marshal(job.Context)
	if err != nil {
		return false, errx.Wrap(err, "failed to encode job context", errx.TypeInternal)
	}

	query := fmt.Sprintf(`
		INSERT INTO seo_jobs (id, target_kind, target_id, status, context, created_at, updated_at)
		SELECT j.id, $2::text, j.target_id, 'pending', $4::jsonb, $5::timestamptz, $5::timestamptz
		FROM (SELECT $1::uuid AS id, $3::text AS target_id) AS j
		WHERE %s
		ON CONFLICT (target_id, target_kind) DO UPDATE SET
			status = 'pending',
			error_message = NULL,
			context = EXCLUDED.context,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
		WHERE seo_jobs.status <> 'processing'`, q.exists)

	result, err := r.db.ExecContext(ctx, query,
		job.ID, string(job.TargetKind), job.TargetID, string(raw), job.CreatedAt)
	if err != nil {
		return false, errx.Wrap(err, "failed to regenerate seo job", errx.TypeInternal).
			WithDetail("target_id", job.TargetID)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, errx.Wrap(err, "failed to get rows affected on regenerate", errx.TypeInternal)
	}
	return rowsAffected == 1, nil
}

// Claim es el único punto de control de concurrencia: un UPDATE condicional.
func (r *PostgresJobRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE seo_jobs SET status = 'processing', updated_at = now()
		WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return false, errx.Wrap(err, "failed to claim seo job", errx.TypeInternal).
			WithDetail("job_id", id.String())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, errx.Wrap(err, "failed to get rows affected on claim", errx.TypeInternal)
	}
	return rowsAffected == 1, nil
}

func (r *PostgresJobRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	return r.finish(ctx, id, seojob.StatusCompleted, sql.NullString{})
}

func (r *PostgresJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	return r.finish(ctx, id, seojob.StatusFailed, sql.NullString{String: message, Valid: true})
}

func (r *PostgresJobRepository) finish(ctx context.Context, id uuid.UUID, status seojob.JobStatus, message sql.NullString) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE seo_jobs SET status = $2, error_message = $3, updated_at = now()
		WHERE id = $1`, id, string(status), message)
	if err != nil {
		return errx.Wrap(err, "failed to update seo job status", errx.TypeInternal).
			WithDetail("job_id", id.String()).
			WithDetail("status", string(status))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected on status update", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return seojob.ErrJobNotFound(id.String())
	}
	return nil
}

func (r *PostgresJobRepository) ListPending(ctx context.Context, limit int) ([]*seojob.Job, error) {
	var rows []jobRow
	query := `SELECT ` + jobColumns + ` FROM seo_jobs
		WHERE status = 'pending'
		ORDER BY created_at ASC, seq ASC
		LIMIT $1`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, errx.Wrap(err, "failed to list pending seo jobs", errx.TypeInternal)
	}
	return toDomainSlice(rows)
}

func (r *PostgresJobRepository) ResetFailed(ctx context.Context) (int, error) {
	return r.reset(ctx, `
		UPDATE seo_jobs SET status = 'pending', error_message = NULL, updated_at = now()
		WHERE status = 'failed'`)
}

// ResetStale compares against the database clock, the same one Claim uses
// to stamp updated_at.
func (r *PostgresJobRepository) ResetStale(ctx context.Context, olderThan time.Duration) (int, error) {
	return r.reset(ctx, `
		UPDATE seo_jobs SET status = 'pending', error_message = NULL, updated_at = now()
		WHERE status = 'processing' AND updated_at < now() - $1 * interval '1 microsecond'`,
		olderThan.Microseconds())
}

func (r *PostgresJobRepository) reset(ctx context.Context, query string, args ...any) (int, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errx.Wrap(err, "failed to reset seo jobs", errx.TypeInternal)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errx.Wrap(err, "failed to get rows affected on reset", errx.TypeInternal)
	}
	return int(rowsAffected), nil
}

func (r *PostgresJobRepository) CountByStatus(ctx context.Context) ([]seojob.StatusCount, error) {
	var counts []seojob.StatusCount
	query := `SELECT target_kind, status, count(*) AS count FROM seo_jobs GROUP BY target_kind, status`
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, errx.Wrap(err, "failed to count seo jobs", errx.TypeInternal)
	}
	return counts, nil
}

func (r *PostgresJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*seojob.Job, error) {
	var row jobRow
	err := r.db.GetContext(ctx, &row, `SELECT `+jobColumns+` FROM seo_jobs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seojob.ErrJobNotFound(id.String())
		}
		return nil, errx.Wrap(err, "failed to find seo job", errx.TypeInternal).
			WithDetail("job_id", id.String())
	}
	return row.toDomain()
}

func (r *PostgresJobRepository) List(ctx context.Context, filter seojob.JobFilter, opts kernel.PaginationOptions) (kernel.Paginated[*seojob.Job], error) {
	opts = opts.Normalize()

	var (
		where []string
		args  []any
	)
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		where = append(where, fmt.Sprintf("target_kind = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT count(*) FROM seo_jobs`+clause, args...); err != nil {
		return kernel.Paginated[*seojob.Job]{}, errx.Wrap(err, "failed to count seo jobs", errx.TypeInternal)
	}

	query := fmt.Sprintf(`SELECT %s FROM seo_jobs%s ORDER BY created_at DESC, seq DESC LIMIT $%d OFFSET $%d`,
		jobColumns, clause, len(args)+1, len(args)+2)
	args = append(args, opts.PageSize, opts.Offset())

	var rows []jobRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return kernel.Paginated[*seojob.Job]{}, errx.Wrap(err, "failed to list seo jobs", errx.TypeInternal)
	}

	jobs, err := toDomainSlice(rows)
	if err != nil {
		return kernel.Paginated[*seojob.Job]{}, err
	}
	return kernel.NewPaginated(jobs, opts.Page, opts.PageSize, total), nil
}

// Ping checks the connection, used by health checks.
func (r *PostgresJobRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ============================================================================
// Persistence mapping
// ============================================================================

type jobRow struct {
	ID           uuid.UUID      `db:"id"`
	TargetKind   string         `db:"target_kind"`
	TargetID     string         `db:"target_id"`
	Status       string         `db:"status"`
	Context      types.JSONText `db:"context"`
	ErrorMessage sql.NullString `db:"error_message"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (row jobRow) toDomain() (*seojob.Job, error) {
	var gc seojob.GenerationContext
	if len(row.Context) > 0 {
		if err := row.Context.Unmarshal(&gc); err != nil {
			return nil, ErrRegistry.NewWithCause(CodeCorruptContext, err).WithDetail("job_id", row.ID.String())
		}
	}
	return &seojob.Job{
		ID:           row.ID,
		TargetKind:   seojob.TargetKind(row.TargetKind),
		TargetID:     row.TargetID,
		Status:       seojob.JobStatus(row.Status),
		Context:      gc,
		ErrorMessage: row.ErrorMessage.String,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func toDomainSlice(rows []jobRow) ([]*seojob.Job, error) {
	jobs := make([]*seojob.Job, 0, len(rows))
	for _, row := range rows {
		j, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}
