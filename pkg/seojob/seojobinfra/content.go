package seojobinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/Abraxas-365/seoqueue/pkg/seojob"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// PostgresContentRepository reads catalog tables and writes SEO fields back.
// The catalog tables are owned by the catalog service; only seo_metadata,
// slug and updated_at are ever updated here.
type PostgresContentRepository struct {
	db      *sqlx.DB
	queries map[seojob.TargetKind]kindQueries
}

func NewPostgresContentRepository(db *sqlx.DB) *PostgresContentRepository {
	return &PostgresContentRepository{
		db:      db,
		queries: queriesByKind(),
	}
}

var _ seojob.ContentRepository = (*PostgresContentRepository)(nil)

type contentRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Slug        string         `db:"slug"`
	RelatedInfo types.JSONText `db:"related_info"`
}

func (row contentRow) toDomain(kind seojob.TargetKind) *seojob.Content {
	c := &seojob.Content{
		ID:          row.ID,
		Kind:        kind,
		Title:       row.Title,
		Description: row.Description,
		Slug:        row.Slug,
	}
	if len(row.RelatedInfo) > 0 {
		var info map[string]any
		if err := row.RelatedInfo.Unmarshal(&info); err == nil {
			c.RelatedInfo = info
		}
	}
	return c
}

func (r *PostgresContentRepository) kind(kind seojob.TargetKind) (kindQueries, error) {
	q, ok := r.queries[kind]
	if !ok {
		return kindQueries{}, unknownKind(kind)
	}
	return q, nil
}

func (r *PostgresContentRepository) ListEligible(ctx context.Context, kind seojob.TargetKind) ([]*seojob.Content, error) {
	q, err := r.kind(kind)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, kind, q.listEligible)
}

func (r *PostgresContentRepository) ListWithoutJob(ctx context.Context, kind seojob.TargetKind) ([]*seojob.Content, error) {
	q, err := r.kind(kind)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, kind, q.listWithoutJob, string(kind))
}

func (r *PostgresContentRepository) list(ctx context.Context, kind seojob.TargetKind, query string, args ...any) ([]*seojob.Content, error) {
	var rows []contentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapContentErr(err, "failed to list content", kind)
	}
	out := make([]*seojob.Content, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain(kind))
	}
	return out, nil
}

func (r *PostgresContentRepository) FindTarget(ctx context.Context, kind seojob.TargetKind, id string) (*seojob.Content, error) {
	q, err := r.kind(kind)
	if err != nil {
		return nil, err
	}

	var row contentRow
	if err := r.db.GetContext(ctx, &row, q.findByID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seojob.ErrTargetNotFound(kind, id)
		}
		return nil, wrapContentErr(err, "failed to find content", kind).WithDetail("target_id", id)
	}
	return row.toDomain(kind), nil
}

func (r *PostgresContentRepository) WriteMetadata(ctx context.Context, kind seojob.TargetKind, id string, meta seojob.Metadata, slug string) error {
	q, err := r.kind(kind)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return errx.Wrap(err, "failed to encode seo metadata", errx.TypeInternal)
	}

	result, err := r.db.ExecContext(ctx, q.writeMetadata, string(raw), slug, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation on slug
			return seojob.ErrSlugTaken(kind, id, slug)
		}
		return wrapContentErr(err, "failed to write seo metadata", kind).WithDetail("target_id", id)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected on metadata write", errx.TypeInternal)
	}
	if rowsAffected == 0 {
		return seojob.ErrTargetNotFound(kind, id)
	}
	return nil
}

func (r *PostgresContentRepository) SlugTaken(ctx context.Context, kind seojob.TargetKind, slug, excludeID string) (bool, error) {
	q, err := r.kind(kind)
	if err != nil {
		return false, err
	}

	var taken bool
	if err := r.db.GetContext(ctx, &taken, q.slugTaken, slug, excludeID); err != nil {
		return false, wrapContentErr(err, "failed to check slug", kind)
	}
	return taken, nil
}

func (r *PostgresContentRepository) Count(ctx context.Context, kind seojob.TargetKind) (int, error) {
	q, err := r.kind(kind)
	if err != nil {
		return 0, err
	}

	var n int
	if err := r.db.GetContext(ctx, &n, q.count); err != nil {
		return 0, wrapContentErr(err, "failed to count content", kind)
	}
	return n, nil
}

func wrapContentErr(err error, msg string, kind seojob.TargetKind) *errx.Error {
	e := errx.Wrap(err, msg, errx.TypeInternal).WithDetail("target_kind", string(kind))
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "42P01" { // undefined_table
		e.WithDetail("table", kindTables[kind].table)
	}
	return e
}
