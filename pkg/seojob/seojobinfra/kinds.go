package seojobinfra

import (
	"fmt"

	"github.com/Abraxas-365/seoqueue/pkg/seojob"
)

// kindTable maps a target kind to its catalog table. Every expression uses
// the alias c for the content table.
type kindTable struct {
	table       string
	eligible    string
	relatedInfo string
}

var kindTables = map[seojob.TargetKind]kindTable{
	seojob.KindCollection: {
		table:    "collections",
		eligible: "c.status = 'approved'",
		relatedInfo: `jsonb_build_object(
			'curator', c.curator_name,
			'item_count', (SELECT count(*) FROM items i WHERE i.collection_id = c.id))`,
	},
	seojob.KindItem: {
		table:    "items",
		eligible: "c.status = 'approved'",
		relatedInfo: `jsonb_build_object(
			'collection_id', c.collection_id,
			'collection_title', (SELECT p.title FROM collections p WHERE p.id = c.collection_id),
			'position', c.position)`,
	},
	seojob.KindProfile: {
		table:    "profiles",
		eligible: "c.status = 'approved'",
		relatedInfo: `jsonb_build_object(
			'role', c.role,
			'location', c.location)`,
	},
}

// kindQueries holds the SQL prepared once per kind.
type kindQueries struct {
	listEligible   string
	listWithoutJob string
	findByID       string
	writeMetadata  string
	slugTaken      string
	count          string
	exists         string
}

func buildKindQueries(kt kindTable) kindQueries {
	projection := fmt.Sprintf(`
		SELECT c.id::text AS id,
		       c.title,
		       COALESCE(c.description, '') AS description,
		       COALESCE(c.slug, '') AS slug,
		       %s AS related_info
		FROM %s c`, kt.relatedInfo, kt.table)

	return kindQueries{
		listEligible: fmt.Sprintf(`%s WHERE %s ORDER BY c.id`, projection, kt.eligible),
		listWithoutJob: fmt.Sprintf(`%s
		WHERE %s
		  AND NOT EXISTS (
		      SELECT 1 FROM seo_jobs j
		      WHERE j.target_kind = $1 AND j.target_id = c.id::text)
		ORDER BY c.id`, projection, kt.eligible),
		findByID: fmt.Sprintf(`%s WHERE c.id::text = $1`, projection),
		writeMetadata: fmt.Sprintf(`
		UPDATE %s SET
			seo_metadata = $1,
			slug = COALESCE(NULLIF($2, ''), slug),
			updated_at = now()
		WHERE id::text = $3`, kt.table),
		slugTaken: fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1 AND id::text <> $2)`, kt.table),
		count:     fmt.Sprintf(`SELECT count(*) FROM %s`, kt.table),
		exists:    fmt.Sprintf(`EXISTS (SELECT 1 FROM %s c WHERE c.id::text = j.target_id)`, kt.table),
	}
}

func queriesByKind() map[seojob.TargetKind]kindQueries {
	out := make(map[seojob.TargetKind]kindQueries, len(kindTables))
	for kind, kt := range kindTables {
		out[kind] = buildKindQueries(kt)
	}
	return out
}

func unknownKind(kind seojob.TargetKind) error {
	return ErrRegistry.New(CodeUnknownKind).WithDetail("target_kind", string(kind))
}
