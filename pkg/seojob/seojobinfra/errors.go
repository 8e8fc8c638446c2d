package seojobinfra

import (
	"net/http"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("SEOJOB_PG")

var (
	CodeMigrationFailed = ErrRegistry.Register("MIGRATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to apply migration")
	CodeCorruptContext  = ErrRegistry.Register("CORRUPT_CONTEXT", errx.TypeInternal, http.StatusInternalServerError, "Stored job context is not valid JSON")
	CodeUnknownKind     = ErrRegistry.Register("UNKNOWN_KIND", errx.TypeInternal, http.StatusInternalServerError, "No table mapping for target kind")
)
