package seojob

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("SEOJOB")

var (
	CodeInvalidKind            = ErrRegistry.Register("INVALID_KIND", errx.TypeValidation, http.StatusBadRequest, "Unknown target kind")
	CodeInvalidTarget          = ErrRegistry.Register("INVALID_TARGET", errx.TypeValidation, http.StatusBadRequest, "Target id is required")
	CodeInvalidStatus          = ErrRegistry.Register("INVALID_STATUS", errx.TypeValidation, http.StatusBadRequest, "Unknown job status")
	CodeInvalidBatchSize       = ErrRegistry.Register("INVALID_BATCH_SIZE", errx.TypeValidation, http.StatusBadRequest, "Batch size must be positive")
	CodeJobNotFound            = ErrRegistry.Register("JOB_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Job not found")
	CodeTargetNotFound         = ErrRegistry.Register("TARGET_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Target not found")
	CodeGenerationFailed       = ErrRegistry.Register("GENERATION_FAILED", errx.TypeExternal, http.StatusBadGateway, "Metadata generation failed")
	CodeGenerationTimeout      = ErrRegistry.Register("GENERATION_TIMEOUT", errx.TypeTimeout, http.StatusGatewayTimeout, "Metadata generation timed out")
	CodeGeneratorNotConfigured = ErrRegistry.Register("GENERATOR_NOT_CONFIGURED", errx.TypeInternal, http.StatusInternalServerError, "No metadata generator configured")
	CodeAlreadyRunning         = ErrRegistry.Register("ALREADY_RUNNING", errx.TypeConflict, http.StatusConflict, "Scheduler is already running")
	CodeSlugTaken              = ErrRegistry.Register("SLUG_TAKEN", errx.TypeConflict, http.StatusConflict, "Slug already used by another record")
)

func ErrInvalidKind(kind string) *errx.Error {
	return ErrRegistry.New(CodeInvalidKind).WithDetail("kind", kind)
}

func ErrInvalidTarget() *errx.Error { return ErrRegistry.New(CodeInvalidTarget) }

func ErrInvalidStatus(status string) *errx.Error {
	return ErrRegistry.New(CodeInvalidStatus).WithDetail("status", status)
}

func ErrInvalidBatchSize(size int) *errx.Error {
	return ErrRegistry.New(CodeInvalidBatchSize).WithDetail("batch_size", size)
}

func ErrJobNotFound(id string) *errx.Error {
	return ErrRegistry.New(CodeJobNotFound).WithDetail("job_id", id)
}

func ErrTargetNotFound(kind TargetKind, id string) *errx.Error {
	return ErrRegistry.New(CodeTargetNotFound).
		WithDetail("target_kind", string(kind)).
		WithDetail("target_id", id)
}

func ErrGenerationFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeGenerationFailed, cause)
}

func ErrGenerationTimeout(after time.Duration) *errx.Error {
	return ErrRegistry.NewWithMessage(CodeGenerationTimeout, "Metadata generation timed out after "+after.String())
}

func ErrGeneratorNotConfigured() *errx.Error { return ErrRegistry.New(CodeGeneratorNotConfigured) }

func ErrAlreadyRunning() *errx.Error { return ErrRegistry.New(CodeAlreadyRunning) }

func ErrSlugTaken(kind TargetKind, id, slug string) *errx.Error {
	return ErrRegistry.New(CodeSlugTaken).
		WithDetail("target_kind", string(kind)).
		WithDetail("target_id", id).
		WithDetail("slug", slug)
}
