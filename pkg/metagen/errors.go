package metagen

import (
	"net/http"
	"strings"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("METAGEN")

var (
	CodeRequestFailed   = ErrRegistry.Register("REQUEST_FAILED", errx.TypeExternal, http.StatusBadGateway, "Generator request failed")
	CodeUnauthorized    = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthorization, http.StatusUnauthorized, "Generator rejected the credentials")
	CodeRateLimited     = ErrRegistry.Register("RATE_LIMITED", errx.TypeExternal, http.StatusTooManyRequests, "Generator rate limit exceeded")
	CodeModelNotFound   = ErrRegistry.Register("MODEL_NOT_FOUND", errx.TypeValidation, http.StatusNotFound, "Generator model not found or not accessible")
	CodeEmptyResponse   = ErrRegistry.Register("EMPTY_RESPONSE", errx.TypeExternal, http.StatusBadGateway, "Generator returned no content")
	CodeInvalidResponse = ErrRegistry.Register("INVALID_RESPONSE", errx.TypeExternal, http.StatusBadGateway, "Generator returned unusable metadata")
	CodeMissingConfig   = ErrRegistry.Register("MISSING_CONFIG", errx.TypeValidation, http.StatusBadRequest, "Generator is missing required configuration")
	CodeUnknownProvider = ErrRegistry.Register("UNKNOWN_PROVIDER", errx.TypeValidation, http.StatusBadRequest, "Unknown generator provider")
)

func ErrEmptyResponse(provider string) *errx.Error {
	return ErrRegistry.New(CodeEmptyResponse).WithDetail("provider", provider)
}

func ErrInvalidResponse(reason string) *errx.Error {
	return ErrRegistry.New(CodeInvalidResponse).WithDetail("reason", reason)
}

func ErrMissingConfig(provider, field string) *errx.Error {
	return ErrRegistry.New(CodeMissingConfig).
		WithDetail("provider", provider).
		WithDetail("field", field)
}

func ErrUnknownProvider(name string) *errx.Error {
	return ErrRegistry.New(CodeUnknownProvider).WithDetail("provider", name)
}

// Classify maps a provider SDK error to a METAGEN code. status is the HTTP
// status when the SDK exposes one, 0 otherwise; the message is inspected
// as a fallback.
func Classify(provider string, status int, err error) *errx.Error {
	if err == nil {
		return nil
	}

	var custom *errx.Error
	if errx.As(err, &custom) {
		return custom
	}

	code := codeForStatus(status)
	if code == nil {
		code = codeForMessage(strings.ToLower(err.Error()))
	}

	e := ErrRegistry.NewWithCause(code, err).WithDetail("provider", provider)
	if status > 0 {
		e = e.WithDetail("status", status)
	}
	return e
}

func codeForStatus(status int) *errx.ErrorCode {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return CodeUnauthorized
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusNotFound:
		return CodeModelNotFound
	case 0:
		return nil
	default:
		return CodeRequestFailed
	}
}

func codeForMessage(msg string) *errx.ErrorCode {
	switch {
	case strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "access denied") ||
		strings.Contains(msg, "accessdenied"):
		return CodeUnauthorized
	case strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "throttl") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "quota"):
		return CodeRateLimited
	case strings.Contains(msg, "model") && strings.Contains(msg, "not found"):
		return CodeModelNotFound
	default:
		return CodeRequestFailed
	}
}
