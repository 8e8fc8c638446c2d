package operator

import (
	"net/http"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("OPERATOR")

var (
	CodeMissingToken = ErrRegistry.Register("MISSING_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Missing bearer token")
	CodeInvalidToken = ErrRegistry.Register("INVALID_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Invalid or expired token")
	CodeForbidden    = ErrRegistry.Register("FORBIDDEN", errx.TypeAuthorization, http.StatusForbidden, "Operator lacks the required scope")
)

func ErrMissingToken() *errx.Error {
	return ErrRegistry.New(CodeMissingToken)
}

func ErrInvalidToken(reason string) *errx.Error {
	return ErrRegistry.New(CodeInvalidToken).WithDetail("reason", reason)
}

func ErrForbidden(scopes ...string) *errx.Error {
	return ErrRegistry.New(CodeForbidden).WithDetail("required_scopes", scopes)
}
