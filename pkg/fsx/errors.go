package fsx

import (
	"net/http"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("FSX")

var (
	CodeFileNotFound = ErrRegistry.Register("FILE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "File not found")
	CodeInvalidPath  = ErrRegistry.Register("INVALID_PATH", errx.TypeValidation, http.StatusBadRequest, "Path escapes the store root")
	CodeReadFailed   = ErrRegistry.Register("READ_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to read file")
	CodeWriteFailed  = ErrRegistry.Register("WRITE_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to write file")
)

func ErrFileNotFound(path string) *errx.Error {
	return ErrRegistry.New(CodeFileNotFound).WithDetail("path", path)
}

func ErrInvalidPath(path string) *errx.Error {
	return ErrRegistry.New(CodeInvalidPath).WithDetail("path", path)
}

func ErrReadFailed(path string, cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeReadFailed, cause).WithDetail("path", path)
}

func ErrWriteFailed(path string, cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeWriteFailed, cause).WithDetail("path", path)
}
