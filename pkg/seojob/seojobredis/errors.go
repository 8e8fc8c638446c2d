package seojobredis

import (
	"net/http"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
)

var redisErrors = errx.NewRegistry("SEOJOB_REDIS")

var (
	ErrRateLimit = redisErrors.Register("RATE_LIMIT", errx.TypeExternal, http.StatusBadGateway, "Redis rate limit check failed")
	ErrAcquire   = redisErrors.Register("ACQUIRE", errx.TypeExternal, http.StatusBadGateway, "Redis lease acquire failed")
	ErrRelease   = redisErrors.Register("RELEASE", errx.TypeExternal, http.StatusBadGateway, "Redis lease release failed")
)
