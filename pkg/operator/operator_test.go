package operator

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(scopes ...string) Claims {
	now := time.Now()
	return Claims{
		Name:   "Ana",
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "op-1",
			Issuer:    "identity",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestVerifier(t *testing.T) {
	assert.Nil(t, NewVerifier("", "identity"))

	v := NewVerifier(secret, "identity")
	oc, err := v.Verify(sign(t, jwt.SigningMethodHS256, validClaims(ScopeJobs)))
	require.NoError(t, err)
	assert.Equal(t, "op-1", oc.OperatorID.String())
	assert.True(t, oc.HasScope(ScopeJobs))

	expired := validClaims(ScopeJobs)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	_, err = v.Verify(sign(t, jwt.SigningMethodHS256, expired))
	assert.True(t, errx.HasCode(err, CodeInvalidToken))

	wrongIssuer := validClaims(ScopeJobs)
	wrongIssuer.Issuer = "someone-else"
	_, err = v.Verify(sign(t, jwt.SigningMethodHS256, wrongIssuer))
	assert.True(t, errx.HasCode(err, CodeInvalidToken))

	_, err = v.Verify(sign(t, jwt.SigningMethodHS512, validClaims(ScopeJobs)))
	assert.True(t, errx.HasCode(err, CodeInvalidToken))

	noSubject := validClaims(ScopeJobs)
	noSubject.Subject = ""
	_, err = v.Verify(sign(t, jwt.SigningMethodHS256, noSubject))
	assert.True(t, errx.HasCode(err, CodeInvalidToken))

	blankSubject := validClaims(ScopeJobs)
	blankSubject.Subject = "   "
	_, err = v.Verify(sign(t, jwt.SigningMethodHS256, blankSubject))
	assert.True(t, errx.HasCode(err, CodeInvalidToken))
}

func newApp(m *Middleware) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			e := errx.FromError(err)
			return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
		},
	})
	app.Get("/jobs", m.Authenticate(), m.RequireScope(ScopeJobs, "admin:*"), func(c *fiber.Ctx) error {
		oc, _ := FromCtx(c)
		return c.SendString(oc.OperatorID.String())
	})
	return app
}

func TestMiddleware(t *testing.T) {
	app := newApp(NewMiddleware(NewVerifier(secret, "identity")))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"bad scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"no scope", "Bearer " + sign(t, jwt.SigningMethodHS256, validClaims("seo:read")), http.StatusForbidden},
		{"scope", "Bearer " + sign(t, jwt.SigningMethodHS256, validClaims(ScopeJobs)), http.StatusOK},
		{"wildcard", "Bearer " + sign(t, jwt.SigningMethodHS256, validClaims("admin:*")), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestMiddleware_Disabled(t *testing.T) {
	app := newApp(NewMiddleware(nil))
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/jobs", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
