package operator

import (
	"strings"

	"github.com/Abraxas-365/seoqueue/pkg/kernel"
	"github.com/Abraxas-365/seoqueue/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

// LocalOperator is attached to every request when authentication is disabled.
var LocalOperator = kernel.OperatorContext{
	OperatorID: kernel.NewOperatorID("local"),
	Name:       "local development",
	Scopes:     []string{"*"},
}

// Middleware authenticates requests with a Verifier
type Middleware struct {
	verifier *Verifier
}

func NewMiddleware(verifier *Verifier) *Middleware {
	if verifier == nil {
		logx.Warn("operator: no token secret configured, admin API is unauthenticated")
	}
	return &Middleware{verifier: verifier}
}

// Authenticate reads the bearer token and stores the operator in the fiber
// locals and the request's user context.
func (m *Middleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var oc *kernel.OperatorContext
		if m.verifier == nil {
			local := LocalOperator
			oc = &local
		} else {
			token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
			if !ok {
				return ErrMissingToken()
			}
			verified, err := m.verifier.Verify(token)
			if err != nil {
				return err
			}
			oc = verified
		}

		c.Locals(kernel.OperatorContextKey, oc)
		c.SetUserContext(kernel.WithOperator(c.UserContext(), oc))
		return c.Next()
	}
}

// RequireScope rejects operators that hold none of scopes.
func (m *Middleware) RequireScope(scopes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		oc, ok := FromCtx(c)
		if !ok {
			return ErrMissingToken()
		}
		if !oc.HasAnyScope(scopes...) {
			return ErrForbidden(scopes...)
		}
		return c.Next()
	}
}

// FromCtx returns the operator attached by Authenticate.
func FromCtx(c *fiber.Ctx) (*kernel.OperatorContext, bool) {
	oc, ok := c.Locals(kernel.OperatorContextKey).(*kernel.OperatorContext)
	return oc, ok && oc != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
