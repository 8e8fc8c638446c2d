// Package operator authenticates callers of the admin surface. Tokens are
// HS256 JWTs issued by the external identity service; this package only
// verifies them.
package operator

import (
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

// ScopeJobs grants every job queue operation.
const ScopeJobs = "seo:jobs"

// Claims is the token payload the identity service signs.
type Claims struct {
	Name   string   `json:"name,omitempty"`
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// Verifier validates operator tokens
type Verifier struct {
	secretKey []byte
	issuer    string
	leeway    time.Duration
}

// NewVerifier returns nil when secret is empty, which disables authentication.
func NewVerifier(secret, issuer string) *Verifier {
	if secret == "" {
		return nil
	}
	return &Verifier{secretKey: []byte(secret), issuer: issuer, leeway: 30 * time.Second}
}

// Verify parses tokenString and returns the operator it identifies.
func (v *Verifier) Verify(tokenString string) (*kernel.OperatorContext, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken(err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken("invalid claims")
	}
	id := kernel.NewOperatorID(strings.TrimSpace(claims.Subject))
	if id.IsEmpty() {
		return nil, ErrInvalidToken("missing subject")
	}

	return &kernel.OperatorContext{
		OperatorID: id,
		Name:       claims.Name,
		Scopes:     claims.Scopes,
	}, nil
}
