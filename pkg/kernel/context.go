package kernel

import (
	"context"
	"strings"
)

// OperatorContext describes the verified caller of an operator endpoint.
type OperatorContext struct {
	OperatorID OperatorID `json:"operator_id"`
	Name       string     `json:"name,omitempty"`
	Scopes     []string   `json:"scopes"`
}

// HasScope reports whether the operator holds scope, directly or through a
// wildcard ("*" or "prefix:*").
func (oc *OperatorContext) HasScope(scope string) bool {
	for _, s := range oc.Scopes {
		if s == scope || s == "*" {
			return true
		}
		if prefix, ok := strings.CutSuffix(s, ":*"); ok && strings.HasPrefix(scope, prefix+":") {
			return true
		}
	}
	return false
}

// HasAnyScope reports whether the operator holds at least one of scopes
func (oc *OperatorContext) HasAnyScope(scopes ...string) bool {
	for _, scope := range scopes {
		if oc.HasScope(scope) {
			return true
		}
	}
	return false
}

type ContextKey string

const (
	// OperatorContextKey stores *OperatorContext in context.Context and fiber locals
	OperatorContextKey ContextKey = "operator_context"

	// RequestIDKey stores the request id
	RequestIDKey ContextKey = "request_id"
)

// WithOperator returns a copy of ctx carrying oc
func WithOperator(ctx context.Context, oc *OperatorContext) context.Context {
	return context.WithValue(ctx, OperatorContextKey, oc)
}

// OperatorFrom extracts the operator from ctx, if any
func OperatorFrom(ctx context.Context) (*OperatorContext, bool) {
	oc, ok := ctx.Value(OperatorContextKey).(*OperatorContext)
	return oc, ok && oc != nil
}
