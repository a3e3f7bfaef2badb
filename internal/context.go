package internal

import (
	"context"
	"time"

	"github.com/frahmantamala/procurement-inventory/internal/core/access"
)

type ctxKey string

const (
	ContextPrincipalKey ctxKey = "principal"
	ContextClientIPKey  ctxKey = "clientIP"
)

// Principal is the authenticated, active user attached to a request.
type Principal struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  access.Role `json:"role"`
}

func (p *Principal) Can(c access.Capability) bool {
	return p != nil && access.Allows(p.Role, c)
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextPrincipalKey, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(ContextPrincipalKey).(*Principal)
	return p, ok && p != nil
}

// ActorIDFromContext returns the principal's id, or 0 for unauthenticated calls.
func ActorIDFromContext(ctx context.Context) int64 {
	if p, ok := PrincipalFromContext(ctx); ok {
		return p.ID
	}
	return 0
}

func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ContextClientIPKey, ip)
}

func ClientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if ip, ok := ctx.Value(ContextClientIPKey).(string); ok {
		return ip
	}
	return ""
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
