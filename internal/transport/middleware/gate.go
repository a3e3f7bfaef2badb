package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/core/access"
	"github.com/frahmantamala/procurement-inventory/pkg/logger"
)

// PrincipalResolver turns a bearer token into an active user.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (*internal.Principal, error)
}

// Authenticate rejects requests without a valid token for an active user.
func Authenticate(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeAppError(w, internal.ErrMissingPrincipal)
				return
			}

			p, err := resolver.ResolvePrincipal(r.Context(), token)
			if err != nil {
				appErr, ok := internal.IsAppError(err)
				if !ok || appErr.StatusCode >= http.StatusInternalServerError {
					logger.From(r.Context()).Error("principal resolution failed", "error", err)
					writeAppError(w, internal.NewInternalError("internal server error", nil))
					return
				}
				logger.From(r.Context()).Info("authentication rejected", "code", appErr.Code)
				writeAppError(w, appErr)
				return
			}

			ctx := internal.ContextWithPrincipal(r.Context(), p)
			ctx = logger.With(ctx, "userID", p.ID, "role", p.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require admits the request only when the principal's role holds capability c.
func Require(c access.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				writeAppError(w, internal.ErrMissingPrincipal)
				return
			}

			if !p.Can(c) {
				logger.From(r.Context()).Warn("access denied",
					"user_id", p.ID,
					"role", p.Role,
					"required_capability", c)
				writeAppError(w, internal.ErrInsufficientRole)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func writeAppError(w http.ResponseWriter, e *internal.AppError) {
	status, body := e.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
