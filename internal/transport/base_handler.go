package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/pkg/logger"
	"github.com/go-chi/chi"
)

const maxBodyBytes = 1 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes a transport-level error (malformed body, bad path param).
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Warn("http error", "status", status, "message", message)
	h.WriteJSON(w, status, internal.Response{Error: &internal.AppError{
		Type:    errorTypeFor(status),
		Code:    internal.ErrCodeInvalidRequest,
		Message: message,
	}})
}

// HandleServiceError maps service errors to responses. Anything that is not an
// AppError, or is an internal one, is logged with its cause and reported as a
// generic 500.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	lg := logger.FromOr(r.Context(), h.Logger)

	appErr, ok := internal.IsAppError(err)
	if !ok || appErr.StatusCode >= http.StatusInternalServerError || appErr.StatusCode == 0 {
		lg.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		generic := internal.NewInternalError("internal server error", nil)
		status, body := generic.ToHTTPResponse()
		h.WriteJSON(w, status, body)
		return
	}

	lg.Info("request rejected", "method", r.Method, "path", r.URL.Path, "status", appErr.StatusCode, "code", appErr.Code)
	status, body := appErr.ToHTTPResponse()
	h.WriteJSON(w, status, body)
}

// DecodeJSON reads a size-limited JSON body into dst. Unknown fields are tolerated.
func (h *BaseHandler) DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			h.WriteError(w, http.StatusBadRequest, "request body is required")
			return false
		}
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// IDParam parses a positive int64 chi URL parameter.
func (h *BaseHandler) IDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// Principal returns the authenticated user or writes 401.
func (h *BaseHandler) Principal(w http.ResponseWriter, r *http.Request) (*internal.Principal, bool) {
	p, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrMissingPrincipal)
		return nil, false
	}
	return p, true
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}

func errorTypeFor(status int) internal.ErrorType {
	switch status {
	case http.StatusUnauthorized:
		return internal.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return internal.ErrorTypeForbidden
	case http.StatusNotFound:
		return internal.ErrorTypeNotFound
	case http.StatusConflict:
		return internal.ErrorTypeConflict
	}
	if status >= http.StatusInternalServerError {
		return internal.ErrorTypeInternal
	}
	return internal.ErrorTypeValidation
}
