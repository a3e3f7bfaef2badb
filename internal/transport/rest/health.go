package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

const checkTimeout = 2 * time.Second

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Uptime     string                `json:"uptime"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	DurationMs int64        `json:"duration_ms"`
}

// Pinger is satisfied by *sql.DB and *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CheckFunc probes one dependency; the returned error is never shown to clients.
type CheckFunc func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]CheckFunc
	started time.Time
}

func NewHealthHandler(db Pinger) *HealthHandler {
	h := &HealthHandler{checks: map[string]CheckFunc{}, started: time.Now()}
	return h.WithCheck("database", db.PingContext)
}

// WithCheck registers an extra readiness probe under name.
func (h *HealthHandler) WithCheck(name string, fn CheckFunc) *HealthHandler {
	h.checks[name] = fn
	return h
}

// Ping reports liveness only.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

// Check runs every probe and answers 503 when any of them fails.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := HealthResponse{
		Status:     HealthHealthy,
		CheckedAt:  time.Now().UTC(),
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		Components: make(map[string]CheckEntry, len(names)),
	}

	for _, name := range names {
		entry := h.run(r.Context(), h.checks[name])
		if entry.Status != HealthHealthy {
			entry.Message = name + " unreachable"
			resp.Status = HealthUnhealthy
		}
		resp.Components[name] = entry
	}

	status := http.StatusOK
	if resp.Status != HealthHealthy {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *HealthHandler) run(parent context.Context, fn CheckFunc) CheckEntry {
	ctx, cancel := context.WithTimeout(parent, checkTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	entry := CheckEntry{Status: HealthHealthy, DurationMs: time.Since(start).Milliseconds()}
	if err != nil {
		entry.Status = HealthUnhealthy
	}
	return entry
}
