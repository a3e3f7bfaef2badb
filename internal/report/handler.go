package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/procurement-inventory/internal/audit"
	"github.com/frahmantamala/procurement-inventory/internal/transport"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Orders handles GET /reports/orders
func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.OrderSummary(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rows)
}

// LowStock handles GET /reports/low-stock
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.LowStock(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, items)
}

// AuditLog handles GET /reports/audit?user_id=&action=&entity_type=&start_date=&end_date=
func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	f, err := audit.ParseFilter(r.URL.Query())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	entries, err := h.Service.AuditLog(r.Context(), f)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entries)
}

// ExportAuditLog handles GET /reports/audit/export with the same filters.
func (h *Handler) ExportAuditLog(w http.ResponseWriter, r *http.Request) {
	f, err := audit.ParseFilter(r.URL.Query())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.Service.ExportAuditLog(r.Context(), f, &buf); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	name := fmt.Sprintf("audit-log-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Error("failed to write audit export", "error", err)
	}
}
