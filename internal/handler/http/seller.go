package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/TravelGo/internal/service"
	"github.com/utafrali/TravelGo/pkg/httputil"
)

// SellerHandler serves the seller area.
type SellerHandler struct {
	dashboard *service.DashboardService
	seller    *service.SellerService
	logger    *slog.Logger
}

// NewSellerHandler creates a new seller HTTP handler.
func NewSellerHandler(dashboard *service.DashboardService, seller *service.SellerService, logger *slog.Logger) *SellerHandler {
	return &SellerHandler{dashboard: dashboard, seller: seller, logger: logger}
}

// Dashboard handles GET /api/v1/seller/dashboard. The summary is written
// without the data envelope.
func (h *SellerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Summary(r.Context(), session(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// Packages handles GET /api/v1/seller/packages
func (h *SellerHandler) Packages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.seller.Packages(r.Context(), session(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, packages)
}

// ExportBookings handles GET /api/v1/seller/bookings/export
func (h *SellerHandler) ExportBookings(w http.ResponseWriter, r *http.Request) {
	out, err := h.seller.ExportBookings(r.Context(), session(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	name := fmt.Sprintf("bookings-%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
