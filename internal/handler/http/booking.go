package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/TravelGo/internal/domain"
	"github.com/utafrali/TravelGo/internal/service"
	"github.com/utafrali/TravelGo/pkg/httputil"
	"github.com/utafrali/TravelGo/pkg/validator"
)

// BookingHandler handles booking creation and the buyer's bookings.
type BookingHandler struct {
	service *service.BookingService
	logger  *slog.Logger
}

// NewBookingHandler creates a new booking HTTP handler.
func NewBookingHandler(svc *service.BookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{service: svc, logger: logger}
}

// CreateBookingRequest is the JSON request body for booking a package. The
// selected date is checked against the package's start dates by the service.
type CreateBookingRequest struct {
	PackageID    string       `json:"package_id" validate:"required,uuid"`
	Travelers    int          `json:"travelers"`
	SelectedDate *domain.Date `json:"selected_date"`
}

// Create handles POST /api/v1/bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	key, err := idempotencyKey(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	in := service.CreateBookingInput{
		PackageID:      req.PackageID,
		Travelers:      req.Travelers,
		IdempotencyKey: key,
	}
	if req.SelectedDate != nil && !req.SelectedDate.IsZero() {
		in.SelectedDate = &req.SelectedDate.Time
	}

	view, created, err := h.service.Create(r.Context(), session(r), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, createdStatus(created), view)
}

// ListMine handles GET /api/v1/me/bookings
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.ListMine(r.Context(), session(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, bookings)
}

// Voucher handles GET /api/v1/bookings/{id}/voucher
func (h *BookingHandler) Voucher(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	name, pdf, err := h.service.Voucher(r.Context(), session(r), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
