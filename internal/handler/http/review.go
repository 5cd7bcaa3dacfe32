package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/TravelGo/internal/service"
	"github.com/utafrali/TravelGo/pkg/httputil"
	"github.com/utafrali/TravelGo/pkg/validator"
)

// ReviewHandler handles review creation.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

// CreateReviewRequest is the JSON request body for posting a review.
type CreateReviewRequest struct {
	ProfileID  string `json:"profile_id"`
	PackageID  string `json:"package_id" validate:"required,uuid"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	ReviewText string `json:"review_text" validate:"max=2000"`
}

// Create handles POST /api/v1/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	key, err := idempotencyKey(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	review, created, err := h.service.Create(r.Context(), session(r), service.CreateReviewInput{
		PackageID:      req.PackageID,
		ProfileID:      req.ProfileID,
		Rating:         req.Rating,
		ReviewText:     req.ReviewText,
		IdempotencyKey: key,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, createdStatus(created), review)
}
