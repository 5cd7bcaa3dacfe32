package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/utafrali/TravelGo/pkg/errors"
	"github.com/utafrali/TravelGo/pkg/logger"
	"github.com/utafrali/TravelGo/pkg/validator"
)

// Response is the success envelope for resources that are not part of a
// fixed client contract.
type Response struct {
	Data any `json:"data"`
}

// ErrorBody is the error shape returned by every endpoint. The message is a
// plain string under "error" so existing clients can read it directly.
type ErrorBody struct {
	Error     string            `json:"error"`
	Code      string            `json:"code,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes v wrapped in the success envelope.
func WriteData(w http.ResponseWriter, status int, v any) {
	WriteJSON(w, status, Response{Data: v})
}

// WriteError translates err into an ErrorBody. AppErrors keep their code and
// message; bare sentinels are mapped to a generic message. Anything that maps
// to a 5xx is logged with the request-scoped logger and rendered without its
// cause.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	body := ErrorBody{RequestID: requestID}
	status := apperrors.HTTPStatus(err)

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body.Code = appErr.Code
		body.Error = appErr.Message
		body.Fields = appErr.Fields
	} else {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			body.Code, body.Error = "NOT_FOUND", "resource not found"
		case errors.Is(err, apperrors.ErrAlreadyExists):
			body.Code, body.Error = "ALREADY_EXISTS", "resource already exists"
		case errors.Is(err, apperrors.ErrConflict):
			body.Code, body.Error = "CONFLICT", "conflict"
		case errors.Is(err, apperrors.ErrInvalidInput):
			body.Code, body.Error = "INVALID_INPUT", err.Error()
		case errors.Is(err, apperrors.ErrUnauthorized):
			body.Code, body.Error = "UNAUTHORIZED", "Unauthorized"
		case errors.Is(err, apperrors.ErrForbiddenRole):
			body.Code, body.Error = "FORBIDDEN_ROLE", "role not permitted"
		case errors.Is(err, apperrors.ErrForbidden):
			body.Code, body.Error = "FORBIDDEN", "forbidden"
		case errors.Is(err, apperrors.ErrRateLimited):
			body.Code, body.Error = "RATE_LIMITED", "too many requests"
		case errors.Is(err, apperrors.ErrUpstream):
			body.Code, body.Error = "UPSTREAM_FAILURE", "upstream request failed"
		default:
			body.Code, body.Error = "INTERNAL_ERROR", "an internal error occurred"
		}
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("code", body.Code),
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, body)
}

// PaginatedResponse is a generic paginated list response envelope.
type PaginatedResponse[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// NewPaginatedResponse builds a PaginatedResponse and computes TotalPages and
// HasNext. A nil slice is rendered as [].
func NewPaginatedResponse[T any](data []T, totalCount, page, perPage int) PaginatedResponse[T] {
	if perPage < 1 {
		perPage = 1
	}
	totalPages := totalCount / perPage
	if totalCount%perPage > 0 {
		totalPages++
	}
	if data == nil {
		data = []T{}
	}
	return PaginatedResponse[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// WriteValidationError writes a 400 with per-field messages when err comes
// from the validator package, or the raw message otherwise.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorBody{
			Error:  "request validation failed",
			Code:   "VALIDATION_ERROR",
			Fields: valErr.Fields(),
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: err.Error(), Code: "INVALID_INPUT"})
}

// ParseUUID validates a path parameter. On failure it writes a 400 and the
// caller must return.
func ParseUUID(w http.ResponseWriter, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorBody{
			Error: "invalid id: " + param,
			Code:  "INVALID_PARAMETER",
		})
		return uuid.Nil, false
	}
	return id, true
}
