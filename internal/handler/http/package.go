package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/TravelGo/internal/explore"
	"github.com/utafrali/TravelGo/internal/service"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
	"github.com/utafrali/TravelGo/pkg/httputil"
	"github.com/utafrali/TravelGo/pkg/pagination"
)

// PackageHandler serves the public catalog.
type PackageHandler struct {
	catalog *service.CatalogService
	reviews *service.ReviewService
	logger  *slog.Logger
}

// NewPackageHandler creates a new package HTTP handler.
func NewPackageHandler(catalog *service.CatalogService, reviews *service.ReviewService, logger *slog.Logger) *PackageHandler {
	return &PackageHandler{catalog: catalog, reviews: reviews, logger: logger}
}

// filterFromQuery builds the explore filter from q, min_price, max_price,
// category and destination. Absent prices keep the defaults.
func filterFromQuery(r *http.Request) (explore.FilterState, error) {
	q := r.URL.Query()
	state := explore.DefaultFilterState()
	state.Search = q.Get("q")
	state.Destination = q.Get("destination")

	fields := map[string]string{}
	for _, p := range []struct {
		name string
		dst  *float64
	}{{"min_price", &state.MinPrice}, {"max_price", &state.MaxPrice}} {
		raw := strings.TrimSpace(q.Get(p.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			fields[p.name] = "must be a number"
			continue
		}
		*p.dst = v
	}
	for _, c := range q["category"] {
		for _, part := range strings.Split(c, ",") {
			if part = strings.TrimSpace(part); part != "" {
				state.Categories = append(state.Categories, part)
			}
		}
	}

	if len(fields) > 0 {
		err := apperrors.InvalidInput("invalid filter")
		err.Fields = fields
		return state, err
	}
	return state, nil
}

// List handles GET /api/v1/packages
func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	state, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page := pagination.FromRequest(r)
	result, err := h.catalog.List(r.Context(), state, page)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(result.Data, result.TotalCount, result.Page, result.PerPage))
}

// Get handles GET /api/v1/packages/{id}
func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	detail, err := h.catalog.Get(r.Context(), session(r), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, detail)
}

// Reviews handles GET /api/v1/packages/{id}/reviews
func (h *PackageHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	reviews, err := h.reviews.ListForPackage(r.Context(), session(r), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, reviews)
}

// Quote handles GET /api/v1/packages/{id}/quote?travelers=&selected_date=
func (h *PackageHandler) Quote(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	travelers := 1
	if raw := r.URL.Query().Get("travelers"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			e := apperrors.InvalidInput("invalid travelers")
			e.Fields = map[string]string{"travelers": "must be a whole number"}
			httputil.WriteError(w, r, e, h.logger)
			return
		}
		travelers = v
	}
	selected, err := parseDay(r.URL.Query().Get("selected_date"), "selected_date")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	view, err := h.catalog.Quote(r.Context(), session(r), id.String(), travelers, selected)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}

// Categories handles GET /api/v1/categories
func (h *PackageHandler) Categories(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.catalog.Categories())
}
