package pricing

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/utafrali/TravelGo/internal/domain"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// ErrDateRequired is returned when a booking has no selected date or the
// selected date is not one of the package's start dates.
var ErrDateRequired = &apperrors.AppError{
	Code:    "VALIDATION_ERROR",
	Message: "please select an available start date",
	Fields:  map[string]string{"selected_date": "must be one of the package start dates"},
	Status:  http.StatusBadRequest,
	Err:     apperrors.ErrInvalidInput,
}

// sameDay compares the UTC calendar days of a and b.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// IsDateAvailable reports whether date falls on the same calendar day as
// one of offered. Time of day is ignored.
func IsDateAvailable(date time.Time, offered []time.Time) bool {
	if date.IsZero() {
		return false
	}
	for _, o := range offered {
		if sameDay(date, o) {
			return true
		}
	}
	return false
}

// CheckBookable returns ErrDateRequired unless selected is set and available.
func CheckBookable(selected *time.Time, offered []time.Time) error {
	if selected == nil || !IsDateAvailable(*selected, offered) {
		return ErrDateRequired
	}
	return nil
}

// ParseStartDates normalizes a package's stored start dates, which sellers
// enter in several formats ("2024-07-04", RFC 3339, "Jul 4, 2024"), to UTC
// calendar days in input order. Blank entries are skipped.
func ParseStartDates(raw []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(raw))
	var errs []error
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			errs = append(errs, fmt.Errorf("start date %q: %w", s, err))
			continue
		}
		out = append(out, domain.NewDate(t).Time)
	}
	return out, errors.Join(errs...)
}
