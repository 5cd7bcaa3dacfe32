// Package http exposes the marketplace API over chi.
package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/utafrali/TravelGo/internal/auth"
	"github.com/utafrali/TravelGo/internal/authz"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
	"github.com/utafrali/TravelGo/pkg/middleware"
)

// IdempotencyHeader carries the client's idempotency key on create requests.
const IdempotencyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 128

func session(r *http.Request) *authz.Session {
	return auth.FromIdentity(middleware.IdentityFromContext(r.Context()))
}

func idempotencyKey(r *http.Request) (string, error) {
	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	if len(key) > maxIdempotencyKeyLength {
		return "", apperrors.InvalidInput("Idempotency-Key must be at most 128 characters")
	}
	return key, nil
}

// createdStatus is 201 for a new resource and 200 for a replay.
func createdStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}

// parseDay reads a calendar day from a query parameter. Empty is nil.
func parseDay(raw, param string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		e := apperrors.InvalidInput("invalid " + param)
		e.Fields = map[string]string{param: "must be a date such as 2024-07-04"}
		return nil, e
	}
	return &t, nil
}
