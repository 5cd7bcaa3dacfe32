// Package authz holds the authorization checks for mutating and
// seller-scoped operations. Every check takes the caller's session
// explicitly; a nil session is an anonymous caller.
package authz

import (
	"time"

	"github.com/utafrali/TravelGo/internal/domain"
	apperrors "github.com/utafrali/TravelGo/pkg/errors"
)

// Session is a signed-in caller.
type Session struct {
	ID        string
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}

// Active reports whether s is a live session at now.
func (s *Session) Active(now time.Time) bool {
	return s != nil && s.UserID != "" && (s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt))
}

// IsSeller reports whether s is an active seller session.
func (s *Session) IsSeller(now time.Time) bool {
	return s.Active(now) && s.Role == domain.RoleSeller
}

var now = time.Now

// RequireAuthenticated fails with Unauthorized unless s is active.
func RequireAuthenticated(s *Session) error {
	if !s.Active(now()) {
		return apperrors.Unauthorized("Unauthorized")
	}
	return nil
}

// RequireSeller fails with Unauthorized unless s is an active seller.
// Non-sellers get 401 rather than 403 on seller endpoints.
func RequireSeller(s *Session) error {
	if !s.IsSeller(now()) {
		return apperrors.Unauthorized("Unauthorized")
	}
	return nil
}

// RequireNonSeller fails with Unauthorized for anonymous callers and with
// ForbiddenRole for sellers. Reviews and bookings are buyer actions.
func RequireNonSeller(s *Session) error {
	if err := RequireAuthenticated(s); err != nil {
		return err
	}
	if s.Role == domain.RoleSeller {
		return apperrors.ForbiddenRole("sellers cannot perform this action")
	}
	return nil
}

// CanPreview reports whether s may read pkg. Approved packages are public;
// an unapproved one is visible only to its seller.
func CanPreview(s *Session, pkg *domain.Package) bool {
	if pkg == nil {
		return false
	}
	if pkg.IsApproved {
		return true
	}
	return s.Active(now()) && s.UserID == pkg.SellerID
}
