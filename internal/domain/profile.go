package domain

import (
	"strings"
	"time"
)

// Profile roles.
const (
	RoleUser   = "user"
	RoleSeller = "seller"
)

// Profile is the marketplace profile of an identity-provider user.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	UserName    string    `json:"user_name"`
	Role        string    `json:"role"`
	CompanyName *string   `json:"company_name,omitempty"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsValidRole reports whether role is user or seller.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleSeller
}

// DefaultUserName derives a user name from the local part of an email.
func DefaultUserName(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return local
}
