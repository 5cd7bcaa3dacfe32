package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/TravelGo/internal/service"
	"github.com/utafrali/TravelGo/pkg/httputil"
	"github.com/utafrali/TravelGo/pkg/middleware"
	"github.com/utafrali/TravelGo/pkg/validator"
)

// AuthHandler handles sign-up, sign-in, sign-out and the caller's profile.
type AuthHandler struct {
	service      *service.AuthService
	secureCookie bool
	logger       *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler. secureCookie marks the
// session cookie Secure.
func NewAuthHandler(svc *service.AuthService, secureCookie bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, secureCookie: secureCookie, logger: logger}
}

// SignUpRequest is the JSON request body for creating an account.
type SignUpRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=6,max=72"`
	Role        string  `json:"role" validate:"omitempty,oneof=user seller"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=200"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
}

// SignInRequest is the JSON request body for signing in.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUp handles POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	res, err := h.service.SignUp(r.Context(), service.SignUpInput{
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		CompanyName: req.CompanyName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.setSessionCookie(w, res.Token, res.ExpiresAt)
	httputil.WriteData(w, http.StatusCreated, res)
}

// SignIn handles POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	res, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.setSessionCookie(w, res.Token, res.ExpiresAt)
	httputil.WriteData(w, http.StatusOK, res)
}

// SignOut handles POST /api/v1/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SignOut(r.Context(), middleware.TokenFromRequest(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.setSessionCookie(w, "", time.Unix(0, 0))
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Me(r.Context(), session(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, profile)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	c := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}
