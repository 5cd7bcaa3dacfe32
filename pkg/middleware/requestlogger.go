package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/TravelGo/pkg/logger"
)

// RequestLogger stores a logger enriched with correlation, user and trace
// fields in the request context for logger.FromContext. Mount it after
// RequestLogging, Tracing and Authenticate.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID := UserIDFromContext(ctx); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
