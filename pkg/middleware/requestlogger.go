package middleware

import (
	"log/slog"
	"net/http"

	"github.com/AlexandruMarc/Easy-Shops/pkg/logger"
)

// RequestLogger stores a logger enriched with correlation, user and trace
// identifiers in the request context. Mount it after RequestLogging,
// Identity and Tracing so those values are present.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logger.NewContext(r.Context(), logger.WithContext(r.Context(), base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
