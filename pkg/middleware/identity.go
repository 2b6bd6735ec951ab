package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/AlexandruMarc/Easy-Shops/pkg/errors"
	"github.com/AlexandruMarc/Easy-Shops/pkg/httputil"
	"github.com/AlexandruMarc/Easy-Shops/pkg/logger"
)

// Headers set by the API gateway after it has authenticated the caller.
const (
	UserIDHeader   = "X-User-ID"
	UserRoleHeader = "X-User-Role"
)

// RoleAdmin may modify products and images.
const RoleAdmin = "ADMIN"

// Identity copies the gateway identity headers into the request context.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(UserIDHeader))
		role := strings.ToUpper(strings.TrimSpace(r.Header.Get(UserRoleHeader)))
		if id == "" && role == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(logger.WithUser(r.Context(), id, role)))
	})
}

// RequireRole rejects callers whose role is not in roles with the fixed
// access-denied envelope. When enforce is false every caller passes.
func RequireRole(enforce bool, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[strings.ToUpper(role)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		if !enforce {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[logger.UserRoleFromContext(r.Context())]; !ok {
				httputil.WriteError(w, r, apperrors.AccessDenied(), "", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActsFor reports whether the caller may act on userID's own resources:
// either the caller is that user or holds one of roles. When enforce is
// false every caller may.
func ActsFor(r *http.Request, enforce bool, userID string, roles ...string) bool {
	if !enforce {
		return true
	}
	ctx := r.Context()
	if caller := logger.UserIDFromContext(ctx); caller != "" && caller == strings.TrimSpace(userID) {
		return true
	}
	role := logger.UserRoleFromContext(ctx)
	for _, allowed := range roles {
		if role != "" && role == strings.ToUpper(allowed) {
			return true
		}
	}
	return false
}

// RequireSelfOrRole guards routes whose chi URL parameter param names a
// user. Only that user or a holder of roles passes.
func RequireSelfOrRole(enforce bool, param string, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enforce {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ActsFor(r, enforce, chi.URLParam(r, param), roles...) {
				httputil.WriteError(w, r, apperrors.AccessDenied(), "", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
