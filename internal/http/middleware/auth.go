package middleware

import (
	"context"
	"net/http"

	"github.com/careconnect/guardian-api/internal/identity"
	"github.com/careconnect/guardian-api/internal/session"
	"github.com/careconnect/guardian-api/pkg/logging"
)

// Authenticator verifies a bearer token and returns the account id behind
// it. Implemented by identity.Service.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (string, error)
}

// Auth requires a valid bearer token and stores the authenticated user id
// on the request context.
func Auth(auth Authenticator, logger *logging.Logger) func(http.Handler) http.Handler {
	if auth == nil {
		panic("middleware: authenticator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := identity.BearerToken(r)
			if raw == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			userID, err := auth.Authenticate(r.Context(), raw)
			if err != nil {
				logger.Info("rejected token", "path", r.URL.Path, "error", err)
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithUserID(r.Context(), userID)))
		})
	}
}
