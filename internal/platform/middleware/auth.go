package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "vaxledger/pkg/domain"
	"vaxledger/pkg/requestcontext"
)

// JWTValidator validates bearer tokens presented by callers.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims carries the claims the ledger needs from a validated token.
type JWTClaims struct {
	CallerID id.Identity
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller identity in the request context. Every state-changing ledger
// operation is attributed to this identity.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed",
					"error", err.Error(),
					"request_id", requestcontext.RequestID(r.Context()),
				)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if claims.CallerID.IsNil() {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := requestcontext.WithCallerID(r.Context(), claims.CallerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
