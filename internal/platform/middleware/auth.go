package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "namelease/pkg/domain"
	dErrors "namelease/pkg/domain-errors"
	"namelease/pkg/platform/httputil"
	"namelease/pkg/requestcontext"
)

// TokenValidator resolves a bearer token to the account that signed it.
type TokenValidator interface {
	ExtractAccountID(tokenString string) (id.AccountID, error)
}

// RequireAuth validates the Authorization header and injects the caller
// account into the request context. Requests without a valid bearer token
// are rejected before reaching the handler. Whether that caller may perform
// admin operations is decided by the registrar service, not here.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			caller, err := validator.ExtractAccountID(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", requestID,
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			ctx = requestcontext.WithCallerID(ctx, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
