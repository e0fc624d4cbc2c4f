package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type contextKey string

const (
	userIDKey        contextKey = "user_id"
	authenticatedKey contextKey = "authenticated"
	requestIDKey     contextKey = "request_id"
)

// TokenVerifier validates a bearer token and returns the user id it carries.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// IdentityMiddleware resolves who is calling. A valid bearer token yields an
// authenticated user id; otherwise the X-Device-ID header identifies a
// guest, so guests can build a cart and enter checkout before logging in.
func IdentityMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := bearerToken(r); token != "" {
				userID, err := verifier.VerifyToken(token)
				if err != nil {
					respondError(w, http.StatusUnauthorized, "invalid_token", "invalid or expired token")
					return
				}
				ctx = context.WithValue(ctx, userIDKey, userID)
				ctx = context.WithValue(ctx, authenticatedKey, true)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
				ctx = context.WithValue(ctx, userIDKey, "guest:"+deviceID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that did not present a valid token.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAuthenticated(r.Context()) {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
