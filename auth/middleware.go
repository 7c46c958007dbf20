package auth

import (
	"context"
	"net/http"
	"strings"

	"grant-desk/domain"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	RoleKey   contextKey = "role"
)

// Middleware validates the Bearer token on protected HTTP routes and
// injects the participant identity into the request context for
// downstream handlers.
func Middleware(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "authorization token is missing", http.StatusUnauthorized)
				return
			}

			// Expecting the standard "Bearer <token>" format
			tokenStr := strings.TrimPrefix(header, "Bearer ")

			participant, err := tokens.Verify(tokenStr)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, participant.ID)
			ctx = context.WithValue(ctx, RoleKey, participant.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ParticipantFromContext rebuilds the authenticated participant stored
// by Middleware. The boolean is false when the request skipped the
// middleware chain.
func ParticipantFromContext(ctx context.Context) (domain.Participant, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	if !ok {
		return domain.Participant{}, false
	}
	role, ok := ctx.Value(RoleKey).(domain.Role)
	if !ok {
		return domain.Participant{}, false
	}
	return domain.Participant{ID: id, Role: role}, true
}
