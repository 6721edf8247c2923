package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"gadgetplan-api/models"
	"gadgetplan-api/services/auth"
	"gadgetplan-api/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

// TokenResolver is satisfied by *auth.Resolver.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*models.AppUser, error)
}

// RequireAuth rejects requests without a resolvable bearer token.
func RequireAuth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r)
			if err != nil {
				utils.SendErrorResponse(w, http.StatusUnauthorized, "Missing or invalid authorization header")
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("token rejected")

				message := "Authentication failed"
				switch {
				case errors.Is(err, auth.ErrTokenExpired):
					message = "Token expired"
				case errors.Is(err, auth.ErrInvalidToken):
					message = "Invalid token"
				}
				utils.SendErrorResponse(w, http.StatusUnauthorized, message)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuth attaches the user when the token resolves and carries on
// anonymously otherwise.
func OptionalAuth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func WithUser(ctx context.Context, user *models.AppUser) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

func GetUserFromContext(ctx context.Context) *models.AppUser {
	user, ok := ctx.Value(UserContextKey).(*models.AppUser)
	if !ok {
		return nil
	}
	return user
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserFromContext(ctx) != nil
}
