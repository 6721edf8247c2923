package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"gadgetplan-api/models"
)

var ErrNoToken = errors.New("no bearer token")

// Resolver turns a bearer token into a user. Tokens we signed ourselves are
// checked locally; anything else is asked of the hosted provider.
type Resolver struct {
	jwt      *JWTService
	provider *ProviderClient
}

func NewResolver(jwt *JWTService, provider *ProviderClient) *Resolver {
	return &Resolver{jwt: jwt, provider: provider}
}

func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrNoToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(parts[1]), nil
}

func (r *Resolver) Resolve(ctx context.Context, token string) (*models.AppUser, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	if r.jwt != nil && r.jwt.Enabled() {
		user, err := r.jwt.ValidateToken(token)
		if err == nil {
			return user, nil
		}
		// an expired local token is final; anything else may be a provider token
		if errors.Is(err, ErrTokenExpired) {
			return nil, err
		}
	}

	if !r.provider.Enabled() {
		return nil, ErrInvalidToken
	}

	user, err := r.provider.GetUser(ctx, token)
	if err != nil {
		log.Debug().Err(err).Msg("provider rejected token")
		return nil, err
	}
	return user, nil
}
