package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProviderServer(t *testing.T, handler http.HandlerFunc) *ProviderClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewProviderClient(srv.URL+"/", "anon-key", time.Second)
}

func TestProviderGetUser(t *testing.T) {
	client := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer provider-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "4f0c",
			"email": "rina@example.com",
			"user_metadata": {"name": "Rina Wijaya", "picture": "https://img.example.com/rina.png"}
		}`))
	})

	user, err := client.GetUser(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, "4f0c", user.ID)
	assert.Equal(t, "Rina Wijaya", user.FullName)
	assert.Equal(t, "https://img.example.com/rina.png", user.AvatarURL)
}

func TestProviderErrorPassesThrough(t *testing.T) {
	client := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"msg":"invalid JWT: token is expired"}`))
	})

	_, err := client.GetUser(context.Background(), "stale")

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusUnauthorized, perr.Status)
	assert.Equal(t, "invalid JWT: token is expired", perr.Message)
}

func TestProviderSignOut(t *testing.T) {
	var called bool
	client := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.SignOut(context.Background(), "token"))
	assert.True(t, called)
}

func TestAuthorizeURL(t *testing.T) {
	client := NewProviderClient("https://auth.example.co", "anon", time.Second)

	raw, err := client.AuthorizeURL("google", "https://gadgetplan.id/api/auth/callback", DefaultOAuthScopes)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/auth/v1/authorize", u.Path)
	assert.Equal(t, "google", u.Query().Get("provider"))
	assert.Equal(t, "https://gadgetplan.id/api/auth/callback", u.Query().Get("redirect_to"))
	assert.Equal(t, "email profile", u.Query().Get("scopes"))
}

func TestProviderDisabled(t *testing.T) {
	client := NewProviderClient("", "", time.Second)

	assert.False(t, client.Enabled())
	_, err := client.GetUser(context.Background(), "x")
	assert.ErrorIs(t, err, ErrProviderDisabled)
	_, err = client.AuthorizeURL("google", "", "")
	assert.ErrorIs(t, err, ErrProviderDisabled)
	assert.ErrorIs(t, client.SignOut(context.Background(), "x"), ErrProviderDisabled)
}
