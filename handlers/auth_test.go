package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gadgetplan-api/middleware"
	"gadgetplan-api/models"
	"gadgetplan-api/services/auth"
)

const testSiteURL = "https://gadgetplan.test"

type fakeAuthStore struct {
	otps     []models.OTPCode
	verified bool
	users    map[string]*models.AppUser
	err      error
}

func newFakeAuthStore() *fakeAuthStore {
	return &fakeAuthStore{users: map[string]*models.AppUser{}}
}

func (s *fakeAuthStore) InsertOTP(_ context.Context, otp models.OTPCode) error {
	if s.err != nil {
		return s.err
	}
	s.otps = append(s.otps, otp)
	return nil
}

func (s *fakeAuthStore) VerifyOTP(_ context.Context, identifier, code string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.verified, nil
}

func (s *fakeAuthStore) RegisterUser(_ context.Context, fullName, identifier string) (*models.AppUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	user := &models.AppUser{ID: "u-" + identifier, Email: identifier, FullName: fullName}
	s.users[identifier] = user
	return user, nil
}

func (s *fakeAuthStore) EnsureUser(_ context.Context, identifier string) (*models.AppUser, error) {
	if user, ok := s.users[identifier]; ok {
		return user, nil
	}
	user := &models.AppUser{ID: "u-" + identifier, Email: identifier}
	s.users[identifier] = user
	return user, nil
}

func (s *fakeAuthStore) GetUserByID(_ context.Context, id string) (*models.AppUser, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, errors.New("no such user")
}

type fakeProvider struct {
	enabled    bool
	signedOut  []string
	signOutErr error
}

func (p *fakeProvider) Enabled() bool { return p.enabled }

func (p *fakeProvider) AuthorizeURL(provider, redirectTo, scopes string) (string, error) {
	return "https://auth.example.com/authorize?provider=" + provider + "&redirect_to=" + redirectTo, nil
}

func (p *fakeProvider) SignOut(_ context.Context, accessToken string) error {
	p.signedOut = append(p.signedOut, accessToken)
	return p.signOutErr
}

type captchaFunc func(ctx context.Context, token string) error

func (f captchaFunc) Verify(ctx context.Context, token string) error { return f(ctx, token) }

type authFixture struct {
	handler  *AuthHandler
	store    *fakeAuthStore
	jwt      *auth.JWTService
	provider *fakeProvider
}

func newAuthFixture() *authFixture {
	store := newFakeAuthStore()
	jwtService := auth.NewJWTService("handler-test-secret", "gadgetplan-api", store)
	provider := &fakeProvider{enabled: true}
	return &authFixture{
		handler:  NewAuthHandler(store, jwtService, provider, nil, testSiteURL),
		store:    store,
		jwt:      jwtService,
		provider: provider,
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestSendOTP(t *testing.T) {
	t.Run("missing identifier", func(t *testing.T) {
		f := newAuthFixture()
		rec, body := postJSON(t, f.handler.SendOTP, `{"identifier":"  "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Identifier required", body["error"])
	})

	t.Run("stores a six digit code", func(t *testing.T) {
		f := newAuthFixture()
		now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		f.handler.now = func() time.Time { return now }
		identifier := gofakeit.Email()

		rec, body := postJSON(t, f.handler.SendOTP, `{"identifier":"`+identifier+`"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["ok"])

		require.Len(t, f.store.otps, 1)
		otp := f.store.otps[0]
		assert.Equal(t, identifier, otp.Identifier)
		assert.Len(t, otp.Code, 6)
		assert.Equal(t, now.Add(5*time.Minute), otp.ExpiresAt)
	})

	t.Run("code stays out of the logs", func(t *testing.T) {
		var buf bytes.Buffer
		prev := log.Logger
		log.Logger = zerolog.New(&buf).Level(zerolog.TraceLevel)
		defer func() { log.Logger = prev }()

		f := newAuthFixture()
		rec, _ := postJSON(t, f.handler.SendOTP, `{"identifier":"0812555"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, f.store.otps, 1)

		out := buf.String()
		assert.Contains(t, out, "0812555")
		assert.NotContains(t, out, f.store.otps[0].Code)
	})

	t.Run("database failure", func(t *testing.T) {
		f := newAuthFixture()
		f.store.err = errors.New("connection refused")
		rec, body := postJSON(t, f.handler.SendOTP, `{"identifier":"0812"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "connection refused", body["error"])
	})

	t.Run("captcha rejected", func(t *testing.T) {
		f := newAuthFixture()
		f.handler.captcha = captchaFunc(func(context.Context, string) error { return ErrCaptchaFailed })
		rec, body := postJSON(t, f.handler.SendOTP, `{"identifier":"0812"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Captcha validation failed", body["error"])
		assert.Empty(t, f.store.otps)
	})
}

func TestVerifyOTP(t *testing.T) {
	t.Run("missing code", func(t *testing.T) {
		f := newAuthFixture()
		rec, body := postJSON(t, f.handler.VerifyOTP, `{"identifier":"a@b.co"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Identifier and code required", body["error"])
	})

	t.Run("wrong code", func(t *testing.T) {
		f := newAuthFixture()
		rec, body := postJSON(t, f.handler.VerifyOTP, `{"identifier":"a@b.co","code":"000000"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, body["ok"])
		assert.NotContains(t, body, "session")
	})

	t.Run("match issues a session", func(t *testing.T) {
		f := newAuthFixture()
		f.store.verified = true

		rec, body := postJSON(t, f.handler.VerifyOTP, `{"identifier":"a@b.co","code":"123456"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["ok"])

		session, ok := body["session"].(map[string]interface{})
		require.True(t, ok)
		user, err := f.jwt.ValidateToken(session["access_token"].(string))
		require.NoError(t, err)
		assert.Equal(t, "u-a@b.co", user.ID)
	})

	t.Run("match without token signing", func(t *testing.T) {
		f := newAuthFixture()
		f.store.verified = true
		f.handler.sessions = auth.NewJWTService("", "gadgetplan-api", nil)

		_, body := postJSON(t, f.handler.VerifyOTP, `{"identifier":"a@b.co","code":"123456"}`)
		assert.Equal(t, true, body["ok"])
		assert.NotContains(t, body, "session")
	})

	t.Run("database failure", func(t *testing.T) {
		f := newAuthFixture()
		f.store.err = errors.New("function verify_otp does not exist")
		rec, _ := postJSON(t, f.handler.VerifyOTP, `{"identifier":"a@b.co","code":"123456"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestRegister(t *testing.T) {
	f := newAuthFixture()

	rec, body := postJSON(t, f.handler.Register, `{"identifier":"a@b.co"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "fullName and identifier required", body["error"])

	rec, body = postJSON(t, f.handler.Register, `{"fullName":"Rina Wijaya","identifier":"a@b.co"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "Rina Wijaya", f.store.users["a@b.co"].FullName)

	f.store.err = errors.New("duplicate")
	rec, _ = postJSON(t, f.handler.Register, `{"fullName":"Rina Wijaya","identifier":"a@b.co"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCallbackRedirects(t *testing.T) {
	f := newAuthFixture()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "provider error", query: "?error=access_denied&error_description=denied", want: testSiteURL + "/sign-in?error=oauth_error"},
		{name: "code", query: "?code=abc", want: testSiteURL + "/"},
		{name: "neither", query: "", want: testSiteURL + "/sign-in"},
		{name: "error wins over code", query: "?code=abc&error=server_error", want: testSiteURL + "/sign-in?error=oauth_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			f.handler.Callback(rec, httptest.NewRequest(http.MethodGet, "/api/auth/callback"+tt.query, nil))
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
		})
	}
}

func TestGoogle(t *testing.T) {
	f := newAuthFixture()

	rec := httptest.NewRecorder()
	f.handler.Google(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "redirect_to="+testSiteURL+"/api/auth/callback")

	// foreign redirect targets fall back to our callback
	rec = httptest.NewRecorder()
	f.handler.Google(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google?redirect_to=https://evil.test/", nil))
	assert.NotContains(t, rec.Header().Get("Location"), "evil.test")

	f.provider.enabled = false
	rec = httptest.NewRecorder()
	f.handler.Google(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSessionEndpoint(t *testing.T) {
	f := newAuthFixture()

	rec := httptest.NewRecorder()
	f.handler.Session(rec, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))
	assert.JSONEq(t, `{"user":null}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), &models.AppUser{ID: "u-1", Email: "a@b.co"}))
	rec = httptest.NewRecorder()
	f.handler.Session(rec, req)
	assert.JSONEq(t, `{"user":{"id":"u-1","email":"a@b.co"}}`, rec.Body.String())
}

func TestSignOutAlwaysSucceeds(t *testing.T) {
	f := newAuthFixture()
	f.provider.signOutErr = errors.New("session not found")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-out", nil)
	req.Header.Set("Authorization", "Bearer provider-token")
	rec := httptest.NewRecorder()
	f.handler.SignOut(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, []string{"provider-token"}, f.provider.signedOut)

	rec = httptest.NewRecorder()
	f.handler.SignOut(rec, httptest.NewRequest(http.MethodPost, "/api/auth/sign-out", nil))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestRefresh(t *testing.T) {
	f := newAuthFixture()
	user, err := f.store.EnsureUser(context.Background(), "a@b.co")
	require.NoError(t, err)
	session, err := f.jwt.IssueSession(*user)
	require.NoError(t, err)

	rec, body := postJSON(t, f.handler.Refresh, `{"refresh_token":"`+session.RefreshToken+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Contains(t, body, "session")

	// an access token is not a refresh token
	rec, _ = postJSON(t, f.handler.Refresh, `{"refresh_token":"`+session.AccessToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = postJSON(t, f.handler.Refresh, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMalformedAuthBodies(t *testing.T) {
	f := newAuthFixture()
	for name, h := range map[string]http.HandlerFunc{
		"send-otp":   f.handler.SendOTP,
		"verify-otp": f.handler.VerifyOTP,
		"register":   f.handler.Register,
		"refresh":    f.handler.Refresh,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{"))
			rec := httptest.NewRecorder()
			h(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}
