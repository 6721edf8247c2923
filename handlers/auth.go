package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"gadgetplan-api/database"
	"gadgetplan-api/middleware"
	"gadgetplan-api/models"
	"gadgetplan-api/services/auth"
	"gadgetplan-api/utils"
)

const OTPExpiry = 5 * time.Minute

// AuthStore is the part of *database.Connection the auth routes use.
type AuthStore interface {
	InsertOTP(ctx context.Context, otp models.OTPCode) error
	VerifyOTP(ctx context.Context, identifier, code string) (bool, error)
	RegisterUser(ctx context.Context, fullName, identifier string) (*models.AppUser, error)
	EnsureUser(ctx context.Context, identifier string) (*models.AppUser, error)
}

// SessionIssuer is satisfied by *auth.JWTService.
type SessionIssuer interface {
	Enabled() bool
	IssueSession(user models.AppUser) (*models.Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.Session, error)
}

// IdentityProvider is satisfied by *auth.ProviderClient.
type IdentityProvider interface {
	Enabled() bool
	AuthorizeURL(provider, redirectTo, scopes string) (string, error)
	SignOut(ctx context.Context, accessToken string) error
}

type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) error
}

type AuthHandler struct {
	store    AuthStore
	sessions SessionIssuer
	provider IdentityProvider
	captcha  CaptchaVerifier
	siteURL  string
	now      func() time.Time
}

func NewAuthHandler(store AuthStore, sessions SessionIssuer, provider IdentityProvider, captcha CaptchaVerifier, siteURL string) *AuthHandler {
	return &AuthHandler{
		store:    store,
		sessions: sessions,
		provider: provider,
		captcha:  captcha,
		siteURL:  strings.TrimRight(siteURL, "/"),
		now:      time.Now,
	}
}

// SendOTP stores a fresh six digit code for the identifier. Delivery by
// email or SMS is not wired and the code is never logged.
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req models.SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendAuthError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" {
		utils.SendAuthError(w, http.StatusBadRequest, "Identifier required")
		return
	}

	if h.captcha != nil {
		if err := h.captcha.Verify(r.Context(), r.Header.Get(HCaptchaTokenHeader)); err != nil {
			log.Warn().Err(err).Str("ip", middleware.RemoteIP(r)).Msg("captcha rejected OTP request")
			if errors.Is(err, ErrCaptchaFailed) {
				utils.SendAuthError(w, http.StatusBadRequest, "Captcha validation failed")
				return
			}
			utils.SendAuthError(w, http.StatusInternalServerError, "Captcha verification unavailable")
			return
		}
	}

	code, err := utils.GenerateOTPCode()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate OTP code")
		utils.SendAuthError(w, http.StatusInternalServerError, err.Error())
		return
	}

	otp := models.OTPCode{
		Identifier: req.Identifier,
		Code:       code,
		ExpiresAt:  h.now().Add(OTPExpiry).UTC(),
	}
	if err := h.store.InsertOTP(r.Context(), otp); err != nil {
		log.Error().Err(err).Str("identifier", req.Identifier).Msg("failed to store OTP")
		utils.SendAuthError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().Str("identifier", req.Identifier).Time("expires_at", otp.ExpiresAt).Msg("OTP issued")
	utils.SendAuthOK(w, true, nil)
}

// VerifyOTP checks the code. A match also signs the visitor in with a
// local session when tokens can be issued.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendAuthError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Identifier = strings.TrimSpace(req.Identifier)
	req.Code = strings.TrimSpace(req.Code)
	if req.Identifier == "" || req.Code == "" {
		utils.SendAuthError(w, http.StatusBadRequest, "Identifier and code required")
		return
	}

	ok, err := h.store.VerifyOTP(r.Context(), req.Identifier, req.Code)
	if err != nil {
		log.Error().Err(err).Str("identifier", req.Identifier).Msg("OTP verification failed")
		utils.SendAuthError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		utils.SendAuthOK(w, false, nil)
		return
	}

	utils.SendAuthOK(w, true, h.issueSession(r.Context(), req.Identifier))
}

// issueSession returns nil when no session can be made. The code has
// already been consumed, so the verification still succeeds.
func (h *AuthHandler) issueSession(ctx context.Context, identifier string) *models.Session {
	if h.sessions == nil || !h.sessions.Enabled() {
		return nil
	}

	user, err := h.store.EnsureUser(ctx, identifier)
	if err != nil {
		log.Error().Err(err).Str("identifier", identifier).Msg("failed to load user after OTP")
		return nil
	}

	session, err := h.sessions.IssueSession(*user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue session")
		return nil
	}
	return session
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendAuthError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.FullName == "" || req.Identifier == "" {
		utils.SendAuthError(w, http.StatusBadRequest, "fullName and identifier required")
		return
	}

	user, err := h.store.RegisterUser(r.Context(), req.FullName, req.Identifier)
	if err != nil {
		log.Error().Err(err).Str("identifier", req.Identifier).Msg("failed to register user")
		utils.SendAuthError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().Str("user_id", user.ID).Msg("user registered")
	utils.SendAuthOK(w, true, nil)
}

// Callback is where the provider lands after OAuth. The provider has
// already set its session, so this only routes the browser.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if oauthErr := q.Get("error"); oauthErr != "" {
		log.Warn().
			Str("error", oauthErr).
			Str("description", q.Get("error_description")).
			Msg("OAuth callback returned an error")
		http.Redirect(w, r, h.siteURL+"/sign-in?error=oauth_error", http.StatusFound)
		return
	}

	if q.Get("code") != "" {
		http.Redirect(w, r, h.siteURL+"/", http.StatusFound)
		return
	}

	http.Redirect(w, r, h.siteURL+"/sign-in", http.StatusFound)
}

// Google starts the Google OAuth flow on the hosted provider.
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil || !h.provider.Enabled() {
		utils.SendAuthError(w, http.StatusServiceUnavailable, "OAuth provider not configured")
		return
	}

	target, err := h.provider.AuthorizeURL("google", h.redirectTarget(r.URL.Query().Get("redirect_to")), auth.DefaultOAuthScopes)
	if err != nil {
		log.Error().Err(err).Msg("failed to build authorize URL")
		utils.SendAuthError(w, http.StatusInternalServerError, err.Error())
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// redirectTarget only lets the provider send visitors back to our site.
func (h *AuthHandler) redirectTarget(requested string) string {
	if requested != "" && (requested == h.siteURL || strings.HasPrefix(requested, h.siteURL+"/")) {
		return requested
	}
	return h.siteURL + "/api/auth/callback"
}

// Session reports the signed in user, or null. It runs behind OptionalAuth.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, http.StatusOK, map[string]*models.AppUser{
		"user": middleware.GetUserFromContext(r.Context()),
	})
}

// SignOut always succeeds for the client. Provider tokens are revoked when
// possible; local tokens simply expire.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token, err := auth.BearerToken(r)
	if err == nil && h.provider != nil && h.provider.Enabled() {
		if err := h.provider.SignOut(r.Context(), token); err != nil {
			log.Debug().Err(err).Msg("provider sign out failed")
		}
	}

	utils.SendAuthOK(w, true, nil)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendAuthError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.RefreshToken == "" {
		utils.SendAuthError(w, http.StatusBadRequest, "Refresh token required")
		return
	}
	if h.sessions == nil {
		utils.SendAuthError(w, http.StatusServiceUnavailable, "Sessions not configured")
		return
	}

	session, err := h.sessions.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotConfigured):
			utils.SendAuthError(w, http.StatusServiceUnavailable, "Sessions not configured")
		case errors.Is(err, auth.ErrTokenExpired):
			utils.SendAuthError(w, http.StatusUnauthorized, "Refresh token expired")
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, database.ErrUserNotFound):
			utils.SendAuthError(w, http.StatusUnauthorized, "Invalid refresh token")
		default:
			log.Error().Err(err).Msg("failed to refresh session")
			utils.SendAuthError(w, http.StatusInternalServerError, "Failed to refresh session")
		}
		return
	}

	utils.SendAuthOK(w, true, session)
}
