package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gadgetplan-api/models"
)

const DefaultOAuthScopes = "email profile"

var ErrProviderDisabled = errors.New("auth provider not configured")

// ProviderError is a non 2xx answer from the hosted auth provider. It is
// handed to callers as is.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("auth provider: %d %s", e.Status, e.Message)
}

// ProviderClient talks to a GoTrue compatible auth server, the one behind
// Google sign-in.
type ProviderClient struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

func NewProviderClient(baseURL, anonKey string, timeout time.Duration) *ProviderClient {
	return &ProviderClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *ProviderClient) Enabled() bool {
	return p != nil && p.baseURL != ""
}

type providerUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	UserMetadata struct {
		FullName  string `json:"full_name"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
		Picture   string `json:"picture"`
	} `json:"user_metadata"`
}

func (u providerUser) toAppUser() *models.AppUser {
	user := &models.AppUser{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.UserMetadata.FullName,
		AvatarURL: u.UserMetadata.AvatarURL,
	}
	if user.FullName == "" {
		user.FullName = u.UserMetadata.Name
	}
	if user.AvatarURL == "" {
		user.AvatarURL = u.UserMetadata.Picture
	}
	return user
}

func (p *ProviderClient) GetUser(ctx context.Context, accessToken string) (*models.AppUser, error) {
	if !p.Enabled() {
		return nil, ErrProviderDisabled
	}

	req, err := p.newRequest(ctx, http.MethodGet, "/auth/v1/user", accessToken)
	if err != nil {
		return nil, err
	}

	var u providerUser
	if err := p.do(req, &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, &ProviderError{Status: http.StatusUnauthorized, Message: "empty user"}
	}
	return u.toAppUser(), nil
}

func (p *ProviderClient) SignOut(ctx context.Context, accessToken string) error {
	if !p.Enabled() {
		return ErrProviderDisabled
	}

	req, err := p.newRequest(ctx, http.MethodPost, "/auth/v1/logout", accessToken)
	if err != nil {
		return err
	}
	return p.do(req, nil)
}

// AuthorizeURL is where the browser goes to start an OAuth sign-in.
func (p *ProviderClient) AuthorizeURL(provider, redirectTo, scopes string) (string, error) {
	if !p.Enabled() {
		return "", ErrProviderDisabled
	}

	q := url.Values{}
	q.Set("provider", provider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	if scopes != "" {
		q.Set("scopes", scopes)
	}
	return p.baseURL + "/auth/v1/authorize?" + q.Encode(), nil
}

func (p *ProviderClient) newRequest(ctx context.Context, method, path, accessToken string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("apikey", p.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (p *ProviderClient) do(req *http.Request, out interface{}) error {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth provider request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProviderError{Status: resp.StatusCode, Message: providerMessage(body)}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}

// GoTrue has used msg, message and error_description over its versions.
func providerMessage(body []byte) string {
	var e struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
	}
	if json.Unmarshal(body, &e) == nil {
		for _, m := range []string{e.Msg, e.Message, e.ErrorDescription} {
			if m != "" {
				return m
			}
		}
	}
	return strings.TrimSpace(string(body))
}
