package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gadgetplan-api/models"
)

const (
	AccessTokenDuration  = 15 * time.Minute
	RefreshTokenDuration = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrTokenExpired  = errors.New("token expired")
	ErrInvalidToken  = errors.New("invalid token")
	ErrNotConfigured = errors.New("token signing not configured")
)

// UserLookup reloads an account when a refresh token is exchanged.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.AppUser, error)
}

type JWTService struct {
	secretKey []byte
	issuer    string
	users     UserLookup
	now       func() time.Time
}

type Claims struct {
	Email     string `json:"email,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// NewJWTService signs sessions for OTP logins. users may be nil, in which
// case refresh keeps the claims carried by the token.
func NewJWTService(secretKey, issuer string, users UserLookup) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		users:     users,
		now:       time.Now,
	}
}

func (j *JWTService) Enabled() bool {
	return len(j.secretKey) > 0
}

func (j *JWTService) IssueSession(user models.AppUser) (*models.Session, error) {
	if !j.Enabled() {
		return nil, ErrNotConfigured
	}

	accessToken, err := j.GenerateToken(user, tokenTypeAccess, AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	refreshToken, err := j.GenerateToken(user, tokenTypeRefresh, RefreshTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	return &models.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    j.now().Add(AccessTokenDuration).UTC(),
		User:         user,
	}, nil
}

func (j *JWTService) GenerateToken(user models.AppUser, tokenType string, duration time.Duration) (string, error) {
	now := j.now()
	claims := Claims{
		Email:     user.Email,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

func (j *JWTService) parse(tokenString, wantType string) (*Claims, error) {
	if !j.Enabled() {
		return nil, ErrNotConfigured
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithIssuer(j.issuer), jwt.WithTimeFunc(j.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != wantType || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateToken accepts access tokens only.
func (j *JWTService) ValidateToken(tokenString string) (*models.AppUser, error) {
	claims, err := j.parse(tokenString, tokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return &models.AppUser{
		ID:        claims.Subject,
		Email:     claims.Email,
		FullName:  claims.FullName,
		AvatarURL: claims.AvatarURL,
	}, nil
}

// RefreshToken exchanges a refresh token for a new pair, picking up any
// profile change made since the old pair was issued.
func (j *JWTService) RefreshToken(ctx context.Context, refreshTokenString string) (*models.Session, error) {
	claims, err := j.parse(refreshTokenString, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	user := models.AppUser{
		ID:        claims.Subject,
		Email:     claims.Email,
		FullName:  claims.FullName,
		AvatarURL: claims.AvatarURL,
	}
	if j.users != nil {
		current, err := j.users.GetUserByID(ctx, claims.Subject)
		if err != nil {
			return nil, fmt.Errorf("reload user %s: %w", claims.Subject, err)
		}
		user = *current
	}

	return j.IssueSession(user)
}
