package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"gadgetplan-api/database"
	"gadgetplan-api/services/email"
)

const (
	defaultPort              = "8080"
	defaultRedisURL          = "redis://localhost:6379/0"
	defaultLogLevel          = "info"
	defaultSessionMaxAge     = 7 * 24 * 60 * 60
	defaultJWTIssuer         = "gadgetplan-api"
	defaultWorkerConcurrency = 2
	maxWorkerConcurrency     = 8
)

type Config struct {
	Server   ServerConfig
	Database database.DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Auth     AuthConfig
	SMTP     email.SMTPConfig
	Booking  BookingConfig
	Captcha  CaptchaConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	Environment    string
	AllowedOrigins []string
	// SiteURL is where the storefront lives; OAuth redirects land here.
	SiteURL string
	// TrustedProxies may set X-Forwarded-For for rate limiting.
	TrustedProxies []string
}

func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

type RedisConfig struct {
	URL               string
	WorkerConcurrency int
}

type SessionConfig struct {
	Secret string
	Domain string
	MaxAge int
	Secure bool
}

type AuthConfig struct {
	ProviderURL string
	AnonKey     string
	JWTSecret   string
	Issuer      string
}

type BookingConfig struct {
	AvailabilityDelay time.Duration
}

// CaptchaConfig guards the OTP request route. An empty secret disables it.
type CaptchaConfig struct {
	Secret string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", defaultPort),
			Environment:    env,
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
			SiteURL:        strings.TrimRight(getEnv("SITE_URL", "http://localhost:3000"), "/"),
			TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
		},
		Database: database.DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Redis: RedisConfig{
			URL:               getEnv("REDIS_URL", defaultRedisURL),
			WorkerConcurrency: clamp(getEnvInt("WORKER_CONCURRENCY", defaultWorkerConcurrency), defaultWorkerConcurrency, maxWorkerConcurrency),
		},
		Session: SessionConfig{
			Secret: os.Getenv("SESSION_SECRET"),
			Domain: os.Getenv("SESSION_DOMAIN"),
			MaxAge: getEnvInt("SESSION_MAX_AGE", defaultSessionMaxAge),
			Secure: getEnvBool("SESSION_SECURE", env == "production"),
		},
		Auth: AuthConfig{
			ProviderURL: strings.TrimRight(os.Getenv("AUTH_PROVIDER_URL"), "/"),
			AnonKey:     os.Getenv("AUTH_ANON_KEY"),
			JWTSecret:   os.Getenv("JWT_SECRET"),
			Issuer:      getEnv("JWT_ISSUER", defaultJWTIssuer),
		},
		SMTP: email.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "no-reply@gadgetplan.id"),
		},
		Booking: BookingConfig{
			AvailabilityDelay: getEnvDuration("BOOKING_AVAILABILITY_DELAY", 600*time.Millisecond),
		},
		Captcha: CaptchaConfig{
			Secret: os.Getenv("HCAPTCHA_SECRET"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", defaultLogLevel),
			Pretty: getEnvBool("LOG_PRETTY", env != "production"),
		},
	}

	if cfg.Session.Secret == "" {
		if cfg.Server.IsProduction() {
			log.Error().Msg("SESSION_SECRET not set in production, cart sessions will not survive a restart")
		} else {
			log.Warn().Msg("SESSION_SECRET not set, cart sessions will not survive a restart")
		}
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, OTP sessions cannot be issued")
	}

	log.Info().
		Str("env", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("db_host", cfg.Database.Host).
		Bool("auth_provider", cfg.Auth.ProviderURL != "").
		Bool("smtp", cfg.SMTP.Host != "").
		Int("workers", cfg.Redis.WorkerConcurrency).
		Msg("config loaded")

	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer, using default")
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid boolean, using default")
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
