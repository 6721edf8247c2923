package handlers

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"

	"gadgetplan-api/config"
	"gadgetplan-api/models"
	"gadgetplan-api/services/cart"
	"gadgetplan-api/services/checkout"
	"gadgetplan-api/utils"
)

const (
	sessionName       = "cart-session"
	sessionIDKey      = "sid"
	sessionKeyPrefix  = "gadgetplan:session:"
	defaultSessionTTL = 7 * 24 * time.Hour
)

// SessionStore keeps the visitor's cart and checkout flow in Redis. The
// encrypted cookie only carries the session id.
type SessionStore struct {
	cookies sessions.Store
	client  *redis.Client
	ttl     time.Duration
}

func NewSessionStore(cfg config.SessionConfig, client *redis.Client) *SessionStore {
	hashKey := []byte(cfg.Secret)
	var blockKey []byte
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
		blockKey = securecookie.GenerateRandomKey(32)
	} else {
		sum := sha256.Sum256(append([]byte("cart-session-block:"), hashKey...))
		blockKey = sum[:]
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	ttl := time.Duration(cfg.MaxAge) * time.Second
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	return &SessionStore{cookies: store, client: client, ttl: ttl}
}

type sessionData struct {
	Cart models.CartState    `json:"cart"`
	Flow models.CheckoutFlow `json:"flow"`
}

// VisitorSession is one request's view of the stored session.
type VisitorSession struct {
	id      string
	session *sessions.Session
	Cart    models.CartState
	Flow    models.CheckoutFlow
}

// Load starts a fresh session for a missing or unreadable cookie, and for
// an id whose data has expired. Only a Redis failure is an error.
func (s *SessionStore) Load(r *http.Request) (*VisitorSession, error) {
	session, err := s.cookies.Get(r, sessionName)
	if err != nil {
		log.Debug().Err(err).Msg("discarding unreadable session cookie")
	}

	v := &VisitorSession{
		session: session,
		Cart:    cart.EmptyState(),
		Flow:    checkout.NewFlow(),
	}

	id, _ := session.Values[sessionIDKey].(string)
	if id == "" {
		v.id = uuid.NewString()
		return v, nil
	}
	v.id = id

	raw, err := s.client.Get(r.Context(), s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var data sessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Warn().Err(err).Msg("discarding unreadable session data")
		return v, nil
	}
	v.Cart = data.Cart
	v.Flow = data.Flow
	return v, nil
}

// Save writes the state with a sliding TTL and refreshes the cookie.
func (s *SessionStore) Save(r *http.Request, w http.ResponseWriter, v *VisitorSession) error {
	raw, err := json.Marshal(sessionData{Cart: v.Cart, Flow: v.Flow})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(r.Context(), s.key(v.id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	v.session.Values[sessionIDKey] = v.id
	return v.session.Save(r, w)
}

func (s *SessionStore) key(id string) string {
	return sessionKeyPrefix + id
}

func loadVisitor(w http.ResponseWriter, r *http.Request, store *SessionStore) (*VisitorSession, bool) {
	v, err := store.Load(r)
	if err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("session store unavailable")
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to load session")
		return nil, false
	}
	return v, true
}
