package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"gadgetplan-api/config"
	"gadgetplan-api/queue"
	"gadgetplan-api/services/booking"
	"gadgetplan-api/services/catalog"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type enqueued struct {
	jobType queue.JobType
	payload interface{}
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []enqueued
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, jobType queue.JobType, payload interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, enqueued{jobType: jobType, payload: payload})
	return nil
}

func (q *fakeQueue) all() []enqueued {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]enqueued(nil), q.jobs...)
}

func testSessionStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewSessionStore(config.SessionConfig{
		Secret: "test-session-secret-0123456789abcdef",
		MaxAge: 3600,
	}, client)
	return store, mr
}

// storefront serves the session backed routes over a real listener so the
// client's cookie jar carries the cart between requests.
type storefront struct {
	server *httptest.Server
	client *http.Client
	jobs   *fakeQueue
	mr     *miniredis.Miniredis
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()

	jobs := &fakeQueue{}
	sessions, mr := testSessionStore(t)
	products := catalog.New()

	catalogHandler := NewCatalogHandler(products)
	cartHandler := NewCartHandler(sessions, products)
	checkoutHandler := NewCheckoutHandler(sessions, jobs)
	bookingHandler := NewBookingHandler(booking.NewService(0, jobs))

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", catalogHandler.ListProducts).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}", catalogHandler.GetProduct).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}/price", catalogHandler.GetPrice).Methods("GET")
	api.HandleFunc("/categories", catalogHandler.GetCategories).Methods("GET")
	api.HandleFunc("/cart", cartHandler.GetCart).Methods("GET")
	api.HandleFunc("/cart", cartHandler.AddToCart).Methods("POST")
	api.HandleFunc("/cart", cartHandler.UpdateCart).Methods("PUT")
	api.HandleFunc("/cart", cartHandler.ClearCart).Methods("DELETE")
	api.HandleFunc("/cart/remove", cartHandler.RemoveFromCart).Methods("POST")
	api.HandleFunc("/checkout", checkoutHandler.GetCheckout).Methods("GET")
	api.HandleFunc("/checkout/shipping", checkoutHandler.SetShipping).Methods("POST")
	api.HandleFunc("/checkout/payment", checkoutHandler.SetPayment).Methods("POST")
	api.HandleFunc("/checkout/back", checkoutHandler.Back).Methods("POST")
	api.HandleFunc("/checkout/review", checkoutHandler.Review).Methods("GET")
	api.HandleFunc("/checkout/place", checkoutHandler.PlaceOrder).Methods("POST")
	api.HandleFunc("/services/options", bookingHandler.GetOptions).Methods("GET")
	api.HandleFunc("/services/estimate", bookingHandler.GetEstimate).Methods("GET")
	api.HandleFunc("/services/availability", bookingHandler.CheckAvailability).Methods("POST")
	api.HandleFunc("/services/bookings", bookingHandler.Submit).Methods("POST")

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &storefront{
		server: server,
		client: &http.Client{Jar: jar},
		jobs:   jobs,
		mr:     mr,
	}
}

// do sends body as JSON and decodes the envelope.
func (s *storefront) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}
