package handlers

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gadgetplan-api/models"
)

func cartFrom(t *testing.T, env envelope) models.CartResponse {
	t.Helper()
	var resp models.CartResponse
	decodeData(t, env, &resp)
	return resp
}

func TestGetCartStartsEmpty(t *testing.T) {
	s := newStorefront(t)

	status, env := s.do(t, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", env.Status)

	cart := cartFrom(t, env)
	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.Items)
	assert.True(t, cart.Total.IsZero())
	assert.Equal(t, 0, cart.Count)
}

func TestCartLifecycle(t *testing.T) {
	s := newStorefront(t)

	add := models.AddToCartRequest{ProductID: 1, Color: "blue", Storage: "256gb", Quantity: 1}
	status, _ := s.do(t, http.MethodPost, "/api/cart", add)
	require.Equal(t, http.StatusOK, status)

	// same variant merges into the existing line
	status, env := s.do(t, http.MethodPost, "/api/cart", add)
	require.Equal(t, http.StatusOK, status)
	cart := cartFrom(t, env)

	want := []models.CartItem{{
		ID:        1,
		ProductID: 1,
		Name:      "iPhone 15 Pro Max",
		Price:     decimal.NewFromInt(22999000),
		Quantity:  2,
		ImageURL:  "https://placehold.co/400x400?text=iPhone+15+Pro+Front",
		Color:     "blue",
		Storage:   "256gb",
	}}
	if diff := cmp.Diff(want, cart.Items); diff != "" {
		t.Fatalf("cart items mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, decimal.NewFromInt(45998000).Equal(cart.Total))
	assert.Equal(t, 2, cart.Count)
	assert.Equal(t, "Rp45.998.000", cart.TotalFormatted)

	// a second product opens a new line
	status, env = s.do(t, http.MethodPost, "/api/cart", models.AddToCartRequest{ProductID: 5, Quantity: 0})
	require.Equal(t, http.StatusOK, status)
	cart = cartFrom(t, env)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 2, cart.Items[1].ID)
	assert.Equal(t, 1, cart.Items[1].Quantity)

	status, env = s.do(t, http.MethodPut, "/api/cart", models.UpdateQuantityRequest{ID: 1, Quantity: 0})
	require.Equal(t, http.StatusOK, status)
	cart = cartFrom(t, env)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(22999000+299000).Equal(cart.Total))

	status, env = s.do(t, http.MethodPost, "/api/cart/remove", models.RemoveFromCartRequest{ID: 1})
	require.Equal(t, http.StatusOK, status)
	cart = cartFrom(t, env)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].ProductID)

	// the cart survives across requests through the cookie
	_, env = s.do(t, http.MethodGet, "/api/cart", nil)
	assert.Len(t, cartFrom(t, env).Items, 1)

	status, env = s.do(t, http.MethodDelete, "/api/cart", nil)
	require.Equal(t, http.StatusOK, status)
	cart = cartFrom(t, env)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Total.IsZero())
}

func TestAddToCartErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{name: "unknown product", body: models.AddToCartRequest{ProductID: 99}, wantStatus: http.StatusNotFound},
		{name: "unknown color", body: models.AddToCartRequest{ProductID: 1, Color: "purple"}, wantStatus: http.StatusBadRequest},
		{name: "storage on accessory", body: models.AddToCartRequest{ProductID: 3, Storage: "256gb"}, wantStatus: http.StatusBadRequest},
		{name: "malformed body", body: "not an object", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStorefront(t)
			status, env := s.do(t, http.MethodPost, "/api/cart", tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, "error", env.Status)
		})
	}
}

func TestRemoveUnknownLineIsNoop(t *testing.T) {
	s := newStorefront(t)
	s.do(t, http.MethodPost, "/api/cart", models.AddToCartRequest{ProductID: 4, Quantity: 3})

	status, env := s.do(t, http.MethodPost, "/api/cart/remove", models.RemoveFromCartRequest{ID: 42})
	require.Equal(t, http.StatusOK, status)
	cart := cartFrom(t, env)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Count)
}

func TestCartHoldsManyVariants(t *testing.T) {
	s := newStorefront(t)

	colors := []string{"black", "white", "blue", "green", "pink"}
	storages := []string{"128gb", "256gb", "512gb", "1tb"}

	lines := 0
	for _, productID := range []int{1, 2} {
		for _, color := range colors {
			for _, storage := range storages {
				add := models.AddToCartRequest{ProductID: productID, Color: color, Storage: storage, Quantity: 1}
				status, env := s.do(t, http.MethodPost, "/api/cart", add)
				require.Equal(t, http.StatusOK, status, "line %d: %s", lines+1, env.Message)
				lines++
			}
		}
	}

	status, env := s.do(t, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, status)
	cart := cartFrom(t, env)
	assert.Len(t, cart.Items, lines)
	assert.Equal(t, 40, cart.Count)
	assert.Equal(t, 40, cart.Items[len(cart.Items)-1].ID)
}

func TestCartSessionStoreDown(t *testing.T) {
	s := newStorefront(t)

	status, _ := s.do(t, http.MethodPost, "/api/cart", models.AddToCartRequest{ProductID: 4, Quantity: 1})
	require.Equal(t, http.StatusOK, status)

	s.mr.Close()

	status, env := s.do(t, http.MethodGet, "/api/cart", nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to load session", env.Message)
}
