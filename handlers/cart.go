package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"gadgetplan-api/models"
	"gadgetplan-api/services/cart"
	"gadgetplan-api/services/catalog"
	"gadgetplan-api/utils"
)

type CartHandler struct {
	sessions *SessionStore
	catalog  *catalog.Catalog
}

func NewCartHandler(sessions *SessionStore, cat *catalog.Catalog) *CartHandler {
	return &CartHandler{sessions: sessions, catalog: cat}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	v, ok := loadVisitor(w, r, h.sessions)
	if !ok {
		return
	}
	utils.SendSuccessResponse(w, models.APIResponse{
		Message: "Cart retrieved successfully",
		Data:    cartResponse(v.Cart),
	})
}

func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req models.AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	line, err := h.catalog.ResolveLine(req)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			utils.SendErrorResponse(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, catalog.ErrInvalidVariant):
			utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid product variant")
		default:
			log.Error().Err(err).Int("product_id", req.ProductID).Msg("failed to resolve cart line")
			utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to add item")
		}
		return
	}

	v, ok := loadVisitor(w, r, h.sessions)
	if !ok {
		return
	}
	line.ID = cart.NextLineID(v.Cart)
	h.apply(w, r, v, models.CartAction{Type: models.ActionAddItem, Item: &line}, "Item added to cart")
}

func (h *CartHandler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	v, ok := loadVisitor(w, r, h.sessions)
	if !ok {
		return
	}
	h.apply(w, r, v, models.CartAction{
		Type:     models.ActionUpdateQuantity,
		ID:       req.ID,
		Quantity: req.Quantity,
	}, "Cart updated successfully")
}

func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req models.RemoveFromCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	v, ok := loadVisitor(w, r, h.sessions)
	if !ok {
		return
	}
	h.apply(w, r, v, models.CartAction{Type: models.ActionRemoveItem, ID: req.ID}, "Item removed from cart")
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	v, ok := loadVisitor(w, r, h.sessions)
	if !ok {
		return
	}
	h.apply(w, r, v, models.CartAction{Type: models.ActionClearCart}, "Cart cleared")
}

func (h *CartHandler) apply(w http.ResponseWriter, r *http.Request, v *VisitorSession, action models.CartAction, message string) {
	v.Cart = cart.Reduce(v.Cart, action)

	if err := h.sessions.Save(r, w, v); err != nil {
		log.Error().Err(err).Str("action", string(action.Type)).Msg("failed to save cart session")
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Message: message,
		Data:    cartResponse(v.Cart),
	})
}

func cartResponse(state models.CartState) models.CartResponse {
	items := state.Items
	if items == nil {
		items = []models.CartItem{}
	}
	return models.CartResponse{
		Items:          items,
		Total:          state.Total,
		TotalFormatted: utils.FormatRupiah(state.Total),
		Count:          cart.Count(state),
	}
}
