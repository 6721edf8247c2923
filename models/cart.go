package models

import "github.com/shopspring/decimal"

type CartItem struct {
	ID        int             `json:"id"`
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"image_url,omitempty"`
	Color     string          `json:"color,omitempty"`
	Storage   string          `json:"storage,omitempty"`
}

type CartState struct {
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type CartActionType string

const (
	ActionAddItem        CartActionType = "ADD_ITEM"
	ActionRemoveItem     CartActionType = "REMOVE_ITEM"
	ActionUpdateQuantity CartActionType = "UPDATE_QUANTITY"
	ActionClearCart      CartActionType = "CLEAR_CART"
)

// CartAction carries the payload of one reducer step. Item is read by
// ADD_ITEM, ID by REMOVE_ITEM and UPDATE_QUANTITY, Quantity by UPDATE_QUANTITY.
type CartAction struct {
	Type     CartActionType `json:"type"`
	Item     *CartItem      `json:"item,omitempty"`
	ID       int            `json:"id,omitempty"`
	Quantity int            `json:"quantity,omitempty"`
}

// AddToCartRequest is what the product page posts. Display fields are
// resolved from the catalog, never taken from the client.
type AddToCartRequest struct {
	ProductID int    `json:"productId"`
	Color     string `json:"color"`
	Storage   string `json:"storage"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequest struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

type RemoveFromCartRequest struct {
	ID int `json:"id"`
}

type CartResponse struct {
	Items          []CartItem      `json:"items"`
	Total          decimal.Decimal `json:"total"`
	TotalFormatted string          `json:"total_formatted"`
	Count          int             `json:"count"`
}
