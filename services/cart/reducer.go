// Package cart holds the cart reducer. Every mutation of a visitor's cart
// goes through Reduce, which never touches its input and never fails.
package cart

import (
	"github.com/shopspring/decimal"

	"gadgetplan-api/models"
)

// EmptyState is the cart a new session starts with.
func EmptyState() models.CartState {
	return models.CartState{Items: []models.CartItem{}, Total: decimal.Zero}
}

// Reduce applies one action and returns the next state. Unknown ids are
// no-ops and unknown action types return the state unchanged.
func Reduce(state models.CartState, action models.CartAction) models.CartState {
	switch action.Type {
	case models.ActionAddItem:
		if action.Item == nil {
			return state
		}
		return addItem(state, *action.Item)

	case models.ActionRemoveItem:
		items := make([]models.CartItem, 0, len(state.Items))
		for _, item := range state.Items {
			if item.ID != action.ID {
				items = append(items, item)
			}
		}
		return models.CartState{Items: items, Total: Total(items)}

	case models.ActionUpdateQuantity:
		items := copyItems(state.Items)
		for i := range items {
			if items[i].ID == action.ID {
				items[i].Quantity = clampQuantity(action.Quantity)
			}
		}
		return models.CartState{Items: items, Total: Total(items)}

	case models.ActionClearCart:
		return EmptyState()

	default:
		return state
	}
}

func addItem(state models.CartState, payload models.CartItem) models.CartState {
	items := copyItems(state.Items)
	key := VariantKey(payload)

	for i := range items {
		if VariantKey(items[i]) == key {
			items[i].Quantity += payload.Quantity
			return models.CartState{Items: items, Total: Total(items)}
		}
	}

	items = append(items, payload)
	return models.CartState{Items: items, Total: Total(items)}
}

// Key is the identity of a cart line.
type Key struct {
	ProductID int
	Color     string
	Storage   string
}

func VariantKey(item models.CartItem) Key {
	return Key{ProductID: item.ProductID, Color: item.Color, Storage: item.Storage}
}

// Total sums price times quantity over all lines.
func Total(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// NextLineID returns an id no current line uses.
func NextLineID(state models.CartState) int {
	next := 1
	for _, item := range state.Items {
		if item.ID >= next {
			next = item.ID + 1
		}
	}
	return next
}

// Count is the number of units in the cart, as shown on the navbar badge.
func Count(state models.CartState) int {
	n := 0
	for _, item := range state.Items {
		n += item.Quantity
	}
	return n
}

func clampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

func copyItems(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}
