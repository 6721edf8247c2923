package models

import "github.com/shopspring/decimal"

type CheckoutStep int

const (
	StepShipping CheckoutStep = iota + 1
	StepPayment
	StepReview
	StepConfirmation
)

func (s CheckoutStep) String() string {
	switch s {
	case StepShipping:
		return "shipping"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	case StepConfirmation:
		return "confirmation"
	default:
		return "unknown"
	}
}

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit-card"
	PaymentBankTransfer PaymentMethod = "bank-transfer"
	PaymentCOD          PaymentMethod = "cod"
)

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
	ShippingFree     ShippingMethod = "free"
)

type ShippingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

// CheckoutFlow is the state of the checkout form. It lives in the cookie
// session next to the cart.
type CheckoutFlow struct {
	Step           CheckoutStep    `json:"step"`
	Shipping       ShippingAddress `json:"shipping"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	ShippingMethod ShippingMethod  `json:"shipping_method"`
	OrderID        string          `json:"order_id,omitempty"`
}

type OrderSummary struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Total        decimal.Decimal `json:"total"`
}

type CheckoutReview struct {
	Flow    CheckoutFlow `json:"flow"`
	Items   []CartItem   `json:"items"`
	Summary OrderSummary `json:"summary"`
}

type ShippingRequest struct {
	Shipping       ShippingAddress `json:"shipping"`
	ShippingMethod ShippingMethod  `json:"shipping_method"`
}

type PaymentMethodRequest struct {
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// PlacedOrder is the confirmation handed back to the client and to the
// confirmation job. Nothing stores it.
type PlacedOrder struct {
	OrderID        string          `json:"order_id"`
	Items          []CartItem      `json:"items"`
	Shipping       ShippingAddress `json:"shipping"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	ShippingMethod ShippingMethod  `json:"shipping_method"`
	Summary        OrderSummary    `json:"summary"`
}
