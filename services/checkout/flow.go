// Package checkout drives the four step checkout form: shipping, payment,
// review and confirmation. Every function takes a flow and returns the next
// one; the caller decides where the flow is kept.
package checkout

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"gadgetplan-api/models"
)

const DefaultCountry = "Indonesia"

var (
	ErrInvalidStep           = errors.New("checkout step not reached")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrIncomplete            = errors.New("missing required shipping fields")
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrUnsupportedCountry    = errors.New("country not supported")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrInvalidShippingMethod = errors.New("invalid shipping method")
)

var (
	TaxRate = decimal.NewFromFloat(0.1)

	shippingCosts = map[models.ShippingMethod]decimal.Decimal{
		models.ShippingStandard: decimal.NewFromInt(15000),
		models.ShippingExpress:  decimal.NewFromInt(35000),
		models.ShippingFree:     decimal.Zero,
	}

	countries = []string{"Indonesia", "Malaysia", "Singapore", "Thailand"}
)

func NewFlow() models.CheckoutFlow {
	return models.CheckoutFlow{
		Step:           models.StepShipping,
		Shipping:       models.ShippingAddress{Country: DefaultCountry},
		PaymentMethod:  models.PaymentCreditCard,
		ShippingMethod: models.ShippingStandard,
	}
}

func Countries() []string {
	return append([]string(nil), countries...)
}

func ShippingCost(method models.ShippingMethod) (decimal.Decimal, error) {
	cost, ok := shippingCosts[method]
	if !ok {
		return decimal.Zero, fmt.Errorf("%q: %w", method, ErrInvalidShippingMethod)
	}
	return cost, nil
}

// Summarize prices the cart: tax is a tenth of the subtotal, shipping is
// flat per method.
func Summarize(items []models.CartItem, method models.ShippingMethod) (models.OrderSummary, error) {
	shipping, err := ShippingCost(method)
	if err != nil {
		return models.OrderSummary{}, err
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	tax := subtotal.Mul(TaxRate).Round(0)

	return models.OrderSummary{
		Subtotal:     subtotal,
		Tax:          tax,
		ShippingCost: shipping,
		Total:        subtotal.Add(tax).Add(shipping),
	}, nil
}

// SetShipping validates the address and moves to the payment step. A flow
// that already reached confirmation starts over.
func SetShipping(flow models.CheckoutFlow, req models.ShippingRequest) (models.CheckoutFlow, error) {
	if flow.Step == models.StepConfirmation {
		flow = NewFlow()
	}

	addr := normalizeAddress(req.Shipping)
	if err := validateAddress(addr); err != nil {
		return flow, err
	}

	method := req.ShippingMethod
	if method == "" {
		method = models.ShippingStandard
	}
	if _, err := ShippingCost(method); err != nil {
		return flow, err
	}

	flow.Shipping = addr
	flow.ShippingMethod = method
	flow.Step = models.StepPayment
	return flow, nil
}

func SetPayment(flow models.CheckoutFlow, method models.PaymentMethod) (models.CheckoutFlow, error) {
	if flow.Step < models.StepPayment || flow.Step == models.StepConfirmation {
		return flow, fmt.Errorf("payment at step %s: %w", flow.Step, ErrInvalidStep)
	}

	switch method {
	case models.PaymentCreditCard, models.PaymentBankTransfer, models.PaymentCOD:
	default:
		return flow, fmt.Errorf("%q: %w", method, ErrInvalidPaymentMethod)
	}

	flow.PaymentMethod = method
	flow.Step = models.StepReview
	return flow, nil
}

// Back never leaves the first step and cannot undo a placed order.
func Back(flow models.CheckoutFlow) models.CheckoutFlow {
	if flow.Step > models.StepShipping && flow.Step < models.StepConfirmation {
		flow.Step--
	}
	return flow
}

func Review(flow models.CheckoutFlow, cart models.CartState) (models.CheckoutReview, error) {
	if flow.Step != models.StepReview {
		return models.CheckoutReview{}, fmt.Errorf("review at step %s: %w", flow.Step, ErrInvalidStep)
	}
	if len(cart.Items) == 0 {
		return models.CheckoutReview{}, ErrEmptyCart
	}

	summary, err := Summarize(cart.Items, flow.ShippingMethod)
	if err != nil {
		return models.CheckoutReview{}, err
	}

	return models.CheckoutReview{
		Flow:    flow,
		Items:   cart.Items,
		Summary: summary,
	}, nil
}

// PlaceOrder assigns an order reference and moves the flow to
// confirmation. Clearing the cart is left to the caller.
func PlaceOrder(flow models.CheckoutFlow, cart models.CartState) (models.CheckoutFlow, models.PlacedOrder, error) {
	review, err := Review(flow, cart)
	if err != nil {
		return flow, models.PlacedOrder{}, err
	}

	flow.OrderID = uuid.NewString()
	flow.Step = models.StepConfirmation

	order := models.PlacedOrder{
		OrderID:        flow.OrderID,
		Items:          review.Items,
		Shipping:       flow.Shipping,
		PaymentMethod:  flow.PaymentMethod,
		ShippingMethod: flow.ShippingMethod,
		Summary:        review.Summary,
	}

	log.Info().
		Str("order_id", order.OrderID).
		Str("payment_method", string(order.PaymentMethod)).
		Str("shipping_method", string(order.ShippingMethod)).
		Int("lines", len(order.Items)).
		Str("total", order.Summary.Total.String()).
		Msg("order placed")

	return flow, order, nil
}

func normalizeAddress(addr models.ShippingAddress) models.ShippingAddress {
	addr.FirstName = strings.TrimSpace(addr.FirstName)
	addr.LastName = strings.TrimSpace(addr.LastName)
	addr.Email = strings.TrimSpace(addr.Email)
	addr.Phone = strings.TrimSpace(addr.Phone)
	addr.Address = strings.TrimSpace(addr.Address)
	addr.City = strings.TrimSpace(addr.City)
	addr.State = strings.TrimSpace(addr.State)
	addr.ZipCode = strings.TrimSpace(addr.ZipCode)
	addr.Country = strings.TrimSpace(addr.Country)
	if addr.Country == "" {
		addr.Country = DefaultCountry
	}
	return addr
}

func validateAddress(addr models.ShippingAddress) error {
	fields := []struct {
		name  string
		value string
	}{
		{"firstName", addr.FirstName},
		{"lastName", addr.LastName},
		{"email", addr.Email},
		{"phone", addr.Phone},
		{"address", addr.Address},
		{"city", addr.City},
		{"state", addr.State},
		{"zipCode", addr.ZipCode},
	}
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(missing, ", "), ErrIncomplete)
	}

	if _, err := mail.ParseAddress(addr.Email); err != nil {
		return fmt.Errorf("%q: %w", addr.Email, ErrInvalidEmail)
	}

	for _, c := range countries {
		if c == addr.Country {
			return nil
		}
	}
	return fmt.Errorf("%q: %w", addr.Country, ErrUnsupportedCountry)
}
