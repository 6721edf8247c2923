package email

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gadgetplan-api/models"
)

func sampleOrder() models.PlacedOrder {
	return models.PlacedOrder{
		OrderID: "0b7e3d4c-9f55-4a8e-a1a7-2c7d3c3a9e11",
		Items: []models.CartItem{
			{ID: 1, ProductID: 1, Name: "iPhone 15 Pro Max", Price: decimal.NewFromInt(22999000), Quantity: 1, Color: "blue", Storage: "256gb"},
		},
		Shipping: models.ShippingAddress{
			FirstName: "<Rina>",
			Email:     "rina@example.com",
			Address:   "Jl. Sudirman 1",
			City:      "Jakarta",
			State:     "DKI Jakarta",
			ZipCode:   "10110",
			Country:   "Indonesia",
		},
		PaymentMethod:  models.PaymentBankTransfer,
		ShippingMethod: models.ShippingStandard,
		Summary: models.OrderSummary{
			Subtotal:     decimal.NewFromInt(22999000),
			Tax:          decimal.NewFromInt(2299900),
			ShippingCost: decimal.NewFromInt(15000),
			Total:        decimal.NewFromInt(25313900),
		},
	}
}

func TestRenderOrderConfirmation(t *testing.T) {
	body, err := RenderOrderConfirmation(sampleOrder())
	require.NoError(t, err)

	assert.Contains(t, body, "#0b7e3d4c-9f55-4a8e-a1a7-2c7d3c3a9e11")
	assert.Contains(t, body, "Rp25.313.900")
	assert.Contains(t, body, "256gb")
	assert.Contains(t, body, "&lt;Rina&gt;")
	assert.NotContains(t, body, "<Rina>")
}

func TestRenderBookingConfirmation(t *testing.T) {
	body, err := RenderBookingConfirmation(models.BookingConfirmation{
		BookingID:   "b-42",
		Request:     models.BookingRequest{DeviceModel: "iphone14", Date: "2025-03-14", Time: "10:00"},
		ServiceName: "Battery Replacement",
		Technician:  "Citra Dewi",
		Estimate:    models.PriceRange{Min: decimal.NewFromInt(200000), Max: decimal.NewFromInt(700000)},
	})
	require.NoError(t, err)

	assert.Contains(t, body, "b-42")
	assert.Contains(t, body, "Citra Dewi")
	assert.Contains(t, body, "Rp200.000 - Rp700.000")
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("no-reply@gadgetplan.id", "rina@example.com", "Hai", "<p>body</p>"))

	assert.Contains(t, msg, "From: GadgetPlan <no-reply@gadgetplan.id>\r\n")
	assert.Contains(t, msg, "To: rina@example.com\r\n")
	assert.Contains(t, msg, "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>body</p>")
}

func TestSendWithoutConfig(t *testing.T) {
	svc := NewSMTPService(SMTPConfig{})

	assert.False(t, svc.Enabled())
	assert.ErrorIs(t, svc.SendOrderConfirmation(sampleOrder()), ErrNotConfigured)
	assert.NoError(t, svc.SendBookingConfirmation(models.BookingConfirmation{BookingID: "anon"}))
}
