package email

import "gadgetplan-api/models"

type EmailSender interface {
	SendOrderConfirmation(order models.PlacedOrder) error
	SendBookingConfirmation(booking models.BookingConfirmation) error
}
