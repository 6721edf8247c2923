package models

// Placeholder records for the profile page. Nothing backs them yet.
type Order struct {
	ID          int    `json:"id"`
	TotalAmount string `json:"total_amount"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

type ServiceBooking struct {
	ID               int    `json:"id"`
	ServiceType      string `json:"service_type"`
	DeviceModel      string `json:"device_model"`
	IssueDescription string `json:"issue_description"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at"`
}

type ProfileResponse struct {
	User            AppUser          `json:"user"`
	Orders          []Order          `json:"orders"`
	ServiceBookings []ServiceBooking `json:"service_bookings"`
}
