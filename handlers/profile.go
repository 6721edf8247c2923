package handlers

import (
	"net/http"

	"gadgetplan-api/middleware"
	"gadgetplan-api/models"
	"gadgetplan-api/utils"
)

type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// GetProfile runs behind RequireAuth. Order and booking history are
// placeholders until orders are persisted.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Message: "Profile retrieved successfully",
		Data: models.ProfileResponse{
			User:            *user,
			Orders:          placeholderOrders(),
			ServiceBookings: placeholderBookings(),
		},
	})
}

func placeholderOrders() []models.Order {
	return []models.Order{
		{ID: 1, TotalAmount: "Rp 15,000,000", Status: "completed", CreatedAt: "2023-05-15"},
		{ID: 2, TotalAmount: "Rp 2,500,000", Status: "pending", CreatedAt: "2023-06-20"},
	}
}

func placeholderBookings() []models.ServiceBooking {
	return []models.ServiceBooking{
		{ID: 1, ServiceType: "Screen Replacement", DeviceModel: "iPhone 14 Pro", IssueDescription: "Cracked screen", Status: "completed", CreatedAt: "2023-04-10"},
		{ID: 2, ServiceType: "Battery Replacement", DeviceModel: "iPhone 13", IssueDescription: "Battery swelling", Status: "in progress", CreatedAt: "2023-07-15"},
	}
}
