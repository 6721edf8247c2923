package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"gadgetplan-api/middleware"
	"gadgetplan-api/models"
	"gadgetplan-api/services/booking"
	"gadgetplan-api/utils"
)

type BookingHandler struct {
	service *booking.Service
}

func NewBookingHandler(service *booking.Service) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	utils.SendSuccessResponse(w, models.APIResponse{
		Message: "Booking options retrieved successfully",
		Data:    h.service.Options(),
	})
}

// GetEstimate answers GET /services/estimate?service_type=
func (h *BookingHandler) GetEstimate(w http.ResponseWriter, r *http.Request) {
	serviceType := r.URL.Query().Get("service_type")
	if serviceType == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "service_type is required")
		return
	}

	service, err := h.service.Estimate(serviceType)
	if err != nil {
		sendBookingError(w, err)
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Message: "Estimate retrieved successfully",
		Data: map[string]interface{}{
			"service":   service,
			"formatted": utils.FormatPriceRange(service.PriceRange),
		},
	})
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.CheckAvailability(r.Context(), req)
	if err != nil {
		if errors.Is(err, booking.ErrIncomplete) {
			// point the form back at the first unfinished step
			utils.SendJSON(w, http.StatusBadRequest, models.APIResponse{
				Status:  "error",
				Message: "Please complete all booking fields",
				Data:    map[string]models.BookingStep{"step": booking.CurrentStep(req)},
			})
			return
		}
		sendBookingError(w, err)
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Message: result.Message,
		Data:    result,
	})
}

// Submit books the repair. Signed in visitors get the confirmation email.
func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var contactEmail string
	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		contactEmail = user.Email
	}

	confirmation, err := h.service.Submit(r.Context(), req, contactEmail)
	if err != nil {
		sendBookingError(w, err)
		return
	}

	utils.SendJSON(w, http.StatusCreated, models.APIResponse{
		Status:  "success",
		Message: "Booking submitted successfully",
		Data:    confirmation,
	})
}

func sendBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrServiceNotFound),
		errors.Is(err, booking.ErrTechnicianNotFound):
		utils.SendErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrIncomplete):
		utils.SendErrorResponse(w, http.StatusBadRequest, "Please complete all booking fields")
	case errors.Is(err, booking.ErrUnknownDevice),
		errors.Is(err, booking.ErrModelMismatch),
		errors.Is(err, booking.ErrInvalidSlot),
		errors.Is(err, booking.ErrInvalidDate):
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		utils.SendErrorResponse(w, http.StatusServiceUnavailable, "Request cancelled")
	default:
		log.Error().Err(err).Msg("booking failed")
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}
