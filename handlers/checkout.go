package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"gadgetplan-api/models"
	"gadgetplan-api/queue"
	"gadgetplan-api/services/cart"
	"gadgetplan-api/services/checkout"
	"gadgetplan-api/utils"
)

// JobQueue is the slice of *queue.Queue the handlers enqueue through.
type JobQueue interface {
	Enqueue(ctx context.Context, jobType queue.JobType, payload interface{}) error
}

type CheckoutHandler struct {
	sessions *SessionStore
	jobs     JobQueue
}

func NewCheckoutHandler(sessions *SessionStore, jobs JobQueue) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions, jobs: jobs}
}

type checkoutState struct {
	Flow      models.CheckoutFlow  `json:"flow"`
	Step      string               `json:"step"`
	Summary   *models.OrderSummary `json:"summary,omitempty"`
	Countries []string             `json:"countries"`
}

func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	v, ok := loadVisitor(w, r, h.sessions)
	if !ok {
		return
	}

	state := checkoutState{
		Flow:      v.Flow,
		Step:      v.Flow.Step.String(),
		Countries: checkout.Countries(),
	}
	if len(v.Cart.Items) > 0 {
		summary, err := checkout.Summarize(v.Cart.Items, v.Flow.ShippingMethod)
		if err != nil {
			log.Warn().Err(err).Msg("stored checkout flow has an unknown shipping method")
		} else {
			state.Summary = &summary
		}
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Message: "Checkout retrieved successfully",
		Data:    state,
	})
}

func (h *CheckoutHandler) SetShipping(w http.ResponseWriter, r *http.Request) {
	var req models.ShippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	v, ok := loadVisitor(w, r, h.sessions)
	if !ok {
		return
	}
	flow, err := checkout.SetShipping(v.Flow, req)
	if err != nil {
		sendCheckoutError(w, err)
		return
	}

	v.Flow = flow
	h.saveFlow(w, r, v, "Shipping information saved")
}

func (h *CheckoutHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	v, ok := loadVisitor(w, r, h.sessions)
	if !ok {
		return
	}
	flow, err := checkout.SetPayment(v.Flow, req.PaymentMethod)
	if err != nil {
		sendCheckoutError(w, err)
		return
	}

	v.Flow = flow
	h.saveFlow(w, r, v, "Payment method saved")
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	v, ok := loadVisitor(w, r, h.sessions)
	if !ok {
		return
	}
	v.Flow = checkout.Back(v.Flow)
	h.saveFlow(w, r, v, "Moved to previous step")
}

func (h *CheckoutHandler) Review(w http.ResponseWriter, r *http.Request) {
	v, ok := loadVisitor(w, r, h.sessions)
	if !ok {
		return
	}
	review, err := checkout.Review(v.Flow, v.Cart)
	if err != nil {
		sendCheckoutError(w, err)
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Message: "Order review",
		Data:    review,
	})
}

// PlaceOrder confirms the order, empties the cart and queues the
// confirmation email. A queue failure does not undo the order.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	v, ok := loadVisitor(w, r, h.sessions)
	if !ok {
		return
	}
	flow, order, err := checkout.PlaceOrder(v.Flow, v.Cart)
	if err != nil {
		sendCheckoutError(w, err)
		return
	}

	v.Flow = flow
	v.Cart = cart.Reduce(v.Cart, models.CartAction{Type: models.ActionClearCart})
	if err := h.sessions.Save(r, w, v); err != nil {
		log.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to save session after order")
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to save checkout")
		return
	}

	if h.jobs != nil {
		if err := h.jobs.Enqueue(r.Context(), queue.JobTypeOrderConfirmation, order); err != nil {
			log.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to enqueue order confirmation")
		}
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Message: "Order placed successfully",
		Data:    order,
	})
}

func (h *CheckoutHandler) saveFlow(w http.ResponseWriter, r *http.Request, v *VisitorSession, message string) {
	if err := h.sessions.Save(r, w, v); err != nil {
		log.Error().Err(err).Msg("failed to save checkout session")
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to save checkout")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Message: message,
		Data: checkoutState{
			Flow:      v.Flow,
			Step:      v.Flow.Step.String(),
			Countries: checkout.Countries(),
		},
	})
}

func sendCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		utils.SendErrorResponse(w, http.StatusConflict, "Cart is empty")
	case errors.Is(err, checkout.ErrInvalidStep):
		utils.SendErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrIncomplete),
		errors.Is(err, checkout.ErrInvalidEmail),
		errors.Is(err, checkout.ErrUnsupportedCountry),
		errors.Is(err, checkout.ErrInvalidPaymentMethod),
		errors.Is(err, checkout.ErrInvalidShippingMethod):
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("checkout failed")
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}
