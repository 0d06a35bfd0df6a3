package transport

import (
	"errors"
	"net/http"

	"bloom-shop/internal/cart"
	"bloom-shop/internal/checkout"
	"bloom-shop/internal/middleware"
	"bloom-shop/internal/notify"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutResponse is returned once an order is placed
type CheckoutResponse struct {
	Order         checkout.Order        `json:"order"`
	DeliveryNote  string                `json:"deliveryNote"`
	Cart          cart.State            `json:"cart"`
	Notifications []notify.Notification `json:"notifications"`
}

// CheckoutHandler handles HTTP requests for placing orders
type CheckoutHandler struct {
	carts    *cart.Registry
	checkout *checkout.Service
	metrics  *middleware.Metrics
	logger   *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler. metrics may be nil.
func NewCheckoutHandler(carts *cart.Registry, checkoutService *checkout.Service, metrics *middleware.Metrics, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		carts:    carts,
		checkout: checkoutService,
		metrics:  metrics,
		logger:   logger,
	}
}

// RegisterRoutes registers the checkout route behind the given limiter
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, limiter func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter)
		}
		r.Post("/api/checkout", h.PlaceOrder)
	})
}

// PlaceOrder submits the caller's cart
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Checkout validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, rec := withRecorder(r)
	var (
		order checkout.Order
		state cart.State
		err   error
	)
	h.carts.Do(ctx, sessionID(r), func(c *cart.Cart) {
		order, err = h.checkout.PlaceOrder(ctx, c, req)
		state = c.Snapshot()
	})

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		h.metrics.OrderOutcome("empty")
		middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
		return
	case err != nil:
		h.metrics.OrderOutcome("failed")
		middleware.RespondWithErrorNotifications(w, http.StatusServiceUnavailable, "Failed to place order. Please try again.", rec.Notifications())
		return
	}

	h.metrics.OrderOutcome("placed")
	middleware.RespondWithJSON(w, http.StatusCreated, CheckoutResponse{
		Order:         order,
		DeliveryNote:  checkout.DeliveryNote,
		Cart:          state,
		Notifications: rec.Notifications(),
	})
}
