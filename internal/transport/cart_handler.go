package transport

import (
	"errors"
	"net/http"
	"strconv"

	"bloom-shop/internal/cart"
	"bloom-shop/internal/catalog"
	"bloom-shop/internal/middleware"
	"bloom-shop/internal/notify"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddItemRequest represents the add-to-cart payload. A missing quantity adds
// one unit. The upper bound matches cart.MaxLineQuantity.
type AddItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"omitempty,gt=0,lte=999"`
}

// UpdateQuantityRequest sets the absolute quantity of a line. Zero or less
// removes it.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=999"`
}

// CartResponse is the cart state plus the notifications the change raised
type CartResponse struct {
	cart.State
	Notifications []notify.Notification `json:"notifications"`
}

// CartHandler handles HTTP requests for the session cart
type CartHandler struct {
	carts   *cart.Registry
	catalog *catalog.Service
	metrics *middleware.Metrics
	logger  *zap.Logger
}

// NewCartHandler creates a new CartHandler. metrics may be nil.
func NewCartHandler(carts *cart.Registry, catalogService *catalog.Service, metrics *middleware.Metrics, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalogService,
		metrics: metrics,
		logger:  logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productId}", h.UpdateQuantity)
		r.Delete("/items/{productId}", h.RemoveItem)
	})
}

// GetCart returns the caller's cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, rec := withRecorder(r)
	state := h.carts.Snapshot(ctx, sessionID(r))

	h.respond(w, http.StatusOK, state, rec)
}

// AddItem puts a catalog product into the cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add to cart validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, rec := withRecorder(r)
	product, err := h.catalog.GetByIDInt(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "Failed to load product")
		return
	}

	if !product.InStock {
		middleware.RespondWithErrorDetails(w, http.StatusConflict, "product is out of stock", map[string]interface{}{
			"productId": product.ID,
		})
		return
	}

	var state cart.State
	h.carts.Do(ctx, sessionID(r), func(c *cart.Cart) {
		c.AddItem(product, req.Quantity)
		state = c.Snapshot()
	})
	h.metrics.CartOperation("add")

	h.respond(w, http.StatusOK, state, rec)
}

// UpdateQuantity sets the quantity of a cart line
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Quantity update validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, rec := withRecorder(r)
	var state cart.State
	h.carts.Do(ctx, sessionID(r), func(c *cart.Cart) {
		c.UpdateQuantity(productID, *req.Quantity)
		state = c.Snapshot()
	})
	h.metrics.CartOperation("update")

	h.respond(w, http.StatusOK, state, rec)
}

// RemoveItem deletes a cart line
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	ctx, rec := withRecorder(r)
	var state cart.State
	h.carts.Do(ctx, sessionID(r), func(c *cart.Cart) {
		c.RemoveItem(productID)
		state = c.Snapshot()
	})
	h.metrics.CartOperation("remove")

	h.respond(w, http.StatusOK, state, rec)
}

// ClearCart empties the cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, rec := withRecorder(r)
	var state cart.State
	h.carts.Do(ctx, sessionID(r), func(c *cart.Cart) {
		c.Clear()
		state = c.Snapshot()
	})
	h.metrics.CartOperation("clear")

	h.respond(w, http.StatusOK, state, rec)
}

func (h *CartHandler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}

func (h *CartHandler) respond(w http.ResponseWriter, status int, state cart.State, rec *notify.Recorder) {
	middleware.RespondWithJSON(w, status, CartResponse{
		State:         state,
		Notifications: rec.Notifications(),
	})
}
