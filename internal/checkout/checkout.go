package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloom-shop/internal/cart"
	"bloom-shop/internal/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrOrderFailed = errors.New("failed to place order")
)

const (
	placedMessage = "Order placed successfully! You will receive a confirmation email shortly."
	failedMessage = "Failed to place order. Please try again."

	// DeliveryNote describes the delivery charge shown at checkout
	DeliveryNote = "Free local delivery"
)

// Delivery windows
const (
	DeliveryMorning   = "morning"
	DeliveryAfternoon = "afternoon"
	DeliveryEvening   = "evening"
)

// Request is the checkout form
type Request struct {
	FirstName           string `json:"firstName" validate:"required,max=100"`
	LastName            string `json:"lastName" validate:"required,max=100"`
	Email               string `json:"email" validate:"required,email"`
	Phone               string `json:"phone" validate:"required,min=7,max=20"`
	Address             string `json:"address" validate:"required,max=255"`
	City                string `json:"city" validate:"required,max=100"`
	ZipCode             string `json:"zipCode" validate:"required,min=3,max=10"`
	DeliveryDate        string `json:"deliveryDate" validate:"required,datetime=2006-01-02,notpast"`
	DeliveryTime        string `json:"deliveryTime" validate:"required,oneof=morning afternoon evening"`
	SpecialInstructions string `json:"specialInstructions,omitempty" validate:"max=500"`
}

// Order is a placed order
type Order struct {
	ID          string          `json:"id"`
	Customer    Request         `json:"customer"`
	Items       []cart.Line     `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
	PlacedAt    time.Time       `json:"placedAt"`
}

// Submitter hands an order to the fulfilment backend
type Submitter interface {
	Submit(ctx context.Context, order Order) error
}

// MockSubmitter accepts every order after a simulated processing delay
type MockSubmitter struct {
	Delay time.Duration
}

// Submit waits out Delay and accepts the order, or returns early with the context error
func (m MockSubmitter) Submit(ctx context.Context, order Order) error {
	if m.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Service places orders for carts
type Service struct {
	submitter Submitter
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a checkout service
func NewService(submitter Submitter, logger *zap.Logger) *Service {
	return &Service{
		submitter: submitter,
		logger:    logger,
		now:       time.Now,
	}
}

// PlaceOrder submits the contents of c. On success the cart is cleared; on
// failure it is left untouched so the shopper can retry.
func (s *Service) PlaceOrder(ctx context.Context, c *cart.Cart, req Request) (Order, error) {
	if c.IsEmpty() {
		return Order{}, ErrEmptyCart
	}

	state := c.Snapshot()
	order := Order{
		ID:          uuid.NewString(),
		Customer:    req,
		Items:       state.Items,
		Subtotal:    state.Total,
		DeliveryFee: decimal.Zero,
		Total:       state.Total,
		PlacedAt:    s.now().UTC(),
	}

	if err := s.submitter.Submit(ctx, order); err != nil {
		s.logger.Error("Failed to submit order",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
		notify.FromContext(ctx).Notify(notify.Error(failedMessage))
		return Order{}, fmt.Errorf("%w: %v", ErrOrderFailed, err)
	}

	c.Clear()
	notify.FromContext(ctx).Notify(notify.Success(placedMessage))

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.Int("items", state.ItemCount),
		zap.String("total", order.Total.StringFixed(2)),
		zap.String("delivery_date", req.DeliveryDate),
		zap.String("delivery_time", req.DeliveryTime),
	)
	return order, nil
}
