package cart

import (
	"fmt"

	"bloom-shop/internal/domain"
	"bloom-shop/internal/notify"

	"github.com/shopspring/decimal"
)

const (
	msgItemRemoved = "Item removed from cart"
	msgCartCleared = "Cart cleared"
)

// MaxLineQuantity caps the quantity of a single line. Larger requests are
// clamped to it.
const MaxLineQuantity = 999

// Line is one product in the cart. Name, Price and Image are copied from the
// product when it is first added and never follow later catalog changes.
type Line struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is price times quantity for the line
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// State is a point-in-time view of a cart
type State struct {
	Items     []Line          `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// Cart holds the line items of one shopping session.
//
// Lines are kept in first-add order, product ids are unique and every quantity
// is positive; Total always equals the sum of price times quantity. A Cart is
// not safe for concurrent use, Registry serialises access per session.
type Cart struct {
	items    []Line
	total    decimal.Decimal
	notifier notify.Notifier
}

// New creates an empty cart. A nil notifier discards notifications.
func New(notifier notify.Notifier) *Cart {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Cart{
		items:    []Line{},
		total:    decimal.Zero,
		notifier: notifier,
	}
}

// SetNotifier replaces the sink that receives cart status messages
func (c *Cart) SetNotifier(n notify.Notifier) {
	if n == nil {
		n = notify.Discard
	}
	c.notifier = n
}

// AddItem adds quantity units of product. An existing line for the same product
// has its quantity increased; otherwise a new line is appended. Quantities
// below one are treated as one and a line never exceeds MaxLineQuantity.
func (c *Cart) AddItem(product domain.Product, quantity int) {
	quantity = clampQuantity(quantity)

	if i := c.indexOf(product.ID); i >= 0 {
		// Both operands are at most MaxLineQuantity, so the sum cannot overflow
		c.items[i].Quantity = clampQuantity(c.items[i].Quantity + quantity)
	} else {
		c.items = append(c.items, Line{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.PrimaryImage(),
			Quantity:  quantity,
		})
	}

	c.recalculate()
	c.notifier.Notify(notify.Success(fmt.Sprintf("%s added to cart!", product.Name)))
}

// RemoveItem deletes the line for productID. Removing an absent product is a no-op.
func (c *Cart) RemoveItem(productID int64) {
	if i := c.indexOf(productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}

	c.recalculate()
	c.notifier.Notify(notify.Info(msgItemRemoved))
}

// UpdateQuantity sets the quantity of an existing line to exactly quantity,
// clamped to MaxLineQuantity. A quantity of zero or less removes the line;
// unknown products are ignored.
func (c *Cart) UpdateQuantity(productID int64, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}

	if i := c.indexOf(productID); i >= 0 {
		c.items[i].Quantity = clampQuantity(quantity)
	}
	c.recalculate()
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.items = []Line{}
	c.total = decimal.Zero
	c.notifier.Notify(notify.Success(msgCartCleared))
}

// ItemCount is the number of units in the cart, not the number of lines
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// ItemQuantity returns the quantity held for productID, or 0
func (c *Cart) ItemQuantity(productID int64) int {
	if i := c.indexOf(productID); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

// Items returns a copy of the cart lines
func (c *Cart) Items() []Line {
	out := make([]Line, len(c.items))
	copy(out, c.items)
	return out
}

// Total is the sum of price times quantity over all lines
func (c *Cart) Total() decimal.Decimal {
	return c.total
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Snapshot captures the current state for rendering
func (c *Cart) Snapshot() State {
	return State{
		Items:     c.Items(),
		Total:     c.total,
		ItemCount: c.ItemCount(),
	}
}

func (c *Cart) indexOf(productID int64) int {
	for i, item := range c.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func clampQuantity(quantity int) int {
	switch {
	case quantity < 1:
		return 1
	case quantity > MaxLineQuantity:
		return MaxLineQuantity
	}
	return quantity
}

func (c *Cart) recalculate() {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	c.total = total
}
