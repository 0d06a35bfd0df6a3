package cart

import (
	"math"
	"testing"

	"bloom-shop/internal/domain"
	"bloom-shop/internal/notify"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, name, price string) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     name,
		Category: "bouquets",
		Price:    decimal.RequireFromString(price),
		Images:   []string{name + ".jpg", name + "-2.jpg"},
		InStock:  true,
	}
}

var catalogFixture = []domain.Product{
	product(1, "Rose Bouquet", "24.99"),
	product(2, "Tulip Stem", "3.50"),
	product(3, "Orchid Pot", "39.00"),
	product(4, "Peony Bunch", "18.25"),
	product(5, "Lily Stem", "4.10"),
}

func expectedTotal(c *Cart) decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Items() {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func assertInvariants(t *testing.T, c *Cart) {
	t.Helper()
	seen := map[int64]bool{}
	for _, l := range c.Items() {
		assert.False(t, seen[l.ProductID], "duplicate line for product %d", l.ProductID)
		seen[l.ProductID] = true
		assert.Greater(t, l.Quantity, 0)
	}
	assert.True(t, c.Total().Equal(expectedTotal(c)), "total %s != %s", c.Total(), expectedTotal(c))
}

func TestNewCartIsEmpty(t *testing.T) {
	c := New(nil)

	assert.Equal(t, 0, c.ItemCount())
	assert.True(t, c.Total().IsZero())
	assert.Empty(t, c.Items())
	assert.True(t, c.IsEmpty())
}

func TestClearOnEmptyCartKeepsEmptyState(t *testing.T) {
	c := New(nil)
	before := c.Snapshot()

	c.Clear()

	assert.Equal(t, before.ItemCount, c.Snapshot().ItemCount)
	assert.True(t, before.Total.Equal(c.Total()))
	assert.Empty(t, c.Items())
}

func TestAddItemMergesSameProduct(t *testing.T) {
	c := New(nil)
	rose := catalogFixture[0]

	c.AddItem(rose, 2)
	c.AddItem(rose, 3)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 5, c.ItemQuantity(rose.ID))
	assert.True(t, c.Total().Equal(decimal.RequireFromString("124.95")))
}

func TestAddItemSnapshotsProduct(t *testing.T) {
	c := New(nil)
	rose := catalogFixture[0]

	c.AddItem(rose, 1)
	rose.Price = decimal.RequireFromString("99.00")
	rose.Name = "Renamed"
	c.AddItem(rose, 1)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Rose Bouquet", items[0].Name)
	assert.Equal(t, "Rose Bouquet.jpg", items[0].Image)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("24.99")))
	assert.True(t, c.Total().Equal(decimal.RequireFromString("49.98")))
}

func TestAddItemDefaultsToOneUnit(t *testing.T) {
	c := New(nil)

	c.AddItem(catalogFixture[1], 0)
	c.AddItem(catalogFixture[2], -4)

	assert.Equal(t, 1, c.ItemQuantity(catalogFixture[1].ID))
	assert.Equal(t, 1, c.ItemQuantity(catalogFixture[2].ID))
}

func TestAddItemWithoutImagesLeavesImageEmpty(t *testing.T) {
	c := New(nil)
	p := catalogFixture[3]
	p.Images = nil

	c.AddItem(p, 1)

	assert.Equal(t, "", c.Items()[0].Image)
}

func TestItemsKeepInsertionOrder(t *testing.T) {
	c := New(nil)
	c.AddItem(catalogFixture[2], 1)
	c.AddItem(catalogFixture[0], 1)
	c.AddItem(catalogFixture[2], 1)
	c.AddItem(catalogFixture[1], 1)

	ids := []int64{}
	for _, l := range c.Items() {
		ids = append(ids, l.ProductID)
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestItemCountSumsQuantities(t *testing.T) {
	c := New(nil)
	c.AddItem(catalogFixture[0], 3)
	c.AddItem(catalogFixture[1], 2)

	assert.Len(t, c.Items(), 2)
	assert.Equal(t, 5, c.ItemCount())
}

func TestUpdateQuantityZeroOrNegativeRemovesLine(t *testing.T) {
	for _, qty := range []int{0, -5} {
		c := New(nil)
		c.AddItem(catalogFixture[0], 2)
		c.AddItem(catalogFixture[1], 1)

		c.UpdateQuantity(catalogFixture[0].ID, qty)

		assert.Equal(t, 0, c.ItemQuantity(catalogFixture[0].ID))
		assert.Len(t, c.Items(), 1)
		assertInvariants(t, c)
	}
}

func TestUpdateQuantitySetsAbsoluteValue(t *testing.T) {
	c := New(nil)
	c.AddItem(catalogFixture[1], 4)

	c.UpdateQuantity(catalogFixture[1].ID, 2)

	assert.Equal(t, 2, c.ItemQuantity(catalogFixture[1].ID))
	assert.True(t, c.Total().Equal(decimal.RequireFromString("7.00")))
}

func TestUpdateQuantityUnknownProductIsNoop(t *testing.T) {
	c := New(nil)
	c.AddItem(catalogFixture[1], 4)

	c.UpdateQuantity(999, 7)

	assert.Len(t, c.Items(), 1)
	assert.Equal(t, 0, c.ItemQuantity(999))
}

func TestItemsReturnsCopy(t *testing.T) {
	c := New(nil)
	c.AddItem(catalogFixture[0], 1)

	items := c.Items()
	items[0].Quantity = 50

	assert.Equal(t, 1, c.ItemQuantity(catalogFixture[0].ID))
}

func TestNotifications(t *testing.T) {
	rec := notify.NewRecorder()
	c := New(rec)

	c.AddItem(catalogFixture[0], 1)
	c.UpdateQuantity(catalogFixture[0].ID, 3)
	c.UpdateQuantity(catalogFixture[0].ID, 0)
	c.Clear()

	assert.Equal(t, []notify.Notification{
		notify.Success("Rose Bouquet added to cart!"),
		notify.Info("Item removed from cart"),
		notify.Success("Cart cleared"),
	}, rec.Notifications())
}

// Feature: flower-storefront, Property: removing a product twice equals removing it once
func TestProperty_RemoveItemIsIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("second removal leaves state unchanged", prop.ForAll(
		func(ops []int, target int64) bool {
			c := New(nil)
			apply(c, ops)

			c.RemoveItem(target)
			once := c.Snapshot()
			c.RemoveItem(target)
			twice := c.Snapshot()

			if len(once.Items) != len(twice.Items) || once.ItemCount != twice.ItemCount {
				return false
			}
			for i := range once.Items {
				a, b := once.Items[i], twice.Items[i]
				if a.ProductID != b.ProductID || a.Quantity != b.Quantity || !a.Price.Equal(b.Price) {
					return false
				}
			}
			return once.Total.Equal(twice.Total)
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
		gen.Int64Range(0, 7),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: flower-storefront, Property: total always equals the sum of line subtotals
func TestProperty_TotalInvariantHolds(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("invariants hold after every operation", prop.ForAll(
		func(ops []int) bool {
			c := New(nil)
			for _, op := range ops {
				apply(c, []int{op})

				if !c.Total().Equal(expectedTotal(c)) {
					return false
				}
				seen := map[int64]bool{}
				for _, l := range c.Items() {
					if seen[l.ProductID] || l.Quantity <= 0 {
						return false
					}
					seen[l.ProductID] = true
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAddItemClampsAtMaxLineQuantity(t *testing.T) {
	c := New(nil)
	rose := catalogFixture[0]

	c.AddItem(rose, math.MaxInt)
	c.AddItem(rose, math.MaxInt)
	c.AddItem(catalogFixture[1], 5)

	assert.Equal(t, MaxLineQuantity, c.ItemQuantity(rose.ID))
	assert.Equal(t, MaxLineQuantity+5, c.ItemCount())
	assert.True(t, c.Total().Equal(expectedTotal(c)))
	assert.True(t, c.Total().IsPositive())
	assertInvariants(t, c)
}

func TestUpdateQuantityClampsAtMaxLineQuantity(t *testing.T) {
	c := New(nil)
	c.AddItem(catalogFixture[2], 1)

	c.UpdateQuantity(catalogFixture[2].ID, math.MaxInt)
	assert.Equal(t, MaxLineQuantity, c.ItemQuantity(catalogFixture[2].ID))

	c.UpdateQuantity(catalogFixture[2].ID, math.MinInt)
	assert.True(t, c.IsEmpty())
	assertInvariants(t, c)
}

// Feature: flower-storefront, Property: quantities stay within bounds for any integer input
func TestProperty_QuantitiesStayBounded(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("extreme quantities never break line or total invariants", prop.ForAll(
		func(ops []int, quantities []int) bool {
			c := New(nil)
			for i, op := range ops {
				p := catalogFixture[op%len(catalogFixture)]
				qty := quantities[i%len(quantities)]
				if op%3 == 0 {
					c.UpdateQuantity(p.ID, qty)
				} else {
					c.AddItem(p, qty)
				}

				for _, l := range c.Items() {
					if l.Quantity <= 0 || l.Quantity > MaxLineQuantity {
						return false
					}
				}
				if c.ItemCount() < 0 || !c.Total().Equal(expectedTotal(c)) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
		gen.SliceOfN(8, gen.OneGenOf(
			gen.IntRange(-3, 9),
			gen.IntRange(math.MaxInt-5, math.MaxInt),
			gen.IntRange(math.MinInt, math.MinInt+5),
			gen.Int(),
		)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// apply decodes each int into a cart operation so gopter can shrink plain ints
func apply(c *Cart, ops []int) {
	for _, op := range ops {
		p := catalogFixture[(op/5)%len(catalogFixture)]
		qty := (op/25)%9 - 3
		if op%11 == 0 {
			qty = math.MaxInt
		}
		switch op % 5 {
		case 0, 1:
			c.AddItem(p, qty)
		case 2:
			c.RemoveItem(p.ID)
		case 3:
			c.UpdateQuantity(p.ID, qty)
		case 4:
			if op%97 == 0 {
				c.Clear()
			}
		}
	}
}
