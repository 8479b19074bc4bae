package cart

import (
	"errors"
	"fmt"
	"time"

	"pos-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMaxLineQuantity bounds the quantity of a single line.
const DefaultMaxLineQuantity = 100

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrCartNotFound    = errors.New("cart not found")
)

// Line is one product entry in a cart. UnitPrice is the catalog price at the
// time the line was added.
type Line struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Cart accumulates lines for one in-progress sale.
type Cart struct {
	ID          string    `json:"id"`
	Lines       []Line    `json:"lines"`
	MaxQuantity int       `json:"max_quantity"`
	CreatedAt   time.Time `json:"created_at"`
}

// New returns an empty cart. maxQuantity <= 0 means DefaultMaxLineQuantity.
func New(maxQuantity int) *Cart {
	if maxQuantity <= 0 {
		maxQuantity = DefaultMaxLineQuantity
	}
	return &Cart{
		ID:          uuid.New().String(),
		Lines:       []Line{},
		MaxQuantity: maxQuantity,
		CreatedAt:   time.Now(),
	}
}

// AddLine appends product at its current price.
func (c *Cart) AddLine(product models.Product, quantity int) (Line, error) {
	limit := c.MaxQuantity
	if limit <= 0 {
		limit = DefaultMaxLineQuantity
	}
	if quantity < 1 || quantity > limit {
		return Line{}, fmt.Errorf("%w: %d (allowed 1-%d)", ErrInvalidQuantity, quantity, limit)
	}

	line := Line{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  quantity,
		Subtotal:  product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
	c.Lines = append(c.Lines, line)
	return line, nil
}

// RemoveLine deletes the line at index.
func (c *Cart) RemoveLine(index int) error {
	if index < 0 || index >= len(c.Lines) {
		return fmt.Errorf("%w: index %d of %d", ErrLineNotFound, index, len(c.Lines))
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = []Line{}
}

// Total is the sum of line subtotals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal)
	}
	return total
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.Lines)
}

// Quantity returns the number of units across all lines.
func (c *Cart) Quantity() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// QuantityOf returns the units of productID across all lines.
func (c *Cart) QuantityOf(productID int64) int {
	n := 0
	for _, l := range c.Lines {
		if l.ProductID == productID {
			n += l.Quantity
		}
	}
	return n
}

// SaleItems converts the lines into unsaved sale items.
func (c *Cart) SaleItems() []models.SaleItem {
	items := make([]models.SaleItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, models.SaleItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice,
		})
	}
	return items
}
