package service

import (
	"context"
	"fmt"
	"sync"

	"pos-service/internal/cart"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartService keeps carts between requests and snapshots catalog prices
// into them
type CartService struct {
	store       *store.Store
	carts       cart.Store
	sales       *SaleService
	maxQuantity int
	logger      *zap.Logger

	// serializes load-modify-save of carts
	mu sync.Mutex
}

// NewCartService creates a new cart service
func NewCartService(store *store.Store, carts cart.Store, sales *SaleService, maxQuantity int) *CartService {
	return &CartService{
		store:       store,
		carts:       carts,
		sales:       sales,
		maxQuantity: maxQuantity,
		logger:      util.GetLogger(),
	}
}

// CreateCart starts an empty cart
func (cs *CartService) CreateCart(ctx context.Context) (*cart.Cart, error) {
	c := cart.New(cs.maxQuantity)
	if err := cs.carts.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return c, nil
}

// GetCart loads a cart
func (cs *CartService) GetCart(ctx context.Context, id string) (*cart.Cart, error) {
	return cs.carts.Get(ctx, id)
}

// AddItem appends quantity units of a product at its current catalog price.
// The cart may not hold more units of a product than are in stock.
func (cs *CartService) AddItem(ctx context.Context, cartID string, productID int64, quantity int) (*cart.Cart, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	c, err := cs.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	product, err := cs.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if inCart := c.QuantityOf(productID); inCart+quantity > product.Stock {
		return nil, fmt.Errorf("product %d: available=%d, in cart=%d, requested=%d: %w",
			productID, product.Stock, inCart, quantity, store.ErrInsufficientStock)
	}

	if _, err := c.AddLine(*product, quantity); err != nil {
		return nil, err
	}

	if err := cs.carts.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return c, nil
}

// RemoveItem deletes the line at index
func (cs *CartService) RemoveItem(ctx context.Context, cartID string, index int) (*cart.Cart, error) {
	return cs.update(ctx, cartID, func(c *cart.Cart) error {
		return c.RemoveLine(index)
	})
}

// ClearCart removes all lines but keeps the cart
func (cs *CartService) ClearCart(ctx context.Context, cartID string) (*cart.Cart, error) {
	return cs.update(ctx, cartID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

// DiscardCart deletes the cart
func (cs *CartService) DiscardCart(ctx context.Context, cartID string) error {
	return cs.carts.Delete(ctx, cartID)
}

// CheckoutCart records the cart as a sale and deletes it. On failure the
// cart is left untouched so the cashier can fix it and retry.
func (cs *CartService) CheckoutCart(ctx context.Context, cartID string, tendered decimal.Decimal) (*CheckoutResult, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	c, err := cs.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	result, err := cs.sales.Checkout(ctx, c, tendered)
	if err != nil {
		return nil, err
	}

	if err := cs.carts.Delete(ctx, cartID); err != nil {
		cs.logger.Warn("Failed to delete checked out cart",
			zap.String("cart_id", cartID),
			zap.Int64("sale_id", result.Sale.ID),
			zap.Error(err))
	}
	return result, nil
}

func (cs *CartService) update(ctx context.Context, cartID string, fn func(*cart.Cart) error) (*cart.Cart, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	c, err := cs.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := cs.carts.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return c, nil
}
