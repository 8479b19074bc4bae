package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pos-service/internal/broker"
	"pos-service/internal/cart"
	"pos-service/internal/models"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// SaleService records checkouts
type SaleService struct {
	store     *store.Store
	publisher broker.SalePublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewSaleService creates a new sale service. A nil publisher drops events.
func NewSaleService(store *store.Store, publisher broker.SalePublisher) *SaleService {
	if publisher == nil {
		publisher = broker.NoopPublisher{}
	}
	return &SaleService{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
		now:       time.Now,
	}
}

// CheckoutResult is what a receipt needs to know about a checkout
type CheckoutResult struct {
	Sale     models.Sale             `json:"sale"`
	Items    []models.SaleItemDetail `json:"items"`
	Tendered decimal.Decimal         `json:"tendered"`
	Change   decimal.Decimal         `json:"change"`
}

// Checkout persists the cart as a sale and decrements stock, atomically.
// Nothing is written when the cart is empty, the payment is short, or any
// product lacks stock.
func (s *SaleService) Checkout(ctx context.Context, c *cart.Cart, tendered decimal.Decimal) (*CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "SaleService.Checkout")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	if c == nil || c.Len() == 0 {
		util.CheckoutsFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	total := c.Total()
	if tendered.LessThan(total) {
		util.CheckoutsFailedTotal.WithLabelValues("insufficient_payment").Inc()
		return nil, fmt.Errorf("%w: tendered %s, total %s", ErrInsufficientPayment, tendered, total)
	}
	change := tendered.Sub(total)

	sale := &models.Sale{SaleDate: s.now(), Total: total}
	items := c.SaleItems()

	if err := s.store.RecordSale(ctx, sale, items); err != nil {
		reason := "db_error"
		if errors.Is(err, store.ErrInsufficientStock) {
			reason = "insufficient_stock"
		} else if errors.Is(err, store.ErrNotFound) {
			reason = "unknown_product"
		}
		util.CheckoutsFailedTotal.WithLabelValues(reason).Inc()
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	details := make([]models.SaleItemDetail, len(items))
	units := 0
	for i, item := range items {
		details[i] = models.SaleItemDetail{SaleItem: item, ProductName: c.Lines[i].Name}
		units += item.Quantity
	}

	util.SalesRecordedTotal.Inc()
	util.SaleItemsRecordedTotal.Add(float64(units))
	util.SalesRevenueTotal.Add(total.InexactFloat64())

	s.logger.Info("Sale recorded",
		zap.Int64("sale_id", sale.ID),
		zap.String("total", total.String()),
		zap.String("change", change.String()),
		zap.Int("lines", len(items)))

	result := &CheckoutResult{
		Sale:     *sale,
		Items:    details,
		Tendered: tendered,
		Change:   change,
	}
	s.publishSaleRecorded(ctx, result)

	return result, nil
}

// publishSaleRecorded is best effort: the sale is already committed.
func (s *SaleService) publishSaleRecorded(ctx context.Context, result *CheckoutResult) {
	items := make([]models.SaleItemData, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, models.SaleItemData{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
		})
	}

	event := &models.SaleRecordedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeSaleRecorded,
			Timestamp: s.now(),
		},
		SaleID:   result.Sale.ID,
		SaleDate: result.Sale.SaleDate,
		Total:    result.Sale.Total,
		Tendered: result.Tendered,
		Change:   result.Change,
		Items:    items,
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.publisher.PublishSaleRecorded(ctx, event); err != nil {
		s.logger.Error("Failed to publish SaleRecorded event",
			zap.Int64("sale_id", result.Sale.ID),
			zap.Error(err))
	}
}

// GetSale retrieves a sale with its items
func (s *SaleService) GetSale(ctx context.Context, id int64) (*models.SaleDetail, error) {
	sale, err := s.store.GetSaleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.store.GetSaleItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale items: %w", err)
	}

	return &models.SaleDetail{Sale: *sale, Items: items}, nil
}
