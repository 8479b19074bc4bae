package service

import (
	"context"
	"fmt"
	"strings"

	"pos-service/internal/models"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogService handles product management
type CatalogService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// ProductInput carries the editable fields of a product
type ProductInput struct {
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

func (in *ProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name", "must not be empty")
	}
	if in.Price.IsNegative() {
		return invalid("price", "must not be negative")
	}
	if in.Stock < 0 {
		return invalid("stock", "must not be negative")
	}
	return nil
}

// CreateProduct adds a product to the catalog
func (cs *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{Name: in.Name, Price: in.Price, Stock: in.Stock}
	if err := cs.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	util.CatalogChangesTotal.WithLabelValues("create").Inc()
	cs.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct replaces the editable fields of a product
func (cs *CatalogService) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{ID: id, Name: in.Name, Price: in.Price, Stock: in.Stock}
	if err := cs.store.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}

	util.CatalogChangesTotal.WithLabelValues("update").Inc()
	cs.logger.Info("Product updated", zap.Int64("product_id", id))
	return cs.store.GetProductByID(ctx, id)
}

// AdjustStock adds delta units to a product's stock
func (cs *CatalogService) AdjustStock(ctx context.Context, id int64, delta int) (*models.Product, error) {
	if delta == 0 {
		return nil, invalid("delta", "must not be zero")
	}

	product, err := cs.store.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}

	util.CatalogChangesTotal.WithLabelValues("stock").Inc()
	cs.logger.Info("Stock adjusted",
		zap.Int64("product_id", id),
		zap.Int("delta", delta),
		zap.Int("stock", product.Stock))
	return product, nil
}

// GetProduct retrieves a product by ID
func (cs *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return cs.store.GetProductByID(ctx, id)
}

// ListProducts returns the whole catalog ordered by ID
func (cs *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return cs.store.GetProducts(ctx)
}

// DeleteProduct removes a product with no sales history
func (cs *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := cs.store.DeleteProduct(ctx, id); err != nil {
		return err
	}

	util.CatalogChangesTotal.WithLabelValues("delete").Inc()
	cs.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}
