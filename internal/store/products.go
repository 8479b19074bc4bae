package store

import (
	"context"
	"fmt"
	"time"

	"pos-service/internal/models"
)

// CreateProduct inserts a product and fills in its ID
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	product.CreatedAt = product.CreatedAt.In(s.loc).Truncate(time.Second)

	query := s.q(`
		INSERT INTO products (name, price, stock, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`)

	return s.db.GetContext(ctx, &product.ID, query,
		product.Name, product.Price, product.Stock, s.ts(product.CreatedAt))
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		s.q("SELECT id, name, price, stock, created_at FROM products WHERE id = ?"), id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return &product, nil
}

// GetProducts retrieves all products
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products,
		"SELECT id, name, price, stock, created_at FROM products ORDER BY id")
	return products, err
}

// CountProducts returns the number of catalog entries
func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM products")
	return n, err
}

// UpdateProduct overwrites name, price and stock
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	res, err := s.db.ExecContext(ctx,
		s.q("UPDATE products SET name = ?, price = ?, stock = ? WHERE id = ?"),
		product.Name, product.Price, product.Stock, product.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return expectAffected(res, "product", product.ID)
}

// AdjustStock adds delta (which may be negative) to a product's stock.
func (s *Store) AdjustStock(ctx context.Context, productID int64, delta int) (*models.Product, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		s.q("UPDATE products SET stock = stock + ? WHERE id = ? AND stock + ? >= 0"),
		delta, productID, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	var product models.Product
	if err := tx.GetContext(ctx, &product,
		s.q("SELECT id, name, price, stock, created_at FROM products WHERE id = ?"), productID); err != nil {
		return nil, notFound(err, "product", productID)
	}

	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, fmt.Errorf("product %d has %d in stock, cannot adjust by %d: %w",
			productID, product.Stock, delta, ErrInsufficientStock)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a product. Products referenced by sale items are kept
// so historical reports stay intact.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var refs int
	if err := tx.GetContext(ctx, &refs,
		s.q("SELECT COUNT(*) FROM sales_items WHERE product_id = ?"), id); err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("product %d is referenced by %d sale items: %w", id, refs, ErrProductInUse)
	}

	res, err := tx.ExecContext(ctx, s.q("DELETE FROM products WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if err := expectAffected(res, "product", id); err != nil {
		return err
	}

	return tx.Commit()
}
