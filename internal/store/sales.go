package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pos-service/internal/models"
)

// RecordSale inserts the sale header and its items and decrements stock for
// every item, all in one transaction. If any product lacks stock nothing is
// written. On success sale.ID and the item IDs are filled in.
func (s *Store) RecordSale(ctx context.Context, sale *models.Sale, items []models.SaleItem) error {
	sale.SaleDate = sale.SaleDate.In(s.loc).Truncate(time.Second)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin sale transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, &sale.ID,
		s.q("INSERT INTO sales (sale_date, total) VALUES (?, ?) RETURNING id"),
		s.ts(sale.SaleDate), sale.Total)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	insertItem := s.q(`
		INSERT INTO sales_items (sale_id, product_id, qty, price)
		VALUES (?, ?, ?, ?)
		RETURNING id`)
	decrement := s.q("UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?")

	for i := range items {
		item := &items[i]
		item.SaleID = sale.ID

		res, err := tx.ExecContext(ctx, decrement, item.Quantity, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock for product %d: %w", item.ProductID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var stock int
			err := tx.GetContext(ctx, &stock, s.q("SELECT stock FROM products WHERE id = ?"), item.ProductID)
			if err != nil {
				return notFound(err, "product", item.ProductID)
			}
			return fmt.Errorf("product %d: available=%d, requested=%d: %w",
				item.ProductID, stock, item.Quantity, ErrInsufficientStock)
		}

		if err := tx.GetContext(ctx, &item.ID, insertItem,
			item.SaleID, item.ProductID, item.Quantity, item.Price); err != nil {
			return fmt.Errorf("failed to insert sale item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sale: %w", err)
	}
	return nil
}

// GetSaleByID retrieves a sale header
func (s *Store) GetSaleByID(ctx context.Context, id int64) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.GetContext(ctx, &sale,
		s.q("SELECT id, sale_date, total FROM sales WHERE id = ?"), id)
	if err != nil {
		return nil, notFound(err, "sale", id)
	}
	return &sale, nil
}

// GetSaleItems retrieves the items of a sale with their product names
func (s *Store) GetSaleItems(ctx context.Context, saleID int64) ([]models.SaleItemDetail, error) {
	items := []models.SaleItemDetail{}
	err := s.db.SelectContext(ctx, &items, s.q(`
		SELECT si.id, si.sale_id, si.product_id, si.qty, si.price,
		       COALESCE(p.name, '') AS product_name
		FROM sales_items si
		LEFT JOIN products p ON p.id = si.product_id
		WHERE si.sale_id = ?
		ORDER BY si.id`), saleID)
	return items, err
}

// CountSales returns the total number of recorded sales
func (s *Store) CountSales(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM sales")
	return n, err
}

func expectAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}
