package store

import (
	"context"
	"time"

	"pos-service/internal/models"

	"github.com/shopspring/decimal"
)

// PeriodSummary aggregates the sales recorded in [from, to)
type PeriodSummary struct {
	SaleCount     int
	Revenue       decimal.Decimal
	RecordedTotal decimal.Decimal
}

type saleTotal struct {
	ID    int64           `db:"id"`
	Total decimal.Decimal `db:"total"`
}

type itemAmount struct {
	SaleID   int64           `db:"sale_id"`
	SaleDate time.Time       `db:"sale_date"`
	Quantity int             `db:"qty"`
	Price    decimal.Decimal `db:"price"`
}

func (a itemAmount) subtotal() decimal.Decimal {
	return a.Price.Mul(decimal.NewFromInt(int64(a.Quantity)))
}

// Amounts are summed in Go with decimal arithmetic; SQL SUM over money
// columns would go through floating point in SQLite.

func (s *Store) itemAmounts(ctx context.Context, from, to time.Time) ([]itemAmount, error) {
	items := []itemAmount{}
	err := s.db.SelectContext(ctx, &items, s.q(`
		SELECT s.id AS sale_id, s.sale_date, si.qty, si.price
		FROM sales s
		JOIN sales_items si ON si.sale_id = s.id
		WHERE s.sale_date >= ? AND s.sale_date < ?
		ORDER BY s.sale_date, s.id, si.id`), s.ts(from), s.ts(to))
	return items, err
}

// SummarizePeriod counts sales in [from, to) and sums their revenue two ways:
// Revenue from the line items and RecordedTotal from the stored sale totals.
func (s *Store) SummarizePeriod(ctx context.Context, from, to time.Time) (*PeriodSummary, error) {
	sales := []saleTotal{}
	err := s.db.SelectContext(ctx, &sales, s.q(`
		SELECT id, total
		FROM sales
		WHERE sale_date >= ? AND sale_date < ?`), s.ts(from), s.ts(to))
	if err != nil {
		return nil, err
	}

	items, err := s.itemAmounts(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := &PeriodSummary{
		SaleCount:     len(sales),
		Revenue:       decimal.Zero,
		RecordedTotal: decimal.Zero,
	}
	for _, sale := range sales {
		summary.RecordedTotal = summary.RecordedTotal.Add(sale.Total)
	}
	for _, item := range items {
		summary.Revenue = summary.Revenue.Add(item.subtotal())
	}
	return summary, nil
}

// ReportRows returns every sale item of the sales in [from, to), oldest first.
func (s *Store) ReportRows(ctx context.Context, from, to time.Time) ([]models.ReportRow, error) {
	rows := []models.ReportRow{}
	err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT s.id AS sale_id, s.sale_date, si.product_id,
		       COALESCE(p.name, '') AS product_name,
		       si.price, si.qty
		FROM sales s
		JOIN sales_items si ON si.sale_id = s.id
		LEFT JOIN products p ON p.id = si.product_id
		WHERE s.sale_date >= ? AND s.sale_date < ?
		ORDER BY s.sale_date, s.id, si.id`), s.ts(from), s.ts(to))
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].Subtotal = rows[i].UnitPrice.Mul(decimal.NewFromInt(int64(rows[i].Quantity)))
	}
	return rows, nil
}

// SaleRevenues returns the line-item revenue of each sale in [from, to),
// oldest first.
func (s *Store) SaleRevenues(ctx context.Context, from, to time.Time) ([]models.SaleRevenue, error) {
	items, err := s.itemAmounts(ctx, from, to)
	if err != nil {
		return nil, err
	}

	revenues := []models.SaleRevenue{}
	for _, item := range items {
		n := len(revenues)
		if n == 0 || revenues[n-1].SaleID != item.SaleID {
			revenues = append(revenues, models.SaleRevenue{
				SaleID:   item.SaleID,
				SaleDate: item.SaleDate,
				Revenue:  decimal.Zero,
			})
			n++
		}
		revenues[n-1].Revenue = revenues[n-1].Revenue.Add(item.subtotal())
	}
	return revenues, nil
}
