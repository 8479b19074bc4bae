package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Stock     int             `db:"stock" json:"stock"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Sale is one completed checkout
type Sale struct {
	ID       int64           `db:"id" json:"id"`
	SaleDate time.Time       `db:"sale_date" json:"sale_date"`
	Total    decimal.Decimal `db:"total" json:"total"`
}

// SaleItem is one line of a sale. Price is the unit price at the time of sale.
type SaleItem struct {
	ID        int64           `db:"id" json:"id"`
	SaleID    int64           `db:"sale_id" json:"sale_id"`
	ProductID int64           `db:"product_id" json:"product_id"`
	Quantity  int             `db:"qty" json:"qty"`
	Price     decimal.Decimal `db:"price" json:"price"`
}

// Subtotal returns qty * price
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SaleDetail is a sale together with its items and product names
type SaleDetail struct {
	Sale  Sale             `json:"sale"`
	Items []SaleItemDetail `json:"items"`
}

// SaleItemDetail is a sale item joined with the product name
type SaleItemDetail struct {
	SaleItem
	ProductName string `db:"product_name" json:"product_name"`
}

// DashboardStats holds the dashboard aggregates for one day
type DashboardStats struct {
	ProductCount       int             `db:"product_count" json:"product_count"`
	SaleCountToday     int             `db:"sale_count" json:"sale_count_today"`
	RevenueToday       decimal.Decimal `db:"revenue" json:"revenue_today"`
	RecordedTotalToday decimal.Decimal `db:"recorded_total" json:"recorded_total_today"`
}

// ReportRow is one sale item in a period report
type ReportRow struct {
	SaleID          int64           `db:"sale_id" json:"sale_id"`
	SaleDate        time.Time       `db:"sale_date" json:"sale_date"`
	ProductID       int64           `db:"product_id" json:"product_id"`
	ProductName     string          `db:"product_name" json:"product_name"`
	UnitPrice       decimal.Decimal `db:"price" json:"unit_price"`
	Quantity        int             `db:"qty" json:"qty"`
	Subtotal        decimal.Decimal `db:"-" json:"subtotal"`
	RunningRevenue  decimal.Decimal `db:"-" json:"running_revenue"`
	RunningQuantity int             `db:"-" json:"running_qty"`
}

// SalesReport covers all sale items in a period
type SalesReport struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Rows          []ReportRow     `json:"rows"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalQuantity int             `json:"total_qty"`
}

// SaleRevenue is the line-item revenue of a single sale
type SaleRevenue struct {
	SaleID   int64           `db:"sale_id"`
	SaleDate time.Time       `db:"sale_date"`
	Revenue  decimal.Decimal `db:"revenue"`
}

// MonthRevenue is one calendar-month bucket of a revenue trend
type MonthRevenue struct {
	Year    int             `json:"year"`
	Month   time.Month      `json:"month"`
	Label   string          `json:"label"`
	Revenue decimal.Decimal `json:"revenue"`
}
