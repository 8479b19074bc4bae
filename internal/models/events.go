package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeSaleRecorded = "SALE_RECORDED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SaleRecordedEvent published after a checkout commits
type SaleRecordedEvent struct {
	BaseEvent
	SaleID   int64           `json:"sale_id"`
	SaleDate time.Time       `json:"sale_date"`
	Total    decimal.Decimal `json:"total"`
	Tendered decimal.Decimal `json:"tendered"`
	Change   decimal.Decimal `json:"change"`
	Items    []SaleItemData  `json:"items"`
}

// SaleItemData represents item data in events
type SaleItemData struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}
