package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/util"

	"github.com/shopspring/decimal"
)

// ReceiptWidth is the column width of a rendered receipt.
const ReceiptWidth = 40

// Receipt holds what is printed for one sale. A zero Tendered omits the
// tendered and change lines.
type Receipt struct {
	StoreName string
	Sale      models.Sale
	Items     []models.SaleItemDetail
	Tendered  decimal.Decimal
	Change    decimal.Decimal
}

// RenderReceipt writes r as fixed-width plain text. The sale time is printed
// in the host zone.
func RenderReceipt(w io.Writer, r Receipt) error {
	var b strings.Builder
	rule := strings.Repeat("-", ReceiptWidth)

	b.WriteString(center(r.StoreName))
	b.WriteString(spread(fmt.Sprintf("Sale #%d", r.Sale.ID), r.Sale.SaleDate.In(time.Local).Format("2006-01-02 15:04:05")))
	b.WriteString(rule + "\n")

	for _, item := range r.Items {
		name := item.ProductName
		if name == "" {
			name = fmt.Sprintf("Product #%d", item.ProductID)
		}
		b.WriteString(truncate(name) + "\n")
		b.WriteString(spread(
			fmt.Sprintf("  %d x %s", item.Quantity, util.FormatCurrency(item.Price)),
			util.FormatCurrency(item.Subtotal()),
		))
	}

	b.WriteString(rule + "\n")
	b.WriteString(spread("TOTAL", util.FormatCurrency(r.Sale.Total)))
	if !r.Tendered.IsZero() {
		b.WriteString(spread("TENDERED", util.FormatCurrency(r.Tendered)))
		b.WriteString(spread("CHANGE", util.FormatCurrency(r.Change)))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// ReceiptFromEvent builds a receipt from a SaleRecorded event.
func ReceiptFromEvent(storeName string, e *models.SaleRecordedEvent) Receipt {
	items := make([]models.SaleItemDetail, len(e.Items))
	for i, it := range e.Items {
		items[i] = models.SaleItemDetail{
			SaleItem: models.SaleItem{
				SaleID:    e.SaleID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.UnitPrice,
			},
			ProductName: it.ProductName,
		}
	}
	return Receipt{
		StoreName: storeName,
		Sale:      models.Sale{ID: e.SaleID, SaleDate: e.SaleDate, Total: e.Total},
		Items:     items,
		Tendered:  e.Tendered,
		Change:    e.Change,
	}
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) > ReceiptWidth {
		return string(r[:ReceiptWidth])
	}
	return s
}

func center(s string) string {
	s = truncate(s)
	pad := (ReceiptWidth - len([]rune(s))) / 2
	return strings.Repeat(" ", pad) + s + "\n"
}

// spread puts left and right on one line, right-aligned to the width.
func spread(left, right string) string {
	gap := ReceiptWidth - len([]rune(left)) - len([]rune(right))
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right + "\n"
}
