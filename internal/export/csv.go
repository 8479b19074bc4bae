package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"pos-service/internal/models"

	"github.com/shopspring/decimal"
)

const totalLabel = "TOTAL"

var (
	productsHeader = []string{"ID", "Name", "Price", "Stock"}
	reportHeader   = []string{"Product", "Price", "Qty", "Subtotal"}
)

// ErrMalformedReport is returned when a monthly report CSV cannot be parsed
// or its TOTAL line disagrees with the rows.
var ErrMalformedReport = errors.New("malformed report csv")

// WriteProductsCSV writes the catalog as ID,Name,Price,Stock.
func WriteProductsCSV(w io.Writer, products []models.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(productsHeader); err != nil {
		return err
	}
	for _, p := range products {
		record := []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.Price.String(),
			strconv.Itoa(p.Stock),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMonthlyReportCSV writes one line per report row followed by
// TOTAL,,<qty>,<revenue>.
func WriteMonthlyReportCSV(w io.Writer, report *models.SalesReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	for _, row := range report.Rows {
		record := []string{
			row.ProductName,
			row.UnitPrice.String(),
			strconv.Itoa(row.Quantity),
			row.Subtotal.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	total := []string{totalLabel, "", strconv.Itoa(report.TotalQuantity), report.TotalRevenue.String()}
	if err := cw.Write(total); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// ReportLine is one parsed row of a monthly report CSV.
type ReportLine struct {
	Product  string
	Price    decimal.Decimal
	Quantity int
	Subtotal decimal.Decimal
}

// ParsedReport is the content of a monthly report CSV.
type ParsedReport struct {
	Lines         []ReportLine
	TotalQuantity int
	TotalRevenue  decimal.Decimal
}

// ParseMonthlyReportCSV reads what WriteMonthlyReportCSV wrote and checks the
// TOTAL line against the rows.
func ParseMonthlyReportCSV(r io.Reader) (*ParsedReport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(reportHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: missing header or TOTAL line", ErrMalformedReport)
	}
	for i, h := range reportHeader {
		if records[0][i] != h {
			return nil, fmt.Errorf("%w: unexpected header %q", ErrMalformedReport, records[0][i])
		}
	}

	parsed := &ParsedReport{Lines: []ReportLine{}, TotalRevenue: decimal.Zero}
	sumQty := 0
	sumRevenue := decimal.Zero

	body := records[1 : len(records)-1]
	for i, rec := range body {
		line, err := parseReportLine(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedReport, i+2, err)
		}
		sumQty += line.Quantity
		sumRevenue = sumRevenue.Add(line.Subtotal)
		parsed.Lines = append(parsed.Lines, line)
	}

	last := records[len(records)-1]
	if last[0] != totalLabel {
		return nil, fmt.Errorf("%w: last line is not %s", ErrMalformedReport, totalLabel)
	}
	if parsed.TotalQuantity, err = strconv.Atoi(last[2]); err != nil {
		return nil, fmt.Errorf("%w: total qty: %v", ErrMalformedReport, err)
	}
	if parsed.TotalRevenue, err = decimal.NewFromString(last[3]); err != nil {
		return nil, fmt.Errorf("%w: total revenue: %v", ErrMalformedReport, err)
	}

	if parsed.TotalQuantity != sumQty || !parsed.TotalRevenue.Equal(sumRevenue) {
		return nil, fmt.Errorf("%w: TOTAL %d/%s does not match rows %d/%s", ErrMalformedReport,
			parsed.TotalQuantity, parsed.TotalRevenue, sumQty, sumRevenue)
	}
	return parsed, nil
}

func parseReportLine(rec []string) (ReportLine, error) {
	price, err := decimal.NewFromString(rec[1])
	if err != nil {
		return ReportLine{}, fmt.Errorf("price: %w", err)
	}
	qty, err := strconv.Atoi(rec[2])
	if err != nil {
		return ReportLine{}, fmt.Errorf("qty: %w", err)
	}
	subtotal, err := decimal.NewFromString(rec[3])
	if err != nil {
		return ReportLine{}, fmt.Errorf("subtotal: %w", err)
	}
	return ReportLine{Product: rec[0], Price: price, Quantity: qty, Subtotal: subtotal}, nil
}
