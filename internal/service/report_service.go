package service

import (
	"context"
	"fmt"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/store"
	"pos-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxTrendMonths bounds RevenueByMonth.
const MaxTrendMonths = 120

// ReportService computes dashboard and period reports. Nothing is cached;
// every call queries the store.
type ReportService struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
	loc    *time.Location
}

// NewReportService creates a new report service
func NewReportService(store *store.Store) *ReportService {
	return &ReportService{
		store:  store,
		logger: util.GetLogger(),
		now:    time.Now,
		loc:    store.Location(),
	}
}

func (rs *ReportService) dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(rs.loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, rs.loc)
	return start, start.AddDate(0, 0, 1)
}

func monthStart(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, loc)
}

// DashboardSnapshot summarizes the current local day
func (rs *ReportService) DashboardSnapshot(ctx context.Context) (*models.DashboardStats, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.DashboardSnapshot")
	defer span.End()

	count, err := rs.store.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	from, to := rs.dayBounds(rs.now())
	summary, err := rs.store.SummarizePeriod(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize today: %w", err)
	}

	if !summary.Revenue.Equal(summary.RecordedTotal) {
		rs.logger.Warn("Sale totals differ from line items",
			zap.String("revenue", summary.Revenue.String()),
			zap.String("recorded_total", summary.RecordedTotal.String()))
	}

	return &models.DashboardStats{
		ProductCount:       count,
		SaleCountToday:     summary.SaleCount,
		RevenueToday:       summary.Revenue,
		RecordedTotalToday: summary.RecordedTotal,
	}, nil
}

// DailyReport lists the sale items of the local day containing day
func (rs *ReportService) DailyReport(ctx context.Context, day time.Time) (*models.SalesReport, error) {
	from, to := rs.dayBounds(day)
	return rs.periodReport(ctx, from, to)
}

// MonthlyReport lists the sale items of a calendar month with running totals
func (rs *ReportService) MonthlyReport(ctx context.Context, year, month int) (*models.SalesReport, error) {
	if month < 1 || month > 12 {
		return nil, invalid("month", "must be between 1 and 12, got %d", month)
	}
	if year < 1 || year > 9999 {
		return nil, invalid("year", "out of range: %d", year)
	}

	from := monthStart(year, time.Month(month), rs.loc)
	return rs.periodReport(ctx, from, from.AddDate(0, 1, 0))
}

func (rs *ReportService) periodReport(ctx context.Context, from, to time.Time) (*models.SalesReport, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.periodReport")
	defer span.End()

	rows, err := rs.store.ReportRows(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load report rows: %w", err)
	}

	report := &models.SalesReport{
		From:         from,
		To:           to,
		Rows:         rows,
		TotalRevenue: decimal.Zero,
	}
	for i := range report.Rows {
		row := &report.Rows[i]
		report.TotalRevenue = report.TotalRevenue.Add(row.Subtotal)
		report.TotalQuantity += row.Quantity
		row.RunningRevenue = report.TotalRevenue
		row.RunningQuantity = report.TotalQuantity
	}

	return report, nil
}

// RevenueByMonth buckets line-item revenue by calendar month for the current
// month and the n-1 months before it, oldest first. Months without sales
// are present with zero revenue.
func (rs *ReportService) RevenueByMonth(ctx context.Context, n int) ([]models.MonthRevenue, error) {
	ctx, span := util.StartSpan(ctx, "ReportService.RevenueByMonth")
	defer span.End()

	if n < 1 || n > MaxTrendMonths {
		return nil, invalid("months", "must be between 1 and %d, got %d", MaxTrendMonths, n)
	}

	now := rs.now().In(rs.loc)
	from := monthStart(now.Year(), now.Month()-time.Month(n-1), rs.loc)
	to := monthStart(now.Year(), now.Month()+1, rs.loc)

	buckets := make([]models.MonthRevenue, n)
	for i := range buckets {
		m := from.AddDate(0, i, 0)
		buckets[i] = models.MonthRevenue{
			Year:    m.Year(),
			Month:   m.Month(),
			Label:   m.Format("2006-01"),
			Revenue: decimal.Zero,
		}
	}

	revenues, err := rs.store.SaleRevenues(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load revenue: %w", err)
	}

	for _, r := range revenues {
		d := r.SaleDate.In(rs.loc)
		i := (d.Year()-from.Year())*12 + int(d.Month()-from.Month())
		if i < 0 || i >= n {
			continue
		}
		buckets[i].Revenue = buckets[i].Revenue.Add(r.Revenue)
	}

	return buckets, nil
}
