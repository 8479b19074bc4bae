package service

import (
	"context"
	"testing"
	"time"

	"pos-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localTime(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, time.Local)
}

func TestDashboardRevenueToday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 1500, 100)
	b := f.product(t, "B", 12000, 100)
	f.product(t, "C", 500, 0)

	f.at(localTime(2025, 6, 14, 23, 59, 59))
	f.sell(t, map[*models.Product]int{a: 10})

	f.at(localTime(2025, 6, 15, 0, 0, 0))
	f.sell(t, map[*models.Product]int{a: 2, b: 1})
	f.at(localTime(2025, 6, 15, 13, 30, 0))
	f.sell(t, map[*models.Product]int{b: 1})

	f.at(localTime(2025, 6, 16, 0, 0, 0))
	f.sell(t, map[*models.Product]int{b: 5})

	f.at(localTime(2025, 6, 15, 18, 0, 0))
	stats, err := f.reports.DashboardSnapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.ProductCount)
	assert.Equal(t, 2, stats.SaleCountToday)
	assert.True(t, money(27000).Equal(stats.RevenueToday), "got %s", stats.RevenueToday)
	assert.True(t, stats.RevenueToday.Equal(stats.RecordedTotalToday))
}

func TestDashboardRevenueIndependentOfSaleCount(t *testing.T) {
	now := localTime(2025, 6, 15, 12, 0, 0)

	single := newFixture(t)
	a := single.product(t, "A", 1500, 100)
	b := single.product(t, "B", 12000, 100)
	single.at(now)
	single.sell(t, map[*models.Product]int{a: 2, b: 1})

	split := newFixture(t)
	a2 := split.product(t, "A", 1500, 100)
	b2 := split.product(t, "B", 12000, 100)
	split.at(now)
	split.sell(t, map[*models.Product]int{a2: 1})
	split.sell(t, map[*models.Product]int{a2: 1})
	split.sell(t, map[*models.Product]int{b2: 1})

	s1, err := single.reports.DashboardSnapshot(context.Background())
	require.NoError(t, err)
	s2, err := split.reports.DashboardSnapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, s1.SaleCountToday)
	assert.Equal(t, 3, s2.SaleCountToday)
	assert.True(t, s1.RevenueToday.Equal(s2.RevenueToday))
	assert.True(t, money(15000).Equal(s1.RevenueToday))
}

func TestMonthlyReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 1500, 100)
	b := f.product(t, "B", 12000, 100)

	f.at(localTime(2025, 6, 15, 10, 0, 0))
	c := f.sell(t, map[*models.Product]int{a: 2, b: 1})
	require.True(t, money(15000).Equal(c.Sale.Total))

	f.at(localTime(2025, 7, 1, 0, 0, 0))
	f.sell(t, map[*models.Product]int{a: 1})
	f.at(localTime(2025, 5, 31, 23, 59, 59))
	f.sell(t, map[*models.Product]int{a: 1})

	report, err := f.reports.MonthlyReport(ctx, 2025, 6)
	require.NoError(t, err)

	require.Len(t, report.Rows, 2)
	assert.True(t, money(15000).Equal(report.TotalRevenue))
	assert.Equal(t, 3, report.TotalQuantity)

	last := report.Rows[len(report.Rows)-1]
	assert.True(t, report.TotalRevenue.Equal(last.RunningRevenue))
	assert.Equal(t, 3, last.RunningQuantity)
	for _, row := range report.Rows {
		assert.Equal(t, c.Sale.ID, row.SaleID)
		assert.True(t, row.UnitPrice.Mul(money(int64(row.Quantity))).Equal(row.Subtotal))
	}

	empty, err := f.reports.MonthlyReport(ctx, 2024, 1)
	require.NoError(t, err)
	assert.Empty(t, empty.Rows)
	assert.True(t, empty.TotalRevenue.IsZero())

	_, err = f.reports.MonthlyReport(ctx, 2025, 13)
	assert.True(t, isValidation(err))
}

func TestDailyReport(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 1500, 100)

	f.at(localTime(2025, 6, 15, 8, 0, 0))
	f.sell(t, map[*models.Product]int{a: 1})
	f.at(localTime(2025, 6, 16, 8, 0, 0))
	f.sell(t, map[*models.Product]int{a: 4})

	report, err := f.reports.DailyReport(context.Background(), localTime(2025, 6, 16, 21, 0, 0))
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, 4, report.TotalQuantity)
	assert.True(t, money(6000).Equal(report.TotalRevenue))
}

func TestRevenueByMonthFillsGaps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 1500, 100)
	b := f.product(t, "B", 12000, 100)

	f.at(localTime(2025, 3, 31, 23, 0, 0))
	f.sell(t, map[*models.Product]int{b: 1})
	f.at(localTime(2025, 4, 10, 12, 0, 0))
	f.sell(t, map[*models.Product]int{a: 2})
	f.at(localTime(2025, 6, 1, 0, 0, 0))
	f.sell(t, map[*models.Product]int{b: 1})
	f.at(localTime(2025, 6, 19, 9, 0, 0))
	f.sell(t, map[*models.Product]int{a: 1})

	f.at(localTime(2025, 6, 20, 12, 0, 0))
	buckets, err := f.reports.RevenueByMonth(ctx, 3)
	require.NoError(t, err)

	require.Len(t, buckets, 3)
	assert.Equal(t, []string{"2025-04", "2025-05", "2025-06"},
		[]string{buckets[0].Label, buckets[1].Label, buckets[2].Label})
	assert.True(t, money(3000).Equal(buckets[0].Revenue))
	assert.True(t, buckets[1].Revenue.IsZero())
	assert.True(t, money(13500).Equal(buckets[2].Revenue))

	_, err = f.reports.RevenueByMonth(ctx, 0)
	assert.True(t, isValidation(err))
}

func TestRevenueByMonthAcrossYearBoundary(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 1500, 100)

	f.at(localTime(2025, 11, 30, 20, 0, 0))
	f.sell(t, map[*models.Product]int{a: 1})

	f.at(localTime(2026, 1, 5, 9, 0, 0))
	buckets, err := f.reports.RevenueByMonth(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, buckets, 3)
	assert.Equal(t, 2025, buckets[0].Year)
	assert.Equal(t, time.November, buckets[0].Month)
	assert.True(t, money(1500).Equal(buckets[0].Revenue))
	assert.Equal(t, "2026-01", buckets[2].Label)
	assert.True(t, buckets[2].Revenue.IsZero())
}

func TestReportsKeepFractionalPricesExact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tenth, err := f.catalog.CreateProduct(ctx, ProductInput{Name: "Permen", Price: decimal.RequireFromString("0.1"), Stock: 10})
	require.NoError(t, err)
	onePointOne, err := f.catalog.CreateProduct(ctx, ProductInput{Name: "Gula", Price: decimal.RequireFromString("1.10"), Stock: 10})
	require.NoError(t, err)

	f.at(localTime(2025, 6, 15, 10, 0, 0))
	c := f.sell(t, map[*models.Product]int{tenth: 3, onePointOne: 3})
	require.Equal(t, "3.6", c.Sale.Total.String())

	stats, err := f.reports.DashboardSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3.6", stats.RevenueToday.String())
	assert.True(t, stats.RevenueToday.Equal(stats.RecordedTotalToday))

	report, err := f.reports.MonthlyReport(ctx, 2025, 6)
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)
	subtotals := []string{report.Rows[0].Subtotal.String(), report.Rows[1].Subtotal.String()}
	assert.ElementsMatch(t, []string{"0.3", "3.3"}, subtotals)
	assert.Equal(t, "3.6", report.TotalRevenue.String())
	assert.True(t, c.Sale.Total.Equal(report.TotalRevenue))

	buckets, err := f.reports.RevenueByMonth(ctx, 3)
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	assert.Equal(t, "3.6", buckets[2].Revenue.String())
}
