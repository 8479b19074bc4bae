package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pos-service/internal/cart"
	"pos-service/internal/models"
	"pos-service/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []*models.SaleRecordedEvent
	err    error
}

func (p *recordingPublisher) PublishSaleRecorded(_ context.Context, e *models.SaleRecordedEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type fixture struct {
	store     *store.Store
	catalog   *CatalogService
	sales     *SaleService
	carts     *CartService
	reports   *ReportService
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := store.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	pub := &recordingPublisher{}
	sales := NewSaleService(s, pub)
	return &fixture{
		store:     s,
		catalog:   NewCatalogService(s),
		sales:     sales,
		carts:     NewCartService(s, cart.NewMemoryStore(), sales, cart.DefaultMaxLineQuantity),
		reports:   NewReportService(s),
		publisher: pub,
	}
}

// at pins the clock of the sale and report services.
func (f *fixture) at(t time.Time) {
	f.sales.now = func() time.Time { return t }
	f.reports.now = func() time.Time { return t }
}

func (f *fixture) product(t *testing.T, name string, price int64, stock int) *models.Product {
	t.Helper()

	p, err := f.catalog.CreateProduct(context.Background(), ProductInput{
		Name: name, Price: decimal.NewFromInt(price), Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) sell(t *testing.T, lines map[*models.Product]int) *CheckoutResult {
	t.Helper()

	c := cart.New(0)
	for p, qty := range lines {
		_, err := c.AddLine(*p, qty)
		require.NoError(t, err)
	}
	res, err := f.sales.Checkout(context.Background(), c, c.Total())
	require.NoError(t, err)
	return res
}

func money(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func isValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
