package util

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "Rp 0"},
		{"950", "Rp 950"},
		{"15000", "Rp 15.000"},
		{"1234567", "Rp 1.234.567"},
		{"1499.5", "Rp 1.499"},
		{"1499.99", "Rp 1.499"},
		{"-0.9", "Rp 0"},
		{"-25000", "-Rp 25.000"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestInitTracerWithoutExporter(t *testing.T) {
	tp, err := InitTracer("pos-service-test", "")
	require.NoError(t, err)
	defer tp.Shutdown(context.Background())

	_, span := StartSpan(context.Background(), "test")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestGetLoggerFallback(t *testing.T) {
	assert.NotNil(t, GetLogger())
	require.NoError(t, InitLogger("production"))
	assert.NotNil(t, GetLogger())
	SyncLogger()
}

func TestInitLoggerLevel(t *testing.T) {
	require.NoError(t, InitLogger("development", "warn"))
	assert.False(t, GetLogger().Core().Enabled(-1))
	assert.Error(t, InitLogger("development", "loud"))
}
