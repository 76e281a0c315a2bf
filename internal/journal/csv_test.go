package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeforge/internal/domain"
)

func TestTradeCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")

	trades := []domain.TradeRecord{
		{
			Timestamp: time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC),
			Ticker:    "AAPL",
			AssetType: domain.AssetStock,
			Side:      domain.Buy,
			Quantity:  decimal.RequireFromString("10"),
			Price:     decimal.RequireFromString("180.55"),
			Fees:      decimal.RequireFromString("1.5"),
			Currency:  "USD",
			Notes:     "earnings play",
		},
		{
			Timestamp:      time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
			Ticker:         "SPY",
			AssetType:      domain.AssetOption,
			Side:           domain.Sell,
			Quantity:       decimal.RequireFromString("2"),
			Price:          decimal.RequireFromString("5.35"),
			Fees:           decimal.RequireFromString("0.65"),
			Currency:       "USD",
			OptionType:     domain.Put,
			Strike:         decimal.RequireFromString("450"),
			ExpirationDate: time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC),
		},
	}

	require.NoError(t, WriteTrades(trades, path))

	got, err := ReadTrades(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "AAPL", got[0].Ticker)
	assert.True(t, got[0].Price.Equal(trades[0].Price))
	assert.True(t, got[0].Fees.Equal(trades[0].Fees))
	assert.Equal(t, "earnings play", got[0].Notes)

	assert.Equal(t, domain.AssetOption, got[1].AssetType)
	assert.Equal(t, domain.Put, got[1].OptionType)
	assert.True(t, got[1].Strike.Equal(trades[1].Strike))
	assert.True(t, got[1].ExpirationDate.Equal(trades[1].ExpirationDate))
}

func TestReadTradesRejectsMalformedRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")

	trades := []domain.TradeRecord{{
		Timestamp: time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC),
		Ticker:    "AAPL",
		AssetType: domain.AssetStock,
		Side:      domain.Buy,
		Quantity:  decimal.Zero, // invalid: quantity must be positive
		Price:     decimal.RequireFromString("180"),
		Currency:  "USD",
	}}
	require.NoError(t, WriteTrades(trades, path))

	_, err := ReadTrades(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadTradesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteTrades(nil, path))

	got, err := ReadTrades(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}
