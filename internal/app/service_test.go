package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeforge/internal/domain"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// mockTradeRepo implements ports.TradeRepository over a fixed slice.
type mockTradeRepo struct {
	trades []domain.TradeRecord
}

func (m *mockTradeRepo) Create(ctx context.Context, trade *domain.TradeRecord) (int64, error) {
	return 0, nil
}
func (m *mockTradeRepo) GetAll(ctx context.Context) ([]domain.TradeRecord, error) {
	return m.trades, nil
}
func (m *mockTradeRepo) GetByTicker(ctx context.Context, ticker string) ([]domain.TradeRecord, error) {
	return nil, nil
}
func (m *mockTradeRepo) Delete(ctx context.Context, id int64) error { return nil }

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testTrades() []domain.TradeRecord {
	base := time.Date(2024, 2, 5, 15, 0, 0, 0, time.UTC)
	trade := func(id int64, offset time.Duration, ticker string, side domain.OrderSide, qty, price string) domain.TradeRecord {
		return domain.TradeRecord{
			ID:        id,
			Timestamp: base.Add(offset),
			Ticker:    ticker,
			AssetType: domain.AssetStock,
			Side:      side,
			Quantity:  d(qty),
			Price:     d(price),
			Currency:  "USD",
		}
	}
	return []domain.TradeRecord{
		trade(1, 0, "AAPL", domain.Buy, "10", "100"),
		trade(2, time.Hour, "AAPL", domain.Sell, "10", "110"),
		trade(3, 2*time.Hour, "TSLA", domain.Buy, "5", "200"),
		trade(4, 3*time.Hour, "TSLA", domain.Sell, "5", "190"),
		trade(5, 4*time.Hour, "NVDA", domain.Buy, "2", "700"), // stays open
	}
}

func newTestService(t *testing.T, trades []domain.TradeRecord) *AnalyticsService {
	t.Helper()
	svc, err := NewAnalyticsService(Config{StartingCapital: d("10000")},
		&mockLogger{}, &mockTradeRepo{trades: trades})
	require.NoError(t, err)
	return svc
}

func TestNewAnalyticsServiceValidatesDependencies(t *testing.T) {
	_, err := NewAnalyticsService(Config{}, nil, &mockTradeRepo{})
	assert.Error(t, err)

	_, err = NewAnalyticsService(Config{}, &mockLogger{}, nil)
	assert.Error(t, err)

	_, err = NewAnalyticsService(Config{StartingCapital: d("-1")}, &mockLogger{}, &mockTradeRepo{})
	assert.Error(t, err)
}

func TestAnalyzePipeline(t *testing.T) {
	svc := newTestService(t, testTrades())

	report, err := svc.Analyze(context.Background())
	require.NoError(t, err)

	// AAPL +100, TSLA -50, NVDA still open.
	require.Len(t, report.Events, 2)
	require.Len(t, report.OpenLots, 1)
	assert.Equal(t, "NVDA", report.OpenLots[0].Ticker)
	assert.Empty(t, report.Rejected)

	require.Len(t, report.Equity, 2)
	assert.True(t, report.Equity[1].Equity.Equal(d("10050")))

	m := report.Metrics
	assert.Equal(t, 2, m.TotalTrades)
	assert.True(t, m.TotalPNL.Equal(d("50")))
	assert.Equal(t, 0.5, m.WinRate)
	assert.Equal(t, "AAPL", m.BestTicker)
	assert.Equal(t, "TSLA", m.WorstTicker)

	assert.NotEmpty(t, report.Insights)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	svc := newTestService(t, testTrades())
	ctx := context.Background()

	first, err := svc.Analyze(ctx)
	require.NoError(t, err)
	second, err := svc.Analyze(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnalyzeTradesReportsRejectedRecords(t *testing.T) {
	trades := testTrades()
	trades[0].Price = d("-5") // invalidate one record

	svc := newTestService(t, trades)
	report := svc.AnalyzeTrades(context.Background(), trades)

	require.Len(t, report.Rejected, 1)
	assert.Equal(t, int64(1), report.Rejected[0].Trade.ID)
	// The sell that would have matched it now opens a short instead; the
	// batch still completes.
	assert.NotNil(t, report.Metrics)
}

func TestSuggestPositionSize(t *testing.T) {
	svc := newTestService(t, testTrades())

	// Equity 10000 + 50 realized; 1% default risk fraction over a 5-point
	// stop distance.
	advice, err := svc.SuggestPositionSize(context.Background(), d("100"), d("95"))
	require.NoError(t, err)

	assert.True(t, advice.AccountEquity.Equal(d("10050")))
	assert.True(t, advice.Size.RiskAmount.Equal(d("100.5")))
	assert.True(t, advice.Size.RiskPerUnit.Equal(d("5")))
	assert.Equal(t, int64(20), advice.Size.PositionSize)

	// Win rate 0.5, average win 100, average loss -50: Kelly 0.25 at the cap.
	assert.Equal(t, 0.25, advice.KellyFraction)
}

func TestSuggestPositionSizeUsesConfiguredRiskFraction(t *testing.T) {
	svc, err := NewAnalyticsService(Config{StartingCapital: d("10000"), RiskFraction: 0.02},
		&mockLogger{}, &mockTradeRepo{trades: testTrades()})
	require.NoError(t, err)

	advice, err := svc.SuggestPositionSize(context.Background(), d("100"), d("95"))
	require.NoError(t, err)

	assert.True(t, advice.Size.RiskAmount.Equal(d("201")))
	assert.Equal(t, int64(40), advice.Size.PositionSize)
}

func TestSuggestPositionSizeInvalidStop(t *testing.T) {
	svc := newTestService(t, testTrades())

	_, err := svc.SuggestPositionSize(context.Background(), d("100"), d("100"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidRiskInput))
}

func TestAnalyzeTradesEmptyJournal(t *testing.T) {
	svc := newTestService(t, nil)
	report := svc.AnalyzeTrades(context.Background(), nil)

	assert.Empty(t, report.Events)
	assert.Empty(t, report.Equity)
	assert.Equal(t, 0, report.Metrics.TotalTrades)
	require.Len(t, report.Insights, 1)
	assert.Equal(t, "no-trades", report.Insights[0].Rule)
}
