// Package app wires the analytics pipeline: trade snapshot from the
// repository, FIFO matching, equity reconstruction, metrics, insights.
package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"tradeforge/internal/analytics"
	"tradeforge/internal/domain"
	"tradeforge/internal/insights"
	"tradeforge/internal/matching"
	"tradeforge/internal/ports"
	"tradeforge/internal/risk"
)

// Config holds the analysis parameters.
type Config struct {
	// StartingCapital seeds the equity curve; zero is valid.
	StartingCapital decimal.Decimal
	// PeriodsPerYear annualizes the Sharpe ratio;
	// analytics.DefaultPeriodsPerYear when not positive.
	PeriodsPerYear int
	// RiskFraction is the fraction of equity risked per sized trade;
	// risk.DefaultRiskFraction when not positive.
	RiskFraction float64
}

// Report is the full engine output for one invocation. Every field is
// recomputed from scratch from the trade snapshot; the service holds no
// state between calls, so concurrent Analyze calls are safe.
type Report struct {
	Events   []domain.RealizedEvent
	OpenLots []domain.OpenLot
	Rejected []matching.RejectedTrade
	Equity   []domain.EquityPoint
	Metrics  *analytics.Metrics
	Insights []insights.Insight
}

// AnalyticsService runs the trade-matching-and-analytics engine over the
// journal.
type AnalyticsService struct {
	cfg    Config
	logger ports.Logger
	trades ports.TradeRepository
	sizer  *risk.Sizer
}

// NewAnalyticsService creates the service. Logger and repository are
// required.
func NewAnalyticsService(cfg Config, logger ports.Logger, trades ports.TradeRepository) (*AnalyticsService, error) {
	if logger == nil || trades == nil {
		return nil, fmt.Errorf("missing required dependencies for AnalyticsService")
	}
	if cfg.StartingCapital.IsNegative() {
		return nil, fmt.Errorf("%w: starting capital must not be negative", ports.ErrConfigurationError)
	}
	return &AnalyticsService{
		cfg:    cfg,
		logger: logger,
		trades: trades,
		sizer:  risk.NewSizer(risk.SizerConfig{RiskFraction: cfg.RiskFraction}),
	}, nil
}

// Analyze snapshots the full trade list and runs the pipeline. Individual
// invalid records are logged and reported in Report.Rejected rather than
// failing the batch.
func (s *AnalyticsService) Analyze(ctx context.Context) (*Report, error) {
	trades, err := s.trades.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading trades: %w", err)
	}
	return s.AnalyzeTrades(ctx, trades), nil
}

// AnalyzeTrades runs the pipeline over a caller-supplied snapshot. The input
// slice is not modified and its order is irrelevant.
func (s *AnalyticsService) AnalyzeTrades(ctx context.Context, trades []domain.TradeRecord) *Report {
	matched := matching.Match(trades)
	for _, rej := range matched.Rejected {
		s.logger.Warn(ctx, "skipping invalid trade record", map[string]interface{}{
			"trade_id": rej.Trade.ID,
			"ticker":   rej.Trade.Ticker,
			"error":    rej.Err.Error(),
		})
	}

	curve := analytics.BuildEquityCurve(matched.Events, s.cfg.StartingCapital)
	metrics := analytics.ComputeMetrics(matched.Events, curve, s.cfg.StartingCapital, s.cfg.PeriodsPerYear)

	s.logger.Debug(ctx, "analysis complete", map[string]interface{}{
		"trades":     len(trades),
		"events":     len(matched.Events),
		"open_lots":  len(matched.OpenLots),
		"rejected":   len(matched.Rejected),
		"total_pnl":  metrics.TotalPNL.String(),
		"max_dd_pct": metrics.MaxDrawdownPct,
	})

	return &Report{
		Events:   matched.Events,
		OpenLots: matched.OpenLots,
		Rejected: matched.Rejected,
		Equity:   curve,
		Metrics:  metrics,
		Insights: insights.Generate(metrics),
	}
}

// SizingAdvice pairs the fixed-fraction size for a planned entry with a Kelly
// fraction suggestion derived from the journal's realized history.
type SizingAdvice struct {
	AccountEquity decimal.Decimal // starting capital plus realized P&L
	Size          *risk.SizeResult
	KellyFraction float64
}

// SuggestPositionSize sizes a planned trade against the journal's current
// equity. The account equity is reconstructed from the trade history, so the
// suggestion reflects realized P&L to date; open lots are not marked to
// market.
func (s *AnalyticsService) SuggestPositionSize(ctx context.Context, entryPrice, stopLossPrice decimal.Decimal) (*SizingAdvice, error) {
	report, err := s.Analyze(ctx)
	if err != nil {
		return nil, err
	}
	m := report.Metrics

	size, err := s.sizer.PositionSize(m.FinalEquity, entryPrice, stopLossPrice, 0)
	if err != nil {
		return nil, fmt.Errorf("sizing position: %w", err)
	}
	kelly := s.sizer.KellyFraction(m.WinRate, m.AverageWin, m.AverageLoss)

	s.logger.Debug(ctx, "position size suggested", map[string]interface{}{
		"account_equity": m.FinalEquity.String(),
		"risk_amount":    size.RiskAmount.String(),
		"position_size":  size.PositionSize,
		"kelly_fraction": kelly,
	})

	return &SizingAdvice{
		AccountEquity: m.FinalEquity,
		Size:          size,
		KellyFraction: kelly,
	}, nil
}
