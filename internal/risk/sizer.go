// Package risk implements fixed-fraction position sizing. It has no
// dependency on trade history; callers pass account equity and the planned
// entry/stop prices.
package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"tradeforge/internal/domain"
)

// DefaultRiskFraction risks 1% of account equity per trade.
const DefaultRiskFraction = 0.01

// SizerConfig holds configuration for the position sizer.
type SizerConfig struct {
	// RiskFraction is the fraction of account equity risked per trade.
	// DefaultRiskFraction is used when not positive.
	RiskFraction float64
	// MaxKellyFraction caps the Kelly criterion suggestion. Defaults to 0.25.
	MaxKellyFraction float64
}

// Sizer calculates position sizes from account equity and stop placement.
type Sizer struct {
	cfg SizerConfig
}

// SizeResult is the outcome of one sizing calculation.
type SizeResult struct {
	RiskAmount   decimal.Decimal // equity * risk fraction
	RiskPerUnit  decimal.Decimal // |entry - stop|
	PositionSize int64           // floor(RiskAmount / RiskPerUnit), in units
}

// NewSizer creates a position sizer, applying defaults for unset config.
func NewSizer(cfg SizerConfig) *Sizer {
	if cfg.RiskFraction <= 0 {
		cfg.RiskFraction = DefaultRiskFraction
	}
	if cfg.MaxKellyFraction <= 0 {
		cfg.MaxKellyFraction = 0.25
	}
	return &Sizer{cfg: cfg}
}

// PositionSize computes how many units to buy or sell so that a stop-out
// loses the configured fraction of account equity. riskFraction overrides
// the configured fraction when positive.
//
// Fails with domain.ErrInvalidRiskInput when accountEquity or entryPrice is
// not positive, stopLossPrice is negative, or entry equals stop (the
// per-unit risk would be zero).
func (s *Sizer) PositionSize(accountEquity, entryPrice, stopLossPrice decimal.Decimal, riskFraction float64) (*SizeResult, error) {
	if !accountEquity.IsPositive() {
		return nil, fmt.Errorf("%w: account equity %s must be positive", domain.ErrInvalidRiskInput, accountEquity)
	}
	if !entryPrice.IsPositive() {
		return nil, fmt.Errorf("%w: entry price %s must be positive", domain.ErrInvalidRiskInput, entryPrice)
	}
	if stopLossPrice.IsNegative() {
		return nil, fmt.Errorf("%w: stop loss price %s must be non-negative", domain.ErrInvalidRiskInput, stopLossPrice)
	}
	if entryPrice.Equal(stopLossPrice) {
		return nil, fmt.Errorf("%w: entry price equals stop loss price, per-unit risk is zero", domain.ErrInvalidRiskInput)
	}
	if riskFraction <= 0 {
		riskFraction = s.cfg.RiskFraction
	}

	riskAmount := accountEquity.Mul(decimal.NewFromFloat(riskFraction))
	riskPerUnit := entryPrice.Sub(stopLossPrice).Abs()
	size := riskAmount.Div(riskPerUnit).Floor().IntPart()
	return &SizeResult{
		RiskAmount:   riskAmount,
		RiskPerUnit:  riskPerUnit,
		PositionSize: size,
	}, nil
}

// KellyFraction returns the simplified Kelly criterion fraction of equity to
// allocate, given historical win rate and average win/loss sizes
// (averageLoss is the usual negative mean). The result is clamped to
// [0, MaxKellyFraction]; it is 0 when averageWin or averageLoss is zero.
func (s *Sizer) KellyFraction(winRate, averageWin, averageLoss float64) float64 {
	if averageWin == 0 || averageLoss == 0 {
		return 0
	}
	kelly := (winRate*averageWin - (1-winRate)*abs(averageLoss)) / averageWin
	if kelly < 0 {
		return 0
	}
	if kelly > s.cfg.MaxKellyFraction {
		return s.cfg.MaxKellyFraction
	}
	return kelly
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
