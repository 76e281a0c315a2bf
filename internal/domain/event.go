package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RealizedEvent records the outcome of matching part of a closing trade
// against one open lot. A closing trade that consumes several lots produces
// one event per lot. Events are immutable once produced; the equity and
// metrics layers only read them.
type RealizedEvent struct {
	Ticker       string
	AssetType    AssetType
	Direction    Direction       // Direction of the lot that was closed
	OpenTradeID  int64           // Trade that opened the lot
	CloseTradeID int64           // Trade that closed it
	Quantity     decimal.Decimal // Quantity matched against this lot
	EntryPrice   decimal.Decimal // Lot's per-unit execution price (fees excluded)
	ExitPrice    decimal.Decimal // Closing trade's per-unit execution price
	Fees         decimal.Decimal // Pro-rata fee share of both legs
	PNL          decimal.Decimal // (exit-entry) * sign * qty - Fees
	OpenTime     time.Time
	CloseTime    time.Time
}

// HoldingPeriod returns how long the matched quantity was held.
func (e *RealizedEvent) HoldingPeriod() time.Duration {
	return e.CloseTime.Sub(e.OpenTime)
}

// EquityPoint is one step of the realized equity curve: account equity after
// the realized event at Time. Drawdown is the fractional decline from the
// running peak at that point (0 when at a new peak or when the peak is not
// positive).
type EquityPoint struct {
	Time     time.Time
	Equity   decimal.Decimal
	Drawdown float64
}
