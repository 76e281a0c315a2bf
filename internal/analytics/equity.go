// Package analytics computes the realized equity curve and the performance
// metrics panel from realized P&L events. Equity is driven only by realized
// events, never by mark-to-market of open lots.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"tradeforge/internal/domain"
)

// BuildEquityCurve folds realized events into a time-ordered cumulative
// equity curve: point i carries startingCapital + sum of the first i+1
// event P&Ls. Events are re-sorted by (close time, closing trade id) across
// all tickers, so the curve is stable regardless of input order. One point
// is produced per event.
func BuildEquityCurve(events []domain.RealizedEvent, startingCapital decimal.Decimal) []domain.EquityPoint {
	ordered := make([]domain.RealizedEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CloseTime.Equal(ordered[j].CloseTime) {
			return ordered[i].CloseTime.Before(ordered[j].CloseTime)
		}
		return ordered[i].CloseTradeID < ordered[j].CloseTradeID
	})

	curve := make([]domain.EquityPoint, 0, len(ordered))
	equity := startingCapital
	peak := startingCapital
	for _, ev := range ordered {
		equity = equity.Add(ev.PNL)
		if equity.GreaterThan(peak) {
			peak = equity
		}
		dd := 0.0
		if peak.IsPositive() && equity.LessThan(peak) {
			dd, _ = peak.Sub(equity).Div(peak).Float64()
		}
		curve = append(curve, domain.EquityPoint{
			Time:     ev.CloseTime,
			Equity:   equity,
			Drawdown: dd,
		})
	}
	return curve
}
