package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"tradeforge/internal/domain"
)

// DefaultPeriodsPerYear annualizes the Sharpe ratio when the caller does not
// override it. 252 trading days, matching the usual daily convention.
const DefaultPeriodsPerYear = 252

// Metrics is the full performance panel. Money amounts are decimals; ratios
// are float64.
//
// Division-by-zero policy: metrics with an empty denominator resolve to
// documented sentinels instead of failing. WinRate, Expectancy and
// SharpeRatio are 0 with no (or too few) events; ProfitFactor is
// math.Inf(1) when there are winners but no losers, and 0 with no closed
// trades at all. Dashboards can render any panel without guarding.
type Metrics struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int

	TotalPNL        decimal.Decimal
	TotalFees       decimal.Decimal
	StartingCapital decimal.Decimal
	FinalEquity     decimal.Decimal

	WinRate      float64 // fraction in [0,1]
	ProfitFactor float64
	AverageWin   float64 // mean P&L of winning events; 0 if none
	AverageLoss  float64 // mean P&L of losing events (negative); 0 if none
	Expectancy   float64 // WinRate*AverageWin + (1-WinRate)*AverageLoss

	MaxDrawdown    decimal.Decimal // deepest peak-to-trough equity decline
	MaxDrawdownPct float64         // deepest decline as a fraction of its peak
	SharpeRatio    float64         // annualized, from point-to-point returns

	LargestWin  decimal.Decimal
	LargestLoss decimal.Decimal

	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	AverageHoldingPeriod time.Duration

	BestTicker     string
	BestTickerPNL  decimal.Decimal
	WorstTicker    string
	WorstTickerPNL decimal.Decimal

	BestMonth     string
	BestMonthPNL  decimal.Decimal
	WorstMonth    string
	WorstMonthPNL decimal.Decimal

	// PerTickerPNL aggregates realized P&L per ticker (option series roll up
	// into their underlying's ticker).
	PerTickerPNL map[string]decimal.Decimal
	// MonthlyPNL aggregates realized P&L per close month, keyed "2006-01".
	MonthlyPNL map[string]decimal.Decimal
}

// ComputeMetrics derives the panel from realized events and the equity curve
// built over them. periodsPerYear annualizes the Sharpe ratio;
// DefaultPeriodsPerYear is used when it is not positive. The function never
// fails; see the sentinel policy on Metrics.
func ComputeMetrics(events []domain.RealizedEvent, curve []domain.EquityPoint, startingCapital decimal.Decimal, periodsPerYear int) *Metrics {
	if periodsPerYear <= 0 {
		periodsPerYear = DefaultPeriodsPerYear
	}
	m := &Metrics{
		StartingCapital: startingCapital,
		FinalEquity:     startingCapital,
		PerTickerPNL:    make(map[string]decimal.Decimal),
		MonthlyPNL:      make(map[string]decimal.Decimal),
	}
	if len(events) == 0 {
		return m
	}

	ordered := make([]domain.RealizedEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CloseTime.Equal(ordered[j].CloseTime) {
			return ordered[i].CloseTime.Before(ordered[j].CloseTime)
		}
		return ordered[i].CloseTradeID < ordered[j].CloseTradeID
	})

	var grossProfit, grossLoss decimal.Decimal
	var consecutiveWins, consecutiveLosses int
	var totalHolding time.Duration
	m.LargestWin = ordered[0].PNL
	m.LargestLoss = ordered[0].PNL

	for _, ev := range ordered {
		m.TotalTrades++
		m.TotalPNL = m.TotalPNL.Add(ev.PNL)
		m.TotalFees = m.TotalFees.Add(ev.Fees)
		m.PerTickerPNL[ev.Ticker] = m.PerTickerPNL[ev.Ticker].Add(ev.PNL)
		month := ev.CloseTime.Format("2006-01")
		m.MonthlyPNL[month] = m.MonthlyPNL[month].Add(ev.PNL)
		totalHolding += ev.HoldingPeriod()

		switch {
		case ev.PNL.IsPositive():
			m.WinningTrades++
			grossProfit = grossProfit.Add(ev.PNL)
			consecutiveWins++
			consecutiveLosses = 0
		case ev.PNL.IsNegative():
			m.LosingTrades++
			grossLoss = grossLoss.Add(ev.PNL)
			consecutiveLosses++
			consecutiveWins = 0
		default:
			consecutiveWins = 0
			consecutiveLosses = 0
		}
		if consecutiveWins > m.MaxConsecutiveWins {
			m.MaxConsecutiveWins = consecutiveWins
		}
		if consecutiveLosses > m.MaxConsecutiveLosses {
			m.MaxConsecutiveLosses = consecutiveLosses
		}
		if ev.PNL.GreaterThan(m.LargestWin) {
			m.LargestWin = ev.PNL
		}
		if ev.PNL.LessThan(m.LargestLoss) {
			m.LargestLoss = ev.PNL
		}
	}

	m.FinalEquity = startingCapital.Add(m.TotalPNL)
	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
	m.AverageHoldingPeriod = totalHolding / time.Duration(m.TotalTrades)

	if m.WinningTrades > 0 {
		m.AverageWin, _ = grossProfit.Div(decimal.NewFromInt(int64(m.WinningTrades))).Float64()
	}
	if m.LosingTrades > 0 {
		m.AverageLoss, _ = grossLoss.Div(decimal.NewFromInt(int64(m.LosingTrades))).Float64()
	}
	m.Expectancy = m.WinRate*m.AverageWin + (1-m.WinRate)*m.AverageLoss

	gp, _ := grossProfit.Float64()
	gl, _ := grossLoss.Abs().Float64()
	switch {
	case gl > 0:
		m.ProfitFactor = gp / gl
	case gp > 0:
		m.ProfitFactor = math.Inf(1)
	}

	m.MaxDrawdown, m.MaxDrawdownPct = maxDrawdown(curve, startingCapital)
	m.SharpeRatio = sharpeRatio(curve, periodsPerYear)

	m.BestTicker, m.BestTickerPNL, m.WorstTicker, m.WorstTickerPNL = pnlExtremes(m.PerTickerPNL)
	m.BestMonth, m.BestMonthPNL, m.WorstMonth, m.WorstMonthPNL = pnlExtremes(m.MonthlyPNL)
	return m
}

// maxDrawdown scans the equity curve once, tracking the running peak. The
// starting capital seeds the peak so a losing first event already counts as
// a decline. Returns the deepest absolute decline and the deepest decline as
// a fraction of its peak (0 when the curve never dips, or when the peak is
// not positive for the percentage).
func maxDrawdown(curve []domain.EquityPoint, startingCapital decimal.Decimal) (decimal.Decimal, float64) {
	peak := startingCapital
	maxAbs := decimal.Zero
	maxPct := 0.0
	for _, p := range curve {
		if p.Equity.GreaterThan(peak) {
			peak = p.Equity
			continue
		}
		dd := peak.Sub(p.Equity)
		if dd.GreaterThan(maxAbs) {
			maxAbs = dd
		}
		if peak.IsPositive() {
			pct, _ := dd.Div(peak).Float64()
			if pct > maxPct {
				maxPct = pct
			}
		}
	}
	return maxAbs, maxPct
}

// sharpeRatio annualizes mean/stddev over the percentage change between
// consecutive equity points. Fewer than two points yields 0, as does a flat
// return series. Steps whose prior equity is zero are skipped, since a
// percentage change from zero is undefined.
func sharpeRatio(curve []domain.EquityPoint, periodsPerYear int) float64 {
	if len(curve) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev.IsZero() {
			continue
		}
		r, _ := curve[i].Equity.Sub(prev).Div(prev).Float64()
		returns = append(returns, r)
	}
	if len(returns) < 2 {
		return 0
	}
	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))
	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	// Sample standard deviation, matching the usual convention for return
	// series.
	stdev := math.Sqrt(variance / float64(len(returns)-1))
	if stdev == 0 {
		return 0
	}
	return mean / stdev * math.Sqrt(float64(periodsPerYear))
}

// pnlExtremes picks the best and worst keys of an aggregate P&L map (ticker
// or month buckets), breaking ties by lexicographic order so the result is
// deterministic.
func pnlExtremes(perKey map[string]decimal.Decimal) (string, decimal.Decimal, string, decimal.Decimal) {
	keys := make([]string, 0, len(perKey))
	for k := range perKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var best, worst string
	var bestPNL, worstPNL decimal.Decimal
	for _, k := range keys {
		pnl := perKey[k]
		if best == "" || pnl.GreaterThan(bestPNL) {
			best, bestPNL = k, pnl
		}
		if worst == "" || pnl.LessThan(worstPNL) {
			worst, worstPNL = k, pnl
		}
	}
	return best, bestPNL, worst, worstPNL
}
