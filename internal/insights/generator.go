// Package insights evaluates a fixed, ordered list of rules over the metrics
// panel and produces human-readable findings. This is deliberately plain
// pattern matching: every rule is independent, deterministic, and testable
// on its own.
package insights

import (
	"fmt"

	"tradeforge/internal/analytics"
)

// Severity classifies an insight.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Insight is one finding produced by a rule.
type Insight struct {
	Rule     string // stable rule name, for filtering and tests
	Severity Severity
	Message  string
}

// rule pairs a stable name with its evaluation. A nil return means the rule
// has nothing to say for this panel.
type rule struct {
	name     string
	evaluate func(m *analytics.Metrics) *Insight
}

// rules is the fixed priority list. Order here is output order.
var rules = []rule{
	{name: "no-trades", evaluate: noTrades},
	{name: "win-rate", evaluate: winRate},
	{name: "profit-factor", evaluate: profitFactor},
	{name: "drawdown", evaluate: drawdown},
	{name: "expectancy", evaluate: expectancy},
	{name: "best-ticker", evaluate: bestTicker},
	{name: "worst-ticker", evaluate: worstTicker},
}

// Generate evaluates every rule against the panel, in the fixed priority
// order. Calling it twice with the same panel yields identical output.
func Generate(m *analytics.Metrics) []Insight {
	var out []Insight
	for _, r := range rules {
		if ins := r.evaluate(m); ins != nil {
			out = append(out, *ins)
		}
	}
	return out
}

func noTrades(m *analytics.Metrics) *Insight {
	if m.TotalTrades > 0 {
		return nil
	}
	return &Insight{
		Rule:     "no-trades",
		Severity: SeverityInfo,
		Message:  "No closed trades yet. Statistics start once a position is closed.",
	}
}

func winRate(m *analytics.Metrics) *Insight {
	if m.TotalTrades == 0 {
		return nil
	}
	pct := m.WinRate * 100
	switch {
	case m.WinRate >= 0.6:
		return &Insight{Rule: "win-rate", Severity: SeverityInfo,
			Message: fmt.Sprintf("Excellent win rate of %.1f%%.", pct)}
	case m.WinRate >= 0.4:
		return &Insight{Rule: "win-rate", Severity: SeverityInfo,
			Message: fmt.Sprintf("Win rate of %.1f%% is workable; entry and exit timing could improve it.", pct)}
	default:
		return &Insight{Rule: "win-rate", Severity: SeverityWarning,
			Message: fmt.Sprintf("Low win rate of %.1f%%. Review the trading strategy.", pct)}
	}
}

func profitFactor(m *analytics.Metrics) *Insight {
	if m.LosingTrades == 0 {
		if m.WinningTrades > 0 {
			return &Insight{Rule: "profit-factor", Severity: SeverityInfo,
				Message: "No losing trades recorded; profit factor is unbounded."}
		}
		return nil
	}
	switch {
	case m.ProfitFactor >= 2.0:
		return &Insight{Rule: "profit-factor", Severity: SeverityInfo,
			Message: fmt.Sprintf("Strong profit factor of %.2f; winners are well ahead of losers.", m.ProfitFactor)}
	case m.ProfitFactor >= 1.0:
		return &Insight{Rule: "profit-factor", Severity: SeverityInfo,
			Message: fmt.Sprintf("Profit factor of %.2f keeps the system profitable.", m.ProfitFactor)}
	default:
		return &Insight{Rule: "profit-factor", Severity: SeverityWarning,
			Message: fmt.Sprintf("Profit factor of %.2f: gross losses exceed gross profits, a losing system.", m.ProfitFactor)}
	}
}

func drawdown(m *analytics.Metrics) *Insight {
	if m.TotalTrades == 0 {
		return nil
	}
	pct := m.MaxDrawdownPct * 100
	switch {
	case m.MaxDrawdownPct > 0.20:
		return &Insight{Rule: "drawdown", Severity: SeverityWarning,
			Message: fmt.Sprintf("High maximum drawdown of %.1f%%. Consider smaller position sizes.", pct)}
	case m.MaxDrawdownPct > 0.10:
		return &Insight{Rule: "drawdown", Severity: SeverityInfo,
			Message: fmt.Sprintf("Maximum drawdown of %.1f%% is manageable but worth monitoring.", pct)}
	default:
		return &Insight{Rule: "drawdown", Severity: SeverityInfo,
			Message: fmt.Sprintf("Low maximum drawdown of %.1f%%.", pct)}
	}
}

func expectancy(m *analytics.Metrics) *Insight {
	if m.TotalTrades == 0 || m.Expectancy >= 0 {
		return nil
	}
	return &Insight{Rule: "expectancy", Severity: SeverityWarning,
		Message: fmt.Sprintf("Negative expectancy of %.2f per trade.", m.Expectancy)}
}

func bestTicker(m *analytics.Metrics) *Insight {
	if m.BestTicker == "" || !m.BestTickerPNL.IsPositive() {
		return nil
	}
	return &Insight{Rule: "best-ticker", Severity: SeverityInfo,
		Message: fmt.Sprintf("%s is the best performer with %s realized profit.", m.BestTicker, m.BestTickerPNL.StringFixed(2))}
}

func worstTicker(m *analytics.Metrics) *Insight {
	if m.WorstTicker == "" || !m.WorstTickerPNL.IsNegative() {
		return nil
	}
	return &Insight{Rule: "worst-ticker", Severity: SeverityInfo,
		Message: fmt.Sprintf("%s is the worst performer with %s realized loss.", m.WorstTicker, m.WorstTickerPNL.StringFixed(2))}
}
