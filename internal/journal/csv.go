// Package journal reads and writes the trade journal's CSV formats, used by
// the import and export commands. The engine itself never touches files.
package journal

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"tradeforge/internal/analytics"
	"tradeforge/internal/domain"
)

var tradeHeader = []string{
	"timestamp", "ticker", "asset_type", "side", "quantity", "price", "fees",
	"currency", "notes", "option_type", "strike_price", "expiration_date",
}

// ReadTrades parses a trade CSV. IDs are left at zero; the repository
// assigns them on insert. Records are validated so a malformed row fails the
// import with its line number.
func ReadTrades(filename string) ([]domain.TradeRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	trades := make([]domain.TradeRecord, 0, len(rows)-1)
	for i, row := range rows[1:] { // skip header
		t, err := parseTradeRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filename, i+2, err)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filename, i+2, err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func parseTradeRow(row []string) (domain.TradeRecord, error) {
	var t domain.TradeRecord
	if len(row) != len(tradeHeader) {
		return t, fmt.Errorf("%w: expected %d columns, got %d", domain.ErrInvalidTrade, len(tradeHeader), len(row))
	}
	ts, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return t, fmt.Errorf("%w: bad timestamp %q: %v", domain.ErrInvalidTrade, row[0], err)
	}
	t.Timestamp = ts
	t.Ticker = row[1]
	t.AssetType = domain.AssetType(row[2])
	t.Side = domain.OrderSide(row[3])
	if t.Quantity, err = decimal.NewFromString(row[4]); err != nil {
		return t, fmt.Errorf("%w: bad quantity %q: %v", domain.ErrInvalidTrade, row[4], err)
	}
	if t.Price, err = decimal.NewFromString(row[5]); err != nil {
		return t, fmt.Errorf("%w: bad price %q: %v", domain.ErrInvalidTrade, row[5], err)
	}
	t.Fees = decimal.Zero
	if row[6] != "" {
		if t.Fees, err = decimal.NewFromString(row[6]); err != nil {
			return t, fmt.Errorf("%w: bad fees %q: %v", domain.ErrInvalidTrade, row[6], err)
		}
	}
	t.Currency = row[7]
	t.Notes = row[8]
	if t.AssetType == domain.AssetOption {
		t.OptionType = domain.OptionType(row[9])
		if t.Strike, err = decimal.NewFromString(row[10]); err != nil {
			return t, fmt.Errorf("%w: bad strike %q: %v", domain.ErrInvalidTrade, row[10], err)
		}
		if t.ExpirationDate, err = time.Parse("2006-01-02", row[11]); err != nil {
			return t, fmt.Errorf("%w: bad expiration date %q: %v", domain.ErrInvalidTrade, row[11], err)
		}
	}
	return t, nil
}

// WriteTrades writes trades in the same format ReadTrades accepts.
func WriteTrades(trades []domain.TradeRecord, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write(tradeHeader)
	for i := range trades {
		t := &trades[i]
		optType, strike, expiration := "", "", ""
		if t.AssetType == domain.AssetOption {
			optType = string(t.OptionType)
			strike = t.Strike.String()
			expiration = t.ExpirationDate.Format("2006-01-02")
		}
		writer.Write([]string{
			t.Timestamp.Format(time.RFC3339),
			t.Ticker,
			string(t.AssetType),
			string(t.Side),
			t.Quantity.String(),
			t.Price.String(),
			t.Fees.String(),
			t.Currency,
			t.Notes,
			optType,
			strike,
			expiration,
		})
	}
	return writer.Error()
}

// WriteEvents writes the realized P&L ledger.
func WriteEvents(events []domain.RealizedEvent, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"ticker", "asset_type", "direction", "open_time", "close_time",
		"quantity", "entry_price", "exit_price", "fees", "pnl", "holding_hours"})
	for i := range events {
		e := &events[i]
		writer.Write([]string{
			e.Ticker,
			string(e.AssetType),
			string(e.Direction),
			e.OpenTime.Format(time.RFC3339),
			e.CloseTime.Format(time.RFC3339),
			e.Quantity.String(),
			e.EntryPrice.String(),
			e.ExitPrice.String(),
			e.Fees.String(),
			e.PNL.String(),
			strconv.FormatFloat(e.HoldingPeriod().Hours(), 'f', 2, 64),
		})
	}
	return writer.Error()
}

// WriteEquityCurve writes the equity points.
func WriteEquityCurve(curve []domain.EquityPoint, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"time", "equity", "drawdown"})
	for _, p := range curve {
		writer.Write([]string{
			p.Time.Format(time.RFC3339),
			p.Equity.String(),
			strconv.FormatFloat(p.Drawdown, 'f', -1, 64),
		})
	}
	return writer.Error()
}

// WriteMetricsSummary writes the panel as metric,value rows. Infinite values
// (the no-losses profit factor sentinel) are written as "inf".
func WriteMetricsSummary(m *analytics.Metrics, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"metric", "value"})
	rows := [][2]string{
		{"total_trades", strconv.Itoa(m.TotalTrades)},
		{"winning_trades", strconv.Itoa(m.WinningTrades)},
		{"losing_trades", strconv.Itoa(m.LosingTrades)},
		{"total_pnl", m.TotalPNL.String()},
		{"total_fees", m.TotalFees.String()},
		{"starting_capital", m.StartingCapital.String()},
		{"final_equity", m.FinalEquity.String()},
		{"win_rate", formatFloat(m.WinRate)},
		{"profit_factor", formatFloat(m.ProfitFactor)},
		{"average_win", formatFloat(m.AverageWin)},
		{"average_loss", formatFloat(m.AverageLoss)},
		{"expectancy", formatFloat(m.Expectancy)},
		{"max_drawdown", m.MaxDrawdown.String()},
		{"max_drawdown_pct", formatFloat(m.MaxDrawdownPct)},
		{"sharpe_ratio", formatFloat(m.SharpeRatio)},
		{"largest_win", m.LargestWin.String()},
		{"largest_loss", m.LargestLoss.String()},
		{"max_consecutive_wins", strconv.Itoa(m.MaxConsecutiveWins)},
		{"max_consecutive_losses", strconv.Itoa(m.MaxConsecutiveLosses)},
		{"average_holding_period", m.AverageHoldingPeriod.String()},
		{"best_ticker", m.BestTicker},
		{"worst_ticker", m.WorstTicker},
		{"best_month", m.BestMonth},
		{"worst_month", m.WorstMonth},
	}
	for _, row := range rows {
		writer.Write([]string{row[0], row[1]})
	}
	return writer.Error()
}

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
