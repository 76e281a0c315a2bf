package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord represents one executed fill as supplied by the caller.
// Stock and option trades share the base fields; the option-only fields
// (OptionType, Strike, ExpirationDate) are zero-valued for stock trades and
// required for option trades. Validate enforces this, not the use sites.
type TradeRecord struct {
	ID        int64           // Unique, stable identifier (usually the DB rowid); ascending tie-break for ordering
	Timestamp time.Time       // Execution time, timezone-normalized; primary ordering key
	Ticker    string          // Instrument symbol (e.g. "AAPL", "0700.HK")
	AssetType AssetType       // stock or option
	Side      OrderSide       // BUY or SELL
	Quantity  decimal.Decimal // Share/contract count, > 0
	Price     decimal.Decimal // Per-unit execution price, >= 0
	Fees      decimal.Decimal // Commission and fees for this fill, >= 0
	Currency  string          // e.g. "USD", "HKD"; no conversion is performed here
	Notes     string          // Free-form caller annotation, ignored by the engine

	// Option-only fields. A contract series (type+strike+expiration) is a
	// distinct instrument for matching purposes.
	OptionType     OptionType
	Strike         decimal.Decimal
	ExpirationDate time.Time
}

// Validate checks the record invariants from the data model. All violations
// are wrapped in ErrInvalidTrade so callers can test with errors.Is.
func (t *TradeRecord) Validate() error {
	if t.Ticker == "" {
		return fmt.Errorf("%w: trade %d has empty ticker", ErrInvalidTrade, t.ID)
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("%w: trade %d has zero timestamp", ErrInvalidTrade, t.ID)
	}
	if t.Side != Buy && t.Side != Sell {
		return fmt.Errorf("%w: trade %d has unknown side %q", ErrInvalidTrade, t.ID, t.Side)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("%w: trade %d quantity %s must be positive", ErrInvalidTrade, t.ID, t.Quantity)
	}
	if t.Price.IsNegative() {
		return fmt.Errorf("%w: trade %d price %s must be non-negative", ErrInvalidTrade, t.ID, t.Price)
	}
	if t.Fees.IsNegative() {
		return fmt.Errorf("%w: trade %d fees %s must be non-negative", ErrInvalidTrade, t.ID, t.Fees)
	}
	switch t.AssetType {
	case AssetStock:
		// No extra fields required.
	case AssetOption:
		if t.OptionType != Call && t.OptionType != Put {
			return fmt.Errorf("%w: option trade %d has unknown option type %q", ErrInvalidTrade, t.ID, t.OptionType)
		}
		if !t.Strike.IsPositive() {
			return fmt.Errorf("%w: option trade %d strike %s must be positive", ErrInvalidTrade, t.ID, t.Strike)
		}
		if t.ExpirationDate.IsZero() {
			return fmt.Errorf("%w: option trade %d has zero expiration date", ErrInvalidTrade, t.ID)
		}
	default:
		return fmt.Errorf("%w: trade %d has unknown asset type %q", ErrInvalidTrade, t.ID, t.AssetType)
	}
	return nil
}

// InstrumentKey returns the matching group for this trade. Stock trades group
// by ticker alone; each option contract series is its own instrument.
func (t *TradeRecord) InstrumentKey() string {
	if t.AssetType == AssetOption {
		return fmt.Sprintf("%s|%s|%s|%s", t.Ticker, t.OptionType, t.Strike, t.ExpirationDate.Format("2006-01-02"))
	}
	return t.Ticker
}
