package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenLot is an unmatched quantity of a position. Lots live only in the
// matcher's working state and in its result; they are never persisted.
type OpenLot struct {
	TradeID    int64           // ID of the trade that opened the lot
	Ticker     string          // Instrument symbol
	AssetType  AssetType       // stock or option
	Direction  Direction       // long or short
	Quantity   decimal.Decimal // Remaining unmatched quantity
	Price      decimal.Decimal // Per-unit execution price of the opening fill
	FeePerUnit decimal.Decimal // Pro-rata share of the opening fill's fees
	OpenTime   time.Time       // Timestamp of the opening fill
}

// CostBasis returns the per-unit cost basis: execution price plus the
// proportional entry fee.
func (l *OpenLot) CostBasis() decimal.Decimal {
	return l.Price.Add(l.FeePerUnit)
}
