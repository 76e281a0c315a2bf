// Package matching converts an ordered trade list into realized P&L events
// and residual open-lot state, per instrument, using FIFO lot matching.
package matching

import (
	"sort"

	"github.com/shopspring/decimal"

	"tradeforge/internal/domain"
)

// RejectedTrade is a trade record that failed validation. The matcher skips
// it and continues; the caller decides whether a partial result is
// acceptable.
type RejectedTrade struct {
	Trade domain.TradeRecord
	Err   error
}

// Result is the matcher output for one invocation.
type Result struct {
	// Events holds every realized P&L event, ordered by (close time,
	// closing trade id) across all instruments.
	Events []domain.RealizedEvent
	// OpenLots holds the still-unmatched lots, ordered by (ticker, open
	// time, trade id). Positions held across the query window appear here
	// with zero realized P&L rather than being dropped.
	OpenLots []domain.OpenLot
	// Rejected holds per-record validation failures.
	Rejected []RejectedTrade
}

// Match runs FIFO lot matching over the supplied trades. The input order is
// irrelevant: trades are re-sorted by the canonical (timestamp, id) order
// before matching, so two calls with the same set of records produce
// identical results.
//
// Over-closing is permitted: a closing trade whose quantity
// exceeds the open interest realizes the matched portion and opens a new lot
// in the opposite direction with the remainder (the position flips). A sell
// with no open lots simply opens a short lot.
func Match(trades []domain.TradeRecord) *Result {
	ordered := make([]domain.TradeRecord, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].Timestamp.Before(ordered[j].Timestamp)
		}
		return ordered[i].ID < ordered[j].ID
	})

	res := &Result{}
	books := make(map[string]*instrumentBook)
	var keys []string

	for i := range ordered {
		t := &ordered[i]
		if err := t.Validate(); err != nil {
			res.Rejected = append(res.Rejected, RejectedTrade{Trade: *t, Err: err})
			continue
		}
		key := t.InstrumentKey()
		book, ok := books[key]
		if !ok {
			book = &instrumentBook{}
			books[key] = book
			keys = append(keys, key)
		}
		book.apply(t)
	}

	// Deterministic merge across instruments.
	sort.Strings(keys)
	for _, key := range keys {
		book := books[key]
		res.Events = append(res.Events, book.events...)
		for _, lot := range book.lots {
			res.OpenLots = append(res.OpenLots, *lot)
		}
	}
	sort.SliceStable(res.Events, func(i, j int) bool {
		if !res.Events[i].CloseTime.Equal(res.Events[j].CloseTime) {
			return res.Events[i].CloseTime.Before(res.Events[j].CloseTime)
		}
		return res.Events[i].CloseTradeID < res.Events[j].CloseTradeID
	})
	sort.SliceStable(res.OpenLots, func(i, j int) bool {
		if res.OpenLots[i].Ticker != res.OpenLots[j].Ticker {
			return res.OpenLots[i].Ticker < res.OpenLots[j].Ticker
		}
		if !res.OpenLots[i].OpenTime.Equal(res.OpenLots[j].OpenTime) {
			return res.OpenLots[i].OpenTime.Before(res.OpenLots[j].OpenTime)
		}
		return res.OpenLots[i].TradeID < res.OpenLots[j].TradeID
	})
	return res
}

// instrumentBook is the FIFO working state for one instrument (a ticker, or
// one option contract series).
type instrumentBook struct {
	lots   []*domain.OpenLot
	events []domain.RealizedEvent
}

// apply processes one validated trade against the book.
func (b *instrumentBook) apply(t *domain.TradeRecord) {
	dir := domain.Long
	if t.Side == domain.Sell {
		dir = domain.Short
	}

	// Same direction as the standing position (or flat book): open a lot.
	if len(b.lots) == 0 || b.lots[0].Direction == dir {
		b.open(t, dir, t.Quantity, t.Fees.Div(t.Quantity))
		return
	}

	// Opposite direction: consume open lots oldest-first.
	remaining := t.Quantity
	exitFeePerUnit := t.Fees.Div(t.Quantity)
	for remaining.IsPositive() && len(b.lots) > 0 {
		lot := b.lots[0]
		matched := decimal.Min(lot.Quantity, remaining)
		entryFees := lot.FeePerUnit.Mul(matched)
		exitFees := exitFeePerUnit.Mul(matched)
		sign := decimal.NewFromInt(lot.Direction.Sign())
		pnl := t.Price.Sub(lot.Price).Mul(sign).Mul(matched).Sub(entryFees).Sub(exitFees)

		b.events = append(b.events, domain.RealizedEvent{
			Ticker:       t.Ticker,
			AssetType:    t.AssetType,
			Direction:    lot.Direction,
			OpenTradeID:  lot.TradeID,
			CloseTradeID: t.ID,
			Quantity:     matched,
			EntryPrice:   lot.Price,
			ExitPrice:    t.Price,
			Fees:         entryFees.Add(exitFees),
			PNL:          pnl,
			OpenTime:     lot.OpenTime,
			CloseTime:    t.Timestamp,
		})

		lot.Quantity = lot.Quantity.Sub(matched)
		if lot.Quantity.IsZero() {
			b.lots = b.lots[1:]
		}
		remaining = remaining.Sub(matched)
	}

	// Excess quantity flips the position: the remainder opens a lot in the
	// trade's own direction, carrying its share of the trade's fees.
	if remaining.IsPositive() {
		b.open(t, dir, remaining, exitFeePerUnit)
	}
}

func (b *instrumentBook) open(t *domain.TradeRecord, dir domain.Direction, qty, feePerUnit decimal.Decimal) {
	b.lots = append(b.lots, &domain.OpenLot{
		TradeID:    t.ID,
		Ticker:     t.Ticker,
		AssetType:  t.AssetType,
		Direction:  dir,
		Quantity:   qty,
		Price:      t.Price,
		FeePerUnit: feePerUnit,
		OpenTime:   t.Timestamp,
	})
}
