package matching

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradeforge/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func stockTrade(id int64, ts time.Time, ticker string, side domain.OrderSide, qty, price, fees string) domain.TradeRecord {
	return domain.TradeRecord{
		ID:        id,
		Timestamp: ts,
		Ticker:    ticker,
		AssetType: domain.AssetStock,
		Side:      side,
		Quantity:  d(qty),
		Price:     d(price),
		Fees:      d(fees),
		Currency:  "USD",
	}
}

var t0 = time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)

func TestMatchFIFOPartialFill(t *testing.T) {
	trades := []domain.TradeRecord{
		stockTrade(1, t0, "AAPL", domain.Buy, "10", "100", "0"),
		stockTrade(2, t0.Add(time.Hour), "AAPL", domain.Buy, "5", "110", "0"),
		stockTrade(3, t0.Add(2*time.Hour), "AAPL", domain.Sell, "12", "120", "0"),
	}

	res := Match(trades)

	if len(res.Rejected) != 0 {
		t.Fatalf("Expected no rejected trades, got %d", len(res.Rejected))
	}
	if len(res.Events) != 2 {
		t.Fatalf("Expected 2 realized events, got %d", len(res.Events))
	}

	first := res.Events[0]
	if !first.Quantity.Equal(d("10")) || !first.EntryPrice.Equal(d("100")) || !first.ExitPrice.Equal(d("120")) {
		t.Errorf("First event should close the oldest lot fully: got qty=%s entry=%s exit=%s",
			first.Quantity, first.EntryPrice, first.ExitPrice)
	}
	if !first.PNL.Equal(d("200")) {
		t.Errorf("Expected first event PNL 200, got %s", first.PNL)
	}
	if first.OpenTradeID != 1 || first.CloseTradeID != 3 {
		t.Errorf("Expected event to link trades 1 and 3, got %d and %d", first.OpenTradeID, first.CloseTradeID)
	}

	second := res.Events[1]
	if !second.Quantity.Equal(d("2")) || !second.EntryPrice.Equal(d("110")) {
		t.Errorf("Second event should take 2 units from the newer lot: got qty=%s entry=%s",
			second.Quantity, second.EntryPrice)
	}
	if !second.PNL.Equal(d("20")) {
		t.Errorf("Expected second event PNL 20, got %s", second.PNL)
	}

	if len(res.OpenLots) != 1 {
		t.Fatalf("Expected 1 open lot, got %d", len(res.OpenLots))
	}
	lot := res.OpenLots[0]
	if !lot.Quantity.Equal(d("3")) || !lot.CostBasis().Equal(d("110")) {
		t.Errorf("Expected 3 units open at cost 110, got %s at %s", lot.Quantity, lot.CostBasis())
	}
	if lot.Direction != domain.Long {
		t.Errorf("Expected remaining lot to be long, got %s", lot.Direction)
	}
}

func TestMatchPositionFlip(t *testing.T) {
	trades := []domain.TradeRecord{
		stockTrade(1, t0, "TSLA", domain.Buy, "5", "100", "0"),
		stockTrade(2, t0.Add(time.Hour), "TSLA", domain.Sell, "8", "110", "0"),
	}

	res := Match(trades)

	if len(res.Events) != 1 {
		t.Fatalf("Expected 1 realized event, got %d", len(res.Events))
	}
	if !res.Events[0].Quantity.Equal(d("5")) || !res.Events[0].PNL.Equal(d("50")) {
		t.Errorf("Expected matched 5 units with PNL 50, got %s with %s",
			res.Events[0].Quantity, res.Events[0].PNL)
	}

	if len(res.OpenLots) != 1 {
		t.Fatalf("Expected the excess to open a short lot, got %d lots", len(res.OpenLots))
	}
	lot := res.OpenLots[0]
	if lot.Direction != domain.Short {
		t.Errorf("Expected flipped lot to be short, got %s", lot.Direction)
	}
	if !lot.Quantity.Equal(d("3")) || !lot.Price.Equal(d("110")) {
		t.Errorf("Expected 3 units short at 110, got %s at %s", lot.Quantity, lot.Price)
	}
	if lot.TradeID != 2 {
		t.Errorf("Expected flipped lot to reference the closing trade, got trade %d", lot.TradeID)
	}
}

func TestMatchShortOpenAndCover(t *testing.T) {
	// Selling with no open lots opens a short position, not an error.
	trades := []domain.TradeRecord{
		stockTrade(1, t0, "GME", domain.Sell, "10", "50", "0"),
		stockTrade(2, t0.Add(24*time.Hour), "GME", domain.Buy, "10", "40", "0"),
	}

	res := Match(trades)

	if len(res.Events) != 1 {
		t.Fatalf("Expected 1 realized event, got %d", len(res.Events))
	}
	ev := res.Events[0]
	if ev.Direction != domain.Short {
		t.Errorf("Expected a short-side event, got %s", ev.Direction)
	}
	// Short P&L: (40 - 50) * -1 * 10 = 100.
	if !ev.PNL.Equal(d("100")) {
		t.Errorf("Expected short cover PNL 100, got %s", ev.PNL)
	}
	if len(res.OpenLots) != 0 {
		t.Errorf("Expected no open lots after full cover, got %d", len(res.OpenLots))
	}
}

func TestMatchFeesProRata(t *testing.T) {
	// Entry fee 10 over 10 units, exit fee 5 over 5 units. Closing half the
	// lot carries half the entry fee and the full exit fee.
	trades := []domain.TradeRecord{
		stockTrade(1, t0, "MSFT", domain.Buy, "10", "100", "10"),
		stockTrade(2, t0.Add(time.Hour), "MSFT", domain.Sell, "5", "120", "5"),
	}

	res := Match(trades)

	if len(res.Events) != 1 {
		t.Fatalf("Expected 1 realized event, got %d", len(res.Events))
	}
	ev := res.Events[0]
	if !ev.Fees.Equal(d("10")) {
		t.Errorf("Expected 10 allocated fees (5 entry + 5 exit), got %s", ev.Fees)
	}
	// (120-100)*5 - 5 - 5 = 90.
	if !ev.PNL.Equal(d("90")) {
		t.Errorf("Expected PNL 90 net of fees, got %s", ev.PNL)
	}

	if len(res.OpenLots) != 1 {
		t.Fatalf("Expected 1 open lot, got %d", len(res.OpenLots))
	}
	if !res.OpenLots[0].CostBasis().Equal(d("101")) {
		t.Errorf("Expected remaining cost basis 101 (100 + 1 fee/unit), got %s", res.OpenLots[0].CostBasis())
	}
}

func TestMatchOptionSeriesAreDistinctInstruments(t *testing.T) {
	exp := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
	optTrade := func(id int64, ts time.Time, side domain.OrderSide, qty, price, strike string) domain.TradeRecord {
		tr := stockTrade(id, ts, "SPY", side, qty, price, "0")
		tr.AssetType = domain.AssetOption
		tr.OptionType = domain.Call
		tr.Strike = d(strike)
		tr.ExpirationDate = exp
		return tr
	}

	// Selling the 450 strike must not close the 440 strike lot.
	trades := []domain.TradeRecord{
		optTrade(1, t0, domain.Buy, "2", "5", "440"),
		optTrade(2, t0.Add(time.Hour), domain.Sell, "2", "7", "450"),
		optTrade(3, t0.Add(2*time.Hour), domain.Sell, "2", "8", "440"),
	}

	res := Match(trades)

	if len(res.Events) != 1 {
		t.Fatalf("Expected 1 realized event (440 strike only), got %d", len(res.Events))
	}
	// (8-5)*2 = 6, matched by contract count like stock.
	if !res.Events[0].PNL.Equal(d("6")) {
		t.Errorf("Expected option PNL 6, got %s", res.Events[0].PNL)
	}
	if len(res.OpenLots) != 1 {
		t.Fatalf("Expected the 450 strike sell to stay open as a short lot, got %d lots", len(res.OpenLots))
	}
	if res.OpenLots[0].Direction != domain.Short || res.OpenLots[0].TradeID != 2 {
		t.Errorf("Unexpected open lot: %+v", res.OpenLots[0])
	}
}

func TestMatchRejectsInvalidRecordAndContinues(t *testing.T) {
	bad := stockTrade(2, t0.Add(time.Minute), "AAPL", domain.Buy, "10", "100", "0")
	bad.Quantity = d("0")

	trades := []domain.TradeRecord{
		stockTrade(1, t0, "AAPL", domain.Buy, "10", "100", "0"),
		bad,
		stockTrade(3, t0.Add(time.Hour), "AAPL", domain.Sell, "10", "105", "0"),
	}

	res := Match(trades)

	if len(res.Rejected) != 1 {
		t.Fatalf("Expected 1 rejected trade, got %d", len(res.Rejected))
	}
	if !errors.Is(res.Rejected[0].Err, domain.ErrInvalidTrade) {
		t.Errorf("Expected ErrInvalidTrade, got %v", res.Rejected[0].Err)
	}
	if len(res.Events) != 1 {
		t.Fatalf("Expected matching to continue past the bad record, got %d events", len(res.Events))
	}
	if !res.Events[0].PNL.Equal(d("50")) {
		t.Errorf("Expected PNL 50 from the valid pair, got %s", res.Events[0].PNL)
	}
}

func TestMatchInputOrderIrrelevant(t *testing.T) {
	trades := []domain.TradeRecord{
		stockTrade(1, t0, "AAPL", domain.Buy, "10", "100", "2"),
		stockTrade(2, t0.Add(time.Hour), "NVDA", domain.Buy, "4", "800", "1"),
		stockTrade(3, t0.Add(2*time.Hour), "AAPL", domain.Sell, "6", "105", "1"),
		stockTrade(4, t0.Add(3*time.Hour), "NVDA", domain.Sell, "4", "790", "1"),
	}

	reversed := make([]domain.TradeRecord, len(trades))
	for i, tr := range trades {
		reversed[len(trades)-1-i] = tr
	}

	a := Match(trades)
	b := Match(reversed)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("Matching must be invariant under input reordering:\n%+v\nvs\n%+v", a, b)
	}
}

func TestMatchTimestampTieBrokenByID(t *testing.T) {
	// Two buys at the same instant: the lower id must be the older lot.
	trades := []domain.TradeRecord{
		stockTrade(2, t0, "AAPL", domain.Buy, "5", "110", "0"),
		stockTrade(1, t0, "AAPL", domain.Buy, "5", "100", "0"),
		stockTrade(3, t0.Add(time.Hour), "AAPL", domain.Sell, "5", "120", "0"),
	}

	res := Match(trades)

	if len(res.Events) != 1 {
		t.Fatalf("Expected 1 realized event, got %d", len(res.Events))
	}
	if res.Events[0].OpenTradeID != 1 {
		t.Errorf("Expected trade 1 (lower id) to be matched first, got trade %d", res.Events[0].OpenTradeID)
	}
	if !res.Events[0].EntryPrice.Equal(d("100")) {
		t.Errorf("Expected entry price 100 from trade 1, got %s", res.Events[0].EntryPrice)
	}
}
