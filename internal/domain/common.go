package domain

// AssetType distinguishes the two instrument kinds the journal tracks.
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetOption AssetType = "option"
)

// OrderSide represents the side of an executed fill (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// OptionType represents the contract type of an option series.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// Direction indicates whether a lot was held long or short.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Sign returns +1 for long and -1 for short, the multiplier applied to
// (exit - entry) when realizing P&L.
func (d Direction) Sign() int64 {
	if d == Short {
		return -1
	}
	return 1
}
