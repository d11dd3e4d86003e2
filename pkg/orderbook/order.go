package orderbook

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

// Order is a resting limit order. Identity is immutable; Remaining is
// decremented on every fill and the order leaves its book at zero.
type Order struct {
	ID        string
	Symbol    string
	Side      Side
	Price     decimal.Decimal // quantized to 2 decimal places, >= 0.01
	Remaining int64
	AccountID string // empty for venue-seeded liquidity
	Created   time.Time
	Seq       uint64 // venue arrival sequence, breaks price ties
}

// Seeded reports whether the order is venue-owned liquidity. Seeded orders
// bypass affordability and inventory checks during matching.
func (o *Order) Seeded() bool {
	return o.AccountID == ""
}
