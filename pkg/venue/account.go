package venue

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-venue/pkg/orderbook"
)

// Account is one participant's ledger: cash, per-symbol holdings and the
// ordered trade history. Mutated only by the matching engine while the venue
// lock is held; cash and holdings can never go negative.
type Account struct {
	ID       string
	Cash     decimal.Decimal
	Holdings map[string]int64
	Trades   []TradeRecord
	Created  time.Time

	orderIDs []string
}

// TradeRecord is one ledger entry. Shares is signed: positive for a buy,
// negative for a sell.
type TradeRecord struct {
	Symbol string         `json:"symbol"`
	Time   time.Time      `json:"time"`
	Shares int64          `json:"shares"`
	Side   orderbook.Side `json:"side"`
}

func newAccount(id string, cash decimal.Decimal, at time.Time) *Account {
	return &Account{
		ID:       id,
		Cash:     cash,
		Holdings: make(map[string]int64),
		Created:  at,
	}
}

// applyBuy debits cash and credits holdings for one fill. The matching
// engine's quantity computation caps the fill at affordability, so an
// overdraft here means the engine is broken.
func (a *Account) applyBuy(symbol string, shares int64, notional decimal.Decimal, at time.Time) {
	a.Cash = a.Cash.Sub(notional)
	if a.Cash.IsNegative() {
		panic(fmt.Sprintf("venue: account %s cash negative after buy of %d %s", a.ID, shares, symbol))
	}
	a.Holdings[symbol] += shares
	a.Trades = append(a.Trades, TradeRecord{
		Symbol: symbol,
		Time:   at,
		Shares: shares,
		Side:   orderbook.BUY,
	})
}

// applySell credits cash and debits holdings for one fill. The engine caps
// the fill at the seller's inventory, so a short sale here means the engine
// is broken.
func (a *Account) applySell(symbol string, shares int64, notional decimal.Decimal, at time.Time) {
	a.Cash = a.Cash.Add(notional)
	a.Holdings[symbol] -= shares
	if a.Holdings[symbol] < 0 {
		panic(fmt.Sprintf("venue: account %s holdings negative after sell of %d %s", a.ID, shares, symbol))
	}
	a.Trades = append(a.Trades, TradeRecord{
		Symbol: symbol,
		Time:   at,
		Shares: -shares,
		Side:   orderbook.SELL,
	})
}

func (a *Account) removeOrderID(orderID string) {
	for i, id := range a.orderIDs {
		if id == orderID {
			a.orderIDs = append(a.orderIDs[:i], a.orderIDs[i+1:]...)
			return
		}
	}
}

// AccountSnapshot is a read-only copy of an account handed to callers and
// pushed over the notification channel.
type AccountSnapshot struct {
	ID       string           `json:"id"`
	Cash     decimal.Decimal  `json:"cash"`
	Holdings map[string]int64 `json:"holdings"`
	Trades   []TradeRecord    `json:"trades"`
	Created  time.Time        `json:"created"`
}

func snapshotAccount(a *Account) AccountSnapshot {
	holdings := make(map[string]int64, len(a.Holdings))
	for sym, n := range a.Holdings {
		if n != 0 {
			holdings[sym] = n
		}
	}
	trades := make([]TradeRecord, len(a.Trades))
	copy(trades, a.Trades)
	return AccountSnapshot{
		ID:       a.ID,
		Cash:     a.Cash,
		Holdings: holdings,
		Trades:   trades,
		Created:  a.Created,
	}
}
