package venue

import (
	"time"

	"github.com/gammazero/deque"
	"github.com/shopspring/decimal"
)

// TapeEntry is one executed trade on a symbol's recent-trade tape.
type TapeEntry struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Shares int64           `json:"shares"`
	Time   time.Time       `json:"time"`
}

// recordTrade appends to the symbol's bounded tape. Lock held by caller.
func (v *Venue) recordTrade(symbol string, price decimal.Decimal, shares int64, at time.Time) {
	tape := v.tapes[symbol]
	if tape == nil {
		tape = &deque.Deque[TapeEntry]{}
		v.tapes[symbol] = tape
	}
	tape.PushBack(TapeEntry{
		Symbol: symbol,
		Price:  price,
		Shares: shares,
		Time:   at,
	})
	for tape.Len() > v.cfg.TapeDepth {
		tape.PopFront()
	}
}

// RecentTrades returns the symbol's tape, oldest first.
func (v *Venue) RecentTrades(symbol string) []TapeEntry {
	v.mu.Lock()
	defer v.mu.Unlock()

	tape := v.tapes[normalizeSymbol(symbol)]
	if tape == nil {
		return nil
	}
	out := make([]TapeEntry, tape.Len())
	for i := 0; i < tape.Len(); i++ {
		out[i] = tape.At(i)
	}
	return out
}
