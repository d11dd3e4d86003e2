package venue

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/exchange-venue/pkg/orderbook"
)

// matchSymbol drains every cross on one symbol: it rebuilds the buy and sell
// views from book membership, walks them best-first and trades until no buy
// price reaches a sell price. Orders, ledgers and the tape are mutated in
// place; the returned updates are delivered by the caller after the lock is
// released. Lock held by caller. Calling on a symbol with no orders is a
// no-op.
//
// Conventions carried from the reference behavior:
//   - the seller's limit price sets the trade price, unconditionally;
//   - a self-cross retires the buy from the pass and keeps the sell;
//   - a buyer who cannot afford one share at the current price is retired
//     from the pass, as is a seller whose inventory is exhausted.
//
// This is a full synchronous scan per invocation, not an incremental
// price-sorted structure; volumes here are small enough that correctness
// wins over micro-optimization.
func (v *Venue) matchSymbol(symbol string) []AccountUpdate {
	book, ok := v.books[symbol]
	if !ok || book.Len() == 0 {
		return nil
	}

	var buys, sells []*orderbook.Order
	for _, id := range book.OrderIDs() {
		ord := v.mustOrder(id)
		switch ord.Side {
		case orderbook.BUY:
			buys = append(buys, ord)
		case orderbook.SELL:
			sells = append(sells, ord)
		}
	}

	// best first: highest buy, cheapest sell; arrival order breaks ties so
	// earlier orders at a price keep priority
	sort.SliceStable(buys, func(i, j int) bool {
		if !buys[i].Price.Equal(buys[j].Price) {
			return buys[i].Price.GreaterThan(buys[j].Price)
		}
		return buys[i].Seq < buys[j].Seq
	})
	sort.SliceStable(sells, func(i, j int) bool {
		if !sells[i].Price.Equal(sells[j].Price) {
			return sells[i].Price.LessThan(sells[j].Price)
		}
		return sells[i].Seq < sells[j].Seq
	})

	var updates []AccountUpdate
	bi, si := 0, 0
	for bi < len(buys) && si < len(sells) && buys[bi].Price.GreaterThanOrEqual(sells[si].Price) {
		buy, sell := buys[bi], sells[si]
		buyer := v.ownerOf(buy)
		seller := v.ownerOf(sell)

		if buyer != nil && seller != nil && buyer.ID == seller.ID {
			// no trading with yourself; the buy sits out the rest of the pass
			bi++
			continue
		}

		price := sell.Price
		qty := v.cfg.TradeCap
		if buy.Remaining < qty {
			qty = buy.Remaining
		}
		if sell.Remaining < qty {
			qty = sell.Remaining
		}
		affordable := int64(-1)
		if buyer != nil {
			affordable = affordableShares(buyer.Cash, price)
			if affordable < qty {
				qty = affordable
			}
		}
		if seller != nil {
			if held := seller.Holdings[symbol]; held < qty {
				qty = held
			}
		}

		if qty > 0 {
			now := time.Now()
			buy.Remaining -= qty
			sell.Remaining -= qty
			if buy.Remaining == 0 {
				v.retireOrder(buy)
				bi++
			}
			if sell.Remaining == 0 {
				v.retireOrder(sell)
				si++
			}

			notional := price.Mul(decimal.NewFromInt(qty))
			if buyer != nil {
				buyer.applyBuy(symbol, qty, notional, now)
				updates = append(updates, v.accountUpdate(buyer, tradeMessage("bought", qty, symbol, notional)))
			}
			if seller != nil {
				seller.applySell(symbol, qty, notional, now)
				updates = append(updates, v.accountUpdate(seller, tradeMessage("sold", qty, symbol, notional)))
			}
			v.recordTrade(symbol, price, qty, now)
			zap.S().Infow("trade",
				"symbol", symbol, "price", price, "shares", qty,
				"buy_order", buy.ID, "sell_order", sell.ID)
		}

		// starved orders sit out the rest of the pass: a buyer priced out of
		// a single share, or a seller with no inventory left
		if buyer != nil && affordable == 0 {
			bi++
		}
		if seller != nil && sell.Remaining > 0 && seller.Holdings[symbol] == 0 {
			si++
		}
	}

	return updates
}

func (v *Venue) ownerOf(ord *orderbook.Order) *Account {
	if ord.Seeded() {
		return nil
	}
	a, ok := v.accounts[ord.AccountID]
	if !ok {
		panic("venue: order " + ord.ID + " owned by unknown account " + ord.AccountID)
	}
	return a
}

// affordableShares is floor(cash / price) computed in integer cents; both
// operands are quantized to 2 decimal places so the division is exact.
func affordableShares(cash, price decimal.Decimal) int64 {
	priceCents := price.Shift(2).IntPart()
	if priceCents <= 0 {
		panic("venue: non-positive price reached matching")
	}
	return cash.Shift(2).IntPart() / priceCents
}
