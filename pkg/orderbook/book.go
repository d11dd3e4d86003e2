package orderbook

// OrderBook tracks which orders are resident for one symbol. It keeps
// membership only, in arrival order; the matching pass rebuilds and sorts
// its own views each invocation, so no sorted structure is maintained here.
type OrderBook struct {
	symbol   string
	orderIDs []string
}

func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{symbol: symbol}
}

func (b *OrderBook) Symbol() string {
	return b.symbol
}

func (b *OrderBook) Len() int {
	return len(b.orderIDs)
}

// Add inserts an order id. A duplicate id means the caller's bookkeeping is
// wrong; it is reported, never silently absorbed.
func (b *OrderBook) Add(orderID string) error {
	for _, id := range b.orderIDs {
		if id == orderID {
			return ErrDuplicateOrder
		}
	}
	b.orderIDs = append(b.orderIDs, orderID)
	return nil
}

// Remove deletes an order id, preserving arrival order of the rest.
func (b *OrderBook) Remove(orderID string) error {
	for i, id := range b.orderIDs {
		if id == orderID {
			b.orderIDs = append(b.orderIDs[:i], b.orderIDs[i+1:]...)
			return nil
		}
	}
	return ErrOrderNotFound
}

// OrderIDs returns resident order ids in arrival order. The slice is a copy;
// callers may not mutate book membership through it.
func (b *OrderBook) OrderIDs() []string {
	ids := make([]string, len(b.orderIDs))
	copy(ids, b.orderIDs)
	return ids
}
