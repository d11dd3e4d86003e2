package venue

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/exchange-venue/pkg/orderbook"
	"github.com/joripage/exchange-venue/pkg/quote"
)

type Config struct {
	// InitialCash is the endowment of every account created on first contact.
	InitialCash decimal.Decimal
	// TradeCap bounds the share count of a single trade.
	TradeCap int64
	// TapeDepth bounds the per-symbol recent-trade tape.
	TapeDepth int
}

func DefaultConfig() Config {
	return Config{
		InitialCash: decimal.NewFromInt(100000),
		TradeCap:    5000,
		TapeDepth:   50,
	}
}

// Venue owns all venue state: accounts, order books, the order index and the
// trade tapes. Every public operation runs validate-mutate-match to
// completion under one mutex, so requests are serialized exactly like the
// reference behavior; notifications are delivered after the lock is
// released.
type Venue struct {
	cfg      Config
	notifier Notifier

	mu       sync.Mutex
	accounts map[string]*Account
	books    map[string]*orderbook.OrderBook
	orders   map[string]*orderbook.Order
	profiles map[string]quote.Quote
	tapes    map[string]*deque.Deque[TapeEntry]
	seq      uint64
}

func New(cfg Config) *Venue {
	if cfg.InitialCash.IsZero() {
		cfg.InitialCash = DefaultConfig().InitialCash
	}
	if cfg.TradeCap <= 0 {
		cfg.TradeCap = DefaultConfig().TradeCap
	}
	if cfg.TapeDepth <= 0 {
		cfg.TapeDepth = DefaultConfig().TapeDepth
	}
	return &Venue{
		cfg:      cfg,
		accounts: make(map[string]*Account),
		books:    make(map[string]*orderbook.OrderBook),
		orders:   make(map[string]*orderbook.Order),
		profiles: make(map[string]quote.Quote),
		tapes:    make(map[string]*deque.Deque[TapeEntry]),
	}
}

// SetNotifier wires the delivery side-channel. Must be called before the
// venue starts taking requests.
func (v *Venue) SetNotifier(n Notifier) {
	v.notifier = n
}

// OrderRequest is a participant's intent to trade, before validation.
type OrderRequest struct {
	Symbol string
	Side   string
	Shares int64
	Price  decimal.Decimal
}

// OrderSnapshot is a read-only copy of a resident (or just-placed) order.
type OrderSnapshot struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Side      orderbook.Side  `json:"side"`
	Shares    int64           `json:"shares"`
	Price     decimal.Decimal `json:"price"`
	AccountID string          `json:"account_id,omitempty"`
	Created   time.Time       `json:"created"`
}

// CreateAccount registers a new participant with the configured endowment.
func (v *Venue) CreateAccount() AccountSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	a := newAccount(uuid.New().String(), v.cfg.InitialCash, time.Now())
	v.accounts[a.ID] = a
	zap.S().Infow("account created", "account_id", a.ID)
	return snapshotAccount(a)
}

// Authenticate resolves an opaque account token to the account it denotes.
func (v *Venue) Authenticate(accountID string) (AccountSnapshot, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	a, ok := v.accounts[accountID]
	if !ok {
		return AccountSnapshot{}, false
	}
	return snapshotAccount(a), true
}

// PlaceOrder validates the request, rests the order and drains every cross
// it created. An empty accountID places unowned venue liquidity; callers
// outside the venue always pass a real account. The returned snapshot
// reflects any fills the order took on the way in; a fully filled order
// comes back with zero shares and is no longer resident.
func (v *Venue) PlaceOrder(accountID string, req OrderRequest) (OrderSnapshot, error) {
	snap, updates, err := v.placeOrder(accountID, req)
	if err != nil {
		return OrderSnapshot{}, err
	}
	v.deliver(updates)
	return snap, nil
}

func (v *Venue) placeOrder(accountID string, req OrderRequest) (OrderSnapshot, []AccountUpdate, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var owner *Account
	if accountID != "" {
		var ok bool
		owner, ok = v.accounts[accountID]
		if !ok {
			return OrderSnapshot{}, nil, ErrUnauthorized
		}
	}

	symbol := normalizeSymbol(req.Symbol)
	// any order must involve a symbol that has been looked up before
	if _, ok := v.books[symbol]; !ok {
		return OrderSnapshot{}, nil, ErrUnknownSymbol
	}

	side := orderbook.Side(strings.ToUpper(req.Side))
	if side != orderbook.BUY && side != orderbook.SELL {
		return OrderSnapshot{}, nil, ErrInvalidSide
	}

	if req.Shares < 1 {
		return OrderSnapshot{}, nil, ErrInvalidQuantity
	}

	if owner != nil && side == orderbook.SELL && owner.Holdings[symbol] < req.Shares {
		return OrderSnapshot{}, nil, ErrInsufficientShares
	}

	price := req.Price.Round(2)
	if price.LessThan(minPrice) {
		return OrderSnapshot{}, nil, ErrInvalidPrice
	}

	ord := v.insertOrder(owner, symbol, side, req.Shares, price)
	zap.S().Infow("order placed",
		"order_id", ord.ID, "symbol", symbol, "side", side,
		"shares", req.Shares, "price", price, "account_id", accountID)

	updates := v.matchSymbol(symbol)
	return snapshotOrder(ord), updates, nil
}

// minPrice is one cent, the venue's price floor after quantization.
var minPrice = decimal.New(1, -2)

// insertOrder creates the order and registers it with the order index, the
// symbol's book and (when owned) the owner's order set. Lock held by caller.
func (v *Venue) insertOrder(owner *Account, symbol string, side orderbook.Side, shares int64, price decimal.Decimal) *orderbook.Order {
	v.seq++
	ord := &orderbook.Order{
		ID:        uuid.New().String(),
		Symbol:    symbol,
		Side:      side,
		Price:     price,
		Remaining: shares,
		Created:   time.Now(),
		Seq:       v.seq,
	}
	if owner != nil {
		ord.AccountID = owner.ID
	}

	v.orders[ord.ID] = ord
	if err := v.books[symbol].Add(ord.ID); err != nil {
		panic(fmt.Sprintf("venue: book %s rejected fresh order: %v", symbol, err))
	}
	if owner != nil {
		owner.orderIDs = append(owner.orderIDs, ord.ID)
	}
	return ord
}

// CancelOrder removes a resident order. Only the owning account may cancel;
// a missing order and a foreign order are indistinguishable to the caller.
func (v *Venue) CancelOrder(orderID, accountID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	owner, ok := v.accounts[accountID]
	if !ok {
		return ErrUnauthorized
	}
	ord, ok := v.orders[orderID]
	if !ok || ord.AccountID != accountID {
		return ErrUnauthorized
	}

	v.retireOrder(ord)
	zap.S().Infow("order cancelled", "order_id", orderID, "account_id", owner.ID)
	return nil
}

// GetOrders returns the account's resident orders.
func (v *Venue) GetOrders(accountID string) ([]OrderSnapshot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	a, ok := v.accounts[accountID]
	if !ok {
		return nil, ErrUnauthorized
	}
	return v.ordersOf(a), nil
}

// SeedFromQuote records the symbol's latest provider profile and, the first
// time a symbol is seen, gives its fresh book initial depth: one unowned
// sell at the ask and one unowned buy at the bid, each only when the quote
// carries a positive size and a price of at least one cent. Seeding rests
// orders without draining; seeded liquidity only ever trades as the
// counterparty of a real order.
func (v *Venue) SeedFromQuote(symbol string, q *quote.Quote) {
	v.mu.Lock()
	defer v.mu.Unlock()

	sym := normalizeSymbol(symbol)
	v.profiles[sym] = *q

	if _, ok := v.books[sym]; ok {
		return
	}
	v.books[sym] = orderbook.NewOrderBook(sym)
	zap.S().Infow("symbol listed", "symbol", sym, "name", q.Name)

	if ask := q.Ask.Round(2); q.AskSize > 0 && ask.GreaterThanOrEqual(minPrice) {
		v.insertOrder(nil, sym, orderbook.SELL, q.AskSize, ask)
	}
	if bid := q.Bid.Round(2); q.BidSize > 0 && bid.GreaterThanOrEqual(minPrice) {
		v.insertOrder(nil, sym, orderbook.BUY, q.BidSize, bid)
	}
}

// Profile returns the latest provider snapshot for a symbol.
func (v *Venue) Profile(symbol string) (quote.Quote, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	q, ok := v.profiles[normalizeSymbol(symbol)]
	return q, ok
}

// SymbolOrders returns every resident order for a symbol, arrival order.
func (v *Venue) SymbolOrders(symbol string) ([]OrderSnapshot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	book, ok := v.books[normalizeSymbol(symbol)]
	if !ok {
		return nil, ErrUnknownSymbol
	}
	out := make([]OrderSnapshot, 0, book.Len())
	for _, id := range book.OrderIDs() {
		out = append(out, snapshotOrder(v.mustOrder(id)))
	}
	return out, nil
}

// retireOrder removes an order from the index, its book and its owner's
// order set. Lock held by caller.
func (v *Venue) retireOrder(ord *orderbook.Order) {
	if err := v.books[ord.Symbol].Remove(ord.ID); err != nil {
		panic(fmt.Sprintf("venue: book %s lost order %s: %v", ord.Symbol, ord.ID, err))
	}
	delete(v.orders, ord.ID)
	if ord.AccountID != "" {
		if owner, ok := v.accounts[ord.AccountID]; ok {
			owner.removeOrderID(ord.ID)
		}
	}
}

func (v *Venue) ordersOf(a *Account) []OrderSnapshot {
	out := make([]OrderSnapshot, 0, len(a.orderIDs))
	for _, id := range a.orderIDs {
		out = append(out, snapshotOrder(v.mustOrder(id)))
	}
	return out
}

// mustOrder resolves an order id that is referenced by venue bookkeeping.
// A dangling reference means the index is corrupted.
func (v *Venue) mustOrder(id string) *orderbook.Order {
	ord, ok := v.orders[id]
	if !ok {
		panic(fmt.Sprintf("venue: order index missing %s", id))
	}
	return ord
}

func snapshotOrder(o *orderbook.Order) OrderSnapshot {
	return OrderSnapshot{
		ID:        o.ID,
		Symbol:    o.Symbol,
		Side:      o.Side,
		Shares:    o.Remaining,
		Price:     o.Price,
		AccountID: o.AccountID,
		Created:   o.Created,
	}
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
