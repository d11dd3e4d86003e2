package venue

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-venue/pkg/orderbook"
	"github.com/joripage/exchange-venue/pkg/quote"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newTestVenue(initialCash string) *Venue {
	return New(Config{InitialCash: d(initialCash)})
}

// listSymbol registers a symbol with optional one-sided seed liquidity.
func listSymbol(v *Venue, symbol string, askSize int64, ask string, bidSize int64, bid string) {
	v.SeedFromQuote(symbol, &quote.Quote{
		Symbol:  symbol,
		Name:    symbol + " Inc",
		Ask:     d(ask),
		AskSize: askSize,
		Bid:     d(bid),
		BidSize: bidSize,
	})
}

func TestSeededSellThenBuy(t *testing.T) {
	v := newTestVenue("1000")
	listSymbol(v, "ACME", 100, "10.00", 0, "0")
	x := v.CreateAccount()

	snap, err := v.PlaceOrder(x.ID, OrderRequest{Symbol: "ACME", Side: "buy", Shares: 50, Price: d("10.00")})
	if err != nil {
		t.Fatalf("place buy: %v", err)
	}
	if snap.Shares != 0 {
		t.Errorf("buy order should fill completely, %d shares left", snap.Shares)
	}

	after, _ := v.Authenticate(x.ID)
	if !after.Cash.Equal(d("500")) {
		t.Errorf("expected $500.00 cash, got %s", after.Cash)
	}
	if after.Holdings["ACME"] != 50 {
		t.Errorf("expected 50 shares held, got %d", after.Holdings["ACME"])
	}

	resident, err := v.SymbolOrders("ACME")
	if err != nil {
		t.Fatalf("symbol orders: %v", err)
	}
	if len(resident) != 1 || resident[0].Side != orderbook.SELL || resident[0].Shares != 50 {
		t.Errorf("expected resting sell of 50, got %+v", resident)
	}

	tape := v.RecentTrades("ACME")
	if len(tape) != 1 || tape[0].Shares != 50 || !tape[0].Price.Equal(d("10.00")) {
		t.Errorf("expected one tape entry of 50 @ 10.00, got %+v", tape)
	}
}

func TestSellWithoutShares(t *testing.T) {
	v := newTestVenue("1000")
	listSymbol(v, "ACME", 0, "0", 0, "0")
	x := v.CreateAccount()

	_, err := v.PlaceOrder(x.ID, OrderRequest{Symbol: "ACME", Side: "sell", Shares: 10, Price: d("10.00")})
	if !errors.Is(err, ErrInsufficientShares) {
		t.Errorf("expected ErrInsufficientShares, got %v", err)
	}
}

func TestAffordabilityCapsTrade(t *testing.T) {
	v := newTestVenue("5")
	listSymbol(v, "ACME", 100, "1.00", 0, "0")
	x := v.CreateAccount()

	snap, err := v.PlaceOrder(x.ID, OrderRequest{Symbol: "ACME", Side: "BUY", Shares: 100, Price: d("1.00")})
	if err != nil {
		t.Fatalf("place buy: %v", err)
	}
	// only 5 affordable; the buy rests with the remainder
	if snap.Shares != 95 {
		t.Errorf("expected 95 shares resting, got %d", snap.Shares)
	}

	after, _ := v.Authenticate(x.ID)
	if !after.Cash.Equal(decimal.Zero) {
		t.Errorf("expected $0.00 cash, got %s", after.Cash)
	}
	if after.Holdings["ACME"] != 5 {
		t.Errorf("expected 5 shares held, got %d", after.Holdings["ACME"])
	}

	resident, _ := v.SymbolOrders("ACME")
	var sellLeft int64
	for _, o := range resident {
		if o.Side == orderbook.SELL {
			sellLeft = o.Shares
		}
	}
	if sellLeft != 95 {
		t.Errorf("expected resting sell of 95, got %d", sellLeft)
	}
}

func TestPriceTimePriority(t *testing.T) {
	v := newTestVenue("100000")
	listSymbol(v, "ACME", 100, "10.00", 0, "0")
	// second seed at the same price arrives later
	if _, err := v.PlaceOrder("", OrderRequest{Symbol: "ACME", Side: "SELL", Shares: 100, Price: d("10.00")}); err != nil {
		t.Fatalf("place second seed: %v", err)
	}

	first, _ := v.SymbolOrders("ACME")
	earlierID := first[0].ID

	x := v.CreateAccount()
	if _, err := v.PlaceOrder(x.ID, OrderRequest{Symbol: "ACME", Side: "BUY", Shares: 30, Price: d("10.00")}); err != nil {
		t.Fatalf("place buy: %v", err)
	}

	resident, _ := v.SymbolOrders("ACME")
	for _, o := range resident {
		if o.ID == earlierID && o.Shares != 70 {
			t.Errorf("earlier sell should fill first, has %d shares", o.Shares)
		}
		if o.ID != earlierID && o.Shares != 100 {
			t.Errorf("later sell should be untouched, has %d shares", o.Shares)
		}
	}
}

func TestSelfTradeSkipped(t *testing.T) {
	v := newTestVenue("10000")
	listSymbol(v, "ACME", 100, "10.00", 0, "0")
	x := v.CreateAccount()
	if _, err := v.PlaceOrder(x.ID, OrderRequest{Symbol: "ACME", Side: "BUY", Shares: 100, Price: d("10.00")}); err != nil {
		t.Fatalf("setup buy: %v", err)
	}

	// x now holds 100 shares; cross x's own sell with x's own buy
	if _, err := v.PlaceOrder(x.ID, OrderRequest{Symbol: "ACME", Side: "SELL", Shares: 50, Price: d("9.00")}); err != nil {
		t.Fatalf("place sell: %v", err)
	}
	if _, err := v.PlaceOrder(x.ID, OrderRequest{Symbol: "ACME", Side: "BUY", Shares: 50, Price: d("9.00")}); err != nil {
		t.Fatalf("place buy: %v", err)
	}

	after, _ := v.Authenticate(x.ID)
	if after.Holdings["ACME"] != 100 {
		t.Errorf("self-cross must not trade, holdings %d", after.Holdings["ACME"])
	}
	if len(after.Trades) != 1 {
		t.Errorf("expected only the setup trade, got %d", len(after.Trades))
	}

	orders, _ := v.GetOrders(x.ID)
	if len(orders) != 2 {
		t.Errorf("both orders should still rest (skipped, not cancelled), got %d", len(orders))
	}
}

func TestIdempotentDrain(t *testing.T) {
	v := newTestVenue("5")
	listSymbol(v, "ACME", 100, "1.00", 0, "0")
	x := v.CreateAccount()
	if _, err := v.PlaceOrder(x.ID, OrderRequest{Symbol: "ACME", Side: "BUY", Shares: 100, Price: d("1.00")}); err != nil {
		t.Fatalf("place buy: %v", err)
	}
	tapeLen := len(v.RecentTrades("ACME"))

	// the book still holds a nominal cross (buy 1.00 vs sell 1.00) that the
	// buyer cannot afford; a second drain must not produce trades
	v.mu.Lock()
	updates := v.matchSymbol("ACME")
	v.mu.Unlock()

	if len(updates) != 0 {
		t.Errorf("second drain produced %d updates", len(updates))
	}
	if got := len(v.RecentTrades("ACME")); got != tapeLen {
		t.Errorf("second drain grew the tape from %d to %d", tapeLen, got)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	v := newTestVenue("1000")
	listSymbol(v, "ACME", 0, "0", 0, "0")
	x := v.CreateAccount()

	cases := []struct {
		name string
		req  OrderRequest
		want error
	}{
		{"unknown symbol", OrderRequest{Symbol: "NOPE", Side: "BUY", Shares: 1, Price: d("1.00")}, ErrUnknownSymbol},
		{"invalid side", OrderRequest{Symbol: "ACME", Side: "HOLD", Shares: 1, Price: d("1.00")}, ErrInvalidSide},
		{"zero shares", OrderRequest{Symbol: "ACME", Side: "BUY", Shares: 0, Price: d("1.00")}, ErrInvalidQuantity},
		{"negative shares", OrderRequest{Symbol: "ACME", Side: "BUY", Shares: -5, Price: d("1.00")}, ErrInvalidQuantity},
		{"zero price", OrderRequest{Symbol: "ACME", Side: "BUY", Shares: 1, Price: d("0.00")}, ErrInvalidPrice},
		{"rounds below a cent", OrderRequest{Symbol: "ACME", Side: "BUY", Shares: 1, Price: d("0.004")}, ErrInvalidPrice},
	}
	for _, tc := range cases {
		if _, err := v.PlaceOrder(x.ID, tc.req); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if _, err := v.PlaceOrder("ghost", OrderRequest{Symbol: "ACME", Side: "BUY", Shares: 1, Price: d("1.00")}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("unknown account: expected ErrUnauthorized, got %v", err)
	}
}

func TestPriceQuantizesHalfUp(t *testing.T) {
	v := newTestVenue("1000")
	listSymbol(v, "ACME", 0, "0", 0, "0")
	x := v.CreateAccount()

	// $0.005 rounds up to the one-cent floor and is accepted
	snap, err := v.PlaceOrder(x.ID, OrderRequest{Symbol: "ACME", Side: "BUY", Shares: 1, Price: d("0.005")})
	if err != nil {
		t.Fatalf("place buy at 0.005: %v", err)
	}
	if !snap.Price.Equal(d("0.01")) {
		t.Errorf("expected price 0.01, got %s", snap.Price)
	}

	snap, err = v.PlaceOrder(x.ID, OrderRequest{Symbol: "ACME", Side: "BUY", Shares: 1, Price: d("10.999")})
	if err != nil {
		t.Fatalf("place buy at 10.999: %v", err)
	}
	if !snap.Price.Equal(d("11.00")) {
		t.Errorf("expected price 11.00, got %s", snap.Price)
	}
}

func TestCancelOrder(t *testing.T) {
	v := newTestVenue("1000")
	listSymbol(v, "ACME", 0, "0", 0, "0")
	x := v.CreateAccount()
	y := v.CreateAccount()

	snap, err := v.PlaceOrder(x.ID, OrderRequest{Symbol: "ACME", Side: "BUY", Shares: 10, Price: d("5.00")})
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if err := v.CancelOrder(snap.ID, y.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("foreign cancel: expected ErrUnauthorized, got %v", err)
	}
	if err := v.CancelOrder("missing", x.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("missing order: expected ErrUnauthorized, got %v", err)
	}
	if err := v.CancelOrder(snap.ID, x.ID); err != nil {
		t.Fatalf("owner cancel: %v", err)
	}

	orders, _ := v.GetOrders(x.ID)
	if len(orders) != 0 {
		t.Errorf("expected no resident orders after cancel, got %d", len(orders))
	}
	resident, _ := v.SymbolOrders("ACME")
	if len(resident) != 0 {
		t.Errorf("expected empty book after cancel, got %d", len(resident))
	}
}

func TestSeedOnlyOnFirstSight(t *testing.T) {
	v := newTestVenue("1000")
	listSymbol(v, "ACME", 100, "10.00", 50, "9.00")

	resident, _ := v.SymbolOrders("ACME")
	if len(resident) != 2 {
		t.Fatalf("expected 2 seed orders, got %d", len(resident))
	}

	// a later quote refreshes the profile but never re-seeds
	listSymbol(v, "ACME", 999, "12.00", 999, "11.00")
	resident, _ = v.SymbolOrders("ACME")
	if len(resident) != 2 {
		t.Errorf("re-lookup must not add liquidity, got %d orders", len(resident))
	}
	profile, ok := v.Profile("ACME")
	if !ok || !profile.Ask.Equal(d("12.00")) {
		t.Errorf("profile should refresh, got %+v", profile)
	}
}

func TestSeedSkipsUnusableSides(t *testing.T) {
	v := newTestVenue("1000")
	// zero ask size, bid below one cent: nothing seeds
	listSymbol(v, "ACME", 0, "10.00", 50, "0.001")

	resident, _ := v.SymbolOrders("ACME")
	if len(resident) != 0 {
		t.Errorf("expected no seed orders, got %+v", resident)
	}
}

func TestAuthenticate(t *testing.T) {
	v := newTestVenue("1000")
	x := v.CreateAccount()

	got, ok := v.Authenticate(x.ID)
	if !ok || got.ID != x.ID {
		t.Errorf("expected to resolve %s, got %+v ok=%v", x.ID, got, ok)
	}
	if !got.Cash.Equal(d("1000")) {
		t.Errorf("expected endowment 1000, got %s", got.Cash)
	}
	if _, ok := v.Authenticate("ghost"); ok {
		t.Error("unknown token must not resolve")
	}
}
