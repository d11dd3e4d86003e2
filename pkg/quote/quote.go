package quote

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Quote is a provider snapshot of one symbol: best bid/ask with sizes plus
// the listing name. Zero sizes or zero prices mean that side is unusable.
type Quote struct {
	Symbol  string          `json:"symbol"`
	Name    string          `json:"name"`
	Bid     decimal.Decimal `json:"bid"`
	BidSize int64           `json:"bidsize"`
	Ask     decimal.Decimal `json:"ask"`
	AskSize int64           `json:"asksize"`
}

// ErrUnavailable is returned when the provider cannot serve a quote, whether
// from transport failure or a provider-side error payload.
var ErrUnavailable = errors.New("quote unavailable")

type Client interface {
	Fetch(ctx context.Context, symbol string) (*Quote, error)
}

// NormalizeSymbol maps user input to the canonical ticker form: trimmed and
// uppercased. Every provider call and cache key goes through this, so "acme"
// and "ACME" are the same symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
