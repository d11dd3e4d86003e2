package gateway

import (
	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-venue/pkg/quote"
	"github.com/joripage/exchange-venue/pkg/venue"
)

// clientRequest is the single inbound envelope. Op selects the operation;
// the other fields are op-specific.
type clientRequest struct {
	Op        string        `json:"op"` // hello | lookup | order | cancel
	AccountID string        `json:"account_id,omitempty"`
	Symbol    string        `json:"symbol,omitempty"`
	OrderID   string        `json:"order_id,omitempty"`
	Order     *orderPayload `json:"order,omitempty"`
}

type orderPayload struct {
	Symbol string          `json:"symbol"`
	Side   string          `json:"side"`
	Shares int64           `json:"shares"`
	Price  decimal.Decimal `json:"price"`
}

type helloResponse struct {
	Type    string                `json:"type"` // "hello"
	Account venue.AccountSnapshot `json:"account"`
	Orders  []venue.OrderSnapshot `json:"orders"`
	Message string                `json:"message,omitempty"`
}

type lookupResponse struct {
	Type    string                `json:"type"` // "lookup"
	Symbol  string                `json:"symbol"`
	Profile quote.Quote           `json:"profile"`
	Orders  []venue.OrderSnapshot `json:"orders"`
	Trades  []venue.TapeEntry     `json:"trades"`
}

type orderResponse struct {
	Type    string                `json:"type"` // "order"
	Order   venue.OrderSnapshot   `json:"order"`
	Account venue.AccountSnapshot `json:"account"`
	Orders  []venue.OrderSnapshot `json:"orders"`
}

// accountMessage carries both cancel confirmations and the venue's trade
// notifications.
type accountMessage struct {
	Type    string                `json:"type"` // "account"
	Account venue.AccountSnapshot `json:"account"`
	Orders  []venue.OrderSnapshot `json:"orders"`
	Message string                `json:"message"`
}

type problemResponse struct {
	Type    string `json:"type"` // "problem"
	Message string `json:"message"`
}
