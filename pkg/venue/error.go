package venue

import "errors"

var (
	ErrUnknownSymbol      = errors.New("unknown symbol")
	ErrInvalidSide        = errors.New("order side must be BUY or SELL")
	ErrInvalidQuantity    = errors.New("shares must be a positive integer")
	ErrInvalidPrice       = errors.New("price must be at least 1 cent")
	ErrInsufficientShares = errors.New("cannot sell more shares than owned")
	ErrUnauthorized       = errors.New("unauthorized")
)
