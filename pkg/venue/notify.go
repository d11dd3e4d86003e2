package venue

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountUpdate is the payload pushed to a participant after something they
// care about happened: their current ledger, their resident orders and a
// human-readable summary.
type AccountUpdate struct {
	Account AccountSnapshot `json:"account"`
	Orders  []OrderSnapshot `json:"orders"`
	Message string          `json:"message"`
}

// Notifier delivers account updates to connected participants. Delivery is
// fire-and-forget: a failed or dropped send never affects venue state.
type Notifier interface {
	Notify(accountID string, update AccountUpdate)
}

func (v *Venue) deliver(updates []AccountUpdate) {
	if v.notifier == nil {
		return
	}
	for _, u := range updates {
		v.notifier.Notify(u.Account.ID, u)
	}
}

// accountUpdate snapshots an account and its orders. Lock held by caller.
func (v *Venue) accountUpdate(a *Account, message string) AccountUpdate {
	return AccountUpdate{
		Account: snapshotAccount(a),
		Orders:  v.ordersOf(a),
		Message: message,
	}
}

func tradeMessage(verb string, shares int64, symbol string, notional decimal.Decimal) string {
	if shares == 1 {
		return fmt.Sprintf("You %s 1 share of %s for %s!", verb, symbol, monetize(notional))
	}
	return fmt.Sprintf("You %s %d shares of %s for %s!", verb, shares, symbol, monetize(notional))
}

func monetize(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
