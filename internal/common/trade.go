package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade is an immutable fill record. The same Trade value is appended to
// both the taker's and the maker's Trades slice and to the engine's trade
// log; it never references either order directly so it can be shared
// freely without aliasing concerns.
type Trade struct {
	ID        string
	Price     decimal.Decimal // always the maker's (resting) price
	Amount    decimal.Decimal
	Timestamp time.Time
}

// NewTrade builds a Trade at the maker's price, stamped with the taker's
// CreateTime.
func NewTrade(price, amount decimal.Decimal, timestamp time.Time) Trade {
	return Trade{
		ID:        uuid.New().String(),
		Price:     price,
		Amount:    amount,
		Timestamp: timestamp,
	}
}

func (t Trade) String() string {
	return fmt.Sprintf(
		`ID:        %s
Price:     %s
Amount:    %s
Timestamp: %s`,
		t.ID,
		t.Price,
		t.Amount,
		t.Timestamp.Format(time.RFC3339),
	)
}
