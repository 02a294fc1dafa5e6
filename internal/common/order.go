package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side is the direction of an order: buy (bid) or sell (ask).
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Mul is a sign(side)*x helper: buy is +x, sell is -x. It lets the cross
// predicate in the matching engine treat both sides with one expression
// instead of a switch.
func (s Side) Mul(x decimal.Decimal) decimal.Decimal {
	if s == Buy {
		return x
	}
	return x.Neg()
}

// OrderType enumerates the order taxonomy this core accepts. LimitOrder is
// the only variant implemented; the type exists so the taxonomy is
// extensible without breaking callers.
type OrderType int

const (
	LimitOrder OrderType = iota
)

func (t OrderType) String() string {
	switch t {
	case LimitOrder:
		return "limit_order"
	default:
		return "unknown_order_type"
	}
}

// Order is an identity-immutable envelope plus mutable fill state. Apart
// from a zero CreateTime being stamped once on submission, only Trades
// (append-only) and Canceled may change after construction;
// Dealt/Remaining/Completed are always recomputed from Trades so they can
// never drift out of sync with the fill history.
type Order struct {
	ID        string
	UserID    *string // nil denotes an anonymous/house order
	Symbol    string
	Side      Side
	OrderType OrderType
	Size      decimal.Decimal
	Price     decimal.Decimal // meaningful for priced (limit) orders only

	CreateTime time.Time
	Canceled   *time.Time

	Trades []Trade
}

// NewLimitOrder constructs an unresolved limit order. CreateTime is left
// zero-valued so the venue coordinator can stamp it inside its critical
// section; a caller that needs a specific arrival time (tests building a
// deterministic sequence) may set it directly before submission.
func NewLimitOrder(symbol string, side Side, size, price decimal.Decimal, userID *string) *Order {
	return &Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Symbol:    symbol,
		Side:      side,
		OrderType: LimitOrder,
		Size:      size,
		Price:     price,
	}
}

// Dealt is the cumulative filled amount across all trades.
func (o *Order) Dealt() decimal.Decimal {
	total := decimal.Zero
	for _, t := range o.Trades {
		total = total.Add(t.Amount)
	}
	return total
}

// Remaining is the unfilled portion of Size. For a well-formed order,
// 0 <= Dealt <= Size, so Remaining never goes negative.
func (o *Order) Remaining() decimal.Decimal {
	return o.Size.Sub(o.Dealt())
}

// Completed reports whether the order has been fully filled.
func (o *Order) Completed() bool {
	return o.Dealt().Equal(o.Size)
}

// IsCanceled reports whether the order was explicitly canceled, regardless
// of how much of it had been filled at that point.
func (o *Order) IsCanceled() bool {
	return o.Canceled != nil
}

func (o *Order) String() string {
	canceled := "no"
	if o.Canceled != nil {
		canceled = o.Canceled.Format(time.RFC3339)
	}
	owner := "house"
	if o.UserID != nil {
		owner = *o.UserID
	}
	return fmt.Sprintf(
		`ID:         %s
Symbol:     %s
Side:       %s
OrderType:  %s
Size:       %s
Price:      %s
Dealt:      %s
CreateTime: %s
Canceled:   %s
Owner:      %s`,
		o.ID,
		o.Symbol,
		o.Side,
		o.OrderType,
		o.Size,
		o.Price,
		o.Dealt(),
		o.CreateTime.Format(time.RFC3339),
		canceled,
		owner,
	)
}
