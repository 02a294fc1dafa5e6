// Package book implements the side book: a price-time priority index over
// a symbol's open priced orders. Each tree entry is a single order keyed
// by the (rankPrice, createTime, orderID) triple, which is what lets
// Remove(order) (used by cancellation) be an O(log n) btree delete instead
// of a linear scan through a price level's orders.
package book

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	"pumpdump/internal/common"
)

// PriceLevel is an aggregated snapshot: the total remaining size resting
// at one price. Levels with zero aggregate are never produced.
type PriceLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// entry is the btree key: price ranked for the side's priority direction,
// then earliest create time, then order ID.
type entry struct {
	price      decimal.Decimal
	createTime time.Time
	orderID    string
}

// Side is one side of a symbol's book (Bids or Asks). It holds only keys;
// the actual Order records live in the shared open-orders map owned by the
// engine, so a Side never has ownership of an Order, only a relation to it
// by ID.
type Side struct {
	side common.Side
	tree *btree.BTreeG[entry]
	open map[string]*common.Order
}

// NewSide builds an empty side book. side determines the ranking direction
// (Buy ranks highest price first, Sell ranks lowest price first); open is
// the engine's shared order-id -> *Order map.
func NewSide(side common.Side, open map[string]*common.Order) *Side {
	s := &Side{side: side, open: open}
	s.tree = btree.NewBTreeG(s.less)
	return s
}

func (s *Side) less(a, b entry) bool {
	if !a.price.Equal(b.price) {
		if s.side == common.Buy {
			return a.price.GreaterThan(b.price)
		}
		return a.price.LessThan(b.price)
	}
	if !a.createTime.Equal(b.createTime) {
		return a.createTime.Before(b.createTime)
	}
	return a.orderID < b.orderID
}

// Best returns the top-ranked open order, or nil if the side is empty.
func (s *Side) Best() *common.Order {
	item, ok := s.tree.Min()
	if !ok {
		return nil
	}
	return s.open[item.orderID]
}

// Pop removes and returns the top-ranked order. Callers use this once an
// order has become fully filled.
func (s *Side) Pop() *common.Order {
	item, ok := s.tree.PopMin()
	if !ok {
		return nil
	}
	return s.open[item.orderID]
}

// Insert adds a new resting order to this side and to the shared open map.
func (s *Side) Insert(o *common.Order) {
	s.tree.Set(entry{price: o.Price, createTime: o.CreateTime, orderID: o.ID})
	s.open[o.ID] = o
}

// Remove deletes a specific resting order's key from the index (used by
// cancellation). It does not touch the shared open map — the caller owns
// moving the order between the open and completed indices.
func (s *Side) Remove(o *common.Order) {
	s.tree.Delete(entry{price: o.Price, createTime: o.CreateTime, orderID: o.ID})
}

// Len reports the number of resting orders on this side.
func (s *Side) Len() int {
	return s.tree.Len()
}

// Book aggregates remaining size per distinct price, best-first, omitting
// any level whose aggregate is zero.
func (s *Side) Book() []PriceLevel {
	levels := make([]PriceLevel, 0, s.tree.Len())
	s.tree.Scan(func(item entry) bool {
		order := s.open[item.orderID]
		remaining := order.Remaining()
		if n := len(levels); n > 0 && levels[n-1].Price.Equal(order.Price) {
			levels[n-1].Quantity = levels[n-1].Quantity.Add(remaining)
		} else {
			levels = append(levels, PriceLevel{Price: order.Price, Quantity: remaining})
		}
		return true
	})

	out := levels[:0]
	for _, l := range levels {
		if !l.Quantity.IsZero() {
			out = append(out, l)
		}
	}
	return out
}
