package engine

import (
	"time"

	"pumpdump/internal/book"
	"pumpdump/internal/common"
)

// Fill pairs an order with a trade it was party to. AddLimitOrder emits
// one Fill per side of each crossing; the venue coordinator applies the
// balance-ledger settlement table to each entry exactly once.
type Fill struct {
	Order *common.Order
	Trade common.Trade
}

// OrderBook is a value-typed snapshot of one symbol's book: it does not
// alias engine state, so mutations after the snapshot was taken never
// become visible through it.
type OrderBook struct {
	Symbol    string
	Bids      []book.PriceLevel
	Asks      []book.PriceLevel
	Timestamp time.Time
}

// OrderBookSnapshot builds a fresh OrderBook from the current bid/ask
// aggregates.
func (e *Engine) OrderBookSnapshot() OrderBook {
	e.mu.Lock()
	defer e.mu.Unlock()

	return OrderBook{
		Symbol:    e.cfg.Symbol,
		Bids:      e.bids.Book(),
		Asks:      e.asks.Book(),
		Timestamp: time.Now(),
	}
}
