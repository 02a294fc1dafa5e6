// Package engine implements the per-symbol matching engine: admission
// validation, the price-time priority crossing loop, cancellation, and
// lookup. One Engine instance exists per symbol; the venue coordinator
// (package pumpdump, root) owns the map from symbol to Engine and
// serializes access to it.
package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"pumpdump/internal/book"
	"pumpdump/internal/common"
	"pumpdump/internal/config"
)

// Engine is one symbol's order book plus its matching logic. It owns its
// own mutex so tests and tooling can call it directly; the coordinator's
// mutex is always the outer one when routing through the public API.
type Engine struct {
	mu sync.Mutex

	cfg config.SymbolConfig

	open      map[string]*common.Order
	completed map[string]*common.Order

	bids *book.Side
	asks *book.Side

	trades []common.Trade
}

// New builds an empty engine for the given symbol configuration.
func New(cfg config.SymbolConfig) *Engine {
	open := make(map[string]*common.Order)
	return &Engine{
		cfg:       cfg,
		open:      open,
		completed: make(map[string]*common.Order),
		bids:      book.NewSide(common.Buy, open),
		asks:      book.NewSide(common.Sell, open),
	}
}

// Symbol returns the symbol this engine matches.
func (e *Engine) Symbol() string {
	return e.cfg.Symbol
}

// validate checks size/price against the symbol's tick grid and minimum
// size. Rejection never mutates state.
func (e *Engine) validate(order *common.Order) error {
	if order.Side != common.Buy && order.Side != common.Sell {
		return common.ErrInvalidSide
	}
	if order.Size.LessThan(e.cfg.MinSize) {
		return common.ErrOrderTooSmall
	}
	if !common.IsMultipleOf(order.Size, e.cfg.SizeTick) {
		return common.ErrInvalidSizePrecision
	}
	if !common.IsMultipleOf(order.Price, e.cfg.PriceTick) {
		return common.ErrInvalidPricePrecision
	}
	return nil
}

// AddLimitOrder admits order, running the matching step until it rests or
// completes. It returns one Fill per side of every crossing — two entries
// per trade, (taker, trade) then (maker, trade) — so the caller's
// settlement layer can apply the balance-ledger table exactly once per
// entry.
func (e *Engine) AddLimitOrder(order *common.Order) ([]Fill, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.validate(order); err != nil {
		return nil, err
	}

	var matchAgainst, insertInto *book.Side
	switch order.Side {
	case common.Buy:
		matchAgainst, insertInto = e.asks, e.bids
	case common.Sell:
		matchAgainst, insertInto = e.bids, e.asks
	}

	var fills []Fill
	for {
		maker := matchAgainst.Best()
		if maker == nil {
			insertInto.Insert(order)
			return fills, nil
		}

		// Cross predicate: buy taker crosses at price >= best ask; sell
		// taker crosses at price <= best bid.
		if order.Side.Mul(order.Price).LessThan(order.Side.Mul(maker.Price)) {
			insertInto.Insert(order)
			return fills, nil
		}

		amount := decimal.Min(order.Remaining(), maker.Remaining())
		trade := common.NewTrade(maker.Price, amount, order.CreateTime)

		order.Trades = append(order.Trades, trade)
		maker.Trades = append(maker.Trades, trade)
		e.trades = append(e.trades, trade)

		fills = append(fills,
			Fill{Order: order, Trade: trade},
			Fill{Order: maker, Trade: trade},
		)

		log.Debug().
			Str("symbol", e.cfg.Symbol).
			Str("trade_id", trade.ID).
			Str("price", trade.Price.String()).
			Str("amount", trade.Amount.String()).
			Msg("trade executed")

		if maker.Completed() {
			matchAgainst.Pop()
			delete(e.open, maker.ID)
			e.completed[maker.ID] = maker
		}
		if order.Completed() {
			e.completed[order.ID] = order
			return fills, nil
		}
	}
}

// OrderStatus looks up orderID in the open index, then the completed
// index.
func (e *Engine) OrderStatus(orderID string) (*common.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if order, ok := e.open[orderID]; ok {
		return order, nil
	}
	if order, ok := e.completed[orderID]; ok {
		return order, nil
	}
	return nil, common.ErrOrderNotFound
}

// CancelOrder cancels a resting order, or reports why it could not be
// canceled.
func (e *Engine) CancelOrder(orderID string) (*common.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancelLocked(orderID)
}

func (e *Engine) cancelLocked(orderID string) (*common.Order, error) {
	if order, ok := e.open[orderID]; ok {
		switch order.Side {
		case common.Buy:
			e.bids.Remove(order)
		case common.Sell:
			e.asks.Remove(order)
		}
		delete(e.open, orderID)

		now := time.Now()
		order.Canceled = &now
		e.completed[orderID] = order
		return order, nil
	}

	if order, ok := e.completed[orderID]; ok {
		if order.IsCanceled() {
			return nil, common.ErrOrderAlreadyCanceled
		}
		return nil, common.ErrOrderAlreadyCompleted
	}

	return nil, common.ErrOrderNotFound
}

// CancelAll cancels every open order matching userID — or every open
// order, house orders included, when userID is nil. It snapshots the
// open-order set first so concurrent mutation during cancellation cannot
// skip or double-visit an order.
func (e *Engine) CancelAll(userID *string) []*common.Order {
	e.mu.Lock()
	ids := make([]string, 0, len(e.open))
	for id, order := range e.open {
		if matchesUser(order.UserID, userID) {
			ids = append(ids, id)
		}
	}

	canceled := make([]*common.Order, 0, len(ids))
	for _, id := range ids {
		if order, err := e.cancelLocked(id); err == nil {
			canceled = append(canceled, order)
		}
	}
	e.mu.Unlock()

	return canceled
}

func matchesUser(orderUser, filter *string) bool {
	if filter == nil {
		return true
	}
	if orderUser == nil {
		return false
	}
	return *orderUser == *filter
}
