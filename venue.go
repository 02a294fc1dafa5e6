// Package pumpdump is a mock spot-trading venue: a price-time priority
// limit-order matching engine paired with the account-balance ledger that
// reserves and settles assets on order entry and on every fill.
//
// Venue is the only entry point external callers need; internal/book,
// internal/engine, and internal/ledger implement the side book, matching
// engine, and balance ledger components respectively.
package pumpdump

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"pumpdump/internal/book"
	"pumpdump/internal/common"
	"pumpdump/internal/config"
	"pumpdump/internal/engine"
	"pumpdump/internal/ledger"
)

// Public type aliases re-exporting the internal data model so callers
// never need to import pumpdump/internal/... themselves.
type (
	Order        = common.Order
	Trade        = common.Trade
	Side         = common.Side
	OrderType    = common.OrderType
	PriceLevel   = book.PriceLevel
	OrderBook    = engine.OrderBook
	AssetBalance = ledger.AssetBalance
	BalanceData  = ledger.BalanceData
	Balance      = ledger.Balance
	Decimal      = decimal.Decimal

	SymbolConfig   = config.SymbolConfig
	PlatformConfig = config.PlatformConfig
)

const (
	Buy  = common.Buy
	Sell = common.Sell

	LimitOrder = common.LimitOrder
)

// Re-exported error sentinels.
var (
	ErrUnrecognizedSymbol    = common.ErrUnrecognizedSymbol
	ErrUnrecognizedOrderType = common.ErrUnrecognizedOrderType
	ErrInvalidSide           = common.ErrInvalidSide
	ErrOrderTooSmall         = common.ErrOrderTooSmall
	ErrInvalidSizePrecision  = common.ErrInvalidSizePrecision
	ErrInvalidPricePrecision = common.ErrInvalidPricePrecision
	ErrOrderNotFound         = common.ErrOrderNotFound
	ErrOrderAlreadyCanceled  = common.ErrOrderAlreadyCanceled
	ErrOrderAlreadyCompleted = common.ErrOrderAlreadyCompleted
)

// NewLimitOrder builds an order ready to submit via Venue.AddOrder.
func NewLimitOrder(symbol string, side Side, size, price Decimal, userID *string) *Order {
	return common.NewLimitOrder(symbol, side, size, price, userID)
}

// Venue is the coordinator: it dispatches by symbol and serializes order
// admission and settlement behind a single mutex, so an incoming order
// always sees a consistent book and ledger.
type Venue struct {
	mu sync.Mutex

	cfg     config.PlatformConfig
	engines map[string]*engine.Engine
	ledger  *ledger.Ledger
}

// New builds a Venue from cfg, or from the documented FOOBAR default
// catalogue if cfg is nil. cfg is cloned so the caller's copy can never be
// mutated through the venue.
func New(cfg *PlatformConfig) *Venue {
	var resolved config.PlatformConfig
	if cfg != nil {
		resolved = cfg.Clone()
	} else {
		resolved = config.Default()
	}

	engines := make(map[string]*engine.Engine, len(resolved.SymbolConfigs))
	for symbol, symCfg := range resolved.SymbolConfigs {
		engines[symbol] = engine.New(symCfg)
	}

	return &Venue{
		cfg:     resolved,
		engines: engines,
		ledger:  ledger.New(resolved),
	}
}

// AddOrder admits order: reserve its required asset, route it to its
// symbol's matching engine, then settle every fill the engine produced.
// The whole sequence runs under the venue's single mutex, so no other
// call observes a partially-applied order.
func (v *Venue) AddOrder(order *Order) (*Order, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	symCfg, ok := v.cfg.SymbolConfigs[order.Symbol]
	if !ok {
		return nil, common.ErrUnrecognizedSymbol
	}
	if order.OrderType != common.LimitOrder {
		return nil, common.ErrUnrecognizedOrderType
	}

	// Stamp create_time inside the critical section for fairness, unless
	// the caller already supplied one (deterministic tests).
	if order.CreateTime.IsZero() {
		order.CreateTime = time.Now()
	}

	if err := v.ledger.Reserve(order, symCfg); err != nil {
		log.Warn().Str("symbol", order.Symbol).Str("side", order.Side.String()).Err(err).Msg("order rejected: insufficient balance")
		return nil, err
	}

	eng := v.engines[order.Symbol]
	fills, err := eng.AddLimitOrder(order)
	if err != nil {
		// The reservation above already moved funds from available to
		// reserved; since admission failed the order never rested and
		// never dealt, so its full size is still reserved and unwound
		// exactly.
		v.ledger.Release(order, symCfg)
		log.Warn().Str("symbol", order.Symbol).Err(err).Msg("order rejected on admission")
		return nil, err
	}

	for _, fill := range fills {
		v.ledger.Settle(fill, symCfg)
	}

	log.Info().
		Str("order_id", order.ID).
		Str("symbol", order.Symbol).
		Str("side", order.Side.String()).
		Int("fills", len(fills)).
		Msg("order admitted")

	return order, nil
}

// OrderStatus looks up orderID, optionally scoped to a single symbol.
func (v *Venue) OrderStatus(orderID string, symbol *string) (*Order, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, s := range v.symbolsOrAll(symbol) {
		if eng, ok := v.engines[s]; ok {
			if order, err := eng.OrderStatus(orderID); err == nil {
				return order, nil
			}
		}
	}
	return nil, common.ErrOrderNotFound
}

// CancelOrder cancels orderID, optionally scoped to a single symbol, and
// releases the canceled order's unfilled reservation.
func (v *Venue) CancelOrder(orderID string, symbol *string) (*Order, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, s := range v.symbolsOrAll(symbol) {
		eng, ok := v.engines[s]
		if !ok {
			continue
		}
		order, err := eng.CancelOrder(orderID)
		if err == common.ErrOrderNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}

		v.ledger.Release(order, v.cfg.SymbolConfigs[s])
		log.Info().Str("order_id", orderID).Str("symbol", s).Msg("order canceled")
		return order, nil
	}
	return nil, common.ErrOrderNotFound
}

// CancelAllOrders cancels every open order matching symbol/userID (either
// may be nil to mean "all"), releasing each canceled order's reservation.
func (v *Venue) CancelAllOrders(symbol *string, userID *string) ([]*Order, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if symbol != nil {
		if _, ok := v.engines[*symbol]; !ok {
			return nil, common.ErrUnrecognizedSymbol
		}
	}

	var canceled []*Order
	for _, s := range v.symbolsOrAll(symbol) {
		eng := v.engines[s]
		symCfg := v.cfg.SymbolConfigs[s]
		for _, order := range eng.CancelAll(userID) {
			v.ledger.Release(order, symCfg)
			canceled = append(canceled, order)
		}
	}
	return canceled, nil
}

// OrderBook returns a fresh snapshot of symbol's book.
func (v *Venue) OrderBook(symbol string) (*OrderBook, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	eng, ok := v.engines[symbol]
	if !ok {
		return nil, common.ErrUnrecognizedSymbol
	}
	snapshot := eng.OrderBookSnapshot()
	return &snapshot, nil
}

// Balance returns a snapshot of userID's balances, or the default-user
// template when userID is nil.
func (v *Venue) Balance(userID *string) Balance {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.ledger.Balance(userID)
}

// symbolsOrAll returns [*symbol] if symbol is non-nil, else every
// configured symbol.
func (v *Venue) symbolsOrAll(symbol *string) []string {
	if symbol != nil {
		return []string{*symbol}
	}
	symbols := make([]string, 0, len(v.engines))
	for s := range v.engines {
		symbols = append(symbols, s)
	}
	return symbols
}
