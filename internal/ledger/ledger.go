// Package ledger implements the account-balance ledger: per-user
// {available, reserved} balances per asset, with asset reservation at
// order admission and debit/credit settlement on every fill.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"pumpdump/internal/common"
	"pumpdump/internal/config"
	"pumpdump/internal/engine"
)

// AssetBalance is one user's holding of one asset. Total is derived, never
// stored, so it can never disagree with its parts.
type AssetBalance struct {
	Available decimal.Decimal
	Reserved  decimal.Decimal
}

// Total returns Available + Reserved.
func (b AssetBalance) Total() decimal.Decimal {
	return b.Available.Add(b.Reserved)
}

// BalanceData maps asset -> AssetBalance. A missing key reads as the zero
// value: 0 available, 0 reserved.
type BalanceData map[string]AssetBalance

// Balance is a point-in-time snapshot of one user's full balance sheet.
type Balance struct {
	UserID    *string
	Balances  BalanceData
	Timestamp time.Time
}

// Ledger holds every user's balances. Nothing calls into the ledger while
// holding only an engine mutex — the venue coordinator's mutex is always
// held across a reserve -> match -> settle sequence — so the ledger
// itself carries no internal lock.
type Ledger struct {
	cfg      config.PlatformConfig
	balances map[string]BalanceData
}

// New builds an empty ledger over cfg's balance templates. Per-user
// balances are materialized lazily on first reference, not eagerly here.
func New(cfg config.PlatformConfig) *Ledger {
	return &Ledger{
		cfg:      cfg,
		balances: make(map[string]BalanceData),
	}
}

// defaultBalanceData builds a fresh BalanceData from the override
// configured for userID, falling back to the venue-wide default template.
func (l *Ledger) defaultBalanceData(userID string) BalanceData {
	template := l.cfg.DefaultBalance
	if override, ok := l.cfg.UserBalances[userID]; ok {
		template = override
	}

	data := make(BalanceData, len(template))
	for asset, amount := range template {
		data[asset] = AssetBalance{Available: amount}
	}
	return data
}

// balanceData returns (and lazily creates) the live BalanceData for
// userID. Callers must only read/mutate the returned map while the
// venue-level critical section is held.
func (l *Ledger) balanceData(userID string) BalanceData {
	data, ok := l.balances[userID]
	if !ok {
		data = l.defaultBalanceData(userID)
		l.balances[userID] = data
	}
	return data
}

// Balance returns a snapshot of userID's balances, or the default-user
// template when userID is nil.
func (l *Ledger) Balance(userID *string) Balance {
	if userID == nil {
		data := make(BalanceData, len(l.cfg.DefaultBalance))
		for asset, amount := range l.cfg.DefaultBalance {
			data[asset] = AssetBalance{Available: amount}
		}
		return Balance{Balances: data, Timestamp: time.Now()}
	}

	live := l.balanceData(*userID)
	data := make(BalanceData, len(live))
	for asset, bal := range live {
		data[asset] = bal
	}
	return Balance{UserID: userID, Balances: data, Timestamp: time.Now()}
}

// Reserve moves the asset a priced order commits on admission from
// available to reserved. Anonymous (house) orders skip reservation
// entirely. A symbol leg left unset on symCfg (an empty Base or Quote) is
// a phantom leg and is skipped too.
func (l *Ledger) Reserve(order *common.Order, symCfg config.SymbolConfig) error {
	if order.UserID == nil {
		return nil
	}

	var asset string
	var amount decimal.Decimal
	switch order.Side {
	case common.Buy:
		asset = symCfg.Quote
		amount = order.Size.Mul(order.Price)
	case common.Sell:
		asset = symCfg.Base
		amount = order.Size
	}
	if asset == "" {
		return nil
	}

	data := l.balanceData(*order.UserID)
	bal := data[asset]
	if bal.Available.LessThan(amount) {
		return common.NewInsufficientBalanceError(asset)
	}

	bal.Available = bal.Available.Sub(amount)
	bal.Reserved = bal.Reserved.Add(amount)
	data[asset] = bal
	return nil
}

// Release returns the still-reserved portion of a canceled order's
// unfilled quantity back to available. It is a no-op for anonymous orders
// or phantom legs, mirroring Reserve's guards.
func (l *Ledger) Release(order *common.Order, symCfg config.SymbolConfig) {
	if order.UserID == nil {
		return
	}

	var asset string
	var amount decimal.Decimal
	switch order.Side {
	case common.Buy:
		asset = symCfg.Quote
		amount = order.Remaining().Mul(order.Price)
	case common.Sell:
		asset = symCfg.Base
		amount = order.Remaining()
	}
	if asset == "" || amount.IsZero() {
		return
	}

	data := l.balanceData(*order.UserID)
	bal := data[asset]
	bal.Reserved = bal.Reserved.Sub(amount)
	bal.Available = bal.Available.Add(amount)
	data[asset] = bal
}

// Settle applies debit/credit settlement to a single (order, trade) pair
// emitted by the matching engine. Every admitted order in this core is a
// priced (limit) order drawn from the reserved bucket, so only the
// resting-order settlement rows are reachable; market-order rows are not
// applicable here. House orders (nil UserID) settle to nothing — they are
// the external counterparty.
func (l *Ledger) Settle(fill engine.Fill, symCfg config.SymbolConfig) {
	order := fill.Order
	if order.UserID == nil {
		return
	}

	data := l.balanceData(*order.UserID)
	amount := fill.Trade.Amount
	notional := amount.Mul(fill.Trade.Price)

	switch order.Side {
	case common.Buy:
		if symCfg.HasBase() {
			bal := data[symCfg.Base]
			bal.Available = bal.Available.Add(amount)
			data[symCfg.Base] = bal
		}
		if symCfg.HasQuote() {
			bal := data[symCfg.Quote]
			bal.Reserved = bal.Reserved.Sub(notional)
			data[symCfg.Quote] = bal
		}
	case common.Sell:
		if symCfg.HasBase() {
			bal := data[symCfg.Base]
			bal.Reserved = bal.Reserved.Sub(amount)
			data[symCfg.Base] = bal
		}
		if symCfg.HasQuote() {
			bal := data[symCfg.Quote]
			bal.Available = bal.Available.Add(notional)
			data[symCfg.Quote] = bal
		}
	}
}
