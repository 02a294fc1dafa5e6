// Package config holds the immutable configuration surface: the symbol
// catalogue and the initial balance templates a venue is built from.
// Nothing in this package is mutated after construction — the default
// record is cloned into each Venue rather than read from a process-wide
// singleton, so tests stay independent of one another.
package config

import "github.com/shopspring/decimal"

// SymbolConfig describes one tradeable symbol: its tick grid, minimum
// order size, and the two assets settlement moves on a fill. Base or Quote
// may be empty, meaning that leg of settlement is skipped entirely (a
// "phantom" leg).
type SymbolConfig struct {
	Symbol    string
	PriceTick decimal.Decimal
	SizeTick  decimal.Decimal
	MinSize   decimal.Decimal
	Base      string
	Quote     string
}

// HasBase and HasQuote report whether the corresponding settlement leg is
// wired for this symbol.
func (c SymbolConfig) HasBase() bool  { return c.Base != "" }
func (c SymbolConfig) HasQuote() bool { return c.Quote != "" }

// PlatformConfig is the full immutable catalogue passed to a Venue at
// construction. DefaultBalance is the template new/unseen users are
// materialized from; UserBalances supplies per-user overrides keyed by
// user ID.
type PlatformConfig struct {
	SymbolConfigs  map[string]SymbolConfig
	DefaultBalance map[string]decimal.Decimal
	UserBalances   map[string]map[string]decimal.Decimal
}

// Clone returns a deep copy so a caller can hand the same default config to
// multiple venues without one venue's mutation — there is none, but future
// callers should not have to worry about it — leaking into another.
func (c PlatformConfig) Clone() PlatformConfig {
	symbols := make(map[string]SymbolConfig, len(c.SymbolConfigs))
	for k, v := range c.SymbolConfigs {
		symbols[k] = v
	}

	def := make(map[string]decimal.Decimal, len(c.DefaultBalance))
	for k, v := range c.DefaultBalance {
		def[k] = v
	}

	users := make(map[string]map[string]decimal.Decimal, len(c.UserBalances))
	for user, balances := range c.UserBalances {
		copied := make(map[string]decimal.Decimal, len(balances))
		for asset, amount := range balances {
			copied[asset] = amount
		}
		users[user] = copied
	}

	return PlatformConfig{
		SymbolConfigs:  symbols,
		DefaultBalance: def,
		UserBalances:   users,
	}
}

// Default returns the documented test catalogue: a single FOOBAR symbol
// (base FOO, quote BAR, all ticks 0.01) with a generous default balance
// template.
func Default() PlatformConfig {
	tick := decimal.NewFromFloat(0.01)
	huge := decimal.New(1_000_000_000_000, 0)

	return PlatformConfig{
		SymbolConfigs: map[string]SymbolConfig{
			"FOOBAR": {
				Symbol:    "FOOBAR",
				PriceTick: tick,
				SizeTick:  tick,
				MinSize:   tick,
				Base:      "FOO",
				Quote:     "BAR",
			},
		},
		DefaultBalance: map[string]decimal.Decimal{
			"FOO":    huge,
			"BAR":    huge,
			"USD":    huge,
			"BAZQUX": huge,
		},
		UserBalances: map[string]map[string]decimal.Decimal{},
	}
}
