package pumpdump

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(f float64) Decimal { return decimal.NewFromFloat(f) }

func user(id string) *string { return &id }

func symbolPtr(s string) *string { return &s }

func TestAddOrderBuildsRestingBookAcrossManyPriceLevels(t *testing.T) {
	v := New(nil)

	for i := 0; i < 10; i++ {
		bid := NewLimitOrder("FOOBAR", Buy, dec(1), dec(100-float64(i)), user("alice"))
		_, err := v.AddOrder(bid)
		assert.NoError(t, err)

		ask := NewLimitOrder("FOOBAR", Sell, dec(1), dec(110+float64(i)), user("bob"))
		_, err = v.AddOrder(ask)
		assert.NoError(t, err)
	}

	book, err := v.OrderBook("FOOBAR")
	assert.NoError(t, err)
	assert.Len(t, book.Bids, 10)
	assert.Len(t, book.Asks, 10)
	assert.True(t, book.Bids[0].Price.Equal(dec(100)))
	assert.True(t, book.Asks[0].Price.Equal(dec(110)))
}

func TestAddOrderCrossesWithPartialFill(t *testing.T) {
	v := New(nil)

	maker := NewLimitOrder("FOOBAR", Sell, dec(5), dec(101), user("bob"))
	_, err := v.AddOrder(maker)
	assert.NoError(t, err)

	taker := NewLimitOrder("FOOBAR", Buy, dec(8), dec(101), user("alice"))
	result, err := v.AddOrder(taker)
	assert.NoError(t, err)

	assert.True(t, result.Dealt().Equal(dec(5)))
	assert.False(t, result.Completed())

	status, err := v.OrderStatus(maker.ID, symbolPtr("FOOBAR"))
	assert.NoError(t, err)
	assert.True(t, status.Completed())
}

func TestAddOrderReservesBaseBalanceForSell(t *testing.T) {
	v := New(nil)

	sell := NewLimitOrder("FOOBAR", Sell, dec(50), dec(10), user("bob"))
	_, err := v.AddOrder(sell)
	assert.NoError(t, err)

	bal := v.Balance(user("bob"))
	assert.True(t, bal.Balances["FOO"].Reserved.Equal(dec(50)))
}

func TestAddOrderSettlesBothSidesIncludingAnonymousCounterparty(t *testing.T) {
	v := New(nil)

	houseBuy := NewLimitOrder("FOOBAR", Buy, dec(20), dec(12), nil)
	_, err := v.AddOrder(houseBuy)
	assert.NoError(t, err)

	before := v.Balance(user("carol"))

	userSell := NewLimitOrder("FOOBAR", Sell, dec(20), dec(12), user("carol"))
	_, err = v.AddOrder(userSell)
	assert.NoError(t, err)

	after := v.Balance(user("carol"))
	assert.True(t, after.Balances["FOO"].Available.Equal(before.Balances["FOO"].Available.Sub(dec(20))))
	assert.True(t, after.Balances["BAR"].Available.Equal(before.Balances["BAR"].Available.Add(dec(240))))
	assert.True(t, after.Balances["FOO"].Reserved.IsZero())
}

func TestAddOrderRejectsInsufficientBalanceWithoutMutatingState(t *testing.T) {
	v := New(nil)

	bookBefore, err := v.OrderBook("FOOBAR")
	assert.NoError(t, err)
	assert.Empty(t, bookBefore.Bids)

	balBefore := v.Balance(user("dave"))

	huge := NewLimitOrder("FOOBAR", Buy, dec(1_000_000_000_000_000), dec(1), user("dave"))
	_, err = v.AddOrder(huge)
	assert.Error(t, err)

	balAfter := v.Balance(user("dave"))
	assert.True(t, balAfter.Balances["BAR"].Available.Equal(balBefore.Balances["BAR"].Available))
	assert.True(t, balAfter.Balances["BAR"].Reserved.IsZero())

	bookAfter, err := v.OrderBook("FOOBAR")
	assert.NoError(t, err)
	assert.Empty(t, bookAfter.Bids)
}

func TestCancelOrderTwiceYieldsAlreadyCanceledButStatusStillResolves(t *testing.T) {
	v := New(nil)

	order := NewLimitOrder("FOOBAR", Buy, dec(10), dec(50), user("erin"))
	_, err := v.AddOrder(order)
	assert.NoError(t, err)

	_, err = v.CancelOrder(order.ID, nil)
	assert.NoError(t, err)

	_, err = v.CancelOrder(order.ID, nil)
	assert.ErrorIs(t, err, ErrOrderAlreadyCanceled)

	status, err := v.OrderStatus(order.ID, nil)
	assert.NoError(t, err)
	assert.True(t, status.IsCanceled())
}

func TestCancelOrderReleasesReservation(t *testing.T) {
	v := New(nil)

	order := NewLimitOrder("FOOBAR", Buy, dec(10), dec(50), user("frank"))
	_, err := v.AddOrder(order)
	assert.NoError(t, err)

	reserved := v.Balance(user("frank")).Balances["BAR"].Reserved
	assert.False(t, reserved.IsZero())

	_, err = v.CancelOrder(order.ID, nil)
	assert.NoError(t, err)

	bal := v.Balance(user("frank"))
	assert.True(t, bal.Balances["BAR"].Reserved.IsZero())
}

func TestCancelAllOrdersScopedBySymbolAndUser(t *testing.T) {
	v := New(nil)

	a := NewLimitOrder("FOOBAR", Buy, dec(10), dec(50), user("gina"))
	b := NewLimitOrder("FOOBAR", Buy, dec(10), dec(49), user("gina"))
	c := NewLimitOrder("FOOBAR", Sell, dec(10), dec(60), user("henry"))

	for _, o := range []*Order{a, b, c} {
		_, err := v.AddOrder(o)
		assert.NoError(t, err)
	}

	canceled, err := v.CancelAllOrders(symbolPtr("FOOBAR"), user("gina"))
	assert.NoError(t, err)
	assert.Len(t, canceled, 2)

	book, err := v.OrderBook("FOOBAR")
	assert.NoError(t, err)
	assert.Empty(t, book.Bids)
	assert.Len(t, book.Asks, 1)
}

func TestAddOrderRejectsUnrecognizedSymbol(t *testing.T) {
	v := New(nil)
	_, err := v.AddOrder(NewLimitOrder("NOPE", Buy, dec(1), dec(1), user("x")))
	assert.ErrorIs(t, err, ErrUnrecognizedSymbol)
}

func TestOrderStatusHonorsSymbolScoping(t *testing.T) {
	v := New(nil)
	order := NewLimitOrder("FOOBAR", Buy, dec(10), dec(50), user("iris"))
	_, err := v.AddOrder(order)
	assert.NoError(t, err)

	_, err = v.OrderStatus(order.ID, symbolPtr("FOOBAR"))
	assert.NoError(t, err)

	found, err := v.OrderStatus(order.ID, nil)
	assert.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
}

func TestAddOrderStampsCreateTimeWhenUnset(t *testing.T) {
	v := New(nil)
	order := NewLimitOrder("FOOBAR", Buy, dec(10), dec(50), user("jane"))
	assert.True(t, order.CreateTime.IsZero())

	_, err := v.AddOrder(order)
	assert.NoError(t, err)
	assert.False(t, order.CreateTime.IsZero())
}

func TestAddOrderHonorsCallerSuppliedCreateTime(t *testing.T) {
	v := New(nil)
	fixed := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	order := NewLimitOrder("FOOBAR", Buy, dec(10), dec(50), user("kyle"))
	order.CreateTime = fixed

	_, err := v.AddOrder(order)
	assert.NoError(t, err)
	assert.Equal(t, fixed, order.CreateTime)
}
