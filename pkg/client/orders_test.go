package client

import (
	"testing"

	"hlsimple/pkg/errs"
	"hlsimple/pkg/exchange"
	"hlsimple/pkg/types"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestBuyRejectsNonPositiveSize(t *testing.T) {
	m := newMockExchange()
	c := New(m, testAddress, nil)

	for _, size := range []string{"0", "-0.001"} {
		_, err := c.Buy("BTC", dec(size), nil)
		require.Error(t, err, "size %s", size)
		assert.True(t, errors.Is(err, errs.ErrValidation))
	}
	assert.Empty(t, m.placed, "rejected orders must not reach the exchange")
}

func TestBuyMarketAppliesSlippage(t *testing.T) {
	m := newMockExchange()
	c := New(m, testAddress, nil)

	order, err := c.Buy("BTC", dec("0.001"), nil)
	require.NoError(t, err)

	require.Len(t, m.placed, 1)
	req := m.placed[0]
	assert.True(t, req.IsBuy)
	assert.Equal(t, types.OrderTIFIOC, req.TIF)
	// mid 60000 plus the 0.5% default
	assert.Equal(t, "60300", req.LimitPrice.String())
	assert.Equal(t, types.OrderTypeMarket, order.Type)
	assert.Equal(t, types.OrderSideBuy, order.Side)
}

func TestSellMarketAppliesSlippage(t *testing.T) {
	m := newMockExchange()
	c := New(m, testAddress, &Options{Slippage: dec("0.01")})

	_, err := c.Sell("BTC", dec("0.001"), nil)
	require.NoError(t, err)

	require.Len(t, m.placed, 1)
	assert.False(t, m.placed[0].IsBuy)
	assert.Equal(t, "59400", m.placed[0].LimitPrice.String())
}

func TestBuyLimit(t *testing.T) {
	m := newMockExchange()
	c := New(m, testAddress, nil)

	order, err := c.Buy("ETH", dec("0.5"), &OrderOptions{LimitPrice: decPtr("2900")})
	require.NoError(t, err)

	require.Len(t, m.placed, 1)
	req := m.placed[0]
	assert.Equal(t, "2900", req.LimitPrice.String())
	assert.Equal(t, types.OrderTIFGTC, req.TIF)
	assert.Nil(t, req.Trigger)
	assert.Equal(t, types.OrderTypeLimit, order.Type)
	assert.Equal(t, types.OrderStatusOpen, order.Status)
}

func TestBuyPostOnly(t *testing.T) {
	m := newMockExchange()
	c := New(m, testAddress, nil)

	_, err := c.Buy("ETH", dec("0.5"), &OrderOptions{LimitPrice: decPtr("2900"), PostOnly: true})
	require.NoError(t, err)
	require.Len(t, m.placed, 1)
	assert.Equal(t, types.OrderTIFALO, m.placed[0].TIF)

	_, err = c.Buy("ETH", dec("0.5"), &OrderOptions{LimitPrice: decPtr("2900"), PostOnly: true, TIF: types.OrderTIFIOC})
	assert.True(t, errors.Is(err, errs.ErrValidation))

	// post-only market orders would cross by construction
	_, err = c.Buy("ETH", dec("0.5"), &OrderOptions{PostOnly: true})
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.Len(t, m.placed, 1)
}

func TestStopLossDefaultsToSell(t *testing.T) {
	m := newMockExchange()
	m.orderIDs = []string{"abc123"}
	c := New(m, testAddress, nil)

	order, err := c.StopLoss("BTC", dec("0.001"), dec("58000"), nil)
	require.NoError(t, err)

	assert.Equal(t, "abc123", order.OrderID)
	assert.Equal(t, types.OrderSideSell, order.Side)
	assert.Equal(t, types.OrderTypeStopLoss, order.Type)
	assert.True(t, order.ReduceOnly)
	require.NotNil(t, order.TriggerPrice)
	assert.Equal(t, "58000", order.TriggerPrice.String())

	require.Len(t, m.placed, 1)
	req := m.placed[0]
	assert.False(t, req.IsBuy)
	assert.True(t, req.ReduceOnly)
	require.NotNil(t, req.Trigger)
	assert.Equal(t, exchange.TriggerStopLoss, req.Trigger.Kind)
	assert.True(t, req.Trigger.IsMarket)
	assert.Equal(t, "58000", req.Trigger.Price.String())
}

func TestTakeProfitForShort(t *testing.T) {
	m := newMockExchange()
	c := New(m, testAddress, nil)

	order, err := c.TakeProfit("BTC", dec("0.001"), dec("55000"), &TriggerOptions{IsBuy: true})
	require.NoError(t, err)

	assert.Equal(t, types.OrderSideBuy, order.Side)
	assert.Equal(t, types.OrderTypeTakeProfit, order.Type)
	require.Len(t, m.placed, 1)
	assert.True(t, m.placed[0].IsBuy)
	assert.Equal(t, exchange.TriggerTakeProfit, m.placed[0].Trigger.Kind)
}

func TestTriggerValidation(t *testing.T) {
	m := newMockExchange()
	c := New(m, testAddress, nil)

	_, err := c.StopLoss("BTC", dec("0"), dec("58000"), nil)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	_, err = c.TakeProfit("BTC", dec("0.001"), dec("-1"), nil)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	assert.Empty(t, m.placed)
}

func TestGetOpenOrdersFiltersBySymbol(t *testing.T) {
	m := newMockExchange()
	m.openOrders = []types.Order{
		{OrderID: "1", Symbol: "BTC", Type: types.OrderTypeLimit},
		{OrderID: "2", Symbol: "BTC", Type: types.OrderTypeStopLoss, TriggerPrice: decPtr("58000")},
		{OrderID: "3", Symbol: "ETH", Type: types.OrderTypeTakeProfit, TriggerPrice: decPtr("3300")},
	}
	c := New(m, testAddress, nil)

	all, err := c.GetOpenOrders("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	btc, err := c.GetOpenOrders("BTC")
	require.NoError(t, err)
	require.Len(t, btc, 2)
	for _, order := range btc {
		assert.Equal(t, "BTC", order.Symbol)
	}

	hasBTC, err := c.HasActiveOrders("BTC")
	require.NoError(t, err)
	assert.True(t, hasBTC)
	hasSOL, err := c.HasActiveOrders("SOL")
	require.NoError(t, err)
	assert.False(t, hasSOL)
}

func TestGetProtectivePrices(t *testing.T) {
	m := newMockExchange()
	m.openOrders = []types.Order{
		{OrderID: "1", Symbol: "BTC", Type: types.OrderTypeLimit},
		{OrderID: "2", Symbol: "BTC", Type: types.OrderTypeStopLoss, TriggerPrice: decPtr("58000")},
		{OrderID: "3", Symbol: "ETH", Type: types.OrderTypeTakeProfit, TriggerPrice: decPtr("3300")},
	}
	c := New(m, testAddress, nil)

	sl, err := c.GetStopLossPrice("BTC")
	require.NoError(t, err)
	require.NotNil(t, sl)
	assert.Equal(t, "58000", sl.String())

	tp, err := c.GetTakeProfitPrice("BTC")
	require.NoError(t, err)
	assert.Nil(t, tp)
}

func TestCancelAllOrdersScopedToSymbol(t *testing.T) {
	m := newMockExchange()
	m.openOrders = []types.Order{
		{OrderID: "1", Symbol: "BTC"},
		{OrderID: "2", Symbol: "BTC"},
		{OrderID: "3", Symbol: "ETH"},
	}
	c := New(m, testAddress, nil)

	require.NoError(t, c.CancelAllOrders("BTC"))
	assert.Equal(t, []string{"1", "2"}, m.canceled["BTC"])
	assert.Empty(t, m.canceled["ETH"])

	remaining, err := c.GetOpenOrders("")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "ETH", remaining[0].Symbol)
}

func TestCancelAll(t *testing.T) {
	m := newMockExchange()
	m.openOrders = []types.Order{
		{OrderID: "1", Symbol: "BTC"},
		{OrderID: "3", Symbol: "ETH"},
	}
	c := New(m, testAddress, nil)

	require.NoError(t, c.CancelAll())
	assert.Equal(t, []string{"1"}, m.canceled["BTC"])
	assert.Equal(t, []string{"3"}, m.canceled["ETH"])
	assert.Empty(t, m.openOrders)
}

func TestOrdersRequireAuthentication(t *testing.T) {
	c := New(newMockExchange(), "", nil)

	_, err := c.GetOpenOrders("")
	assert.True(t, errors.Is(err, errs.ErrUnauthenticated))
	err = c.CancelAllOrders("BTC")
	assert.True(t, errors.Is(err, errs.ErrUnauthenticated))
}

func TestModifyOrder(t *testing.T) {
	m := newMockExchange()
	m.openOrders = []types.Order{
		{OrderID: "11", Symbol: "ETH", Type: types.OrderTypeLimit, Size: dec("0.5"), LimitPrice: decPtr("2900")},
	}
	c := New(m, testAddress, nil)

	order, err := c.ModifyOrder("11", "ETH", true, dec("0.6"), dec("2950"), nil)
	require.NoError(t, err)

	require.Len(t, m.modified, 1)
	assert.Equal(t, "11", m.modified[0].OrderID)
	assert.Equal(t, "2950", m.modified[0].Req.LimitPrice.String())
	assert.Equal(t, "0.6", m.modified[0].Req.Size.String())
	assert.Equal(t, types.OrderTIFGTC, m.modified[0].Req.TIF)
	assert.Nil(t, m.modified[0].Req.Trigger)
	assert.Equal(t, types.OrderTypeLimit, order.Type)
	assert.Equal(t, types.OrderSideBuy, order.Side)

	// the resting order now carries the new price
	resting, err := c.GetOrderByID("ETH", "11")
	require.NoError(t, err)
	require.NotNil(t, resting)
	assert.Equal(t, "2950", resting.LimitPrice.String())
}

func TestModifyOrderValidation(t *testing.T) {
	m := newMockExchange()
	c := New(m, testAddress, nil)

	_, err := c.ModifyOrder("11", "ETH", true, dec("0"), dec("2950"), nil)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	_, err = c.ModifyOrder("11", "ETH", true, dec("0.6"), dec("-1"), nil)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	assert.Empty(t, m.modified)
}

func TestGetOrderByID(t *testing.T) {
	m := newMockExchange()
	m.openOrders = []types.Order{
		{OrderID: "1", Symbol: "BTC"},
		{OrderID: "2", Symbol: "BTC"},
	}
	c := New(m, testAddress, nil)

	order, err := c.GetOrderByID("BTC", "2")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "2", order.OrderID)

	order, err = c.GetOrderByID("BTC", "99")
	require.NoError(t, err)
	assert.Nil(t, order)
}
