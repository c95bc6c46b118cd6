package client

import (
	"strings"
	"testing"

	"hlsimple/pkg/errs"
	"hlsimple/pkg/exchange"
	"hlsimple/pkg/types"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenLongPositionPlacesThreeOrders(t *testing.T) {
	m := newMockExchange()
	c := New(m, testAddress, nil)

	placed, err := c.OpenLongPosition("BTC", dec("0.001"), &PositionOptions{
		StopLossPrice:   decPtr("58000"),
		TakeProfitPrice: decPtr("66000"),
	})
	require.NoError(t, err)

	require.NotNil(t, placed.Entry)
	require.NotNil(t, placed.StopLoss)
	require.NotNil(t, placed.TakeProfit)
	require.Len(t, m.placed, 3)

	entry, sl, tp := m.placed[0], m.placed[1], m.placed[2]
	assert.True(t, entry.IsBuy)
	assert.Nil(t, entry.Trigger)

	// protective legs fire as reduce-only sells
	for _, leg := range []exchange.OrderRequest{sl, tp} {
		assert.False(t, leg.IsBuy)
		assert.True(t, leg.ReduceOnly)
		require.NotNil(t, leg.Trigger)
	}
	assert.Equal(t, exchange.TriggerStopLoss, sl.Trigger.Kind)
	assert.Equal(t, exchange.TriggerTakeProfit, tp.Trigger.Kind)
}

func TestOpenShortPositionLegsFireAsBuys(t *testing.T) {
	m := newMockExchange()
	c := New(m, testAddress, nil)

	placed, err := c.OpenShortPosition("BTC", dec("0.001"), &PositionOptions{
		StopLossPrice:   decPtr("62000"),
		TakeProfitPrice: decPtr("55000"),
	})
	require.NoError(t, err)
	require.Len(t, m.placed, 3)

	assert.False(t, m.placed[0].IsBuy)
	assert.True(t, m.placed[1].IsBuy)
	assert.True(t, m.placed[2].IsBuy)
	assert.Equal(t, types.OrderSideBuy, placed.StopLoss.Side)
}

func TestOpenLongPositionRejectsInvertedLevels(t *testing.T) {
	m := newMockExchange()
	c := New(m, testAddress, nil)

	// stop above the mid makes no sense for a long; the entry is already
	// placed when the level is checked
	placed, err := c.OpenLongPosition("BTC", dec("0.001"), &PositionOptions{
		StopLossPrice: decPtr("61000"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.NotNil(t, placed.Entry)
	assert.Nil(t, placed.StopLoss)
	assert.Len(t, m.placed, 1)
}

func TestOpenPositionLimitEntryRefPrice(t *testing.T) {
	m := newMockExchange()
	c := New(m, testAddress, nil)

	// 59000 stop is below the 59500 limit entry even though the mid is
	// 60000; levels are checked against the entry limit
	_, err := c.OpenLongPosition("BTC", dec("0.001"), &PositionOptions{
		LimitPrice:    decPtr("59500"),
		StopLossPrice: decPtr("59000"),
	})
	require.NoError(t, err)
	require.Len(t, m.placed, 2)
	assert.Equal(t, "59500", m.placed[0].LimitPrice.String())
	assert.Equal(t, types.OrderTIFGTC, m.placed[0].TIF)
}

func TestOpenPositionProtectiveFailureSurfaced(t *testing.T) {
	m := newMockExchange()
	m.placeErr = func(call int, req exchange.OrderRequest) error {
		if req.Trigger != nil {
			return errs.Remotef("err", "trigger rejected")
		}
		return nil
	}
	c := New(m, testAddress, nil)

	placed, err := c.OpenLongPosition("BTC", dec("0.001"), &PositionOptions{
		StopLossPrice: decPtr("58000"),
	})
	require.Error(t, err)
	assert.True(t, errs.IsRemote(err))
	assert.Contains(t, err.Error(), "entry remains open")
	assert.NotNil(t, placed.Entry)
	assert.Nil(t, placed.StopLoss)
}

func TestOpenPositionRollback(t *testing.T) {
	m := newMockExchange()
	m.applyFills = true
	m.placeErr = func(call int, req exchange.OrderRequest) error {
		if req.Trigger != nil {
			return errs.Remotef("err", "trigger rejected")
		}
		return nil
	}
	c := New(m, testAddress, &Options{RollbackOnProtectiveFailure: true})

	_, err := c.OpenLongPosition("BTC", dec("0.001"), &PositionOptions{
		StopLossPrice: decPtr("58000"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rollback attempted")
	assert.True(t, errs.IsRemote(err), "rollback must not mask the original failure")

	// the compensating close flattened the book
	has, herr := c.HasPosition("BTC")
	require.NoError(t, herr)
	assert.False(t, has)
}

func TestBuyThenCloseRoundTrip(t *testing.T) {
	m := newMockExchange()
	m.applyFills = true
	c := New(m, testAddress, nil)

	order, err := c.Buy("BTC", dec("0.001"), nil)
	require.NoError(t, err)
	assert.Equal(t, types.OrderStatusFilled, order.Status)

	size, err := c.GetPositionSize("BTC")
	require.NoError(t, err)
	require.NotNil(t, size)
	assert.Equal(t, "0.001", size.String())

	direction, err := c.GetPositionDirection("BTC")
	require.NoError(t, err)
	assert.Equal(t, types.OrderSideBuy, direction)

	closeOrder, err := c.Close("BTC")
	require.NoError(t, err)
	assert.Equal(t, types.OrderSideSell, closeOrder.Side)

	require.Len(t, m.placed, 2)
	assert.True(t, m.placed[1].ReduceOnly)

	has, err := c.HasPosition("BTC")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestCloseShortBuysBack(t *testing.T) {
	m := newMockExchange()
	m.state.Positions = []types.Position{
		{Symbol: "ETH", Size: dec("-0.5"), EntryPrice: dec("3100")},
	}
	c := New(m, testAddress, nil)

	order, err := c.Close("ETH")
	require.NoError(t, err)
	assert.Equal(t, types.OrderSideBuy, order.Side)
	require.Len(t, m.placed, 1)
	assert.Equal(t, "0.5", m.placed[0].Size.String())
	assert.True(t, m.placed[0].ReduceOnly)
}

func TestCloseWhenFlat(t *testing.T) {
	m := newMockExchange()

	_, err := New(m, testAddress, nil).Close("BTC")
	assert.True(t, errors.Is(err, errs.ErrNoPosition))

	order, err := New(m, testAddress, &Options{IdempotentClose: true}).Close("BTC")
	require.NoError(t, err)
	assert.Empty(t, order.OrderID)
	assert.Empty(t, m.placed)
}

func TestCloseAllPositions(t *testing.T) {
	m := newMockExchange()
	m.state.Positions = []types.Position{
		{Symbol: "BTC", Size: dec("0.001"), EntryPrice: dec("59000")},
		{Symbol: "ETH", Size: dec("-0.5"), EntryPrice: dec("3100")},
		{Symbol: "SOL", Size: dec("0")}, // stale flat entry, skipped
	}
	c := New(m, testAddress, nil)

	results, err := c.CloseAllPositions()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, types.OrderSideSell, results["BTC"].Side)
	assert.Equal(t, types.OrderSideBuy, results["ETH"].Side)
}

func TestGetPositionDirectionWhenFlat(t *testing.T) {
	c := New(newMockExchange(), testAddress, nil)

	_, err := c.GetPositionDirection("BTC")
	assert.True(t, errors.Is(err, errs.ErrNoPosition))

	size, err := c.GetPositionSize("BTC")
	require.NoError(t, err)
	assert.Nil(t, size)
}

func TestCalculatePositionSize(t *testing.T) {
	m := newMockExchange()
	c := New(m, testAddress, nil)

	// risking 100 with a 2000-wide stop on a 60000 mid
	size, err := c.CalculatePositionSize("BTC", dec("100"), dec("58000"))
	require.NoError(t, err)
	assert.Equal(t, "0.05", size.String())

	// same math short side: stop above the mid
	size, err = c.CalculatePositionSize("BTC", dec("100"), dec("62000"))
	require.NoError(t, err)
	assert.Equal(t, "0.05", size.String())

	_, err = c.CalculatePositionSize("BTC", dec("0"), dec("58000"))
	assert.True(t, errors.Is(err, errs.ErrValidation))

	_, err = c.CalculatePositionSize("BTC", dec("100"), dec("60000"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "stop price"))
}

func TestUpdateStopLossModifiesInPlace(t *testing.T) {
	m := newMockExchange()
	m.state.Positions = []types.Position{
		{Symbol: "BTC", Size: dec("0.001"), EntryPrice: dec("59000")},
	}
	m.openOrders = []types.Order{
		{OrderID: "41", Symbol: "BTC", Type: types.OrderTypeStopLoss, Size: dec("0.001"), TriggerPrice: decPtr("57000")},
	}
	c := New(m, testAddress, nil)

	order, err := c.UpdateStopLoss("BTC", dec("58000"))
	require.NoError(t, err)

	require.Len(t, m.modified, 1)
	assert.Equal(t, "41", m.modified[0].OrderID)
	req := m.modified[0].Req
	require.NotNil(t, req.Trigger)
	assert.Equal(t, "58000", req.Trigger.Price.String())
	assert.Equal(t, exchange.TriggerStopLoss, req.Trigger.Kind)
	assert.False(t, req.IsBuy) // stop on a long sells
	assert.True(t, req.ReduceOnly)
	assert.Empty(t, m.placed, "in-place modify must not place a new order")
	assert.Equal(t, types.OrderTypeStopLoss, order.Type)

	sl, err := c.GetStopLossPrice("BTC")
	require.NoError(t, err)
	require.NotNil(t, sl)
	assert.Equal(t, "58000", sl.String())
}

func TestUpdateStopLossPlacesWhenMissing(t *testing.T) {
	m := newMockExchange()
	m.state.Positions = []types.Position{
		{Symbol: "BTC", Size: dec("-0.002"), EntryPrice: dec("60000")},
	}
	c := New(m, testAddress, nil)

	order, err := c.UpdateStopLoss("BTC", dec("62000"))
	require.NoError(t, err)

	assert.Empty(t, m.modified)
	require.Len(t, m.placed, 1)
	assert.True(t, m.placed[0].IsBuy) // stop on a short buys back
	assert.Equal(t, "0.002", m.placed[0].Size.String())
	assert.Equal(t, types.OrderSideBuy, order.Side)
}

func TestUpdateStopLossFallsBackToCancelAndPlace(t *testing.T) {
	m := newMockExchange()
	m.state.Positions = []types.Position{
		{Symbol: "BTC", Size: dec("0.001"), EntryPrice: dec("59000")},
	}
	m.openOrders = []types.Order{
		{OrderID: "41", Symbol: "BTC", Type: types.OrderTypeStopLoss, Size: dec("0.001"), TriggerPrice: decPtr("57000")},
	}
	m.modifyErr = errs.Remotef("err", "modify rejected")
	c := New(m, testAddress, nil)

	order, err := c.UpdateStopLoss("BTC", dec("58000"))
	require.NoError(t, err)

	assert.Equal(t, []string{"41"}, m.canceled["BTC"])
	require.Len(t, m.placed, 1)
	require.NotNil(t, m.placed[0].Trigger)
	assert.Equal(t, "58000", m.placed[0].Trigger.Price.String())
	assert.Equal(t, types.OrderTypeStopLoss, order.Type)
}

func TestUpdateTakeProfit(t *testing.T) {
	m := newMockExchange()
	m.state.Positions = []types.Position{
		{Symbol: "BTC", Size: dec("0.001"), EntryPrice: dec("59000")},
	}
	m.openOrders = []types.Order{
		{OrderID: "42", Symbol: "BTC", Type: types.OrderTypeTakeProfit, Size: dec("0.001"), TriggerPrice: decPtr("65000")},
	}
	c := New(m, testAddress, nil)

	order, err := c.UpdateTakeProfit("BTC", dec("66000"))
	require.NoError(t, err)

	require.Len(t, m.modified, 1)
	assert.Equal(t, "42", m.modified[0].OrderID)
	assert.Equal(t, exchange.TriggerTakeProfit, m.modified[0].Req.Trigger.Kind)
	assert.Equal(t, types.OrderTypeTakeProfit, order.Type)
	require.NotNil(t, order.TriggerPrice)
	assert.Equal(t, "66000", order.TriggerPrice.String())
}

func TestUpdateProtectiveWhenFlat(t *testing.T) {
	c := New(newMockExchange(), testAddress, nil)

	_, err := c.UpdateStopLoss("BTC", dec("58000"))
	assert.True(t, errors.Is(err, errs.ErrNoPosition))
	_, err = c.UpdateTakeProfit("BTC", dec("66000"))
	assert.True(t, errors.Is(err, errs.ErrNoPosition))
}

func TestTrailingStop(t *testing.T) {
	m := newMockExchange() // BTC mid 60000
	m.state.Positions = []types.Position{
		{Symbol: "BTC", Size: dec("0.001"), EntryPrice: dec("59000")},
	}
	c := New(m, testAddress, nil)

	// long trails 2% below the mid; no existing stop, so one is placed
	_, err := c.TrailingStop("BTC", dec("2"))
	require.NoError(t, err)
	require.Len(t, m.placed, 1)
	require.NotNil(t, m.placed[0].Trigger)
	assert.Equal(t, "58800", m.placed[0].Trigger.Price.String())
	assert.False(t, m.placed[0].IsBuy)

	short := newMockExchange()
	short.state.Positions = []types.Position{
		{Symbol: "BTC", Size: dec("-0.001"), EntryPrice: dec("61000")},
	}
	cs := New(short, testAddress, nil)

	// short trails 2% above the mid
	_, err = cs.TrailingStop("BTC", dec("2"))
	require.NoError(t, err)
	require.Len(t, short.placed, 1)
	assert.Equal(t, "61200", short.placed[0].Trigger.Price.String())
	assert.True(t, short.placed[0].IsBuy)

	_, err = c.TrailingStop("BTC", dec("0"))
	assert.True(t, errors.Is(err, errs.ErrValidation))
}
