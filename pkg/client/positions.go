package client

import (
	"fmt"
	"strings"
	"time"

	"hlsimple/pkg/errs"
	"hlsimple/pkg/exchange"
	"hlsimple/pkg/types"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// PositionOptions carries the optional parameters of OpenLongPosition and
// OpenShortPosition.
type PositionOptions struct {
	StopLossPrice   *decimal.Decimal
	TakeProfitPrice *decimal.Decimal
	// LimitPrice makes the entry a resting limit order; nil enters at
	// market.
	LimitPrice *decimal.Decimal
}

// PositionOrders groups the orders placed by OpenLongPosition and
// OpenShortPosition. StopLoss and TakeProfit are set only when requested
// and successfully placed.
type PositionOrders struct {
	Entry      *types.Order
	StopLoss   *types.Order
	TakeProfit *types.Order
}

// GetPositions returns the account's open positions in the order the
// exchange enumerates them; empty when flat.
func (c *Client) GetPositions() ([]types.Position, error) {
	state, err := c.GetUserState("")
	if err != nil {
		return nil, err
	}
	return state.Positions, nil
}

func (c *Client) findPosition(symbol string) (*types.Position, error) {
	positions, err := c.GetPositions()
	if err != nil {
		return nil, err
	}
	for i := range positions {
		if positions[i].Symbol == symbol && !positions[i].Size.IsZero() {
			return &positions[i], nil
		}
	}
	return nil, nil
}

func (c *Client) HasPosition(symbol string) (bool, error) {
	position, err := c.findPosition(symbol)
	if err != nil {
		return false, err
	}
	return position != nil, nil
}

// GetPositionSize returns the signed size of the position for symbol, or
// nil when flat.
func (c *Client) GetPositionSize(symbol string) (*decimal.Decimal, error) {
	position, err := c.findPosition(symbol)
	if err != nil || position == nil {
		return nil, err
	}
	return &position.Size, nil
}

// GetPositionDirection returns the held side for symbol; ErrNoPosition when
// flat.
func (c *Client) GetPositionDirection(symbol string) (types.OrderSide, error) {
	position, err := c.findPosition(symbol)
	if err != nil {
		return "", err
	}
	if position == nil {
		return "", errs.NoPositionf("no open position for %v", symbol)
	}
	return position.Side(), nil
}

// OpenLongPosition buys to open and optionally attaches protective
// stop-loss / take-profit legs (both firing as sells).
func (c *Client) OpenLongPosition(symbol string, size decimal.Decimal, opts *PositionOptions) (PositionOrders, error) {
	return c.openPosition(symbol, size, true, opts)
}

// OpenShortPosition sells to open; protective legs fire as buys.
func (c *Client) OpenShortPosition(symbol string, size decimal.Decimal, opts *PositionOptions) (PositionOrders, error) {
	return c.openPosition(symbol, size, false, opts)
}

func (c *Client) openPosition(symbol string, size decimal.Decimal, isLong bool, opts *PositionOptions) (PositionOrders, error) {
	var o PositionOptions
	if opts != nil {
		o = *opts
	}
	var placed PositionOrders

	entry, err := c.createOrder(symbol, size, isLong, &OrderOptions{LimitPrice: o.LimitPrice})
	if err != nil {
		return placed, err
	}
	placed.Entry = &entry

	if o.StopLossPrice == nil && o.TakeProfitPrice == nil {
		return placed, nil
	}

	// reference price for sanity-checking protective levels: the entry
	// limit when given, the current mid otherwise
	ref := o.LimitPrice
	if ref == nil {
		mid, err := c.GetPrice(symbol)
		if err != nil {
			return placed, c.protectiveFailure(symbol, err)
		}
		ref = &mid
	}

	legOpts := &TriggerOptions{IsBuy: !isLong}
	if o.StopLossPrice != nil {
		if err := validateProtectiveLevel(isLong, protectStop, *o.StopLossPrice, *ref); err != nil {
			return placed, c.protectiveFailure(symbol, err)
		}
		stopLoss, err := c.StopLoss(symbol, size, *o.StopLossPrice, legOpts)
		if err != nil {
			return placed, c.protectiveFailure(symbol, err)
		}
		placed.StopLoss = &stopLoss
	}
	if o.TakeProfitPrice != nil {
		if err := validateProtectiveLevel(isLong, protectTakeProfit, *o.TakeProfitPrice, *ref); err != nil {
			return placed, c.protectiveFailure(symbol, err)
		}
		takeProfit, err := c.TakeProfit(symbol, size, *o.TakeProfitPrice, legOpts)
		if err != nil {
			return placed, c.protectiveFailure(symbol, err)
		}
		placed.TakeProfit = &takeProfit
	}
	return placed, nil
}

type protectiveKind int

const (
	protectStop protectiveKind = iota
	protectTakeProfit
)

func validateProtectiveLevel(isLong bool, kind protectiveKind, level, ref decimal.Decimal) error {
	switch {
	case isLong && kind == protectStop && level.GreaterThanOrEqual(ref):
		return errs.Validationf("stop loss price %s must be below entry price %s for longs", level, ref)
	case isLong && kind == protectTakeProfit && level.LessThanOrEqual(ref):
		return errs.Validationf("take profit price %s must be above entry price %s for longs", level, ref)
	case !isLong && kind == protectStop && level.LessThanOrEqual(ref):
		return errs.Validationf("stop loss price %s must be above entry price %s for shorts", level, ref)
	case !isLong && kind == protectTakeProfit && level.GreaterThanOrEqual(ref):
		return errs.Validationf("take profit price %s must be below entry price %s for shorts", level, ref)
	}
	return nil
}

// protectiveFailure surfaces a protective-leg error. The entry order is
// left open unless rollback is enabled; compensation is best effort and
// never masks the original failure.
func (c *Client) protectiveFailure(symbol string, cause error) error {
	if !c.opts.RollbackOnProtectiveFailure {
		return errors.Wrapf(cause, "protective order for %s failed; entry remains open", symbol)
	}
	if err := c.CancelAllOrders(symbol); err != nil {
		log.Warnf("rollback: fail to cancel open orders for %s: %v", symbol, err)
	}
	if _, err := c.Close(symbol); err != nil && !errors.Is(err, errs.ErrNoPosition) {
		log.Warnf("rollback: fail to close position for %s: %v", symbol, err)
	}
	return errors.Wrapf(cause, "protective order for %s failed; rollback attempted", symbol)
}

// UpdateStopLoss moves the position's stop to newPrice: the first open
// stop-loss order is modified in place, or a fresh one sized to the
// position is placed when none exists. ErrNoPosition when flat.
func (c *Client) UpdateStopLoss(symbol string, newPrice decimal.Decimal) (types.Order, error) {
	return c.updateProtective(symbol, newPrice, types.OrderTypeStopLoss)
}

// UpdateTakeProfit is the profit-taking counterpart of UpdateStopLoss.
func (c *Client) UpdateTakeProfit(symbol string, newPrice decimal.Decimal) (types.Order, error) {
	return c.updateProtective(symbol, newPrice, types.OrderTypeTakeProfit)
}

func (c *Client) updateProtective(symbol string, newPrice decimal.Decimal, orderType types.OrderType) (types.Order, error) {
	if newPrice.Sign() <= 0 {
		return types.Order{}, errs.Validationf("trigger price must be strictly positive, got %s", newPrice)
	}
	position, err := c.findPosition(symbol)
	if err != nil {
		return types.Order{}, err
	}
	if position == nil {
		return types.Order{}, errs.NoPositionf("no open position for %v", symbol)
	}
	size := position.Size.Abs()
	isBuy := position.IsShort() // protective legs fire against the position

	kind := exchange.TriggerStopLoss
	if orderType == types.OrderTypeTakeProfit {
		kind = exchange.TriggerTakeProfit
	}

	existing, err := c.firstOrderOfType(symbol, orderType)
	if err != nil {
		return types.Order{}, err
	}
	if existing == nil {
		return c.placeTrigger(symbol, size, newPrice, kind, &TriggerOptions{IsBuy: isBuy})
	}

	res, err := c.ex.ModifyOrder(existing.OrderID, exchange.OrderRequest{
		Symbol:     symbol,
		IsBuy:      isBuy,
		Size:       size,
		LimitPrice: newPrice,
		Trigger: &exchange.Trigger{
			Price:    newPrice,
			IsMarket: true,
			Kind:     kind,
		},
		ReduceOnly: true,
		TIF:        types.OrderTIFGTC,
	})
	if err != nil {
		// some venues reject in-place trigger modifies; cancel and re-place
		log.Warnf("fail to modify %s order for %s, canceling and re-placing: %v", orderType, symbol, err)
		if cerr := c.ex.CancelOrders(symbol, []string{existing.OrderID}); cerr != nil {
			log.Warnf("fail to cancel %s order %s for %s: %v", orderType, existing.OrderID, symbol, cerr)
		}
		return c.placeTrigger(symbol, size, newPrice, kind, &TriggerOptions{IsBuy: isBuy})
	}

	return types.Order{
		OrderID:      res.OrderID,
		Symbol:       symbol,
		Side:         types.SideFromIsBuy(isBuy),
		Type:         orderType,
		Size:         size,
		TriggerPrice: &newPrice,
		ReduceOnly:   true,
		TIF:          types.OrderTIFGTC,
		Status:       res.Status,
		CreatedAt:    time.Now(),
	}, nil
}

func (c *Client) firstOrderOfType(symbol string, orderType types.OrderType) (*types.Order, error) {
	orders, err := c.GetOpenOrders(symbol)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].Type == orderType {
			return &orders[i], nil
		}
	}
	return nil, nil
}

// TrailingStop recomputes the stop from the current mid and trailPercent
// (2 means 2%) and applies it via UpdateStopLoss.
func (c *Client) TrailingStop(symbol string, trailPercent decimal.Decimal) (types.Order, error) {
	if trailPercent.Sign() <= 0 {
		return types.Order{}, errs.Validationf("trail percent must be strictly positive, got %s", trailPercent)
	}
	px, err := c.GetPrice(symbol)
	if err != nil {
		return types.Order{}, err
	}
	direction, err := c.GetPositionDirection(symbol)
	if err != nil {
		return types.Order{}, err
	}

	trail := px.Mul(trailPercent.Div(decimal.NewFromInt(100)))
	stop := px.Sub(trail)
	if direction == types.OrderSideSell {
		stop = px.Add(trail)
	}
	return c.UpdateStopLoss(symbol, stop)
}

// Close flattens the current position for symbol with a reduce-only market
// order. When flat it returns ErrNoPosition, or a zero Order if the client
// was built with IdempotentClose.
func (c *Client) Close(symbol string) (types.Order, error) {
	position, err := c.findPosition(symbol)
	if err != nil {
		return types.Order{}, err
	}
	if position == nil {
		if c.opts.IdempotentClose {
			log.Debugf("close %s: no open position, skipping", symbol)
			return types.Order{}, nil
		}
		return types.Order{}, errs.NoPositionf("no open position for %v", symbol)
	}

	size := position.Size.Abs()
	isBuy := position.IsShort() // buy to close shorts, sell to close longs
	return c.createOrder(symbol, size, isBuy, &OrderOptions{ReduceOnly: true})
}

// CloseAllPositions closes every open position, best effort, and returns
// the close order per symbol.
func (c *Client) CloseAllPositions() (map[string]types.Order, error) {
	positions, err := c.GetPositions()
	if err != nil {
		return nil, err
	}

	results := make(map[string]types.Order)
	var failures []string
	for _, position := range positions {
		if position.Size.IsZero() {
			continue
		}
		order, err := c.createOrder(position.Symbol, position.Size.Abs(), position.IsShort(), &OrderOptions{ReduceOnly: true})
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", position.Symbol, err))
			continue
		}
		results[position.Symbol] = order
	}
	if len(failures) > 0 {
		return results, fmt.Errorf("fail to close positions: %s", strings.Join(failures, "; "))
	}
	return results, nil
}

// CalculatePositionSize sizes a position so that being stopped out at
// stopPrice loses approximately riskAmount, quantized to the market's size
// decimals.
func (c *Client) CalculatePositionSize(symbol string, riskAmount, stopPrice decimal.Decimal) (decimal.Decimal, error) {
	if riskAmount.Sign() <= 0 {
		return decimal.Decimal{}, errs.Validationf("risk amount must be strictly positive, got %s", riskAmount)
	}
	if stopPrice.Sign() <= 0 {
		return decimal.Decimal{}, errs.Validationf("stop price must be strictly positive, got %s", stopPrice)
	}
	px, err := c.GetPrice(symbol)
	if err != nil {
		return decimal.Decimal{}, err
	}
	riskPerUnit := px.Sub(stopPrice).Abs()
	if riskPerUnit.IsZero() {
		return decimal.Decimal{}, errs.Validationf("stop price cannot equal the current price %s", px)
	}
	szDecimals, err := c.ex.SizeDecimals(symbol)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return riskAmount.Div(riskPerUnit).Round(int32(szDecimals)), nil
}
