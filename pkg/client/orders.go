package client

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"hlsimple/pkg/errs"
	"hlsimple/pkg/exchange"
	"hlsimple/pkg/types"

	"github.com/shopspring/decimal"
)

// OrderOptions carries the optional parameters of Buy and Sell.
type OrderOptions struct {
	// LimitPrice makes the order a resting limit order; nil places a
	// market order (an aggressive IOC limit off the current mid).
	LimitPrice *decimal.Decimal
	ReduceOnly bool
	PostOnly   bool
	// TIF applies to limit orders only; empty means Gtc.
	TIF types.OrderTIF
}

// TriggerOptions carries the optional parameters of StopLoss and TakeProfit.
type TriggerOptions struct {
	// IsBuy selects the fire direction. The default (sell) protects a
	// long position; pass true when protecting a short. The client does
	// not verify the direction against an actual held position.
	IsBuy bool
}

func (c *Client) Buy(symbol string, size decimal.Decimal, opts *OrderOptions) (types.Order, error) {
	return c.createOrder(symbol, size, true, opts)
}

func (c *Client) Sell(symbol string, size decimal.Decimal, opts *OrderOptions) (types.Order, error) {
	return c.createOrder(symbol, size, false, opts)
}

func (c *Client) createOrder(symbol string, size decimal.Decimal, isBuy bool, opts *OrderOptions) (types.Order, error) {
	if size.Sign() <= 0 {
		return types.Order{}, errs.Validationf("size must be strictly positive, got %s", size)
	}
	var o OrderOptions
	if opts != nil {
		o = *opts
	}
	if o.PostOnly && o.TIF == types.OrderTIFIOC {
		return types.Order{}, errs.Validationf("post-only cannot be combined with IOC")
	}
	if o.PostOnly && o.LimitPrice == nil {
		return types.Order{}, errs.Validationf("post-only requires a limit price")
	}

	orderType := types.OrderTypeLimit
	tif := o.TIF
	var limitPx decimal.Decimal
	if o.LimitPrice == nil {
		// market order: aggressive IOC limit off the current mid
		mid, err := c.GetPrice(symbol)
		if err != nil {
			return types.Order{}, err
		}
		slip := mid.Mul(c.opts.Slippage)
		if isBuy {
			limitPx = mid.Add(slip)
		} else {
			limitPx = mid.Sub(slip)
		}
		orderType = types.OrderTypeMarket
		tif = types.OrderTIFIOC
	} else {
		limitPx = *o.LimitPrice
		if limitPx.Sign() <= 0 {
			return types.Order{}, errs.Validationf("limit price must be strictly positive, got %s", limitPx)
		}
		if tif == "" {
			tif = types.OrderTIFGTC
		}
	}
	if o.PostOnly {
		tif = types.OrderTIFALO
	}

	res, err := c.ex.PlaceOrder(exchange.OrderRequest{
		Symbol:     symbol,
		IsBuy:      isBuy,
		Size:       size,
		LimitPrice: limitPx,
		ReduceOnly: o.ReduceOnly,
		TIF:        tif,
	})
	if err != nil {
		return types.Order{}, err
	}

	return types.Order{
		OrderID:      res.OrderID,
		Symbol:       symbol,
		Side:         types.SideFromIsBuy(isBuy),
		Type:         orderType,
		Size:         size,
		LimitPrice:   &limitPx,
		FilledSize:   res.FilledSize,
		AvgFillPrice: res.AvgFillPrice,
		ReduceOnly:   o.ReduceOnly,
		TIF:          tif,
		Status:       res.Status,
		CreatedAt:    time.Now(),
	}, nil
}

// ModifyOptions carries the optional parameters of ModifyOrder.
type ModifyOptions struct {
	ReduceOnly bool
	// TIF of the replacement order; empty means Gtc.
	TIF types.OrderTIF
}

// ModifyOrder replaces a resting limit order's price, size and flags in a
// single exchange action. The returned order may carry a new id.
func (c *Client) ModifyOrder(orderID, symbol string, isBuy bool, size, price decimal.Decimal, opts *ModifyOptions) (types.Order, error) {
	if size.Sign() <= 0 {
		return types.Order{}, errs.Validationf("size must be strictly positive, got %s", size)
	}
	if price.Sign() <= 0 {
		return types.Order{}, errs.Validationf("price must be strictly positive, got %s", price)
	}
	var o ModifyOptions
	if opts != nil {
		o = *opts
	}
	tif := o.TIF
	if tif == "" {
		tif = types.OrderTIFGTC
	}

	res, err := c.ex.ModifyOrder(orderID, exchange.OrderRequest{
		Symbol:     symbol,
		IsBuy:      isBuy,
		Size:       size,
		LimitPrice: price,
		ReduceOnly: o.ReduceOnly,
		TIF:        tif,
	})
	if err != nil {
		return types.Order{}, err
	}

	return types.Order{
		OrderID:      res.OrderID,
		Symbol:       symbol,
		Side:         types.SideFromIsBuy(isBuy),
		Type:         types.OrderTypeLimit,
		Size:         size,
		LimitPrice:   &price,
		FilledSize:   res.FilledSize,
		AvgFillPrice: res.AvgFillPrice,
		ReduceOnly:   o.ReduceOnly,
		TIF:          tif,
		Status:       res.Status,
		CreatedAt:    time.Now(),
	}, nil
}

// GetOrderByID returns the open order with the given id for symbol, or nil
// when no such order is open.
func (c *Client) GetOrderByID(symbol, orderID string) (*types.Order, error) {
	orders, err := c.GetOpenOrders(symbol)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].OrderID == orderID {
			return &orders[i], nil
		}
	}
	return nil, nil
}

// StopLoss places a reduce-only trigger order that fires a market order in
// the direction given by opts once the market crosses triggerPrice.
func (c *Client) StopLoss(symbol string, size, triggerPrice decimal.Decimal, opts *TriggerOptions) (types.Order, error) {
	return c.placeTrigger(symbol, size, triggerPrice, exchange.TriggerStopLoss, opts)
}

// TakeProfit places the profit-taking counterpart of StopLoss: same trigger
// mechanics, opposite intended price relationship.
func (c *Client) TakeProfit(symbol string, size, triggerPrice decimal.Decimal, opts *TriggerOptions) (types.Order, error) {
	return c.placeTrigger(symbol, size, triggerPrice, exchange.TriggerTakeProfit, opts)
}

func (c *Client) placeTrigger(symbol string, size, triggerPrice decimal.Decimal, kind exchange.TriggerKind, opts *TriggerOptions) (types.Order, error) {
	if size.Sign() <= 0 {
		return types.Order{}, errs.Validationf("size must be strictly positive, got %s", size)
	}
	if triggerPrice.Sign() <= 0 {
		return types.Order{}, errs.Validationf("trigger price must be strictly positive, got %s", triggerPrice)
	}
	isBuy := opts != nil && opts.IsBuy

	res, err := c.ex.PlaceOrder(exchange.OrderRequest{
		Symbol:     symbol,
		IsBuy:      isBuy,
		Size:       size,
		LimitPrice: triggerPrice,
		Trigger: &exchange.Trigger{
			Price:    triggerPrice,
			IsMarket: true,
			Kind:     kind,
		},
		ReduceOnly: true,
		TIF:        types.OrderTIFGTC,
	})
	if err != nil {
		return types.Order{}, err
	}

	orderType := types.OrderTypeStopLoss
	if kind == exchange.TriggerTakeProfit {
		orderType = types.OrderTypeTakeProfit
	}
	return types.Order{
		OrderID:      res.OrderID,
		Symbol:       symbol,
		Side:         types.SideFromIsBuy(isBuy),
		Type:         orderType,
		Size:         size,
		TriggerPrice: &triggerPrice,
		FilledSize:   res.FilledSize,
		AvgFillPrice: res.AvgFillPrice,
		ReduceOnly:   true,
		TIF:          types.OrderTIFGTC,
		Status:       res.Status,
		CreatedAt:    time.Now(),
	}, nil
}

// GetOpenOrders returns the account's open orders, filtered to one symbol
// when symbol is non-empty.
func (c *Client) GetOpenOrders(symbol string) ([]types.Order, error) {
	if !c.IsAuthenticated() {
		return nil, errs.Unauthenticatedf("open orders require an account address")
	}
	orders, err := c.ex.OpenOrders(c.address)
	if err != nil {
		return nil, err
	}
	if symbol == "" {
		return orders, nil
	}
	filtered := make([]types.Order, 0, len(orders))
	for _, order := range orders {
		if order.Symbol == symbol {
			filtered = append(filtered, order)
		}
	}
	return filtered, nil
}

// GetStopLossPrice returns the trigger price of the first open stop-loss
// order for symbol, or nil when none exists.
func (c *Client) GetStopLossPrice(symbol string) (*decimal.Decimal, error) {
	return c.firstTriggerPrice(symbol, types.OrderTypeStopLoss)
}

// GetTakeProfitPrice returns the trigger price of the first open take-profit
// order for symbol, or nil when none exists.
func (c *Client) GetTakeProfitPrice(symbol string) (*decimal.Decimal, error) {
	return c.firstTriggerPrice(symbol, types.OrderTypeTakeProfit)
}

func (c *Client) firstTriggerPrice(symbol string, orderType types.OrderType) (*decimal.Decimal, error) {
	orders, err := c.GetOpenOrders(symbol)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		if order.Type == orderType {
			return order.TriggerPrice, nil
		}
	}
	return nil, nil
}

// HasActiveOrders reports whether any open order exists, optionally for one
// symbol.
func (c *Client) HasActiveOrders(symbol string) (bool, error) {
	orders, err := c.GetOpenOrders(symbol)
	if err != nil {
		return false, err
	}
	return len(orders) > 0, nil
}

// CancelAllOrders cancels every open order for one symbol.
func (c *Client) CancelAllOrders(symbol string) error {
	orders, err := c.GetOpenOrders(symbol)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.OrderID)
	}
	return c.ex.CancelOrders(symbol, ids)
}

// CancelAll cancels every open order across all symbols.
func (c *Client) CancelAll() error {
	orders, err := c.GetOpenOrders("")
	if err != nil {
		return err
	}
	bySymbol := make(map[string][]string)
	for _, order := range orders {
		bySymbol[order.Symbol] = append(bySymbol[order.Symbol], order.OrderID)
	}
	symbols := make([]string, 0, len(bySymbol))
	for symbol := range bySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var failures []string
	for _, symbol := range symbols {
		if err := c.ex.CancelOrders(symbol, bySymbol[symbol]); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", symbol, err))
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("fail to cancel orders: %s", strings.Join(failures, "; "))
	}
	return nil
}
