// Package exchange defines the narrow capability interfaces the trading
// client depends on. Implementations talk to a real venue; tests substitute
// an in-memory one.
package exchange

import (
	"hlsimple/pkg/types"

	"github.com/shopspring/decimal"
)

// TriggerKind selects the exchange-side classification of a trigger order.
type TriggerKind string

const (
	TriggerStopLoss   = TriggerKind("sl")
	TriggerTakeProfit = TriggerKind("tp")
)

// Trigger describes the trigger leg of a stop-loss / take-profit order.
type Trigger struct {
	Price    decimal.Decimal
	IsMarket bool
	Kind     TriggerKind
}

// OrderRequest is one order as handed to the venue. LimitPrice is always
// set: market orders are expressed as aggressive IOC limits and trigger
// orders reuse the trigger price as their limit.
type OrderRequest struct {
	Symbol     string
	IsBuy      bool
	Size       decimal.Decimal
	LimitPrice decimal.Decimal
	Trigger    *Trigger
	ReduceOnly bool
	TIF        types.OrderTIF
}

// OrderResult is the venue's acknowledgement of a placed order.
type OrderResult struct {
	OrderID      string
	Status       types.OrderStatus // open (resting) or filled
	FilledSize   decimal.Decimal
	AvgFillPrice *decimal.Decimal
}

// Quoter provides current mid prices for every listed symbol.
type Quoter interface {
	AllMids() (map[string]decimal.Decimal, error)
}

// OrderPlacer places, modifies and cancels orders.
type OrderPlacer interface {
	PlaceOrder(req OrderRequest) (OrderResult, error)
	ModifyOrder(orderID string, req OrderRequest) (OrderResult, error)
	CancelOrders(symbol string, orderIDs []string) error
}

// AccountReader reads account state for an address.
type AccountReader interface {
	UserState(address string) (types.UserState, error)
	OpenOrders(address string) ([]types.Order, error)
}

// MarketReader exposes market metadata and market data beyond mid prices.
type MarketReader interface {
	SizeDecimals(symbol string) (int, error)
	MarketInfo(symbol string) (types.MarketInfo, error)
	FundingRates() (map[string]decimal.Decimal, error)
	OrderBook(symbol string) (types.OrderBook, error)
}

type Exchange interface {
	Quoter
	OrderPlacer
	AccountReader
	MarketReader
}
