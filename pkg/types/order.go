package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	OrderSideBuy  = OrderSide("buy")
	OrderSideSell = OrderSide("sell")
)

type OrderType string

const (
	OrderTypeMarket     = OrderType("market")
	OrderTypeLimit      = OrderType("limit")
	OrderTypeStopLoss   = OrderType("stop_loss")
	OrderTypeTakeProfit = OrderType("take_profit")
)

type OrderTIF string // TimeInForce

const (
	OrderTIFGTC = OrderTIF("Gtc") // Good 'Til Canceled
	OrderTIFIOC = OrderTIF("Ioc") // Immediate or Cancel
	OrderTIFALO = OrderTIF("Alo") // Add Liquidity Only (post-only)
)

type OrderStatus string

const (
	OrderStatusOpen     = OrderStatus("open")
	OrderStatusFilled   = OrderStatus("filled")
	OrderStatusCanceled = OrderStatus("canceled")
	OrderStatusRejected = OrderStatus("rejected")
)

// Order is the record returned by placement and open-order queries. It is a
// snapshot of one exchange response and carries no identity across calls.
type Order struct {
	OrderID      string           `json:"orderId"`
	Symbol       string           `json:"symbol"`
	Side         OrderSide        `json:"side"`
	Type         OrderType        `json:"type"`
	Size         decimal.Decimal  `json:"size"`
	LimitPrice   *decimal.Decimal `json:"limitPrice,omitempty"`
	TriggerPrice *decimal.Decimal `json:"triggerPrice,omitempty"`
	FilledSize   decimal.Decimal  `json:"filledSize"`
	AvgFillPrice *decimal.Decimal `json:"avgFillPrice,omitempty"`
	ReduceOnly   bool             `json:"reduceOnly"`
	TIF          OrderTIF         `json:"tif"`
	Status       OrderStatus      `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
}

func SideFromIsBuy(isBuy bool) OrderSide {
	if isBuy {
		return OrderSideBuy
	}
	return OrderSideSell
}
