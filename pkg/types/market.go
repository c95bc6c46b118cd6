package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketInfo is the static metadata of one perp market.
type MarketInfo struct {
	Symbol       string `json:"symbol"`
	SzDecimals   int    `json:"szDecimals"`
	MaxLeverage  int    `json:"maxLeverage"`
	OnlyIsolated bool   `json:"onlyIsolated"`
}

// BookLevel is one price level of the order book.
type BookLevel struct {
	Price     decimal.Decimal `json:"price"`
	Size      decimal.Decimal `json:"size"`
	NumOrders int             `json:"numOrders"`
}

// OrderBook is an L2 snapshot: levels sorted best-first as the exchange
// reports them.
type OrderBook struct {
	Symbol string      `json:"symbol"`
	Time   time.Time   `json:"time"`
	Bids   []BookLevel `json:"bids"`
	Asks   []BookLevel `json:"asks"`
}
