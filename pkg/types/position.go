package types

import "github.com/shopspring/decimal"

type Leverage struct {
	Type  string          `json:"type"` // "cross" or "isolated"
	Value decimal.Decimal `json:"value"`
}

// Position is a snapshot of one open perp position. Size is signed:
// positive means long, negative means short.
type Position struct {
	Symbol           string           `json:"symbol"`
	Size             decimal.Decimal  `json:"size"`
	EntryPrice       decimal.Decimal  `json:"entryPrice"`
	UnrealizedPnl    decimal.Decimal  `json:"unrealizedPnl"`
	Leverage         Leverage         `json:"leverage"`
	LiquidationPrice *decimal.Decimal `json:"liquidationPrice,omitempty"`
	MarginUsed       decimal.Decimal  `json:"marginUsed"`
	PositionValue    decimal.Decimal  `json:"positionValue"`
	ReturnOnEquity   decimal.Decimal  `json:"returnOnEquity"`
}

func (p Position) IsLong() bool {
	return p.Size.Sign() > 0
}

func (p Position) IsShort() bool {
	return p.Size.Sign() < 0
}

func (p Position) Side() OrderSide {
	if p.IsShort() {
		return OrderSideSell
	}
	return OrderSideBuy
}
