package hpl

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"hlsimple/pkg/types"
	"hlsimple/pkg/utils"

	"github.com/shopspring/decimal"
)

func parseOrderSide(side string) (types.OrderSide, error) {
	switch strings.ToUpper(side) {
	case "B":
		return types.OrderSideBuy, nil
	case "A":
		return types.OrderSideSell, nil
	default:
		return "", fmt.Errorf("unknown order side: %v", side)
	}
}

func parseMarginSummary(wire marginSummaryWire) (types.MarginSummary, error) {
	accountValue, err := utils.ParseDecimalOrZero(wire.AccountValue)
	if err != nil {
		return types.MarginSummary{}, err
	}
	marginUsed, err := utils.ParseDecimalOrZero(wire.TotalMarginUsed)
	if err != nil {
		return types.MarginSummary{}, err
	}
	ntlPos, err := utils.ParseDecimalOrZero(wire.TotalNtlPos)
	if err != nil {
		return types.MarginSummary{}, err
	}
	rawUsd, err := utils.ParseDecimalOrZero(wire.TotalRawUsd)
	if err != nil {
		return types.MarginSummary{}, err
	}
	return types.MarginSummary{
		AccountValue:    accountValue,
		TotalMarginUsed: marginUsed,
		TotalNtlPos:     ntlPos,
		TotalRawUsd:     rawUsd,
	}, nil
}

func parseUserState(res clearinghouseStateResponse) (types.UserState, error) {
	marginSummary, err := parseMarginSummary(res.MarginSummary)
	if err != nil {
		return types.UserState{}, err
	}
	crossSummary, err := parseMarginSummary(res.CrossMarginSummary)
	if err != nil {
		return types.UserState{}, err
	}
	withdrawable, err := utils.ParseDecimalOrZero(res.Withdrawable)
	if err != nil {
		return types.UserState{}, err
	}

	positions := make([]types.Position, 0, len(res.AssetPositions))
	for _, wire := range res.AssetPositions {
		position, err := parsePosition(wire)
		if err != nil {
			return types.UserState{}, err
		}
		positions = append(positions, position)
	}

	return types.UserState{
		MarginSummary:      marginSummary,
		CrossMarginSummary: crossSummary,
		Withdrawable:       withdrawable,
		Positions:          positions,
	}, nil
}

func parsePosition(wire assetPositionWire) (types.Position, error) {
	pos := wire.Position
	size, err := utils.ParseDecimal(pos.Szi)
	if err != nil {
		return types.Position{}, err
	}
	entryPx := decimal.Zero
	if pos.EntryPx != nil {
		if entryPx, err = utils.ParseDecimal(*pos.EntryPx); err != nil {
			return types.Position{}, err
		}
	}
	unrealizedPnl, err := utils.ParseDecimalOrZero(pos.UnrealizedPnl)
	if err != nil {
		return types.Position{}, err
	}
	marginUsed, err := utils.ParseDecimalOrZero(pos.MarginUsed)
	if err != nil {
		return types.Position{}, err
	}
	positionValue, err := utils.ParseDecimalOrZero(pos.PositionValue)
	if err != nil {
		return types.Position{}, err
	}
	roe, err := utils.ParseDecimalOrZero(pos.ReturnOnEquity)
	if err != nil {
		return types.Position{}, err
	}
	leverageValue, err := utils.ParseDecimalOrZero(pos.Leverage.Value.String())
	if err != nil {
		return types.Position{}, err
	}

	var liquidationPx *decimal.Decimal
	if pos.LiquidationPx != nil {
		px, err := utils.ParseDecimal(*pos.LiquidationPx)
		if err != nil {
			return types.Position{}, err
		}
		liquidationPx = &px
	}

	return types.Position{
		Symbol:           pos.Coin,
		Size:             size,
		EntryPrice:       entryPx,
		UnrealizedPnl:    unrealizedPnl,
		Leverage:         types.Leverage{Type: pos.Leverage.Type, Value: leverageValue},
		LiquidationPrice: liquidationPx,
		MarginUsed:       marginUsed,
		PositionValue:    positionValue,
		ReturnOnEquity:   roe,
	}, nil
}

func parseOpenOrder(wire frontendOpenOrderWire) (types.Order, error) {
	side, err := parseOrderSide(wire.Side)
	if err != nil {
		return types.Order{}, err
	}
	size, err := utils.ParseDecimal(wire.Sz)
	if err != nil {
		return types.Order{}, err
	}
	origSize, err := utils.ParseDecimalOrZero(wire.OrigSz)
	if err != nil {
		return types.Order{}, err
	}

	order := types.Order{
		OrderID:    strconv.FormatInt(wire.Oid, 10),
		Symbol:     wire.Coin,
		Side:       side,
		Size:       size,
		FilledSize: origSize.Sub(size),
		ReduceOnly: wire.ReduceOnly,
		Status:     types.OrderStatusOpen,
		TIF:        types.OrderTIFGTC,
		CreatedAt:  parseTimestamp(wire.Timestamp),
	}
	if wire.Tif != nil && *wire.Tif != "" {
		order.TIF = types.OrderTIF(*wire.Tif)
	}

	if wire.LimitPx != "" {
		limitPx, err := utils.ParseDecimal(wire.LimitPx)
		if err != nil {
			return types.Order{}, err
		}
		order.LimitPrice = &limitPx
	}

	// HPL reports trigger orders with a human readable orderType, e.g.
	// "Take Profit Market" or "Stop Market"
	switch {
	case wire.IsTrigger && strings.Contains(wire.OrderType, "Take Profit"):
		order.Type = types.OrderTypeTakeProfit
	case wire.IsTrigger && strings.Contains(wire.OrderType, "Stop"):
		order.Type = types.OrderTypeStopLoss
	default:
		order.Type = types.OrderTypeLimit
	}
	if wire.IsTrigger && wire.TriggerPx != "" {
		triggerPx, err := utils.ParseDecimal(wire.TriggerPx)
		if err != nil {
			return types.Order{}, err
		}
		order.TriggerPrice = &triggerPx
	}
	return order, nil
}

func parseFundingRates(meta metaResponse, ctxs []assetCtxWire) (map[string]decimal.Decimal, error) {
	if len(ctxs) < len(meta.Universe) {
		return nil, fmt.Errorf("asset contexts truncated: %d contexts for %d markets", len(ctxs), len(meta.Universe))
	}
	rates := make(map[string]decimal.Decimal, len(meta.Universe))
	for i, u := range meta.Universe {
		rate, err := utils.ParseDecimalOrZero(ctxs[i].Funding)
		if err != nil {
			return nil, err
		}
		rates[u.Name] = rate
	}
	return rates, nil
}

func parseOrderBook(res l2BookResponse) (types.OrderBook, error) {
	if len(res.Levels) != 2 {
		return types.OrderBook{}, fmt.Errorf("unexpected l2Book levels count: %d", len(res.Levels))
	}
	bids, err := parseBookSide(res.Levels[0])
	if err != nil {
		return types.OrderBook{}, err
	}
	asks, err := parseBookSide(res.Levels[1])
	if err != nil {
		return types.OrderBook{}, err
	}
	return types.OrderBook{
		Symbol: res.Coin,
		Time:   parseTimestamp(res.Time),
		Bids:   bids,
		Asks:   asks,
	}, nil
}

func parseBookSide(wires []bookLevelWire) ([]types.BookLevel, error) {
	levels := make([]types.BookLevel, 0, len(wires))
	for _, wire := range wires {
		px, err := utils.ParseDecimal(wire.Px)
		if err != nil {
			return nil, err
		}
		sz, err := utils.ParseDecimal(wire.Sz)
		if err != nil {
			return nil, err
		}
		levels = append(levels, types.BookLevel{Price: px, Size: sz, NumOrders: wire.N})
	}
	return levels, nil
}

func parseAllMidsEvent(e []byte) (map[string]decimal.Decimal, error) {
	var wsRes wsGenericResponse
	if err := json.Unmarshal(e, &wsRes); err != nil {
		return nil, err
	}
	if wsRes.Channel != "allMids" {
		// HPL also sends other events i.e. `channel: "subscriptionResponse"` during stream, ignore them
		return nil, nil
	}

	var res wsAllMidsResponse
	if err := json.Unmarshal(e, &res); err != nil {
		return nil, err
	}
	mids := make(map[string]decimal.Decimal, len(res.Data.Mids))
	for symbol, px := range res.Data.Mids {
		mid, err := utils.ParseDecimal(px)
		if err != nil {
			return nil, err
		}
		mids[symbol] = mid
	}
	return mids, nil
}
