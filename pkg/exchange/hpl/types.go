package hpl

import "encoding/json"

// ╔════════════════════════╗
//    API request/response
// ╚════════════════════════╝

type universe struct {
	SzDecimals   int    `json:"szDecimals"`
	Name         string `json:"name"`
	MaxLeverage  int    `json:"maxLeverage"`
	OnlyIsolated bool   `json:"onlyIsolated"`
}

type metaResponse struct {
	Universe []universe `json:"universe"`
}

type tifType string

const (
	tifTypeALO = tifType("Alo")
	tifTypeIOC = tifType("Ioc")
	tifTypeGTC = tifType("Gtc")
)

type grouping string

const (
	groupingNa grouping = "na"
)

type orderTypeWire struct {
	Limit   *limit   `msgpack:"limit,omitempty" json:"limit,omitempty"`
	Trigger *trigger `msgpack:"trigger,omitempty" json:"trigger,omitempty"`
}

type limit struct {
	Tif tifType `msgpack:"tif" json:"tif"`
}

type trigger struct {
	IsMarket  bool   `json:"isMarket" msgpack:"isMarket"`
	TriggerPx string `json:"triggerPx" msgpack:"triggerPx"`
	TpSl      tpSl   `json:"tpsl" msgpack:"tpsl"`
}

type tpSl string

const (
	triggerTp tpSl = "tp"
	triggerSl tpSl = "sl"
)

type orderWire struct {
	Asset      int           `msgpack:"a" json:"a"`
	IsBuy      bool          `msgpack:"b" json:"b"`
	LimitPx    string        `msgpack:"p" json:"p"`
	SizePx     string        `msgpack:"s" json:"s"`
	ReduceOnly bool          `msgpack:"r" json:"r"`
	OrderType  orderTypeWire `msgpack:"t" json:"t"`
	Cloid      *string       `msgpack:"c,omitempty" json:"c,omitempty"`
}

type cancelWire struct {
	Asset   int `msgpack:"a" json:"a"`
	OrderId int `msgpack:"o" json:"o"`
}

type orderAction struct {
	Type     string       `msgpack:"type" json:"type"`
	Orders   []orderWire  `msgpack:"orders,omitempty" json:"orders,omitempty"`
	Cancels  []cancelWire `msgpack:"cancels,omitempty" json:"cancels,omitempty"`
	Grouping string       `msgpack:"grouping,omitempty" json:"grouping,omitempty"`
}

// modifyAction replaces a resting order in place. Field order matters: the
// signed hash packs the fields in declaration order.
type modifyAction struct {
	Type  string    `msgpack:"type" json:"type"`
	Oid   int64     `msgpack:"oid" json:"oid"`
	Order orderWire `msgpack:"order" json:"order"`
}

type actionRequest struct {
	Action       any          `json:"action"`
	Nonce        int64        `json:"nonce"`
	Signature    rsvSignature `json:"signature"`
	VaultAddress *string      `json:"vaultAddress"`
}

type userRequest struct {
	Type string `json:"type"`
	User string `json:"user"`
}

type placeOrderResponse struct {
	Status   string `json:"status"`
	Response struct {
		Type string `json:"type"`
		Data struct {
			Statuses []orderStatusWire `json:"statuses"`
		} `json:"data"`
	} `json:"response"`
}

type orderStatusWire struct {
	Error   string `json:"error,omitempty"`
	Resting struct {
		Oid int64 `json:"oid,omitempty"`
	} `json:"resting,omitempty"`
	Filled struct {
		Oid     int64  `json:"oid,omitempty"`
		AvgPx   string `json:"avgPx,omitempty"`
		TotalSz string `json:"totalSz,omitempty"`
	} `json:"filled,omitempty"`
}

type cancelOrderResponse struct {
	Status   string `json:"status"`
	Response struct {
		Type string `json:"type"`
		Data struct {
			Statuses json.RawMessage `json:"statuses"`
		} `json:"data"`
	} `json:"response"`
}

type marginSummaryWire struct {
	AccountValue    string `json:"accountValue"`
	TotalMarginUsed string `json:"totalMarginUsed"`
	TotalNtlPos     string `json:"totalNtlPos"`
	TotalRawUsd     string `json:"totalRawUsd"`
}

type leverageWire struct {
	Type  string      `json:"type"`
	Value json.Number `json:"value"`
}

type assetPositionWire struct {
	Type     string `json:"type"`
	Position struct {
		Coin           string       `json:"coin"`
		Szi            string       `json:"szi"`
		EntryPx        *string      `json:"entryPx"`
		UnrealizedPnl  string       `json:"unrealizedPnl"`
		MarginUsed     string       `json:"marginUsed"`
		PositionValue  string       `json:"positionValue"`
		ReturnOnEquity string       `json:"returnOnEquity"`
		LiquidationPx  *string      `json:"liquidationPx"`
		Leverage       leverageWire `json:"leverage"`
	} `json:"position"`
}

type clearinghouseStateResponse struct {
	MarginSummary      marginSummaryWire   `json:"marginSummary"`
	CrossMarginSummary marginSummaryWire   `json:"crossMarginSummary"`
	Withdrawable       string              `json:"withdrawable"`
	AssetPositions     []assetPositionWire `json:"assetPositions"`
}

// metaAndAssetCtxs pairs the universe with one context entry per asset, in
// universe order
type assetCtxWire struct {
	Funding      string `json:"funding"`
	OpenInterest string `json:"openInterest"`
	MarkPx       string `json:"markPx"`
}

type bookLevelWire struct {
	Px string `json:"px"`
	Sz string `json:"sz"`
	N  int    `json:"n"`
}

// l2Book response; levels[0] is bids, levels[1] is asks, best price first
type l2BookResponse struct {
	Coin   string            `json:"coin"`
	Time   int64             `json:"time"`
	Levels [][]bookLevelWire `json:"levels"`
}

// frontendOpenOrders entry; carries trigger metadata the plain openOrders
// endpoint omits
type frontendOpenOrderWire struct {
	Coin       string  `json:"coin"`
	Side       string  `json:"side"`
	LimitPx    string  `json:"limitPx"`
	Sz         string  `json:"sz"`
	OrigSz     string  `json:"origSz"`
	Oid        int64   `json:"oid"`
	Timestamp  int64   `json:"timestamp"`
	TriggerPx  string  `json:"triggerPx"`
	IsTrigger  bool    `json:"isTrigger"`
	OrderType  string  `json:"orderType"`
	ReduceOnly bool    `json:"reduceOnly"`
	Tif        *string `json:"tif"`
}

// ╔══════════════╗
//     Ws Event
// ╚══════════════╝

type wsGenericResponse struct {
	Channel string `json:"channel"`
}

type wsAllMidsResponse struct {
	Channel string `json:"channel"`
	Data    struct {
		Mids map[string]string `json:"mids"`
	} `json:"data"`
}

// ╔════════════════════════╗
//         Signature
// ╚════════════════════════╝

type rsvSignature struct {
	R string `json:"r"`
	S string `json:"s"`
	V uint8  `json:"v"`
}
