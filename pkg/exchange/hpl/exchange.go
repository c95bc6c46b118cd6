// Package hpl is a native client for the Hyperliquid perp API: info queries
// over POST {api}/info and signed order actions over POST {api}/exchange.
package hpl

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hlsimple/config"
	"hlsimple/pkg/errs"
	"hlsimple/pkg/exchange"
	"hlsimple/pkg/http"
	"hlsimple/pkg/types"
	"hlsimple/pkg/utils"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

type marketMeta struct {
	Index        int
	SzDecimals   int
	MaxLeverage  int
	OnlyIsolated bool
}

type Exchange struct {
	apiURL    string
	wsURL     string
	isMainnet bool

	httpc   *http.Client
	privKey *ecdsa.PrivateKey // nil in unauthenticated mode
	address string

	markets map[string]marketMeta
}

var _ exchange.Exchange = (*Exchange)(nil)

func New(cfg *config.Config) (*Exchange, error) {
	e := &Exchange{
		apiURL:    cfg.APIURL(),
		wsURL:     cfg.WSURL(),
		isMainnet: cfg.IsMainnet(),
		httpc:     http.NewClient(),
		address:   cfg.PublicAddress,
	}

	if cfg.PrivateKey != "" {
		privKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, errs.Validationf("fail to parse HL_PRIVATE_KEY: %v", err)
		}
		e.privKey = privKey
		if e.address == "" {
			e.address = crypto.PubkeyToAddress(privKey.PublicKey).String()
		}
	}

	markets, err := e.loadMarkets()
	if err != nil {
		return nil, err
	}
	e.markets = markets
	return e, nil
}

// Address is the account the client signs and queries for.
func (e *Exchange) Address() string {
	return e.address
}

func (e *Exchange) CanSign() bool {
	return e.privKey != nil
}

// loadMarkets fetches the perp universe once; asset index and szDecimals
// are needed to build order wires.
func (e *Exchange) loadMarkets() (map[string]marketMeta, error) {
	var meta metaResponse
	if err := e.postInfo(map[string]string{"type": "meta"}, &meta); err != nil {
		return nil, err
	}

	markets := make(map[string]marketMeta, len(meta.Universe))
	for id, u := range meta.Universe {
		markets[u.Name] = marketMeta{
			Index:        id,
			SzDecimals:   u.SzDecimals,
			MaxLeverage:  u.MaxLeverage,
			OnlyIsolated: u.OnlyIsolated,
		}
	}
	return markets, nil
}

func (e *Exchange) market(symbol string) (marketMeta, error) {
	if m, exists := e.markets[symbol]; exists {
		return m, nil
	}
	return marketMeta{}, errs.SymbolNotFoundf("unknown market: %v", symbol)
}

func (e *Exchange) SizeDecimals(symbol string) (int, error) {
	m, err := e.market(symbol)
	if err != nil {
		return 0, err
	}
	return m.SzDecimals, nil
}

func (e *Exchange) MarketInfo(symbol string) (types.MarketInfo, error) {
	m, err := e.market(symbol)
	if err != nil {
		return types.MarketInfo{}, err
	}
	return types.MarketInfo{
		Symbol:       symbol,
		SzDecimals:   m.SzDecimals,
		MaxLeverage:  m.MaxLeverage,
		OnlyIsolated: m.OnlyIsolated,
	}, nil
}

// ╔═════════════╗
//      Info
// ╚═════════════╝

func (e *Exchange) AllMids() (map[string]decimal.Decimal, error) {
	var raw map[string]string
	if err := e.postInfo(map[string]string{"type": "allMids"}, &raw); err != nil {
		return nil, err
	}

	mids := make(map[string]decimal.Decimal, len(raw))
	for symbol, px := range raw {
		mid, err := utils.ParseDecimal(px)
		if err != nil {
			return nil, err
		}
		mids[symbol] = mid
	}
	return mids, nil
}

// FundingRates returns the current hourly funding rate per symbol, from the
// metaAndAssetCtxs endpoint (universe and contexts align by index).
func (e *Exchange) FundingRates() (map[string]decimal.Decimal, error) {
	var raw []json.RawMessage
	if err := e.postInfo(map[string]string{"type": "metaAndAssetCtxs"}, &raw); err != nil {
		return nil, err
	}
	if len(raw) < 2 {
		return nil, errs.Remote("", "metaAndAssetCtxs response is truncated")
	}
	var meta metaResponse
	if err := json.Unmarshal(raw[0], &meta); err != nil {
		return nil, err
	}
	var ctxs []assetCtxWire
	if err := json.Unmarshal(raw[1], &ctxs); err != nil {
		return nil, err
	}
	return parseFundingRates(meta, ctxs)
}

func (e *Exchange) OrderBook(symbol string) (types.OrderBook, error) {
	if _, err := e.market(symbol); err != nil {
		return types.OrderBook{}, err
	}
	var res l2BookResponse
	req := map[string]string{"type": "l2Book", "coin": symbol}
	if err := e.postInfo(req, &res); err != nil {
		return types.OrderBook{}, err
	}
	return parseOrderBook(res)
}

func (e *Exchange) UserState(address string) (types.UserState, error) {
	if address == "" {
		return types.UserState{}, errs.Unauthenticatedf("address required for user state")
	}
	var res clearinghouseStateResponse
	req := userRequest{Type: "clearinghouseState", User: address}
	if err := e.postInfo(req, &res); err != nil {
		return types.UserState{}, err
	}
	return parseUserState(res)
}

func (e *Exchange) OpenOrders(address string) ([]types.Order, error) {
	if address == "" {
		return nil, errs.Unauthenticatedf("address required for open orders")
	}
	var res []frontendOpenOrderWire
	req := userRequest{Type: "frontendOpenOrders", User: address}
	if err := e.postInfo(req, &res); err != nil {
		return nil, err
	}

	orders := make([]types.Order, 0, len(res))
	for _, wire := range res {
		order, err := parseOpenOrder(wire)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// ╔═════════════╗
//      Order
// ╚═════════════╝

func (e *Exchange) PlaceOrder(req exchange.OrderRequest) (exchange.OrderResult, error) {
	if e.privKey == nil {
		return exchange.OrderResult{}, errs.Unauthenticatedf("placing orders requires a private key")
	}
	wire, err := e.buildOrderWire(req)
	if err != nil {
		return exchange.OrderResult{}, err
	}

	action := orderAction{
		Type:     "order",
		Orders:   []orderWire{wire},
		Grouping: string(groupingNa),
	}
	resBody, err := e.postAction(action, nextNonce())
	if err != nil {
		return exchange.OrderResult{}, err
	}
	return parseOrderResult(resBody)
}

// ModifyOrder replaces the resting order orderID with req in a single
// exchange action; the modified order keeps its queue identity on the
// exchange but may come back with a new oid.
func (e *Exchange) ModifyOrder(orderID string, req exchange.OrderRequest) (exchange.OrderResult, error) {
	if e.privKey == nil {
		return exchange.OrderResult{}, errs.Unauthenticatedf("modifying orders requires a private key")
	}
	oid, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return exchange.OrderResult{}, errs.Validationf("invalid order id %q: %v", orderID, err)
	}
	wire, err := e.buildOrderWire(req)
	if err != nil {
		return exchange.OrderResult{}, err
	}

	action := modifyAction{Type: "modify", Oid: oid, Order: wire}
	resBody, err := e.postAction(action, nextNonce())
	if err != nil {
		return exchange.OrderResult{}, err
	}
	res, err := parseOrderResult(resBody)
	if err != nil {
		// a bare ok acknowledges the modify without restating the order
		if errs.IsRemote(err) && strings.Contains(err.Error(), "carries no status") {
			return exchange.OrderResult{OrderID: orderID, Status: types.OrderStatusOpen}, nil
		}
		return exchange.OrderResult{}, err
	}
	return res, nil
}

func (e *Exchange) buildOrderWire(req exchange.OrderRequest) (orderWire, error) {
	m, err := e.market(req.Symbol)
	if err != nil {
		return orderWire{}, err
	}

	var orderType orderTypeWire
	if req.Trigger != nil {
		orderType.Trigger = &trigger{
			IsMarket:  req.Trigger.IsMarket,
			TriggerPx: formatPrice(req.Trigger.Price),
			TpSl:      tpSl(req.Trigger.Kind),
		}
	} else {
		tif, err := convertTIF(req.TIF)
		if err != nil {
			return orderWire{}, err
		}
		orderType.Limit = &limit{Tif: tif}
	}

	return orderWire{
		Asset:      m.Index,
		IsBuy:      req.IsBuy,
		LimitPx:    formatPrice(req.LimitPrice),
		SizePx:     formatSize(req.Size, m.SzDecimals),
		ReduceOnly: req.ReduceOnly,
		OrderType:  orderType,
	}, nil
}

func parseOrderResult(resBody []byte) (exchange.OrderResult, error) {
	var res placeOrderResponse
	if err := json.Unmarshal(resBody, &res); err != nil {
		return exchange.OrderResult{}, err
	}
	if res.Status != "ok" {
		return exchange.OrderResult{}, errs.Remote(res.Status, string(resBody))
	}
	if len(res.Response.Data.Statuses) == 0 {
		return exchange.OrderResult{}, errs.Remote(res.Status, "order response carries no status")
	}

	status := res.Response.Data.Statuses[0]
	switch {
	case status.Error != "":
		return exchange.OrderResult{}, errs.Remote("err", status.Error)
	case status.Filled.Oid != 0:
		avgPx, err := utils.ParseDecimal(status.Filled.AvgPx)
		if err != nil {
			return exchange.OrderResult{}, err
		}
		filledSz, err := utils.ParseDecimalOrZero(status.Filled.TotalSz)
		if err != nil {
			return exchange.OrderResult{}, err
		}
		return exchange.OrderResult{
			OrderID:      strconv.FormatInt(status.Filled.Oid, 10),
			Status:       types.OrderStatusFilled,
			FilledSize:   filledSz,
			AvgFillPrice: &avgPx,
		}, nil
	case status.Resting.Oid != 0:
		return exchange.OrderResult{
			OrderID: strconv.FormatInt(status.Resting.Oid, 10),
			Status:  types.OrderStatusOpen,
		}, nil
	default:
		return exchange.OrderResult{}, errs.Remote(res.Status, "oid is missing from the response")
	}
}

func (e *Exchange) CancelOrders(symbol string, orderIDs []string) error {
	if len(orderIDs) == 0 {
		return nil
	}
	if e.privKey == nil {
		return errs.Unauthenticatedf("canceling orders requires a private key")
	}
	m, err := e.market(symbol)
	if err != nil {
		return err
	}

	cancels := make([]cancelWire, 0, len(orderIDs))
	for _, orderID := range orderIDs {
		oid, err := strconv.Atoi(orderID)
		if err != nil {
			return errs.Validationf("invalid order id %q: %v", orderID, err)
		}
		cancels = append(cancels, cancelWire{Asset: m.Index, OrderId: oid})
	}

	nonce := nextNonce()
	action := orderAction{Type: "cancel", Cancels: cancels}
	resBody, err := e.postAction(action, nonce)
	if err != nil {
		return err
	}

	var res cancelOrderResponse
	if err := json.Unmarshal(resBody, &res); err != nil {
		return err
	}
	if res.Status != "ok" {
		return errs.Remote(res.Status, string(resBody))
	}
	return nil
}

// ╔═════════════╗
//    Transport
// ╚═════════════╝

func (e *Exchange) postInfo(req any, out any) error {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return err
	}
	status, resBody, err := e.httpc.PostJSON(fmt.Sprintf("%s/info", e.apiURL), reqBody)
	if err != nil {
		return errs.Remote("", err.Error())
	}
	if status != 200 {
		return errs.Remote(strconv.Itoa(status), string(resBody))
	}
	return json.Unmarshal(resBody, out)
}

func (e *Exchange) postAction(action any, nonce int64) ([]byte, error) {
	signature, err := e.signAction(action, "", nonce)
	if err != nil {
		return nil, fmt.Errorf("fail to sign action: %v", err)
	}
	req := actionRequest{
		Action:       action,
		Nonce:        nonce,
		Signature:    signature,
		VaultAddress: nil,
	}
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	status, resBody, err := e.httpc.PostJSON(fmt.Sprintf("%s/exchange", e.apiURL), reqBody)
	if err != nil {
		return nil, errs.Remote("", err.Error())
	}
	if status != 200 {
		return nil, errs.Remote(strconv.Itoa(status), string(resBody))
	}
	return resBody, nil
}

func convertTIF(tif types.OrderTIF) (tifType, error) {
	switch tif {
	case types.OrderTIFIOC:
		return tifTypeIOC, nil
	case types.OrderTIFGTC, "":
		return tifTypeGTC, nil
	case types.OrderTIFALO:
		return tifTypeALO, nil
	default:
		return "", errs.Validationf("unsupported time in force: %v", tif)
	}
}

func parseTimestamp(millis int64) time.Time {
	return time.UnixMilli(millis)
}
