// Package client is a simplified trading client for Hyperliquid perps:
// symbol-centric price, balance and position queries plus market, limit and
// trigger order placement over a narrow exchange interface.
package client

import (
	"strings"

	"hlsimple/pkg/errs"
	"hlsimple/pkg/exchange"
	"hlsimple/pkg/types"

	"github.com/shopspring/decimal"
)

var defaultSlippage = decimal.NewFromFloat(0.005) // 0.5% aggression for market orders

// Options tunes facade behavior. The zero value is usable.
type Options struct {
	// Slippage is the price aggression applied when emulating market
	// orders as IOC limits. Zero means the 0.5% default.
	Slippage decimal.Decimal

	// IdempotentClose makes Close a no-op instead of an error when no
	// position exists for the symbol.
	IdempotentClose bool

	// RollbackOnProtectiveFailure makes OpenLongPosition /
	// OpenShortPosition attempt a best-effort compensation (cancel open
	// orders, close the entry) when a protective leg fails. Off by
	// default: the entry is left open and the failure is surfaced.
	RollbackOnProtectiveFailure bool
}

type Client struct {
	ex      exchange.Exchange
	address string
	opts    Options
}

// New builds a client over ex for the given account address. The address may
// be empty; only public price queries work then. A nil opts uses defaults.
func New(ex exchange.Exchange, address string, opts *Options) *Client {
	c := &Client{ex: ex, address: address}
	if opts != nil {
		c.opts = *opts
	}
	if c.opts.Slippage.Sign() <= 0 {
		c.opts.Slippage = defaultSlippage
	}
	return c
}

func (c *Client) IsAuthenticated() bool {
	return c.address != ""
}

// GetPrice returns the current mid price for one symbol.
func (c *Client) GetPrice(symbol string) (decimal.Decimal, error) {
	mids, err := c.ex.AllMids()
	if err != nil {
		return decimal.Decimal{}, err
	}
	px, exists := mids[symbol]
	if !exists {
		return decimal.Decimal{}, errs.SymbolNotFoundf("symbol %v not found", symbol)
	}
	return px, nil
}

// GetAllPrices returns the current mid price for every known symbol.
func (c *Client) GetAllPrices() (map[string]decimal.Decimal, error) {
	return c.ex.AllMids()
}

// GetFundingRates returns the current funding rate for every known symbol.
func (c *Client) GetFundingRates() (map[string]decimal.Decimal, error) {
	return c.ex.FundingRates()
}

// GetFundingRate returns the current funding rate for one symbol.
func (c *Client) GetFundingRate(symbol string) (decimal.Decimal, error) {
	rates, err := c.ex.FundingRates()
	if err != nil {
		return decimal.Decimal{}, err
	}
	rate, exists := rates[symbol]
	if !exists {
		return decimal.Decimal{}, errs.SymbolNotFoundf("symbol %v not found", symbol)
	}
	return rate, nil
}

// GetOrderBook returns an L2 book snapshot for symbol.
func (c *Client) GetOrderBook(symbol string) (types.OrderBook, error) {
	return c.ex.OrderBook(symbol)
}

// GetMarketInfo returns the static metadata of one market, including its
// maximum leverage.
func (c *Client) GetMarketInfo(symbol string) (types.MarketInfo, error) {
	return c.ex.MarketInfo(symbol)
}

// GetUserState returns the clearinghouse snapshot for address, or for the
// client's own account when address is empty.
func (c *Client) GetUserState(address string) (types.UserState, error) {
	if address == "" {
		if !c.IsAuthenticated() {
			return types.UserState{}, errs.Unauthenticatedf("address required when client is not authenticated")
		}
		address = c.address
	}
	if !strings.HasPrefix(address, "0x") || len(address) != 42 {
		return types.UserState{}, errs.Validationf("invalid address format: %v", address)
	}
	return c.ex.UserState(address)
}

// GetPerpBalance returns current account equity in the settlement asset.
func (c *Client) GetPerpBalance() (decimal.Decimal, error) {
	state, err := c.GetUserState("")
	if err != nil {
		return decimal.Decimal{}, err
	}
	return state.MarginSummary.AccountValue, nil
}
