package phemex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudwall/phemex-go/platform"
)

// Product describes a listed contract from the public products endpoint.
type Product struct {
	Symbol         string           `json:"symbol"`
	Type           string           `json:"type"`
	QuoteCurrency  string           `json:"quoteCurrency"`
	SettleCurrency string           `json:"settleCurrency"`
	PriceScale     int              `json:"priceScale"`
	RatioScale     int              `json:"ratioScale"`
	ValueScale     int              `json:"valueScale"`
	MinPriceEp     int64            `json:"minPriceEp"`
	MaxPriceEp     int64            `json:"maxPriceEp"`
	TickSize       platform.Decimal `json:"tickSize"`
	ContractSize   platform.Decimal `json:"contractSize"`
	MaxOrderQty    int64            `json:"maxOrderQty"`
}

type ProductsData struct {
	RatioScale int       `json:"ratioScale"`
	Products   []Product `json:"products"`
}

// Position is one entry of the account positions endpoint. Ev-suffixed
// fields are scaled integers; the rest decode as exact decimals.
type Position struct {
	AccountID        int64            `json:"accountID"`
	Symbol           string           `json:"symbol"`
	Currency         string           `json:"currency"`
	Side             string           `json:"side"`
	Leverage         platform.Decimal `json:"leverage"`
	Size             int64            `json:"size"`
	AvgEntryPrice    platform.Decimal `json:"avgEntryPrice"`
	MarkPrice        platform.Decimal `json:"markPrice"`
	UnrealisedPnlEv  int64            `json:"unRealisedPnlEv"`
	PositionMarginEv int64            `json:"positionMarginEv"`
}

type AccountPositionsData struct {
	Account struct {
		AccountID          int64  `json:"accountId"`
		Currency           string `json:"currency"`
		AccountBalanceEv   int64  `json:"accountBalanceEv"`
		TotalUsedBalanceEv int64  `json:"totalUsedBalanceEv"`
	} `json:"account"`
	Positions []Position `json:"positions"`
}

// TradeRow is one fill from the trade history endpoint.
type TradeRow struct {
	TransactTimeNs int64            `json:"transactTimeNs"`
	Symbol         string           `json:"symbol"`
	Currency       string           `json:"currency"`
	Action         string           `json:"action"`
	Side           string           `json:"side"`
	TradeType      string           `json:"tradeType"`
	ExecQty        int64            `json:"execQty"`
	ExecPriceEp    int64            `json:"execPriceEp"`
	OrderID        string           `json:"orderID"`
	ClOrdID        string           `json:"clOrdID"`
	ExecFeeEv      int64            `json:"execFeeEv"`
	FeeRateEr      int64            `json:"feeRateEr"`
}

type TradesData struct {
	Total int64      `json:"total"`
	Rows  []TradeRow `json:"rows"`
}

// GetProducts fetches the public contract catalogue.
func (c *Connection) GetProducts(ctx context.Context) (*ProductsData, error) {
	resp, err := c.SendMessage(ctx, "GET", "/exchange/public/products", nil, nil)
	if err != nil {
		return nil, err
	}

	var data ProductsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("phemex: decode products: %w", err)
	}

	return &data, nil
}

// GetAccountPositions fetches the account state and open positions for a
// settlement currency.
func (c *Connection) GetAccountPositions(ctx context.Context, currency string) (*AccountPositionsData, error) {
	params := url.Values{}
	params.Set("currency", currency)

	resp, err := c.SendMessage(ctx, "GET", "/accounts/accountPositions", params, nil)
	if err != nil {
		return nil, err
	}

	var data AccountPositionsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("phemex: decode account positions: %w", err)
	}

	return &data, nil
}

// GetTrades fetches up to 100 fills for symbol between start and end.
func (c *Connection) GetTrades(ctx context.Context, symbol string, start, end time.Time) (*TradesData, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("start", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("end", strconv.FormatInt(end.UnixMilli(), 10))
	params.Set("limit", "100")
	params.Set("offset", "0")
	params.Set("withCount", "true")

	resp, err := c.SendMessage(ctx, "GET", "/exchange/order/trade", params, nil)
	if err != nil {
		return nil, err
	}

	var data TradesData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("phemex: decode trades: %w", err)
	}

	return &data, nil
}
