package platform

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Decimal = decimal.Decimal

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type TimeInForce string

const (
	TimeInForceDay TimeInForce = "DAY"
	TimeInForceGTC TimeInForce = "GTC"
	TimeInForceIOC TimeInForce = "IOC"
	TimeInForceFOK TimeInForce = "FOK"
)

// Trigger is the price reference used to evaluate a conditional order.
type Trigger string

const (
	TriggerLastPrice Trigger = "LAST_PRICE"
	TriggerMarkPrice Trigger = "MARK_PRICE"
)

var (
	ErrInvalidQty   = fmt.Errorf("quantity must be positive")
	ErrInvalidPrice = fmt.Errorf("price must be positive")
)

// Contract identifies the perpetual contract to trade.
// Leverage 0 means cross (unleveraged) margin.
type Contract struct {
	Symbol   string
	Leverage int
}

func (c Contract) IsCrossMargin() bool {
	return c.Leverage == 0
}

// Placeable is anything order-like that can be submitted to the exchange.
// The set of implementations is closed: LimitOrder, MarketOrder and
// ConditionalOrder.
type Placeable interface {
	placeable()
}

// Order is a plain (non-conditional) order: LimitOrder or MarketOrder.
type Order interface {
	Placeable
	Details() OrderDetails
}

// OrderDetails is the field group shared by all plain order variants.
type OrderDetails struct {
	Qty      int64
	Contract Contract
	Side     Side
}

func (d OrderDetails) Details() OrderDetails { return d }

// LimitOrder rests at a maximum (buy) or minimum (sell) price.
// PostOnly is tracked on the order but is not part of the wire schema.
type LimitOrder struct {
	OrderDetails
	Price       Decimal
	TimeInForce TimeInForce
	PostOnly    bool
	ReduceOnly  bool
}

// MarketOrder executes at the prevailing market price.
type MarketOrder struct {
	OrderDetails
}

// ConditionalOrder wraps a plain order that is forwarded to the matching
// engine only once the trigger price condition is met.
type ConditionalOrder struct {
	Trigger        Trigger
	TriggerPrice   Decimal
	Order          Order
	CloseOnTrigger bool
}

func (LimitOrder) placeable()       {}
func (MarketOrder) placeable()      {}
func (ConditionalOrder) placeable() {}

// NewLimitOrder builds a limit order. Time in force defaults to
// TimeInForceGTC.
func NewLimitOrder(side Side, qty int64, price Decimal, contract Contract, opts ...LimitOption) (LimitOrder, error) {
	if qty <= 0 {
		return LimitOrder{}, fmt.Errorf("limit order: %w: %d", ErrInvalidQty, qty)
	}
	if !price.IsPositive() {
		return LimitOrder{}, fmt.Errorf("limit order: %w: %s", ErrInvalidPrice, price)
	}

	order := LimitOrder{
		OrderDetails: OrderDetails{
			Qty:      qty,
			Contract: contract,
			Side:     side,
		},
		Price:       price,
		TimeInForce: TimeInForceGTC,
	}

	for _, opt := range opts {
		opt(&order)
	}

	return order, nil
}

type LimitOption func(*LimitOrder)

func WithTimeInForce(tif TimeInForce) LimitOption {
	return func(o *LimitOrder) { o.TimeInForce = tif }
}

func WithPostOnly() LimitOption {
	return func(o *LimitOrder) { o.PostOnly = true }
}

func WithReduceOnly() LimitOption {
	return func(o *LimitOrder) { o.ReduceOnly = true }
}

func NewMarketOrder(side Side, qty int64, contract Contract) (MarketOrder, error) {
	if qty <= 0 {
		return MarketOrder{}, fmt.Errorf("market order: %w: %d", ErrInvalidQty, qty)
	}

	return MarketOrder{
		OrderDetails: OrderDetails{
			Qty:      qty,
			Contract: contract,
			Side:     side,
		},
	}, nil
}

func NewConditionalOrder(trigger Trigger, triggerPrice Decimal, order Order, closeOnTrigger bool) (ConditionalOrder, error) {
	if !triggerPrice.IsPositive() {
		return ConditionalOrder{}, fmt.Errorf("conditional order: trigger %w: %s", ErrInvalidPrice, triggerPrice)
	}

	return ConditionalOrder{
		Trigger:        trigger,
		TriggerPrice:   triggerPrice,
		Order:          order,
		CloseOnTrigger: closeOnTrigger,
	}, nil
}
