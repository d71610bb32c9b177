package phemex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"

	"github.com/cloudwall/phemex-go/platform"
)

// Prices travel as integer ticks: decimal price times 1e4. The factor is
// fixed by the exchange wire schema.
var priceScale = decimal.NewFromInt(10000)

// actionBy marks orders as placed through the order placement API.
const actionBy = "FromOrderPlacement"

// Placer translates domain orders into exchange wire parameters and back.
// It is the only component that knows the wire schema.
type Placer struct {
	conn *Connection
}

var _ platform.OrderPlacer = (*Placer)(nil)

// Handle references an order resting on the exchange.
type Handle struct {
	placer  *Placer
	symbol  string
	orderID string
}

var _ platform.OrderHandle = (*Handle)(nil)

func (h *Handle) Symbol() string  { return h.symbol }
func (h *Handle) OrderID() string { return h.orderID }

func (h *Handle) Cancel(ctx context.Context) error {
	return h.placer.Cancel(ctx, h)
}

type orderData struct {
	OrderID string `json:"orderID"`
	Symbol  string `json:"symbol"`
}

// Submit places op on the exchange and returns a cancellable handle.
// Every submission carries a fresh client order ID, so a caller-side retry
// of the same Submit call cannot double-place.
func (p *Placer) Submit(ctx context.Context, op platform.Placeable) (platform.OrderHandle, error) {
	params := map[string]any{
		"actionBy": actionBy,
		"clOrdID":  uuid.NewString(),
	}

	switch op := op.(type) {
	case platform.LimitOrder:
		if err := applyOrder(params, op); err != nil {
			return nil, err
		}
	case platform.MarketOrder:
		if err := applyOrder(params, op); err != nil {
			return nil, err
		}
	case platform.ConditionalOrder:
		if op.Order == nil {
			return nil, fmt.Errorf("%w: conditional wraps no order", ErrUnsupportedPlaceable)
		}
		if err := applyOrder(params, op.Order); err != nil {
			return nil, err
		}

		// A conditional order keeps the wrapped order's parameters but
		// swaps the type for its stop counterpart.
		switch op.Order.(type) {
		case platform.LimitOrder:
			params["ordType"] = "StopLimit"
		case platform.MarketOrder:
			params["ordType"] = "Stop"
		default:
			return nil, fmt.Errorf("%w: conditional wraps %T", ErrUnsupportedPlaceable, op.Order)
		}

		triggerType, err := triggerCode(op.Trigger)
		if err != nil {
			return nil, err
		}

		params["triggerType"] = triggerType
		params["stopPxEp"] = scalePrice(op.TriggerPrice)
		params["closeOnTrigger"] = op.CloseOnTrigger
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPlaceable, op)
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("phemex: encode order params: %w", err)
	}

	resp, err := p.conn.SendMessage(ctx, "POST", "/orders", nil, body)
	if err != nil {
		return nil, err
	}

	var data orderData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("phemex: decode order response: %w", err)
	}

	return &Handle{
		placer:  p,
		symbol:  data.Symbol,
		orderID: data.OrderID,
	}, nil
}

// Cancel removes the referenced order from the exchange.
func (p *Placer) Cancel(ctx context.Context, handle platform.OrderHandle) error {
	h, ok := handle.(*Handle)
	if !ok {
		return fmt.Errorf("%w: %T", ErrForeignHandle, handle)
	}

	params := url.Values{}
	params.Set("symbol", h.symbol)
	params.Set("orderID", h.orderID)

	_, err := p.conn.SendMessage(ctx, "DELETE", "/orders", params, nil)
	return err
}

// CancelAll cancels every open order for symbol. The exchange partitions
// open-order state into live and untriggered conditional pools, so two
// DELETE calls are required; both are always issued and either failure is
// reported independently.
func (p *Placer) CancelAll(ctx context.Context, symbol string) error {
	var result *multierror.Error

	for _, untriggered := range []bool{false, true} {
		params := url.Values{}
		params.Set("symbol", symbol)
		params.Set("untriggered", strconv.FormatBool(untriggered))

		if _, err := p.conn.SendMessage(ctx, "DELETE", "/orders", params, nil); err != nil {
			result = multierror.Append(result, fmt.Errorf("cancel all (untriggered=%t): %w", untriggered, err))
		}
	}

	return result.ErrorOrNil()
}

// applyOrder fills the wire parameters shared by plain and conditional
// submissions.
func applyOrder(params map[string]any, order platform.Order) error {
	details := order.Details()

	side, err := sideCode(details.Side)
	if err != nil {
		return err
	}

	params["symbol"] = details.Contract.Symbol
	params["orderQty"] = details.Qty
	params["side"] = side

	switch order := order.(type) {
	case platform.LimitOrder:
		tif, err := tifCode(order.TimeInForce)
		if err != nil {
			return err
		}

		params["ordType"] = "Limit"
		params["priceEp"] = scalePrice(order.Price)
		params["timeInForce"] = tif
		params["reduceOnly"] = order.ReduceOnly
	case platform.MarketOrder:
		params["ordType"] = "Market"
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedPlaceable, order)
	}

	return nil
}

// scalePrice converts a decimal price to integer ticks. The arithmetic
// stays in decimal space the whole way, so no binary rounding can leak in.
func scalePrice(price platform.Decimal) int64 {
	return price.Mul(priceScale).Round(0).IntPart()
}

func sideCode(side platform.Side) (string, error) {
	switch side {
	case platform.SideBuy:
		return "Buy", nil
	case platform.SideSell:
		return "Sell", nil
	default:
		return "", fmt.Errorf("phemex: unsupported side: %q", side)
	}
}

func tifCode(tif platform.TimeInForce) (string, error) {
	switch tif {
	case platform.TimeInForceDay:
		return "Day", nil
	case platform.TimeInForceGTC:
		return "GoodTillCancel", nil
	case platform.TimeInForceIOC:
		return "ImmediateOrCancel", nil
	case platform.TimeInForceFOK:
		return "FillOrKill", nil
	default:
		return "", fmt.Errorf("phemex: unsupported time in force: %q", tif)
	}
}

func triggerCode(trigger platform.Trigger) (string, error) {
	switch trigger {
	case platform.TriggerLastPrice:
		return "ByLastPrice", nil
	case platform.TriggerMarkPrice:
		return "ByMarkPrice", nil
	default:
		return "", fmt.Errorf("phemex: unsupported trigger type: %q", trigger)
	}
}
