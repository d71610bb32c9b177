package platform

import "context"

// OrderHandle is an opaque reference to an order resting on the exchange,
// bound to the placer that created it.
type OrderHandle interface {
	Symbol() string
	OrderID() string
	Cancel(ctx context.Context) error
}

// OrderPlacer is the trading connection to the exchange. All calls block
// until the HTTP round trip completes or the request times out.
type OrderPlacer interface {
	Submit(ctx context.Context, op Placeable) (OrderHandle, error)
	Cancel(ctx context.Context, handle OrderHandle) error
	CancelAll(ctx context.Context, symbol string) error
}
