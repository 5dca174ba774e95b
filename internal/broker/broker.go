package broker

import (
	"context"

	"main/internal/model"
	"main/internal/model/enum"
)

// OrderRequest is the broker-facing shape of an approved trade intent.
type OrderRequest struct {
	Symbol     string
	Exchange   string
	Side       enum.Side
	Qty        int
	OrderType  enum.OrderType
	Price      float64
	Product    enum.Product
	SecurityID string
	StopLoss   *float64
	Target     *float64
}

// Result is the outcome of one submission. Ordinary broker rejections are
// encoded here, never raised.
type Result struct {
	OK      bool
	OrderID string
	Err     string
}

// MarketData fetches intraday candles for one instrument. Failures are
// logged by the adapter and surface as an empty history; the cycle skips
// the instrument and retries naturally on the next tick.
type MarketData interface {
	IntradayCandles(ctx context.Context, securityID, exchange string) []model.Bar
}

// Dispatcher submits an approved order for execution, paper or live.
type Dispatcher interface {
	Submit(ctx context.Context, req OrderRequest) Result
}
