package enum

// Side is the direction of a trade intent or order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Opposite returns the exit side for a held position.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderType selects market or limit execution.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// Product is the broker product segment for an order.
type Product string

const (
	ProductIntraday Product = "INTRADAY"
	ProductDelivery Product = "CNC"
)

// OrderStatus is the lifecycle status of a persisted order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusExecuted  OrderStatus = "EXECUTED"
	OrderStatusPaper     OrderStatus = "PAPER"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// IsOpen reports whether the status counts toward the open position limit.
func (s OrderStatus) IsOpen() bool {
	return s == OrderStatusExecuted || s == OrderStatusPending
}
