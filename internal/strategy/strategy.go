package strategy

import (
	"main/internal/model"
	"main/internal/model/enum"
)

// Params holds per-strategy tunables as decoded from the persisted JSON
// column. Values typically arrive as float64 or string.
type Params map[string]any

// Float reads a numeric parameter, falling back when absent or mistyped.
func (p Params) Float(key string, fallback float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

// Int reads an integer parameter, falling back when absent or mistyped.
func (p Params) Int(key string, fallback int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// String reads a string parameter, falling back when absent or mistyped.
func (p Params) String(key string, fallback string) string {
	if v, ok := p[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// Merge overlays overrides onto defaults without mutating either.
func Merge(defaults, overrides Params) Params {
	merged := make(Params, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// Context carries the watchlist-item binding for the current evaluation.
type Context struct {
	Exchange   string
	SecurityID string
	Product    enum.Product
}

// TradeIntent is an ephemeral proposed trade awaiting risk approval. It is
// either dropped on rejection or converted into exactly one order.
type TradeIntent struct {
	Symbol     string
	Exchange   string
	Side       enum.Side
	Qty        int
	OrderType  enum.OrderType
	Price      float64
	Product    enum.Product
	StopLoss   *float64
	Target     *float64
	SecurityID string
	Reason     string
}

// Unit is a stateful decision function: fed a symbol and its bar history,
// it emits zero or more trade intents. The per-symbol position memory is
// the only state a unit mutates, and a unit must only be driven by one
// goroutine at a time.
type Unit interface {
	Name() string
	Description() string
	DefaultParams() Params

	// SetContext binds the exchange/security-id/product of the watchlist
	// item about to be evaluated.
	SetContext(ctx Context)

	// OnBar evaluates the newest bar of an oldest-to-newest history.
	// Internal computation failures yield an empty slice, never a panic.
	OnBar(symbol string, bars []model.Bar) []TradeIntent
}
