package risk

import (
	"fmt"

	"main/internal/model"
)

// Inputs is the snapshot a gate decision is evaluated against.
type Inputs struct {
	Settings      model.GlobalSettings
	OpenPositions int
	// TodayRealizedPnl is today's realized PnL as fed by reconciliation.
	// When nothing has fed the tracker it is zero and the daily-loss check
	// passes; the gate enforces only what it has been told.
	TodayRealizedPnl float64
	// Capital is the current account capital. Zero disables the daily-loss
	// percentage check.
	Capital float64
}

// Gate applies the ordered pre-trade checks. Checks short-circuit on the
// first failure and the reason string is surfaced to logs unchanged.
type Gate struct{}

// NewGate creates a risk gate.
func NewGate() *Gate {
	return &Gate{}
}

// Authorize decides whether a prospective trade may proceed.
func (g *Gate) Authorize(in Inputs) (bool, string) {
	if !in.Settings.TradingEnabled {
		return false, "Trading is disabled globally"
	}

	// Paper mode lets every signal flow so paper and live runs stay
	// comparable. The kill switch above still wins.
	if in.Settings.PaperTrading {
		return true, "OK (Paper)"
	}

	if in.OpenPositions >= in.Settings.MaxPositions {
		return false, fmt.Sprintf("Max positions (%d) reached", in.Settings.MaxPositions)
	}

	if in.Capital > 0 && in.TodayRealizedPnl < 0 {
		lossPct := -in.TodayRealizedPnl / in.Capital * 100
		if lossPct >= in.Settings.MaxDailyLossPct {
			return false, fmt.Sprintf("Daily loss limit breached: %.2f%%", lossPct)
		}
	}

	return true, "OK"
}

// PositionSize computes a risk-based quantity: the capital at risk divided
// by the stop distance, floored, minimum 1. Degenerate inputs fall back to
// a single unit instead of dividing by zero.
func PositionSize(capital, riskPct, slDistance, price float64) int {
	if slDistance <= 0 || price <= 0 {
		return 1
	}
	qty := int(capital * (riskPct / 100) / slDistance)
	if qty < 1 {
		return 1
	}
	return qty
}
