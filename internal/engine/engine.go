package engine

import (
	"context"

	"github.com/yanun0323/logs"
)

// ControlStore is the persistence surface the control operations need.
type ControlStore interface {
	SetTradingEnabled(ctx context.Context, enabled bool) error
	TogglePaperTrading(ctx context.Context) (bool, error)
	UpdateRiskSettings(ctx context.Context, maxDailyLossPct *float64, maxPositions *int) error
	SetStrategyEnabled(ctx context.Context, strategyID uint, enabled bool) error
	AppendLog(ctx context.Context, level, source, message, extra string)
}

// Engine is the control facade exposed to the API surface: scheduler
// controls plus the global trading switches. The cycle itself never calls
// any of these.
type Engine struct {
	store     ControlStore
	scheduler *Scheduler
	cycle     *Cycle
}

// NewEngine ties the control surface to its collaborators.
func NewEngine(store ControlStore, scheduler *Scheduler, cycle *Cycle) *Engine {
	return &Engine{store: store, scheduler: scheduler, cycle: cycle}
}

// StartScheduler arms the cycle timer.
func (e *Engine) StartScheduler() {
	e.scheduler.Start()
}

// StopScheduler disarms the cycle timer.
func (e *Engine) StopScheduler() {
	e.scheduler.Stop()
}

// SchedulerStatus reports whether the timer is armed.
func (e *Engine) SchedulerStatus() bool {
	return e.scheduler.Running()
}

// KillSwitch disables trading globally and stops the scheduler. An
// in-flight cycle finishes its current symbol; no new work is accepted.
func (e *Engine) KillSwitch(ctx context.Context) error {
	if err := e.store.SetTradingEnabled(ctx, false); err != nil {
		return err
	}
	e.scheduler.Stop()
	logs.Warnf("KILL SWITCH ACTIVATED - trading disabled, scheduler halted")
	e.store.AppendLog(ctx, "WARN", "CONTROL", "kill switch activated", "")
	return nil
}

// TogglePaperTrade flips paper mode and returns the new value.
func (e *Engine) TogglePaperTrade(ctx context.Context) (bool, error) {
	paper, err := e.store.TogglePaperTrading(ctx)
	if err != nil {
		return false, err
	}
	mode := "live"
	if paper {
		mode = "paper"
	}
	logs.Warnf("trading mode changed to %s", mode)
	e.store.AppendLog(ctx, "WARN", "CONTROL", "trading mode changed to "+mode, "")
	return paper, nil
}

// UpdateRiskSettings mutates the global risk limits; nil fields are kept.
func (e *Engine) UpdateRiskSettings(ctx context.Context, maxDailyLossPct *float64, maxPositions *int) error {
	if err := e.store.UpdateRiskSettings(ctx, maxDailyLossPct, maxPositions); err != nil {
		return err
	}
	logs.Info("risk settings updated")
	return nil
}

// EnableStrategy toggles one strategy's participation and drops its cached
// instance so the change takes effect on the next cycle.
func (e *Engine) EnableStrategy(ctx context.Context, strategyID uint, enabled bool) error {
	if err := e.store.SetStrategyEnabled(ctx, strategyID, enabled); err != nil {
		return err
	}
	e.cycle.Cache().Invalidate(strategyID)
	logs.Infof("strategy %d enabled=%v", strategyID, enabled)
	return nil
}

// ResetDailyPnL clears the in-memory daily aggregate, typically at the
// start of a trading session.
func (e *Engine) ResetDailyPnL() {
	e.cycle.PnL().Reset()
	logs.Info("daily PnL stats reset")
}

// InvalidateStrategy drops the cached runtime instance after a parameter
// update so the next cycle rebuilds it.
func (e *Engine) InvalidateStrategy(strategyID uint) {
	e.cycle.Cache().Invalidate(strategyID)
}
