package engine

import (
	"context"
	"fmt"
	"time"

	"main/internal/broker"
	"main/internal/market"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/internal/risk"
	"main/internal/strategy"

	"github.com/yanun0323/logs"
)

// Store is the persistence surface the cycle needs.
type Store interface {
	GlobalSettings(ctx context.Context) (model.GlobalSettings, error)
	EnabledStrategies(ctx context.Context) ([]model.Strategy, error)
	Watchlist(ctx context.Context, strategyID uint) ([]model.WatchlistItem, error)
	CountOpenPositions(ctx context.Context, since time.Time) (int, error)
	CreateOrder(ctx context.Context, order *model.Order) error
	AppendLog(ctx context.Context, level, source, message, extra string)
}

// CapitalProvider reports the current account capital for the daily-loss
// percentage check. A nil provider disables that check.
type CapitalProvider func(ctx context.Context) float64

// Minimum bars before an item is even handed to a strategy unit; the unit
// applies its own stricter warm-up on top.
const minHistory = 5

// Cycle drives one scheduled pass over all enabled strategies and their
// watchlists. It is stateless between invocations except for the strategy
// instance cache it owns.
type Cycle struct {
	store    Store
	data     broker.MarketData
	paper    broker.Dispatcher
	live     broker.Dispatcher
	gate     *risk.Gate
	pnl      *risk.DailyPnL
	calendar *market.Calendar
	cache    *Cache
	metrics  *obs.Metrics
	capital  CapitalProvider
	now      func() time.Time
}

// CycleConfig wires the cycle's collaborators.
type CycleConfig struct {
	Store    Store
	Data     broker.MarketData
	Paper    broker.Dispatcher
	Live     broker.Dispatcher
	Gate     *risk.Gate
	PnL      *risk.DailyPnL
	Calendar *market.Calendar
	Metrics  *obs.Metrics
	Capital  CapitalProvider
}

// NewCycle builds a cycle orchestrator with its own instance cache.
func NewCycle(cfg CycleConfig) *Cycle {
	gate := cfg.Gate
	if gate == nil {
		gate = risk.NewGate()
	}
	calendar := cfg.Calendar
	if calendar == nil {
		calendar = market.IST()
	}
	pnl := cfg.PnL
	if pnl == nil {
		pnl = risk.NewDailyPnL(calendar.Location())
	}
	return &Cycle{
		store:    cfg.Store,
		data:     cfg.Data,
		paper:    cfg.Paper,
		live:     cfg.Live,
		gate:     gate,
		pnl:      pnl,
		calendar: calendar,
		cache:    NewCache(),
		metrics:  cfg.Metrics,
		capital:  cfg.Capital,
		now:      time.Now,
	}
}

// Cache exposes the strategy instance cache for control-side invalidation.
func (c *Cycle) Cache() *Cache {
	return c.cache
}

// PnL exposes the daily PnL tracker for control-side resets.
func (c *Cycle) PnL() *risk.DailyPnL {
	return c.pnl
}

// Run executes one full cycle. Nothing escapes: every failure is logged
// and the scheduler stays armed for the next tick.
func (c *Cycle) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logs.Errorf("strategy cycle panicked: %v", r)
		}
	}()

	started := time.Now()
	defer func() {
		c.metrics.ObserveCycle(time.Since(started))
	}()

	now := c.now()
	if !c.calendar.IsOpen(now) {
		c.metrics.IncCycleSkipped()
		return
	}

	settings, err := c.store.GlobalSettings(ctx)
	if err != nil {
		logs.Errorf("load global settings, err: %+v", err)
		return
	}
	if !settings.TradingEnabled {
		c.metrics.IncCycleSkipped()
		return
	}

	strategies, err := c.store.EnabledStrategies(ctx)
	if err != nil {
		logs.Errorf("list enabled strategies, err: %+v", err)
		return
	}
	if len(strategies) == 0 {
		c.metrics.IncCycleSkipped()
		return
	}

	logs.Infof("running %d active strategies", len(strategies))
	for _, strat := range strategies {
		c.runStrategy(ctx, settings, strat, now)
	}
	c.metrics.IncCycle()
}

// runStrategy walks one strategy's watchlist. A failure here stops only
// this strategy, not the remaining ones.
func (c *Cycle) runStrategy(ctx context.Context, settings model.GlobalSettings, strat model.Strategy, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			logs.Errorf("strategy %s cycle failed: %v", strat.Name, r)
		}
	}()

	watchlist, err := c.store.Watchlist(ctx, strat.ID)
	if err != nil {
		logs.Errorf("watchlist for strategy %s, err: %+v", strat.Name, err)
		return
	}
	if len(watchlist) == 0 {
		return
	}

	unit, err := c.cache.Get(strat)
	if err != nil {
		logs.Errorf("resolve strategy %s, err: %+v", strat.Name, err)
		return
	}

	for _, item := range watchlist {
		c.runItem(ctx, settings, strat, unit, item, now)
	}
}

// runItem fetches candles for one instrument, evaluates the unit and
// routes any intents. A failing symbol never blocks its siblings.
func (c *Cycle) runItem(ctx context.Context, settings model.GlobalSettings, strat model.Strategy, unit strategy.Unit, item model.WatchlistItem, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			logs.Errorf("processing %s for strategy %s failed: %v", item.Symbol, strat.Name, r)
		}
	}()

	securityID := item.SecurityID
	if securityID == "" {
		securityID = item.Symbol
	}

	bars := c.data.IntradayCandles(ctx, securityID, item.Exchange)
	if len(bars) < minHistory {
		c.metrics.IncSymbolSkipped()
		return
	}

	unit.SetContext(strategy.Context{
		Exchange:   item.Exchange,
		SecurityID: securityID,
		Product:    enum.Product(strategy.Params(strat.Params).String("product", string(enum.ProductIntraday))),
	})

	intents := unit.OnBar(item.Symbol, bars)
	c.metrics.IncSymbolEvaluated()

	// Intent order matters: an exit that accompanies an entry must reach
	// the broker first.
	for _, intent := range intents {
		c.metrics.IncIntent()
		c.dispatch(ctx, settings, strat, intent, now)
	}
}

// dispatch runs one intent through the risk gate, submits it and persists
// exactly one order record for it.
func (c *Cycle) dispatch(ctx context.Context, settings model.GlobalSettings, strat model.Strategy, intent strategy.TradeIntent, now time.Time) {
	open, err := c.store.CountOpenPositions(ctx, c.calendar.DayStart(now))
	if err != nil {
		logs.Errorf("count open positions, err: %+v", err)
		return
	}

	var capital float64
	if c.capital != nil {
		capital = c.capital(ctx)
	}
	allowed, reason := c.gate.Authorize(risk.Inputs{
		Settings:         settings,
		OpenPositions:    open,
		TodayRealizedPnl: c.pnl.Today(),
		Capital:          capital,
	})
	if !allowed {
		logs.Infof("trade blocked for %s: %s", intent.Symbol, reason)
		c.metrics.IncRiskRejection()
		return
	}

	dispatcher := c.live
	if settings.PaperTrading {
		dispatcher = c.paper
	}

	dispatchStart := time.Now()
	result := dispatcher.Submit(ctx, broker.OrderRequest{
		Symbol:     intent.Symbol,
		Exchange:   intent.Exchange,
		Side:       intent.Side,
		Qty:        intent.Qty,
		OrderType:  intent.OrderType,
		Price:      intent.Price,
		Product:    intent.Product,
		SecurityID: intent.SecurityID,
		StopLoss:   intent.StopLoss,
		Target:     intent.Target,
	})
	c.metrics.ObserveDispatch(time.Since(dispatchStart))

	order := c.buildOrder(settings, strat, intent, result)
	if err := c.store.CreateOrder(ctx, order); err != nil {
		logs.Errorf("persist order for %s, err: %+v", intent.Symbol, err)
		return
	}

	mode := "[LIVE]"
	if settings.PaperTrading {
		mode = "[PAPER]"
	}
	if result.OK {
		c.metrics.IncOrderPlaced()
		logs.Infof("%s %s %d %s: %s", mode, intent.Side, intent.Qty, intent.Symbol, intent.Reason)
		c.store.AppendLog(ctx, "INFO", "ENGINE",
			fmt.Sprintf("%s %s %d %s: %s", mode, intent.Side, intent.Qty, intent.Symbol, intent.Reason), "")
	} else {
		c.metrics.IncDispatchFailure()
		logs.Warnf("%s dispatch failed for %s: %s", mode, intent.Symbol, result.Err)
		c.store.AppendLog(ctx, "ERROR", "ENGINE",
			fmt.Sprintf("dispatch failed: %s %d %s: %s", intent.Side, intent.Qty, intent.Symbol, result.Err), "")
	}
}

// buildOrder freezes the dispatch outcome into a persistent record. The
// paper flag is captured at dispatch time, never re-derived later.
func (c *Cycle) buildOrder(settings model.GlobalSettings, strat model.Strategy, intent strategy.TradeIntent, result broker.Result) *model.Order {
	status := enum.OrderStatusExecuted
	switch {
	case settings.PaperTrading:
		status = enum.OrderStatusPaper
	case !result.OK:
		status = enum.OrderStatusRejected
	}

	var brokerOrderID *string
	if result.OK && result.OrderID != "" {
		id := result.OrderID
		brokerOrderID = &id
	}

	notes := intent.Reason
	if !result.OK && result.Err != "" {
		notes += "; dispatch error: " + result.Err
	}

	strategyID := strat.ID
	return &model.Order{
		StrategyID:    &strategyID,
		Symbol:        intent.Symbol,
		Exchange:      intent.Exchange,
		Side:          intent.Side,
		Qty:           intent.Qty,
		Price:         intent.Price,
		OrderType:     intent.OrderType,
		Product:       intent.Product,
		StopLoss:      intent.StopLoss,
		Target:        intent.Target,
		Status:        status,
		BrokerOrderID: brokerOrderID,
		IsPaper:       settings.PaperTrading,
		Notes:         notes,
	}
}
