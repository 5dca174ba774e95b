package strategy

import (
	"fmt"
	"math"

	"main/internal/model"
	"main/internal/model/enum"

	"github.com/yanun0323/logs"
)

// Warm-up margin on top of the slow EMA period before any signal may fire.
const warmupMargin = 5

type crossOutcome uint8

const (
	crossInsufficient crossOutcome = iota
	crossNone
	crossBullish
	crossBearish
)

// EMACrossover trades fast/slow EMA crossovers filtered by RSI. It keeps a
// per-symbol position side across bars so that a cross against a held
// position emits the exit before the fresh entry.
type EMACrossover struct {
	params    Params
	ctx       Context
	positions map[string]enum.PositionSide
}

// NewEMACrossover builds a unit with overrides merged onto the defaults.
func NewEMACrossover(params Params) *EMACrossover {
	u := &EMACrossover{
		positions: make(map[string]enum.PositionSide),
	}
	u.params = Merge(u.DefaultParams(), params)
	return u
}

func (u *EMACrossover) Name() string { return "ema_crossover" }

func (u *EMACrossover) Description() string {
	return "EMA crossover with RSI filter for intraday equities"
}

func (u *EMACrossover) DefaultParams() Params {
	return Params{
		"ema_fast":           9,
		"ema_slow":           21,
		"rsi_period":         14,
		"rsi_buy_threshold":  55.0,
		"rsi_sell_threshold": 45.0,
		"sl_pct":             1.0,
		"target_pct":         2.0,
		"qty":                1,
		"product":            string(enum.ProductIntraday),
	}
}

// SetContext binds the watchlist item currently being evaluated.
func (u *EMACrossover) SetContext(ctx Context) {
	u.ctx = ctx
}

// Position reports the tracked side for a symbol.
func (u *EMACrossover) Position(symbol string) enum.PositionSide {
	return u.positions[symbol]
}

// OnBar evaluates the newest bar. A failed computation for one symbol must
// never escape to the cycle, so any panic degrades to no intents.
func (u *EMACrossover) OnBar(symbol string, bars []model.Bar) (intents []TradeIntent) {
	defer func() {
		if r := recover(); r != nil {
			logs.Errorf("strategy %s evaluation failed for %s: %v", u.Name(), symbol, r)
			intents = nil
		}
	}()

	fast := u.params.Int("ema_fast", 9)
	slow := u.params.Int("ema_slow", 21)

	outcome, fastEMA, slowEMA := u.cross(bars, fast, slow)
	if outcome == crossInsufficient || outcome == crossNone {
		return nil
	}

	closes := model.Closes(bars)
	rsi := RSI(closes, u.params.Int("rsi_period", 14))
	if math.IsNaN(rsi) {
		rsi = 50
	}
	price := closes[len(closes)-1]

	qty := u.params.Int("qty", 1)
	product := enum.Product(u.params.String("product", string(enum.ProductIntraday)))
	if u.ctx.Product != "" {
		product = u.ctx.Product
	}
	slPct := u.params.Float("sl_pct", 1.0) / 100
	targetPct := u.params.Float("target_pct", 2.0) / 100
	held := u.positions[symbol]

	switch outcome {
	case crossBullish:
		if rsi < u.params.Float("rsi_buy_threshold", 55) || held == enum.PositionLong {
			return nil
		}
		if held == enum.PositionShort {
			intents = append(intents, u.exitIntent(symbol, enum.SideBuy, qty, product, "Exit Short + EMA Cross"))
		}
		sl := price * (1 - slPct)
		target := price * (1 + targetPct)
		intents = append(intents, u.entryIntent(symbol, enum.SideBuy, qty, product, sl, target,
			fmt.Sprintf("EMA Cross BUY: fast=%.2f slow=%.2f rsi=%.1f", fastEMA, slowEMA, rsi)))
		u.positions[symbol] = enum.PositionLong
		logs.Infof("BUY signal: %s @ %.2f", symbol, price)

	case crossBearish:
		if rsi > u.params.Float("rsi_sell_threshold", 45) || held == enum.PositionShort {
			return nil
		}
		if held == enum.PositionLong {
			intents = append(intents, u.exitIntent(symbol, enum.SideSell, qty, product, "Exit Long + EMA Cross"))
		}
		sl := price * (1 + slPct)
		target := price * (1 - targetPct)
		intents = append(intents, u.entryIntent(symbol, enum.SideSell, qty, product, sl, target,
			fmt.Sprintf("EMA Cross SELL: fast=%.2f slow=%.2f rsi=%.1f", fastEMA, slowEMA, rsi)))
		u.positions[symbol] = enum.PositionShort
		logs.Infof("SELL signal: %s @ %.2f", symbol, price)
	}

	return intents
}

// cross classifies the last two bars of the fast/slow EMA series. Histories
// below the warm-up threshold never produce a signal nor mutate state.
func (u *EMACrossover) cross(bars []model.Bar, fast, slow int) (crossOutcome, float64, float64) {
	if len(bars) < slow+warmupMargin {
		return crossInsufficient, 0, 0
	}

	closes := model.Closes(bars)
	fastSeries := EMASeries(closes, fast)
	slowSeries := EMASeries(closes, slow)
	n := len(closes)

	prevFast, currFast := fastSeries[n-2], fastSeries[n-1]
	prevSlow, currSlow := slowSeries[n-2], slowSeries[n-1]
	if math.IsNaN(currFast) || math.IsNaN(currSlow) {
		return crossInsufficient, 0, 0
	}

	switch {
	case prevFast <= prevSlow && currFast > currSlow:
		return crossBullish, currFast, currSlow
	case prevFast >= prevSlow && currFast < currSlow:
		return crossBearish, currFast, currSlow
	default:
		return crossNone, currFast, currSlow
	}
}

func (u *EMACrossover) exitIntent(symbol string, side enum.Side, qty int, product enum.Product, reason string) TradeIntent {
	return TradeIntent{
		Symbol:     symbol,
		Exchange:   u.exchange(),
		Side:       side,
		Qty:        qty,
		OrderType:  enum.OrderTypeMarket,
		Product:    product,
		SecurityID: u.ctx.SecurityID,
		Reason:     reason,
	}
}

func (u *EMACrossover) entryIntent(symbol string, side enum.Side, qty int, product enum.Product, sl, target float64, reason string) TradeIntent {
	return TradeIntent{
		Symbol:     symbol,
		Exchange:   u.exchange(),
		Side:       side,
		Qty:        qty,
		OrderType:  enum.OrderTypeMarket,
		Product:    product,
		StopLoss:   &sl,
		Target:     &target,
		SecurityID: u.ctx.SecurityID,
		Reason:     reason,
	}
}

func (u *EMACrossover) exchange() string {
	if u.ctx.Exchange == "" {
		return "NSE"
	}
	return u.ctx.Exchange
}
