package strategy

import (
	"testing"
	"time"

	"main/internal/model"
	"main/internal/model/enum"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bullishHistory declines for 22 bars then rallies hard, so the fast EMA
// crosses above the slow EMA exactly at the final bar with RSI well above
// the buy threshold.
func bullishHistory() []model.Bar {
	closes := make([]float64, 0, 27)
	for i := 0; i < 22; i++ {
		closes = append(closes, 100-0.3*float64(i))
	}
	price := closes[len(closes)-1]
	for i := 0; i < 5; i++ {
		price += 1.5
		closes = append(closes, price)
	}
	return barsFromCloses(closes)
}

// bearishHistory mirrors the bullish one around 200, producing a bearish
// cross at the final bar with RSI below the sell threshold.
func bearishHistory() []model.Bar {
	bars := bullishHistory()
	out := make([]model.Bar, len(bars))
	for i, b := range bars {
		b.Close = 200 - b.Close
		out[i] = b
	}
	return out
}

func barsFromCloses(closes []float64) []model.Bar {
	base := time.Date(2025, 6, 2, 9, 15, 0, 0, time.UTC)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Ts:     base.Add(time.Duration(i) * time.Minute),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestEMACrossoverBuySignal(t *testing.T) {
	unit := NewEMACrossover(nil)
	unit.SetContext(Context{Exchange: "NSE", SecurityID: "11536"})

	bars := bullishHistory()
	intents := unit.OnBar("TCS", bars)
	require.Len(t, intents, 1)

	intent := intents[0]
	assert.Equal(t, enum.SideBuy, intent.Side)
	assert.Equal(t, 1, intent.Qty)
	assert.Equal(t, enum.OrderTypeMarket, intent.OrderType)
	assert.Equal(t, enum.ProductIntraday, intent.Product)
	assert.Equal(t, "11536", intent.SecurityID)
	assert.Equal(t, "EMA Cross BUY: fast=97.56 slow=97.12 rsi=69.2", intent.Reason)

	price := bars[len(bars)-1].Close
	require.NotNil(t, intent.StopLoss)
	require.NotNil(t, intent.Target)
	assert.InDelta(t, price*0.99, *intent.StopLoss, 1e-9)
	assert.InDelta(t, price*1.02, *intent.Target, 1e-9)
	assert.Equal(t, enum.PositionLong, unit.Position("TCS"))

	// Re-evaluating the same history must not re-enter the held side.
	assert.Empty(t, unit.OnBar("TCS", bars))
}

func TestEMACrossoverFlipsShortToLong(t *testing.T) {
	unit := NewEMACrossover(nil)

	intents := unit.OnBar("INFY", bearishHistory())
	require.Len(t, intents, 1)
	assert.Equal(t, enum.SideSell, intents[0].Side)
	assert.Equal(t, "EMA Cross SELL: fast=102.44 slow=102.88 rsi=30.8", intents[0].Reason)
	assert.Equal(t, enum.PositionShort, unit.Position("INFY"))

	// A bullish cross against a held short emits the exit first, then the
	// fresh entry.
	intents = unit.OnBar("INFY", bullishHistory())
	require.Len(t, intents, 2)
	assert.Equal(t, enum.SideBuy, intents[0].Side)
	assert.Equal(t, "Exit Short + EMA Cross", intents[0].Reason)
	assert.Nil(t, intents[0].StopLoss)
	assert.Equal(t, enum.SideBuy, intents[1].Side)
	assert.Contains(t, intents[1].Reason, "EMA Cross BUY")
	assert.Equal(t, enum.PositionLong, unit.Position("INFY"))
}

func TestEMACrossoverWarmup(t *testing.T) {
	unit := NewEMACrossover(nil)
	bars := bullishHistory()

	// Below slow period plus margin nothing fires and nothing mutates.
	for n := 0; n < 26; n++ {
		if intents := unit.OnBar("TCS", bars[:n]); len(intents) != 0 {
			t.Fatalf("history of %d bars emitted %d intents, want none", n, len(intents))
		}
	}
	assert.Equal(t, enum.PositionNone, unit.Position("TCS"))
}

func TestEMACrossoverRSIFilter(t *testing.T) {
	unit := NewEMACrossover(Params{"rsi_buy_threshold": 99.9})

	intents := unit.OnBar("TCS", bullishHistory())
	assert.Empty(t, intents)
	assert.Equal(t, enum.PositionNone, unit.Position("TCS"))
}

func TestEMACrossoverParamOverrides(t *testing.T) {
	unit := NewEMACrossover(Params{"qty": 3, "sl_pct": 2.0, "target_pct": 4.0})
	unit.SetContext(Context{Product: enum.ProductDelivery})

	bars := bullishHistory()
	intents := unit.OnBar("TCS", bars)
	require.Len(t, intents, 1)

	price := bars[len(bars)-1].Close
	assert.Equal(t, 3, intents[0].Qty)
	assert.Equal(t, enum.ProductDelivery, intents[0].Product)
	assert.InDelta(t, price*0.98, *intents[0].StopLoss, 1e-9)
	assert.InDelta(t, price*1.04, *intents[0].Target, 1e-9)
}
