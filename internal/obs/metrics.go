package obs

import (
	"sync/atomic"
	"time"
)

// Metrics collects lightweight counters for the strategy cycle.
type Metrics struct {
	cycles           uint64
	cyclesSkipped    uint64
	symbolsEvaluated uint64
	symbolsSkipped   uint64
	intents          uint64
	riskRejections   uint64
	ordersPlaced     uint64
	dispatchFailures uint64
	ticksDropped     uint64

	cycleLatency    LatencyStats
	dispatchLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	Cycles           uint64
	CyclesSkipped    uint64
	SymbolsEvaluated uint64
	SymbolsSkipped   uint64
	Intents          uint64
	RiskRejections   uint64
	OrdersPlaced     uint64
	DispatchFailures uint64
	TicksDropped     uint64
	CycleLatency     LatencySnapshot
	DispatchLatency  LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncCycle counts a completed cycle invocation.
func (m *Metrics) IncCycle() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.cycles, 1)
}

// IncCycleSkipped counts a cycle gated off before any work (market closed,
// trading disabled, nothing enabled).
func (m *Metrics) IncCycleSkipped() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.cyclesSkipped, 1)
}

// IncSymbolEvaluated counts one strategy/symbol evaluation.
func (m *Metrics) IncSymbolEvaluated() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.symbolsEvaluated, 1)
}

// IncSymbolSkipped counts a symbol skipped for missing or short data.
func (m *Metrics) IncSymbolSkipped() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.symbolsSkipped, 1)
}

// IncIntent counts an emitted trade intent.
func (m *Metrics) IncIntent() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.intents, 1)
}

// IncRiskRejection counts an intent dropped by the risk gate.
func (m *Metrics) IncRiskRejection() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.riskRejections, 1)
}

// IncOrderPlaced counts a persisted order.
func (m *Metrics) IncOrderPlaced() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ordersPlaced, 1)
}

// IncDispatchFailure counts a failed broker submission.
func (m *Metrics) IncDispatchFailure() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.dispatchFailures, 1)
}

// IncTickDropped counts a scheduler tick dropped because the previous
// cycle was still running.
func (m *Metrics) IncTickDropped() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ticksDropped, 1)
}

// ObserveCycle measures one cycle's wall time.
func (m *Metrics) ObserveCycle(d time.Duration) {
	if m == nil {
		return
	}
	m.cycleLatency.Observe(d)
}

// ObserveDispatch measures one order submission's wall time.
func (m *Metrics) ObserveDispatch(d time.Duration) {
	if m == nil {
		return
	}
	m.dispatchLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		Cycles:           atomic.LoadUint64(&m.cycles),
		CyclesSkipped:    atomic.LoadUint64(&m.cyclesSkipped),
		SymbolsEvaluated: atomic.LoadUint64(&m.symbolsEvaluated),
		SymbolsSkipped:   atomic.LoadUint64(&m.symbolsSkipped),
		Intents:          atomic.LoadUint64(&m.intents),
		RiskRejections:   atomic.LoadUint64(&m.riskRejections),
		OrdersPlaced:     atomic.LoadUint64(&m.ordersPlaced),
		DispatchFailures: atomic.LoadUint64(&m.dispatchFailures),
		TicksDropped:     atomic.LoadUint64(&m.ticksDropped),
		CycleLatency:     m.cycleLatency.Snapshot(),
		DispatchLatency:  m.dispatchLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
