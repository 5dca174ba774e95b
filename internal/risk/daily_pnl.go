package risk

import (
	"sync"
	"time"
)

// DailyPnL aggregates realized PnL for the current local day. Reconciliation
// feeds it as fills close out; the cycle only reads it. It rolls over to
// zero automatically on the first touch of a new day.
type DailyPnL struct {
	mu    sync.Mutex
	loc   *time.Location
	day   time.Time
	value float64
	now   func() time.Time
}

// NewDailyPnL creates a tracker anchored to the given trading timezone.
func NewDailyPnL(loc *time.Location) *DailyPnL {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyPnL{loc: loc, now: time.Now}
}

// Add records a realized PnL delta for today.
func (d *DailyPnL) Add(delta float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rollover()
	d.value += delta
}

// Today returns the aggregate realized PnL for the current day.
func (d *DailyPnL) Today() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rollover()
	return d.value
}

// Reset clears the aggregate, typically at the start of a trading session.
func (d *DailyPnL) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.day = d.today()
	d.value = 0
}

func (d *DailyPnL) rollover() {
	today := d.today()
	if !d.day.Equal(today) {
		d.day = today
		d.value = 0
	}
}

func (d *DailyPnL) today() time.Time {
	now := d.now().In(d.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, d.loc)
}
