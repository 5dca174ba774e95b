package market

import "time"

// MinuteOfDay is a wall-clock minute offset within a trading day.
type MinuteOfDay int

// Minute builds a MinuteOfDay from an hour and minute pair.
func Minute(hour, minute int) MinuteOfDay {
	return MinuteOfDay(hour*60 + minute)
}

// Calendar decides whether the market is open at a given instant. The
// session window is inclusive on both ends and weekends are always closed.
type Calendar struct {
	loc   *time.Location
	open  MinuteOfDay
	close MinuteOfDay
}

// NewCalendar creates a calendar for one exchange session.
func NewCalendar(loc *time.Location, open, close MinuteOfDay) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc, open: open, close: close}
}

// IST returns the NSE/BSE session calendar (09:15–15:30 Asia/Kolkata).
func IST() *Calendar {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("IST", int((5*time.Hour + 30*time.Minute).Seconds()))
	}
	return NewCalendar(loc, Minute(9, 15), Minute(15, 30))
}

// IsOpen reports whether t falls inside the trading session.
func (c *Calendar) IsOpen(t time.Time) bool {
	local := t.In(c.loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	seconds := local.Hour()*3600 + local.Minute()*60 + local.Second()
	return seconds >= int(c.open)*60 && seconds <= int(c.close)*60
}

// Location returns the calendar's timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// DayStart returns midnight of t's local trading day, used as the lower
// bound for counting today's open positions.
func (c *Calendar) DayStart(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}
