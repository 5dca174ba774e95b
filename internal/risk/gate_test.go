package risk

import (
	"testing"

	"main/internal/model"
)

func TestAuthorize(t *testing.T) {
	testCases := []struct {
		desc       string
		in         Inputs
		wantOK     bool
		wantReason string
	}{
		{
			"kill switch beats paper mode",
			Inputs{Settings: model.GlobalSettings{TradingEnabled: false, PaperTrading: true}},
			false,
			"Trading is disabled globally",
		},
		{
			"paper mode bypasses position limits",
			Inputs{
				Settings:      model.GlobalSettings{TradingEnabled: true, PaperTrading: true, MaxPositions: 3},
				OpenPositions: 99,
			},
			true,
			"OK (Paper)",
		},
		{
			"max positions reached",
			Inputs{
				Settings:      model.GlobalSettings{TradingEnabled: true, MaxPositions: 3},
				OpenPositions: 3,
			},
			false,
			"Max positions (3) reached",
		},
		{
			"daily loss limit breached",
			Inputs{
				Settings:         model.GlobalSettings{TradingEnabled: true, MaxPositions: 3, MaxDailyLossPct: 2},
				TodayRealizedPnl: -2500,
				Capital:          100000,
			},
			false,
			"Daily loss limit breached: 2.50%",
		},
		{
			"small loss passes",
			Inputs{
				Settings:         model.GlobalSettings{TradingEnabled: true, MaxPositions: 3, MaxDailyLossPct: 2},
				TodayRealizedPnl: -100,
				Capital:          100000,
			},
			true,
			"OK",
		},
		{
			"unknown capital disables loss check",
			Inputs{
				Settings:         model.GlobalSettings{TradingEnabled: true, MaxPositions: 3, MaxDailyLossPct: 2},
				TodayRealizedPnl: -1e9,
			},
			true,
			"OK",
		},
	}

	gate := NewGate()
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			ok, reason := gate.Authorize(tc.in)
			if ok != tc.wantOK {
				t.Fatalf("allowed mismatch: got %v want %v", ok, tc.wantOK)
			}
			if reason != tc.wantReason {
				t.Fatalf("reason mismatch: got %q want %q", reason, tc.wantReason)
			}
		})
	}
}

func TestPositionSize(t *testing.T) {
	testCases := []struct {
		desc                            string
		capital, riskPct, slDist, price float64
		want                            int
	}{
		{"risk divided by stop distance", 100000, 1, 10, 500, 100},
		{"floors fractional quantity", 100000, 1, 7, 500, 142},
		{"minimum one unit", 100, 1, 50, 10, 1},
		{"zero stop distance", 100000, 1, 0, 500, 1},
		{"non-positive price", 100000, 1, 10, 0, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := PositionSize(tc.capital, tc.riskPct, tc.slDist, tc.price); got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}
