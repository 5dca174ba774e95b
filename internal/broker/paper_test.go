package broker

import (
	"context"
	"testing"
	"time"

	"main/internal/model/enum"
)

func TestPaperDispatcherSubmit(t *testing.T) {
	d := NewPaperDispatcher()
	d.now = func() time.Time { return time.Date(2025, 6, 2, 10, 30, 45, 0, time.UTC) }

	req := OrderRequest{Symbol: "TCS", Side: enum.SideBuy, Qty: 1, OrderType: enum.OrderTypeMarket}

	first := d.Submit(context.Background(), req)
	if !first.OK {
		t.Fatalf("paper submit should always succeed: %+v", first)
	}
	if first.OrderID != "PAPER_20250602103045_0001" {
		t.Fatalf("order id: got %s", first.OrderID)
	}

	second := d.Submit(context.Background(), req)
	if second.OrderID != "PAPER_20250602103045_0002" {
		t.Fatalf("order id: got %s", second.OrderID)
	}
	if first.OrderID == second.OrderID {
		t.Fatal("order ids must be unique per submission")
	}
}
