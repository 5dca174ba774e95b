package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yanun0323/logs"
)

// PaperDispatcher simulates execution: it performs no network I/O and
// synthesizes a unique order id per submission.
type PaperDispatcher struct {
	mu  sync.Mutex
	seq uint64
	now func() time.Time
}

// NewPaperDispatcher creates a paper dispatcher.
func NewPaperDispatcher() *PaperDispatcher {
	return &PaperDispatcher{now: time.Now}
}

// Submit accepts every order and fabricates an id.
func (d *PaperDispatcher) Submit(_ context.Context, req OrderRequest) Result {
	d.mu.Lock()
	d.seq++
	id := fmt.Sprintf("PAPER_%s_%04d", d.now().UTC().Format("20060102150405"), d.seq)
	d.mu.Unlock()

	logs.Infof("[PAPER] %s %d %s @ %s", req.Side, req.Qty, req.Symbol, req.OrderType)
	return Result{OK: true, OrderID: id}
}
