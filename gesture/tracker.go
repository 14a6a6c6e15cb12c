package gesture

import (
	"context"
	"sync"
	"sync/atomic"
)

// Axis names the coordinate an absolute sample reports.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Handler consumes completed points and session resets. The Engine is the
// production handler.
type Handler interface {
	Evaluate(p Point)
	Reset()
}

type itemKind int

const (
	itemPoint itemKind = iota
	itemReset
)

type item struct {
	kind  itemKind
	point Point
}

// TrackerStats counts dispatches handed to the consumer.
type TrackerStats struct {
	Points    uint64 `json:"points"`
	Resets    uint64 `json:"resets"`
	Coalesced uint64 `json:"coalesced"`
}

// Tracker joins per-axis samples into points and hands points and resets to
// a single consumer goroutine. Producers never block on the consumer: when
// the consumer is behind, a queued point is replaced by the newest one.
type Tracker struct {
	handler Handler

	mu    sync.Mutex
	x, y  int
	haveX bool
	haveY bool
	queue []item

	wake chan struct{}

	points    atomic.Uint64
	resets    atomic.Uint64
	coalesced atomic.Uint64
}

// NewTracker creates a tracker that dispatches to h.
func NewTracker(h Handler) *Tracker {
	return &Tracker{
		handler: h,
		queue:   make([]item, 0, 3),
		wake:    make(chan struct{}, 1),
	}
}

// Axis records a sample for one axis. Once both axes have reported since the
// last point, the pair is dispatched as a new point.
func (t *Tracker) Axis(axis Axis, value int) {
	t.mu.Lock()
	switch axis {
	case AxisX:
		t.x = value
		t.haveX = true
	case AxisY:
		t.y = value
		t.haveY = true
	}
	if !t.haveX || !t.haveY {
		t.mu.Unlock()
		return
	}
	t.haveX, t.haveY = false, false
	t.enqueue(item{kind: itemPoint, point: Point{X: t.x, Y: t.y}})
	t.mu.Unlock()

	t.points.Add(1)
	t.signal()
}

// Reset ends the current session. A half-recorded point is discarded.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.haveX, t.haveY = false, false
	t.enqueue(item{kind: itemReset})
	t.mu.Unlock()

	t.resets.Add(1)
	t.signal()
}

// enqueue keeps the queue at most three items long ([point, reset, point]).
// Consecutive points collapse to the newest. A single point that sits between
// two resets can neither fire nor outlive the second reset, so it is dropped.
// Callers hold t.mu.
func (t *Tracker) enqueue(it item) {
	n := len(t.queue)
	switch it.kind {
	case itemPoint:
		if n > 0 && t.queue[n-1].kind == itemPoint {
			t.queue[n-1] = it
			t.coalesced.Add(1)
			return
		}
	case itemReset:
		if n > 0 && t.queue[n-1].kind == itemReset {
			return
		}
		if n > 1 && t.queue[n-1].kind == itemPoint && t.queue[n-2].kind == itemReset {
			t.queue = t.queue[:n-1]
			t.coalesced.Add(1)
			return
		}
	}
	t.queue = append(t.queue, it)
}

func (t *Tracker) signal() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Run is the consumer loop. It returns when ctx is done.
func (t *Tracker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.wake:
			t.drain()
		}
	}
}

// drain applies every queued item to the handler in order.
func (t *Tracker) drain() {
	for {
		t.mu.Lock()
		if len(t.queue) == 0 {
			t.mu.Unlock()
			return
		}
		it := t.queue[0]
		t.queue = append(t.queue[:0], t.queue[1:]...)
		t.mu.Unlock()

		switch it.kind {
		case itemReset:
			t.handler.Reset()
		case itemPoint:
			t.handler.Evaluate(it.point)
		}
	}
}

// Pending returns the number of queued dispatches.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}

func (t *Tracker) Stats() TrackerStats {
	return TrackerStats{
		Points:    t.points.Load(),
		Resets:    t.resets.Load(),
		Coalesced: t.coalesced.Load(),
	}
}
