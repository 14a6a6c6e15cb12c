package input

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	evdev "github.com/holoplot/go-evdev"

	"github.com/edgewake/trace2wake/utils"
)

// EventSource is the subset of *evdev.InputDevice the reader needs.
type EventSource interface {
	ReadOne() (*evdev.InputEvent, error)
	Close() error
}

// Reader pumps events from a source into a sink until the context ends or
// the source fails.
type Reader struct {
	src  EventSource
	sink Sink

	events atomic.Uint64
	used   atomic.Uint64
}

func NewReader(src EventSource, sink Sink) *Reader {
	return &Reader{src: src, sink: sink}
}

// ReaderStats counts raw events read and events that reached the sink.
type ReaderStats struct {
	Events uint64 `json:"events"`
	Used   uint64 `json:"used"`
}

func (r *Reader) Stats() ReaderStats {
	return ReaderStats{Events: r.events.Load(), Used: r.used.Load()}
}

// Run blocks reading events. Cancelling ctx closes the source, which unblocks
// the pending read. It returns ctx.Err() after cancellation, otherwise the
// read error. The source is closed exactly once either way.
func (r *Reader) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	var (
		closing   atomic.Bool
		closeOnce sync.Once
	)
	closeSrc := func() {
		closeOnce.Do(func() {
			if err := r.src.Close(); err != nil {
				utils.Verbose("Closing touch source: %v", err)
			}
		})
	}
	defer closeSrc()

	go func() {
		select {
		case <-ctx.Done():
			closing.Store(true)
			closeSrc()
		case <-done:
		}
	}()

	for {
		ev, err := r.src.ReadOne()
		if err != nil {
			if closing.Load() || ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read touch event: %w", err)
		}
		if ev == nil {
			return errors.New("touch source returned no event")
		}

		r.events.Add(1)
		if Dispatch(ev, r.sink) {
			r.used.Add(1)
		}

		if utils.IsVerbose() && ev.Type != evdev.EV_SYN {
			utils.Verbose("touch event type=%d code=%d value=%d", ev.Type, ev.Code, ev.Value)
		}
	}
}
