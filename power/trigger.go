// Package power emits simulated power-button presses.
package power

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	evdev "github.com/holoplot/go-evdev"

	"github.com/edgewake/trace2wake/utils"
)

// DefaultHold is how long the key is held down, and how long the trigger
// stays busy after release.
const DefaultHold = 60 * time.Millisecond

// Sink receives raw input events. An *evdev.InputDevice satisfies it.
type Sink interface {
	WriteOne(event *evdev.InputEvent) error
}

// Trigger runs at most one key-press sequence at a time. Calls made while a
// sequence is in flight are dropped, never queued.
type Trigger struct {
	hold    time.Duration
	history *History

	mu   sync.RWMutex
	sink Sink

	busy        atomic.Bool
	missingOnce sync.Once
	wg          sync.WaitGroup
}

// NewTrigger creates a trigger writing to sink. sink may be nil and supplied
// later with SetSink; history may be nil.
func NewTrigger(sink Sink, hold time.Duration, history *History) *Trigger {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Trigger{
		hold:    hold,
		history: history,
		sink:    sink,
	}
}

// SetSink replaces the power-capable device used by later presses.
func (t *Trigger) SetSink(sink Sink) {
	t.mu.Lock()
	t.sink = sink
	t.mu.Unlock()
	if sink != nil {
		utils.Verbose("Power sink set: %T", sink)
	}
}

func (t *Trigger) currentSink() Sink {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sink
}

// Hold returns the per-edge hold duration.
func (t *Trigger) Hold() time.Duration {
	return t.hold
}

// Busy reports whether a sequence is in flight.
func (t *Trigger) Busy() bool {
	return t.busy.Load()
}

// Trigger starts a press sequence on its own goroutine and returns
// immediately. It returns true only if this call started the sequence.
func (t *Trigger) Trigger() bool {
	sink := t.currentSink()
	if sink == nil {
		t.missingOnce.Do(func() {
			utils.Warn("No power device registered, ignoring wake request")
		})
		return false
	}

	if !t.busy.CompareAndSwap(false, true) {
		utils.Verbose("Power press already in progress, dropping request")
		return false
	}

	t.wg.Add(1)
	go t.press(sink)
	return true
}

// Wait blocks until the in-flight sequence, if any, has released.
func (t *Trigger) Wait() {
	t.wg.Wait()
}

func (t *Trigger) press(sink Sink) {
	defer t.wg.Done()
	defer t.busy.Store(false)

	id := uuid.NewString()
	started := time.Now()
	utils.Verbose("Power press %s started", id)

	var errs []error
	errs = append(errs, emitKey(sink, 1)...)
	time.Sleep(t.hold)
	errs = append(errs, emitKey(sink, 0)...)
	time.Sleep(t.hold)

	err := errors.Join(errs...)
	if err != nil {
		utils.Error("Power press %s failed: %v", id, err)
	}

	if t.history != nil {
		p := Press{
			ID:       id,
			Started:  started,
			Duration: time.Since(started),
		}
		if err != nil {
			p.Error = err.Error()
		}
		t.history.Add(p)
	}
}

// emitKey writes one KEY_POWER edge followed by a SYN_REPORT. Both writes are
// attempted even if the first fails.
func emitKey(sink Sink, value int32) []error {
	var errs []error
	now := time.Now()
	tv := evdevTime(now)

	if err := sink.WriteOne(&evdev.InputEvent{Time: tv, Type: evdev.EV_KEY, Code: evdev.KEY_POWER, Value: value}); err != nil {
		errs = append(errs, fmt.Errorf("write KEY_POWER=%d: %w", value, err))
	}
	if err := sink.WriteOne(&evdev.InputEvent{Time: tv, Type: evdev.EV_SYN, Code: evdev.SYN_REPORT, Value: 0}); err != nil {
		errs = append(errs, fmt.Errorf("write SYN_REPORT: %w", err))
	}
	return errs
}
