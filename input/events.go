// Package input reads multi-touch events from an evdev node and feeds them to
// the point tracker.
package input

import (
	evdev "github.com/holoplot/go-evdev"

	"github.com/edgewake/trace2wake/gesture"
)

// Sink receives decoded touch updates. *gesture.Tracker satisfies it.
type Sink interface {
	Axis(axis gesture.Axis, value int)
	Reset()
}

// Dispatch forwards one raw event to sink and reports whether it was used.
//
// A slot change, a tracking id of -1 and a BTN_TOUCH release all mean the
// tracked contact is gone.
func Dispatch(ev *evdev.InputEvent, sink Sink) bool {
	switch ev.Type {
	case evdev.EV_ABS:
		switch ev.Code {
		case evdev.ABS_MT_POSITION_X:
			sink.Axis(gesture.AxisX, int(ev.Value))
		case evdev.ABS_MT_POSITION_Y:
			sink.Axis(gesture.AxisY, int(ev.Value))
		case evdev.ABS_MT_SLOT:
			sink.Reset()
		case evdev.ABS_MT_TRACKING_ID:
			if ev.Value != -1 {
				return false
			}
			sink.Reset()
		default:
			return false
		}
		return true

	case evdev.EV_KEY:
		if ev.Code != evdev.BTN_TOUCH || ev.Value != 0 {
			return false
		}
		sink.Reset()
		return true
	}

	return false
}
