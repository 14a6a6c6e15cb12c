package power

import (
	"fmt"
	"slices"
	"syscall"
	"time"

	evdev "github.com/holoplot/go-evdev"
)

// DefaultUinputName is the name of the virtual power-key device.
const DefaultUinputName = "trace2wake-pwrkey"

const busVirtual = 0x06

// NewUinputSink creates a virtual input device that can only emit KEY_POWER.
// The caller closes it.
func NewUinputSink(name string) (*evdev.InputDevice, error) {
	if name == "" {
		name = DefaultUinputName
	}

	dev, err := evdev.CreateDevice(
		name,
		evdev.InputID{
			BusType: busVirtual,
			Vendor:  0x7432,
			Product: 0x0077,
			Version: 2,
		},
		map[evdev.EvType][]evdev.EvCode{
			evdev.EV_KEY: {evdev.KEY_POWER},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create uinput device %q: %w", name, err)
	}
	return dev, nil
}

// OpenDeviceSink opens an existing event node and checks that it reports
// KEY_POWER, so injected presses reach whoever listens for the real button.
func OpenDeviceSink(path string) (*evdev.InputDevice, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open power device %s: %w", path, err)
	}

	if !slices.Contains(dev.CapableEvents(evdev.EV_KEY), evdev.KEY_POWER) {
		_ = dev.Close()
		return nil, fmt.Errorf("device %s cannot emit KEY_POWER", path)
	}
	return dev, nil
}

func evdevTime(t time.Time) syscall.Timeval {
	return syscall.NsecToTimeval(t.UnixNano())
}
