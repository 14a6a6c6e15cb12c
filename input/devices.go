package input

import (
	"fmt"
	"sort"
	"strings"

	evdev "github.com/holoplot/go-evdev"

	"github.com/edgewake/trace2wake/utils"
)

// touchNameHints are the device-name fragments that mark a touch panel.
var touchNameHints = []string{"touch", "mtk-tpd"}

// Device describes one /dev/input event node.
type Device struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Touch bool   `json:"touch"`
}

// IsTouchName reports whether a device name looks like a touch panel.
func IsTouchName(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range touchNameHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// ListDevices returns every readable event node, sorted by path.
func ListDevices() ([]Device, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices: %w", err)
	}

	devices := make([]Device, 0, len(paths))
	for _, p := range paths {
		devices = append(devices, Device{
			Path:  p.Path,
			Name:  p.Name,
			Touch: IsTouchName(p.Name),
		})
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Path < devices[j].Path
	})
	return devices, nil
}

// FindTouchscreens returns only the event nodes whose name matches a touch
// hint.
func FindTouchscreens() ([]Device, error) {
	all, err := ListDevices()
	if err != nil {
		return nil, err
	}
	return filterTouch(all), nil
}

func filterTouch(all []Device) []Device {
	var touch []Device
	for _, d := range all {
		if d.Touch {
			touch = append(touch, d)
		}
	}
	return touch
}

// Open opens path, or the first touch panel when path is empty.
func Open(path string) (*evdev.InputDevice, error) {
	if path == "" {
		candidates, err := FindTouchscreens()
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return nil, fmt.Errorf("no touch device found (looked for names containing %s)", strings.Join(touchNameHints, ", "))
		}
		path = candidates[0].Path
		utils.Info("Using touch device %s (%s)", path, candidates[0].Name)
	}

	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open touch device %s: %w", path, err)
	}
	return dev, nil
}

// AbsSource is the subset of *evdev.InputDevice needed for axis ranges.
type AbsSource interface {
	AbsInfos() (map[evdev.EvCode]evdev.AbsInfo, error)
}

// SurfaceSize returns the touch surface extent from the multi-touch position
// axes.
func SurfaceSize(dev AbsSource) (width, height int, err error) {
	infos, err := dev.AbsInfos()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read axis ranges: %w", err)
	}

	x, okX := infos[evdev.ABS_MT_POSITION_X]
	y, okY := infos[evdev.ABS_MT_POSITION_Y]
	if !okX || !okY {
		return 0, 0, fmt.Errorf("device has no multi-touch position axes")
	}

	width = int(x.Maximum-x.Minimum) + 1
	height = int(y.Maximum-y.Minimum) + 1
	if width <= 1 || height <= 1 {
		return 0, 0, fmt.Errorf("invalid axis ranges %dx%d", width, height)
	}
	return width, height, nil
}
