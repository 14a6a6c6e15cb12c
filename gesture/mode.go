package gesture

import (
	"fmt"
	"strconv"
)

// Mode selects how wake gestures are recognized.
type Mode int32

const (
	// ModeDisabled ignores all touch input.
	ModeDisabled Mode = 0
	// ModeDefault requires the swipe to pass the central checkpoint band.
	ModeDefault Mode = 1
	// ModeMultiTouchArm fires as soon as the far threshold is reached.
	ModeMultiTouchArm Mode = 2
)

// DefaultMode is the compiled-in mode used when nothing valid is configured.
const DefaultMode = ModeDefault

func (m Mode) String() string {
	switch m {
	case ModeDisabled:
		return "disabled"
	case ModeDefault:
		return "default"
	case ModeMultiTouchArm:
		return "multitouch"
	default:
		return fmt.Sprintf("mode(%d)", int32(m))
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m >= ModeDisabled && m <= ModeMultiTouchArm
}

// ModeFromInt converts a control value into a Mode.
func ModeFromInt(v int) (Mode, error) {
	m := Mode(v)
	if !m.Valid() {
		return ModeDisabled, fmt.Errorf("invalid mode %d, expected 0, 1 or 2", v)
	}
	return m, nil
}

// ParseMode interprets a startup argument. Only "0", "1" and "2" are
// accepted; ok is false for anything else and the caller keeps its default.
func ParseMode(s string) (mode Mode, ok bool) {
	switch s {
	case "0", "1", "2":
		v, _ := strconv.Atoi(s)
		return Mode(v), true
	default:
		return DefaultMode, false
	}
}
