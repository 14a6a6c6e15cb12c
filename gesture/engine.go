// Package gesture recognizes the corner-to-corner wake swipe drawn along the
// bottom arc of a touchscreen while the display is off.
package gesture

import (
	"fmt"
	"sync/atomic"

	"github.com/edgewake/trace2wake/utils"
)

// HotZone identifies the bottom corner a session started in.
type HotZone int

const (
	HotZoneNone HotZone = iota
	HotZoneLeft
	HotZoneRight
)

func (z HotZone) String() string {
	switch z {
	case HotZoneLeft:
		return "left"
	case HotZoneRight:
		return "right"
	default:
		return "none"
	}
}

func (z HotZone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// State is the externally visible phase of a session.
type State int

const (
	StateIdle State = iota
	StateActiveLeft
	StateActiveRight
	StateFired
)

func (s State) String() string {
	switch s {
	case StateActiveLeft:
		return "active-left"
	case StateActiveRight:
		return "active-right"
	case StateFired:
		return "fired"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Session is the live gesture state between two resets.
type Session struct {
	InitialPoint      *Point  `json:"initialPoint"`
	Armed             bool    `json:"armed"`
	CheckpointCrossed bool    `json:"checkpointCrossed"`
	HotZone           HotZone `json:"hotZone"`
}

func newSession() Session {
	return Session{Armed: true}
}

// State derives the phase from the session fields. A session whose initial
// point fell outside both hot zones reports Idle but stays inert until reset.
func (s Session) State() State {
	switch {
	case s.InitialPoint == nil || s.HotZone == HotZoneNone:
		return StateIdle
	case !s.Armed:
		return StateFired
	case s.HotZone == HotZoneLeft:
		return StateActiveLeft
	default:
		return StateActiveRight
	}
}

// Trigger is invoked once per qualifying swipe. It must not block.
type Trigger interface {
	Trigger() bool
}

// Stats are monotonically increasing engine counters.
type Stats struct {
	Evaluated    uint64 `json:"evaluated"`
	Ignored      uint64 `json:"ignored"`
	Resets       uint64 `json:"resets"`
	Disqualified uint64 `json:"disqualified"`
	Fires        uint64 `json:"fires"`
}

// Engine is the gesture state machine. Reset and Evaluate must be called from
// a single goroutine (the tracker's consumer); mode, suspend state, Snapshot
// and Stats may be used from anywhere.
type Engine struct {
	geom    Geometry
	trigger Trigger

	mode      atomic.Int32
	suspended atomic.Bool

	session  Session
	snapshot atomic.Pointer[Session]

	evaluated    atomic.Uint64
	ignored      atomic.Uint64
	resets       atomic.Uint64
	disqualified atomic.Uint64
	fires        atomic.Uint64
}

// NewEngine creates an engine in the Idle state.
func NewEngine(geom Geometry, trigger Trigger, mode Mode) (*Engine, error) {
	if err := geom.Validate(); err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}
	if trigger == nil {
		return nil, fmt.Errorf("trigger is required")
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid mode %d", int32(mode))
	}

	e := &Engine{
		geom:    geom,
		trigger: trigger,
		session: newSession(),
	}
	e.mode.Store(int32(mode))
	e.publish()
	return e, nil
}

// Geometry returns the constants the engine classifies against.
func (e *Engine) Geometry() Geometry {
	return e.geom
}

func (e *Engine) Mode() Mode {
	return Mode(e.mode.Load())
}

// SetMode changes the mode. In-flight sessions see the new value on their
// next point.
func (e *Engine) SetMode(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("invalid mode %d", int32(m))
	}
	old := Mode(e.mode.Swap(int32(m)))
	if old != m {
		utils.Info("Trace2wake mode changed from %s to %s", old, m)
	}
	return nil
}

func (e *Engine) Suspended() bool {
	return e.suspended.Load()
}

// SetSuspended records the display power state. Gestures are only evaluated
// while suspended.
func (e *Engine) SetSuspended(suspended bool) {
	if e.suspended.Swap(suspended) != suspended {
		utils.Verbose("Screen suspended: %v", suspended)
	}
}

// Reset returns the session to its initial state.
func (e *Engine) Reset() {
	e.resets.Add(1)
	e.reset()
}

func (e *Engine) reset() {
	e.session = newSession()
	e.publish()
}

// Evaluate feeds one completed touch point into the state machine.
func (e *Engine) Evaluate(p Point) {
	mode := e.Mode()
	if mode == ModeDisabled || !e.Suspended() || !e.geom.InRange(p) {
		e.ignored.Add(1)
		return
	}
	e.evaluated.Add(1)

	s := &e.session
	if s.InitialPoint == nil {
		initial := p
		s.InitialPoint = &initial
		switch {
		case e.geom.InLeftHotZone(p):
			s.HotZone = HotZoneLeft
		case e.geom.InRightHotZone(p):
			s.HotZone = HotZoneRight
		}
		utils.Verbose("Session started at (%d,%d), hot zone %s", p.X, p.Y, s.HotZone)
		e.publish()
		return
	}

	if s.HotZone == HotZoneNone {
		return
	}

	if !e.geom.InAnnulus(p) {
		utils.Verbose("Point (%d,%d) left the arc, resetting session", p.X, p.Y)
		e.disqualified.Add(1)
		e.reset()
		return
	}

	if !s.Armed {
		return
	}

	if mode == ModeDefault && e.geom.InCheckpointBand(p) && !s.CheckpointCrossed {
		s.CheckpointCrossed = true
		e.publish()
	}

	var reached bool
	if s.HotZone == HotZoneLeft {
		reached = e.geom.PassesLeftThreshold(p)
	} else {
		reached = e.geom.PassesRightThreshold(p)
	}

	if reached && (mode == ModeMultiTouchArm || s.CheckpointCrossed) {
		s.Armed = false
		e.fires.Add(1)
		e.publish()
		utils.Info("Wake swipe recognized from %s corner at (%d,%d)", s.HotZone, p.X, p.Y)
		e.trigger.Trigger()
	}
}

// Session returns a copy of the live session. Only call it from the
// goroutine that drives Evaluate and Reset.
func (e *Engine) Session() Session {
	return copySession(e.session)
}

// Snapshot returns the session as of the last state change. Safe from any
// goroutine.
func (e *Engine) Snapshot() Session {
	return *e.snapshot.Load()
}

func (e *Engine) Stats() Stats {
	return Stats{
		Evaluated:    e.evaluated.Load(),
		Ignored:      e.ignored.Load(),
		Resets:       e.resets.Load(),
		Disqualified: e.disqualified.Load(),
		Fires:        e.fires.Load(),
	}
}

func (e *Engine) publish() {
	s := copySession(e.session)
	e.snapshot.Store(&s)
}

func copySession(s Session) Session {
	if s.InitialPoint != nil {
		p := *s.InitialPoint
		s.InitialPoint = &p
	}
	return s
}
