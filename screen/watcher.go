// Package screen follows the display power state over D-Bus.
package screen

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/edgewake/trace2wake/utils"
)

const (
	screenSaverName      = "org.freedesktop.ScreenSaver"
	screenSaverPath      = dbus.ObjectPath("/org/freedesktop/ScreenSaver")
	screenSaverInterface = "org.freedesktop.ScreenSaver"
	activeChanged        = "ActiveChanged"
)

// Setter receives the suspended flag. *gesture.Engine satisfies it.
type Setter interface {
	SetSuspended(suspended bool)
}

// Watcher treats an active screensaver as a suspended screen.
type Watcher struct {
	conn   *dbus.Conn
	target Setter
}

// NewWatcher connects to the session bus.
func NewWatcher(target Setter) (*Watcher, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Watcher{conn: conn, target: target}, nil
}

// Run seeds the current state and then follows ActiveChanged until ctx ends.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.conn.Close()

	err := w.conn.AddMatchSignal(
		dbus.WithMatchInterface(screenSaverInterface),
		dbus.WithMatchMember(activeChanged),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s.%s: %w", screenSaverInterface, activeChanged, err)
	}

	var active bool
	obj := w.conn.Object(screenSaverName, screenSaverPath)
	if err := obj.CallWithContext(ctx, screenSaverInterface+".GetActive", 0).Store(&active); err != nil {
		utils.Warn("Could not query screensaver state: %v", err)
	} else {
		utils.Verbose("Screensaver active=%v at startup", active)
		w.target.SetSuspended(active)
	}

	signals := make(chan *dbus.Signal, 8)
	w.conn.Signal(signals)
	defer w.conn.RemoveSignal(signals)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-signals:
			if !ok {
				return fmt.Errorf("session bus connection closed")
			}
			HandleSignal(sig, w.target)
		}
	}
}

// HandleSignal applies one ActiveChanged signal and reports whether it was
// recognised.
func HandleSignal(sig *dbus.Signal, target Setter) bool {
	if sig == nil || sig.Name != screenSaverInterface+"."+activeChanged || len(sig.Body) != 1 {
		return false
	}

	active, ok := sig.Body[0].(bool)
	if !ok {
		return false
	}

	utils.Verbose("Screensaver active=%v", active)
	target.SetSuspended(active)
	return true
}
