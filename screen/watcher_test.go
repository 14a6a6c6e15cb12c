package screen

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

type recordingSetter struct {
	values []bool
}

func (r *recordingSetter) SetSuspended(suspended bool) {
	r.values = append(r.values, suspended)
}

func TestHandleSignal(t *testing.T) {
	target := &recordingSetter{}

	assert.True(t, HandleSignal(&dbus.Signal{
		Name: "org.freedesktop.ScreenSaver.ActiveChanged",
		Body: []interface{}{true},
	}, target))
	assert.True(t, HandleSignal(&dbus.Signal{
		Name: "org.freedesktop.ScreenSaver.ActiveChanged",
		Body: []interface{}{false},
	}, target))

	assert.Equal(t, []bool{true, false}, target.values)
}

func TestHandleSignal_Ignored(t *testing.T) {
	tests := []struct {
		name string
		sig  *dbus.Signal
	}{
		{"nil", nil},
		{"other member", &dbus.Signal{Name: "org.freedesktop.ScreenSaver.WakeUpScreen", Body: []interface{}{true}}},
		{"no body", &dbus.Signal{Name: "org.freedesktop.ScreenSaver.ActiveChanged"}},
		{"wrong type", &dbus.Signal{Name: "org.freedesktop.ScreenSaver.ActiveChanged", Body: []interface{}{"yes"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := &recordingSetter{}
			assert.False(t, HandleSignal(tt.sig, target))
			assert.Empty(t, target.values)
		})
	}
}
