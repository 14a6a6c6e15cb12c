package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		ok       bool
	}{
		{"0", ModeDisabled, true},
		{"1", ModeDefault, true},
		{"2", ModeMultiTouchArm, true},
		{"3", DefaultMode, false},
		{"", DefaultMode, false},
		{" 1", DefaultMode, false},
		{"on", DefaultMode, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, ok := ParseMode(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestModeFromInt(t *testing.T) {
	for _, v := range []int{0, 1, 2} {
		m, err := ModeFromInt(v)
		assert.NoError(t, err)
		assert.Equal(t, Mode(v), m)
	}

	_, err := ModeFromInt(-1)
	assert.Error(t, err)
	_, err = ModeFromInt(3)
	assert.Error(t, err)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "disabled", ModeDisabled.String())
	assert.Equal(t, "default", ModeDefault.String())
	assert.Equal(t, "multitouch", ModeMultiTouchArm.String())
	assert.Equal(t, "mode(9)", Mode(9).String())
}
