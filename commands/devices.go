package commands

import (
	"github.com/edgewake/trace2wake/input"
)

type DevicesResponse struct {
	Devices []input.Device `json:"devices"`
}

// DevicesCommand lists input devices, optionally only the touch candidates.
func DevicesCommand(touchOnly bool) *CommandResponse {
	list := input.ListDevices
	if touchOnly {
		list = input.FindTouchscreens
	}

	devices, err := list()
	if err != nil {
		return NewErrorResponse(err)
	}
	if devices == nil {
		devices = []input.Device{}
	}
	return NewSuccessResponse(DevicesResponse{Devices: devices})
}
