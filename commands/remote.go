package commands

import (
	"fmt"

	"github.com/edgewake/trace2wake/daemon"
	"github.com/edgewake/trace2wake/gesture"
	"github.com/edgewake/trace2wake/server"
)

func remoteVersion(addr string) (string, error) {
	var result server.VersionResult
	if err := daemon.Call(addr, "version", nil, &result); err != nil {
		return "", err
	}
	return result.Version, nil
}

// call runs one RPC against the daemon and wraps the outcome.
func call(addr, method string, params interface{}, result interface{}) *CommandResponse {
	if err := daemon.Call(addr, method, params, result); err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(result)
}

func ModeGetCommand(addr string) *CommandResponse {
	return call(addr, "mode.get", nil, &server.ModeResult{})
}

// ModeSetCommand accepts only "0", "1" or "2".
func ModeSetCommand(addr, value string) *CommandResponse {
	mode, ok := gesture.ParseMode(value)
	if !ok {
		return NewErrorResponse(fmt.Errorf("invalid mode %q, expected 0, 1 or 2", value))
	}
	return call(addr, "mode.set", server.ModeSetParams{Mode: intPtr(int(mode))}, &server.ModeResult{})
}

func ScreenGetCommand(addr string) *CommandResponse {
	return call(addr, "screen.get", nil, &server.ScreenResult{})
}

func ScreenSetCommand(addr string, suspended bool) *CommandResponse {
	return call(addr, "screen.set", server.ScreenSetParams{Suspended: &suspended}, &server.ScreenResult{})
}

func ResetCommand(addr string) *CommandResponse {
	if err := daemon.Call(addr, "session.reset", nil, nil); err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(map[string]string{"message": "Session reset"})
}

func StatsCommand(addr string) *CommandResponse {
	return call(addr, "stats", nil, &server.Stats{})
}

func HistoryCommand(addr string) *CommandResponse {
	return call(addr, "power.history", nil, &server.HistoryResult{})
}

func intPtr(v int) *int {
	return &v
}
