package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgewake/trace2wake/input"
	"github.com/edgewake/trace2wake/server"
)

func TestResponses(t *testing.T) {
	ok := NewSuccessResponse("data")
	assert.Equal(t, "ok", ok.Status)
	assert.Equal(t, "data", ok.Data)

	failed := NewErrorResponse(assert.AnError)
	assert.Equal(t, "error", failed.Status)
	assert.Equal(t, assert.AnError.Error(), failed.Error)

	data, err := json.Marshal(failed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","error":"`+assert.AnError.Error()+`"}`, string(data))
}

type recordedCall struct {
	method string
	params string
}

func fakeDaemon(t *testing.T, results map[string]interface{}) (*httptest.Server, func() []recordedCall) {
	t.Helper()
	var mu sync.Mutex
	var calls []recordedCall

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req server.JSONRPCRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		mu.Lock()
		calls = append(calls, recordedCall{method: req.Method, params: string(req.Params)})
		mu.Unlock()

		resp := server.JSONRPCResponse{JSONRPC: "2.0", ID: req.ID}
		if result, ok := results[req.Method]; ok {
			resp.Result = result
		} else {
			resp.Error = map[string]interface{}{"code": server.ErrCodeMethodNotFound, "message": "Method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(ts.Close)

	return ts, func() []recordedCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedCall(nil), calls...)
	}
}

func TestModeSetCommand(t *testing.T) {
	ts, calls := fakeDaemon(t, map[string]interface{}{
		"mode.set": server.ModeResult{Mode: 2, Name: "multitouch"},
	})

	resp := ModeSetCommand(ts.URL, "2")
	require.Equal(t, "ok", resp.Status, resp.Error)
	assert.Equal(t, &server.ModeResult{Mode: 2, Name: "multitouch"}, resp.Data)

	recorded := calls()
	require.Len(t, recorded, 1)
	assert.Equal(t, "mode.set", recorded[0].method)
	assert.JSONEq(t, `{"mode":2}`, recorded[0].params)
}

func TestModeSetCommand_RejectsLocally(t *testing.T) {
	ts, calls := fakeDaemon(t, nil)

	for _, v := range []string{"3", "on", "", "01"} {
		resp := ModeSetCommand(ts.URL, v)
		assert.Equal(t, "error", resp.Status, "value %q", v)
	}
	assert.Empty(t, calls(), "invalid values never reach the daemon")
}

func TestModeGetCommand(t *testing.T) {
	ts, _ := fakeDaemon(t, map[string]interface{}{
		"mode.get": server.ModeResult{Mode: 1, Name: "default"},
	})

	resp := ModeGetCommand(ts.URL)
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, &server.ModeResult{Mode: 1, Name: "default"}, resp.Data)
}

func TestScreenSetCommand(t *testing.T) {
	ts, calls := fakeDaemon(t, map[string]interface{}{
		"screen.set": server.ScreenResult{Suspended: true},
	})

	resp := ScreenSetCommand(ts.URL, true)
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, &server.ScreenResult{Suspended: true}, resp.Data)
	assert.JSONEq(t, `{"suspended":true}`, calls()[0].params)
}

func TestResetCommand(t *testing.T) {
	ts, calls := fakeDaemon(t, map[string]interface{}{
		"session.reset": map[string]string{"status": "ok"},
	})

	resp := ResetCommand(ts.URL)
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, "session.reset", calls()[0].method)
}

func TestRemoteCommand_Error(t *testing.T) {
	ts, _ := fakeDaemon(t, nil)

	resp := StatsCommand(ts.URL)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "Method not found")
}

func TestVersionCommand(t *testing.T) {
	resp := VersionCommand("")
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, VersionResponse{Version: "2.0"}, resp.Data)

	ts, _ := fakeDaemon(t, map[string]interface{}{
		"version": server.VersionResult{Version: "2.0"},
	})
	resp = VersionCommand(ts.URL)
	assert.Equal(t, VersionResponse{Version: "2.0", Daemon: "2.0"}, resp.Data)
}

func TestDiagnose(t *testing.T) {
	inUse := false
	problems := diagnose(DoctorInfo{
		UinputWritable:  false,
		InputReadable:   true,
		ListenAddr:      "localhost:12010",
		ListenAvailable: &inUse,
	})
	assert.Len(t, problems, 3)

	assert.Empty(t, diagnose(DoctorInfo{
		UinputWritable: true,
		InputReadable:  true,
		TouchDevices:   []input.Device{{Path: "/dev/input/event1", Name: "mtk-tpd", Touch: true}},
	}))
}

func TestDoctorCommand(t *testing.T) {
	resp := DoctorCommand(DoctorRequest{ListenAddr: "127.0.0.1:0"})
	require.Equal(t, "ok", resp.Status)

	info, ok := resp.Data.(DoctorInfo)
	require.True(t, ok)
	assert.Equal(t, Version, info.Trace2WakeVersion)
	assert.Equal(t, "linux", info.OS)
	require.NotNil(t, info.ListenAvailable)
	assert.True(t, *info.ListenAvailable)
	assert.NotNil(t, info.TouchDevices)
}
