package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgewake/trace2wake/gesture"
	"github.com/edgewake/trace2wake/power"
)

type fakeController struct {
	mu        sync.Mutex
	mode      gesture.Mode
	suspended bool
	resets    int
	presses   []power.Press
}

func newFakeController() *fakeController {
	return &fakeController{mode: gesture.ModeDefault}
}

func (f *fakeController) Mode() gesture.Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

func (f *fakeController) SetMode(m gesture.Mode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = m
	return nil
}

func (f *fakeController) Suspended() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suspended
}

func (f *fakeController) SetSuspended(s bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suspended = s
}

func (f *fakeController) ResetSession() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
}

func (f *fakeController) Stats() Stats {
	return Stats{
		State:     gesture.StateIdle,
		Mode:      NewModeResult(f.Mode()),
		Suspended: f.Suspended(),
		Engine:    gesture.Stats{Evaluated: 3, Fires: 1},
	}
}

func (f *fakeController) PressHistory() []power.Press {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presses
}

func (f *fakeController) Version() string { return "2.0" }

func postRPC(t *testing.T, url string, body string) JSONRPCResponse {
	t.Helper()
	resp, err := http.Post(url+"/rpc", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out JSONRPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func call(t *testing.T, url, method string, params interface{}) JSONRPCResponse {
	t.Helper()
	req := map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		req["params"] = params
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return postRPC(t, url, string(data))
}

func errorOf(t *testing.T, resp JSONRPCResponse) map[string]interface{} {
	t.Helper()
	require.NotNil(t, resp.Error, "expected an error response")
	errMap, ok := resp.Error.(map[string]interface{})
	require.True(t, ok)
	return errMap
}

func resultOf(t *testing.T, resp JSONRPCResponse) map[string]interface{} {
	t.Helper()
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok, "result should be an object, got %T", resp.Result)
	return result
}

func setupHTTPServer(t *testing.T, ctrl Controller, enableCORS bool) (*Server, *httptest.Server) {
	t.Helper()
	s := New(ctrl, enableCORS)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func TestBanner(t *testing.T) {
	_, ts := setupHTTPServer(t, newFakeController(), false)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestRPC_RejectsGet(t *testing.T) {
	_, ts := setupHTTPServer(t, newFakeController(), false)

	resp, err := http.Get(ts.URL + "/rpc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRPC_RequestValidation(t *testing.T) {
	_, ts := setupHTTPServer(t, newFakeController(), false)

	tests := []struct {
		name string
		body string
		code float64
		data string
	}{
		{"malformed json", `{not json`, ErrCodeParseError, errMsgParseError},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"version"}`, ErrCodeInvalidRequest, errMsgInvalidJSONRPC},
		{"missing id", `{"jsonrpc":"2.0","method":"version"}`, ErrCodeInvalidRequest, errMsgIDRequired},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, ErrCodeInvalidRequest, errMsgMethodRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errMap := errorOf(t, postRPC(t, ts.URL, tt.body))
			assert.Equal(t, tt.code, errMap["code"])
			assert.Equal(t, tt.data, errMap["data"])
		})
	}
}

func TestRPC_OversizedBody(t *testing.T) {
	s := New(newFakeController(), false)

	body := `{"jsonrpc":"2.0","id":1,"method":"version","params":"` + strings.Repeat("x", MaxRequestBytes) + `"}`
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(body)))

	var out JSONRPCResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	errMap := errorOf(t, out)
	assert.Equal(t, float64(ErrCodeParseError), errMap["code"])
}

func TestDecodeRequest(t *testing.T) {
	req, rejected := decodeRequest([]byte(`{"jsonrpc":"2.0","id":"a","method":"mode.get"}`))
	require.Nil(t, rejected)
	assert.Equal(t, "mode.get", req.Method)
	assert.Equal(t, "a", req.ID)

	_, rejected = decodeRequest([]byte(`{"jsonrpc":"1.0","id":"a","method":"mode.get"}`))
	require.NotNil(t, rejected)
	assert.Equal(t, "a", rejected.ID, "the id is echoed when it could be read")
	rpcErr, ok := rejected.Error.(*rpcError)
	require.True(t, ok)
	assert.Equal(t, ErrCodeInvalidRequest, rpcErr.Code)
	assert.Equal(t, errMsgInvalidJSONRPC, rpcErr.Data)
}

func TestRespond_SameResultOnBothTransports(t *testing.T) {
	s := New(newFakeController(), false)
	req := JSONRPCRequest{JSONRPC: "2.0", Method: "mode.get", ID: 1}

	assert.Equal(t, s.respond("http", req), s.respond("ws", req))
	assert.Nil(t, s.respond("ws", req).Error)
}

func TestRPC_MethodNotFound(t *testing.T) {
	_, ts := setupHTTPServer(t, newFakeController(), false)

	resp := call(t, ts.URL, "io_tap", nil)
	errMap := errorOf(t, resp)
	assert.Equal(t, float64(ErrCodeMethodNotFound), errMap["code"])
	assert.Equal(t, errTitleNotFound, errMap["message"])
	assert.Equal(t, float64(1), resp.ID)
}

func TestRPC_Mode(t *testing.T) {
	ctrl := newFakeController()
	_, ts := setupHTTPServer(t, ctrl, false)

	result := resultOf(t, call(t, ts.URL, "mode.get", nil))
	assert.Equal(t, float64(1), result["mode"])
	assert.Equal(t, "default", result["name"])

	result = resultOf(t, call(t, ts.URL, "mode.set", map[string]interface{}{"mode": 2}))
	assert.Equal(t, float64(2), result["mode"])
	assert.Equal(t, "multitouch", result["name"])
	assert.Equal(t, gesture.ModeMultiTouchArm, ctrl.Mode())

	result = resultOf(t, call(t, ts.URL, "mode.set", map[string]interface{}{"mode": 0}))
	assert.Equal(t, float64(0), result["mode"])
	assert.Equal(t, gesture.ModeDisabled, ctrl.Mode())
}

func TestRPC_ModeSetRejectsInvalid(t *testing.T) {
	ctrl := newFakeController()
	_, ts := setupHTTPServer(t, ctrl, false)

	for _, params := range []interface{}{
		map[string]interface{}{"mode": 3},
		map[string]interface{}{"mode": -1},
		map[string]interface{}{"mode": "1"},
		map[string]interface{}{"mode": 1.5},
		map[string]interface{}{},
		map[string]interface{}{"mode": 1, "extra": true},
	} {
		errMap := errorOf(t, call(t, ts.URL, "mode.set", params))
		assert.Equal(t, float64(ErrCodeInvalidParams), errMap["code"], "params %v", params)
	}

	assert.Equal(t, gesture.ModeDefault, ctrl.Mode(), "rejected values leave the mode unchanged")
}

func TestRPC_Screen(t *testing.T) {
	ctrl := newFakeController()
	_, ts := setupHTTPServer(t, ctrl, false)

	result := resultOf(t, call(t, ts.URL, "screen.get", nil))
	assert.Equal(t, false, result["suspended"])

	result = resultOf(t, call(t, ts.URL, "screen.set", map[string]interface{}{"suspended": true}))
	assert.Equal(t, true, result["suspended"])
	assert.True(t, ctrl.Suspended())

	errMap := errorOf(t, call(t, ts.URL, "screen.set", map[string]interface{}{}))
	assert.Equal(t, float64(ErrCodeInvalidParams), errMap["code"])
}

func TestRPC_SessionReset(t *testing.T) {
	ctrl := newFakeController()
	_, ts := setupHTTPServer(t, ctrl, false)

	result := resultOf(t, call(t, ts.URL, "session.reset", nil))
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, 1, ctrl.resets)
}

func TestRPC_Version(t *testing.T) {
	_, ts := setupHTTPServer(t, newFakeController(), false)

	result := resultOf(t, call(t, ts.URL, "version", nil))
	assert.Equal(t, "2.0", result["version"])
}

func TestRPC_Stats(t *testing.T) {
	_, ts := setupHTTPServer(t, newFakeController(), false)

	result := resultOf(t, call(t, ts.URL, "stats", nil))
	assert.Equal(t, "idle", result["state"])
	engine := result["engine"].(map[string]interface{})
	assert.Equal(t, float64(3), engine["evaluated"])
	assert.Equal(t, float64(1), engine["fires"])
}

func TestRPC_PowerHistory(t *testing.T) {
	ctrl := newFakeController()
	_, ts := setupHTTPServer(t, ctrl, false)

	result := resultOf(t, call(t, ts.URL, "power.history", nil))
	assert.Equal(t, []interface{}{}, result["presses"])

	ctrl.presses = []power.Press{{ID: "p1", Duration: 120 * time.Millisecond}}
	result = resultOf(t, call(t, ts.URL, "power.history", nil))
	presses := result["presses"].([]interface{})
	require.Len(t, presses, 1)
	assert.Equal(t, "p1", presses[0].(map[string]interface{})["id"])
	assert.Equal(t, float64(120), presses[0].(map[string]interface{})["durationMs"])
}

func TestRPC_Shutdown(t *testing.T) {
	s, ts := setupHTTPServer(t, newFakeController(), false)

	result := resultOf(t, call(t, ts.URL, "server.shutdown", nil))
	assert.Equal(t, "ok", result["status"])

	select {
	case <-s.ShutdownRequested():
	case <-time.After(time.Second):
		t.Fatal("shutdown was not requested")
	}

	// a second call must not panic on the closed channel
	resultOf(t, call(t, ts.URL, "server.shutdown", nil))
}

func TestCORS(t *testing.T) {
	_, ts := setupHTTPServer(t, newFakeController(), true)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/rpc", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMethods(t *testing.T) {
	names := New(newFakeController(), false).Methods()
	sort.Strings(names)
	assert.Equal(t, []string{
		"mode.get", "mode.set", "power.history", "screen.get", "screen.set",
		"server.shutdown", "session.reset", "stats", "version",
	}, names)
}

func TestNormalizeAddr(t *testing.T) {
	addr, err := NormalizeAddr("12010")
	require.NoError(t, err)
	assert.Equal(t, ":12010", addr)

	addr, err = NormalizeAddr("localhost:12010")
	require.NoError(t, err)
	assert.Equal(t, "localhost:12010", addr)

	_, err = NormalizeAddr("localhost")
	assert.Error(t, err)
}

func TestServeListener_StopsOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New(newFakeController(), false)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeListener(ctx, listener) }()

	url := "http://" + listener.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	result := resultOf(t, call(t, url, "version", nil))
	assert.Equal(t, "2.0", result["version"])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * ShutdownTimeout):
		t.Fatal("server did not stop")
	}
}
