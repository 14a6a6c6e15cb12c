package server

import (
	"bytes"
	"encoding/json"

	"github.com/edgewake/trace2wake/gesture"
	"github.com/edgewake/trace2wake/input"
	"github.com/edgewake/trace2wake/power"
)

// Controller is the running recognizer as seen by RPC clients.
type Controller interface {
	Mode() gesture.Mode
	SetMode(mode gesture.Mode) error
	Suspended() bool
	SetSuspended(suspended bool)
	// ResetSession queues a session reset behind any pending touch points.
	ResetSession()
	Stats() Stats
	PressHistory() []power.Press
	Version() string
}

// Stats is the result of the stats method.
type Stats struct {
	State     gesture.State        `json:"state"`
	Session   gesture.Session      `json:"session"`
	Mode      ModeResult           `json:"mode"`
	Suspended bool                 `json:"suspended"`
	PowerBusy bool                 `json:"powerBusy"`
	Engine    gesture.Stats        `json:"engine"`
	Tracker   gesture.TrackerStats `json:"tracker"`
	Reader    input.ReaderStats    `json:"reader"`
}

type ModeResult struct {
	Mode int    `json:"mode"`
	Name string `json:"name"`
}

func NewModeResult(m gesture.Mode) ModeResult {
	return ModeResult{Mode: int(m), Name: m.String()}
}

type ModeSetParams struct {
	Mode *int `json:"mode"`
}

type ScreenResult struct {
	Suspended bool `json:"suspended"`
}

type ScreenSetParams struct {
	Suspended *bool `json:"suspended"`
}

type VersionResult struct {
	Version string `json:"version"`
}

type HistoryResult struct {
	Presses []power.Press `json:"presses"`
}

// decodeParams unmarshals params strictly. Missing params decode as {}.
func decodeParams(params json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(params)) == 0 {
		params = json.RawMessage(`{}`)
	}
	dec := json.NewDecoder(bytes.NewReader(params))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return invalidParams("invalid parameters: %v", err)
	}
	return nil
}

func (s *Server) handleModeGet(params json.RawMessage) (interface{}, error) {
	return NewModeResult(s.ctrl.Mode()), nil
}

func (s *Server) handleModeSet(params json.RawMessage) (interface{}, error) {
	var p ModeSetParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Mode == nil {
		return nil, invalidParams("'mode' is required")
	}

	mode, err := gesture.ModeFromInt(*p.Mode)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	if err := s.ctrl.SetMode(mode); err != nil {
		return nil, invalidParams("%v", err)
	}
	return NewModeResult(s.ctrl.Mode()), nil
}

func (s *Server) handleScreenGet(params json.RawMessage) (interface{}, error) {
	return ScreenResult{Suspended: s.ctrl.Suspended()}, nil
}

func (s *Server) handleScreenSet(params json.RawMessage) (interface{}, error) {
	var p ScreenSetParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Suspended == nil {
		return nil, invalidParams("'suspended' is required")
	}

	s.ctrl.SetSuspended(*p.Suspended)
	return ScreenResult{Suspended: s.ctrl.Suspended()}, nil
}

func (s *Server) handleSessionReset(params json.RawMessage) (interface{}, error) {
	s.ctrl.ResetSession()
	return okResponse, nil
}

func (s *Server) handleVersion(params json.RawMessage) (interface{}, error) {
	return VersionResult{Version: s.ctrl.Version()}, nil
}

func (s *Server) handleStats(params json.RawMessage) (interface{}, error) {
	return s.ctrl.Stats(), nil
}

func (s *Server) handlePowerHistory(params json.RawMessage) (interface{}, error) {
	presses := s.ctrl.PressHistory()
	if presses == nil {
		presses = []power.Press{}
	}
	return HistoryResult{Presses: presses}, nil
}

// handleShutdown answers first; the listener closes once the response is out.
func (s *Server) handleShutdown(params json.RawMessage) (interface{}, error) {
	s.requestShutdown()
	return okResponse, nil
}
