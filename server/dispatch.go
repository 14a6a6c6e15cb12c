package server

import (
	"encoding/json"
	"errors"
	"fmt"
)

// HandlerFunc is the signature for JSON-RPC method handlers
type HandlerFunc func(params json.RawMessage) (interface{}, error)

// paramsError marks a handler failure caused by the caller's params.
type paramsError struct {
	err error
}

func (e *paramsError) Error() string { return e.err.Error() }
func (e *paramsError) Unwrap() error { return e.err }

func invalidParams(format string, args ...interface{}) error {
	return &paramsError{err: fmt.Errorf(format, args...)}
}

// ErrMethodNotFound is returned by Execute for unknown methods.
var ErrMethodNotFound = errors.New("method not found")

func errorCode(err error) (int, string) {
	var pe *paramsError
	switch {
	case errors.As(err, &pe):
		return ErrCodeInvalidParams, errTitleInvalidParam
	case errors.Is(err, ErrMethodNotFound):
		return ErrCodeMethodNotFound, errTitleNotFound
	}
	return ErrCodeServerError, errTitleServerError
}

func (s *Server) registry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"mode.get":        s.handleModeGet,
		"mode.set":        s.handleModeSet,
		"screen.get":      s.handleScreenGet,
		"screen.set":      s.handleScreenSet,
		"session.reset":   s.handleSessionReset,
		"version":         s.handleVersion,
		"stats":           s.handleStats,
		"power.history":   s.handlePowerHistory,
		"server.shutdown": s.handleShutdown,
	}
}

// Methods lists the registered method names.
func (s *Server) Methods() []string {
	names := make([]string, 0, len(s.methods))
	for name := range s.methods {
		names = append(names, name)
	}
	return names
}

// Execute dispatches a method call using the registry. It is shared by the
// HTTP and WebSocket transports.
func (s *Server) Execute(method string, params json.RawMessage) (interface{}, error) {
	handler, exists := s.methods[method]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, method)
	}

	return handler(params)
}
