package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/edgewake/trace2wake/utils"
)

const (
	// Parse error: Invalid JSON was received by the server
	ErrCodeParseError = -32700

	// Invalid Request: The JSON sent is not a valid Request object
	ErrCodeInvalidRequest = -32600

	// Method not found: The method does not exist / is not available
	ErrCodeMethodNotFound = -32601

	// Server error: Internal JSON-RPC error
	ErrCodeServerError = -32000

	// Invalid params: Invalid method parameters
	ErrCodeInvalidParams = -32602

	// Internal error: Internal JSON-RPC error
	ErrCodeInternalError = -32603
)

// Server timeouts
const (
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 10 * time.Second
	IdleTimeout     = 120 * time.Second
	ShutdownTimeout = 5 * time.Second
)

const (
	errTitleParseError   = "Parse error"
	errTitleInvalidReq   = "Invalid Request"
	errTitleNotFound     = "Method not found"
	errTitleInvalidParam = "Invalid params"
	errTitleServerError  = "Server error"

	errMsgParseError     = "expecting jsonrpc payload"
	errMsgInvalidJSONRPC = "'jsonrpc' must be '2.0'"
	errMsgIDRequired     = "'id' field is required"
	errMsgMethodRequired = "'method' is required"
)

var okResponse = map[string]interface{}{"status": "ok"}

type JSONRPCRequest struct {
	// these fields are all omitempty, so we can report back to client if they are missing
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Server exposes a Controller over JSON-RPC on /rpc and /ws.
type Server struct {
	ctrl       Controller
	enableCORS bool
	methods    map[string]HandlerFunc

	shutdownOnce sync.Once
	shutdown     chan struct{}
}

func New(ctrl Controller, enableCORS bool) *Server {
	s := &Server{
		ctrl:       ctrl,
		enableCORS: enableCORS,
		shutdown:   make(chan struct{}),
	}
	s.methods = s.registry()
	return s
}

// ShutdownRequested is closed once a client calls server.shutdown.
func (s *Server) ShutdownRequested() <-chan struct{} {
	return s.shutdown
}

func (s *Server) requestShutdown() {
	s.shutdownOnce.Do(func() {
		utils.Info("Shutdown requested over RPC")
		close(s.shutdown)
	})
}

// corsMiddleware handles CORS preflight requests and adds CORS headers to responses.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", sendBanner)
	mux.HandleFunc("/rpc", s.handleJSONRPC)
	mux.HandleFunc("/ws", s.handleWebSocket)

	if s.enableCORS {
		return corsMiddleware(mux)
	}
	return mux
}

// NormalizeAddr turns a bare port into ":port".
func NormalizeAddr(addr string) (string, error) {
	// if host is missing, default to localhost
	if !strings.Contains(addr, ":") {
		port, err := strconv.Atoi(addr)
		if err != nil {
			return "", fmt.Errorf("invalid port: %v", err)
		}

		addr = fmt.Sprintf(":%d", port)
	}
	return addr, nil
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	addr, err := NormalizeAddr(addr)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.ServeListener(ctx, listener)
}

// ServeListener is Serve on an already bound listener.
func (s *Server) ServeListener(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Info("Starting server on http://%s...", listener.Addr())
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	utils.Info("Server stopped")
	return nil
}

// MaxRequestBytes bounds one request body or websocket message.
const MaxRequestBytes = 1 << 20

// rpcError is the JSON-RPC error object.
type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func errorResponse(id interface{}, code int, message string, data interface{}) JSONRPCResponse {
	return JSONRPCResponse{
		JSONRPC: "2.0",
		Error:   &rpcError{Code: code, Message: message, Data: data},
		ID:      id,
	}
}

// decodeRequest parses one request. A non-nil response means the request
// was rejected and the response should be sent as is.
func decodeRequest(data []byte) (JSONRPCRequest, *JSONRPCResponse) {
	var req JSONRPCRequest
	reject := func(id interface{}, code int, title, msg string) (JSONRPCRequest, *JSONRPCResponse) {
		resp := errorResponse(id, code, title, msg)
		return req, &resp
	}

	if err := json.Unmarshal(data, &req); err != nil {
		return reject(nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
	}
	switch {
	case req.JSONRPC != "2.0":
		return reject(req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgInvalidJSONRPC)
	case req.ID == nil:
		return reject(nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgIDRequired)
	case req.Method == "":
		return reject(req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgMethodRequired)
	}
	return req, nil
}

// respond runs a decoded request. transport only labels the log line.
func (s *Server) respond(transport string, req JSONRPCRequest) JSONRPCResponse {
	utils.WithField("transport", transport).Debugf("Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	result, err := s.Execute(req.Method, req.Params)
	if err != nil {
		code, title := errorCode(err)
		utils.Warn("Error executing method %s: %v", req.Method, err)
		return errorResponse(req.ID, code, title, err.Error())
	}
	return JSONRPCResponse{JSONRPC: "2.0", Result: result, ID: req.ID}
}

func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	if err != nil {
		writeJSON(w, errorResponse(nil, ErrCodeParseError, errTitleParseError, errMsgParseError))
		return
	}

	req, rejected := decodeRequest(body)
	if rejected != nil {
		writeJSON(w, *rejected)
		return
	}
	writeJSON(w, s.respond("http", req))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func sendBanner(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, okResponse)
}
