package server

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/edgewake/trace2wake/utils"
)

// wsConn serializes writes; gorilla connections allow one concurrent writer.
type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsConn) send(resp JSONRPCResponse) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(resp)
}

func newUpgrader(enableCORS bool) *websocket.Upgrader {
	checkOrigin := isSameOrigin
	if enableCORS {
		checkOrigin = func(*http.Request) bool { return true }
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}
}

// handleWebSocket answers one JSON-RPC request per text message until the
// client disconnects. Requests on one connection are handled in order.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := newUpgrader(s.enableCORS).Upgrade(w, r, nil)
	if err != nil {
		utils.Warn("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(MaxRequestBytes)

	c := &wsConn{conn: conn}
	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			utils.Verbose("WebSocket connection closed: %v", err)
			return
		}

		resp := s.handleWSMessage(messageType, message)
		if err := c.send(resp); err != nil {
			utils.Verbose("WebSocket write failed: %v", err)
			return
		}
	}
}

func (s *Server) handleWSMessage(messageType int, message []byte) JSONRPCResponse {
	if messageType != websocket.TextMessage {
		return errorResponse(nil, ErrCodeInvalidRequest, errTitleInvalidReq, "only text messages accepted for requests")
	}

	req, rejected := decodeRequest(message)
	if rejected != nil {
		return *rejected
	}
	return s.respond("ws", req)
}

// isSameOrigin accepts requests without an Origin header, which is how
// non-browser clients connect.
func isSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return originURL.Host == r.Host
}
