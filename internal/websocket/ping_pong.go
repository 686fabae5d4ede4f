package websocket

// JSONWriter is the part of a WebSocket connection that sends JSON.
type JSONWriter interface {
	WriteJSON(v interface{}) error
}

// PingHandler answers ping messages for WebSocket connections.
type PingHandler struct {
	conn JSONWriter
}

// NewPingHandler creates a new PingHandler.
func NewPingHandler(conn JSONWriter) *PingHandler {
	return &PingHandler{
		conn: conn,
	}
}

// Handle sends a pong and returns true if msg is a ping.
func (h *PingHandler) Handle(msg Inbound) bool {
	if msg.Type != TypePing {
		return false
	}

	_ = h.conn.WriteJSON(map[string]interface{}{
		"type": TypePong,
	})
	return true
}
