package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/kyiku/planet-jigsaw-back/internal/interaction"
	"github.com/kyiku/planet-jigsaw-back/internal/model"
	"github.com/kyiku/planet-jigsaw-back/internal/response"
	"github.com/kyiku/planet-jigsaw-back/internal/session"
	wsmsg "github.com/kyiku/planet-jigsaw-back/internal/websocket"
)

// ClientConn is a WebSocket connection the handler reads pointer events from.
type ClientConn interface {
	session.WebSocketConn
	ReadMessage() (messageType int, p []byte, err error)
}

// WebSocketHandler streams pointer events for a game.
type WebSocketHandler struct {
	store    SessionStoreInterface
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler. allowOrigin decides
// which browser origins may open a connection.
func NewWebSocketHandler(store SessionStoreInterface, allowOrigin func(origin string) bool) *WebSocketHandler {
	h := &WebSocketHandler{
		store:  store,
		logger: slog.Default(),
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// Non-browser clients send no Origin
			return origin == "" || (allowOrigin != nil && allowOrigin(origin))
		},
	}
	return h
}

// SetLogger sets the logger.
func (h *WebSocketHandler) SetLogger(l *slog.Logger) {
	if l != nil {
		h.logger = l
	}
}

// Connect validates the session, upgrades the connection and serves it until
// the client goes away.
func (h *WebSocketHandler) Connect(c echo.Context) error {
	game, ok := lookupGame(c, h.store)
	if !ok {
		return invalidSession(c)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the error response
		h.logger.Warn("websocket upgrade failed", "error", err)
		return nil
	}

	h.Serve(game, conn)
	return nil
}

// Serve attaches conn to game and handles its messages until reading fails.
// A previous connection of the same game is closed.
func (h *WebSocketHandler) Serve(game *session.Game, conn ClientConn) {
	game.Lock()
	if game.Conn != nil {
		_ = game.Conn.Close()
	}
	game.Conn = conn
	_ = game.Send(wsmsg.State(gameState(game)))
	game.Unlock()

	defer h.disconnect(game, conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h.HandleMessage(game, data)
	}
}

// HandleMessage applies one client message to the game and writes replies.
func (h *WebSocketHandler) HandleMessage(game *session.Game, data []byte) {
	game.Lock()
	defer game.Unlock()

	msg, err := wsmsg.Parse(data)
	if err != nil {
		_ = game.Send(wsmsg.Error(response.CodeInvalidRequest, err.Error()))
		return
	}

	if game.Conn != nil && wsmsg.NewPingHandler(game.Conn).Handle(msg) {
		return
	}

	pos := interaction.Pos{X: msg.X, Y: msg.Y}

	switch msg.Type {
	case wsmsg.TypePointerPressed:
		if msg.ID != nil {
			_, err = game.Pointer.PointerPressed(*msg.ID, pos)
		} else {
			_, _, err = game.Pointer.PressAt(pos)
		}
	case wsmsg.TypePointerMoved:
		_, err = game.Pointer.PointerMoved(pos)
	case wsmsg.TypePointerReleased:
		var drop interaction.Drop
		var ok bool
		drop, ok, err = game.Pointer.PointerReleased(pos)
		if ok {
			_ = game.Send(wsmsg.PieceDropped(drop.ID, drop.Result.String()))
		}
	}

	if err != nil {
		h.sendError(game, err)
	}
}

// disconnect releases a drag left open by the client and detaches conn.
func (h *WebSocketHandler) disconnect(game *session.Game, conn ClientConn) {
	game.Lock()
	defer game.Unlock()

	if game.Conn != conn {
		// A newer connection took over
		return
	}

	if _, _, err := game.Pointer.Abandon(); err != nil {
		h.logger.Warn("release on disconnect failed", "game", game.ID, "error", err)
	}
	game.Conn = nil
	_ = conn.Close()
}

func (h *WebSocketHandler) sendError(game *session.Game, err error) {
	code := model.ErrorCode(err)
	if code == model.CodeInternalError {
		h.logger.Error("websocket message failed", "game", game.ID, "error", err)
		_ = game.Send(wsmsg.Error(code, "内部エラーが発生しました"))
		return
	}
	_ = game.Send(wsmsg.Error(code, err.Error()))
}
