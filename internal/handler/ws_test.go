package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/planet-jigsaw-back/internal/middleware"
	"github.com/kyiku/planet-jigsaw-back/internal/session"
	"github.com/kyiku/planet-jigsaw-back/internal/testutil"
)

// newWSGame はゲームを開始し、モック接続を付けたゲームを返す
func newWSGame(t *testing.T) (*WebSocketHandler, *session.Game, *testutil.MockWebSocketConn) {
	t.Helper()

	gh, store := newTestGameHandler(testConfig())
	sessionID := startGame(t, gh)
	game, ok := store.Get(sessionID)
	require.True(t, ok)

	mockConn := testutil.NewMockWebSocketConn()
	game.Conn = mockConn

	return NewWebSocketHandler(store, middleware.OriginChecker()), game, mockConn
}

func TestWebSocketHandler_HandleMessage(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		wantType string
		wantCode string
	}{
		{
			name:     "正常系: ping",
			message:  `{"type": "ping"}`,
			wantType: "pong",
		},
		{
			name:     "異常系: 不正なJSON",
			message:  `invalid`,
			wantType: "error",
			wantCode: "INVALID_REQUEST",
		},
		{
			name:     "異常系: 未知のタイプ",
			message:  `{"type": "chat"}`,
			wantType: "error",
			wantCode: "INVALID_REQUEST",
		},
		{
			name:     "異常系: 存在しないピースを押下",
			message:  `{"type": "pointer_pressed", "id": 42, "x": 0, "y": 0}`,
			wantType: "error",
			wantCode: "UNKNOWN_PIECE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, game, mockConn := newWSGame(t)

			h.HandleMessage(game, []byte(tt.message))

			msg := mockConn.GetLastMessageAsMap()
			require.NotNil(t, msg)
			assert.Equal(t, tt.wantType, msg["type"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, msg["code"])
			}
		})
	}
}

func TestWebSocketHandler_Drag(t *testing.T) {
	t.Run("正常系: ドラッグしてホームで離すと確定", func(t *testing.T) {
		h, game, mockConn := newWSGame(t)

		piece, err := game.Round.Piece(4)
		require.NoError(t, err)

		// ピースの左上から (10, 10) を掴む
		h.HandleMessage(game, []byte(fmt.Sprintf(`{"type": "pointer_pressed", "id": 4, "x": %f, "y": %f}`, piece.X+10, piece.Y+10)))
		h.HandleMessage(game, []byte(`{"type": "pointer_moved", "x": 60, "y": 60}`))

		piece, _ = game.Round.Piece(4)
		assert.Equal(t, 50.0, piece.X)
		assert.Equal(t, 50.0, piece.Y)

		// ホーム (100, 100) の上で離す
		h.HandleMessage(game, []byte(`{"type": "pointer_released", "x": 112, "y": 108}`))

		messages := mockConn.GetMessages()
		require.Len(t, messages, 2)
		assert.Contains(t, string(messages[0]), `"piece_committed"`)

		dropped := mockConn.GetLastMessageAsMap()
		assert.Equal(t, "piece_dropped", dropped["type"])
		assert.Equal(t, float64(4), dropped["piece"])
		assert.Equal(t, "committed", dropped["result"])

		piece, _ = game.Round.Piece(4)
		assert.True(t, piece.Placed)
	})

	t.Run("正常系: 座標だけで押下するとその下のピースを掴む", func(t *testing.T) {
		h, game, mockConn := newWSGame(t)

		piece, err := game.Round.Piece(2)
		require.NoError(t, err)
		// 最前面のピースを求める
		id, ok := game.Round.PieceAt(piece.X+1, piece.Y+1)
		require.True(t, ok)

		h.HandleMessage(game, []byte(fmt.Sprintf(`{"type": "pointer_pressed", "x": %f, "y": %f}`, piece.X+1, piece.Y+1)))

		dragged, dragging := game.Pointer.Dragging()
		assert.True(t, dragging)
		assert.Equal(t, id, dragged)
		assert.Empty(t, mockConn.GetMessages())
	})

	t.Run("正常系: 離れた位置で離すとその場に残る", func(t *testing.T) {
		h, game, mockConn := newWSGame(t)

		piece, err := game.Round.Piece(0)
		require.NoError(t, err)

		h.HandleMessage(game, []byte(fmt.Sprintf(`{"type": "pointer_pressed", "id": 0, "x": %f, "y": %f}`, piece.X, piece.Y)))
		h.HandleMessage(game, []byte(`{"type": "pointer_released", "x": 250, "y": 250}`))

		dropped := mockConn.GetLastMessageAsMap()
		assert.Equal(t, "not_committed", dropped["result"])

		piece, _ = game.Round.Piece(0)
		assert.False(t, piece.Placed)
		assert.Equal(t, 250.0, piece.X)
	})

	t.Run("異常系: ドラッグ中に別のピースは掴めない", func(t *testing.T) {
		h, game, mockConn := newWSGame(t)

		p0, _ := game.Round.Piece(0)
		p1, _ := game.Round.Piece(1)
		h.HandleMessage(game, []byte(fmt.Sprintf(`{"type": "pointer_pressed", "id": 0, "x": %f, "y": %f}`, p0.X, p0.Y)))
		h.HandleMessage(game, []byte(fmt.Sprintf(`{"type": "pointer_pressed", "id": 1, "x": %f, "y": %f}`, p1.X, p1.Y)))

		msg := mockConn.GetLastMessageAsMap()
		assert.Equal(t, "error", msg["type"])
		assert.Equal(t, "PIECE_BUSY", msg["code"])
	})

	t.Run("正常系: ドラッグしていない移動と解放は無視", func(t *testing.T) {
		h, game, mockConn := newWSGame(t)

		h.HandleMessage(game, []byte(`{"type": "pointer_moved", "x": 1, "y": 1}`))
		h.HandleMessage(game, []byte(`{"type": "pointer_released", "x": 1, "y": 1}`))

		assert.Empty(t, mockConn.GetMessages())
	})
}

func TestWebSocketHandler_Serve(t *testing.T) {
	h, game, _ := newWSGame(t)
	game.Conn = nil

	mockConn := testutil.NewMockWebSocketConn()
	done := make(chan struct{})
	go func() {
		h.Serve(game, mockConn)
		close(done)
	}()

	// 接続直後に状態が送られる
	msg := testutil.WaitForMessage(mockConn, time.Second)
	require.NotNil(t, msg)
	assert.Equal(t, "state", msg["type"])

	// 掴んだまま切断
	game.Lock()
	piece, err := game.Round.Piece(0)
	game.Unlock()
	require.NoError(t, err)
	mockConn.ReadChan <- []byte(fmt.Sprintf(`{"type": "pointer_pressed", "id": 0, "x": %f, "y": %f}`, piece.X, piece.Y))
	mockConn.ReadChan <- []byte(`{"type": "ping"}`)

	require.NoError(t, testutil.WaitFor(time.Second, 10*time.Millisecond, func() bool {
		return len(mockConn.GetMessages()) == 2
	}))

	_ = mockConn.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after close")
	}

	game.Lock()
	defer game.Unlock()
	// 切断でドラッグが解放され接続が外れる
	_, dragging := game.Pointer.Dragging()
	assert.False(t, dragging)
	assert.Nil(t, game.Conn)
	_, _, ok, err := game.Round.Release()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWebSocketHandler_Serve_ReplacesConnection(t *testing.T) {
	h, game, oldConn := newWSGame(t)

	newConn := testutil.NewMockWebSocketConn()
	done := make(chan struct{})
	go func() {
		h.Serve(game, newConn)
		close(done)
	}()

	require.NotNil(t, testutil.WaitForMessage(newConn, time.Second))
	assert.True(t, oldConn.IsClosed)

	_ = newConn.Close()
	<-done
}

func TestWebSocketHandler_Connect(t *testing.T) {
	gh, store := newTestGameHandler(testConfig())
	sessionID := startGame(t, gh)
	h := NewWebSocketHandler(store, middleware.OriginChecker("https://planets.example.com"))

	e := echo.New()
	e.GET("/ws", h.Connect)
	srv := httptest.NewServer(e)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	t.Run("異常系: セッションなし", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("異常系: 許可されていないオリジン", func(t *testing.T) {
		header := http.Header{}
		header.Set("Cookie", SessionCookie+"="+sessionID)
		header.Set("Origin", "https://evil.example.com")

		_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("正常系: 接続して状態とpongを受け取る", func(t *testing.T) {
		header := http.Header{}
		header.Set("Cookie", SessionCookie+"="+sessionID)
		header.Set("Origin", "https://planets.example.com")

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
		require.NoError(t, err)
		defer conn.Close()

		var state map[string]interface{}
		require.NoError(t, conn.ReadJSON(&state))
		assert.Equal(t, "state", state["type"])

		require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))

		var pong map[string]interface{}
		require.NoError(t, conn.ReadJSON(&pong))
		assert.Equal(t, "pong", pong["type"])
	})
}
