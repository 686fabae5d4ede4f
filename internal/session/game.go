package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kyiku/planet-jigsaw-back/internal/interaction"
	"github.com/kyiku/planet-jigsaw-back/internal/round"
	"github.com/kyiku/planet-jigsaw-back/internal/storage"
)

// WebSocketConn defines the interface for WebSocket connections.
type WebSocketConn interface {
	WriteMessage(messageType int, data []byte) error
	WriteJSON(v interface{}) error
	Close() error
}

// Game is one player's puzzle run.
// Callers hold Lock while touching Round, Pointer, Assets or Conn.
type Game struct {
	mu sync.Mutex

	ID        string // UUID
	SessionID string // Session ID (Cookie)
	CreatedAt time.Time

	Round   *round.Controller
	Pointer *interaction.Pointer

	// Published copies of the current round, nil when S3 is not configured
	Assets *storage.RoundAssets

	// WebSocket connection for pushed notifications, nil when not connected
	Conn WebSocketConn
}

// NewGame wraps a round controller.
func NewGame(ctrl *round.Controller) *Game {
	return &Game{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Round:     ctrl,
		Pointer:   interaction.NewPointer(ctrl),
	}
}

// Lock locks the game.
func (g *Game) Lock() { g.mu.Lock() }

// Unlock unlocks the game.
func (g *Game) Unlock() { g.mu.Unlock() }

// Send writes v to the WebSocket connection if one is attached.
// Must be called with the lock held.
func (g *Game) Send(v interface{}) error {
	if g.Conn == nil {
		return nil
	}
	return g.Conn.WriteJSON(v)
}
