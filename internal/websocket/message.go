// Package websocket provides WebSocket message handling utilities.
package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Message types
const (
	TypePing            = "ping"
	TypePong            = "pong"
	TypePointerPressed  = "pointer_pressed"
	TypePointerMoved    = "pointer_moved"
	TypePointerReleased = "pointer_released"

	TypePieceCommitted    = "piece_committed"
	TypePieceDropped      = "piece_dropped"
	TypeRoundComplete     = "round_complete"
	TypeAllRoundsComplete = "all_rounds_complete"
	TypeState             = "state"
	TypeError             = "error"
)

// ErrInvalidMessage is returned for a message that cannot be parsed.
var ErrInvalidMessage = errors.New("invalid websocket message")

// Inbound is a message sent by the client.
type Inbound struct {
	Type string  `json:"type"`
	ID   *int    `json:"id,omitempty"` // Explicit piece for pointer_pressed
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Parse decodes a client message and checks its type.
func Parse(data []byte) (Inbound, error) {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	switch msg.Type {
	case TypePing, TypePointerPressed, TypePointerMoved, TypePointerReleased:
		return msg, nil
	case "":
		return Inbound{}, fmt.Errorf("%w: missing type", ErrInvalidMessage)
	default:
		return Inbound{}, fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, msg.Type)
	}
}

// PieceCommitted builds the notification for a snapped piece.
func PieceCommitted(pieceID int) map[string]interface{} {
	return map[string]interface{}{
		"type":  TypePieceCommitted,
		"piece": pieceID,
	}
}

// PieceDropped builds the reply to a pointer release.
func PieceDropped(pieceID int, result string) map[string]interface{} {
	return map[string]interface{}{
		"type":   TypePieceDropped,
		"piece":  pieceID,
		"result": result,
	}
}

// RoundComplete builds the notification for a solved round.
func RoundComplete(index int, fact string) map[string]interface{} {
	return map[string]interface{}{
		"type":  TypeRoundComplete,
		"round": index,
		"fact":  fact,
	}
}

// AllRoundsComplete builds the notification sent after the final round.
func AllRoundsComplete() map[string]interface{} {
	return map[string]interface{}{
		"type": TypeAllRoundsComplete,
	}
}

// State wraps a game state snapshot.
func State(state interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":  TypeState,
		"state": state,
	}
}

// Error builds an error message with a client-facing code.
func Error(code, message string) map[string]interface{} {
	return map[string]interface{}{
		"type":    TypeError,
		"code":    code,
		"message": message,
	}
}
