package round

import (
	"context"
	"log/slog"
)

// Listener receives round notifications.
type Listener interface {
	OnPieceCommitted(pieceID int)
	OnRoundComplete(index int)
	OnAllRoundsComplete()
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	PieceCommitted    func(pieceID int)
	RoundComplete     func(index int)
	AllRoundsComplete func()
}

// OnPieceCommitted implements Listener.
func (f ListenerFuncs) OnPieceCommitted(pieceID int) {
	if f.PieceCommitted != nil {
		f.PieceCommitted(pieceID)
	}
}

// OnRoundComplete implements Listener.
func (f ListenerFuncs) OnRoundComplete(index int) {
	if f.RoundComplete != nil {
		f.RoundComplete(index)
	}
}

// OnAllRoundsComplete implements Listener.
func (f ListenerFuncs) OnAllRoundsComplete() {
	if f.AllRoundsComplete != nil {
		f.AllRoundsComplete()
	}
}

// nopHandler discards every record.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }
