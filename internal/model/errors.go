package model

import "errors"

// Error codes returned to clients.
const (
	CodeInvalidParameter  = "INVALID_PARAMETER"
	CodeInvalidGridArity  = "INVALID_GRID_ARITY"
	CodeUnknownPiece      = "UNKNOWN_PIECE"
	CodeNoActiveRound     = "NO_ACTIVE_ROUND"
	CodeAllRoundsComplete = "ALL_ROUNDS_COMPLETE"
	CodePieceBusy         = "PIECE_BUSY"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeInternalError     = "INTERNAL_ERROR"
)

var (
	// ErrInvalidParameter is returned for a bad resolution, grid arity or density.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidGridArity is returned when the image is smaller than the requested grid.
	ErrInvalidGridArity = errors.New("image smaller than grid arity")

	// ErrUnknownPiece is returned when a piece ID is not part of the active round.
	ErrUnknownPiece = errors.New("unknown piece")

	// ErrNoActiveRound is returned when an operation needs a loaded round.
	ErrNoActiveRound = errors.New("no active round")

	// ErrAllRoundsComplete is returned by Advance past the final round.
	ErrAllRoundsComplete = errors.New("all rounds complete")

	// ErrPieceBusy is returned when a second piece is grabbed while one is in motion.
	ErrPieceBusy = errors.New("another piece is in motion")

	// ErrInvalidTransition is returned for a round state change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid round state transition")
)

// codes maps each sentinel to its client-facing code.
var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidParameter, CodeInvalidParameter},
	{ErrInvalidGridArity, CodeInvalidGridArity},
	{ErrUnknownPiece, CodeUnknownPiece},
	{ErrNoActiveRound, CodeNoActiveRound},
	{ErrAllRoundsComplete, CodeAllRoundsComplete},
	{ErrPieceBusy, CodePieceBusy},
	{ErrInvalidTransition, CodeInvalidTransition},
}

// ErrorCode returns the client-facing code for err.
// Unrecognized errors map to CodeInternalError.
func ErrorCode(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternalError
}
