// internal/game/types.go
//
// Core type definitions for the memory game engine.
// Defines:
//   - Status: the message state shown to the player.
//   - Surface: the drawing collaborator cards and games render onto.
//   - Sentinel errors returned by the engine.

package game

import "errors"

// BackSprite is the sprite key drawn for a face-down card.
const BackSprite = "back"

// Status is the enumerated message state of a game.
// Exactly one status is current; the last transition wins.
type Status int

const (
	StatusStart Status = iota
	StatusMismatch
	StatusMatched
	StatusWin
)

// String returns the lowercase name used in JSON views and logs.
func (s Status) String() string {
	switch s {
	case StatusStart:
		return "start"
	case StatusMismatch:
		return "mismatch"
	case StatusMatched:
		return "matched"
	case StatusWin:
		return "win"
	default:
		return "unknown"
	}
}

// Surface is the rendering collaborator.
// Implementations decide how (and whether) anything reaches a screen.
type Surface interface {
	// DrawMessage displays the status text.
	DrawMessage(text string)
	// Draw displays spriteKey (a symbol or BackSprite) at board slot position.
	Draw(spriteKey string, position int)
}

var (
	// ErrInvalidArgument is the parent of every caller-side precondition failure.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvariantViolation means the engine reached a state it must never reach.
	ErrInvariantViolation = errors.New("invariant violation")

	ErrIndexOutOfRange    = wrapInvalid("index out of range")
	ErrNotInitialized     = wrapInvalid("game not initialized")
	ErrAlreadyInitialized = wrapInvalid("game already initialized")
	ErrInvalidSettings    = wrapInvalid("invalid settings")
)

// invalidError is a named precondition failure that matches ErrInvalidArgument.
type invalidError struct{ msg string }

func (e *invalidError) Error() string { return e.msg }
func (e *invalidError) Unwrap() error { return ErrInvalidArgument }

func wrapInvalid(msg string) error { return &invalidError{msg: msg} }
