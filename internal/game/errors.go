package game

import (
	"fmt"

	"github.com/google/uuid"
)

// GameError is a rejection produced by the game model or the match worker.
// These are reported to the caller and never crash a worker.
type GameError interface {
	error
	gameError()
}

// InvalidPlayerError rejects a move by a player who is not part of the match.
type InvalidPlayerError struct {
	PlayerID uuid.UUID
}

func (e InvalidPlayerError) Error() string {
	return fmt.Sprintf("player %s is not part of this game", e.PlayerID)
}
func (InvalidPlayerError) gameError() {}

// InvalidTurnError rejects a move made out of turn.
type InvalidTurnError struct{}

func (InvalidTurnError) Error() string { return "It's not your turn" }
func (InvalidTurnError) gameError()    {}

// CellOccupiedError rejects a move onto an already-filled cell.
type CellOccupiedError struct{}

func (CellOccupiedError) Error() string { return "That cell is already occupied" }
func (CellOccupiedError) gameError()    {}

// OutOfBoundsError rejects a move outside the board.
type OutOfBoundsError struct{}

func (OutOfBoundsError) Error() string { return "Move is out of bounds" }
func (OutOfBoundsError) gameError()    {}

// GameOverError rejects any move on a terminal match.
type GameOverError struct{}

func (GameOverError) Error() string { return "The game is already over." }
func (GameOverError) gameError()    {}

// UnknownError carries a rejection the model could not classify, such as a
// move payload of the wrong game type.
type UnknownError struct {
	Message string
}

func (e UnknownError) Error() string { return e.Message }
func (UnknownError) gameError()      {}

// DecodeError reports a payload that could not be parsed, either a client
// move body or a stored snapshot.
type DecodeError struct {
	Message string
}

func (e DecodeError) Error() string { return e.Message }
