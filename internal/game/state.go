package game

import (
	"github.com/google/uuid"

	"github.com/andy327/game-service/internal/models"
)

// StatusKind classifies a match state.
type StatusKind string

const (
	StatusInProgress StatusKind = "IN_PROGRESS"
	StatusWon        StatusKind = "WON"
	StatusDraw       StatusKind = "DRAW"
)

// Status is the game-agnostic outcome view of a match state.
type Status struct {
	Kind   StatusKind
	Winner *models.Player // set iff Kind == StatusWon
}

// Terminal reports whether the match can accept no further moves.
func (s Status) Terminal() bool {
	return s.Kind == StatusWon || s.Kind == StatusDraw
}

// MovePayload is a game-specific move, produced by a module's move decoder.
type MovePayload interface {
	GameType() models.GameType
}

// State is one immutable snapshot of a match. Apply never mutates the
// receiver; it returns the successor state or a GameError.
type State interface {
	Players() []models.Player
	CurrentPlayer() (models.Player, bool)
	Status() Status
	Apply(playerID uuid.UUID, move MovePayload) (State, GameError)
}

// Operation is a game-agnostic request routed to a match worker.
type Operation interface {
	operation()
}

// MakeMove asks the match to apply one move for the given player.
type MakeMove struct {
	PlayerID uuid.UUID
	Move     MovePayload
}

func (MakeMove) operation() {}

// GetState asks the match for its current state view.
type GetState struct{}

func (GetState) operation() {}
