package tictactoe

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/andy327/game-service/internal/game"
	"github.com/andy327/game-service/internal/models"
)

// Module plugs tic-tac-toe into the orchestration kernel.
type Module struct{}

// NewModule returns the tic-tac-toe game module.
func NewModule() Module { return Module{} }

func (Module) Type() models.GameType { return models.GameTypeTicTacToe }

// NewMatchState builds the empty starting position. Exactly two players.
func (Module) NewMatchState(players []models.Player) (game.State, error) {
	if err := game.ValidatePlayerCount(models.GameTypeTicTacToe, len(players)); err != nil {
		return nil, err
	}
	return NewState(players[0], players[1]), nil
}

// DecodeMove parses {"row": r, "col": c} from a client body.
func (Module) DecodeMove(data []byte) (game.MovePayload, error) {
	var m Move
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, game.DecodeError{Message: fmt.Sprintf("invalid move payload: %v", err)}
	}
	return m, nil
}

// EncodeState serializes the full position as JSON.
func (Module) EncodeState(s game.State) (string, error) {
	ts, ok := s.(*State)
	if !ok {
		return "", fmt.Errorf("unexpected state type %T for tictactoe", s)
	}
	data, err := json.Marshal(ts)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeState parses a snapshot payload produced by EncodeState.
func (Module) DecodeState(payload string) (game.State, error) {
	var ts State
	if err := json.Unmarshal([]byte(payload), &ts); err != nil {
		return nil, game.DecodeError{Message: fmt.Sprintf("invalid tictactoe snapshot: %v", err)}
	}
	if ts.CurrentMark != MarkX && ts.CurrentMark != MarkO {
		return nil, game.DecodeError{Message: "invalid tictactoe snapshot: missing current mark"}
	}
	return &ts, nil
}

// StateView is the client-facing shape of a position.
type StateView struct {
	Board         [3][3]Mark      `json:"board"`
	CurrentPlayer Mark            `json:"currentPlayer"`
	Players       []models.Player `json:"players"`
	Winner        Mark            `json:"winner,omitempty"`
	Draw          bool            `json:"draw"`
}

// PlayerIDs lets game-agnostic callers check participation.
func (v StateView) PlayerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(v.Players))
	for _, p := range v.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// View converts a position into the shape returned by move/status endpoints.
func (Module) View(s game.State) any {
	ts, ok := s.(*State)
	if !ok {
		return nil
	}
	view := StateView{
		Board:   ts.Board,
		Players: ts.Players(),
		Draw:    ts.IsDraw,
	}
	if ts.Winner != nil {
		view.Winner = *ts.Winner
	} else if !ts.IsDraw {
		view.CurrentPlayer = ts.CurrentMark
	}
	return view
}
