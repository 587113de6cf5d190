package tictactoe

import (
	"github.com/google/uuid"

	"github.com/andy327/game-service/internal/game"
	"github.com/andy327/game-service/internal/models"
)

// Mark is one side of the board.
type Mark string

const (
	MarkX     Mark = "X"
	MarkO     Mark = "O"
	MarkEmpty Mark = ""
)

// other returns the opposing mark.
func (m Mark) other() Mark {
	if m == MarkX {
		return MarkO
	}
	return MarkX
}

// Move places the current player's mark at (Row, Col).
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (Move) GameType() models.GameType { return models.GameTypeTicTacToe }

// State is one immutable tic-tac-toe position. PlayerX moves first.
type State struct {
	PlayerX     models.Player `json:"playerX"`
	PlayerO     models.Player `json:"playerO"`
	Board       [3][3]Mark    `json:"board"`
	CurrentMark Mark          `json:"currentMark"`
	Winner      *Mark         `json:"winner,omitempty"`
	IsDraw      bool          `json:"isDraw"`
}

// NewState builds the empty starting position for two players; the first
// player takes X and moves first.
func NewState(x, o models.Player) *State {
	return &State{PlayerX: x, PlayerO: o, CurrentMark: MarkX}
}

func (s *State) playerFor(m Mark) models.Player {
	if m == MarkX {
		return s.PlayerX
	}
	return s.PlayerO
}

func (s *State) markFor(playerID uuid.UUID) (Mark, bool) {
	switch playerID {
	case s.PlayerX.ID:
		return MarkX, true
	case s.PlayerO.ID:
		return MarkO, true
	}
	return MarkEmpty, false
}

// Players returns the participants in move order (X first).
func (s *State) Players() []models.Player {
	return []models.Player{s.PlayerX, s.PlayerO}
}

// CurrentPlayer returns the player to move, or false on a terminal position.
func (s *State) CurrentPlayer() (models.Player, bool) {
	if s.terminal() {
		return models.Player{}, false
	}
	return s.playerFor(s.CurrentMark), true
}

// Status reports the game-agnostic outcome of the position.
func (s *State) Status() game.Status {
	if s.Winner != nil {
		w := s.playerFor(*s.Winner)
		return game.Status{Kind: game.StatusWon, Winner: &w}
	}
	if s.IsDraw {
		return game.Status{Kind: game.StatusDraw}
	}
	return game.Status{Kind: game.StatusInProgress}
}

func (s *State) terminal() bool {
	return s.Winner != nil || s.IsDraw
}

// Apply validates and plays one move, returning the successor position. The
// receiver is never mutated.
func (s *State) Apply(playerID uuid.UUID, move game.MovePayload) (game.State, game.GameError) {
	m, ok := move.(Move)
	if !ok {
		if pm, isPtr := move.(*Move); isPtr {
			m = *pm
		} else {
			return nil, game.UnknownError{Message: "unsupported move payload for tictactoe"}
		}
	}

	if s.terminal() {
		return nil, game.GameOverError{}
	}
	mark, known := s.markFor(playerID)
	if !known {
		return nil, game.InvalidPlayerError{PlayerID: playerID}
	}
	if mark != s.CurrentMark {
		return nil, game.InvalidTurnError{}
	}
	if m.Row < 0 || m.Row > 2 || m.Col < 0 || m.Col > 2 {
		return nil, game.OutOfBoundsError{}
	}
	if s.Board[m.Row][m.Col] != MarkEmpty {
		return nil, game.CellOccupiedError{}
	}

	next := *s
	next.Board[m.Row][m.Col] = mark
	if w, won := next.findWinner(); won {
		next.Winner = &w
	} else if next.boardFull() {
		next.IsDraw = true
	}
	next.CurrentMark = mark.other()
	return &next, nil
}

// findWinner scans rows, columns and the two diagonals.
func (s *State) findWinner() (Mark, bool) {
	b := s.Board
	lines := [8][3]Mark{
		{b[0][0], b[0][1], b[0][2]},
		{b[1][0], b[1][1], b[1][2]},
		{b[2][0], b[2][1], b[2][2]},
		{b[0][0], b[1][0], b[2][0]},
		{b[0][1], b[1][1], b[2][1]},
		{b[0][2], b[1][2], b[2][2]},
		{b[0][0], b[1][1], b[2][2]},
		{b[0][2], b[1][1], b[2][0]},
	}
	for _, line := range lines {
		if line[0] != MarkEmpty && line[0] == line[1] && line[1] == line[2] {
			return line[0], true
		}
	}
	return MarkEmpty, false
}

func (s *State) boardFull() bool {
	for _, row := range s.Board {
		for _, cell := range row {
			if cell == MarkEmpty {
				return false
			}
		}
	}
	return true
}
