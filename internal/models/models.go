package models

import (
	"strings"

	"github.com/google/uuid"
)

// Player represents an authenticated participant. Equality is by ID.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// GameType identifies a registered family of game rules.
type GameType string

const (
	GameTypeTicTacToe GameType = "TicTacToe"
)

// playerLimits carries the allowed player count per game type.
type playerLimits struct {
	Min int
	Max int
}

var gameTypes = map[GameType]playerLimits{
	GameTypeTicTacToe: {Min: 2, Max: 2},
}

// ParseGameType resolves a short name (case-insensitive) to a registered
// game type, e.g. "tictactoe" -> GameTypeTicTacToe.
func ParseGameType(s string) (GameType, bool) {
	for t := range gameTypes {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

// ShortName returns the lowercase wire form of the game type.
func (t GameType) ShortName() string {
	return strings.ToLower(string(t))
}

// MinPlayers returns the minimum player count required to start a match.
func (t GameType) MinPlayers() int {
	return gameTypes[t].Min
}

// MaxPlayers returns the maximum player count a lobby may hold.
func (t GameType) MaxPlayers() int {
	return gameTypes[t].Max
}

// Registered reports whether the game type is known.
func (t GameType) Registered() bool {
	_, ok := gameTypes[t]
	return ok
}

// LobbyStatus represents the lifecycle state of a lobby.
type LobbyStatus string

const (
	StatusWaitingForPlayers LobbyStatus = "WAITING_FOR_PLAYERS"
	StatusReadyToStart      LobbyStatus = "READY_TO_START"
	StatusInProgress        LobbyStatus = "IN_PROGRESS"
	StatusCompleted         LobbyStatus = "COMPLETED"
	StatusCancelled         LobbyStatus = "CANCELLED"
)

// Joinable reports whether new players may still join a lobby in this status.
func (s LobbyStatus) Joinable() bool {
	return s == StatusWaitingForPlayers || s == StatusReadyToStart
}

// Terminal reports whether the lobby can never transition again.
func (s LobbyStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// LobbyMetadata tracks membership and start-readiness for one future match.
// The supervisor is the sole owner; everything handed out is a copy.
type LobbyMetadata struct {
	GameID   uuid.UUID            `json:"gameId"`
	GameType GameType             `json:"gameType"`
	Players  map[uuid.UUID]Player `json:"players"`
	HostID   uuid.UUID            `json:"hostId"`
	Status   LobbyStatus          `json:"status"`
}

// Copy returns a deep copy safe to hand to another goroutine.
func (l *LobbyMetadata) Copy() LobbyMetadata {
	players := make(map[uuid.UUID]Player, len(l.Players))
	for id, p := range l.Players {
		players[id] = p
	}
	return LobbyMetadata{
		GameID:   l.GameID,
		GameType: l.GameType,
		Players:  players,
		HostID:   l.HostID,
		Status:   l.Status,
	}
}
