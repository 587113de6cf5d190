package game

import (
	"github.com/google/uuid"

	"github.com/andy327/game-service/internal/models"
)

// Command is the tagged union of everything the supervisor accepts.
type Command interface{ supervisorCommand() }

// CreateLobby opens a new lobby hosted by the given player.
type CreateLobby struct {
	GameType models.GameType
	Host     models.Player
	ReplyTo  chan<- Response
}

// JoinLobby adds a player to an existing lobby.
type JoinLobby struct {
	GameID  uuid.UUID
	Player  models.Player
	ReplyTo chan<- Response
}

// LeaveLobby removes a player from a lobby. A host leaving cancels the
// lobby; leaving a lobby the player is not in is idempotent.
type LeaveLobby struct {
	GameID  uuid.UUID
	Player  models.Player
	ReplyTo chan<- Response
}

// StartGame starts the match for a ready lobby. Only the host may start.
type StartGame struct {
	GameID   uuid.UUID
	CallerID uuid.UUID
	ReplyTo  chan<- Response
}

// ListLobbies returns every lobby still accepting players.
type ListLobbies struct {
	ReplyTo chan<- Response
}

// GetLobbyInfo returns one lobby's metadata.
type GetLobbyInfo struct {
	GameID  uuid.UUID
	ReplyTo chan<- Response
}

// RunGameOperation routes a game-agnostic operation to a live match.
type RunGameOperation struct {
	GameID  uuid.UUID
	Op      Operation
	ReplyTo chan<- Response
}

// gameCompleted is sent by a match worker when its match turns terminal.
type gameCompleted struct {
	GameID uuid.UUID
	Status models.LobbyStatus
}

// restoreLoaded carries the loadAll result back onto the supervisor loop.
type restoreLoaded struct {
	Games map[uuid.UUID]StoredGame
	Err   error
}

func (CreateLobby) supervisorCommand()      {}
func (JoinLobby) supervisorCommand()        {}
func (LeaveLobby) supervisorCommand()       {}
func (StartGame) supervisorCommand()        {}
func (ListLobbies) supervisorCommand()      {}
func (GetLobbyInfo) supervisorCommand()     {}
func (RunGameOperation) supervisorCommand() {}
func (gameCompleted) supervisorCommand()    {}
func (restoreLoaded) supervisorCommand()    {}

// Response is the tagged union of supervisor replies.
type Response interface{ supervisorResponse() }

// LobbyCreated acknowledges CreateLobby with the fresh game id.
type LobbyCreated struct {
	GameID uuid.UUID     `json:"gameId"`
	Host   models.Player `json:"host"`
}

// LobbyJoined acknowledges JoinLobby with the updated metadata.
type LobbyJoined struct {
	GameID uuid.UUID            `json:"gameId"`
	Lobby  models.LobbyMetadata `json:"lobby"`
	Player models.Player        `json:"player"`
}

// LobbyLeft acknowledges LeaveLobby.
type LobbyLeft struct {
	GameID  uuid.UUID `json:"gameId"`
	Message string    `json:"message"`
}

// GameStarted acknowledges StartGame.
type GameStarted struct {
	GameID uuid.UUID `json:"gameId"`
}

// LobbiesListed carries every joinable lobby.
type LobbiesListed struct {
	Lobbies []models.LobbyMetadata `json:"lobbies"`
}

// LobbyInfo carries one lobby's metadata.
type LobbyInfo struct {
	Lobby models.LobbyMetadata `json:"lobby"`
}

// GameStatus carries a game-specific state view.
type GameStatus struct {
	View any `json:"view"`
}

// ErrorResponse is any rejection. NotFound distinguishes missing lobbies and
// matches for the HTTP layer.
type ErrorResponse struct {
	Message  string `json:"error"`
	NotFound bool   `json:"-"`
}

func (LobbyCreated) supervisorResponse()  {}
func (LobbyJoined) supervisorResponse()   {}
func (LobbyLeft) supervisorResponse()     {}
func (GameStarted) supervisorResponse()   {}
func (LobbiesListed) supervisorResponse() {}
func (LobbyInfo) supervisorResponse()     {}
func (GameStatus) supervisorResponse()    {}
func (ErrorResponse) supervisorResponse() {}
