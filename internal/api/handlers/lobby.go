package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/andy327/game-service/internal/auth"
	"github.com/andy327/game-service/internal/game"
	"github.com/andy327/game-service/internal/models"
)

// ask sends one command to the supervisor and waits for its reply.
func ask(sup *game.Supervisor, timeout time.Duration, build func(chan<- game.Response) game.Command) (game.Response, bool) {
	reply := make(chan game.Response, 1)
	return sup.Ask(build(reply), reply, timeout)
}

// writeLobbyError maps a supervisor rejection onto 404/400.
func writeLobbyError(c *gin.Context, e game.ErrorResponse) {
	status := http.StatusBadRequest
	if e.NotFound {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": e.Message})
}

func writeUnexpected(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Unexpected response"})
}

func parseGameID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("gameId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed game id"})
		return uuid.UUID{}, false
	}
	return id, true
}

// CreateLobby opens a lobby for the given game type, hosted by the caller.
func CreateLobby(sup *game.Supervisor, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		player, _ := auth.PlayerFrom(c)
		gameType, ok := models.ParseGameType(c.Param("gameType"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown game type"})
			return
		}

		res, ok := ask(sup, timeout, func(reply chan<- game.Response) game.Command {
			return game.CreateLobby{GameType: gameType, Host: player, ReplyTo: reply}
		})
		if !ok {
			writeUnexpected(c)
			return
		}
		switch r := res.(type) {
		case game.LobbyCreated:
			c.JSON(http.StatusOK, r)
		case game.ErrorResponse:
			writeLobbyError(c, r)
		default:
			writeUnexpected(c)
		}
	}
}

// JoinLobby adds the caller to an existing lobby.
func JoinLobby(sup *game.Supervisor, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		player, _ := auth.PlayerFrom(c)
		gameID, ok := parseGameID(c)
		if !ok {
			return
		}

		res, ok := ask(sup, timeout, func(reply chan<- game.Response) game.Command {
			return game.JoinLobby{GameID: gameID, Player: player, ReplyTo: reply}
		})
		if !ok {
			writeUnexpected(c)
			return
		}
		switch r := res.(type) {
		case game.LobbyJoined:
			c.JSON(http.StatusOK, r)
		case game.ErrorResponse:
			writeLobbyError(c, r)
		default:
			writeUnexpected(c)
		}
	}
}

// LeaveLobby removes the caller from a lobby. A host leaving cancels it.
func LeaveLobby(sup *game.Supervisor, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		player, _ := auth.PlayerFrom(c)
		gameID, ok := parseGameID(c)
		if !ok {
			return
		}

		res, ok := ask(sup, timeout, func(reply chan<- game.Response) game.Command {
			return game.LeaveLobby{GameID: gameID, Player: player, ReplyTo: reply}
		})
		if !ok {
			writeUnexpected(c)
			return
		}
		switch r := res.(type) {
		case game.LobbyLeft:
			c.JSON(http.StatusOK, r)
		case game.ErrorResponse:
			writeLobbyError(c, r)
		default:
			writeUnexpected(c)
		}
	}
}

// StartGame starts the match for a ready lobby. Host only.
func StartGame(sup *game.Supervisor, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		player, _ := auth.PlayerFrom(c)
		gameID, ok := parseGameID(c)
		if !ok {
			return
		}

		res, ok := ask(sup, timeout, func(reply chan<- game.Response) game.Command {
			return game.StartGame{GameID: gameID, CallerID: player.ID, ReplyTo: reply}
		})
		if !ok {
			writeUnexpected(c)
			return
		}
		switch r := res.(type) {
		case game.GameStarted:
			c.JSON(http.StatusOK, r)
		case game.ErrorResponse:
			writeLobbyError(c, r)
		default:
			writeUnexpected(c)
		}
	}
}

// GetLobbyInfo returns one lobby's metadata. No auth required.
func GetLobbyInfo(sup *game.Supervisor, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, ok := parseGameID(c)
		if !ok {
			return
		}

		res, ok := ask(sup, timeout, func(reply chan<- game.Response) game.Command {
			return game.GetLobbyInfo{GameID: gameID, ReplyTo: reply}
		})
		if !ok {
			writeUnexpected(c)
			return
		}
		switch r := res.(type) {
		case game.LobbyInfo:
			c.JSON(http.StatusOK, r.Lobby)
		case game.ErrorResponse:
			writeLobbyError(c, r)
		default:
			writeUnexpected(c)
		}
	}
}

// ListLobbies returns every joinable lobby. No auth required.
func ListLobbies(sup *game.Supervisor, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, ok := ask(sup, timeout, func(reply chan<- game.Response) game.Command {
			return game.ListLobbies{ReplyTo: reply}
		})
		if !ok {
			writeUnexpected(c)
			return
		}
		switch r := res.(type) {
		case game.LobbiesListed:
			c.JSON(http.StatusOK, r.Lobbies)
		default:
			writeUnexpected(c)
		}
	}
}
