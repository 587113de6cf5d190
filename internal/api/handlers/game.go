package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/andy327/game-service/internal/auth"
	"github.com/andy327/game-service/internal/game"
	"github.com/andy327/game-service/internal/ws"
)

// MakeMove submits one move for the authenticated player. The body is
// decoded by the game's module; the supervisor and this handler stay
// game-agnostic.
func MakeMove(sup *game.Supervisor, registry *game.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		player, _ := auth.PlayerFrom(c)
		module, ok := registry.LookupShortName(c.Param("gameType"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown game type"})
			return
		}
		gameID, ok := parseGameID(c)
		if !ok {
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}
		move, err := module.DecodeMove(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, ok := ask(sup, timeout, func(reply chan<- game.Response) game.Command {
			return game.RunGameOperation{
				GameID:  gameID,
				Op:      game.MakeMove{PlayerID: player.ID, Move: move},
				ReplyTo: reply,
			}
		})
		if !ok {
			writeUnexpected(c)
			return
		}
		switch r := res.(type) {
		case game.GameStatus:
			c.JSON(http.StatusOK, r.View)
		case game.ErrorResponse:
			// Game rejections and missing matches both surface as 404 here.
			c.JSON(http.StatusNotFound, gin.H{"error": r.Message})
		default:
			writeUnexpected(c)
		}
	}
}

// GetGameStatus returns the current state view of a match. No auth required.
func GetGameStatus(sup *game.Supervisor, registry *game.Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := registry.LookupShortName(c.Param("gameType")); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown game type"})
			return
		}
		gameID, ok := parseGameID(c)
		if !ok {
			return
		}

		res, ok := ask(sup, timeout, func(reply chan<- game.Response) game.Command {
			return game.RunGameOperation{GameID: gameID, Op: game.GetState{}, ReplyTo: reply}
		})
		if !ok {
			writeUnexpected(c)
			return
		}
		switch r := res.(type) {
		case game.GameStatus:
			c.JSON(http.StatusOK, r.View)
		case game.ErrorResponse:
			c.JSON(http.StatusNotFound, gin.H{"error": r.Message})
		default:
			writeUnexpected(c)
		}
	}
}

// GameEvents streams a match's events to one of its players over WebSocket.
// Requires Redis; registered only when REDIS_URL is configured.
func GameEvents(sup *game.Supervisor, registry *game.Registry, rdb *redis.Client, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		player, _ := auth.PlayerFrom(c)
		if _, ok := registry.LookupShortName(c.Param("gameType")); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown game type"})
			return
		}
		gameID, ok := parseGameID(c)
		if !ok {
			return
		}

		// Only participants may subscribe.
		res, ok := ask(sup, timeout, func(reply chan<- game.Response) game.Command {
			return game.RunGameOperation{GameID: gameID, Op: game.GetState{}, ReplyTo: reply}
		})
		if !ok {
			writeUnexpected(c)
			return
		}
		status, isStatus := res.(game.GameStatus)
		if !isStatus {
			c.JSON(http.StatusNotFound, gin.H{"error": "No game found with gameId"})
			return
		}
		if !viewHasPlayer(status.View, player.ID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
			return
		}

		ws.ServeGameEvents(c.Writer, c.Request, rdb, gameID.String())
	}
}

// viewHasPlayer checks membership against the serialized players list
// without knowing the concrete view type.
func viewHasPlayer(view any, playerID uuid.UUID) bool {
	type playersView interface{ PlayerIDs() []uuid.UUID }
	if pv, ok := view.(playersView); ok {
		for _, id := range pv.PlayerIDs() {
			if id == playerID {
				return true
			}
		}
	}
	return false
}
