package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andy327/game-service/internal/models"
)

const playerContextKey = "player"

// Middleware validates the bearer token and stores the player in the gin
// context. Missing, invalid, and expired tokens get 401 with a JSON body.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		player, err := ParseToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(playerContextKey, player)
		c.Next()
	}
}

// PlayerFrom returns the authenticated player set by Middleware.
func PlayerFrom(c *gin.Context) (models.Player, bool) {
	v, ok := c.Get(playerContextKey)
	if !ok {
		return models.Player{}, false
	}
	player, ok := v.(models.Player)
	return player, ok
}
