package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/andy327/game-service/internal/auth"
	"github.com/andy327/game-service/internal/config"
	"github.com/andy327/game-service/internal/models"
)

// IssueToken issues a bearer token for a (possibly fresh) player identity.
// The id is optional; a malformed id is a 400.
func IssueToken(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}
		if req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}

		id := uuid.New()
		if req.ID != "" {
			parsed, err := uuid.Parse(req.ID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "malformed player id"})
				return
			}
			id = parsed
		}

		player := models.Player{ID: id, Name: req.Name}
		ttl := time.Duration(cfg.JWTTTLMinutes) * time.Minute
		token, err := auth.IssueToken(player, cfg.JWTSecret, ttl)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// WhoAmI returns the identity carried by the bearer token.
func WhoAmI() gin.HandlerFunc {
	return func(c *gin.Context) {
		player, ok := auth.PlayerFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": player.ID, "name": player.Name})
	}
}
