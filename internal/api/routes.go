package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/andy327/game-service/internal/api/handlers"
	"github.com/andy327/game-service/internal/auth"
	"github.com/andy327/game-service/internal/config"
	"github.com/andy327/game-service/internal/game"
	"github.com/andy327/game-service/internal/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, sup *game.Supervisor, registry *game.Registry, rdb *redis.Client, cfg *config.Config) {
	router.Use(middleware.CORS())

	timeout := time.Duration(cfg.AskTimeoutSeconds) * time.Second
	authed := auth.Middleware(cfg.JWTSecret)

	router.GET("/api/health", handlers.HealthCheck)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/token", handlers.IssueToken(cfg))
		authGroup.GET("/whoami", authed, handlers.WhoAmI())
	}

	lobby := router.Group("/lobby")
	{
		lobby.POST("/create/:gameType", authed, handlers.CreateLobby(sup, timeout))
		lobby.GET("/list", handlers.ListLobbies(sup, timeout))
		lobby.POST("/:gameId/join", authed, handlers.JoinLobby(sup, timeout))
		lobby.POST("/:gameId/leave", authed, handlers.LeaveLobby(sup, timeout))
		lobby.POST("/:gameId/start", authed, handlers.StartGame(sup, timeout))
		lobby.GET("/:gameId", handlers.GetLobbyInfo(sup, timeout))
	}

	// Game operation endpoints are game-agnostic; the module registry
	// resolves :gameType, so adding a game adds no routes.
	router.POST("/:gameType/:gameId/move", authed, handlers.MakeMove(sup, registry, timeout))
	router.GET("/:gameType/:gameId/status", handlers.GetGameStatus(sup, registry, timeout))
	if rdb != nil {
		router.GET("/:gameType/:gameId/ws", authed, handlers.GameEvents(sup, registry, rdb, timeout))
	}
}
