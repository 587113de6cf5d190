package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/andy327/game-service/internal/api"
	"github.com/andy327/game-service/internal/config"
	"github.com/andy327/game-service/internal/database"
	"github.com/andy327/game-service/internal/events"
	"github.com/andy327/game-service/internal/game"
	"github.com/andy327/game-service/internal/game/tictactoe"
	"github.com/andy327/game-service/internal/migrations"
	"github.com/andy327/game-service/internal/redis"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DBURL, cfg.DBUser, cfg.DBPass, cfg.DBPoolSize)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if os.Getenv("MIGRATE_ON_START") == "true" {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DBURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Game module registry: one entry per supported game type
	registry := game.NewRegistry(tictactoe.NewModule())

	// Repository owns the games table; ensure it exists
	repo := game.NewRepository(db, registry)
	if err := repo.Init(context.Background()); err != nil {
		log.Fatalf("Failed to initialize games table: %v", err)
	}

	// Optional Redis: event publishing + websocket push
	var publisher game.EventPublisher
	var rdbClient *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		publisher = events.NewPublisher(rdb)
		rdbClient = rdb
	} else {
		log.Println("[EVENTS] REDIS_URL not set; event publishing disabled")
	}

	// Start the persistence worker and the supervisor (restores snapshots)
	persist := game.NewPersistenceWorker(repo)
	defer persist.Stop()

	sup := game.NewSupervisor(registry, repo, persist, publisher, cfg.SupervisorStashSize)
	defer sup.Stop()

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, sup, registry, rdbClient, cfg)

	addr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
	server := &http.Server{Addr: addr, Handler: router}

	// Serve until signalled, then drain in-flight requests
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting game-service on %s", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutdown signal received; stopping server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}
}
