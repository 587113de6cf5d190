package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel carrying all game events.
const Channel = "game_events"

// Event is the JSON envelope published for every lobby and match event.
type Event struct {
	Type    string    `json:"type"`
	GameID  uuid.UUID `json:"gameId"`
	Payload any       `json:"payload,omitempty"`
}

// Publisher fans game events out over Redis pub/sub. Publishing is
// best-effort: failures are logged and never affect the HTTP contract.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher wraps a connected Redis client.
func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Publish sends one event. Safe for concurrent use.
func (p *Publisher) Publish(eventType string, gameID uuid.UUID, payload any) {
	data, err := json.Marshal(Event{Type: eventType, GameID: gameID, Payload: payload})
	if err != nil {
		log.Printf("[EVENTS] Failed to marshal %s event for game %s: %v", eventType, gameID, err)
		return
	}
	if err := p.rdb.Publish(context.Background(), Channel, data).Err(); err != nil {
		log.Printf("[EVENTS] Publish %s failed for game %s: %v", eventType, gameID, err)
	}
}
