package game

import (
	"fmt"

	"github.com/andy327/game-service/internal/models"
)

// Module plugs one game type into the kernel. It bundles the move decoder,
// the initial-state factory, the snapshot codec, and the client view. The
// supervisor and the HTTP layer contain no game-type branches; adding a game
// means registering another Module.
type Module interface {
	Type() models.GameType

	// NewMatchState builds the initial state for the given players. It
	// rejects player counts outside the game type's [min, max] range.
	NewMatchState(players []models.Player) (State, error)

	// DecodeMove parses a client JSON body into the game's move payload.
	DecodeMove(data []byte) (MovePayload, error)

	// EncodeState serializes a state into the snapshot payload. Encoding is
	// total for every state the module can produce.
	EncodeState(s State) (string, error)

	// DecodeState parses a snapshot payload back into a state.
	DecodeState(payload string) (State, error)

	// View converts a state into the serializable shape sent to clients.
	View(s State) any
}

// Registry maps game types to their modules. It is populated at startup and
// read-only afterwards, so lookups need no locking.
type Registry struct {
	modules map[models.GameType]Module
}

// NewRegistry builds a registry from the given modules.
func NewRegistry(modules ...Module) *Registry {
	r := &Registry{modules: make(map[models.GameType]Module, len(modules))}
	for _, m := range modules {
		r.modules[m.Type()] = m
	}
	return r
}

// Lookup returns the module for a game type.
func (r *Registry) Lookup(t models.GameType) (Module, bool) {
	m, ok := r.modules[t]
	return m, ok
}

// LookupShortName resolves a wire-form short name ("tictactoe") to a module.
func (r *Registry) LookupShortName(name string) (Module, bool) {
	t, ok := models.ParseGameType(name)
	if !ok {
		return nil, false
	}
	return r.Lookup(t)
}

// ValidatePlayerCount is shared by module state factories.
func ValidatePlayerCount(t models.GameType, n int) error {
	if n < t.MinPlayers() || n > t.MaxPlayers() {
		return fmt.Errorf("%s requires between %d and %d players, got %d",
			t.ShortName(), t.MinPlayers(), t.MaxPlayers(), n)
	}
	return nil
}
