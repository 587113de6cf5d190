package game

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/andy327/game-service/internal/models"
)

// Repository is the durable snapshot store over the games table. It owns the
// database handle; all access goes through the persistence worker. SQL uses
// '?' placeholders rebound per driver so Postgres and SQLite both work.
type Repository struct {
	db       *sqlx.DB
	registry *Registry
}

// StoredGame is one restorable row from the games table.
type StoredGame struct {
	Type  models.GameType
	State State
}

type gameRow struct {
	GameID    string `db:"game_id"`
	GameType  string `db:"game_type"`
	GameState string `db:"game_state"`
}

// NewRepository wraps a connected database handle.
func NewRepository(db *sqlx.DB, registry *Registry) *Repository {
	return &Repository{db: db, registry: registry}
}

// Init ensures the games table exists.
func (r *Repository) Init(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS games (
		game_id TEXT PRIMARY KEY,
		game_type TEXT NOT NULL,
		game_state TEXT NOT NULL
	)`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create games table: %w", err)
	}
	return nil
}

// Save upserts one snapshot. Saving the same state twice is harmless.
func (r *Repository) Save(ctx context.Context, id uuid.UUID, t models.GameType, state State) error {
	module, ok := r.registry.Lookup(t)
	if !ok {
		return fmt.Errorf("no module registered for game type %q", t)
	}
	payload, err := module.EncodeState(state)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot for game %s: %w", id, err)
	}

	query := r.db.Rebind(`INSERT INTO games (game_id, game_type, game_state) VALUES (?, ?, ?)
		ON CONFLICT (game_id) DO UPDATE SET game_type = excluded.game_type, game_state = excluded.game_state`)
	if _, err := r.db.ExecContext(ctx, query, id.String(), t.ShortName(), payload); err != nil {
		return fmt.Errorf("failed to save snapshot for game %s: %w", id, err)
	}
	return nil
}

// Load returns the snapshot for id if the row exists, its type matches, and
// the payload decodes. Mismatches and decode failures are logged and treated
// as a miss; only I/O problems surface as errors.
func (r *Repository) Load(ctx context.Context, id uuid.UUID, t models.GameType) (State, bool, error) {
	var row gameRow
	query := r.db.Rebind(`SELECT game_id, game_type, game_state FROM games WHERE game_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load snapshot for game %s: %w", id, err)
	}

	if row.GameType != t.ShortName() {
		log.Printf("[DB] Game %s has type %q, expected %q; treating as missing", id, row.GameType, t.ShortName())
		return nil, false, nil
	}
	module, ok := r.registry.Lookup(t)
	if !ok {
		log.Printf("[DB] No module registered for game type %q; treating game %s as missing", t, id)
		return nil, false, nil
	}
	state, err := module.DecodeState(row.GameState)
	if err != nil {
		log.Printf("[DB] Failed to decode snapshot for game %s: %v; treating as missing", id, err)
		return nil, false, nil
	}
	return state, true, nil
}

// LoadAll returns every restorable row. Rows with a malformed id, an
// unregistered type, or an undecodable payload are skipped with a warning so
// one corrupt row never fails the whole restore.
func (r *Repository) LoadAll(ctx context.Context) (map[uuid.UUID]StoredGame, error) {
	var rows []gameRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT game_id, game_type, game_state FROM games`); err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	games := make(map[uuid.UUID]StoredGame, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.GameID)
		if err != nil {
			log.Printf("[DB] Skipping row with malformed game_id %q: %v", row.GameID, err)
			continue
		}
		t, ok := models.ParseGameType(row.GameType)
		if !ok {
			log.Printf("[DB] Skipping game %s with unknown game_type %q", id, row.GameType)
			continue
		}
		module, ok := r.registry.Lookup(t)
		if !ok {
			log.Printf("[DB] Skipping game %s: no module for game_type %q", id, row.GameType)
			continue
		}
		state, err := module.DecodeState(row.GameState)
		if err != nil {
			log.Printf("[DB] Skipping game %s with undecodable snapshot: %v", id, err)
			continue
		}
		games[id] = StoredGame{Type: t, State: state}
	}
	return games, nil
}
