package game

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/andy327/game-service/internal/models"
)

// SnapshotSaved is the reply to a SaveSnapshot request.
type SnapshotSaved struct {
	GameID uuid.UUID
	Err    error
}

// SnapshotLoaded is the reply to a LoadSnapshot request. Found is false when
// the row is missing, of the wrong type, or undecodable.
type SnapshotLoaded struct {
	GameID uuid.UUID
	State  State
	Found  bool
	Err    error
}

type persistCommand interface{ persistCommand() }

// SaveSnapshot asks the persistence worker to upsert one snapshot.
type SaveSnapshot struct {
	GameID   uuid.UUID
	GameType models.GameType
	State    State
	ReplyTo  chan<- SnapshotSaved
}

func (SaveSnapshot) persistCommand() {}

// LoadSnapshot asks the persistence worker for one snapshot.
type LoadSnapshot struct {
	GameID   uuid.UUID
	GameType models.GameType
	ReplyTo  chan<- SnapshotLoaded
}

func (LoadSnapshot) persistCommand() {}

// PersistenceWorker serializes all repository I/O behind a request/reply
// mailbox so callers never block on the database themselves. Both success
// and failure are delivered as replies; a panic inside a repository call is
// recovered into an error reply rather than crashing the worker.
type PersistenceWorker struct {
	repo *Repository
	cmds chan persistCommand
	done chan struct{}
}

// NewPersistenceWorker starts the worker goroutine.
func NewPersistenceWorker(repo *Repository) *PersistenceWorker {
	w := &PersistenceWorker{
		repo: repo,
		cmds: make(chan persistCommand, 64),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

// Send enqueues a command. It returns false after Stop.
func (w *PersistenceWorker) Send(cmd persistCommand) bool {
	select {
	case <-w.done:
		return false
	default:
	}
	select {
	case w.cmds <- cmd:
		return true
	case <-w.done:
		return false
	}
}

// Stop shuts the worker down. Pending commands are dropped.
func (w *PersistenceWorker) Stop() {
	close(w.done)
}

func (w *PersistenceWorker) run() {
	for {
		select {
		case <-w.done:
			return
		case cmd := <-w.cmds:
			switch c := cmd.(type) {
			case SaveSnapshot:
				err := w.save(c)
				if err != nil {
					log.Printf("[PERSIST] Save failed for game %s: %v", c.GameID, err)
				}
				if c.ReplyTo != nil {
					c.ReplyTo <- SnapshotSaved{GameID: c.GameID, Err: err}
				}
			case LoadSnapshot:
				state, found, err := w.load(c)
				if err != nil {
					log.Printf("[PERSIST] Load failed for game %s: %v", c.GameID, err)
				}
				if c.ReplyTo != nil {
					c.ReplyTo <- SnapshotLoaded{GameID: c.GameID, State: state, Found: found, Err: err}
				}
			default:
				log.Printf("[PERSIST] Ignoring unexpected command %T", cmd)
			}
		}
	}
}

func (w *PersistenceWorker) save(c SaveSnapshot) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during snapshot save: %v", r)
		}
	}()
	return w.repo.Save(context.Background(), c.GameID, c.GameType, c.State)
}

func (w *PersistenceWorker) load(c LoadSnapshot) (state State, found bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during snapshot load: %v", r)
		}
	}()
	return w.repo.Load(context.Background(), c.GameID, c.GameType)
}
