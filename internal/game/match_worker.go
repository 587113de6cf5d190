package game

import (
	"log"

	"github.com/google/uuid"

	"github.com/andy327/game-service/internal/models"
)

// OpResult is a match worker's reply to one operation: a state view on
// success, a GameError on rejection.
type OpResult struct {
	View any
	Err  GameError
}

type matchCommand struct {
	Op      Operation
	ReplyTo chan<- OpResult
}

// CompletionFunc is called (fire-and-forget) when a match reaches a terminal
// status.
type CompletionFunc func(gameID uuid.UUID, status models.LobbyStatus)

// EventPublisher receives lifecycle and state events. Implementations must
// be safe for concurrent use; a nil publisher disables publishing.
type EventPublisher interface {
	Publish(eventType string, gameID uuid.UUID, payload any)
}

// MatchWorker owns exactly one live match. All state transitions happen on
// its single goroutine: commands are processed strictly in FIFO order, and a
// GetState observes every previously accepted move. Snapshot saving is fire
// and forget; the move acknowledgement never waits on the database.
type MatchWorker struct {
	gameID     uuid.UUID
	module     Module
	state      State
	persist    *PersistenceWorker
	onComplete CompletionFunc
	events     EventPublisher

	cmds  chan matchCommand
	saves chan SnapshotSaved
	done  chan struct{}
}

// NewMatchWorker starts a worker goroutine around an initial state. The
// state may come from a module factory (fresh match) or from a restored
// snapshot; the worker does not distinguish.
func NewMatchWorker(gameID uuid.UUID, module Module, state State, persist *PersistenceWorker, onComplete CompletionFunc, events EventPublisher) *MatchWorker {
	w := &MatchWorker{
		gameID:     gameID,
		module:     module,
		state:      state,
		persist:    persist,
		onComplete: onComplete,
		events:     events,
		cmds:       make(chan matchCommand, 64),
		saves:      make(chan SnapshotSaved, 64),
		done:       make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit enqueues an operation; the reply arrives on replyTo. Returns false
// if the worker has stopped.
func (w *MatchWorker) Submit(op Operation, replyTo chan<- OpResult) bool {
	select {
	case <-w.done:
		return false
	default:
	}
	select {
	case w.cmds <- matchCommand{Op: op, ReplyTo: replyTo}:
		return true
	case <-w.done:
		return false
	}
}

// Stop terminates the worker goroutine.
func (w *MatchWorker) Stop() {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
}

func (w *MatchWorker) run() {
	for {
		select {
		case <-w.done:
			return
		case saved := <-w.saves:
			// Observation only: persistence outcomes never change game state.
			if saved.Err != nil {
				log.Printf("[MATCH %s] Snapshot save failed: %v", w.gameID, saved.Err)
			}
		case cmd := <-w.cmds:
			w.handle(cmd)
		}
	}
}

func (w *MatchWorker) handle(cmd matchCommand) {
	switch op := cmd.Op.(type) {
	case MakeMove:
		w.handleMove(op, cmd.ReplyTo)
	case GetState:
		reply(cmd.ReplyTo, OpResult{View: w.module.View(w.state)})
	default:
		log.Printf("[MATCH %s] Ignoring unexpected operation %T", w.gameID, cmd.Op)
	}
}

func (w *MatchWorker) handleMove(op MakeMove, replyTo chan<- OpResult) {
	if w.state.Status().Terminal() {
		reply(replyTo, OpResult{Err: GameOverError{}})
		return
	}

	known := false
	for _, p := range w.state.Players() {
		if p.ID == op.PlayerID {
			known = true
			break
		}
	}
	if !known {
		reply(replyTo, OpResult{Err: InvalidPlayerError{PlayerID: op.PlayerID}})
		return
	}
	if current, ok := w.state.CurrentPlayer(); !ok || current.ID != op.PlayerID {
		reply(replyTo, OpResult{Err: InvalidTurnError{}})
		return
	}

	next, gerr := w.state.Apply(op.PlayerID, op.Move)
	if gerr != nil {
		reply(replyTo, OpResult{Err: gerr})
		return
	}

	// Ack leads persistence: the snapshot is fired before the reply but the
	// reply never waits on it.
	w.persist.Send(SaveSnapshot{
		GameID:   w.gameID,
		GameType: w.module.Type(),
		State:    next,
		ReplyTo:  w.saves,
	})

	w.state = next
	view := w.module.View(next)
	reply(replyTo, OpResult{View: view})

	if w.events != nil {
		w.events.Publish("game_state", w.gameID, view)
	}

	if next.Status().Terminal() {
		log.Printf("[MATCH %s] Match reached terminal status %s", w.gameID, next.Status().Kind)
		if w.onComplete != nil {
			go w.onComplete(w.gameID, models.StatusCompleted)
		}
	}
}

func reply(ch chan<- OpResult, res OpResult) {
	if ch != nil {
		ch <- res
	}
}
