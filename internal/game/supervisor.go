package game

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/andy327/game-service/internal/models"
)

// DefaultStashSize bounds how many commands may queue up while the
// supervisor is still restoring snapshots.
const DefaultStashSize = 128

// lobbyEntry pairs the lobby metadata with the players' join order, which
// fixes seat assignment when the match starts.
type lobbyEntry struct {
	meta  models.LobbyMetadata
	order []uuid.UUID
}

type matchEntry struct {
	gameType models.GameType
	worker   *MatchWorker
}

// Supervisor owns the lobby table and the live-match index. It is the single
// point of ordering for lobby and match-index mutations: one goroutine
// processes commands strictly sequentially, and the maps are never exposed.
//
// The supervisor starts Initializing, kicks off loadAll in the background,
// stashes every command that arrives meanwhile (bounded), and becomes
// Running once the restore result is in. Only matches are restored; lobby
// state is ephemeral across restarts.
type Supervisor struct {
	registry  *Registry
	repo      *Repository
	persist   *PersistenceWorker
	events    EventPublisher
	stashSize int

	cmds  chan Command
	done  chan struct{}
	ready chan struct{}

	// owned by the run goroutine
	running bool
	stash   []Command
	lobbies map[uuid.UUID]*lobbyEntry
	matches map[uuid.UUID]matchEntry
}

// NewSupervisor starts the supervisor and its snapshot restore. Ready()
// closes once restore has finished and stashed commands are drained.
func NewSupervisor(registry *Registry, repo *Repository, persist *PersistenceWorker, events EventPublisher, stashSize int) *Supervisor {
	if stashSize <= 0 {
		stashSize = DefaultStashSize
	}
	s := &Supervisor{
		registry:  registry,
		repo:      repo,
		persist:   persist,
		events:    events,
		stashSize: stashSize,
		cmds:      make(chan Command, 256),
		done:      make(chan struct{}),
		ready:     make(chan struct{}),
		lobbies:   make(map[uuid.UUID]*lobbyEntry),
		matches:   make(map[uuid.UUID]matchEntry),
	}
	go s.run()
	go s.restore()
	return s
}

// Ready closes once the supervisor is Running.
func (s *Supervisor) Ready() <-chan struct{} { return s.ready }

// Send enqueues a command. Returns false after Stop.
func (s *Supervisor) Send(cmd Command) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.cmds <- cmd:
		return true
	case <-s.done:
		return false
	}
}

// Ask sends a command expecting a reply and waits up to timeout for it. The
// command must carry replyTo as its reply channel.
func (s *Supervisor) Ask(cmd Command, replyTo <-chan Response, timeout time.Duration) (Response, bool) {
	if !s.Send(cmd) {
		return nil, false
	}
	select {
	case res := <-replyTo:
		return res, true
	case <-time.After(timeout):
		// The worker still processes the command; its reply is discarded.
		return nil, false
	}
}

// Stop shuts down the supervisor and every match worker.
func (s *Supervisor) Stop() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *Supervisor) restore() {
	games, err := s.repo.LoadAll(context.Background())
	select {
	case s.cmds <- restoreLoaded{Games: games, Err: err}:
	case <-s.done:
	}
}

func (s *Supervisor) run() {
	for {
		select {
		case <-s.done:
			for id, m := range s.matches {
				m.worker.Stop()
				delete(s.matches, id)
			}
			return
		case cmd := <-s.cmds:
			if s.running {
				s.handle(cmd)
				continue
			}
			if rl, ok := cmd.(restoreLoaded); ok {
				s.finishRestore(rl)
				continue
			}
			if len(s.stash) >= s.stashSize {
				log.Fatalf("[SUPERVISOR] Stash overflow during restore (size %d); increase SUPERVISOR_STASH_SIZE", s.stashSize)
			}
			s.stash = append(s.stash, cmd)
		}
	}
}

func (s *Supervisor) finishRestore(rl restoreLoaded) {
	if rl.Err != nil {
		// Degrade to restoring nothing; the server still comes up.
		log.Printf("[RESTORE] loadAll failed, starting with no matches: %v", rl.Err)
	}
	for id, stored := range rl.Games {
		module, ok := s.registry.Lookup(stored.Type)
		if !ok {
			log.Printf("[RESTORE] Skipping game %s: no module for type %q", id, stored.Type)
			continue
		}
		worker := NewMatchWorker(id, module, stored.State, s.persist, s.notifyCompleted, s.events)
		s.matches[id] = matchEntry{gameType: stored.Type, worker: worker}
	}
	log.Printf("[RESTORE] Restored %d matches; replaying %d stashed commands", len(s.matches), len(s.stash))

	s.running = true
	stash := s.stash
	s.stash = nil
	for _, cmd := range stash {
		s.handle(cmd)
	}
	close(s.ready)
}

// notifyCompleted is invoked from match worker goroutines.
func (s *Supervisor) notifyCompleted(gameID uuid.UUID, status models.LobbyStatus) {
	s.Send(gameCompleted{GameID: gameID, Status: status})
}

func (s *Supervisor) handle(cmd Command) {
	switch c := cmd.(type) {
	case CreateLobby:
		s.handleCreateLobby(c)
	case JoinLobby:
		s.handleJoinLobby(c)
	case LeaveLobby:
		s.handleLeaveLobby(c)
	case StartGame:
		s.handleStartGame(c)
	case ListLobbies:
		s.handleListLobbies(c)
	case GetLobbyInfo:
		s.handleGetLobbyInfo(c)
	case RunGameOperation:
		s.handleRunGameOperation(c)
	case gameCompleted:
		s.handleGameCompleted(c)
	case restoreLoaded:
		log.Printf("[SUPERVISOR] Ignoring duplicate restore result")
	default:
		log.Printf("[SUPERVISOR] Ignoring unexpected command %T", cmd)
	}
}

func (s *Supervisor) handleCreateLobby(c CreateLobby) {
	gameID := uuid.New()
	entry := &lobbyEntry{
		meta: models.LobbyMetadata{
			GameID:   gameID,
			GameType: c.GameType,
			Players:  map[uuid.UUID]models.Player{c.Host.ID: c.Host},
			HostID:   c.Host.ID,
			Status:   models.StatusWaitingForPlayers,
		},
		order: []uuid.UUID{c.Host.ID},
	}
	s.lobbies[gameID] = entry
	log.Printf("[SUPERVISOR] Lobby %s created for %s by %s", gameID, c.GameType.ShortName(), c.Host.ID)
	s.publish("lobby_created", gameID, entry.meta.Copy())
	sendResponse(c.ReplyTo, LobbyCreated{GameID: gameID, Host: c.Host})
}

func (s *Supervisor) handleJoinLobby(c JoinLobby) {
	entry, ok := s.lobbies[c.GameID]
	if !ok {
		sendResponse(c.ReplyTo, ErrorResponse{Message: "No such lobby", NotFound: true})
		return
	}
	if !entry.meta.Status.Joinable() {
		sendResponse(c.ReplyTo, ErrorResponse{Message: "game already started or ended"})
		return
	}
	if _, joined := entry.meta.Players[c.Player.ID]; joined {
		sendResponse(c.ReplyTo, ErrorResponse{Message: "already in game"})
		return
	}
	if len(entry.meta.Players) >= entry.meta.GameType.MaxPlayers() {
		sendResponse(c.ReplyTo, ErrorResponse{Message: "lobby is full"})
		return
	}

	entry.meta.Players[c.Player.ID] = c.Player
	entry.order = append(entry.order, c.Player.ID)
	entry.meta.Status = lobbyStatusFor(entry)
	log.Printf("[SUPERVISOR] Player %s joined lobby %s (%d/%d)", c.Player.ID, c.GameID,
		len(entry.meta.Players), entry.meta.GameType.MaxPlayers())
	s.publish("lobby_joined", c.GameID, entry.meta.Copy())
	sendResponse(c.ReplyTo, LobbyJoined{GameID: c.GameID, Lobby: entry.meta.Copy(), Player: c.Player})
}

func (s *Supervisor) handleLeaveLobby(c LeaveLobby) {
	entry, ok := s.lobbies[c.GameID]
	if !ok {
		sendResponse(c.ReplyTo, ErrorResponse{Message: "No such lobby", NotFound: true})
		return
	}
	if !entry.meta.Status.Joinable() {
		// Started or ended lobbies are not mutated by a leave.
		sendResponse(c.ReplyTo, LobbyLeft{GameID: c.GameID, Message: "left lobby"})
		return
	}

	if _, present := entry.meta.Players[c.Player.ID]; present {
		delete(entry.meta.Players, c.Player.ID)
		for i, id := range entry.order {
			if id == c.Player.ID {
				entry.order = append(entry.order[:i], entry.order[i+1:]...)
				break
			}
		}
	}

	if c.Player.ID == entry.meta.HostID {
		entry.meta.Status = models.StatusCancelled
		log.Printf("[SUPERVISOR] Host left lobby %s; lobby cancelled", c.GameID)
		s.publish("lobby_left", c.GameID, entry.meta.Copy())
		sendResponse(c.ReplyTo, LobbyLeft{GameID: c.GameID, Message: "host left"})
		return
	}

	entry.meta.Status = lobbyStatusFor(entry)
	s.publish("lobby_left", c.GameID, entry.meta.Copy())
	sendResponse(c.ReplyTo, LobbyLeft{GameID: c.GameID, Message: "left lobby"})
}

func (s *Supervisor) handleStartGame(c StartGame) {
	entry, ok := s.lobbies[c.GameID]
	if !ok {
		sendResponse(c.ReplyTo, ErrorResponse{Message: "No such game", NotFound: true})
		return
	}
	if c.CallerID != entry.meta.HostID || entry.meta.Status != models.StatusReadyToStart {
		sendResponse(c.ReplyTo, ErrorResponse{Message: "Only host can start, and game must be ready to start"})
		return
	}

	module, ok := s.registry.Lookup(entry.meta.GameType)
	if !ok {
		sendResponse(c.ReplyTo, ErrorResponse{Message: "unsupported game type"})
		return
	}

	players := make([]models.Player, 0, len(entry.order))
	for _, id := range entry.order {
		players = append(players, entry.meta.Players[id])
	}
	state, err := module.NewMatchState(players)
	if err != nil {
		log.Printf("[SUPERVISOR] Failed to create match for lobby %s: %v", c.GameID, err)
		sendResponse(c.ReplyTo, ErrorResponse{Message: err.Error()})
		return
	}

	worker := NewMatchWorker(c.GameID, module, state, s.persist, s.notifyCompleted, s.events)
	s.matches[c.GameID] = matchEntry{gameType: entry.meta.GameType, worker: worker}
	entry.meta.Status = models.StatusInProgress

	// Fire-and-forget initial snapshot; a save failure is logged but does
	// not prevent the match from starting.
	s.persist.Send(SaveSnapshot{GameID: c.GameID, GameType: entry.meta.GameType, State: state})

	log.Printf("[SUPERVISOR] Game %s started with %d players", c.GameID, len(players))
	s.publish("game_started", c.GameID, entry.meta.Copy())
	sendResponse(c.ReplyTo, GameStarted{GameID: c.GameID})
}

func (s *Supervisor) handleListLobbies(c ListLobbies) {
	lobbies := make([]models.LobbyMetadata, 0, len(s.lobbies))
	for _, entry := range s.lobbies {
		if entry.meta.Status.Joinable() {
			lobbies = append(lobbies, entry.meta.Copy())
		}
	}
	sendResponse(c.ReplyTo, LobbiesListed{Lobbies: lobbies})
}

func (s *Supervisor) handleGetLobbyInfo(c GetLobbyInfo) {
	entry, ok := s.lobbies[c.GameID]
	if !ok {
		sendResponse(c.ReplyTo, ErrorResponse{Message: "No such lobby", NotFound: true})
		return
	}
	sendResponse(c.ReplyTo, LobbyInfo{Lobby: entry.meta.Copy()})
}

func (s *Supervisor) handleRunGameOperation(c RunGameOperation) {
	match, ok := s.matches[c.GameID]
	if !ok {
		sendResponse(c.ReplyTo, ErrorResponse{Message: "No game found with gameId", NotFound: true})
		return
	}

	// Adapter: translate the worker's game-specific reply into the generic
	// response union off the supervisor loop.
	inner := make(chan OpResult, 1)
	if !match.worker.Submit(c.Op, inner) {
		sendResponse(c.ReplyTo, ErrorResponse{Message: "No game found with gameId", NotFound: true})
		return
	}
	go func() {
		res := <-inner
		if res.Err != nil {
			sendResponse(c.ReplyTo, ErrorResponse{Message: res.Err.Error()})
			return
		}
		sendResponse(c.ReplyTo, GameStatus{View: res.View})
	}()
}

func (s *Supervisor) handleGameCompleted(c gameCompleted) {
	entry, ok := s.lobbies[c.GameID]
	if !ok {
		// Restored matches have no lobby; nothing to update.
		log.Printf("[SUPERVISOR] Match %s completed (no lobby entry)", c.GameID)
		return
	}
	entry.meta.Status = c.Status
	log.Printf("[SUPERVISOR] Match %s completed; lobby marked %s", c.GameID, c.Status)
	s.publish("game_completed", c.GameID, entry.meta.Copy())
	// The worker stays alive so status queries keep answering.
}

func (s *Supervisor) publish(eventType string, gameID uuid.UUID, payload any) {
	if s.events != nil {
		s.events.Publish(eventType, gameID, payload)
	}
}

// lobbyStatusFor recomputes a joinable lobby's status from its player count.
func lobbyStatusFor(entry *lobbyEntry) models.LobbyStatus {
	if len(entry.meta.Players) >= entry.meta.GameType.MinPlayers() {
		return models.StatusReadyToStart
	}
	return models.StatusWaitingForPlayers
}

func sendResponse(ch chan<- Response, res Response) {
	if ch == nil {
		return
	}
	select {
	case ch <- res:
	default:
		// Reply channels are buffered one-shots; a full channel means the
		// caller timed out and the reply is discarded.
	}
}
