package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy327/game-service/internal/api"
	"github.com/andy327/game-service/internal/auth"
	"github.com/andy327/game-service/internal/config"
	"github.com/andy327/game-service/internal/game"
	"github.com/andy327/game-service/internal/game/tictactoe"
	"github.com/andy327/game-service/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testCfg = &config.Config{
	JWTSecret:         "handler-test-secret",
	JWTTTLMinutes:     60,
	AskTimeoutSeconds: 2,
}

type testServer struct {
	router *gin.Engine
	alice  models.Player
	bob    models.Player
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	registry := game.NewRegistry(tictactoe.NewModule())
	repo := game.NewRepository(db, registry)
	require.NoError(t, repo.Init(context.Background()))

	persist := game.NewPersistenceWorker(repo)
	t.Cleanup(persist.Stop)

	sup := game.NewSupervisor(registry, repo, persist, nil, 0)
	t.Cleanup(sup.Stop)
	select {
	case <-sup.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor never became ready")
	}

	router := gin.New()
	api.SetupRoutes(router, sup, registry, nil, testCfg)

	return &testServer{
		router: router,
		alice:  models.Player{ID: uuid.New(), Name: "alice"},
		bob:    models.Player{ID: uuid.New(), Name: "bob"},
	}
}

func (s *testServer) token(t *testing.T, player models.Player) string {
	t.Helper()
	token, err := auth.IssueToken(player, testCfg.JWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body
}

// createStartedGame drives a lobby to IN_PROGRESS and returns its id.
func createStartedGame(t *testing.T, s *testServer) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/lobby/create/tictactoe", s.token(t, s.alice), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	gameID := decodeBody(t, rec)["gameId"].(string)

	rec = s.do(t, http.MethodPost, "/lobby/"+gameID+"/join", s.token(t, s.bob), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/lobby/"+gameID+"/start", s.token(t, s.alice), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return gameID
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "game-service", decodeBody(t, rec)["service"])
}

func TestIssueTokenEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/token", "", map[string]string{"name": "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody(t, rec)["token"].(string)
	require.NotEmpty(t, token)

	// The issued token works against an authenticated endpoint.
	rec = s.do(t, http.MethodGet, "/auth/whoami", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decodeBody(t, rec)["name"])
}

func TestIssueTokenValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/token", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/token", "", map[string]string{"name": "alice", "id": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	paths := []struct{ method, path string }{
		{http.MethodPost, "/lobby/create/tictactoe"},
		{http.MethodPost, "/lobby/" + uuid.NewString() + "/join"},
		{http.MethodPost, "/lobby/" + uuid.NewString() + "/leave"},
		{http.MethodPost, "/lobby/" + uuid.NewString() + "/start"},
		{http.MethodPost, "/tictactoe/" + uuid.NewString() + "/move"},
		{http.MethodGet, "/auth/whoami"},
	}
	for _, p := range paths {
		rec := s.do(t, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)
	}

	// Garbage tokens are rejected the same way.
	rec := s.do(t, http.MethodPost, "/lobby/create/tictactoe", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateLobbyUnknownGameType(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/lobby/create/checkers", s.token(t, s.alice), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLobbyLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/lobby/create/tictactoe", s.token(t, s.alice), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	gameID := decodeBody(t, rec)["gameId"].(string)

	// The fresh lobby is visible in the listing.
	rec = s.do(t, http.MethodGet, "/lobby/list", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lobbies []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lobbies))
	require.Len(t, lobbies, 1)
	assert.Equal(t, gameID, lobbies[0]["gameId"])

	rec = s.do(t, http.MethodPost, "/lobby/"+gameID+"/join", s.token(t, s.bob), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/lobby/"+gameID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "READY_TO_START", decodeBody(t, rec)["status"])

	// Only the host may start.
	rec = s.do(t, http.MethodPost, "/lobby/"+gameID+"/start", s.token(t, s.bob), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/lobby/"+gameID+"/start", s.token(t, s.alice), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/lobby/"+gameID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "IN_PROGRESS", decodeBody(t, rec)["status"])
}

func TestLobbyNotFoundMapsTo404(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/lobby/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/lobby/"+uuid.NewString()+"/join", s.token(t, s.bob), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/lobby/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMoveAndStatusOverHTTP(t *testing.T) {
	s := newTestServer(t)
	gameID := createStartedGame(t, s)

	rec := s.do(t, http.MethodPost, "/tictactoe/"+gameID+"/move", s.token(t, s.alice),
		map[string]int{"row": 0, "col": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "O", body["currentPlayer"])

	// Status is public and reflects the move.
	rec = s.do(t, http.MethodGet, "/tictactoe/"+gameID+"/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	board := decodeBody(t, rec)["board"].([]any)
	assert.Equal(t, "X", board[0].([]any)[0])
}

func TestMoveOutOfTurnMapsTo404(t *testing.T) {
	s := newTestServer(t)
	gameID := createStartedGame(t, s)

	rec := s.do(t, http.MethodPost, "/tictactoe/"+gameID+"/move", s.token(t, s.bob),
		map[string]int{"row": 0, "col": 0})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "It's not your turn", decodeBody(t, rec)["error"])
}

func TestMoveValidation(t *testing.T) {
	s := newTestServer(t)
	gameID := createStartedGame(t, s)

	// Unknown game type in the path.
	rec := s.do(t, http.MethodPost, "/checkers/"+gameID+"/move", s.token(t, s.alice),
		map[string]int{"row": 0, "col": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed game id.
	rec = s.do(t, http.MethodPost, "/tictactoe/not-a-uuid/move", s.token(t, s.alice),
		map[string]int{"row": 0, "col": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// No match with that id.
	rec = s.do(t, http.MethodPost, "/tictactoe/"+uuid.NewString()+"/move", s.token(t, s.alice),
		map[string]int{"row": 0, "col": 0})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Occupied cell surfaces the game rejection.
	rec = s.do(t, http.MethodPost, "/tictactoe/"+gameID+"/move", s.token(t, s.alice),
		map[string]int{"row": 1, "col": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPost, "/tictactoe/"+gameID+"/move", s.token(t, s.bob),
		map[string]int{"row": 1, "col": 1})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "That cell is already occupied", decodeBody(t, rec)["error"])
}

func TestStatusForUnknownGame(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/tictactoe/"+uuid.NewString()+"/status", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No game found with gameId", decodeBody(t, rec)["error"])
}

func TestPlayToCompletionOverHTTP(t *testing.T) {
	s := newTestServer(t)
	gameID := createStartedGame(t, s)

	moves := []struct {
		player   models.Player
		row, col int
	}{
		{s.alice, 0, 0}, {s.bob, 1, 0},
		{s.alice, 0, 1}, {s.bob, 1, 1},
		{s.alice, 0, 2},
	}
	for _, m := range moves {
		rec := s.do(t, http.MethodPost, fmt.Sprintf("/tictactoe/%s/move", gameID), s.token(t, m.player),
			map[string]int{"row": m.row, "col": m.col})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodGet, "/tictactoe/"+gameID+"/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "X", decodeBody(t, rec)["winner"])

	// Further moves are rejected.
	rec = s.do(t, http.MethodPost, "/tictactoe/"+gameID+"/move", s.token(t, s.bob),
		map[string]int{"row": 2, "col": 2})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "The game is already over.", decodeBody(t, rec)["error"])

	// The lobby ends up COMPLETED.
	require.Eventually(t, func() bool {
		rec := s.do(t, http.MethodGet, "/lobby/"+gameID, "", nil)
		if rec.Code != http.StatusOK {
			return false
		}
		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			return false
		}
		return body["status"] == "COMPLETED"
	}, 2*time.Second, 10*time.Millisecond)
}
