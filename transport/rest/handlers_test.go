package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/service"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGamePlay struct {
	mock.Mock
}

func (that *mockGamePlay) GetOrCreateGame(ctx context.Context, playerID, gameType string, mark tictactoe.Player) (*entity.Game, error) {
	args := that.Called(ctx, playerID, gameType, mark)
	return gameArg(args, 0), args.Error(1)
}

func (that *mockGamePlay) JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, gameID, playerID)
	return gameArg(args, 0), args.Error(1)
}

func (that *mockGamePlay) LeaveGame(ctx context.Context, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, playerID)
	return gameArg(args, 0), args.Error(1)
}

func (that *mockGamePlay) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	args := that.Called(ctx, gameID)
	return gameArg(args, 0), args.Error(1)
}

func (that *mockGamePlay) GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, playerID)
	return gameArg(args, 0), args.Error(1)
}

func (that *mockGamePlay) MakeTurn(ctx context.Context, playerID string, move tictactoe.Move) (*entity.Game, error) {
	args := that.Called(ctx, playerID, move)
	return gameArg(args, 0), args.Error(1)
}

func (that *mockGamePlay) Hint(ctx context.Context, playerID string) (tictactoe.Move, error) {
	args := that.Called(ctx, playerID)
	return args.Get(0).(tictactoe.Move), args.Error(1)
}

func gameArg(args mock.Arguments, i int) *entity.Game {
	game, _ := args.Get(i).(*entity.Game)
	return game
}

type mockPlayers struct {
	mock.Mock
}

func (that *mockPlayers) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type fixture struct {
	gamePlay *mockGamePlay
	players  *mockPlayers
	router   http.Handler
}

func newFixture() *fixture {
	gamePlay := &mockGamePlay{}
	players := &mockPlayers{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return &fixture{
		gamePlay: gamePlay,
		players:  players,
		router:   NewRouter(logger, gamePlay, players),
	}
}

func (that *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	that.router.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))

	return v
}

func TestPing(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/ping", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestSolve(t *testing.T) {
	t.Run("Empty board opens in the corner", func(t *testing.T) {
		f := newFixture()

		rec := f.do(t, http.MethodPost, "/solve", `{"notation": ".../.../..."}`)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[solveResponse](t, rec)
		assert.Equal(t, tictactoe.X, resp.Player)
		assert.False(t, resp.Terminal)
		assert.Equal(t, tictactoe.InProgress, resp.Outcome)
		assert.Equal(t, 0, resp.Value)
		require.NotNil(t, resp.Move)
		assert.Equal(t, tictactoe.Move{Row: 0, Col: 0}, *resp.Move)
	})

	t.Run("Board array takes the win", func(t *testing.T) {
		f := newFixture()

		rec := f.do(t, http.MethodPost, "/solve", `{"board": ["X","X","","O","O","","","",""]}`)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[solveResponse](t, rec)
		assert.Equal(t, "XX./OO./...", resp.Notation)
		assert.Equal(t, 1, resp.Value)
		require.NotNil(t, resp.Move)
		assert.Equal(t, tictactoe.Move{Row: 0, Col: 2}, *resp.Move)
	})

	t.Run("Terminal board has no move", func(t *testing.T) {
		f := newFixture()

		rec := f.do(t, http.MethodPost, "/solve", `{"notation": "XXX/OO./..."}`)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[solveResponse](t, rec)
		assert.True(t, resp.Terminal)
		assert.Equal(t, tictactoe.X, resp.Winner)
		assert.Equal(t, 1, resp.Utility)
		assert.Equal(t, tictactoe.XWins, resp.Outcome)
		assert.Nil(t, resp.Move)
		assert.NotContains(t, rec.Body.String(), `"move"`)
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "Unreachable board", body: `{"notation": "XXX/.../..."}`},
		{name: "Short notation", body: `{"notation": "XX"}`},
		{name: "Both forms", body: `{"notation": ".../.../...", "board": ["","","","","","","","",""]}`},
		{name: "Nothing", body: `{}`},
		{name: "Broken JSON", body: `{"notation":`},
		{name: "Unknown field", body: `{"grid": "..."}`},
		{name: "Unknown mark", body: `{"board": ["Z","","","","","","","",""]}`},
		{name: "Short board", body: `{"board": ["X"]}`},
		{name: "Long board", body: `{"board": ["X","","","","","","","","","O","O"]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()

			rec := f.do(t, http.MethodPost, "/solve", tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[errorResponse](t, rec).Error)
		})
	}
}

func TestCreatePlayer(t *testing.T) {
	t.Run("Without body registers a new player", func(t *testing.T) {
		f := newFixture()
		f.players.On("GetOrCreatePlayer", mock.Anything, "").Return(&entity.Player{ID: "p1"}, nil)

		rec := f.do(t, http.MethodPost, "/players", "")

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "p1", decode[entity.Player](t, rec).ID)
		f.players.AssertExpectations(t)
	})

	t.Run("With id", func(t *testing.T) {
		f := newFixture()
		f.players.On("GetOrCreatePlayer", mock.Anything, "p2").Return(&entity.Player{ID: "p2"}, nil)

		rec := f.do(t, http.MethodPost, "/players", `{"id": "p2"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "p2", decode[entity.Player](t, rec).ID)
	})

	t.Run("Empty chunked body registers a new player", func(t *testing.T) {
		f := newFixture()
		f.players.On("GetOrCreatePlayer", mock.Anything, "").Return(&entity.Player{ID: "p3"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/players", strings.NewReader(""))
		req.ContentLength = -1
		req.TransferEncoding = []string{"chunked"}
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "p3", decode[entity.Player](t, rec).ID)
	})

	t.Run("Reserved id is refused", func(t *testing.T) {
		f := newFixture()
		f.players.On("GetOrCreatePlayer", mock.Anything, "bot:mallory").
			Return(nil, fmt.Errorf("%w: %q", service.ErrReservedPlayerID, "bot:mallory"))

		rec := f.do(t, http.MethodPost, "/players", `{"id": "bot:mallory"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Storage failure is hidden", func(t *testing.T) {
		f := newFixture()
		f.players.On("GetOrCreatePlayer", mock.Anything, "").Return(nil, fmt.Errorf("redis is down"))

		rec := f.do(t, http.MethodPost, "/players", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "redis")
	})
}

func TestCreateGame(t *testing.T) {
	t.Run("Defaults to a bot game", func(t *testing.T) {
		f := newFixture()
		game := entity.NewGame("g1", entity.WithBotType)
		game.Players = []*entity.Player{
			{ID: "p1", Mark: tictactoe.O, GameID: "g1"},
			entity.NewBotPlayer("g1", tictactoe.X),
		}
		f.gamePlay.On("GetOrCreateGame", mock.Anything, "p1", entity.WithBotType, tictactoe.O).Return(game, nil)

		rec := f.do(t, http.MethodPost, "/games", `{"player_id": "p1", "mark": "O"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		resp := decode[gameResponse](t, rec)
		assert.Equal(t, "g1", resp.Game.ID)
		assert.Nil(t, resp.Game.Players)
		require.NotNil(t, resp.Player)
		assert.Equal(t, "p1", resp.Player.ID)
		assert.Equal(t, tictactoe.O, resp.Player.Mark)
		f.gamePlay.AssertExpectations(t)
	})

	t.Run("Player id is required", func(t *testing.T) {
		f := newFixture()

		rec := f.do(t, http.MethodPost, "/games", `{"type": "private"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.gamePlay.AssertNotCalled(t, "GetOrCreateGame")
	})

	t.Run("Unknown mark", func(t *testing.T) {
		f := newFixture()

		rec := f.do(t, http.MethodPost, "/games", `{"player_id": "p1", "mark": "Y"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetGame(t *testing.T) {
	// Given: a waiting private game with its creator seated
	f := newFixture()
	game := entity.NewGame("g1", entity.PrivateType)
	game.Players = []*entity.Player{{ID: "secret-session-id", Mark: tictactoe.X, GameID: "g1"}}
	f.gamePlay.On("GetGame", mock.Anything, "g1").Return(game, nil)
	f.gamePlay.On("GetGame", mock.Anything, "nope").Return(nil, fmt.Errorf("failed: %w", repository.ErrGameNotFound))

	// When: anybody who knows the game id reads it
	rec := f.do(t, http.MethodGet, "/games/g1", "")

	// Then: the state is visible but no seat ids are
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[gameResponse](t, rec)
	assert.Equal(t, entity.StatusWaiting, resp.Game.Status)
	assert.Nil(t, resp.Player)
	assert.NotContains(t, rec.Body.String(), "secret-session-id")
	assert.NotContains(t, rec.Body.String(), `"players"`)
	assert.Len(t, game.Players, 1)

	rec = f.do(t, http.MethodGet, "/games/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJoinGame(t *testing.T) {
	t.Run("Joiner gets its own seat only", func(t *testing.T) {
		f := newFixture()
		game := entity.NewGame("g1", entity.PrivateType)
		game.Players = []*entity.Player{
			{ID: "creator-id", Mark: tictactoe.X, GameID: "g1"},
			{ID: "p2", Mark: tictactoe.O, GameID: "g1"},
		}
		game.UpdateGameState()
		f.gamePlay.On("JoinGameByID", mock.Anything, "g1", "p2").Return(game, nil)

		rec := f.do(t, http.MethodPost, "/games/g1/join", `{"player_id": "p2"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[gameResponse](t, rec)
		assert.Equal(t, entity.StatusOngoing, resp.Game.Status)
		require.NotNil(t, resp.Player)
		assert.Equal(t, "p2", resp.Player.ID)
		assert.NotContains(t, rec.Body.String(), "creator-id")
	})

	f := newFixture()
	f.gamePlay.On("JoinGameByID", mock.Anything, "g1", "p2").Return(nil, apperror.ErrGameIsFull)

	rec := f.do(t, http.MethodPost, "/games/g1/join", `{"player_id": "p2"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, apperror.ErrGameIsFull.Error())
}

func TestMakeTurn(t *testing.T) {
	seated := func(f *fixture) {
		f.gamePlay.On("GetGameByPlayerID", mock.Anything, "p1").Return(&entity.Game{ID: "g1"}, nil)
	}

	t.Run("Applies the move", func(t *testing.T) {
		f := newFixture()
		seated(f)
		after := entity.NewGame("g1", entity.WithBotType)
		after.Status = entity.StatusOngoing
		f.gamePlay.On("MakeTurn", mock.Anything, "p1", tictactoe.Move{Row: 1, Col: 1}).Return(after, nil)

		rec := f.do(t, http.MethodPost, "/games/g1/turn", `{"player_id": "p1", "row": 1, "col": 1}`)

		require.Equal(t, http.StatusOK, rec.Code)
		f.gamePlay.AssertExpectations(t)
	})

	t.Run("Row zero is still sent", func(t *testing.T) {
		f := newFixture()
		seated(f)
		f.gamePlay.On("MakeTurn", mock.Anything, "p1", tictactoe.Move{Row: 0, Col: 0}).Return(&entity.Game{ID: "g1"}, nil)

		rec := f.do(t, http.MethodPost, "/games/g1/turn", `{"player_id": "p1", "row": 0, "col": 0}`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Missing coordinates", func(t *testing.T) {
		f := newFixture()

		rec := f.do(t, http.MethodPost, "/games/g1/turn", `{"player_id": "p1", "row": 1}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Player sits in another game", func(t *testing.T) {
		f := newFixture()
		seated(f)

		rec := f.do(t, http.MethodPost, "/games/g2/turn", `{"player_id": "p1", "row": 1, "col": 1}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		f.gamePlay.AssertNotCalled(t, "MakeTurn")
	})

	errTests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "Occupied cell", err: fmt.Errorf("failed: %w", apperror.ErrInvalidMove), status: http.StatusBadRequest},
		{name: "Not your turn", err: apperror.ErrNotYourTurn, status: http.StatusBadRequest},
		{name: "Finished game", err: apperror.ErrGameFinished, status: http.StatusConflict},
		{name: "Waiting game", err: apperror.ErrGameIsNotStarted, status: http.StatusConflict},
	}

	for _, tc := range errTests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			seated(f)
			f.gamePlay.On("MakeTurn", mock.Anything, "p1", mock.Anything).Return(nil, tc.err)

			rec := f.do(t, http.MethodPost, "/games/g1/turn", `{"player_id": "p1", "row": 2, "col": 2}`)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestHint(t *testing.T) {
	t.Run("Returns the suggested move", func(t *testing.T) {
		f := newFixture()
		f.gamePlay.On("GetGameByPlayerID", mock.Anything, "p1").Return(&entity.Game{ID: "g1"}, nil)
		f.gamePlay.On("Hint", mock.Anything, "p1").Return(tictactoe.Move{Row: 2, Col: 1}, nil)

		rec := f.do(t, http.MethodGet, "/games/g1/hint?player_id=p1", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tictactoe.Move{Row: 2, Col: 1}, decode[hintResponse](t, rec).Move)
	})

	t.Run("Player without a game", func(t *testing.T) {
		f := newFixture()
		f.gamePlay.On("GetGameByPlayerID", mock.Anything, "p1").Return(nil, apperror.ErrNoActiveGame)

		rec := f.do(t, http.MethodGet, "/games/g1/hint?player_id=p1", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Player id is required", func(t *testing.T) {
		f := newFixture()

		rec := f.do(t, http.MethodGet, "/games/g1/hint", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLeaveGame(t *testing.T) {
	f := newFixture()
	f.gamePlay.On("GetGameByPlayerID", mock.Anything, "p1").Return(&entity.Game{ID: "g1"}, nil)
	f.gamePlay.On("LeaveGame", mock.Anything, "p1").Return(&entity.Game{ID: "g1"}, nil)

	rec := f.do(t, http.MethodDelete, "/games/g1?player_id=p1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	f.gamePlay.AssertExpectations(t)
}
