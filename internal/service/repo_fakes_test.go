package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// memStore keeps JSON copies so tests see the same aliasing rules as Redis.
type memStore struct {
	mu      sync.Mutex
	games   map[string][]byte
	players map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{
		games:   map[string][]byte{},
		players: map[string][]byte{},
	}
}

type memGameRepo struct{ *memStore }

func (that memGameRepo) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()
	that.games[game.ID] = data

	return nil
}

func (that memGameRepo) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	data, ok := that.games[id]
	that.mu.Unlock()

	if !ok {
		return nil, repository.ErrGameNotFound
	}

	var game entity.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}

	return &game, nil
}

func (that memGameRepo) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return repository.ErrGameNotFound
	}
	delete(that.games, id)

	return nil
}

type memPlayerRepo struct{ *memStore }

func (that memPlayerRepo) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()
	that.players[player.ID] = data

	return nil
}

func (that memPlayerRepo) GetByID(_ context.Context, id string) (*entity.Player, error) {
	that.mu.Lock()
	data, ok := that.players[id]
	that.mu.Unlock()

	if !ok {
		return nil, repository.ErrPlayerNotFound
	}

	var player entity.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}

	return &player, nil
}

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)

	player, _ := args.Get(0).(*entity.Player)

	return player, args.Error(1)
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)

	game, _ := args.Get(0).(*entity.Game)

	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

var errBotBroken = errors.New("bot is broken")

type brokenBot struct{}

func (brokenBot) MakeTurn(*entity.Game) error {
	return errBotBroken
}

func (brokenBot) SuggestTurn(tictactoe.Board) (tictactoe.Move, error) {
	return tictactoe.Move{}, errBotBroken
}
