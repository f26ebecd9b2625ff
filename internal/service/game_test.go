package service

import (
	"context"
	"testing"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGameService_CreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Seats the player on X by default", func(t *testing.T) {
		// Given: a repository accepting any game
		repo := &mockGameRepo{}
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		gameService := NewGameService(repo)
		player := &entity.Player{ID: "p1"}

		// When: creating a private game without a mark
		game, err := gameService.CreateGame(ctx, player, entity.PrivateType, tictactoe.NoPlayer)

		// Then: the game waits for a second player with the creator on X
		require.NoError(t, err)
		assert.NotEmpty(t, game.ID)
		assert.Equal(t, entity.StatusWaiting, game.Status)
		assert.Equal(t, tictactoe.X, player.Mark)
		assert.Equal(t, game.ID, player.GameID)
		assert.Equal(t, []*entity.Player{player}, game.Players)
		repo.AssertExpectations(t)
	})

	t.Run("Keeps the requested mark", func(t *testing.T) {
		repo := &mockGameRepo{}
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		gameService := NewGameService(repo)
		player := &entity.Player{ID: "p1"}

		_, err := gameService.CreateGame(ctx, player, entity.WithBotType, tictactoe.O)

		require.NoError(t, err)
		assert.Equal(t, tictactoe.O, player.Mark)
	})

	t.Run("Rejects unknown game types", func(t *testing.T) {
		repo := &mockGameRepo{}
		gameService := NewGameService(repo)

		_, err := gameService.CreateGame(ctx, &entity.Player{ID: "p1"}, "public", tictactoe.X)

		require.ErrorIs(t, err, ErrUnknownGameType)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Returns repository errors", func(t *testing.T) {
		repo := &mockGameRepo{}
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(errStorageIsFull).Once()
		gameService := NewGameService(repo)

		_, err := gameService.CreateGame(ctx, &entity.Player{ID: "p1"}, entity.PrivateType, tictactoe.X)

		require.ErrorIs(t, err, errStorageIsFull)
	})
}

func TestGameService_DeleteGame(t *testing.T) {
	repo := &mockGameRepo{}
	repo.On("DeleteByID", mock.Anything, "g1").Return(errRedisDown).Once()
	gameService := NewGameService(repo)

	err := gameService.DeleteGame(context.Background(), "g1")

	require.ErrorIs(t, err, errRedisDown)
	repo.AssertExpectations(t)
}
