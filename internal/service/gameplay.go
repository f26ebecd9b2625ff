package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

type GamePlayService interface {
	GetOrCreateGame(ctx context.Context, playerID, gameType string, mark tictactoe.Player) (*entity.Game, error)
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	LeaveGame(ctx context.Context, playerID string) (*entity.Game, error)

	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, move tictactoe.Move) (*entity.Game, error)
	Hint(ctx context.Context, playerID string) (tictactoe.Move, error)

	CleanupGame(ctx context.Context, game *entity.Game)
}

type gamePlayService struct {
	logger *slog.Logger

	playerService PlayerService
	gameService   GameService
	botService    BotService
}

func NewGamePlayService(logger *slog.Logger, playerService PlayerService, gameService GameService, botService BotService) GamePlayService {
	return &gamePlayService{
		logger:        logger,
		playerService: playerService,
		gameService:   gameService,
		botService:    botService,
	}
}

// GetOrCreateGame - returns the game the player is seated in or creates a new one.
// In a bot game an empty mark is drawn at random, and the bot opens when it plays X.
func (that *gamePlayService) GetOrCreateGame(ctx context.Context, playerID, gameType string, mark tictactoe.Player) (*entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID != "" {
		game, err := that.gameService.GetGameByID(ctx, player.GameID)
		if err == nil {
			return game, nil
		}

		if !errors.Is(err, repository.ErrGameNotFound) {
			return nil, fmt.Errorf("failed to get game: %w", err)
		}

		// the stored game has expired, the player is free again
		that.logger.Debug("player game expired", "player", player.ID, "gameID", player.GameID)
	}

	game, err := that.createGame(ctx, player, gameType, mark)
	if err != nil {
		return nil, fmt.Errorf("failed to create new game: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) createGame(ctx context.Context, player *entity.Player, gameType string, mark tictactoe.Player) (*entity.Game, error) {
	if gameType == entity.WithBotType && mark == tictactoe.NoPlayer {
		mark, _ = entity.GetRandomMarks()
	}

	game, err := that.gameService.CreateGame(ctx, player, gameType, mark)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	if game.IsWithBot() {
		if err = that.addBotToGame(ctx, game, player); err != nil {
			that.CleanupGame(ctx, game)
			return nil, fmt.Errorf("failed to add bot to game: %w", err)
		}
	}

	return game, nil
}

func (that *gamePlayService) addBotToGame(ctx context.Context, game *entity.Game, player *entity.Player) error {
	botPlayer := entity.NewBotPlayer(game.ID, player.Mark.Opponent())

	game.Players = append(game.Players, botPlayer)
	game.UpdateGameState()

	if botPlayer.Mark == tictactoe.X {
		if err := that.botService.MakeTurn(game); err != nil {
			return fmt.Errorf("bot failed to make first turn: %w", err)
		}
	}

	if err := that.gameService.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("failed to update game with bot: %w", err)
	}

	return nil
}

// JoinGameByID - seats the player on the free mark of a waiting private game.
func (that *gamePlayService) JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == game.ID {
		return game, nil
	}

	if player.GameID != "" {
		return nil, fmt.Errorf("%w: player %s is in game %s", apperror.ErrGameAlreadyExists, player.ID, player.GameID)
	}

	if game.IsWithBot() || !game.IsWaiting() || len(game.Players) != 1 {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameIsFull, gameID)
	}

	player.GameID = game.ID
	player.Mark = game.Players[0].Mark.Opponent()
	if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	game.Players = append(game.Players, player)
	game.UpdateGameState()
	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error) {
	_, game, err := that.activeGame(ctx, playerID)
	if err != nil {
		return nil, err
	}

	return game, nil
}

// MakeTurn - applies the player's move and, in a bot game, the bot's answer.
// Players are released once the game is over; the finished game stays readable until it expires.
func (that *gamePlayService) MakeTurn(ctx context.Context, playerID string, move tictactoe.Move) (*entity.Game, error) {
	player, game, err := that.activeGame(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if err = game.MakeTurn(player.Mark, move); err != nil {
		return game, fmt.Errorf("failed to make turn: %w", err)
	}

	if !game.IsFinished() && game.IsWithBot() {
		if err = that.botService.MakeTurn(game); err != nil {
			return nil, fmt.Errorf("bot failed to make turn: %w", err)
		}
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if game.IsFinished() {
		that.logger.Info("game finished", "gameID", game.ID, "winner", game.Winner)
		that.releasePlayers(ctx, game)
	}

	return game, nil
}

// Hint - returns the minimax move for the player whose turn it is.
func (that *gamePlayService) Hint(ctx context.Context, playerID string) (tictactoe.Move, error) {
	player, game, err := that.activeGame(ctx, playerID)
	if err != nil {
		return tictactoe.Move{}, err
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return tictactoe.Move{}, err
	}

	if game.Turn != player.Mark {
		return tictactoe.Move{}, apperror.ErrNotYourTurn
	}

	move, err := that.botService.SuggestTurn(game.Board)
	if err != nil {
		return tictactoe.Move{}, fmt.Errorf("failed to suggest turn: %w", err)
	}

	return move, nil
}

// LeaveGame - drops the player's current game for everybody seated in it.
func (that *gamePlayService) LeaveGame(ctx context.Context, playerID string) (*entity.Game, error) {
	_, game, err := that.activeGame(ctx, playerID)
	if err != nil {
		return nil, err
	}

	that.CleanupGame(ctx, game)

	return game, nil
}

func (that *gamePlayService) CleanupGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "cleanupGame", "gameID", game.ID)

	if err := that.gameService.DeleteGame(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	that.releasePlayers(ctx, game)
}

func (that *gamePlayService) releasePlayers(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "releasePlayers", "gameID", game.ID)

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		released := &entity.Player{ID: player.ID}
		if err := that.playerService.UpdatePlayer(ctx, released); err != nil {
			log.Error("failed to update", "player", player.ID, "error", err)
		}
	}
}

func (that *gamePlayService) activeGame(ctx context.Context, playerID string) (*entity.Player, *entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, nil, apperror.ErrNoActiveGame
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return player, game, nil
}
