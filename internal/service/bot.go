package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

var (
	ErrBotNotFound      = errors.New("bot player not found")
	ErrNoAvailableMoves = errors.New("no available moves")
)

type BotService interface {
	MakeTurn(game *entity.Game) error
	SuggestTurn(board tictactoe.Board) (tictactoe.Move, error)
}

type botService struct {
	logger *slog.Logger
}

// NewBotService - creates the bot that always plays the minimax move.
func NewBotService(logger *slog.Logger) BotService {
	return &botService{
		logger: logger,
	}
}

func (that *botService) MakeTurn(game *entity.Game) error {
	botPlayer := game.Bot()
	if botPlayer == nil {
		return ErrBotNotFound
	}

	move, err := that.SuggestTurn(game.Board)
	if err != nil {
		return err
	}

	if err = game.MakeTurn(botPlayer.Mark, move); err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	that.logger.Debug("bot made turn", "gameID", game.ID, "mark", botPlayer.Mark, "move", move)

	return nil
}

// SuggestTurn - returns the optimal move for the side to move on the board.
func (that *botService) SuggestTurn(board tictactoe.Board) (tictactoe.Move, error) {
	move, ok := tictactoe.Minimax(board)
	if !ok {
		return tictactoe.Move{}, ErrNoAvailableMoves
	}

	return move, nil
}
