package entity

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"

	PlayerTie = "-"
)

const (
	PrivateType = "private"
	WithBotType = "bot"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

type Game struct {
	ID      string           `json:"id"`
	Board   tictactoe.Board  `json:"board"`
	Winner  string           `json:"winner"`
	Status  string           `json:"status"`
	Turn    tictactoe.Player `json:"player_turn"`
	Players []*Player        `json:"players,omitempty"`
	Type    string           `json:"type,omitempty"`
}

func NewGame(id, gameType string) *Game {
	return &Game{
		ID:     id,
		Board:  tictactoe.InitialState(),
		Turn:   tictactoe.X,
		Status: StatusWaiting,
		Type:   gameType,
	}
}

// UpdateGameState - derives winner, status and turn from the board.
func (that *Game) UpdateGameState() {
	switch that.Board.Outcome() {
	case tictactoe.XWins, tictactoe.OWins:
		winner, _ := that.Board.Winner()
		that.Winner = winner.String()
		that.Status = StatusFinished
		that.Turn = tictactoe.NoPlayer
	case tictactoe.Draw:
		that.Winner = PlayerTie
		that.Status = StatusFinished
		that.Turn = tictactoe.NoPlayer
	default:
		that.Status = StatusOngoing
		that.Turn = that.Board.Player()
	}
}

func (that *Game) MakeTurn(mark tictactoe.Player, move tictactoe.Move) error {
	if err := that.ConfirmOngoingState(); err != nil {
		return err
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	board, err := that.Board.Result(move)
	if err != nil {
		return fmt.Errorf("failed to apply move: %w", err)
	}

	that.Board = board
	that.UpdateGameState()

	return nil
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) IsWithBot() bool {
	return that.Type == WithBotType
}

// PlayerByMark - returns the seat playing the given side, nil when it is not taken yet.
func (that *Game) PlayerByMark(mark tictactoe.Player) *Player {
	for _, player := range that.Players {
		if player.Mark == mark {
			return player
		}
	}

	return nil
}

// Seat - returns the seat taken by the given player id, nil when the player is not in the game.
func (that *Game) Seat(playerID string) *Player {
	if playerID == "" {
		return nil
	}

	for _, player := range that.Players {
		if player.ID == playerID {
			return player
		}
	}

	return nil
}

// Masked - copies the game without its seats, player ids act as session secrets.
func (that *Game) Masked() *Game {
	masked := *that
	masked.Players = nil

	return &masked
}

// Bot - returns the bot seat of the game, nil for games between people.
func (that *Game) Bot() *Player {
	for _, player := range that.Players {
		if player.IsBot() {
			return player
		}
	}

	return nil
}

// GetRandomMarks - splits X and O between a person and the bot at random.
func GetRandomMarks() (tictactoe.Player, tictactoe.Player) {
	if rand.Intn(2) == 0 { //nolint: gosec // it's ok
		return tictactoe.X, tictactoe.O
	}
	return tictactoe.O, tictactoe.X
}
