package entity

import (
	"strings"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

const botIDPrefix = "bot:"

type Player struct {
	ID     string           `json:"id"`
	Mark   tictactoe.Player `json:"mark,omitempty"`
	GameID string           `json:"game_id,omitempty"`
}

// NewBotPlayer - creates the minimax seat of a bot game.
func NewBotPlayer(gameID string, mark tictactoe.Player) *Player {
	return &Player{
		ID:     botIDPrefix + gameID,
		Mark:   mark,
		GameID: gameID,
	}
}

func (that *Player) IsBot() bool {
	return IsBotID(that.ID)
}

// IsBotID - reports whether the id is in the range reserved for bot seats.
func IsBotID(id string) bool {
	return strings.HasPrefix(id, botIDPrefix)
}
