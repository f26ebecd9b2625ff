package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/service"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
	"nhooyr.io/websocket"
)

const writeTimeout = 5 * time.Second

// Message - a client request or server response, responses echo the request action.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Player *entity.Player   `json:"player,omitempty"`
	Game   *entity.Game     `json:"game,omitempty"`
	Move   *tictactoe.Move  `json:"move,omitempty"`
	Mark   tictactoe.Player `json:"mark,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func (that *Server) sendMessage(ctx context.Context, conn *websocket.Conn, action string, payload Payload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	response, err := json.Marshal(Message{Action: action, Payload: payloadJSON})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err = conn.Write(ctx, websocket.MessageText, response); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(ctx context.Context, conn *websocket.Conn, action, errorMsg string) error {
	if err := that.sendMessage(ctx, conn, action, Payload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

// clientError - the text a client may see for err, internal failures stay in the log.
func clientError(err error) string {
	known := []error{
		apperror.ErrInvalidMove,
		apperror.ErrNotYourTurn,
		apperror.ErrGameFinished,
		apperror.ErrGameIsNotStarted,
		apperror.ErrGameIsFull,
		apperror.ErrNoActiveGame,
		apperror.ErrGameAlreadyExists,
		repository.ErrGameNotFound,
		repository.ErrPlayerNotFound,
		service.ErrUnknownGameType,
		service.ErrReservedPlayerID,
	}

	for _, target := range known {
		if errors.Is(err, target) {
			return err.Error()
		}
	}

	return "internal error"
}
