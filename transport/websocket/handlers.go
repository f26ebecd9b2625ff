package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"nhooyr.io/websocket"
)

const (
	actionConnect   = "connect"
	actionGameNew   = "game:new"
	actionGameJoin  = "game:join"
	actionGameTurn  = "game:turn"
	actionGameHint  = "game:hint"
	actionGameLeave = "game:leave"

	gameStatusLeave = "leave"
)

func decodePayload(msg *Message) (Payload, error) {
	var payload Payload
	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

// handleConnect - registers the connection; a player already seated gets the game back.
func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(ctx, conn, msg.Action, "malformed payload")
	}

	var playerID string
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.players.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		log.Warn("failed to create or get player", "error", err)
		return that.sendErrorResponse(ctx, conn, msg.Action, clientError(err))
	}

	that.register(player.ID, conn)

	payloadResp := Payload{Player: player}

	if player.GameID != "" {
		game, err := that.gamePlay.GetGameByPlayerID(ctx, player.ID)
		if err != nil {
			log.Warn("failed to get game", "gameID", player.GameID, "error", err)
		} else {
			payloadResp.Game = game.Masked()
		}
	}

	if err = that.sendMessage(ctx, conn, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleNewGame")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(ctx, conn, msg.Action, "malformed payload")
	}

	if payloadReq.Player == nil {
		return that.sendErrorResponse(ctx, conn, msg.Action, "Player is required")
	}

	gameType := entity.WithBotType
	if payloadReq.Game != nil && payloadReq.Game.Type != "" {
		gameType = payloadReq.Game.Type
	}

	that.register(payloadReq.Player.ID, conn)

	game, err := that.gamePlay.GetOrCreateGame(ctx, payloadReq.Player.ID, gameType, payloadReq.Mark)
	if err != nil {
		log.Error("failed to create or get game", "error", err)
		return that.sendErrorResponse(ctx, conn, msg.Action, clientError(err))
	}

	that.broadcast(ctx, msg.Action, game)

	log.Info("player is in game", "gameID", game.ID, "playerID", payloadReq.Player.ID)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleJoinGame")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(ctx, conn, msg.Action, "malformed payload")
	}

	if payloadReq.Player == nil {
		return that.sendErrorResponse(ctx, conn, msg.Action, "Player is required")
	}

	if payloadReq.Game == nil {
		return that.sendErrorResponse(ctx, conn, msg.Action, "Game is required")
	}

	that.register(payloadReq.Player.ID, conn)

	log = log.With("playerID", payloadReq.Player.ID)

	game, err := that.gamePlay.JoinGameByID(ctx, payloadReq.Game.ID, payloadReq.Player.ID)
	if err != nil {
		log.Warn("failed to join game", "error", err)
		return that.sendErrorResponse(ctx, conn, msg.Action, fmt.Sprintf("game %s: %s", payloadReq.Game.ID, clientError(err)))
	}

	that.broadcast(ctx, msg.Action, game)

	log.Info("player joined game", "gameID", game.ID)

	return nil
}

// handleGameTurn - applies the move and pushes the new state to everybody seated in the game.
func (that *Server) handleGameTurn(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleGameTurn")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(ctx, conn, msg.Action, "malformed payload")
	}

	if payloadReq.Player == nil {
		return that.sendErrorResponse(ctx, conn, msg.Action, "Player is required")
	}

	if payloadReq.Move == nil {
		return that.sendErrorResponse(ctx, conn, msg.Action, "Move is required")
	}

	that.register(payloadReq.Player.ID, conn)

	log = log.With("playerID", payloadReq.Player.ID)

	game, err := that.gamePlay.MakeTurn(ctx, payloadReq.Player.ID, *payloadReq.Move)
	if err != nil {
		log.Warn("failed to make turn", "error", err)
		return that.sendErrorResponse(ctx, conn, msg.Action, clientError(err))
	}

	that.broadcast(ctx, msg.Action, game)

	log.Info("player made a turn", "gameID", game.ID, "move", payloadReq.Move.String())

	return nil
}

func (that *Server) handleGameHint(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(ctx, conn, msg.Action, "malformed payload")
	}

	if payloadReq.Player == nil {
		return that.sendErrorResponse(ctx, conn, msg.Action, "Player is required")
	}

	that.register(payloadReq.Player.ID, conn)

	move, err := that.gamePlay.Hint(ctx, payloadReq.Player.ID)
	if err != nil {
		return that.sendErrorResponse(ctx, conn, msg.Action, clientError(err))
	}

	return that.sendMessage(ctx, conn, msg.Action, Payload{Move: &move})
}

func (that *Server) handleGameLeave(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleGameLeave")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(ctx, conn, msg.Action, "malformed payload")
	}

	if payloadReq.Player == nil {
		return that.sendErrorResponse(ctx, conn, msg.Action, "Player is required")
	}

	that.register(payloadReq.Player.ID, conn)

	game, err := that.gamePlay.LeaveGame(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Warn("failed to leave game", "error", err)
		return that.sendErrorResponse(ctx, conn, msg.Action, clientError(err))
	}

	left := *game
	left.Status = gameStatusLeave
	that.broadcast(ctx, msg.Action, &left)

	log.Info("player left", "gameID", game.ID, "playerID", payloadReq.Player.ID)

	return nil
}

// broadcast - sends the game to every connected person seated in it.
func (that *Server) broadcast(ctx context.Context, action string, game *entity.Game) {
	log := that.logger.With("method", "broadcast", "gameID", game.ID)

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		conn, ok := that.connection(player.ID)
		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		payloadResp := Payload{
			Player: player,
			Game:   game.Masked(),
		}

		if err := that.sendMessage(ctx, conn, action, payloadResp); err != nil {
			log.Error("failed to send game update", "playerID", player.ID, "error", err)
		}
	}
}
