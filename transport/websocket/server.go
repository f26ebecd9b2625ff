package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
	"nhooyr.io/websocket"
)

const shutdownTimeout = 5 * time.Second

type gamePlay interface {
	GetOrCreateGame(ctx context.Context, playerID, gameType string, mark tictactoe.Player) (*entity.Game, error)
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	LeaveGame(ctx context.Context, playerID string) (*entity.Game, error)

	GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, move tictactoe.Move) (*entity.Game, error)
	Hint(ctx context.Context, playerID string) (tictactoe.Move, error)
}

type players interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
}

type handlerFunc func(ctx context.Context, msg *Message, conn *websocket.Conn) error

type Server struct {
	logger   *slog.Logger
	gamePlay gamePlay
	players  players

	handlers map[string]handlerFunc

	connections      map[string]*websocket.Conn
	connectionsMutex sync.RWMutex
}

func New(logger *slog.Logger, gamePlay gamePlay, players players) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		gamePlay: gamePlay,
		players:  players,

		handlers:    make(map[string]handlerFunc),
		connections: make(map[string]*websocket.Conn),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionGameNew] = server.handleNewGame
	server.handlers[actionGameJoin] = server.handleJoinGame
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameHint] = server.handleGameHint
	server.handlers[actionGameLeave] = server.handleGameLeave

	return server
}

// Start - starts WebSocket server on /ws until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", that)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// ServeHTTP - upgrades the request and serves messages until the client goes away.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error("failed to accept websocket", "error", err)
		return
	}

	defer conn.Close(websocket.StatusInternalError, "")
	defer that.handleDisconnect(conn)

	log.Info("WebSocket connection established")

	if err = that.handleMessages(r.Context(), conn); err != nil {
		log.Error("error handling messages", "error", err)
		return
	}

	conn.Close(websocket.StatusNormalClosure, "")
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleMessages")

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			default:
				return fmt.Errorf("failed to read message: %w", err)
			}
		}

		if msgType != websocket.MessageText {
			log.Warn("binary message ignored")
			continue
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			if err = that.sendErrorResponse(ctx, conn, "", "malformed message"); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err = that.sendErrorResponse(ctx, conn, message.Action, "unknown action"); err != nil {
				return err
			}
			continue
		}

		if err = handler(ctx, &message, conn); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) register(playerID string, conn *websocket.Conn) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	that.connections[playerID] = conn
}

func (that *Server) connection(playerID string) (*websocket.Conn, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	conn, ok := that.connections[playerID]

	return conn, ok
}

// handleDisconnect - forgets the connection, the player's game stays stored so a later connect resumes it.
func (that *Server) handleDisconnect(conn *websocket.Conn) {
	log := that.logger.With("method", "handleDisconnect")

	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	for playerID, connection := range that.connections {
		if connection == conn {
			delete(that.connections, playerID)
			log.Info("player disconnected", "playerID", playerID)
		}
	}
}
