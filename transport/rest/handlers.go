package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/service"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

var errBadRequest = errors.New("bad request")

type gamePlay interface {
	GetOrCreateGame(ctx context.Context, playerID, gameType string, mark tictactoe.Player) (*entity.Game, error)
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	LeaveGame(ctx context.Context, playerID string) (*entity.Game, error)

	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, move tictactoe.Move) (*entity.Game, error)
	Hint(ctx context.Context, playerID string) (tictactoe.Move, error)
}

type players interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
}

type handlers struct {
	logger   *slog.Logger
	gamePlay gamePlay
	players  players
}

type solveRequest struct {
	Board    *tictactoe.Board `json:"board,omitempty"`
	Notation string           `json:"notation,omitempty"`
}

type solveResponse struct {
	Board    tictactoe.Board   `json:"board"`
	Notation string            `json:"notation"`
	Player   tictactoe.Player  `json:"player"`
	Terminal bool              `json:"terminal"`
	Winner   tictactoe.Player  `json:"winner"`
	Utility  int               `json:"utility"`
	Outcome  tictactoe.Outcome `json:"outcome"`
	Value    int               `json:"value"`
	Move     *tictactoe.Move   `json:"move,omitempty"`
}

type playerRequest struct {
	ID string `json:"id"`
}

type gameRequest struct {
	PlayerID string           `json:"player_id"`
	Type     string           `json:"type"`
	Mark     tictactoe.Player `json:"mark"`
}

type turnRequest struct {
	PlayerID string `json:"player_id"`
	Row      *int   `json:"row"`
	Col      *int   `json:"col"`
}

// gameResponse - the game without seats plus the caller's own seat.
type gameResponse struct {
	Game   *entity.Game   `json:"game"`
	Player *entity.Player `json:"player,omitempty"`
}

type hintResponse struct {
	Move tictactoe.Move `json:"move"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// solve - runs the search on a posted board without touching any stored game.
func (that *handlers) solve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := decodeJSON(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	board, err := req.board()
	if err != nil {
		that.writeError(w, err)
		return
	}

	winner, _ := board.Winner()
	resp := solveResponse{
		Board:    board,
		Notation: board.String(),
		Player:   board.Player(),
		Terminal: board.Terminal(),
		Winner:   winner,
		Utility:  board.Utility(),
		Outcome:  board.Outcome(),
		Value:    tictactoe.Evaluate(board),
	}

	if move, ok := tictactoe.Minimax(board); ok {
		resp.Move = &move
	}

	that.writeJSON(w, http.StatusOK, resp)
}

func (that solveRequest) board() (tictactoe.Board, error) {
	var (
		board tictactoe.Board
		err   error
	)

	switch {
	case that.Board != nil && that.Notation != "":
		return board, fmt.Errorf("%w: send either board or notation", errBadRequest)
	case that.Board != nil:
		board = *that.Board
	case that.Notation != "":
		board, err = tictactoe.ParseBoard(that.Notation)
		if err != nil {
			return board, err
		}
	default:
		return board, fmt.Errorf("%w: board is required", errBadRequest)
	}

	if err = board.Validate(); err != nil {
		return board, err
	}

	return board, nil
}

func (that *handlers) createPlayer(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	player, err := that.players.GetOrCreatePlayer(r.Context(), req.ID)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, player)
}

func (that *handlers) createGame(w http.ResponseWriter, r *http.Request) {
	var req gameRequest
	if err := decodeJSON(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	if req.PlayerID == "" {
		that.writeError(w, fmt.Errorf("%w: player_id is required", errBadRequest))
		return
	}

	if req.Type == "" {
		req.Type = entity.WithBotType
	}

	game, err := that.gamePlay.GetOrCreateGame(r.Context(), req.PlayerID, req.Type, req.Mark)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeGame(w, http.StatusCreated, game, req.PlayerID)
}

func (that *handlers) getGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gamePlay.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeGame(w, http.StatusOK, game, "")
}

func (that *handlers) joinGame(w http.ResponseWriter, r *http.Request) {
	var req gameRequest
	if err := decodeJSON(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	game, err := that.gamePlay.JoinGameByID(r.Context(), chi.URLParam(r, "id"), req.PlayerID)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeGame(w, http.StatusOK, game, req.PlayerID)
}

func (that *handlers) makeTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := decodeJSON(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	if req.Row == nil || req.Col == nil {
		that.writeError(w, fmt.Errorf("%w: row and col are required", errBadRequest))
		return
	}

	if err := that.confirmSeat(r.Context(), chi.URLParam(r, "id"), req.PlayerID); err != nil {
		that.writeError(w, err)
		return
	}

	game, err := that.gamePlay.MakeTurn(r.Context(), req.PlayerID, tictactoe.Move{Row: *req.Row, Col: *req.Col})
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeGame(w, http.StatusOK, game, req.PlayerID)
}

func (that *handlers) hint(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player_id")

	if err := that.confirmSeat(r.Context(), chi.URLParam(r, "id"), playerID); err != nil {
		that.writeError(w, err)
		return
	}

	move, err := that.gamePlay.Hint(r.Context(), playerID)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, hintResponse{Move: move})
}

func (that *handlers) leaveGame(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player_id")

	if err := that.confirmSeat(r.Context(), chi.URLParam(r, "id"), playerID); err != nil {
		that.writeError(w, err)
		return
	}

	game, err := that.gamePlay.LeaveGame(r.Context(), playerID)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeGame(w, http.StatusOK, game, "")
}

// confirmSeat - checks that the player's current game is the one in the path.
func (that *handlers) confirmSeat(ctx context.Context, gameID, playerID string) error {
	if playerID == "" {
		return fmt.Errorf("%w: player_id is required", errBadRequest)
	}

	game, err := that.gamePlay.GetGameByPlayerID(ctx, playerID)
	if err != nil {
		return err
	}

	if game.ID != gameID {
		return fmt.Errorf("%w: player %s is not seated in game %s", apperror.ErrNoActiveGame, playerID, gameID)
	}

	return nil
}

// decodeOptionalJSON - like decodeJSON, an empty body leaves v untouched.
func decodeOptionalJSON(r *http.Request, v any) error {
	err := decodeJSON(r, v)
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}

func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, apperror.ErrInvalidMove),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, tictactoe.ErrInvalidBoard),
		errors.Is(err, tictactoe.ErrUnknownPlayer),
		errors.Is(err, service.ErrUnknownGameType),
		errors.Is(err, service.ErrReservedPlayerID):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrGameNotFound),
		errors.Is(err, repository.ErrPlayerNotFound),
		errors.Is(err, apperror.ErrNoActiveGame):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrGameIsFull),
		errors.Is(err, apperror.ErrGameIsNotStarted),
		errors.Is(err, apperror.ErrGameAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (that *handlers) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
		message = http.StatusText(status)
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}

func (that *handlers) writeGame(w http.ResponseWriter, status int, game *entity.Game, playerID string) {
	that.writeJSON(w, status, gameResponse{Game: game.Masked(), Player: game.Seat(playerID)})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
