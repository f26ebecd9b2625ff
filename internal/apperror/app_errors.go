package apperror

import "errors"

var (
	ErrInvalidMove       = errors.New("invalid move")
	ErrGameFinished      = errors.New("game is already finished")
	ErrGameIsNotStarted  = errors.New("game is not started")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrGameIsFull        = errors.New("game is full")
	ErrNoActiveGame      = errors.New("no active game")
	ErrGameAlreadyExists = errors.New("game already exists")
)
