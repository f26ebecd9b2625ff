package tictactoe

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
)

// Size - side length of the board.
const Size = 3

var (
	ErrInvalidBoard  = errors.New("invalid board")
	ErrUnknownPlayer = errors.New("unknown player")
)

// Board - 3x3 grid in row-major order. It is an array, so every assignment is an independent copy
// and no method on Board modifies the receiver.
type Board [Size][Size]Cell

// Move - zero-based (row, col) coordinate of the cell to mark.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Move) Valid() bool {
	return that.Row >= 0 && that.Row < Size && that.Col >= 0 && that.Col < Size
}

// Index - position of the move in the flat 0..8 layout used on the wire.
func (that Move) Index() int {
	return that.Row*Size + that.Col
}

func (that Move) String() string {
	return fmt.Sprintf("(%d, %d)", that.Row, that.Col)
}

// MoveFromIndex - inverse of Move.Index.
func MoveFromIndex(index int) Move {
	return Move{Row: index / Size, Col: index % Size}
}

// MoveSet - unordered collection of legal moves.
type MoveSet map[Move]struct{}

func (that MoveSet) Add(move Move) {
	that[move] = struct{}{}
}

func (that MoveSet) Contains(move Move) bool {
	_, ok := that[move]
	return ok
}

func (that MoveSet) Len() int {
	return len(that)
}

// Sorted - returns the moves in row-major order.
func (that MoveSet) Sorted() []Move {
	moves := make([]Move, 0, len(that))
	for move := range that {
		moves = append(moves, move)
	}

	slices.SortFunc(moves, func(a, b Move) int {
		return a.Index() - b.Index()
	})

	return moves
}

// InitialState - returns the empty board X opens on.
func InitialState() Board {
	return Board{}
}

// Cell - returns the content of the cell the move points at, Empty for moves outside the board.
func (that Board) Cell(move Move) Cell {
	if !move.Valid() {
		return Empty
	}

	return that[move.Row][move.Col]
}

// Count - returns how many cells hold the given value.
func (that Board) Count(cell Cell) int {
	count := 0
	for _, row := range that {
		for _, value := range row {
			if value == cell {
				count++
			}
		}
	}

	return count
}

// Player - returns the side to move. X always opens, so O is due exactly when X has one more mark.
func (that Board) Player() Player {
	if that.Count(MarkX) > that.Count(MarkO) {
		return O
	}

	return X
}

// Actions - returns every empty cell of the board.
func (that Board) Actions() MoveSet {
	actions := make(MoveSet, Size*Size)
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			if that[i][j] == Empty {
				actions.Add(Move{Row: i, Col: j})
			}
		}
	}

	return actions
}

// Result - returns the board after the side to move marks the given cell.
func (that Board) Result(move Move) (Board, error) {
	if !move.Valid() {
		return that, fmt.Errorf("%w: %s is outside the board", apperror.ErrInvalidMove, move)
	}

	if that[move.Row][move.Col] != Empty {
		return that, fmt.Errorf("%w: cell %s is already occupied", apperror.ErrInvalidMove, move)
	}

	next := that
	next[move.Row][move.Col] = that.Player().Mark()

	return next, nil
}
