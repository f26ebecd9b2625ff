package tictactoe

import "math"

// Minimax - returns the optimal move for the side to move, false when the board is terminal.
// X maximizes Utility and O minimizes it. Among moves of equal value the first one in
// row-major order is kept.
func Minimax(board Board) (Move, bool) {
	if board.Terminal() {
		return Move{}, false
	}

	var (
		move Move
		ok   bool
	)

	if board.Player() == X {
		_, move, ok = maxValue(board)
	} else {
		_, move, ok = minValue(board)
	}

	return move, ok
}

// Evaluate - returns the game-theoretic value of the board under optimal play from both sides.
func Evaluate(board Board) int {
	if board.Player() == X {
		value, _, _ := maxValue(board)
		return value
	}

	value, _, _ := minValue(board)

	return value
}

func maxValue(board Board) (int, Move, bool) {
	if board.Terminal() {
		return board.Utility(), Move{}, false
	}

	best := math.MinInt
	bestMove, found := Move{}, false

	for _, action := range board.Actions().Sorted() {
		child, err := board.Result(action)
		if err != nil {
			// actions only holds empty cells
			continue
		}

		value, _, _ := minValue(child)
		if value > best {
			best = value
			bestMove, found = action, true
		}
	}

	return best, bestMove, found
}

func minValue(board Board) (int, Move, bool) {
	if board.Terminal() {
		return board.Utility(), Move{}, false
	}

	best := math.MaxInt
	bestMove, found := Move{}, false

	for _, action := range board.Actions().Sorted() {
		child, err := board.Result(action)
		if err != nil {
			continue
		}

		value, _, _ := maxValue(child)
		if value < best {
			best = value
			bestMove, found = action, true
		}
	}

	return best, bestMove, found
}
