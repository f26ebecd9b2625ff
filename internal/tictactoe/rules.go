package tictactoe

import "fmt"

// WinLines - rows, then columns, then diagonals.
var WinLines = [][Size]Move{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Winner - returns the owner of the first completed line in WinLines order.
// Boards carrying lines for both sides cannot come out of legal play; Validate rejects them
// and for those Winner just reports whichever line it meets first.
func (that Board) Winner() (Player, bool) {
	for _, line := range WinLines {
		a, b, c := that.Cell(line[0]), that.Cell(line[1]), that.Cell(line[2])
		if a != Empty && a == b && b == c {
			return playerOf(a), true
		}
	}

	return NoPlayer, false
}

// Terminal - the game is over once somebody has a line or no empty cell is left.
func (that Board) Terminal() bool {
	if _, ok := that.Winner(); ok {
		return true
	}

	return that.Count(Empty) == 0
}

// Utility - +1 when X has won, -1 when O has won, 0 otherwise.
func (that Board) Utility() int {
	winner, _ := that.Winner()

	switch winner {
	case X:
		return 1
	case O:
		return -1
	default:
		return 0
	}
}

func (that Board) Outcome() Outcome {
	winner, ok := that.Winner()

	switch {
	case ok && winner == X:
		return XWins
	case ok && winner == O:
		return OWins
	case that.Count(Empty) == 0:
		return Draw
	default:
		return InProgress
	}
}

// Validate - checks that the board can be reached by alternating play from InitialState.
func (that Board) Validate() error {
	xCount, oCount := that.Count(MarkX), that.Count(MarkO)
	if xCount != oCount && xCount != oCount+1 {
		return fmt.Errorf("%w: %d X marks against %d O marks", ErrInvalidBoard, xCount, oCount)
	}

	var xLine, oLine bool
	for _, line := range WinLines {
		a, b, c := that.Cell(line[0]), that.Cell(line[1]), that.Cell(line[2])
		if a == Empty || a != b || b != c {
			continue
		}

		if a == MarkX {
			xLine = true
		} else {
			oLine = true
		}
	}

	switch {
	case xLine && oLine:
		return fmt.Errorf("%w: both sides have a line", ErrInvalidBoard)
	case xLine && xCount == oCount:
		return fmt.Errorf("%w: O moved after X had already won", ErrInvalidBoard)
	case oLine && xCount > oCount:
		return fmt.Errorf("%w: X moved after O had already won", ErrInvalidBoard)
	}

	return nil
}
