package tictactoe

import "fmt"

type Cell uint8

const (
	Empty Cell = iota
	MarkX
	MarkO
)

func (that Cell) String() string {
	switch that {
	case MarkX:
		return "X"
	case MarkO:
		return "O"
	default:
		return ""
	}
}

// Player - side of the game. The zero value means "nobody", it is what Winner reports for a board without a line.
type Player uint8

const (
	NoPlayer Player = iota
	X
	O
)

// Mark - returns the cell value this player writes on the board.
func (that Player) Mark() Cell {
	switch that {
	case X:
		return MarkX
	case O:
		return MarkO
	default:
		return Empty
	}
}

func (that Player) Opponent() Player {
	switch that {
	case X:
		return O
	case O:
		return X
	default:
		return NoPlayer
	}
}

func (that Player) String() string {
	return that.Mark().String()
}

func (that Player) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Player) UnmarshalText(text []byte) error {
	switch string(text) {
	case "X", "x":
		*that = X
	case "O", "o":
		*that = O
	case "":
		*that = NoPlayer
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, string(text))
	}

	return nil
}

// playerOf - maps an occupied cell back to the side that owns it.
func playerOf(cell Cell) Player {
	switch cell {
	case MarkX:
		return X
	case MarkO:
		return O
	default:
		return NoPlayer
	}
}

// Outcome - derived state of a board, never stored.
type Outcome uint8

const (
	InProgress Outcome = iota
	XWins
	OWins
	Draw
)

func (that Outcome) String() string {
	switch that {
	case XWins:
		return "x_wins"
	case OWins:
		return "o_wins"
	case Draw:
		return "draw"
	default:
		return "in_progress"
	}
}

func (that Outcome) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Outcome) UnmarshalText(text []byte) error {
	for _, outcome := range []Outcome{InProgress, XWins, OWins, Draw} {
		if outcome.String() == string(text) {
			*that = outcome
			return nil
		}
	}

	return fmt.Errorf("unknown outcome %q", string(text))
}
