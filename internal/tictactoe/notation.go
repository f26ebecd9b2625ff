package tictactoe

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseBoard - reads a board from its text notation: nine cells in row-major order where
// 'X' and 'O' are marks and '.', '-' or '_' is an empty cell. Whitespace and '/' are ignored,
// so "XX./OO./..." and "XX. OO. ..." describe the same board.
func ParseBoard(notation string) (Board, error) {
	var board Board

	count := 0
	for _, r := range notation {
		var cell Cell

		switch r {
		case ' ', '\t', '\n', '\r', '/':
			continue
		case 'X', 'x':
			cell = MarkX
		case 'O', 'o':
			cell = MarkO
		case '.', '-', '_':
			cell = Empty
		default:
			return Board{}, fmt.Errorf("%w: unexpected character %q", ErrInvalidBoard, r)
		}

		if count == Size*Size {
			return Board{}, fmt.Errorf("%w: more than %d cells", ErrInvalidBoard, Size*Size)
		}

		board[count/Size][count%Size] = cell
		count++
	}

	if count != Size*Size {
		return Board{}, fmt.Errorf("%w: got %d cells, want %d", ErrInvalidBoard, count, Size*Size)
	}

	return board, nil
}

// String - renders the board in the notation ParseBoard reads.
func (that Board) String() string {
	var sb strings.Builder

	for i, row := range that {
		if i > 0 {
			sb.WriteByte('/')
		}

		for _, cell := range row {
			if cell == Empty {
				sb.WriteByte('.')
				continue
			}

			sb.WriteString(cell.String())
		}
	}

	return sb.String()
}

// Cells - flattens the board into the nine-string row-major form used in JSON.
func (that Board) Cells() [Size * Size]string {
	var cells [Size * Size]string
	for i, row := range that {
		for j, cell := range row {
			cells[i*Size+j] = cell.String()
		}
	}

	return cells
}

// BoardFromCells - inverse of Board.Cells.
func BoardFromCells(cells [Size * Size]string) (Board, error) {
	var board Board

	for i, value := range cells {
		var cell Cell

		switch value {
		case "X", "x":
			cell = MarkX
		case "O", "o":
			cell = MarkO
		case "":
			cell = Empty
		default:
			return Board{}, fmt.Errorf("%w: cell %d holds %q", ErrInvalidBoard, i, value)
		}

		board[i/Size][i%Size] = cell
	}

	return board, nil
}

func (that Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(that.Cells())
}

func (that *Board) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBoard, err)
	}

	var cells [Size * Size]string
	if len(values) != len(cells) {
		return fmt.Errorf("%w: got %d cells, want %d", ErrInvalidBoard, len(values), len(cells))
	}

	copy(cells[:], values)

	board, err := BoardFromCells(cells)
	if err != nil {
		return err
	}

	*that = board

	return nil
}
