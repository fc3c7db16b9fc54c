package model

import "fmt"

// Position addresses a square. X is the column (file a..h = 0..7) and Y the
// row, with row 0 on black's back rank and row 7 on white's.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String renders the square in file+rank form, e.g. Position{4, 6} is "e2".
func (p Position) String() string {
	return fmt.Sprintf("%c%d", p.X+'a', 8-p.Y)
}

func (p Position) getFileNotation() string {
	return fmt.Sprintf("%c", p.X+'a')
}

// ParseSquare converts "e4" style notation into a Position.
func ParseSquare(s string) (Position, error) {
	if len(s) != 2 {
		return Position{}, fmt.Errorf("invalid square %q", s)
	}
	p := Position{X: int(s[0] - 'a'), Y: 8 - int(s[1]-'0')}
	if !boundaryCheck(p) {
		return Position{}, fmt.Errorf("invalid square %q", s)
	}
	return p, nil
}

func boundaryCheck(position Position) bool {
	return position.X >= 0 && position.X < 8 && position.Y >= 0 && position.Y < 8
}

// Board is the 8x8 grid indexed [row][col]. Squares hold Piece values, so
// copying a Board copies every piece.
type Board [8][8]Piece

func (b *Board) at(p Position) Piece {
	return b[p.Y][p.X]
}

func (b *Board) set(p Position, piece Piece) {
	b[p.Y][p.X] = piece
}

// At returns the piece on the given square.
func (b Board) At(p Position) Piece {
	return b[p.Y][p.X]
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

func newBoard() Board {
	var board Board
	for i := 0; i < 8; i++ {
		board[0][i] = Piece{Type: backRank[i], Color: Black}
		board[1][i] = Piece{Type: Pawn, Color: Black}
		board[6][i] = Piece{Type: Pawn, Color: White}
		board[7][i] = Piece{Type: backRank[i], Color: White}
	}
	return board
}

// String draws the board with FEN letters, rank 8 first.
func (b Board) String() string {
	buf := make([]byte, 0, 8*9)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			buf = append(buf, b[y][x].fenLetter())
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
