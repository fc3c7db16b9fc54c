package model

import "fmt"

// Color is the side owning a piece. The zero value belongs to no side and is
// only found on empty squares.
type Color uint8

const (
	NoColor Color = iota
	White
	Black
)

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	}
	return ""
}

// Opposite returns the other side. NoColor stays NoColor.
func (c Color) Opposite() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	}
	return NoColor
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*c = NoColor
		return nil
	}
	color, ok := ParseColor(string(text))
	if !ok {
		return fmt.Errorf("unknown color %q", text)
	}
	*c = color
	return nil
}

// ParseColor accepts "white"/"black" and the FEN letters "w"/"b".
func ParseColor(s string) (Color, bool) {
	switch s {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	}
	return NoColor, false
}

type PieceType uint8

const (
	NoPiece PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (p PieceType) String() string {
	switch p {
	case King:
		return "king"
	case Queen:
		return "queen"
	case Rook:
		return "rook"
	case Bishop:
		return "bishop"
	case Knight:
		return "knight"
	case Pawn:
		return "pawn"
	}
	return ""
}

func (p PieceType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PieceType) UnmarshalText(text []byte) error {
	for t := NoPiece; t <= King; t++ {
		if t.String() == string(text) {
			*p = t
			return nil
		}
	}
	return fmt.Errorf("unknown piece type %q", text)
}

// getPieceNotation returns the SAN letter of the piece, empty for pawns.
func (p PieceType) getPieceNotation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

// Piece is the content of one square. The zero value is an empty square.
type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

func (p Piece) IsEmpty() bool {
	return p.Type == NoPiece
}

// fenLetter returns the FEN character for the piece: upper case for white.
func (p Piece) fenLetter() byte {
	var b byte
	switch p.Type {
	case Pawn:
		b = 'p'
	case Knight:
		b = 'n'
	case Bishop:
		b = 'b'
	case Rook:
		b = 'r'
	case Queen:
		b = 'q'
	case King:
		b = 'k'
	default:
		return '.'
	}
	if p.Color == White {
		b -= 'a' - 'A'
	}
	return b
}

func pieceFromFEN(r rune) (Piece, bool) {
	color := Black
	if r >= 'A' && r <= 'Z' {
		color = White
		r += 'a' - 'A'
	}
	var t PieceType
	switch r {
	case 'p':
		t = Pawn
	case 'n':
		t = Knight
	case 'b':
		t = Bishop
	case 'r':
		t = Rook
	case 'q':
		t = Queen
	case 'k':
		t = King
	default:
		return Piece{}, false
	}
	return Piece{Type: t, Color: color}, true
}
