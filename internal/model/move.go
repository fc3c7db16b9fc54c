package model

// Move describes one ply. It is built from the board as it stands before the
// move is applied and is not modified afterwards.
type Move struct {
	From            Position `json:"from"`
	To              Position `json:"to"`
	PieceMoved      Piece    `json:"pieceMoved"`
	PieceCaptured   Piece    `json:"pieceCaptured"`
	IsPawnPromotion bool     `json:"isPawnPromotion"`
	IsEnPassant     bool     `json:"isEnPassant"`
	IsCastle        bool     `json:"isCastle"`
}

// NewMove builds an ordinary move or capture from the current board.
func NewMove(from, to Position, board *Board) Move {
	m := Move{
		From:          from,
		To:            to,
		PieceMoved:    board.at(from),
		PieceCaptured: board.at(to),
	}
	if m.PieceMoved.Type == Pawn {
		m.IsPawnPromotion = (m.PieceMoved.Color == White && to.Y == 0) ||
			(m.PieceMoved.Color == Black && to.Y == 7)
	}
	return m
}

// newEnPassantMove records the captured pawn, which stands beside the
// capturing pawn rather than on the destination square.
func newEnPassantMove(from, to Position, board *Board) Move {
	m := NewMove(from, to, board)
	m.IsEnPassant = true
	m.PieceCaptured = board.at(Position{X: to.X, Y: from.Y})
	return m
}

func newCastleMove(from, to Position, board *Board) Move {
	m := NewMove(from, to, board)
	m.IsCastle = true
	return m
}

func moveID(from, to Position) int {
	return from.Y*1000 + from.X*100 + to.Y*10 + to.X
}

// ID is derived from the four coordinates only.
func (m Move) ID() int {
	return moveID(m.From, m.To)
}

// Equal compares moves by geometry alone, so a move built from two clicked
// squares matches the generated move with the same squares.
func (m Move) Equal(other Move) bool {
	return m.From == other.From && m.To == other.To
}

// CoordinateNotation renders the move as start square then end square,
// e.g. "e2e4".
func (m Move) CoordinateNotation() string {
	return m.From.String() + m.To.String()
}

func (m Move) String() string {
	return m.CoordinateNotation()
}

// Notation is a short display form: piece letter, capture marker and
// destination, "O-O"/"O-O-O" for castling, "=Q" on promotion. It is not
// disambiguated.
func (m Move) Notation() string {
	if m.IsCastle {
		if m.To.X > m.From.X {
			return "O-O"
		}
		return "O-O-O"
	}
	notation := m.PieceMoved.Type.getPieceNotation()
	if !m.PieceCaptured.IsEmpty() {
		if m.PieceMoved.Type == Pawn {
			notation += m.From.getFileNotation()
		}
		notation += "x"
	}
	notation += m.To.String()
	if m.IsPawnPromotion {
		notation += "=Q"
	}
	return notation
}

// FindMove returns the move in moves that shares geometry with from/to.
func FindMove(moves []Move, from, to Position) (Move, bool) {
	for _, m := range moves {
		if m.From == from && m.To == to {
			return m, true
		}
	}
	return Move{}, false
}
