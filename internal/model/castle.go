package model

// CastleRights is an immutable snapshot of the four castling flags. Methods
// that change a flag return a new value.
type CastleRights struct {
	WhiteKingside  bool `json:"whiteKingside"`
	WhiteQueenside bool `json:"whiteQueenside"`
	BlackKingside  bool `json:"blackKingside"`
	BlackQueenside bool `json:"blackQueenside"`
}

func fullCastleRights() CastleRights {
	return CastleRights{true, true, true, true}
}

func (r CastleRights) Kingside(c Color) bool {
	if c == White {
		return r.WhiteKingside
	}
	return r.BlackKingside
}

func (r CastleRights) Queenside(c Color) bool {
	if c == White {
		return r.WhiteQueenside
	}
	return r.BlackQueenside
}

func (r CastleRights) withoutKingside(c Color) CastleRights {
	if c == White {
		r.WhiteKingside = false
	} else {
		r.BlackKingside = false
	}
	return r
}

func (r CastleRights) withoutQueenside(c Color) CastleRights {
	if c == White {
		r.WhiteQueenside = false
	} else {
		r.BlackQueenside = false
	}
	return r
}

// String uses the FEN castling field form.
func (r CastleRights) String() string {
	s := ""
	if r.WhiteKingside {
		s += "K"
	}
	if r.WhiteQueenside {
		s += "Q"
	}
	if r.BlackKingside {
		s += "k"
	}
	if r.BlackQueenside {
		s += "q"
	}
	if s == "" {
		return "-"
	}
	return s
}

func homeRow(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

// afterMove returns the rights left once m has been played: a king move
// drops both wings, a rook leaving its corner drops that wing, and a rook
// captured on its corner drops the opponent's wing.
func (r CastleRights) afterMove(m Move) CastleRights {
	mover := m.PieceMoved.Color
	switch m.PieceMoved.Type {
	case King:
		r = r.withoutKingside(mover).withoutQueenside(mover)
	case Rook:
		if m.From.Y == homeRow(mover) {
			if m.From.X == 0 {
				r = r.withoutQueenside(mover)
			} else if m.From.X == 7 {
				r = r.withoutKingside(mover)
			}
		}
	}
	if captured := m.PieceCaptured; captured.Type == Rook && m.To.Y == homeRow(captured.Color) {
		if m.To.X == 0 {
			r = r.withoutQueenside(captured.Color)
		} else if m.To.X == 7 {
			r = r.withoutKingside(captured.Color)
		}
	}
	return r
}
