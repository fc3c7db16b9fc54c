package model

// GameState is the authoritative state of one game. It is single owner:
// callers must serialize access, and MakeMove/UndoMove always run to
// completion.
type GameState struct {
	board           Board
	toMove          Color
	moveLog         []Move
	castleRights    CastleRights
	castleRightsLog []CastleRights
	enPassantTarget *Position
	enPassantLog    []*Position
	whiteKing       Position
	blackKing       Position
	checkmate       bool
	stalemate       bool
}

// NewGameState returns the standard initial position with white to move.
func NewGameState() *GameState {
	gs := &GameState{
		board:        newBoard(),
		toMove:       White,
		castleRights: fullCastleRights(),
		whiteKing:    Position{X: 4, Y: 7},
		blackKing:    Position{X: 4, Y: 0},
	}
	gs.castleRightsLog = []CastleRights{gs.castleRights}
	return gs
}

// Reset replaces the whole state with the initial position.
func (gs *GameState) Reset() {
	*gs = *NewGameState()
}

// Board returns a copy of the grid.
func (gs *GameState) Board() Board {
	return gs.board
}

func (gs *GameState) SideToMove() Color {
	return gs.toMove
}

// MoveLog returns a copy of the played moves, oldest first.
func (gs *GameState) MoveLog() []Move {
	return append([]Move(nil), gs.moveLog...)
}

// LastMove reports the most recent move, if any.
func (gs *GameState) LastMove() (Move, bool) {
	if len(gs.moveLog) == 0 {
		return Move{}, false
	}
	return gs.moveLog[len(gs.moveLog)-1], true
}

func (gs *GameState) CastleRights() CastleRights {
	return gs.castleRights
}

// EnPassantTarget is the square skipped by a double pawn push on the
// previous ply.
func (gs *GameState) EnPassantTarget() (Position, bool) {
	if gs.enPassantTarget == nil {
		return Position{}, false
	}
	return *gs.enPassantTarget, true
}

func (gs *GameState) KingLocation(c Color) Position {
	if c == White {
		return gs.whiteKing
	}
	return gs.blackKing
}

// Checkmate and Stalemate reflect the last GetValidMoves call.
func (gs *GameState) Checkmate() bool {
	return gs.checkmate
}

func (gs *GameState) Stalemate() bool {
	return gs.stalemate
}

func (gs *GameState) setKingLocation(c Color, p Position) {
	if c == White {
		gs.whiteKing = p
	} else {
		gs.blackKing = p
	}
}

// MakeMove applies m, which must come from GetValidMoves for the current
// position. The move is not validated.
func (gs *GameState) MakeMove(m Move) {
	gs.board.set(m.From, Piece{})
	gs.board.set(m.To, m.PieceMoved)
	gs.moveLog = append(gs.moveLog, m)
	gs.toMove = gs.toMove.Opposite()

	if m.PieceMoved.Type == King {
		gs.setKingLocation(m.PieceMoved.Color, m.To)
	}
	if m.IsPawnPromotion {
		gs.board.set(m.To, Piece{Type: Queen, Color: m.PieceMoved.Color})
	}
	if m.IsEnPassant {
		gs.board.set(Position{X: m.To.X, Y: m.From.Y}, Piece{})
	}

	gs.enPassantLog = append(gs.enPassantLog, gs.enPassantTarget)
	if m.PieceMoved.Type == Pawn && abs(m.To.Y-m.From.Y) == 2 {
		gs.enPassantTarget = &Position{X: m.From.X, Y: (m.From.Y + m.To.Y) / 2}
	} else {
		gs.enPassantTarget = nil
	}

	if m.IsCastle {
		rookFrom, rookTo := castleRookSquares(m)
		gs.board.set(rookTo, gs.board.at(rookFrom))
		gs.board.set(rookFrom, Piece{})
	}

	gs.castleRights = gs.castleRights.afterMove(m)
	gs.castleRightsLog = append(gs.castleRightsLog, gs.castleRights)
}

// UndoMove reverts the most recent move. It does nothing on an empty log.
func (gs *GameState) UndoMove() {
	if len(gs.moveLog) == 0 {
		return
	}
	m := gs.moveLog[len(gs.moveLog)-1]
	gs.moveLog = gs.moveLog[:len(gs.moveLog)-1]

	gs.board.set(m.From, m.PieceMoved)
	gs.board.set(m.To, m.PieceCaptured)
	gs.toMove = gs.toMove.Opposite()

	if m.PieceMoved.Type == King {
		gs.setKingLocation(m.PieceMoved.Color, m.From)
	}
	if m.IsEnPassant {
		gs.board.set(m.To, Piece{})
		gs.board.set(Position{X: m.To.X, Y: m.From.Y}, m.PieceCaptured)
	}

	gs.enPassantTarget = gs.enPassantLog[len(gs.enPassantLog)-1]
	gs.enPassantLog = gs.enPassantLog[:len(gs.enPassantLog)-1]

	gs.castleRightsLog = gs.castleRightsLog[:len(gs.castleRightsLog)-1]
	gs.castleRights = gs.castleRightsLog[len(gs.castleRightsLog)-1]

	if m.IsCastle {
		rookFrom, rookTo := castleRookSquares(m)
		gs.board.set(rookFrom, gs.board.at(rookTo))
		gs.board.set(rookTo, Piece{})
	}

	// A finished game becomes playable again after a takeback.
	gs.checkmate = false
	gs.stalemate = false
}

// castleRookSquares returns where the rook starts and lands for a castling
// king move.
func castleRookSquares(m Move) (from, to Position) {
	row := m.From.Y
	if m.To.X > m.From.X {
		return Position{X: 7, Y: row}, Position{X: m.To.X - 1, Y: row}
	}
	return Position{X: 0, Y: row}, Position{X: m.To.X + 1, Y: row}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
