package model

var (
	rookDirs   = []Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}
	bishopDirs = []Position{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
	knightDirs = []Position{{X: 2, Y: 1}, {X: 2, Y: -1}, {X: -2, Y: 1}, {X: -2, Y: -1}, {X: 1, Y: 2}, {X: 1, Y: -2}, {X: -1, Y: 2}, {X: -1, Y: -2}}
	kingDirs   = []Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}, {X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
)

// genMode selects what the pawn rule emits. Attack mode emits both pawn
// diagonals whatever stands on them and no pushes, so that empty squares a
// pawn covers count as attacked.
type genMode uint8

const (
	genMoves genMode = iota
	genAttacks
)

// getAllPossibleMoves returns the pseudo-legal moves of the side to move,
// castling excluded.
func (gs *GameState) getAllPossibleMoves(mode genMode) []Move {
	moves := make([]Move, 0, 48)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			piece := gs.board[y][x]
			if piece.IsEmpty() || piece.Color != gs.toMove {
				continue
			}
			from := Position{X: x, Y: y}
			switch piece.Type {
			case Pawn:
				moves = gs.getPsuedoPawnMoves(from, piece.Color, mode, moves)
			case Knight:
				moves = gs.getSteppingMoves(from, piece.Color, knightDirs, moves)
			case Bishop:
				moves = gs.getSlidingMoves(from, piece.Color, bishopDirs, moves)
			case Rook:
				moves = gs.getSlidingMoves(from, piece.Color, rookDirs, moves)
			case Queen:
				moves = gs.getSlidingMoves(from, piece.Color, rookDirs, moves)
				moves = gs.getSlidingMoves(from, piece.Color, bishopDirs, moves)
			case King:
				moves = gs.getSteppingMoves(from, piece.Color, kingDirs, moves)
			}
		}
	}
	return moves
}

func pawnDirection(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

func pawnStartRow(c Color) int {
	if c == White {
		return 6
	}
	return 1
}

func (gs *GameState) getPsuedoPawnMoves(from Position, color Color, mode genMode, moves []Move) []Move {
	dy := pawnDirection(color)
	one := Position{X: from.X, Y: from.Y + dy}
	if !boundaryCheck(one) {
		return moves
	}
	if mode == genMoves && gs.board.at(one).IsEmpty() {
		moves = append(moves, NewMove(from, one, &gs.board))
		two := Position{X: from.X, Y: from.Y + 2*dy}
		if from.Y == pawnStartRow(color) && gs.board.at(two).IsEmpty() {
			moves = append(moves, NewMove(from, two, &gs.board))
		}
	}
	for _, dx := range [2]int{-1, 1} {
		target := Position{X: from.X + dx, Y: from.Y + dy}
		if !boundaryCheck(target) {
			continue
		}
		occupant := gs.board.at(target)
		switch {
		case mode == genAttacks:
			moves = append(moves, NewMove(from, target, &gs.board))
		case !occupant.IsEmpty() && occupant.Color != color:
			moves = append(moves, NewMove(from, target, &gs.board))
		case gs.enPassantTarget != nil && *gs.enPassantTarget == target:
			moves = append(moves, newEnPassantMove(from, target, &gs.board))
		}
	}
	return moves
}

// getSlidingMoves walks each direction until the edge, stopping before a
// friendly piece and on an enemy one.
func (gs *GameState) getSlidingMoves(from Position, color Color, dirs []Position, moves []Move) []Move {
	for _, dir := range dirs {
		target := Position{X: from.X + dir.X, Y: from.Y + dir.Y}
		for boundaryCheck(target) {
			occupant := gs.board.at(target)
			if occupant.IsEmpty() {
				moves = append(moves, NewMove(from, target, &gs.board))
			} else if occupant.Color != color {
				moves = append(moves, NewMove(from, target, &gs.board))
				break
			} else {
				break
			}
			target = Position{X: target.X + dir.X, Y: target.Y + dir.Y}
		}
	}
	return moves
}

func (gs *GameState) getSteppingMoves(from Position, color Color, offsets []Position, moves []Move) []Move {
	for _, dir := range offsets {
		target := Position{X: from.X + dir.X, Y: from.Y + dir.Y}
		if boundaryCheck(target) && gs.board.at(target).Color != color {
			moves = append(moves, NewMove(from, target, &gs.board))
		}
	}
	return moves
}

// getCastleMoves generates castling for the side to move. Each candidate
// already checks that the king does not start in, pass through or land on
// an attacked square.
func (gs *GameState) getCastleMoves(moves []Move) []Move {
	color := gs.toMove
	king := gs.KingLocation(color)
	row := homeRow(color)
	if king != (Position{X: 4, Y: row}) || gs.board.at(king) != (Piece{Type: King, Color: color}) {
		return moves
	}
	rights := gs.castleRights
	if !rights.Kingside(color) && !rights.Queenside(color) {
		return moves
	}
	if gs.squareUnderAttack(king) {
		return moves
	}
	if rights.Kingside(color) && gs.rookAt(Position{X: 7, Y: row}, color) &&
		gs.emptyAndSafe(row, 5, 6) {
		moves = append(moves, newCastleMove(king, Position{X: 6, Y: row}, &gs.board))
	}
	if rights.Queenside(color) && gs.rookAt(Position{X: 0, Y: row}, color) &&
		gs.board[row][1].IsEmpty() && gs.emptyAndSafe(row, 3, 2) {
		moves = append(moves, newCastleMove(king, Position{X: 2, Y: row}, &gs.board))
	}
	return moves
}

func (gs *GameState) rookAt(p Position, color Color) bool {
	return gs.board.at(p) == Piece{Type: Rook, Color: color}
}

// emptyAndSafe reports whether the king's two transit squares are both
// empty and unattacked.
func (gs *GameState) emptyAndSafe(row int, cols ...int) bool {
	for _, x := range cols {
		if !gs.board[row][x].IsEmpty() {
			return false
		}
	}
	for _, x := range cols {
		if gs.squareUnderAttack(Position{X: x, Y: row}) {
			return false
		}
	}
	return true
}
