package model

// GetValidMoves returns the legal moves for the side to move and updates the
// checkmate and stalemate flags.
func (gs *GameState) GetValidMoves() []Move {
	// The make/unmake simulation below restores these itself; keep the
	// snapshots so the position handed back is exactly the one received.
	enPassant := gs.enPassantTarget
	rights := gs.castleRights

	candidates := gs.getAllPossibleMoves(genMoves)
	candidates = gs.getCastleMoves(candidates)
	moves := gs.filterLegalMoves(candidates)

	gs.enPassantTarget = enPassant
	gs.castleRights = rights

	gs.checkmate, gs.stalemate = false, false
	if len(moves) == 0 {
		if gs.InCheck() {
			gs.checkmate = true
		} else {
			gs.stalemate = true
		}
	}
	return moves
}

// filterLegalMoves plays each candidate and keeps those that do not leave
// the mover's king attacked.
func (gs *GameState) filterLegalMoves(candidates []Move) []Move {
	legalMoves := make([]Move, 0, len(candidates))
	for _, move := range candidates {
		gs.MakeMove(move)
		// Look from the mover's side again: is its own king attacked?
		gs.toMove = gs.toMove.Opposite()
		if !gs.InCheck() {
			legalMoves = append(legalMoves, move)
		}
		gs.toMove = gs.toMove.Opposite()
		gs.UndoMove()
	}
	return legalMoves
}

// InCheck reports whether the side to move has its king attacked.
func (gs *GameState) InCheck() bool {
	return gs.squareUnderAttack(gs.KingLocation(gs.toMove))
}

// squareUnderAttack reports whether the opponent of the side to move could
// reach p. The opponent's moves are pseudo-legal: its own king safety is not
// considered.
func (gs *GameState) squareUnderAttack(p Position) bool {
	gs.toMove = gs.toMove.Opposite()
	attacks := gs.getAllPossibleMoves(genAttacks)
	gs.toMove = gs.toMove.Opposite()
	for _, m := range attacks {
		if m.To == p {
			return true
		}
	}
	return false
}
