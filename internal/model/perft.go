package model

// Perft counts the leaf positions reachable in exactly depth plies. Since
// promotion always yields a queen, counts differ from standard tables in
// positions where a pawn can promote.
func (gs *GameState) Perft(depth int) uint64 {
	checkmate, stalemate := gs.checkmate, gs.stalemate
	defer func() { gs.checkmate, gs.stalemate = checkmate, stalemate }()
	return gs.perft(depth)
}

func (gs *GameState) perft(depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := gs.GetValidMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		gs.MakeMove(m)
		nodes += gs.perft(depth - 1)
		gs.UndoMove()
	}
	return nodes
}

// Divide returns the perft count below each root move, keyed by coordinate
// notation.
func (gs *GameState) Divide(depth int) map[string]uint64 {
	checkmate, stalemate := gs.checkmate, gs.stalemate
	defer func() { gs.checkmate, gs.stalemate = checkmate, stalemate }()

	out := make(map[string]uint64)
	if depth <= 0 {
		return out
	}
	for _, m := range gs.GetValidMoves() {
		gs.MakeMove(m)
		out[m.CoordinateNotation()] = gs.perft(depth - 1)
		gs.UndoMove()
	}
	return out
}
