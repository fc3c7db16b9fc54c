package model

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// snapshot is everything MakeMove followed by UndoMove must restore.
type snapshot struct {
	Board     Board
	ToMove    Color
	Rights    CastleRights
	EnPassant *Position
	WhiteKing Position
	BlackKing Position
	Plies     int
}

func takeSnapshot(gs *GameState) snapshot {
	var ep *Position
	if target, ok := gs.EnPassantTarget(); ok {
		ep = &target
	}
	return snapshot{
		Board:     gs.Board(),
		ToMove:    gs.SideToMove(),
		Rights:    gs.CastleRights(),
		EnPassant: ep,
		WhiteKing: gs.KingLocation(White),
		BlackKing: gs.KingLocation(Black),
		Plies:     len(gs.MoveLog()),
	}
}

func mustLoad(t *testing.T, fen string) *GameState {
	t.Helper()
	gs, err := LoadFEN(fen)
	if err != nil {
		t.Fatalf("LoadFEN(%q) error: %v", fen, err)
	}
	return gs
}

func play(t *testing.T, gs *GameState, notations ...string) {
	t.Helper()
	for _, n := range notations {
		gs.MakeMove(mustFind(t, gs.GetValidMoves(), n))
	}
}

// checkInvariants verifies the king cache and the rights log length.
func checkInvariants(t *testing.T, gs *GameState) {
	t.Helper()
	for _, c := range []Color{White, Black} {
		loc := gs.KingLocation(c)
		if got := gs.board.at(loc); got != (Piece{Type: King, Color: c}) {
			t.Errorf("%s king cache %v holds %+v", c, loc, got)
		}
	}
	if len(gs.castleRightsLog) != len(gs.moveLog)+1 {
		t.Errorf("len(castleRightsLog) = %d; want %d", len(gs.castleRightsLog), len(gs.moveLog)+1)
	}
	if gs.castleRightsLog[len(gs.castleRightsLog)-1] != gs.castleRights {
		t.Errorf("top of rights log %v differs from current rights %v",
			gs.castleRightsLog[len(gs.castleRightsLog)-1], gs.castleRights)
	}
}

func TestInitialPosition(t *testing.T) {
	gs := NewGameState()

	moves := gs.GetValidMoves()
	if len(moves) != 20 {
		t.Errorf("len(GetValidMoves()) = %d; want 20", len(moves))
	}
	if gs.SideToMove() != White {
		t.Errorf("SideToMove() = %v; want white", gs.SideToMove())
	}
	if gs.Checkmate() || gs.Stalemate() {
		t.Errorf("Checkmate() = %v, Stalemate() = %v; want both false", gs.Checkmate(), gs.Stalemate())
	}
	if gs.FEN() != StartFEN {
		t.Errorf("FEN() = %q; want %q", gs.FEN(), StartFEN)
	}
	checkInvariants(t, gs)
}

func TestUndoOnEmptyLogIsNoop(t *testing.T) {
	gs := NewGameState()
	before := takeSnapshot(gs)
	gs.UndoMove()
	if diff := cmp.Diff(before, takeSnapshot(gs)); diff != "" {
		t.Errorf("UndoMove() on empty log changed state (-want +got):\n%s", diff)
	}
}

func TestMakeUndoRoundTrip(t *testing.T) {
	positions := []struct {
		name string
		fen  string
	}{
		{"initial", StartFEN},
		{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"},
		{"en passant available", "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3"},
		{"promotions", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1"},
		{"black to move", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R b KQkq - 0 1"},
	}
	for _, pos := range positions {
		t.Run(pos.name, func(t *testing.T) {
			gs := mustLoad(t, pos.fen)
			before := takeSnapshot(gs)
			for _, m := range gs.GetValidMoves() {
				gs.MakeMove(m)
				checkInvariants(t, gs)
				gs.UndoMove()
				if diff := cmp.Diff(before, takeSnapshot(gs)); diff != "" {
					t.Fatalf("%s: make/undo changed state (-want +got):\n%s", m, diff)
				}
			}
			checkInvariants(t, gs)
		})
	}
}

func TestGetValidMovesLeavesStateUntouched(t *testing.T) {
	gs := mustLoad(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	play(t, gs, "a2a4")
	before := takeSnapshot(gs)
	gs.GetValidMoves()
	if diff := cmp.Diff(before, takeSnapshot(gs)); diff != "" {
		t.Errorf("GetValidMoves() changed state (-want +got):\n%s", diff)
	}
}

func TestEnPassant(t *testing.T) {
	gs := mustLoad(t, "k7/3p4/8/4P3/8/8/8/7K b - - 0 1")
	play(t, gs, "d7d5")

	target, ok := gs.EnPassantTarget()
	if !ok || target != (Position{X: 3, Y: 2}) {
		t.Fatalf("EnPassantTarget() = %v, %v; want d6, true", target, ok)
	}

	capture := mustFind(t, gs.GetValidMoves(), "e5d6")
	if !capture.IsEnPassant {
		t.Fatalf("e5d6 IsEnPassant = false; want true")
	}
	if capture.PieceCaptured != (Piece{Type: Pawn, Color: Black}) {
		t.Errorf("PieceCaptured = %+v; want black pawn", capture.PieceCaptured)
	}

	before := takeSnapshot(gs)
	gs.MakeMove(capture)
	board := gs.Board()
	if !board[3][3].IsEmpty() {
		t.Errorf("d5 holds %+v after en passant; want empty", board[3][3])
	}
	if board[2][3] != (Piece{Type: Pawn, Color: White}) {
		t.Errorf("d6 holds %+v after en passant; want white pawn", board[2][3])
	}
	if !board[3][4].IsEmpty() {
		t.Errorf("e5 holds %+v after en passant; want empty", board[3][4])
	}
	if _, ok := gs.EnPassantTarget(); ok {
		t.Errorf("EnPassantTarget() still set after the capture")
	}

	gs.UndoMove()
	if diff := cmp.Diff(before, takeSnapshot(gs)); diff != "" {
		t.Errorf("undo of en passant (-want +got):\n%s", diff)
	}
}

func TestEnPassantWindowCloses(t *testing.T) {
	gs := mustLoad(t, "k7/3p4/8/4P3/8/8/8/7K b - - 0 1")
	play(t, gs, "d7d5", "h1h2", "a8b8")
	if hasMove(gs.GetValidMoves(), "e5d6") {
		t.Errorf("e5d6 still offered two plies after the double push")
	}
}

// Undoing the ply after a double push reopens the window: the target comes
// back from the log rather than from the undone move's squares.
func TestUndoRestoresEnPassantTargetFromLog(t *testing.T) {
	gs := NewGameState()
	play(t, gs, "e2e4", "g8f6")
	if _, ok := gs.EnPassantTarget(); ok {
		t.Fatalf("EnPassantTarget() set after a knight move")
	}
	gs.UndoMove()
	target, ok := gs.EnPassantTarget()
	if !ok || target.String() != "e3" {
		t.Errorf("EnPassantTarget() = %v, %v after undo; want e3, true", target, ok)
	}
	gs.UndoMove()
	if _, ok := gs.EnPassantTarget(); ok {
		t.Errorf("EnPassantTarget() set at the initial position after undo")
	}
}

func TestEnPassantDiscoveredCheckIsIllegal(t *testing.T) {
	// Capturing would empty the fifth rank between the rook and the king.
	gs := mustLoad(t, "8/8/8/K2pP2r/8/8/8/7k w - d6 0 1")
	if hasMove(gs.GetValidMoves(), "e5d6") {
		t.Errorf("e5d6 offered although it exposes the king along the rank")
	}
}

func TestCastling(t *testing.T) {
	tests := []struct {
		name          string
		fen           string
		wantKingside  bool
		wantQueenside bool
	}{
		{"both available", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", true, true},
		{"no rights", "r3k2r/8/8/8/8/8/8/R3K2R w kq - 0 1", false, false},
		{"kingside landing square attacked", "r3k1r1/8/8/8/8/8/8/R3K2R w KQq - 0 1", false, true},
		{"kingside transit square attacked", "r3kr2/8/8/8/8/8/8/R3K2R w KQq - 0 1", false, true},
		{"transit square covered by a pawn", "4k3/8/8/8/8/8/6p1/R3K2R w KQ - 0 1", false, true},
		{"king in check", "4k3/8/8/8/1b6/8/8/R3K2R w KQ - 0 1", false, false},
		{"queenside transit square attacked", "3rk2r/8/8/8/8/8/8/R3K2R w KQk - 0 1", true, false},
		{"queenside landing square attacked", "2r1k2r/8/8/8/8/8/8/R3K2R w KQk - 0 1", true, false},
		{"rook-side square attacked only", "1r2k2r/8/8/8/8/8/8/R3K2R w KQk - 0 1", true, true},
		{"queenside blocked", "r3k2r/8/8/8/8/8/8/RN2K2R w KQkq - 0 1", true, false},
		{"kingside blocked", "r3k2r/8/8/8/8/8/8/R3KB1R w KQkq - 0 1", false, true},
		{"black castles", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := mustLoad(t, tt.fen)
			moves := gs.GetValidMoves()
			kingside, queenside := "e1g1", "e1c1"
			if gs.SideToMove() == Black {
				kingside, queenside = "e8g8", "e8c8"
			}
			if got := hasMove(moves, kingside); got != tt.wantKingside {
				t.Errorf("kingside castle offered = %v; want %v", got, tt.wantKingside)
			}
			if got := hasMove(moves, queenside); got != tt.wantQueenside {
				t.Errorf("queenside castle offered = %v; want %v", got, tt.wantQueenside)
			}
		})
	}
}

func TestCastleMovesRook(t *testing.T) {
	gs := mustLoad(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	before := takeSnapshot(gs)

	castle := mustFind(t, gs.GetValidMoves(), "e1g1")
	if !castle.IsCastle {
		t.Fatal("e1g1 IsCastle = false; want true")
	}
	gs.MakeMove(castle)
	if got := gs.FEN(); got != "r3k2r/8/8/8/8/8/8/R4RK1 b kq - 0 1" {
		t.Errorf("FEN() after O-O = %q", got)
	}
	if gs.KingLocation(White) != (Position{X: 6, Y: 7}) {
		t.Errorf("KingLocation(white) = %v; want g1", gs.KingLocation(White))
	}
	checkInvariants(t, gs)

	play(t, gs, "e8c8")
	if got := gs.FEN(); got != "2kr3r/8/8/8/8/8/8/R4RK1 w - - 0 2" {
		t.Errorf("FEN() after O-O-O = %q", got)
	}

	gs.UndoMove()
	gs.UndoMove()
	if diff := cmp.Diff(before, takeSnapshot(gs)); diff != "" {
		t.Errorf("undo of both castles (-want +got):\n%s", diff)
	}
}

func TestCastleRightsUpdates(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		moves []string
		want  string
	}{
		{"king move clears both", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", []string{"e1e2"}, "kq"},
		{"kingside rook move", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", []string{"h1h5"}, "Qkq"},
		{"queenside rook move", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", []string{"a1a5"}, "Kkq"},
		{"rook captured on its corner", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", []string{"a1a8"}, "Kk"},
		{"rook captured off its corner", "4k3/8/8/8/8/8/r7/R3K2R w KQ - 0 1", []string{"a1a2"}, "K"},
		{"rights never return", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", []string{"h1h2", "a8a7", "h2h1"}, "Qk"},
		{"black king move", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", []string{"e8d8"}, "KQ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := mustLoad(t, tt.fen)
			play(t, gs, tt.moves...)
			if got := gs.CastleRights().String(); got != tt.want {
				t.Errorf("CastleRights() = %s; want %s", got, tt.want)
			}
			checkInvariants(t, gs)
			for range tt.moves {
				gs.UndoMove()
			}
			if got, want := gs.CastleRights(), mustLoad(t, tt.fen).CastleRights(); got != want {
				t.Errorf("CastleRights() after undo = %v; want %v", got, want)
			}
		})
	}
}

func TestPromotion(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		move string
		want Piece
	}{
		{"white push", "k7/4P3/8/8/8/8/8/7K w - - 0 1", "e7e8", Piece{Type: Queen, Color: White}},
		{"white capture", "k2r4/4P3/8/8/8/8/8/7K w - - 0 1", "e7d8", Piece{Type: Queen, Color: White}},
		{"black push", "k7/8/8/8/8/8/3p4/7K b - - 0 1", "d2d1", Piece{Type: Queen, Color: Black}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := mustLoad(t, tt.fen)
			before := takeSnapshot(gs)
			m := mustFind(t, gs.GetValidMoves(), tt.move)
			if !m.IsPawnPromotion {
				t.Fatalf("%s IsPawnPromotion = false; want true", tt.move)
			}
			gs.MakeMove(m)
			if got := gs.Board().At(m.To); got != tt.want {
				t.Errorf("piece on %v = %+v; want %+v", m.To, got, tt.want)
			}
			gs.UndoMove()
			if diff := cmp.Diff(before, takeSnapshot(gs)); diff != "" {
				t.Errorf("undo of promotion (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTerminalStates(t *testing.T) {
	t.Run("fool's mate", func(t *testing.T) {
		gs := NewGameState()
		play(t, gs, "f2f3", "e7e5", "g2g4", "d8h4")
		moves := gs.GetValidMoves()
		if len(moves) != 0 {
			t.Errorf("len(GetValidMoves()) = %d; want 0", len(moves))
		}
		if !gs.Checkmate() || gs.Stalemate() {
			t.Errorf("Checkmate() = %v, Stalemate() = %v; want true, false", gs.Checkmate(), gs.Stalemate())
		}
		gs.UndoMove()
		if len(gs.GetValidMoves()) == 0 || gs.Checkmate() || gs.Stalemate() {
			t.Errorf("position after takeback still terminal")
		}
	})

	t.Run("stalemate", func(t *testing.T) {
		gs := mustLoad(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
		if moves := gs.GetValidMoves(); len(moves) != 0 {
			t.Errorf("len(GetValidMoves()) = %d; want 0", len(moves))
		}
		if gs.Checkmate() || !gs.Stalemate() {
			t.Errorf("Checkmate() = %v, Stalemate() = %v; want false, true", gs.Checkmate(), gs.Stalemate())
		}
	})

	t.Run("check with replies", func(t *testing.T) {
		gs := mustLoad(t, "4k3/8/8/8/8/8/8/4R1K1 b - - 0 1")
		if !gs.InCheck() {
			t.Fatal("InCheck() = false; want true")
		}
		moves := gs.GetValidMoves()
		if len(moves) != 4 || gs.Checkmate() || gs.Stalemate() {
			t.Errorf("len = %d, Checkmate() = %v, Stalemate() = %v; want 4, false, false",
				len(moves), gs.Checkmate(), gs.Stalemate())
		}
	})
}

func TestPinnedPieceCannotMove(t *testing.T) {
	gs := mustLoad(t, "4r1k1/8/8/8/8/8/4N3/4K3 w - - 0 1")
	for _, m := range gs.GetValidMoves() {
		if m.From == (Position{X: 4, Y: 6}) {
			t.Errorf("pinned knight offered %s", m)
		}
	}
}

func TestKingEscapesPawnCheck(t *testing.T) {
	gs := mustLoad(t, "4k3/8/8/8/8/8/3p4/4K3 w - - 0 1")
	if !gs.InCheck() {
		t.Fatal("InCheck() = false; want true")
	}
	var got []string
	for _, m := range gs.GetValidMoves() {
		got = append(got, m.CoordinateNotation())
	}
	sort.Strings(got)
	want := []string{"e1d1", "e1d2", "e1e2", "e1f1", "e1f2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetValidMoves() mismatch (-want +got):\n%s", diff)
	}
}

func TestResetRestoresInitialPosition(t *testing.T) {
	gs := NewGameState()
	play(t, gs, "e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "f8c5", "e1g1", "d7d5")
	if _, ok := gs.EnPassantTarget(); !ok {
		t.Fatal("no en-passant target after d7d5")
	}

	gs.Reset()

	if diff := cmp.Diff(takeSnapshot(NewGameState()), takeSnapshot(gs)); diff != "" {
		t.Errorf("state after Reset mismatch (-want +got):\n%s", diff)
	}
	checkInvariants(t, gs)
	if len(gs.moveLog) != 0 || len(gs.castleRightsLog) != 1 || len(gs.enPassantLog) != 0 {
		t.Errorf("log lengths after Reset = %d, %d, %d; want 0, 1, 0",
			len(gs.moveLog), len(gs.castleRightsLog), len(gs.enPassantLog))
	}
	if gs.Checkmate() || gs.Stalemate() {
		t.Error("terminal flag survived Reset")
	}
	if n := len(gs.GetValidMoves()); n != 20 {
		t.Errorf("GetValidMoves() after Reset = %d moves; want 20", n)
	}
}
