package model

import (
	"encoding/json"
	"testing"
)

func TestMoveEqualityIgnoresFlags(t *testing.T) {
	gs := NewGameState()
	from, to := Position{X: 4, Y: 6}, Position{X: 4, Y: 4}

	generated, ok := FindMove(gs.GetValidMoves(), from, to)
	if !ok {
		t.Fatal("e2e4 not generated from the initial position")
	}

	var empty Board
	clicked := NewMove(from, to, &empty)
	if !generated.Equal(clicked) {
		t.Errorf("Equal() = false for moves with the same squares")
	}
	if generated.ID() != 6444 {
		t.Errorf("ID() = %d; want 6444", generated.ID())
	}

	other := NewMove(from, Position{X: 4, Y: 5}, &gs.board)
	if generated.Equal(other) {
		t.Errorf("Equal() = true for e2e4 and e2e3")
	}
}

func TestMoveEqualityFromSquaresOnly(t *testing.T) {
	generated := mustFind(t, NewGameState().GetValidMoves(), "e2e4")
	e2, e4 := Position{X: 4, Y: 6}, Position{X: 4, Y: 4}
	b1, c3 := Position{X: 1, Y: 7}, Position{X: 2, Y: 5}

	literal := Move{From: e2, To: e4}
	if !literal.Equal(generated) || !generated.Equal(literal) {
		t.Errorf("Move{e2,e4}.Equal(generated e2e4) = false; want true")
	}
	if literal.ID() != 6444 {
		t.Errorf("Move{e2,e4}.ID() = %d; want 6444", literal.ID())
	}
	if knight := (Move{From: b1, To: c3}); literal.Equal(knight) {
		t.Errorf("Move{e2,e4}.Equal(Move{b1,c3}) = true; want false")
	}

	raw, err := json.Marshal(generated)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Move
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if !decoded.Equal(generated) || decoded.ID() != generated.ID() {
		t.Errorf("decoded move %v (id %d) does not match %v", decoded, decoded.ID(), generated)
	}
	if got, ok := FindMove([]Move{generated}, literal.From, literal.To); !ok || !got.Equal(generated) {
		t.Errorf("FindMove(e2, e4) = %v, %v", got, ok)
	}
}

func TestCoordinateNotation(t *testing.T) {
	tests := []struct {
		from, to Position
		want     string
	}{
		{Position{X: 4, Y: 6}, Position{X: 4, Y: 4}, "e2e4"},
		{Position{X: 0, Y: 0}, Position{X: 7, Y: 7}, "a8h1"},
		{Position{X: 6, Y: 7}, Position{X: 5, Y: 5}, "g1f3"},
	}
	board := newBoard()
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := NewMove(tt.from, tt.to, &board).CoordinateNotation()
			if got != tt.want {
				t.Errorf("CoordinateNotation() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestParseSquare(t *testing.T) {
	p, err := ParseSquare("e4")
	if err != nil {
		t.Fatalf("ParseSquare(e4) error: %v", err)
	}
	if p != (Position{X: 4, Y: 4}) {
		t.Errorf("ParseSquare(e4) = %+v; want {4 4}", p)
	}
	for _, bad := range []string{"", "e", "i1", "a9", "a0", "e44"} {
		if _, err := ParseSquare(bad); err == nil {
			t.Errorf("ParseSquare(%q) error = nil; want error", bad)
		}
	}
}

func TestMoveNotation(t *testing.T) {
	gs, err := LoadFEN("r3k3/1P6/5n2/3pP3/8/8/8/R3K2R w KQq d6 0 1")
	if err != nil {
		t.Fatal(err)
	}
	moves := gs.GetValidMoves()

	tests := []struct {
		move string
		want string
	}{
		{"e1g1", "O-O"},
		{"e1c1", "O-O-O"},
		{"e5d6", "exd6"},
		{"b7a8", "bxa8=Q"},
		{"b7b8", "b8=Q"},
		{"h1h2", "Rh2"},
		{"e1f2", "Kf2"},
	}
	for _, tt := range tests {
		t.Run(tt.move, func(t *testing.T) {
			m := mustFind(t, moves, tt.move)
			if got := m.Notation(); got != tt.want {
				t.Errorf("Notation() = %q; want %q", got, tt.want)
			}
		})
	}
}

// mustFind looks a move up by its coordinate notation.
func mustFind(t *testing.T, moves []Move, notation string) Move {
	t.Helper()
	from, err := ParseSquare(notation[:2])
	if err != nil {
		t.Fatal(err)
	}
	to, err := ParseSquare(notation[2:4])
	if err != nil {
		t.Fatal(err)
	}
	m, ok := FindMove(moves, from, to)
	if !ok {
		t.Fatalf("move %s not in legal moves %v", notation, moves)
	}
	return m
}

func hasMove(moves []Move, notation string) bool {
	for _, m := range moves {
		if m.CoordinateNotation() == notation {
			return true
		}
	}
	return false
}
