package service

import "github.com/benbeisheim/chessrules/internal/model"

// GameState is the snapshot sent to clients after every change.
type GameState struct {
	Version         uint64             `json:"version"`
	Sound           string             `json:"sound"`
	Board           [8][8]*model.Piece `json:"board"`
	ToMove          model.Color        `json:"toMove"`
	MoveHistory     []string           `json:"moveHistory"`
	LegalMoves      []MoveView         `json:"legalMoves"`
	LastMove        *MoveView          `json:"lastMove"`
	IsCheck         bool               `json:"isCheck"`
	Checkmate       bool               `json:"checkmate"`
	Stalemate       bool               `json:"stalemate"`
	Resolve         *string            `json:"resolve"`
	EnPassantTarget *string            `json:"enPassantTarget"`
	CastleRights    model.CastleRights `json:"castleRights"`
	FEN             string             `json:"fen"`
	Players         struct {
		White model.ClientPlayer `json:"white"`
		Black model.ClientPlayer `json:"black"`
	} `json:"players"`
}

// MoveView is a move as the client sees it.
type MoveView struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Notation string `json:"notation"`
}

func newMoveView(m model.Move) MoveView {
	return MoveView{
		From:     m.From.String(),
		To:       m.To.String(),
		Notation: m.Notation(),
	}
}

func newMoveViews(moves []model.Move) []MoveView {
	views := make([]MoveView, 0, len(moves))
	for _, m := range moves {
		views = append(views, newMoveView(m))
	}
	return views
}

func boardView(b model.Board) [8][8]*model.Piece {
	var out [8][8]*model.Piece
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if piece := b[y][x]; !piece.IsEmpty() {
				out[y][x] = &piece
			}
		}
	}
	return out
}
