package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN is wrapped by every LoadFEN failure.
var ErrInvalidFEN = errors.New("invalid FEN")

// LoadFEN builds a GameState from a FEN string. The half-move clock and move
// number are accepted but not tracked. The loaded castling rights become the
// pre-game snapshot and the move log starts empty.
func LoadFEN(fen string) (*GameState, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 || len(parts) > 6 {
		return nil, fmt.Errorf("%w: expected 4 to 6 fields, got %d", ErrInvalidFEN, len(parts))
	}

	gs := &GameState{}
	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	kings := map[Color]int{}
	for y, rank := range ranks {
		x := 0
		for _, r := range rank {
			if r >= '1' && r <= '8' {
				x += int(r - '0')
				continue
			}
			piece, ok := pieceFromFEN(r)
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, r)
			}
			if x >= 8 {
				return nil, fmt.Errorf("%w: rank %d is too long", ErrInvalidFEN, 8-y)
			}
			gs.board[y][x] = piece
			if piece.Type == King {
				kings[piece.Color]++
				gs.setKingLocation(piece.Color, Position{X: x, Y: y})
			}
			x++
		}
		if x != 8 {
			return nil, fmt.Errorf("%w: rank %d does not describe 8 squares", ErrInvalidFEN, 8-y)
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return nil, fmt.Errorf("%w: each side needs exactly one king", ErrInvalidFEN)
	}

	side, ok := ParseColor(parts[1])
	if !ok {
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, parts[1])
	}
	gs.toMove = side

	if parts[2] != "-" {
		for _, r := range parts[2] {
			switch r {
			case 'K':
				gs.castleRights.WhiteKingside = true
			case 'Q':
				gs.castleRights.WhiteQueenside = true
			case 'k':
				gs.castleRights.BlackKingside = true
			case 'q':
				gs.castleRights.BlackQueenside = true
			default:
				return nil, fmt.Errorf("%w: castling field %q", ErrInvalidFEN, parts[2])
			}
		}
	}
	gs.castleRightsLog = []CastleRights{gs.castleRights}

	if parts[3] != "-" {
		target, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("%w: en passant square: %v", ErrInvalidFEN, err)
		}
		gs.enPassantTarget = &target
	}

	for _, field := range parts[4:] {
		if _, err := strconv.Atoi(field); err != nil {
			return nil, fmt.Errorf("%w: move counter %q", ErrInvalidFEN, field)
		}
	}
	return gs, nil
}

// FEN renders the position. The half-move clock is always 0 and the move
// number is derived from the plies played since the position was set up.
func (gs *GameState) FEN() string {
	var sb strings.Builder
	for y := 0; y < 8; y++ {
		empty := 0
		for x := 0; x < 8; x++ {
			piece := gs.board[y][x]
			if piece.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(piece.fenLetter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if y < 7 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if gs.toMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	sb.WriteString(gs.castleRights.String())
	sb.WriteByte(' ')
	if gs.enPassantTarget != nil {
		sb.WriteString(gs.enPassantTarget.String())
	} else {
		sb.WriteByte('-')
	}
	fmt.Fprintf(&sb, " 0 %d", len(gs.moveLog)/2+1)
	return sb.String()
}
