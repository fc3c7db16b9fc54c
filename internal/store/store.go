// Package store keeps the persisted move log of each game. The engine never
// writes here; the session layer records every ply it applies.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrGameNotFound = errors.New("no moves recorded for game")

// MoveRecord is one archived ply.
type MoveRecord struct {
	GameID    string    `json:"gameId" bson:"gameId"`
	Ply       int       `json:"ply" bson:"ply"` // 1-based
	PlayerID  string    `json:"playerId" bson:"playerId"`
	Color     string    `json:"color" bson:"color"`
	Move      string    `json:"move" bson:"move"` // coordinate notation, e.g. "e2e4"
	Notation  string    `json:"notation" bson:"notation"`
	Piece     string    `json:"piece" bson:"piece"`
	Capture   bool      `json:"capture" bson:"capture"`
	Promotion bool      `json:"promotion,omitempty" bson:"promotion,omitempty"`
	Castle    bool      `json:"castle,omitempty" bson:"castle,omitempty"`
	EnPassant bool      `json:"enPassant,omitempty" bson:"enPassant,omitempty"`
	Check     bool      `json:"check" bson:"check"`
	Checkmate bool      `json:"checkmate" bson:"checkmate"`
	Stalemate bool      `json:"stalemate" bson:"stalemate"`
	FEN       string    `json:"fen" bson:"fen"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Archive persists move logs.
type Archive interface {
	// Record appends one ply.
	Record(ctx context.Context, rec MoveRecord) error
	// Truncate removes every ply numbered fromPly or later, used on takeback.
	Truncate(ctx context.Context, gameID string, fromPly int) error
	// Moves returns the log of a game ordered by ply.
	Moves(ctx context.Context, gameID string) ([]MoveRecord, error)
	Close(ctx context.Context) error
}
