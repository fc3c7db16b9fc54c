package service

import "errors"

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrGameExists    = errors.New("game already exists")
	ErrGameFull      = errors.New("game is full")
	ErrNotInGame     = errors.New("player not in game")
	ErrNotAuthorized = errors.New("not authorized to join this game")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrIllegalMove   = errors.New("illegal move")
	ErrInvalidSquare = errors.New("invalid square")
	ErrGameOver      = errors.New("game is over")
	ErrNothingToUndo = errors.New("no move to undo")
	ErrAlreadyQueued = errors.New("player already in matchmaking queue")
	ErrNotQueued     = errors.New("player not in matchmaking queue")

	ErrAlreadyConnected = errors.New("player already connected to this game")
	ErrGameInProgress   = errors.New("game is still in progress")
)
