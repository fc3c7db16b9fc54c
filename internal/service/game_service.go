package service

import (
	"context"
	"fmt"

	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/benbeisheim/chessrules/internal/store"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) error {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) GetValidMoves(gameID string) ([]MoveView, error) {
	moves, err := gs.gameManager.GetValidMoves(gameID)
	if err != nil {
		return nil, err
	}
	return newMoveViews(moves), nil
}

// HandleMove parses the two squares and plays the move for the player.
func (gs *GameService) HandleMove(ctx context.Context, gameID, playerID, from, to string) error {
	fromPos, err := model.ParseSquare(from)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSquare, err)
	}
	toPos, err := model.ParseSquare(to)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSquare, err)
	}
	return gs.gameManager.MakeMove(ctx, gameID, playerID, fromPos, toPos)
}

func (gs *GameService) HandleUndo(ctx context.Context, gameID, playerID string) error {
	return gs.gameManager.UndoMove(ctx, gameID, playerID)
}

func (gs *GameService) HandleRematch(ctx context.Context, gameID, playerID string) error {
	return gs.gameManager.Rematch(ctx, gameID, playerID)
}

// SendError replies to a game observer without racing the state broadcasts.
func (gs *GameService) SendError(gameID string, conn Conn, err error) {
	gs.gameManager.SendError(gameID, conn, err)
}

func (gs *GameService) GetArchive(ctx context.Context, gameID string) ([]store.MoveRecord, error) {
	return gs.gameManager.Archive(ctx, gameID)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	return gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}
