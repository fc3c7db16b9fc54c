// service/game_manager.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/benbeisheim/chessrules/internal/store"
	"github.com/benbeisheim/chessrules/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Options configures a GameManager.
type Options struct {
	ClockTime           time.Duration
	MatchmakingInterval time.Duration
	Archive             store.Archive
}

// MatchFoundEvent tells a queued player which game they were paired into.
type MatchFoundEvent struct {
	GameID string      `json:"gameId"`
	Color  model.Color `json:"color"`
}

type GameManager struct {
	games            map[string]*Session
	queue            *model.Queue
	matchingChannels map[string]chan string
	pendingMatches   map[string]string // playerID -> undelivered matchFound message
	opts             Options
	mu               sync.RWMutex
	cancel           context.CancelFunc
	done             chan struct{}
}

func NewGameManager(opts Options) *GameManager {
	if opts.Archive == nil {
		opts.Archive = store.NewMemoryArchive()
	}
	if opts.ClockTime <= 0 {
		opts.ClockTime = 10 * time.Minute
	}
	if opts.MatchmakingInterval <= 0 {
		opts.MatchmakingInterval = time.Second
	}
	return &GameManager{
		games:            make(map[string]*Session),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		pendingMatches:   make(map[string]string),
		opts:             opts,
	}
}

// Start runs the matchmaking loop until Stop is called.
func (gm *GameManager) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	gm.cancel = cancel
	gm.done = make(chan struct{})
	go func() {
		defer close(gm.done)
		gm.processMatchmaking(ctx)
	}()
}

func (gm *GameManager) Stop() {
	if gm.cancel == nil {
		return
	}
	gm.cancel()
	<-gm.done
	gm.cancel = nil
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	log.Debugf("registering matchmaking channel for player %s", playerID)

	// A newer registration replaces the old one; the old channel is closed so
	// its reader stops waiting.
	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}
	// Matched before the channel existed: deliver straight away.
	if raw, ok := gm.pendingMatches[playerID]; ok {
		select {
		case ch <- raw:
			delete(gm.pendingMatches, playerID)
			close(ch)
			return nil
		default:
		}
	}
	gm.matchingChannels[playerID] = ch
	return nil
}

func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	// The channel is closed by whoever still owns it: the sender after a
	// match, or RegisterMatchmakingChannel on replacement.
	if current, ok := gm.matchingChannels[playerID]; ok && current == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func (gm *GameManager) processMatchmaking(ctx context.Context) {
	ticker := time.NewTicker(gm.opts.MatchmakingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gm.matchPlayers()
		}
	}
}

// matchPlayers pairs queued players until fewer than two are waiting.
func (gm *GameManager) matchPlayers() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for {
		player1, player2, ok := gm.queue.GetNextPair()
		if !ok {
			return
		}

		gameID := uuid.New().String()
		game := NewSession(gameID, gm.opts.ClockTime, gm.opts.Archive)
		p1Color, err := game.AddPlayer(player1.ID)
		if err != nil {
			log.Errorf("adding player %s to game %s: %v", player1.ID, gameID, err)
			continue
		}
		p2Color, err := game.AddPlayer(player2.ID)
		if err != nil {
			log.Errorf("adding player %s to game %s: %v", player2.ID, gameID, err)
			continue
		}
		gm.games[gameID] = game
		log.Infof("matched %s and %s in game %s", player1.ID, player2.ID, gameID)

		gm.notifyMatch(player1.ID, MatchFoundEvent{GameID: gameID, Color: p1Color})
		gm.notifyMatch(player2.ID, MatchFoundEvent{GameID: gameID, Color: p2Color})
	}
}

// notifyMatch sends the event and retires the player's channel. A player
// without a channel gets the event when one registers. Must be called with
// gm.mu held.
func (gm *GameManager) notifyMatch(playerID string, event MatchFoundEvent) {
	msg, err := ws.NewMessage(ws.MessageTypeMatchFound, event)
	if err != nil {
		log.Errorf("marshalling match event for %s: %v", playerID, err)
		return
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("marshalling match event for %s: %v", playerID, err)
		return
	}

	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		log.Debugf("holding match event for %s until a channel registers", playerID)
		gm.pendingMatches[playerID] = string(raw)
		return
	}
	delete(gm.matchingChannels, playerID)
	defer close(ch)
	select {
	case ch <- string(raw):
	default:
		log.Warnf("matchmaking channel of %s is full, holding event", playerID)
		gm.pendingMatches[playerID] = string(raw)
	}
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}
	gm.games[gameID] = NewSession(gameID, gm.opts.ClockTime, gm.opts.Archive)
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.NoColor, err
	}
	return game.AddPlayer(playerID)
}

// JoinMatchmaking queues the player. An undelivered match from an earlier
// search is dropped.
func (gm *GameManager) JoinMatchmaking(playerID string) error {
	gm.mu.Lock()
	delete(gm.pendingMatches, playerID)
	gm.mu.Unlock()

	err := gm.queue.AddPlayer(model.Player{ID: playerID})
	if errors.Is(err, model.ErrAlreadyQueued) {
		return ErrAlreadyQueued
	}
	return err
}

func (gm *GameManager) LeaveMatchmaking(playerID string) error {
	if !gm.queue.RemovePlayer(playerID) {
		return ErrNotQueued
	}
	return nil
}

func (gm *GameManager) GetGameState(gameID string) (GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) GetValidMoves(gameID string) ([]model.Move, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.ValidMoves(), nil
}

func (gm *GameManager) MakeMove(ctx context.Context, gameID, playerID string, from, to model.Position) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.MakeMove(ctx, playerID, from, to)
}

func (gm *GameManager) UndoMove(ctx context.Context, gameID, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Undo(ctx, playerID)
}

func (gm *GameManager) Rematch(ctx context.Context, gameID, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Rematch(ctx, playerID)
}

func (gm *GameManager) SendError(gameID string, conn Conn, err error) {
	game, gerr := gm.GetGame(gameID)
	if gerr != nil {
		return
	}
	game.SendError(conn, err)
}

func (gm *GameManager) Archive(ctx context.Context, gameID string) ([]store.MoveRecord, error) {
	if _, err := gm.GetGame(gameID); err != nil {
		return nil, err
	}
	recs, err := gm.opts.Archive.Moves(ctx, gameID)
	if errors.Is(err, store.ErrGameNotFound) {
		return []store.MoveRecord{}, nil
	}
	return recs, err
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}
