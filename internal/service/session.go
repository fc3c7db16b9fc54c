package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chessrules/internal/model"
	"github.com/benbeisheim/chessrules/internal/store"
	"github.com/benbeisheim/chessrules/internal/ws"
	"github.com/gofiber/fiber/v2/log"
)

// Conn is the part of a websocket connection a session writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	lastVersion uint64
	mu          sync.Mutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Session is one live game: the engine state, the two seats, their clocks
// and the observers to notify.
type Session struct {
	ID          string
	mu          sync.Mutex
	state       *model.GameState
	validMoves  []model.Move
	sound       string
	version     uint64
	clockTime   time.Duration
	players     map[model.Color]*model.Player
	clocks      map[model.Color]*model.Clock
	archive     store.Archive
	connections *GameConnections
}

func NewSession(id string, clockTime time.Duration, archive store.Archive) *Session {
	s := &Session{
		ID:    id,
		state: model.NewGameState(),
		players: map[model.Color]*model.Player{
			model.White: {Color: model.White},
			model.Black: {Color: model.Black},
		},
		clocks: map[model.Color]*model.Clock{
			model.White: model.NewClock(clockTime),
			model.Black: model.NewClock(clockTime),
		},
		clockTime:   clockTime,
		archive:     archive,
		connections: NewGameConnections(),
	}
	s.validMoves = s.state.GetValidMoves()
	return s
}

// AddPlayer seats the player, white first. A player already seated gets
// their seat back.
func (s *Session) AddPlayer(playerID string) (model.Color, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if color, ok := s.colorOf(playerID); ok {
		return color, nil
	}
	for _, color := range []model.Color{model.White, model.Black} {
		if s.players[color].ID == "" {
			s.players[color].ID = playerID
			log.Infof("game %s: player %s seated as %s", s.ID, playerID, color)
			return color, nil
		}
	}
	return model.NoColor, ErrGameFull
}

func (s *Session) colorOf(playerID string) (model.Color, bool) {
	for color, p := range s.players {
		if p.ID != "" && p.ID == playerID {
			return color, true
		}
	}
	return model.NoColor, false
}

func (s *Session) IsPlayerInGame(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.colorOf(playerID)
	return ok
}

func (s *Session) canSpectate() bool {
	return s.players[model.White].ID == "" || s.players[model.Black].ID == ""
}

// ValidMoves returns the legal moves of the side to move.
func (s *Session) ValidMoves() []model.Move {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Move(nil), s.validMoves...)
}

func (s *Session) GetState() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// MakeMove plays the move from/to for the player. The pair must match one of
// the legal moves of the current position; anything else is rejected before
// it reaches the engine.
func (s *Session) MakeMove(ctx context.Context, playerID string, from, to model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	color, ok := s.colorOf(playerID)
	if !ok {
		return ErrNotInGame
	}
	if s.state.Checkmate() || s.state.Stalemate() {
		return ErrGameOver
	}
	if color != s.state.SideToMove() {
		return ErrNotYourTurn
	}
	move, ok := model.FindMove(s.validMoves, from, to)
	if !ok {
		return fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
	}

	s.clocks[color].Stop()
	s.state.MakeMove(move)
	s.validMoves = s.state.GetValidMoves()

	switch {
	case s.state.InCheck():
		s.sound = "check"
	case !move.PieceCaptured.IsEmpty():
		s.sound = "capture"
	default:
		s.sound = "move"
	}
	if !s.state.Checkmate() && !s.state.Stalemate() {
		s.clocks[color.Opposite()].Start()
	}

	s.record(ctx, playerID, move)
	s.broadcast()
	return nil
}

// Undo takes back the last ply. Either seated player may ask for it.
func (s *Session) Undo(ctx context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.colorOf(playerID); !ok {
		return ErrNotInGame
	}
	plies := len(s.state.MoveLog())
	if plies == 0 {
		return ErrNothingToUndo
	}

	s.clocks[s.state.SideToMove()].Stop()
	s.state.UndoMove()
	s.validMoves = s.state.GetValidMoves()
	s.sound = "move"
	if plies > 1 {
		s.clocks[s.state.SideToMove()].Start()
	}

	if err := s.archive.Truncate(ctx, s.ID, plies); err != nil {
		log.Warnf("game %s: truncating archive at ply %d: %v", s.ID, plies, err)
	}
	s.broadcast()
	return nil
}

// Rematch starts the game over from the initial position once the current
// one has ended. Seats stay as they are; clocks and the archive start fresh.
func (s *Session) Rematch(ctx context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.colorOf(playerID); !ok {
		return ErrNotInGame
	}
	if !s.state.Checkmate() && !s.state.Stalemate() {
		return ErrGameInProgress
	}

	s.state.Reset()
	s.validMoves = s.state.GetValidMoves()
	s.sound = ""
	for _, color := range []model.Color{model.White, model.Black} {
		s.clocks[color] = model.NewClock(s.clockTime)
	}
	if err := s.archive.Truncate(ctx, s.ID, 1); err != nil {
		log.Warnf("game %s: clearing archive for rematch: %v", s.ID, err)
	}
	log.Infof("game %s: rematch requested by %s", s.ID, playerID)
	s.broadcast()
	return nil
}

func (s *Session) record(ctx context.Context, playerID string, move model.Move) {
	rec := store.MoveRecord{
		GameID:    s.ID,
		Ply:       len(s.state.MoveLog()),
		PlayerID:  playerID,
		Color:     move.PieceMoved.Color.String(),
		Move:      move.CoordinateNotation(),
		Notation:  move.Notation(),
		Piece:     move.PieceMoved.Type.String(),
		Capture:   !move.PieceCaptured.IsEmpty(),
		Promotion: move.IsPawnPromotion,
		Castle:    move.IsCastle,
		EnPassant: move.IsEnPassant,
		Check:     s.state.InCheck(),
		Checkmate: s.state.Checkmate(),
		Stalemate: s.state.Stalemate(),
		FEN:       s.state.FEN(),
		CreatedAt: time.Now(),
	}
	if err := s.archive.Record(ctx, rec); err != nil {
		log.Warnf("game %s: archiving ply %d: %v", s.ID, rec.Ply, err)
	}
}

// snapshot must be called with s.mu held.
func (s *Session) snapshot() GameState {
	state := GameState{
		Version:      s.version,
		Sound:        s.sound,
		Board:        boardView(s.state.Board()),
		ToMove:       s.state.SideToMove(),
		LegalMoves:   newMoveViews(s.validMoves),
		IsCheck:      s.state.InCheck(),
		Checkmate:    s.state.Checkmate(),
		Stalemate:    s.state.Stalemate(),
		CastleRights: s.state.CastleRights(),
		FEN:          s.state.FEN(),
	}
	history := s.state.MoveLog()
	state.MoveHistory = make([]string, 0, len(history))
	for _, m := range history {
		state.MoveHistory = append(state.MoveHistory, m.Notation())
	}
	if last, ok := s.state.LastMove(); ok {
		view := newMoveView(last)
		state.LastMove = &view
	}
	if target, ok := s.state.EnPassantTarget(); ok {
		square := target.String()
		state.EnPassantTarget = &square
	}
	switch {
	case s.state.Checkmate():
		result := "checkmate"
		state.Resolve = &result
	case s.state.Stalemate():
		result := "stalemate"
		state.Resolve = &result
	}
	state.Players.White = s.clientPlayer(model.White)
	state.Players.Black = s.clientPlayer(model.Black)
	return state
}

func (s *Session) clientPlayer(color model.Color) model.ClientPlayer {
	return model.ClientPlayer{
		ID:       s.players[color].ID,
		Color:    color,
		TimeLeft: s.clocks[color].Tenths(),
	}
}

// RegisterConnection attaches a websocket observer. Seated players and, while
// a seat is free, anyone else may watch. A second connection for the same
// player is refused with ErrAlreadyConnected; the caller owns conn and
// closes it.
func (s *Session) RegisterConnection(playerID string, conn Conn) error {
	s.mu.Lock()
	isAuthorized := func() bool {
		_, ok := s.colorOf(playerID)
		return ok || s.canSpectate()
	}()
	state := s.snapshot()
	s.mu.Unlock()

	if !isAuthorized {
		return ErrNotAuthorized
	}

	s.connections.mu.Lock()
	if _, exists := s.connections.connections[playerID]; exists {
		s.connections.mu.Unlock()
		log.Debugf("game %s: rejecting duplicate connection for %s", s.ID, playerID)
		return ErrAlreadyConnected
	}
	s.connections.connections[playerID] = conn
	s.connections.mu.Unlock()
	log.Infof("game %s: registered connection for %s", s.ID, playerID)

	go s.connections.send(s.ID, playerID, conn, state)
	return nil
}

// UnregisterConnection drops conn if it is still the player's current
// connection.
func (s *Session) UnregisterConnection(playerID string, conn Conn) {
	s.connections.mu.Lock()
	defer s.connections.mu.Unlock()

	if current, exists := s.connections.connections[playerID]; exists && current == conn {
		delete(s.connections.connections, playerID)
		log.Infof("game %s: unregistered connection for %s", s.ID, playerID)
	}
}

// SendError replies to one observer. It goes through the same lock as state
// writes, so a connection never has two writers.
func (s *Session) SendError(conn Conn, err error) {
	s.connections.sendError(s.ID, conn, err)
}

// broadcast must be called with s.mu held. The snapshot is taken now and
// written out asynchronously under a new version.
func (s *Session) broadcast() {
	s.version++
	go s.connections.broadcast(s.ID, s.snapshot())
}

// broadcast writes state to every observer. A state older than one already
// sent is dropped, so observers never see positions go backwards.
func (gc *GameConnections) broadcast(gameID string, state GameState) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		log.Errorf("game %s: marshalling state: %v", gameID, err)
		return
	}

	gc.mu.Lock()
	defer gc.mu.Unlock()
	if state.Version <= gc.lastVersion {
		return
	}
	gc.lastVersion = state.Version
	for playerID, conn := range gc.connections {
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("game %s: dropping connection of %s: %v", gameID, playerID, err)
			delete(gc.connections, playerID)
		}
	}
}

// send writes the current state to a newly registered observer only.
func (gc *GameConnections) send(gameID, playerID string, conn Conn, state GameState) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		log.Errorf("game %s: marshalling state: %v", gameID, err)
		return
	}

	gc.mu.Lock()
	defer gc.mu.Unlock()
	if current, ok := gc.connections[playerID]; !ok || current != conn || state.Version < gc.lastVersion {
		return
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Warnf("game %s: dropping connection of %s: %v", gameID, playerID, err)
		delete(gc.connections, playerID)
	}
}

func (gc *GameConnections) sendError(gameID string, conn Conn, err error) {
	msg, merr := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
	if merr != nil {
		log.Errorf("game %s: marshalling error message: %v", gameID, merr)
		return
	}

	gc.mu.Lock()
	defer gc.mu.Unlock()
	if werr := conn.WriteJSON(msg); werr != nil {
		log.Debugf("game %s: writing error message: %v", gameID, werr)
	}
}
