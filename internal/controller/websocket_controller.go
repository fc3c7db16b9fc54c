package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benbeisheim/chessrules/internal/service"
	"github.com/benbeisheim/chessrules/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection serves one game observer until the socket closes.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Warnf("game %s: registering connection for %s: %v", gameID, playerID, err)
		// Not registered, so nothing else writes to c.
		wsc.sendError(c, err)
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("game %s: read from %s: %v", gameID, playerID, err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.gameService.SendError(gameID, c, fmt.Errorf("malformed message: %w", err))
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debugf("game %s: message from %s rejected: %v", gameID, playerID, err)
			wsc.gameService.SendError(gameID, c, err)
		}
	}
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	ctx := context.Background()
	switch msg.Type {
	case ws.MessageTypeMove:
		var move ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		return wsc.gameService.HandleMove(ctx, gameID, playerID, move.From, move.To)
	case ws.MessageTypeUndo:
		return wsc.gameService.HandleUndo(ctx, gameID, playerID)
	case ws.MessageTypeRematch:
		return wsc.gameService.HandleRematch(ctx, gameID, playerID)
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// sendError writes to a connection no session writes to.
func (wsc *WebSocketController) sendError(c *websocket.Conn, err error) {
	msg, merr := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
	if merr != nil {
		log.Errorf("marshalling error message: %v", merr)
		return
	}
	if werr := c.WriteJSON(msg); werr != nil {
		log.Debugf("writing error message: %v", werr)
	}
}

// HandleMatchmaking waits for the player's match and forwards the event.
// A client that disconnects first is taken out of the queue.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID := c.Locals("playerID").(string)

	ch := make(chan string, 1)
	if err := wsc.gameService.RegisterMatchmakingChannel(playerID, ch); err != nil {
		wsc.sendError(c, err)
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case raw, ok := <-ch:
		if !ok {
			log.Debugf("matchmaking channel for %s replaced", playerID)
			c.Close()
			return
		}
		if err := c.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
			log.Warnf("sending match to %s: %v", playerID, err)
		}
		c.Close()
	case <-gone:
		if err := wsc.gameService.LeaveMatchmaking(playerID); err != nil && !errors.Is(err, service.ErrNotQueued) {
			log.Warnf("removing %s from matchmaking: %v", playerID, err)
		}
	}
}
