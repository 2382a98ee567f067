package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chess-ai-backend/internal/service"
	"github.com/benbeisheim/chess-ai-backend/internal/ws"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection serves one player's socket for the lifetime of the connection.
// State updates are pushed by the game itself; this loop only reads commands.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals("playerID").(string)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Warnf("register connection for %s on game %s: %v", playerID, gameID, err)
		wsc.sendError(c, err)
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("connection for %s on game %s closed: %v", playerID, gameID, err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(c, fmt.Errorf("malformed message: %w", err))
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debugf("game %s: %s from %s rejected: %v", gameID, msg.Type, playerID, err)
			wsc.sendError(c, err)
		}
	}
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	ctx := context.Background()
	switch msg.Type {
	case ws.MessageTypeMove:
		var move ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return fmt.Errorf("malformed move: %w", err)
		}
		_, err := wsc.gameService.HandleMove(ctx, gameID, playerID, move.From, move.To)
		return err
	case ws.MessageTypeResign:
		_, err := wsc.gameService.Resign(ctx, gameID, playerID)
		return err
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) sendError(c *websocket.Conn, err error) {
	payload, _ := json.Marshal(ws.ErrorPayload{Error: err.Error()})
	if werr := c.WriteJSON(ws.Message{
		Type:    ws.MessageTypeError,
		Payload: payload,
	}); werr != nil {
		log.Debugf("send error frame: %v", werr)
	}
}
