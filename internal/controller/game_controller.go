package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/chess-ai-backend/internal/ai"
	"github.com/benbeisheim/chess-ai-backend/internal/dao"
	"github.com/benbeisheim/chess-ai-backend/internal/model"
	"github.com/benbeisheim/chess-ai-backend/internal/notation"
	"github.com/benbeisheim/chess-ai-backend/internal/service"
	"github.com/benbeisheim/chess-ai-backend/internal/ws"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, dao.ErrRecordNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrForbidden), errors.Is(err, model.ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrNotYourTurn), errors.Is(err, model.ErrGameOver):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrIllegalMove), errors.Is(err, model.ErrNoPiece):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidSquare), errors.Is(err, service.ErrInvalidColor),
		errors.Is(err, service.ErrMissingBoard), errors.Is(err, ai.ErrUnknownDifficulty),
		errors.Is(err, notation.ErrInvalidFEN):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func playerID(c *fiber.Ctx) string {
	id, _ := c.Locals("playerID").(string)
	return id
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req service.CreateGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	view, err := gc.gameService.CreateGame(c.UserContext(), playerID(c), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Game created",
		"game_id": view.ID,
		"game":    view,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	view, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(view)
}

func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	square := c.Params("square")
	dests, err := gc.gameService.LegalMoves(c.Params("gameId"), square)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"square": square,
		"moves":  dests,
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var req ws.MovePayload
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	view, err := gc.gameService.HandleMove(c.UserContext(), c.Params("gameId"), playerID(c), req.From, req.To)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(view)
}

func (gc *GameController) Resign(c *fiber.Ctx) error {
	view, err := gc.gameService.Resign(c.UserContext(), c.Params("gameId"), playerID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(view)
}

// SuggestMove is the stateless engine endpoint.
func (gc *GameController) SuggestMove(c *fiber.Ctx) error {
	var req service.MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	resp, err := gc.gameService.SuggestMove(c.UserContext(), req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(resp)
}
