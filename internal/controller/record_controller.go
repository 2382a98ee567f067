package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/benbeisheim/chess-ai-backend/internal/model"
	"github.com/benbeisheim/chess-ai-backend/internal/service"
)

// RecordController serves finished games.
type RecordController struct {
	gameService *service.GameService
}

func NewRecordController(gameService *service.GameService) *RecordController {
	return &RecordController{gameService: gameService}
}

func (rc *RecordController) ListGames(c *fiber.Ctx) error {
	page, limit := service.NormalizePage(c.QueryInt("page", 1), c.QueryInt("limit", 20))

	records, err := rc.gameService.ListGames(c.UserContext(), playerID(c), page, limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"games": records,
		"pagination": fiber.Map{
			"page":    page,
			"limit":   limit,
			"hasMore": len(records) == limit,
		},
	})
}

func (rc *RecordController) GetGame(c *fiber.Ctx) error {
	record, err := rc.gameService.GetRecord(c.UserContext(), c.Params("id"), playerID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"game": record,
	})
}

func (rc *RecordController) DeleteGame(c *fiber.Ctx) error {
	if err := rc.gameService.DeleteRecord(c.UserContext(), c.Params("id"), playerID(c)); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game deleted successfully",
	})
}

type statsSummary struct {
	model.PlayerStats
	WinRate float64 `json:"winRate"`
}

func (rc *RecordController) StatsSummary(c *fiber.Ctx) error {
	stats, err := rc.gameService.PlayerStats(c.UserContext(), playerID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"stats": statsSummary{PlayerStats: stats, WinRate: stats.WinRate()},
	})
}
