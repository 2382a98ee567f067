package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chess-ai-backend/internal/config"
	"github.com/benbeisheim/chess-ai-backend/internal/controller"
	"github.com/benbeisheim/chess-ai-backend/internal/middleware"
	"github.com/benbeisheim/chess-ai-backend/internal/service"
)

// NewApp builds the HTTP and websocket surface around gameService.
func NewApp(cfg *config.Configuration, gameService *service.GameService) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "chess-ai-backend",
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.CorsOrigins, ", "),
		AllowHeaders:     "Origin, Content-Type, Accept, " + middleware.PlayerIDHeader,
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	gameController := controller.NewGameController(gameService)
	recordController := controller.NewRecordController(gameService)
	wsController := controller.NewWebSocketController(gameService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Use("/ws/*", middleware.EnsurePlayerID())
	app.Get("/ws/game/:gameId", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         cfg.Server.CorsOrigins,
	}))

	api := app.Group("/api", middleware.EnsurePlayerID())
	if cfg.RateLimit.Max > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:          cfg.RateLimit.Max,
			Expiration:   cfg.RateLimit.Window,
			KeyGenerator: middleware.PlayerKey,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "too many requests",
				})
			},
		}))
	}

	api.Post("/ai/move", gameController.SuggestMove)

	gameRoutes := api.Group("/game")
	gameRoutes.Post("/create", gameController.CreateGame)
	gameRoutes.Get("/:gameId", gameController.GetGameState)
	gameRoutes.Get("/:gameId/moves/:square", gameController.LegalMoves)
	gameRoutes.Post("/:gameId/move", gameController.MakeMove)
	gameRoutes.Post("/:gameId/resign", gameController.Resign)

	recordRoutes := api.Group("/games")
	recordRoutes.Get("/", recordController.ListGames)
	recordRoutes.Get("/stats/summary", recordController.StatsSummary)
	recordRoutes.Get("/:id", recordController.GetGame)
	recordRoutes.Delete("/:id", recordController.DeleteGame)

	return app
}
