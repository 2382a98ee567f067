package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/chess-ai-backend/internal/config"
	"github.com/benbeisheim/chess-ai-backend/internal/dao"
	"github.com/benbeisheim/chess-ai-backend/internal/db"
	"github.com/benbeisheim/chess-ai-backend/internal/server"
	"github.com/benbeisheim/chess-ai-backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

func logLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	}
	return log.LevelInfo
}

func main() {
	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}
	log.SetLevel(logLevel(cfg.Server.LogLevel))

	ctx := context.Background()

	var repo dao.GameRepository
	if cfg.PersistenceEnabled() {
		dbClient, err := db.NewDbClient(ctx, cfg)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer func() {
			if err := dbClient.Close(context.Background()); err != nil {
				log.Warnf("disconnect database: %v", err)
			}
		}()
		repo = dao.NewGameRepository(dbClient)
		log.Infof("storing games in %s.%s", cfg.Database.DatabaseName, cfg.Database.Collection)
	} else {
		repo = dao.NewMemoryGameRepository()
		log.Warn("MONGO_URI not set, finished games are kept in memory only")
	}

	gameManager := service.NewGameManager()
	gameService := service.NewGameService(gameManager, repo, service.Options{
		ThinkTimeout:   cfg.AI.ThinkTimeout,
		BranchCap:      cfg.AI.BranchCap,
		RetainFinished: cfg.Games.RetainFinished,
		IdleTimeout:    cfg.Games.IdleTimeout,
	})

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go gameService.Run(sweepCtx, cfg.Games.SweepInterval)

	app := server.NewApp(cfg, gameService)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	if err := app.Listen(cfg.Server.Addr); err != nil {
		log.Errorf("server stopped: %v", err)
	}
}
