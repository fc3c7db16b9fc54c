package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbeisheim/chessrules/internal/config"
	"github.com/benbeisheim/chessrules/internal/controller"
	"github.com/benbeisheim/chessrules/internal/middleware"
	"github.com/benbeisheim/chessrules/internal/service"
	"github.com/benbeisheim/chessrules/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
)

func main() {
	cfg, err := config.Load(config.GetEnv())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	log.SetLevel(logLevel(cfg.Log.Level))

	archive, err := openArchive(cfg)
	if err != nil {
		log.Fatalf("opening move archive: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "chessrules",
		DisableStartupMessage: cfg.Environment != "dev",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(logger.New())

	gameManager := service.NewGameManager(service.Options{
		ClockTime:           time.Duration(cfg.Game.ClockSeconds) * time.Second,
		MatchmakingInterval: time.Duration(cfg.Game.MatchmakingInterval) * time.Second,
		Archive:             archive,
	})
	gameManager.Start()
	gameService := service.NewGameService(gameManager)

	gameController := controller.NewGameController(gameService)
	wsController := controller.NewWebSocketController(gameService)

	wsConfig := websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         []string{cfg.Server.AllowOrigins},
	}
	app.Use("/ws/*", middleware.EnsurePlayerID())
	app.Get("/ws/game/:gameId", middleware.WebSocketUpgrade("gameId"),
		websocket.New(wsController.HandleConnection, wsConfig))
	app.Get("/ws/matchmaking", middleware.WebSocketUpgrade(),
		websocket.New(wsController.HandleMatchmaking, wsConfig))

	api := app.Group("/api", middleware.EnsurePlayerID())
	gameController.Routes(api.Group("/game"))

	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	gameManager.Stop()
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := archive.Close(ctx); err != nil {
		log.Errorf("closing move archive: %v", err)
	}
}

func openArchive(cfg *config.Config) (store.Archive, error) {
	if cfg.Store.Driver != "mongo" {
		return store.NewMemoryArchive(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return store.NewMongoArchive(ctx, cfg.Store.MongoURI, cfg.Store.Database)
}

func logLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
