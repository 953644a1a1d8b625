package main

import (
	"context"
	"log"

	"github.com/arnold/pacegoals-api/internal/config"
	"github.com/arnold/pacegoals-api/internal/database"
	"github.com/arnold/pacegoals-api/internal/handlers"
	"github.com/arnold/pacegoals-api/internal/routes"
	"github.com/arnold/pacegoals-api/internal/services"
	"github.com/arnold/pacegoals-api/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := services.InitPush(cfg.FCMServiceAccount); err != nil {
		log.Fatalf("Failed to initialize push service: %v", err)
	}

	hub := ws.NewHub()
	evaluator := services.NewEvaluator(database.DB, services.Push, hub, nil)
	handlers.Init(cfg, hub, evaluator)

	// Background sweep that finalizes commitments past their goal end date
	go evaluator.Run(context.Background(), cfg.EvalInterval)

	app := fiber.New(fiber.Config{
		AppName: "pacegoals-api",
	})
	app.Use(logger.New())
	app.Use(cors.New())

	routes.Setup(app, cfg)

	log.Printf("Listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
