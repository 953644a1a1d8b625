package routes

import (
	"github.com/arnold/pacegoals-api/internal/config"
	"github.com/arnold/pacegoals-api/internal/handlers"
	"github.com/arnold/pacegoals-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func Setup(app *fiber.App, cfg *config.Config) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.Register)
	auth.Post("/login", handlers.Login)
	auth.Post("/google", handlers.GoogleLogin)

	protected := api.Group("/", middleware.Protected(cfg.JWTSecret))

	protected.Get("/me", handlers.GetMe)
	protected.Put("/me", handlers.UpdateProfile)

	goals := protected.Group("/goals")
	goals.Get("/", handlers.GetGoals)
	goals.Post("/", handlers.CreateGoal)
	goals.Get("/:id", handlers.GetGoal)
	goals.Put("/:id", handlers.UpdateGoal)
	goals.Delete("/:id", handlers.DeleteGoal)

	goals.Get("/:id/tasks", handlers.GetTasks)
	goals.Post("/:id/tasks", handlers.CreateTask)
	goals.Put("/:id/tasks/:taskId", handlers.UpdateTask)
	goals.Post("/:id/tasks/:taskId/toggle", handlers.ToggleTask)
	goals.Delete("/:id/tasks/:taskId", handlers.DeleteTask)

	goals.Get("/:id/plans", handlers.GetPlans)
	goals.Post("/:id/plans", handlers.RevisePlan)
	goals.Post("/:id/plans/split", handlers.SplitPlan)
	goals.Post("/:id/plans/replan", handlers.ReplanPlan)

	goals.Get("/:id/progress", handlers.GetProgress)
	goals.Post("/:id/progress/snapshot", handlers.RefreshSnapshot)
	goals.Get("/:id/progress/history", handlers.GetProgressHistory)

	goals.Post("/:id/commitment", handlers.CreateCommitment)
	goals.Get("/:id/commitment", handlers.GetCommitment)
	goals.Delete("/:id/commitment", handlers.CancelCommitment)
	goals.Post("/:id/commitment/evaluate", handlers.EvaluateCommitment)

	goals.Get("/:id/events", handlers.GetGoalEvents)

	protected.Get("/tasks/due-soon", handlers.GetTasksDueSoon)

	protected.Get("/commitments", handlers.ListCommitments)
	protected.Get("/penalties", handlers.ListPenalties)
	protected.Get("/penalties/total", handlers.GetTotalPendingPenalties)

	protected.Get("/subscription", handlers.GetSubscription)

	notifications := protected.Group("/notifications")
	notifications.Get("/", handlers.GetNotifications)
	notifications.Put("/:id/read", handlers.MarkNotificationRead)
	notifications.Post("/read-all", handlers.MarkAllRead)

	// Device token for push notifications
	protected.Post("/device-token", handlers.RegisterDeviceToken)

	// WebSocket for real-time goal updates
	app.Use("/ws", handlers.WebSocketUpgrade())
	app.Get("/ws/goals/:id", websocket.New(handlers.HandleWebSocket))
}
