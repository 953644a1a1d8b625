package handlers

import (
	"encoding/json"
	"time"

	"github.com/arnold/pacegoals-api/internal/config"
	"github.com/arnold/pacegoals-api/internal/database"
	"github.com/arnold/pacegoals-api/internal/middleware"
	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/arnold/pacegoals-api/internal/services"
	"github.com/arnold/pacegoals-api/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Package-level collaborators, wired once from main before routes are served.
var (
	cfg       *config.Config
	hub       *ws.Hub
	planner   *services.Planner
	snapshots *services.SnapshotService
	evaluator *services.Evaluator
)

// Init wires the handler package's collaborators. Must run after the
// database connection is established.
func Init(c *config.Config, h *ws.Hub, ev *services.Evaluator) {
	cfg = c
	hub = h
	planner = services.NewPlanner(database.DB)
	snapshots = services.NewSnapshotService(database.DB)
	evaluator = ev
}

// parseDate parses a calendar date from the wire format.
func parseDate(s string) (time.Time, error) {
	return time.Parse(models.DateFormat, s)
}

// findOwnedGoal loads a goal from the :id param and verifies ownership.
// On failure it writes the error response and returns nil.
func findOwnedGoal(c *fiber.Ctx) *models.Goal {
	userID := middleware.GetUserID(c)
	goalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
		return nil
	}

	var goal models.Goal
	if err := database.DB.First(&goal, goalID).Error; err != nil {
		c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found",
		})
		return nil
	}

	if goal.UserID != userID {
		c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found",
		})
		return nil
	}

	return &goal
}

// logTaskEvent appends an audit row for a task change.
func logTaskEvent(taskID, goalID uuid.UUID, eventType string, meta map[string]interface{}) {
	event := models.TaskEvent{
		TaskID: taskID,
		GoalID: goalID,
		Type:   eventType,
	}
	if meta != nil {
		if raw, err := json.Marshal(meta); err == nil {
			s := string(raw)
			event.Meta = &s
		}
	}
	database.DB.Create(&event)
}
