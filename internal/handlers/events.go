package handlers

import (
	"strconv"

	"github.com/arnold/pacegoals-api/internal/database"
	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// GetGoalEvents returns the paginated task-event feed for a goal.
func GetGoalEvents(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit

	var events []models.TaskEvent
	database.DB.Where("goal_id = ?", goal.ID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&events)

	var total int64
	database.DB.Model(&models.TaskEvent{}).Where("goal_id = ?", goal.ID).Count(&total)

	return c.JSON(fiber.Map{
		"events": events,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}
