package handlers

import (
	"time"

	"github.com/arnold/pacegoals-api/internal/database"
	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/arnold/pacegoals-api/internal/progress"
	"github.com/arnold/pacegoals-api/internal/ws"
	"github.com/gofiber/fiber/v2"
)

// GetProgress computes a goal's progress from live task counts as of today.
func GetProgress(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}

	st, total, done, err := liveProgress(goal)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute progress",
		})
	}

	return c.JSON(fiber.Map{
		"progress":   st,
		"totalTasks": total,
		"doneTasks":  done,
	})
}

// RefreshSnapshot recomputes and upserts the goal's snapshot for a date
// (today by default). Safe to call repeatedly; the (goal, date) row is
// overwritten, never duplicated.
func RefreshSnapshot(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}

	day := time.Now()
	if q := c.Query("date"); q != "" {
		parsed, err := parseDate(q)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid date",
			})
		}
		day = parsed
	}

	snap, err := snapshots.Refresh(goal.ID, day)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to refresh snapshot",
		})
	}

	hub.Broadcast(goal.ID, ws.EventProgressUpdated, snap)

	return c.JSON(fiber.Map{
		"snapshot": snap,
		"progress": progress.FromSnapshot(*snap),
	})
}

// GetProgressHistory returns a goal's daily snapshots in date order, each
// with its health classification.
func GetProgressHistory(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}

	var snaps []models.ProgressSnapshot
	database.DB.Where("goal_id = ?", goal.ID).
		Order("snapshot_date ASC").
		Find(&snaps)

	items := make([]fiber.Map, 0, len(snaps))
	for i := range snaps {
		items = append(items, fiber.Map{
			"snapshot": snaps[i],
			"progress": progress.FromSnapshot(snaps[i]),
		})
	}

	return c.JSON(fiber.Map{"history": items})
}
