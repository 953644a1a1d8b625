package handlers

import (
	"time"

	"github.com/arnold/pacegoals-api/internal/database"
	"github.com/arnold/pacegoals-api/internal/middleware"
	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/arnold/pacegoals-api/internal/services"
	"github.com/arnold/pacegoals-api/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetTasks returns the tasks of a goal's current plan in display order.
func GetTasks(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}

	if goal.CurrentPlanID == nil {
		return c.JSON(fiber.Map{"tasks": []models.Task{}})
	}

	var tasks []models.Task
	database.DB.Where("plan_id = ?", *goal.CurrentPlanID).
		Order("order_index ASC, created_at ASC").
		Find(&tasks)

	return c.JSON(fiber.Map{"tasks": tasks})
}

// CreateTask adds a task to a goal's current plan.
func CreateTask(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}
	if goal.CurrentPlanID == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Goal has no current plan",
		})
	}

	var req models.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil || req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	task := models.Task{
		PlanID:        *goal.CurrentPlanID,
		Title:         req.Title,
		Description:   req.Description,
		Priority:      1,
		EstimatedDays: req.EstimatedDays,
		Status:        models.TaskTodo,
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.OrderIndex != nil {
		task.OrderIndex = *req.OrderIndex
	}
	if req.DueDate != nil {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid due date",
			})
		}
		task.DueDate = &due
	}

	if err := database.DB.Create(&task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create task",
		})
	}

	logTaskEvent(task.ID, goal.ID, models.TaskEventCreated, nil)
	hub.Broadcast(goal.ID, ws.EventTaskUpdated, task)

	return c.Status(fiber.StatusCreated).JSON(task)
}

// UpdateTask edits a task on the goal's current plan. Status changes keep
// the done_at invariant and are logged as events.
func UpdateTask(c *fiber.Ctx) error {
	goal, task := findOwnedTask(c)
	if task == nil {
		return nil
	}

	var req models.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.EstimatedDays != nil {
		task.EstimatedDays = req.EstimatedDays
	}
	if req.OrderIndex != nil {
		task.OrderIndex = *req.OrderIndex
	}
	if req.DueDate != nil {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid due date",
			})
		}
		task.DueDate = &due
	}

	eventType := models.TaskEventUpdated
	if req.Status != nil && *req.Status != task.Status {
		switch *req.Status {
		case models.TaskTodo, models.TaskDoing, models.TaskDone, models.TaskDropped:
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid task status",
			})
		}

		wasDone := task.Status == models.TaskDone
		task.Status = *req.Status
		if task.Status == models.TaskDone {
			now := time.Now()
			task.DoneAt = &now
			eventType = models.TaskEventCompleted
		} else {
			task.DoneAt = nil
			if wasDone {
				eventType = models.TaskEventReopened
			} else if task.Status == models.TaskDropped {
				eventType = models.TaskEventDropped
			}
		}
	}

	if err := database.DB.Save(task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update task",
		})
	}

	logTaskEvent(task.ID, goal.ID, eventType, nil)
	refreshProgress(goal)
	hub.Broadcast(goal.ID, ws.EventTaskUpdated, task)

	return c.JSON(task)
}

// ToggleTask marks a task done or reopens it, then refreshes today's
// snapshot so progress moves with the checkbox.
func ToggleTask(c *fiber.Ctx) error {
	goal, task := findOwnedTask(c)
	if task == nil {
		return nil
	}

	var req models.ToggleTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	eventType := models.TaskEventReopened
	if req.Done {
		now := time.Now()
		task.Status = models.TaskDone
		task.DoneAt = &now
		eventType = models.TaskEventCompleted
	} else {
		task.Status = models.TaskTodo
		task.DoneAt = nil
	}

	if err := database.DB.Save(task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to toggle task",
		})
	}

	logTaskEvent(task.ID, goal.ID, eventType, nil)
	refreshProgress(goal)
	hub.Broadcast(goal.ID, ws.EventTaskUpdated, task)

	return c.JSON(task)
}

func DeleteTask(c *fiber.Ctx) error {
	goal, task := findOwnedTask(c)
	if task == nil {
		return nil
	}

	if err := database.DB.Delete(task).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete task",
		})
	}

	refreshProgress(goal)
	hub.Broadcast(goal.ID, ws.EventTaskUpdated, fiber.Map{"id": task.ID, "deleted": true})

	return c.JSON(fiber.Map{"success": true})
}

// GetTasksDueSoon returns the user's upcoming tasks across all current
// plans, excluding finished and dropped ones.
func GetTasksDueSoon(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	days := c.QueryInt("days", cfg.DueSoonDays)
	if days < 1 {
		days = cfg.DueSoonDays
	}

	today := services.DateOnly(time.Now())
	cutoff := today.AddDate(0, 0, days)

	var tasks []models.Task
	database.DB.
		Joins("JOIN plans ON plans.id = tasks.plan_id").
		Joins("JOIN goals ON goals.id = plans.goal_id AND goals.current_plan_id = plans.id").
		Where("goals.user_id = ? AND goals.deleted_at IS NULL", userID).
		Where("tasks.due_date IS NOT NULL AND tasks.due_date >= ? AND tasks.due_date <= ?", today, cutoff).
		Where("tasks.status NOT IN ?", []string{models.TaskDone, models.TaskDropped}).
		Order("tasks.due_date ASC").
		Find(&tasks)

	return c.JSON(fiber.Map{"tasks": tasks})
}

// findOwnedTask resolves :taskId within the owned goal's current plan.
// On failure it writes the error response and returns nils.
func findOwnedTask(c *fiber.Ctx) (*models.Goal, *models.Task) {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil, nil
	}
	if goal.CurrentPlanID == nil {
		c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Task not found",
		})
		return nil, nil
	}

	taskID, err := uuid.Parse(c.Params("taskId"))
	if err != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid task ID",
		})
		return nil, nil
	}

	var task models.Task
	if err := database.DB.Where("id = ? AND plan_id = ?", taskID, *goal.CurrentPlanID).
		First(&task).Error; err != nil {
		c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Task not found",
		})
		return nil, nil
	}

	return goal, &task
}

// refreshProgress upserts today's snapshot and broadcasts the new status.
func refreshProgress(goal *models.Goal) {
	snap, err := snapshots.Refresh(goal.ID, time.Now())
	if err != nil {
		return
	}
	hub.Broadcast(goal.ID, ws.EventProgressUpdated, snap)
}
