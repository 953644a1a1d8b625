package handlers

import (
	"time"

	"github.com/arnold/pacegoals-api/internal/database"
	"github.com/arnold/pacegoals-api/internal/middleware"
	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/arnold/pacegoals-api/internal/progress"
	"github.com/arnold/pacegoals-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetGoals returns the user's goals, newest first, each with its live
// progress so the list view can render pace badges without extra calls.
func GetGoals(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var goals []models.Goal
	database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&goals)

	items := make([]fiber.Map, 0, len(goals))
	for i := range goals {
		item := fiber.Map{"goal": goals[i]}
		if st, total, done, err := liveProgress(&goals[i]); err == nil {
			item["progress"] = st
			item["totalTasks"] = total
			item["doneTasks"] = done
		}
		items = append(items, item)
	}

	return c.JSON(fiber.Map{"goals": items})
}

// CreateGoal creates a goal together with its initial plan (and optional
// tasks and commitment) in one transaction, so a goal never exists without
// a current plan.
func CreateGoal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.CreateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid start date",
		})
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid end date",
		})
	}
	if endDate.Before(startDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "End date must not be before start date",
		})
	}

	if req.Commitment != nil {
		if req.Commitment.Amount <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Commitment amount must be positive",
			})
		}
		if tp := req.Commitment.ThresholdPercent; tp != nil && (*tp < 0 || *tp > 100) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Threshold percent must be between 0 and 100",
			})
		}
	}

	goal := models.Goal{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      "active",
		PeriodType:  models.PeriodMonth,
	}
	if req.Priority != nil {
		goal.Priority = *req.Priority
	}
	if req.PeriodType != nil {
		goal.PeriodType = *req.PeriodType
	}

	var plan *models.Plan
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&goal).Error; err != nil {
			return err
		}

		var err error
		plan, err = createPlanTx(tx, &goal, 1, models.PlanSourceManual, models.CreatedByUser, nil, nil, req.Tasks)
		if err != nil {
			return err
		}

		if req.Commitment != nil {
			commitment := models.GoalCommitment{
				GoalID:           goal.ID,
				UserID:           userID,
				Amount:           req.Commitment.Amount,
				Currency:         "JPY",
				ThresholdPercent: 100,
				Status:           models.CommitmentActive,
			}
			if req.Commitment.Currency != nil {
				commitment.Currency = *req.Commitment.Currency
			}
			if req.Commitment.ThresholdPercent != nil {
				commitment.ThresholdPercent = *req.Commitment.ThresholdPercent
			}
			if err := tx.Create(&commitment).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create goal",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"goal": goal,
		"plan": plan,
	})
}

// GetGoal returns a goal with its current plan, tasks, live progress and
// latest commitment.
func GetGoal(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}

	resp := fiber.Map{"goal": goal}

	if goal.CurrentPlanID != nil {
		var plan models.Plan
		if err := database.DB.Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, created_at ASC")
		}).First(&plan, *goal.CurrentPlanID).Error; err == nil {
			resp["plan"] = plan
		}
	}

	if st, total, done, err := liveProgress(goal); err == nil {
		resp["progress"] = st
		resp["totalTasks"] = total
		resp["doneTasks"] = done
	}

	var commitment models.GoalCommitment
	if err := database.DB.Where("goal_id = ?", goal.ID).
		Order("created_at DESC").
		First(&commitment).Error; err == nil {
		resp["commitment"] = commitment
	}

	return c.JSON(resp)
}

func UpdateGoal(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}

	var req models.UpdateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Title != nil {
		goal.Title = *req.Title
	}
	if req.Description != nil {
		goal.Description = req.Description
	}
	if req.Category != nil {
		goal.Category = req.Category
	}
	if req.Priority != nil {
		goal.Priority = *req.Priority
	}
	if req.Status != nil {
		goal.Status = *req.Status
	}

	if err := database.DB.Save(goal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update goal",
		})
	}

	return c.JSON(goal)
}

// DeleteGoal soft-deletes a goal. Commitments are left untouched so an
// already-evaluated commitment keeps its history.
func DeleteGoal(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}

	if err := database.DB.Delete(goal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete goal",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// liveProgress computes a goal's progress from the current plan's task
// counts as of today.
func liveProgress(goal *models.Goal) (progress.Status, int, int, error) {
	if goal.CurrentPlanID == nil {
		st, err := progress.Compute(0, 0, goal.StartDate, goal.EndDate, services.DateOnly(time.Now()))
		return st, 0, 0, err
	}

	total, done, err := services.TaskCounts(database.DB, *goal.CurrentPlanID)
	if err != nil {
		return progress.Status{}, 0, 0, err
	}

	st, err := progress.Compute(total, done, goal.StartDate, goal.EndDate, services.DateOnly(time.Now()))
	return st, total, done, err
}

// createPlanTx inserts a plan and its tasks and repoints the goal's current
// plan, all inside the caller's transaction.
func createPlanTx(tx *gorm.DB, goal *models.Goal, version int, source, createdBy string, reason *string, aiRunID *uuid.UUID, inputs []models.TaskInput) (*models.Plan, error) {
	plan := models.Plan{
		GoalID:    goal.ID,
		Version:   version,
		Source:    source,
		CreatedBy: createdBy,
		Reason:    reason,
		AIRunID:   aiRunID,
	}
	if err := tx.Create(&plan).Error; err != nil {
		return nil, err
	}

	for i, in := range inputs {
		task := models.Task{
			PlanID:        plan.ID,
			Title:         in.Title,
			Description:   in.Description,
			Priority:      1,
			EstimatedDays: in.EstimatedDays,
			OrderIndex:    i,
			Status:        models.TaskTodo,
		}
		if in.Priority != nil {
			task.Priority = *in.Priority
		}
		if in.OrderIndex != nil {
			task.OrderIndex = *in.OrderIndex
		}
		if in.DueDate != nil {
			if due, err := parseDate(*in.DueDate); err == nil {
				task.DueDate = &due
			}
		}
		if err := tx.Create(&task).Error; err != nil {
			return nil, err
		}
		plan.Tasks = append(plan.Tasks, task)
	}

	goal.CurrentPlanID = &plan.ID
	if err := tx.Model(&models.Goal{}).Where("id = ?", goal.ID).
		Update("current_plan_id", plan.ID).Error; err != nil {
		return nil, err
	}

	return &plan, nil
}
