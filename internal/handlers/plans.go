package handlers

import (
	"math"
	"time"

	"github.com/arnold/pacegoals-api/internal/database"
	"github.com/arnold/pacegoals-api/internal/middleware"
	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/arnold/pacegoals-api/internal/services"
	"github.com/arnold/pacegoals-api/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetPlans returns a goal's plan history, newest version first.
func GetPlans(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}

	var plans []models.Plan
	database.DB.Where("goal_id = ?", goal.ID).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, created_at ASC")
		}).
		Order("version DESC").
		Find(&plans)

	return c.JSON(fiber.Map{"plans": plans})
}

// RevisePlan supersedes the current plan with a manually edited task list.
// The old plan is retained untouched for history.
func RevisePlan(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}

	var req models.RevisePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.Tasks) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "At least one task is required",
		})
	}

	plan, err := supersedePlan(goal, models.PlanSourceManual, models.CreatedByUser, req.Reason, nil, req.Tasks)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to revise plan",
		})
	}

	hub.Broadcast(goal.ID, ws.EventPlanRevised, plan)
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// SplitPlan asks the planner to break the goal into tasks and applies the
// suggestion as a new plan version. Requires a paid subscription.
func SplitPlan(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}
	if !requireSubscription(c) {
		return nil
	}

	userID := middleware.GetUserID(c)
	result, err := planner.SplitGoal(userID, goal.ID, goal.Title, goal.Description, goal.StartDate, goal.EndDate)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate plan",
		})
	}

	plan, err := supersedePlan(goal, models.PlanSourceAISplit, models.CreatedBySystem, &result.Reasoning, result.RunID, suggestionsToInputs(result.Tasks))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to apply plan",
		})
	}

	hub.Broadcast(goal.ID, ws.EventPlanRevised, plan)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"plan":      plan,
		"reasoning": result.Reasoning,
	})
}

// ReplanPlan asks the planner to rescope the unfinished tasks to the time
// remaining and applies the result as a new plan version. Requires a paid
// subscription.
func ReplanPlan(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}
	if !requireSubscription(c) {
		return nil
	}
	if goal.CurrentPlanID == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Goal has no current plan",
		})
	}

	var current []models.Task
	database.DB.Where("plan_id = ?", *goal.CurrentPlanID).
		Order("order_index ASC, created_at ASC").
		Find(&current)

	daysRemaining := int(math.Ceil(goal.EndDate.Sub(services.DateOnly(time.Now())).Hours() / 24))
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	userID := middleware.GetUserID(c)
	result, err := planner.ReplanTasks(userID, goal.ID, goal.Title, current, daysRemaining)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate replan",
		})
	}

	plan, err := supersedePlan(goal, models.PlanSourceReplan, models.CreatedBySystem, &result.Reasoning, result.RunID, suggestionsToInputs(result.Tasks))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to apply replan",
		})
	}

	hub.Broadcast(goal.ID, ws.EventPlanRevised, plan)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"plan":           plan,
		"reasoning":      result.Reasoning,
		"droppedTaskIds": result.DroppedTaskIDs,
	})
}

// supersedePlan creates the next plan version for a goal and repoints
// current_plan_id, inside a transaction.
func supersedePlan(goal *models.Goal, source, createdBy string, reason *string, aiRunID *uuid.UUID, inputs []models.TaskInput) (*models.Plan, error) {
	var maxVersion int
	database.DB.Model(&models.Plan{}).
		Where("goal_id = ?", goal.ID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion)

	var plan *models.Plan
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		plan, err = createPlanTx(tx, goal, maxVersion+1, source, createdBy, reason, aiRunID, inputs)
		return err
	})
	if err != nil {
		return nil, err
	}

	snapshots.Refresh(goal.ID, time.Now())
	return plan, nil
}

func suggestionsToInputs(suggestions []services.TaskSuggestion) []models.TaskInput {
	inputs := make([]models.TaskInput, 0, len(suggestions))
	for i := range suggestions {
		s := suggestions[i]
		priority := s.Priority
		inputs = append(inputs, models.TaskInput{
			Title:         s.Title,
			Description:   s.Description,
			Priority:      &priority,
			EstimatedDays: s.EstimatedDays,
		})
	}
	return inputs
}
