package handlers

import (
	"errors"

	"github.com/arnold/pacegoals-api/internal/commitment"
	"github.com/arnold/pacegoals-api/internal/database"
	"github.com/arnold/pacegoals-api/internal/middleware"
	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// CreateCommitment stakes an amount on a goal. Only one active commitment
// may exist per goal.
func CreateCommitment(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}
	userID := middleware.GetUserID(c)

	var req models.CreateCommitmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Amount must be positive",
		})
	}
	if req.ThresholdPercent != nil && (*req.ThresholdPercent < 0 || *req.ThresholdPercent > 100) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Threshold percent must be between 0 and 100",
		})
	}

	var existing models.GoalCommitment
	if err := database.DB.Where("goal_id = ? AND status = ?", goal.ID, models.CommitmentActive).
		First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Goal already has an active commitment",
		})
	}

	cm := models.GoalCommitment{
		GoalID:           goal.ID,
		UserID:           userID,
		Amount:           req.Amount,
		Currency:         "JPY",
		ThresholdPercent: 100,
		Status:           models.CommitmentActive,
	}
	if req.Currency != nil {
		cm.Currency = *req.Currency
	}
	if req.ThresholdPercent != nil {
		cm.ThresholdPercent = *req.ThresholdPercent
	}

	if err := database.DB.Create(&cm).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create commitment",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(cm)
}

// GetCommitment returns the goal's most recent commitment.
func GetCommitment(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}

	var cm models.GoalCommitment
	if err := database.DB.Where("goal_id = ?", goal.ID).
		Order("created_at DESC").
		First(&cm).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Commitment not found",
		})
	}

	return c.JSON(cm)
}

// CancelCommitment cancels an active commitment. No penalty, no refund
// logic; just the status write.
func CancelCommitment(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}

	var cm models.GoalCommitment
	if err := database.DB.Where("goal_id = ?", goal.ID).
		Order("created_at DESC").
		First(&cm).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Commitment not found",
		})
	}

	newStatus, err := commitment.Cancel(&cm)
	if err != nil {
		if errors.Is(err, commitment.ErrInvalidState) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Commitment is no longer active",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to cancel commitment",
		})
	}

	// Guard on status so a racing evaluation sweep cannot be overwritten.
	res := database.DB.Model(&models.GoalCommitment{}).
		Where("id = ? AND status = ?", cm.ID, models.CommitmentActive).
		Update("status", newStatus)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to cancel commitment",
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Commitment is no longer active",
		})
	}

	cm.Status = newStatus
	return c.JSON(cm)
}

// EvaluateCommitment finalizes a goal's commitment on demand. The periodic
// sweep does the same thing; this endpoint exists so the app can settle a
// goal immediately when the user opens it past its end date.
func EvaluateCommitment(c *fiber.Ctx) error {
	goal := findOwnedGoal(c)
	if goal == nil {
		return nil
	}

	var cm models.GoalCommitment
	if err := database.DB.Where("goal_id = ?", goal.ID).
		Order("created_at DESC").
		First(&cm).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Commitment not found",
		})
	}

	if _, err := evaluator.EvaluateOne(&cm); err != nil {
		if errors.Is(err, commitment.ErrInvalidState) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Goal has not reached its end date",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to evaluate commitment",
		})
	}

	// Reload: the transition (or a concurrent one) may have been applied.
	database.DB.First(&cm, cm.ID)
	return c.JSON(cm)
}

// ListCommitments returns the user's commitments, optionally filtered by
// status.
func ListCommitments(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	q := database.DB.Where("user_id = ?", userID).Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var commitments []models.GoalCommitment
	q.Find(&commitments)

	return c.JSON(fiber.Map{"commitments": commitments})
}

// ListPenalties returns the user's penalty charges, newest first.
func ListPenalties(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var penalties []models.PenaltyCharge
	database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&penalties)

	return c.JSON(fiber.Map{"penalties": penalties})
}

// GetTotalPendingPenalties sums the user's pending penalty amounts.
func GetTotalPendingPenalties(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var total float64
	database.DB.Model(&models.PenaltyCharge{}).
		Where("user_id = ? AND status = ?", userID, models.PenaltyPending).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total)

	return c.JSON(fiber.Map{"total": total})
}
