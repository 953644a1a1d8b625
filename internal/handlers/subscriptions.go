package handlers

import (
	"github.com/arnold/pacegoals-api/internal/database"
	"github.com/arnold/pacegoals-api/internal/middleware"
	"github.com/arnold/pacegoals-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// GetSubscription returns the user's billing state. Users without a row have
// never subscribed; the app treats that the same as expired.
func GetSubscription(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var sub models.Subscription
	if err := database.DB.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return c.JSON(fiber.Map{
			"subscription": nil,
			"hasAccess":    false,
		})
	}

	return c.JSON(fiber.Map{
		"subscription": sub,
		"hasAccess":    sub.HasAccess(),
	})
}

// requireSubscription gates paid features. On failure it writes the 402
// response and returns false.
func requireSubscription(c *fiber.Ctx) bool {
	userID := middleware.GetUserID(c)

	var sub models.Subscription
	if err := database.DB.Where("user_id = ?", userID).First(&sub).Error; err != nil || !sub.HasAccess() {
		c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"error": "An active subscription is required for AI planning",
		})
		return false
	}

	return true
}
