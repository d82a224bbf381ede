package connection

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"vibely/src/core/database"
	"vibely/src/core/helpers"
	"vibely/src/core/models"
)

// AcceptRequestNotification resolves a follow request straight from its
// notification, the flow the notification panel uses.
func AcceptRequestNotification(c *fiber.Ctx) error {
	return resolveRequestNotification(c, AcceptFollowRequest, "Follow request accepted")
}

// DeclineRequestNotification declines a follow request from its notification.
func DeclineRequestNotification(c *fiber.Ctx) error {
	return resolveRequestNotification(c, DeclineFollowRequest, "Follow request declined")
}

func resolveRequestNotification(c *fiber.Ctx, apply func(*gorm.DB, uuid.UUID, uuid.UUID) error, message string) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	notificationID, err := uuid.Parse(c.Params("notification_id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid notification_id format", err)
	}

	var notification models.Notification
	if err := db.First(&notification, "id = ?", notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.HandleServiceError(c, "Follow request not found", helpers.ErrNotFound)
		}
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch notification", err)
	}

	if notification.Type != models.NotificationFollowRequest {
		return helpers.HandleServiceError(c, "Follow request not found", helpers.ErrNotFound)
	}
	if notification.RecipientID != actorID {
		return helpers.HandleServiceError(c, "Not authorized", helpers.ErrUnauthorized)
	}

	if err := apply(db, actorID, notification.SenderID); err != nil {
		if errors.Is(err, helpers.ErrNotFound) {
			return helpers.HandleServiceError(c, "Follow request not found", err)
		}
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to resolve follow request", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, message, nil)
}
