package notifications

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"vibely/src/core/database"
	"vibely/src/core/helpers"
	"vibely/src/core/models"
)

// Notify records that sender acted on recipient's content. One live row is
// kept per (recipient, sender, type, post): repeating the same action bumps
// created_at on the existing row so it returns to the top of the list
// without duplicating, and without touching its read state. Self-actions
// are silently dropped.
//
// A newly inserted record is returned so the caller can Dispatch it once
// its transaction has committed; a refreshed or dropped one returns nil.
func Notify(db *gorm.DB, recipientID, senderID uuid.UUID, kind string, postID *uuid.UUID, commentText string) (*models.Notification, error) {
	if recipientID == senderID {
		return nil, nil
	}

	query := db.Where("recipient_id = ? AND sender_id = ? AND type = ?", recipientID, senderID, kind)
	if postID != nil {
		query = query.Where("post_id = ?", *postID)
	} else {
		query = query.Where("post_id IS NULL")
	}

	var existing models.Notification
	err := query.First(&existing).Error
	if err == nil {
		return nil, db.Model(&models.Notification{}).
			Where("id = ?", existing.ID).
			Update("created_at", time.Now()).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	notification := models.Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        kind,
		PostID:      postID,
		CommentText: commentText,
		IsRead:      false,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// RemoveFollowRequestNotice deletes the follow_request notification consumed
// by an accept or decline. Idempotent when the row is already gone.
func RemoveFollowRequestNotice(db *gorm.DB, recipientID, senderID uuid.UUID) error {
	return db.
		Where("recipient_id = ? AND sender_id = ? AND type = ?", recipientID, senderID, models.NotificationFollowRequest).
		Delete(&models.Notification{}).Error
}

// NotificationView reshapes the stored sender reference into the populated
// user object the client renders.
type NotificationView struct {
	models.Notification
	User models.UserSummary `json:"user"`
}

func GetNotifications(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	var items []models.Notification
	if err := db.Where("recipient_id = ?", actorID).
		Order("created_at DESC").
		Limit(50).
		Find(&items).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch notifications", err)
	}

	senderIDs := make([]uuid.UUID, 0, len(items))
	for _, n := range items {
		senderIDs = append(senderIDs, n.SenderID)
	}

	senders := map[uuid.UUID]models.UserSummary{}
	if len(senderIDs) > 0 {
		var users []models.UserSummary
		if err := db.Where("id IN ?", senderIDs).Find(&users).Error; err != nil {
			return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch notification senders", err)
		}
		for _, u := range users {
			senders[u.ID] = u
		}
	}

	views := make([]NotificationView, 0, len(items))
	for _, n := range items {
		views = append(views, NotificationView{Notification: n, User: senders[n.SenderID]})
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Notifications retrieved", views)
}

func MarkAsRead(c *fiber.Ctx) error {
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
			return helpers.HandleServiceError(c, "Notification not found", helpers.ErrNotFound)
		}
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch notification", err)
	}

	if notification.RecipientID != actorID {
		return helpers.HandleServiceError(c, "Not authorized", helpers.ErrUnauthorized)
	}

	if err := db.Model(&notification).Update("is_read", true).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to mark notification as read", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Notification marked as read", nil)
}
