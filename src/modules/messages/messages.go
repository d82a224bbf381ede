package messages

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"vibely/src/core/database"
	"vibely/src/core/helpers"
	"vibely/src/core/models"
)

// Conversation is one entry in the inbox: the peer plus the most recent
// message exchanged with them and how many of their messages are unread.
type Conversation struct {
	User        models.UserSummary `json:"user"`
	LastMessage models.Message     `json:"last_message"`
	UnreadCount int64              `json:"unread_count"`
}

type sendMessageInput struct {
	Content string `json:"content" validate:"required"`
}

// SendMessage stores a direct message to the user in the path.
func SendMessage(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}
	recipientID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid user_id", helpers.ErrValidation)
	}

	body := new(sendMessageInput)
	if err := c.BodyParser(body); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	message, err := Send(db, actorID, recipientID, body.Content)
	if err != nil {
		return helpers.HandleServiceError(c, "Failed to send message", err)
	}
	return helpers.HandleSuccess(c, fiber.StatusCreated, "Message sent", message)
}

// Send validates and stores a direct message.
func Send(db *gorm.DB, senderID, recipientID uuid.UUID, content string) (models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, helpers.ErrValidation
	}
	if senderID == recipientID {
		return models.Message{}, helpers.ErrInvalidOperation
	}

	var exists int64
	if err := db.Model(&models.User{}).Where("id = ?", recipientID).Count(&exists).Error; err != nil {
		return models.Message{}, err
	}
	if exists == 0 {
		return models.Message{}, helpers.ErrNotFound
	}

	message := models.Message{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(&message).Error; err != nil {
		return models.Message{}, err
	}
	return message, nil
}

// GetConversation returns the message history with one user, oldest first,
// and marks their messages to the caller as read.
func GetConversation(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}
	peerID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid user_id", helpers.ErrValidation)
	}

	var peer models.User
	if err := db.First(&peer, "id = ?", peerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.HandleServiceError(c, "User not found", helpers.ErrNotFound)
		}
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch user", err)
	}

	var history []models.Message
	if err := db.
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			actorID, peerID, peerID, actorID).
		Order("created_at ASC").
		Find(&history).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch conversation", err)
	}

	if err := markRead(db, actorID, peerID); err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to mark messages as read", err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Conversation fetched successfully", history)
}

// GetConversations lists the caller's inbox, one entry per peer, newest
// conversation first.
func GetConversations(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	var related []models.Message
	if err := db.
		Where("sender_id = ? OR recipient_id = ?", actorID, actorID).
		Order("created_at DESC").
		Find(&related).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch conversations", err)
	}

	// Messages arrive newest first, so the first one seen per peer is the
	// latest in that conversation.
	latest := make(map[uuid.UUID]models.Message)
	order := make([]uuid.UUID, 0)
	unread := make(map[uuid.UUID]int64)
	for _, m := range related {
		peerID := m.SenderID
		if peerID == actorID {
			peerID = m.RecipientID
		}
		if _, seen := latest[peerID]; !seen {
			latest[peerID] = m
			order = append(order, peerID)
		}
		if m.RecipientID == actorID && !m.IsRead {
			unread[peerID]++
		}
	}

	users := make(map[uuid.UUID]models.UserSummary, len(order))
	if len(order) > 0 {
		var summaries []models.UserSummary
		if err := db.Where("id IN ?", order).Find(&summaries).Error; err != nil {
			return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch users", err)
		}
		for _, u := range summaries {
			users[u.ID] = u
		}
	}

	conversations := make([]Conversation, 0, len(order))
	for _, peerID := range order {
		conversations = append(conversations, Conversation{
			User:        users[peerID],
			LastMessage: latest[peerID],
			UnreadCount: unread[peerID],
		})
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Conversations fetched successfully", conversations)
}

// MarkAsRead marks every message from the user in the path as read.
func MarkAsRead(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}
	peerID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid user_id", helpers.ErrValidation)
	}

	if err := markRead(db, actorID, peerID); err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to mark messages as read", err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Messages marked as read", nil)
}

// GetUnreadCount returns how many unread messages the caller has in total.
func GetUnreadCount(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	var count int64
	if err := db.Model(&models.Message{}).
		Where("recipient_id = ? AND is_read = ?", actorID, false).
		Count(&count).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to count unread messages", err)
	}
	return helpers.HandleSuccess(c, fiber.StatusOK, "Unread count fetched successfully", fiber.Map{"unread_count": count})
}

func markRead(db *gorm.DB, recipientID, senderID uuid.UUID) error {
	return db.Model(&models.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", senderID, recipientID, false).
		Update("is_read", true).Error
}
