package connection

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"vibely/src/core/database"
	"vibely/src/core/helpers"
	"vibely/src/core/models"
	"vibely/src/modules/notifications"
)

// FollowStatus is the observable state of the actor->target relation after
// a transition.
type FollowStatus struct {
	Following      bool  `json:"following"`
	HasRequested   bool  `json:"has_requested"`
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}

// ToggleFollow runs one step of the follow state machine:
//
//	following                  -> unfollow (plus defensive request cleanup)
//	not following, public      -> follow, notify target
//	not following, private     -> request, notify target
//	request pending, private   -> no-op
//
// Both sides of the edge mutate inside one transaction, so a completed
// follow is always symmetric.
func ToggleFollow(db *gorm.DB, actorID, targetID uuid.UUID) (FollowStatus, error) {
	if actorID == targetID {
		return FollowStatus{}, helpers.ErrInvalidOperation
	}

	var target models.User
	if err := db.Select("id", "is_private").First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FollowStatus{}, helpers.ErrNotFound
		}
		return FollowStatus{}, err
	}

	var created *models.Notification
	err := db.Transaction(func(tx *gorm.DB) error {
		following, err := edgeExists(tx, actorID, targetID)
		if err != nil {
			return err
		}
		requested, err := requestExists(tx, actorID, targetID)
		if err != nil {
			return err
		}

		switch {
		case following:
			// Unfollow. Clearing a stray pending request keeps the
			// request/edge exclusivity invariant.
			if err := tx.Where("follower_id = ? AND followee_id = ?", actorID, targetID).
				Delete(&models.Follow{}).Error; err != nil {
				return err
			}
			return tx.Where("requester_id = ? AND target_id = ?", actorID, targetID).
				Delete(&models.FollowRequest{}).Error

		case target.IsPrivate:
			if requested {
				// Idempotent: a second attempt neither cancels the
				// request nor re-notifies.
				return nil
			}
			if err := tx.Create(&models.FollowRequest{RequesterID: actorID, TargetID: targetID}).Error; err != nil {
				return err
			}
			created, err = notifications.Notify(tx, targetID, actorID, models.NotificationFollowRequest, nil, "")
			return err

		default:
			if err := tx.Create(&models.Follow{FollowerID: actorID, FolloweeID: targetID}).Error; err != nil {
				return err
			}
			if requested {
				// The account went public while a request was pending.
				if err := tx.Where("requester_id = ? AND target_id = ?", actorID, targetID).
					Delete(&models.FollowRequest{}).Error; err != nil {
					return err
				}
			}
			created, err = notifications.Notify(tx, targetID, actorID, models.NotificationFollow, nil, "")
			return err
		}
	})
	if err != nil {
		return FollowStatus{}, err
	}
	if created != nil {
		// Fan out only once the row is durable, so the push can never
		// reference a rolled-back record.
		notifications.Dispatch(*created)
	}

	return relationStatus(db, actorID, targetID)
}

// AcceptFollowRequest converts requester's pending request into a follow
// edge and consumes the follow_request notification.
func AcceptFollowRequest(db *gorm.DB, targetID, requesterID uuid.UUID) error {
	var requester models.User
	if err := db.Select("id").First(&requester, "id = ?", requesterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.ErrNotFound
		}
		return err
	}

	var created *models.Notification
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("requester_id = ? AND target_id = ?", requesterID, targetID).
			Delete(&models.FollowRequest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return helpers.ErrNotFound
		}

		if err := tx.Create(&models.Follow{FollowerID: requesterID, FolloweeID: targetID}).Error; err != nil {
			return err
		}

		var err error
		if created, err = notifications.Notify(tx, requesterID, targetID, models.NotificationRequestAccepted, nil, ""); err != nil {
			return err
		}
		return notifications.RemoveFollowRequestNotice(tx, targetID, requesterID)
	})
	if err != nil {
		return err
	}
	if created != nil {
		notifications.Dispatch(*created)
	}
	return nil
}

// DeclineFollowRequest drops the pending request. No notification is
// emitted; the consumed follow_request notification is removed.
func DeclineFollowRequest(db *gorm.DB, targetID, requesterID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("requester_id = ? AND target_id = ?", requesterID, targetID).
			Delete(&models.FollowRequest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return helpers.ErrNotFound
		}
		return notifications.RemoveFollowRequestNotice(tx, targetID, requesterID)
	})
}

func edgeExists(db *gorm.DB, followerID, followeeID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

func requestExists(db *gorm.DB, requesterID, targetID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.FollowRequest{}).
		Where("requester_id = ? AND target_id = ?", requesterID, targetID).
		Count(&count).Error
	return count > 0, err
}

func relationStatus(db *gorm.DB, actorID, targetID uuid.UUID) (FollowStatus, error) {
	status := FollowStatus{}

	var err error
	if status.Following, err = edgeExists(db, actorID, targetID); err != nil {
		return status, err
	}
	if status.HasRequested, err = requestExists(db, actorID, targetID); err != nil {
		return status, err
	}
	if err = db.Model(&models.Follow{}).Where("followee_id = ?", targetID).
		Count(&status.FollowersCount).Error; err != nil {
		return status, err
	}
	err = db.Model(&models.Follow{}).Where("follower_id = ?", actorID).
		Count(&status.FollowingCount).Error
	return status, err
}

// Follow toggles the actor's relation with the target user.
func Follow(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	targetID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid user_id format", err)
	}

	status, err := ToggleFollow(db, actorID, targetID)
	if err != nil {
		if errors.Is(err, helpers.ErrInvalidOperation) {
			return helpers.HandleError(c, fiber.StatusBadRequest, "You cannot follow yourself", err)
		}
		if errors.Is(err, helpers.ErrNotFound) {
			return helpers.HandleServiceError(c, "User not found", err)
		}
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to update follow state", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Follow state updated", status)
}

type requestInput struct {
	RequesterID string `json:"requester_id" validate:"required,uuid"`
}

// AcceptRequest approves a pending follow request on the actor's profile.
func AcceptRequest(c *fiber.Ctx) error {
	return resolveRequest(c, AcceptFollowRequest, "Follow request accepted")
}

// DeclineRequest rejects a pending follow request on the actor's profile.
func DeclineRequest(c *fiber.Ctx) error {
	return resolveRequest(c, DeclineFollowRequest, "Follow request declined")
}

func resolveRequest(c *fiber.Ctx, apply func(*gorm.DB, uuid.UUID, uuid.UUID) error, message string) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	profileID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid user_id format", err)
	}
	if profileID != actorID {
		return helpers.HandleServiceError(c, "Not authorized to modify this profile", helpers.ErrUnauthorized)
	}

	var input requestInput
	if err := c.BodyParser(&input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}
	if err := helpers.Validate(input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid requester_id", err)
	}
	requesterID, err := uuid.Parse(input.RequesterID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid requester_id format", err)
	}

	if err := apply(db, actorID, requesterID); err != nil {
		if errors.Is(err, helpers.ErrNotFound) {
			return helpers.HandleServiceError(c, "Follow request not found", err)
		}
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to resolve follow request", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, message, nil)
}

// GetFollowers lists the accounts following the given user.
func GetFollowers(c *fiber.Ctx) error {
	return listRelated(c, "follows.followee_id", "follows.follower_id", "Followers retrieved")
}

// GetFollowing lists the accounts the given user follows.
func GetFollowing(c *fiber.Ctx) error {
	return listRelated(c, "follows.follower_id", "follows.followee_id", "Following retrieved")
}

func listRelated(c *fiber.Ctx, whereColumn, joinColumn, message string) error {
	db := database.DB

	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid user_id format", err)
	}

	var users []models.UserSummary
	if err := db.Model(&models.UserSummary{}).
		Joins("JOIN follows ON "+joinColumn+" = users.id").
		Where(whereColumn+" = ?", userID).
		Find(&users).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch users", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, message, users)
}

// GetPendingRequests lists the accounts waiting for the actor's approval.
func GetPendingRequests(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	var users []models.UserSummary
	if err := db.Model(&models.UserSummary{}).
		Joins("JOIN follow_requests ON follow_requests.requester_id = users.id").
		Where("follow_requests.target_id = ?", actorID).
		Order("follow_requests.created_at DESC").
		Find(&users).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch follow requests", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Follow requests retrieved", users)
}
