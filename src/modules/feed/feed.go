package feed

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"vibely/src/core/database"
	"vibely/src/core/helpers"
	"vibely/src/core/models"
	"vibely/src/modules/posts"
)

// FetchFeed returns non-archived posts from the accounts the viewer
// follows plus their own, newest first.
func FetchFeed(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	limit, offset := ParsePagination(c)

	views, err := FeedPosts(db, actorID, limit, offset)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch feed", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Feed fetched successfully", views)
}

// FeedPosts loads one feed page: non-archived posts from the viewer's
// followed accounts and themself, newest first.
func FeedPosts(db *gorm.DB, viewerID uuid.UUID, limit, offset int) ([]posts.PostView, error) {
	authorIDs, err := FollowedAuthorIDs(db, viewerID)
	if err != nil {
		return nil, err
	}

	var feedPosts []models.Post
	if err := db.Where("user_id IN ? AND is_archived = ?", authorIDs, false).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&feedPosts).Error; err != nil {
		return nil, err
	}

	return posts.BuildPostViews(db, feedPosts, viewerID)
}

// FollowedAuthorIDs returns the ids whose posts belong in the viewer's
// feed: everyone they follow plus themself.
func FollowedAuthorIDs(db *gorm.DB, viewerID uuid.UUID) ([]uuid.UUID, error) {
	var followeeIDs []uuid.UUID
	if err := db.Model(&models.Follow{}).
		Where("follower_id = ?", viewerID).
		Pluck("followee_id", &followeeIDs).Error; err != nil {
		return nil, err
	}
	return append(followeeIDs, viewerID), nil
}

func ParsePagination(c *fiber.Ctx) (int, int) {
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
