package stories

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vibely/src/core/database"
	"vibely/src/core/helpers"
	"vibely/src/core/models"
	connection "vibely/src/modules/connections"
	"vibely/src/modules/feed"
)

// storyWindow is the visibility window; rows older than this only appear
// in the owner's archive. Expiry itself is delegated to the storage layer
// through this window predicate rather than a background sweeper.
const storyWindow = 24 * time.Hour

// StoryItem is a story with its author populated.
type StoryItem struct {
	models.Story
	User models.UserSummary `json:"user"`
}

func CreateStory(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	media, err := c.FormFile("media")
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Media file is required", err)
	}

	mediaContent, err := media.Open()
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to open media file", err)
	}
	defer mediaContent.Close()

	contentType := media.Header.Get("Content-Type")
	mediaType := "image"
	if strings.HasPrefix(contentType, "video/") {
		mediaType = "video"
	}

	fileName := uuid.New().String() + filepath.Ext(media.Filename)
	mediaURL, err := database.UploadMedia(fileName, mediaContent, contentType)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to upload media", err)
	}

	story := models.Story{
		ID:        uuid.New(),
		UserID:    actorID,
		MediaURL:  mediaURL,
		MediaType: mediaType,
		Caption:   c.FormValue("caption"),
		CreatedAt: time.Now(),
	}
	if err := db.Create(&story).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to create story", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusCreated, "Story created successfully", story)
}

// GetStories returns live stories from followed accounts, with the
// viewer's own stories split out.
func GetStories(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	authorIDs, err := feed.FollowedAuthorIDs(db, actorID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch followed accounts", err)
	}

	var all []models.Story
	if err := db.Where("user_id IN ? AND created_at >= ?", authorIDs, time.Now().Add(-storyWindow)).
		Order("created_at DESC").
		Find(&all).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch stories", err)
	}

	views, err := buildStoryViews(db, all)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to load stories", err)
	}

	followed := make([]StoryItem, 0, len(views))
	own := make([]StoryItem, 0)
	for _, v := range views {
		if v.UserID == actorID {
			own = append(own, v)
		} else {
			followed = append(followed, v)
		}
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Stories retrieved", fiber.Map{
		"stories":      followed,
		"user_stories": own,
	})
}

// GetArchivedStories returns the actor's stories that fell out of the
// 24-hour window.
func GetArchivedStories(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	var archived []models.Story
	if err := db.Where("user_id = ? AND created_at < ?", actorID, time.Now().Add(-storyWindow)).
		Order("created_at DESC").
		Find(&archived).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch archived stories", err)
	}

	views, err := buildStoryViews(db, archived)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to load stories", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Archived stories retrieved", views)
}

// GetStory returns a single story and records the viewer's first view.
func GetStory(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	storyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid story id format", err)
	}

	var story models.Story
	if err := db.First(&story, "id = ?", storyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.HandleServiceError(c, "Story not found", helpers.ErrNotFound)
		}
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch story", err)
	}

	// First view per user only; repeat views leave the record untouched.
	view := models.StoryView{StoryID: story.ID, UserID: actorID, ViewedAt: time.Now()}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&view).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to record story view", err)
	}

	var viewers []models.UserSummary
	if err := db.Model(&models.UserSummary{}).
		Joins("JOIN story_views ON story_views.user_id = users.id").
		Where("story_views.story_id = ?", story.ID).
		Order("story_views.viewed_at ASC").
		Find(&viewers).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch story views", err)
	}

	views, err := buildStoryViews(db, []models.Story{story})
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to load story", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Story retrieved", fiber.Map{
		"story":   views[0],
		"viewers": viewers,
	})
}

// GetStoriesByUser returns a user's live stories, gated for private
// profiles like their posts.
func GetStoriesByUser(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	subjectID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid user_id format", err)
	}

	if err := connection.RequireView(db, actorID, subjectID); err != nil {
		return helpers.HandleServiceError(c, "User not found", err)
	}

	var userStories []models.Story
	if err := db.Where("user_id = ? AND created_at >= ?", subjectID, time.Now().Add(-storyWindow)).
		Order("created_at DESC").
		Find(&userStories).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch stories", err)
	}

	views, err := buildStoryViews(db, userStories)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to load stories", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Stories retrieved", views)
}

func DeleteStory(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	storyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid story id format", err)
	}

	var story models.Story
	if err := db.First(&story, "id = ?", storyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.HandleServiceError(c, "Story not found", helpers.ErrNotFound)
		}
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch story", err)
	}

	if story.UserID != actorID {
		return helpers.HandleServiceError(c, "Not authorized to delete this story", helpers.ErrUnauthorized)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id = ?", storyID).Delete(&models.StoryView{}).Error; err != nil {
			return err
		}
		return tx.Delete(&story).Error
	})
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to delete story", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Story deleted", nil)
}

func buildStoryViews(db *gorm.DB, rawStories []models.Story) ([]StoryItem, error) {
	views := make([]StoryItem, 0, len(rawStories))
	if len(rawStories) == 0 {
		return views, nil
	}

	userIDs := make([]uuid.UUID, 0, len(rawStories))
	for _, s := range rawStories {
		userIDs = append(userIDs, s.UserID)
	}

	var summaries []models.UserSummary
	if err := db.Where("id IN ?", userIDs).Find(&summaries).Error; err != nil {
		return nil, err
	}
	users := make(map[uuid.UUID]models.UserSummary, len(summaries))
	for _, u := range summaries {
		users[u.ID] = u
	}

	for _, s := range rawStories {
		views = append(views, StoryItem{Story: s, User: users[s.UserID]})
	}
	return views, nil
}
