package posts

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"vibely/src/core/database"
	"vibely/src/core/helpers"
	"vibely/src/core/models"
	connection "vibely/src/modules/connections"
)

type CommentView struct {
	models.Comment
	User models.UserSummary `json:"user"`
}

// PostView is a post with everything the client renders in one card.
type PostView struct {
	models.Post
	User       models.UserSummary `json:"user"`
	LikesCount int64              `json:"likes_count"`
	Liked      bool               `json:"liked"`
	Bookmarked bool               `json:"bookmarked"`
	Comments   []CommentView      `json:"comments"`
}

func CreatePost(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	media, err := c.FormFile("image")
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Image is required", err)
	}

	mediaContent, err := media.Open()
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to open media file", err)
	}
	defer mediaContent.Close()

	fileName := uuid.New().String() + filepath.Ext(media.Filename)
	mediaURL, err := database.UploadMedia(fileName, mediaContent, media.Header.Get("Content-Type"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to upload media", err)
	}

	post := models.Post{
		ID:        uuid.New(),
		UserID:    actorID,
		MediaURL:  mediaURL,
		MediaType: "image",
		Caption:   c.FormValue("caption"),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(&post).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to create post", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusCreated, "Post created successfully", post)
}

func GetPostByID(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid post id format", err)
	}

	post, err := getPost(db, postID)
	if err != nil {
		return helpers.HandleServiceError(c, "Post not found", err)
	}

	views, err := BuildPostViews(db, []models.Post{post}, actorID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to load post", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Post retrieved", views[0])
}

// GetUserPosts returns a user's grid, gated for private profiles.
func GetUserPosts(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	subjectID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid user_id format", err)
	}

	views, err := UserPosts(db, actorID, subjectID)
	if err != nil {
		if errors.Is(err, helpers.ErrNotFound) || errors.Is(err, helpers.ErrPrivateProfile) {
			return helpers.HandleServiceError(c, "User not found", err)
		}
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch posts", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Posts retrieved", views)
}

// UserPosts returns the subject's profile grid: non-archived posts only,
// gated for private profiles.
func UserPosts(db *gorm.DB, viewerID, subjectID uuid.UUID) ([]PostView, error) {
	if err := connection.RequireView(db, viewerID, subjectID); err != nil {
		return nil, err
	}

	var posts []models.Post
	if err := db.Where("user_id = ? AND is_archived = ?", subjectID, false).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}

	return BuildPostViews(db, posts, viewerID)
}

// GetArchivedPosts returns the actor's own archived posts.
func GetArchivedPosts(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	views, err := ArchivedPosts(db, actorID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch archived posts", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Archived posts retrieved", views)
}

// ArchivedPosts returns the owner's archived posts, the only listing
// where they still appear.
func ArchivedPosts(db *gorm.DB, ownerID uuid.UUID) ([]PostView, error) {
	var posts []models.Post
	if err := db.Where("user_id = ? AND is_archived = ?", ownerID, true).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}

	return BuildPostViews(db, posts, ownerID)
}

func GetBookmarkedPosts(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	var posts []models.Post
	if err := db.Model(&models.Post{}).
		Joins("JOIN bookmarks ON bookmarks.post_id = posts.id").
		Where("bookmarks.user_id = ? AND posts.is_archived = ?", actorID, false).
		Order("posts.created_at DESC").
		Find(&posts).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch bookmarked posts", err)
	}

	views, err := BuildPostViews(db, posts, actorID)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to load posts", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Bookmarked posts retrieved", views)
}

func LikePost(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid post id format", err)
	}

	liked, count, err := ToggleLike(db, postID, actorID)
	if err != nil {
		return helpers.HandleServiceError(c, "Post not found", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Like state updated", fiber.Map{
		"liked":       liked,
		"likes_count": count,
	})
}

func CommentPost(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid post id format", err)
	}

	var input struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}

	comment, err := AddComment(db, postID, actorID, input.Content)
	if err != nil {
		if errors.Is(err, helpers.ErrValidation) {
			return helpers.HandleError(c, fiber.StatusBadRequest, "Comment content is required", err)
		}
		return helpers.HandleServiceError(c, "Post not found", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Comment added", comment)
}

func RemoveComment(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	postID, err := uuid.Parse(c.Params("post_id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid post id format", err)
	}
	commentID, err := uuid.Parse(c.Params("comment_id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid comment id format", err)
	}

	if err := DeleteComment(db, postID, actorID, commentID); err != nil {
		if errors.Is(err, helpers.ErrUnauthorized) {
			return helpers.HandleServiceError(c, "Not authorized to delete this comment", err)
		}
		return helpers.HandleServiceError(c, "Comment not found", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Comment deleted", nil)
}

func BookmarkPost(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid post id format", err)
	}

	bookmarked, err := ToggleBookmark(db, postID, actorID)
	if err != nil {
		return helpers.HandleServiceError(c, "Post not found", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Bookmark state updated", fiber.Map{
		"bookmarked": bookmarked,
	})
}

func ArchivePost(c *fiber.Ctx) error {
	return setArchivedHandler(c, true, "Post archived")
}

func RestorePost(c *fiber.Ctx) error {
	return setArchivedHandler(c, false, "Post restored")
}

func setArchivedHandler(c *fiber.Ctx, archived bool, message string) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid post id format", err)
	}

	if err := SetArchived(db, postID, actorID, archived); err != nil {
		if errors.Is(err, helpers.ErrUnauthorized) {
			return helpers.HandleServiceError(c, "Not authorized to modify this post", err)
		}
		return helpers.HandleServiceError(c, "Post not found", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, message, nil)
}

func RemovePost(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid post id format", err)
	}

	if err := DeletePost(db, postID, actorID); err != nil {
		if errors.Is(err, helpers.ErrUnauthorized) {
			return helpers.HandleServiceError(c, "Not authorized to delete this post", err)
		}
		return helpers.HandleServiceError(c, "Post not found", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Post deleted", nil)
}

// BuildPostViews decorates raw posts with authors, engagement counts, the
// viewer's like/bookmark flags and populated comments.
func BuildPostViews(db *gorm.DB, rawPosts []models.Post, viewerID uuid.UUID) ([]PostView, error) {
	views := make([]PostView, 0, len(rawPosts))
	if len(rawPosts) == 0 {
		return views, nil
	}

	postIDs := make([]uuid.UUID, 0, len(rawPosts))
	userIDs := make([]uuid.UUID, 0, len(rawPosts))
	for _, p := range rawPosts {
		postIDs = append(postIDs, p.ID)
		userIDs = append(userIDs, p.UserID)
	}

	var comments []models.Comment
	if err := db.Where("post_id IN ?", postIDs).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	for _, cm := range comments {
		userIDs = append(userIDs, cm.UserID)
	}

	var summaries []models.UserSummary
	if err := db.Where("id IN ?", userIDs).Find(&summaries).Error; err != nil {
		return nil, err
	}
	users := make(map[uuid.UUID]models.UserSummary, len(summaries))
	for _, u := range summaries {
		users[u.ID] = u
	}

	commentsByPost := make(map[uuid.UUID][]CommentView)
	for _, cm := range comments {
		commentsByPost[cm.PostID] = append(commentsByPost[cm.PostID], CommentView{
			Comment: cm,
			User:    users[cm.UserID],
		})
	}

	likeCounts := make(map[uuid.UUID]int64)
	var counts []struct {
		PostID uuid.UUID `gorm:"column:post_id"`
		Total  int64     `gorm:"column:total"`
	}
	if err := db.Model(&models.Like{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Find(&counts).Error; err != nil {
		return nil, err
	}
	for _, row := range counts {
		likeCounts[row.PostID] = row.Total
	}

	liked, err := membership(db, &models.Like{}, postIDs, viewerID)
	if err != nil {
		return nil, err
	}
	bookmarked, err := membership(db, &models.Bookmark{}, postIDs, viewerID)
	if err != nil {
		return nil, err
	}

	for _, p := range rawPosts {
		comments := commentsByPost[p.ID]
		if comments == nil {
			comments = []CommentView{}
		}
		views = append(views, PostView{
			Post:       p,
			User:       users[p.UserID],
			LikesCount: likeCounts[p.ID],
			Liked:      liked[p.ID],
			Bookmarked: bookmarked[p.ID],
			Comments:   comments,
		})
	}
	return views, nil
}

func membership(db *gorm.DB, model interface{}, postIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var rows []struct {
		PostID uuid.UUID `gorm:"column:post_id"`
	}
	if err := db.Model(model).
		Select("post_id").
		Where("post_id IN ? AND user_id = ?", postIDs, userID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]bool, len(rows))
	for _, row := range rows {
		result[row.PostID] = true
	}
	return result, nil
}
