package posts

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vibely/src/core/database"
	"vibely/src/core/helpers"
	"vibely/src/core/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createPost(t *testing.T, db *gorm.DB, ownerID uuid.UUID) models.Post {
	t.Helper()

	post := models.Post{
		ID:       uuid.New(),
		UserID:   ownerID,
		MediaURL: "https://cdn.example.com/p.jpg",
		Caption:  "caption",
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func countNotifications(t *testing.T, db *gorm.DB, recipientID uuid.UUID, kind string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("recipient_id = ? AND type = ?", recipientID, kind).
		Count(&count).Error)
	return count
}

func TestToggleLike(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	alice := createUser(t, db, "alice")
	post := createPost(t, db, owner.ID)

	liked, count, err := ToggleLike(db, post.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(1), countNotifications(t, db, owner.ID, models.NotificationLike))

	// Unlike removes the row but leaves the notification alone.
	liked, count, err = ToggleLike(db, post.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(0), count)
	assert.Equal(t, int64(1), countNotifications(t, db, owner.ID, models.NotificationLike))

	// Re-like refreshes the existing notification instead of duplicating it.
	_, count, err = ToggleLike(db, post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(1), countNotifications(t, db, owner.ID, models.NotificationLike))
}

func TestToggleLikeOwnPost(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	post := createPost(t, db, owner.ID)

	liked, count, err := ToggleLike(db, post.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(0), countNotifications(t, db, owner.ID, models.NotificationLike))
}

func TestToggleLikeMissingPost(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")

	_, _, err := ToggleLike(db, uuid.New(), alice.ID)
	assert.ErrorIs(t, err, helpers.ErrNotFound)
}

func TestAddComment(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	alice := createUser(t, db, "alice")
	post := createPost(t, db, owner.ID)

	comment, err := AddComment(db, post.ID, alice.ID, "  nice shot  ")
	require.NoError(t, err)
	assert.Equal(t, "nice shot", comment.Text)
	assert.Equal(t, int64(1), countNotifications(t, db, owner.ID, models.NotificationComment))

	// Comments are append-only but the notification stays deduplicated.
	_, err = AddComment(db, post.ID, alice.ID, "another one")
	require.NoError(t, err)

	var comments int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error)
	assert.Equal(t, int64(2), comments)
	assert.Equal(t, int64(1), countNotifications(t, db, owner.ID, models.NotificationComment))
}

func TestAddCommentRejectsBlankText(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	post := createPost(t, db, owner.ID)

	_, err := AddComment(db, post.ID, owner.ID, "   ")
	assert.ErrorIs(t, err, helpers.ErrValidation)
}

func TestDeleteCommentPermissions(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	alice := createUser(t, db, "alice")
	mallory := createUser(t, db, "mallory")
	post := createPost(t, db, owner.ID)

	comment, err := AddComment(db, post.ID, alice.ID, "hello")
	require.NoError(t, err)

	// A bystander can delete neither.
	assert.ErrorIs(t, DeleteComment(db, post.ID, mallory.ID, comment.ID), helpers.ErrUnauthorized)

	// The author can delete their own comment.
	require.NoError(t, DeleteComment(db, post.ID, alice.ID, comment.ID))

	// The post owner can delete anyone's comment on their post.
	comment, err = AddComment(db, post.ID, alice.ID, "again")
	require.NoError(t, err)
	require.NoError(t, DeleteComment(db, post.ID, owner.ID, comment.ID))

	assert.ErrorIs(t, DeleteComment(db, post.ID, owner.ID, comment.ID), helpers.ErrNotFound)
}

func TestToggleBookmarkIsSilent(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	alice := createUser(t, db, "alice")
	post := createPost(t, db, owner.ID)

	bookmarked, err := ToggleBookmark(db, post.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, bookmarked)

	bookmarked, err = ToggleBookmark(db, post.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, bookmarked)

	var notifications int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&notifications).Error)
	assert.Equal(t, int64(0), notifications)
}

func TestSetArchived(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	alice := createUser(t, db, "alice")
	post := createPost(t, db, owner.ID)

	assert.ErrorIs(t, SetArchived(db, post.ID, alice.ID, true), helpers.ErrUnauthorized)

	require.NoError(t, SetArchived(db, post.ID, owner.ID, true))
	var stored models.Post
	require.NoError(t, db.First(&stored, "id = ?", post.ID).Error)
	assert.True(t, stored.IsArchived)

	require.NoError(t, SetArchived(db, post.ID, owner.ID, false))
	require.NoError(t, db.First(&stored, "id = ?", post.ID).Error)
	assert.False(t, stored.IsArchived)
}

func TestDeletePostCascades(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	alice := createUser(t, db, "alice")
	post := createPost(t, db, owner.ID)

	_, _, err := ToggleLike(db, post.ID, alice.ID)
	require.NoError(t, err)
	_, err = AddComment(db, post.ID, alice.ID, "hello")
	require.NoError(t, err)
	_, err = ToggleBookmark(db, post.ID, alice.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, DeletePost(db, post.ID, alice.ID), helpers.ErrUnauthorized)
	require.NoError(t, DeletePost(db, post.ID, owner.ID))

	var likes, comments, bookmarks int64
	require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likes).Error)
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error)
	require.NoError(t, db.Model(&models.Bookmark{}).Where("post_id = ?", post.ID).Count(&bookmarks).Error)
	assert.Equal(t, int64(0), likes)
	assert.Equal(t, int64(0), comments)
	assert.Equal(t, int64(0), bookmarks)

	assert.ErrorIs(t, DeletePost(db, post.ID, owner.ID), helpers.ErrNotFound)
}
