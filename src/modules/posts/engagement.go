package posts

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vibely/src/core/helpers"
	"vibely/src/core/models"
	"vibely/src/modules/notifications"
)

func getPost(db *gorm.DB, postID uuid.UUID) (models.Post, error) {
	var post models.Post
	if err := db.First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return post, helpers.ErrNotFound
		}
		return post, err
	}
	return post, nil
}

// ToggleLike flips the actor's like on a post. The like notification is
// created only on the liked transition, never on unlike, and never for the
// post owner liking their own post.
func ToggleLike(db *gorm.DB, postID, actorID uuid.UUID) (bool, int64, error) {
	post, err := getPost(db, postID)
	if err != nil {
		return false, 0, err
	}

	liked := false
	var created *models.Notification
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", actorID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		liked = true
		if err := tx.Create(&models.Like{UserID: actorID, PostID: postID}).Error; err != nil {
			return err
		}
		created, err = notifications.Notify(tx, post.UserID, actorID, models.NotificationLike, &post.ID, "")
		return err
	})
	if err != nil {
		return false, 0, err
	}
	if created != nil {
		notifications.Dispatch(*created)
	}

	var count int64
	err = db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return liked, count, err
}

// AddComment appends a comment and notifies the post owner. Comments are
// append-only; every call with valid text inserts a new row.
func AddComment(db *gorm.DB, postID, actorID uuid.UUID, text string) (models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, helpers.ErrValidation
	}

	post, err := getPost(db, postID)
	if err != nil {
		return models.Comment{}, err
	}

	// Time-ordered ids keep same-timestamp comments in insertion order
	// under the created_at, id sort.
	commentID, err := uuid.NewV7()
	if err != nil {
		return models.Comment{}, err
	}
	comment := models.Comment{
		ID:        commentID,
		PostID:    postID,
		UserID:    actorID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	var created *models.Notification
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		created, err = notifications.Notify(tx, post.UserID, actorID, models.NotificationComment, &post.ID, text)
		return err
	})
	if err != nil {
		return models.Comment{}, err
	}
	if created != nil {
		notifications.Dispatch(*created)
	}
	return comment, nil
}

// DeleteComment removes a comment. Allowed for the post owner or the
// comment author, nobody else.
func DeleteComment(db *gorm.DB, postID, actorID, commentID uuid.UUID) error {
	post, err := getPost(db, postID)
	if err != nil {
		return err
	}

	var comment models.Comment
	if err := db.First(&comment, "id = ? AND post_id = ?", commentID, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.ErrNotFound
		}
		return err
	}

	if actorID != post.UserID && actorID != comment.UserID {
		return helpers.ErrUnauthorized
	}

	return db.Delete(&comment).Error
}

// ToggleBookmark flips the actor's bookmark. Bookmarking is private, so no
// notification is ever emitted.
func ToggleBookmark(db *gorm.DB, postID, actorID uuid.UUID) (bool, error) {
	if _, err := getPost(db, postID); err != nil {
		return false, err
	}

	res := db.Where("user_id = ? AND post_id = ?", actorID, postID).Delete(&models.Bookmark{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}
	return true, db.Create(&models.Bookmark{UserID: actorID, PostID: postID}).Error
}

// SetArchived hides or restores a post from feeds and profile grids.
// Owner only; archived posts remain fetchable by id.
func SetArchived(db *gorm.DB, postID, actorID uuid.UUID, archived bool) error {
	post, err := getPost(db, postID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return helpers.ErrUnauthorized
	}
	return db.Model(&post).Update("is_archived", archived).Error
}

// DeletePost removes a post with its likes, bookmarks and comments.
func DeletePost(db *gorm.DB, postID, actorID uuid.UUID) error {
	post, err := getPost(db, postID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return helpers.ErrUnauthorized
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Bookmark{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}
