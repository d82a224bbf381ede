package connection

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vibely/src/core/helpers"
	"vibely/src/core/models"
)

// CanView reports whether viewer may see the subject's posts and stories:
// public account, own profile, or an accepted follower.
func CanView(db *gorm.DB, viewerID, subjectID uuid.UUID) (bool, error) {
	var subject models.User
	if err := db.Select("id", "is_private").First(&subject, "id = ?", subjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, helpers.ErrNotFound
		}
		return false, err
	}

	if !subject.IsPrivate || viewerID == subjectID {
		return true, nil
	}
	return edgeExists(db, viewerID, subjectID)
}

// RequireView is the gate form of CanView: nil when visible, otherwise
// ErrPrivateProfile so callers surface the private placeholder instead of
// a generic not-found.
func RequireView(db *gorm.DB, viewerID, subjectID uuid.UUID) error {
	visible, err := CanView(db, viewerID, subjectID)
	if err != nil {
		return err
	}
	if !visible {
		return helpers.ErrPrivateProfile
	}
	return nil
}
